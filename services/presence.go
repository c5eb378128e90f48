package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/DRafi2006/FOUND/models"
	"github.com/DRafi2006/FOUND/utils"
)

const (
	presenceKeyPrefix = "presence:"
	onlineSetKey      = "online_users"
)

// UserPresence is the record mirrored to Redis for each online user so
// the surrounding request/response API can answer presence queries
// without reaching into this process.
type UserPresence struct {
	UserID   string    `json:"user_id"`
	Status   string    `json:"status"`
	LastSeen time.Time `json:"last_seen"`
}

// PresenceBroadcaster announces online/offline transitions to every
// other connected client. Delivery is best-effort: no acknowledgment,
// no retry, no persistence of presence history. The in-memory registry
// remains the source of truth; the Redis mirror is optional and its
// failures are logged, never surfaced.
type PresenceBroadcaster struct {
	registry *Registry
	redis    *redis.Client // nil when the mirror is disabled
	ttl      time.Duration
	logger   *utils.Logger
}

func NewPresenceBroadcaster(registry *Registry, redisClient *redis.Client, ttl time.Duration, logger *utils.Logger) *PresenceBroadcaster {
	return &PresenceBroadcaster{
		registry: registry,
		redis:    redisClient,
		ttl:      ttl,
		logger:   logger,
	}
}

// AnnounceOnline notifies all currently connected clients, except the
// announcing connection, that a user came online. Issued synchronously
// right after registry registration; a connect immediately followed by
// a disconnect may produce a spurious online/offline pair, which is
// accepted rather than debounced.
func (pb *PresenceBroadcaster) AnnounceOnline(userID, originConnID string) {
	pb.broadcastStatus(userID, models.StatusOnline, originConnID)
	pb.mirrorOnline(userID)
}

// AnnounceOffline mirrors AnnounceOnline on disconnect. The caller only
// invokes it when the disconnecting connection actually owned the user
// mapping, so anonymous connections produce no offline event.
func (pb *PresenceBroadcaster) AnnounceOffline(userID, originConnID string) {
	pb.broadcastStatus(userID, models.StatusOffline, originConnID)
	pb.mirrorOffline(userID)
}

func (pb *PresenceBroadcaster) broadcastStatus(userID, status, originConnID string) {
	payload, err := models.NewFrame(models.EventUserStatusChanged, models.UserStatusEvent{
		UserID: userID,
		Status: status,
	})
	if err != nil {
		pb.logger.Error("Failed to encode status event", "userId", userID, "error", err)
		return
	}

	for _, c := range pb.registry.Connections() {
		if c.ID == originConnID {
			continue
		}
		c.Send(payload)
	}
}

func (pb *PresenceBroadcaster) mirrorOnline(userID string) {
	if pb.redis == nil {
		return
	}

	presence := UserPresence{
		UserID:   userID,
		Status:   models.StatusOnline,
		LastSeen: time.Now(),
	}
	data, err := json.Marshal(presence)
	if err != nil {
		pb.logger.Error("Failed to marshal presence data", "userId", userID, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	pipe := pb.redis.Pipeline()
	pipe.Set(ctx, presenceKeyPrefix+userID, data, pb.ttl)
	pipe.SAdd(ctx, onlineSetKey, userID)
	pipe.Expire(ctx, onlineSetKey, pb.ttl*2)
	if _, err := pipe.Exec(ctx); err != nil {
		pb.logger.Warn("Failed to mirror presence to redis", "userId", userID, "error", err)
	}
}

func (pb *PresenceBroadcaster) mirrorOffline(userID string) {
	if pb.redis == nil {
		return
	}

	presence := UserPresence{
		UserID:   userID,
		Status:   models.StatusOffline,
		LastSeen: time.Now(),
	}
	data, err := json.Marshal(presence)
	if err != nil {
		pb.logger.Error("Failed to marshal presence data", "userId", userID, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	pipe := pb.redis.Pipeline()
	pipe.Set(ctx, presenceKeyPrefix+userID, data, pb.ttl)
	pipe.SRem(ctx, onlineSetKey, userID)
	if _, err := pipe.Exec(ctx); err != nil {
		pb.logger.Warn("Failed to mirror presence to redis", "userId", userID, "error", err)
	}
}

// GetPresence reads a user's mirrored presence record. Only meaningful
// when the Redis mirror is enabled; a missing key reads as offline.
func (pb *PresenceBroadcaster) GetPresence(ctx context.Context, userID string) (*UserPresence, error) {
	if pb.redis == nil {
		return nil, nil
	}

	data, err := pb.redis.Get(ctx, presenceKeyPrefix+userID).Result()
	if err != nil {
		if err == redis.Nil {
			return &UserPresence{UserID: userID, Status: models.StatusOffline}, nil
		}
		return nil, fmt.Errorf("failed to get presence: %w", err)
	}

	var presence UserPresence
	if err := json.Unmarshal([]byte(data), &presence); err != nil {
		return nil, fmt.Errorf("failed to unmarshal presence data: %w", err)
	}
	return &presence, nil
}
