package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/DRafi2006/FOUND/services"
	"github.com/DRafi2006/FOUND/utils"
)

// PresenceHandler exposes "who is online" to the main API. The
// in-memory registry answers liveness; the Redis mirror, when enabled,
// supplies last-seen for users that are not currently connected.
type PresenceHandler struct {
	registry *services.Registry
	presence *services.PresenceBroadcaster
	logger   *utils.Logger
}

func NewPresenceHandler(registry *services.Registry, presence *services.PresenceBroadcaster, logger *utils.Logger) *PresenceHandler {
	return &PresenceHandler{
		registry: registry,
		presence: presence,
		logger:   logger,
	}
}

type OnlineUsersResponse struct {
	Count int      `json:"count"`
	Users []string `json:"users"`
}

// GetOnlineUsers lists the ids of users with a live registered
// connection in this process.
func (h *PresenceHandler) GetOnlineUsers(c *gin.Context) {
	users := h.registry.OnlineUsers()
	c.JSON(http.StatusOK, OnlineUsersResponse{
		Count: len(users),
		Users: users,
	})
}

type StatusResponse struct {
	UserID   string `json:"userId"`
	Status   string `json:"status"`
	IsOnline bool   `json:"isOnline"`
	LastSeen string `json:"lastSeen,omitempty"`
}

// GetStatus reports a single user's presence.
func (h *PresenceHandler) GetStatus(c *gin.Context) {
	userID := c.Param("userId")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId is required"})
		return
	}

	_, online := h.registry.Lookup(userID)
	resp := StatusResponse{
		UserID:   userID,
		Status:   "offline",
		IsOnline: online,
	}
	if online {
		resp.Status = "online"
	}

	if presence, err := h.presence.GetPresence(c.Request.Context(), userID); err != nil {
		h.logger.Warn("Failed to read mirrored presence", "userId", userID, "error", err)
	} else if presence != nil && !presence.LastSeen.IsZero() {
		resp.LastSeen = presence.LastSeen.UTC().Format(time.RFC3339)
	}

	c.JSON(http.StatusOK, resp)
}
