package services

import (
	"encoding/json"
	"time"

	"github.com/DRafi2006/FOUND/models"
	"github.com/DRafi2006/FOUND/utils"
)

// MessageRelay forwards chat messages and status updates between the
// participants of a match in real time. It stamps and forwards; message
// durability belongs to the persistence layer behind the REST API, and
// the two channels are deliberately uncoordinated. If nobody else is in
// the room the message silently drops out of the real-time channel.
type MessageRelay struct {
	rooms  *RoomRouter
	logger *utils.Logger
}

func NewMessageRelay(rooms *RoomRouter, logger *utils.Logger) *MessageRelay {
	return &MessageRelay{rooms: rooms, logger: logger}
}

// RelayMessage stamps the message with a server-side timestamp and
// forwards it to the other members of the conversation room, then emits
// a delivered status for it. "Delivered" means the message reached a
// currently-open room member, not that any device acknowledged it.
func (mr *MessageRelay) RelayMessage(matchID string, message json.RawMessage, senderID, originConnID string) {
	var fields map[string]interface{}
	if err := json.Unmarshal(message, &fields); err != nil || fields == nil {
		mr.logger.Warn("Dropping malformed message payload", "matchId", matchID, "error", err)
		return
	}

	messageID, _ := fields["_id"].(string)
	fields["senderId"] = senderID
	fields["timestamp"] = time.Now().UTC().Format(time.RFC3339)

	payload, err := models.NewFrame(models.EventReceiveMessage, fields)
	if err != nil {
		mr.logger.Error("Failed to encode message", "matchId", matchID, "error", err)
		return
	}
	mr.rooms.Broadcast(matchID, payload, originConnID)

	status, err := models.NewFrame(models.EventMessageStatus, models.MessageStatusEvent{
		MessageID: messageID,
		Status:    models.MessageDelivered,
	})
	if err != nil {
		mr.logger.Error("Failed to encode delivery status", "matchId", matchID, "error", err)
		return
	}
	mr.rooms.Broadcast(matchID, status, originConnID)
}

// RelayReadReceipt broadcasts a read status update to the conversation
// room, excluding the reader's own connection. Fire-and-forget.
func (mr *MessageRelay) RelayReadReceipt(matchID, messageID, readerID, originConnID string) {
	status, err := models.NewFrame(models.EventMessageStatus, models.MessageStatusEvent{
		MessageID: messageID,
		Status:    models.MessageRead,
		ReadBy:    readerID,
	})
	if err != nil {
		mr.logger.Error("Failed to encode read status", "matchId", matchID, "error", err)
		return
	}
	mr.rooms.Broadcast(matchID, status, originConnID)
}

// TypingTracker forwards ephemeral typing-state events, bypassing
// persistence entirely. There is no debouncing and no timeout-based
// auto-clear: a typing_stop must be sent explicitly, and a client that
// disconnects mid-typing leaves its last state standing in the room.
type TypingTracker struct {
	rooms  *RoomRouter
	logger *utils.Logger
}

func NewTypingTracker(rooms *RoomRouter, logger *utils.Logger) *TypingTracker {
	return &TypingTracker{rooms: rooms, logger: logger}
}

// SetTyping broadcasts the typing flag to the conversation room,
// excluding the originating connection.
func (tt *TypingTracker) SetTyping(matchID, userID string, typing bool, originConnID string) {
	payload, err := models.NewFrame(models.EventUserTyping, models.UserTypingEvent{
		UserID: userID,
		Typing: typing,
	})
	if err != nil {
		tt.logger.Error("Failed to encode typing event", "matchId", matchID, "error", err)
		return
	}
	tt.rooms.Broadcast(matchID, payload, originConnID)
}
