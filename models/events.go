package models

import "encoding/json"

// Event names sent by clients over the WebSocket connection.
const (
	EventUserOnline  = "user_online"
	EventJoinChat    = "join_chat"
	EventSendMessage = "send_message"
	EventMessageRead = "message_read"
	EventTypingStart = "typing_start"
	EventTypingStop  = "typing_stop"
)

// Event names emitted by the server.
const (
	EventUserStatusChanged = "user_status_changed"
	EventReceiveMessage    = "receive_message"
	EventMessageStatus     = "message_status"
	EventUserTyping        = "user_typing"
)

// Presence statuses carried by user_status_changed events.
const (
	StatusOnline  = "online"
	StatusOffline = "offline"
)

// Message delivery statuses carried by message_status events.
const (
	MessageDelivered = "delivered"
	MessageRead      = "read"
)

// Frame is the envelope for every event in both directions.
// The payload stays raw until the event type is known.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// SendMessagePayload is the client payload for send_message.
// Message is kept raw: its fields are spread into the outbound
// receive_message event untouched, the way the original API behaves.
type SendMessagePayload struct {
	MatchID  string          `json:"matchId"`
	Message  json.RawMessage `json:"message"`
	SenderID string          `json:"senderId"`
}

// MessageReadPayload is the client payload for message_read.
type MessageReadPayload struct {
	MatchID   string `json:"matchId"`
	MessageID string `json:"messageId"`
	UserID    string `json:"userId"`
}

// TypingPayload is the client payload for typing_start and typing_stop.
type TypingPayload struct {
	MatchID string `json:"matchId"`
	UserID  string `json:"userId"`
}

// UserStatusEvent is broadcast to all other connections when a user
// comes online or goes offline.
type UserStatusEvent struct {
	UserID string `json:"userId"`
	Status string `json:"status"`
}

// MessageStatusEvent reports delivery or read state for a message.
// ReadBy is set only for read receipts.
type MessageStatusEvent struct {
	MessageID string `json:"messageId"`
	Status    string `json:"status"`
	ReadBy    string `json:"readBy,omitempty"`
}

// UserTypingEvent is the ephemeral typing indicator for a conversation.
type UserTypingEvent struct {
	UserID string `json:"userId"`
	Typing bool   `json:"typing"`
}

// NewFrame wraps a payload in an event envelope, ready to write to a socket.
func NewFrame(event string, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Frame{Event: event, Data: data})
}
