package services

import (
	"encoding/json"

	"github.com/DRafi2006/FOUND/models"
	"github.com/DRafi2006/FOUND/utils"
)

// Gateway routes inbound socket events to the relay components through
// an explicit dispatch table. Each connection has a single read loop
// invoking HandleFrame to completion, which preserves per-connection
// event order; no ordering is guaranteed across senders.
type Gateway struct {
	registry *Registry
	rooms    *RoomRouter
	presence *PresenceBroadcaster
	relay    *MessageRelay
	typing   *TypingTracker
	logger   *utils.Logger

	handlers map[string]func(c *Connection, data json.RawMessage)
}

func NewGateway(registry *Registry, rooms *RoomRouter, presence *PresenceBroadcaster, relay *MessageRelay, typing *TypingTracker, logger *utils.Logger) *Gateway {
	g := &Gateway{
		registry: registry,
		rooms:    rooms,
		presence: presence,
		relay:    relay,
		typing:   typing,
		logger:   logger,
	}

	g.handlers = map[string]func(c *Connection, data json.RawMessage){
		models.EventUserOnline:  g.handleUserOnline,
		models.EventJoinChat:    g.handleJoinChat,
		models.EventSendMessage: g.handleSendMessage,
		models.EventMessageRead: g.handleMessageRead,
		models.EventTypingStart: g.handleTypingStart,
		models.EventTypingStop:  g.handleTypingStop,
	}

	return g
}

// HandleConnect tracks a freshly upgraded socket. The connection stays
// anonymous until the client announces itself with user_online.
func (g *Gateway) HandleConnect(c *Connection) {
	g.registry.Add(c)
	g.logger.Info("User connected", "connId", c.ID)
}

// HandleFrame dispatches one inbound event. Malformed payloads and
// unknown events are dropped without surfacing an error to the client;
// nothing here may take the process down or disturb other connections.
func (g *Gateway) HandleFrame(c *Connection, frame models.Frame) {
	handler, ok := g.handlers[frame.Event]
	if !ok {
		g.logger.Debug("No handler for event", "event", frame.Event, "connId", c.ID)
		return
	}
	handler(c, frame.Data)
}

// HandleDisconnect tears down all state owned by a connection: the user
// mapping (triggering the offline broadcast when this connection still
// owned it), every room membership, and finally the handle itself.
// Invoked exactly once, when the transport signals closure.
func (g *Gateway) HandleDisconnect(c *Connection) {
	if userID, ok := g.registry.Unregister(c.ID); ok {
		g.presence.AnnounceOffline(userID, c.ID)
	}
	g.rooms.LeaveAll(c.ID)
	g.registry.Remove(c.ID)
	g.logger.Info("User disconnected", "connId", c.ID)
}

// user_online carries a bare user id string, matching what the mobile
// clients emit.
func (g *Gateway) handleUserOnline(c *Connection, data json.RawMessage) {
	var userID string
	if err := json.Unmarshal(data, &userID); err != nil || userID == "" {
		g.logger.Warn("Dropping malformed user_online payload", "connId", c.ID)
		return
	}

	g.registry.Register(userID, c.ID)
	g.presence.AnnounceOnline(userID, c.ID)
}

// join_chat carries a bare match id string.
func (g *Gateway) handleJoinChat(c *Connection, data json.RawMessage) {
	var matchID string
	if err := json.Unmarshal(data, &matchID); err != nil || matchID == "" {
		g.logger.Warn("Dropping malformed join_chat payload", "connId", c.ID)
		return
	}

	g.rooms.Join(c, matchID)
	g.logger.Debug("Joined chat", "connId", c.ID, "matchId", matchID, "members", g.rooms.MemberCount(matchID))
}

func (g *Gateway) handleSendMessage(c *Connection, data json.RawMessage) {
	var payload models.SendMessagePayload
	if err := json.Unmarshal(data, &payload); err != nil || payload.MatchID == "" {
		g.logger.Warn("Dropping malformed send_message payload", "connId", c.ID)
		return
	}

	g.relay.RelayMessage(payload.MatchID, payload.Message, payload.SenderID, c.ID)
}

func (g *Gateway) handleMessageRead(c *Connection, data json.RawMessage) {
	var payload models.MessageReadPayload
	if err := json.Unmarshal(data, &payload); err != nil || payload.MatchID == "" {
		g.logger.Warn("Dropping malformed message_read payload", "connId", c.ID)
		return
	}

	g.relay.RelayReadReceipt(payload.MatchID, payload.MessageID, payload.UserID, c.ID)
}

func (g *Gateway) handleTypingStart(c *Connection, data json.RawMessage) {
	g.handleTyping(c, data, true)
}

func (g *Gateway) handleTypingStop(c *Connection, data json.RawMessage) {
	g.handleTyping(c, data, false)
}

func (g *Gateway) handleTyping(c *Connection, data json.RawMessage, typing bool) {
	var payload models.TypingPayload
	if err := json.Unmarshal(data, &payload); err != nil || payload.MatchID == "" {
		g.logger.Warn("Dropping malformed typing payload", "connId", c.ID)
		return
	}

	g.typing.SetTyping(payload.MatchID, payload.UserID, typing, c.ID)
}
