package services

import "sync"

// RoomRouter groups connections by conversation (match) id so that an
// event reaches exactly the other participants of that conversation.
// Membership is volatile: rooms come into existence on the first join
// and stop existing once their last member leaves. The router keeps a
// reverse index so a disconnecting connection can be removed from every
// room it had joined.
type RoomRouter struct {
	mu     sync.RWMutex
	rooms  map[string]map[string]*Connection // match id -> conn id -> connection
	joined map[string]map[string]struct{}    // conn id -> match ids
}

func NewRoomRouter() *RoomRouter {
	return &RoomRouter{
		rooms:  make(map[string]map[string]*Connection),
		joined: make(map[string]map[string]struct{}),
	}
}

// Join adds a connection to a room, creating the room lazily.
// Idempotent; a connection may belong to multiple rooms at once.
func (rr *RoomRouter) Join(c *Connection, matchID string) {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	room := rr.rooms[matchID]
	if room == nil {
		room = make(map[string]*Connection)
		rr.rooms[matchID] = room
	}
	room[c.ID] = c

	rooms := rr.joined[c.ID]
	if rooms == nil {
		rooms = make(map[string]struct{})
		rr.joined[c.ID] = rooms
	}
	rooms[matchID] = struct{}{}
}

// Leave removes a connection from one room, deleting the room when it
// becomes empty.
func (rr *RoomRouter) Leave(connID, matchID string) {
	rr.mu.Lock()
	defer rr.mu.Unlock()
	rr.leaveLocked(connID, matchID)
}

// LeaveAll removes a connection from every room it joined. Called on
// disconnect.
func (rr *RoomRouter) LeaveAll(connID string) {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	for matchID := range rr.joined[connID] {
		rr.leaveLocked(connID, matchID)
	}
}

func (rr *RoomRouter) leaveLocked(connID, matchID string) {
	if room, ok := rr.rooms[matchID]; ok {
		delete(room, connID)
		if len(room) == 0 {
			delete(rr.rooms, matchID)
		}
	}
	if rooms, ok := rr.joined[connID]; ok {
		delete(rooms, matchID)
		if len(rooms) == 0 {
			delete(rr.joined, connID)
		}
	}
}

// Broadcast delivers a payload to every member of a room except the
// originating connection — "send to conversation" semantics, never an
// echo back to the sender. A room with no other members is a silent
// no-op.
func (rr *RoomRouter) Broadcast(matchID string, payload []byte, excludeConnID string) {
	rr.mu.RLock()
	room := rr.rooms[matchID]
	conns := make([]*Connection, 0, len(room))
	for connID, c := range room {
		if connID == excludeConnID {
			continue
		}
		conns = append(conns, c)
	}
	rr.mu.RUnlock()

	for _, c := range conns {
		c.Send(payload)
	}
}

// MemberCount reports how many connections are currently in a room.
func (rr *RoomRouter) MemberCount(matchID string) int {
	rr.mu.RLock()
	defer rr.mu.RUnlock()
	return len(rr.rooms[matchID])
}
