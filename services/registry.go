package services

import "sync"

// Registry is the single source of truth for who is reachable right now.
// It tracks every live connection by id and keeps a user -> connection
// mapping with last-writer-wins semantics: a later registration for the
// same user displaces the earlier one, so at most one connection is ever
// considered "the" connection for a user. Everything here is process
// memory and vanishes on restart by design.
type Registry struct {
	mu     sync.RWMutex
	byConn map[string]*Connection // conn id -> connection (all sockets, announced or not)
	byUser map[string]string      // user id -> conn id (announced users only)
}

func NewRegistry() *Registry {
	return &Registry{
		byConn: make(map[string]*Connection),
		byUser: make(map[string]string),
	}
}

// Add tracks a connection from the moment the socket is upgraded,
// before the client has announced a user id.
func (r *Registry) Add(c *Connection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byConn[c.ID] = c
}

// Register records the user -> connection mapping. Always succeeds and
// is idempotent; a re-registration for the same user overwrites the
// previous mapping (last writer wins, no multi-device fan-out).
func (r *Registry) Register(userID, connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byUser[userID] = connID
	if c := r.byConn[connID]; c != nil {
		c.UserID = userID
	}
}

// Unregister removes the user mapping owned by the given connection.
// It returns the user id and true only when a mapping was actually
// removed: a connection that never announced a user, or whose user has
// since re-registered on a newer connection, produces no side effect.
func (r *Registry) Unregister(connID string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c := r.byConn[connID]
	if c == nil || c.UserID == "" {
		return "", false
	}
	if owner, ok := r.byUser[c.UserID]; !ok || owner != connID {
		return "", false
	}
	delete(r.byUser, c.UserID)
	return c.UserID, true
}

// Remove drops the connection handle itself. Called once on disconnect,
// after Unregister.
func (r *Registry) Remove(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byConn, connID)
}

// Lookup returns the connection id currently registered for a user.
// Absence means the user is considered offline.
func (r *Registry) Lookup(userID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	connID, ok := r.byUser[userID]
	return connID, ok
}

// Connections snapshots every live connection, announced or not.
// Used by the presence broadcaster.
func (r *Registry) Connections() []*Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Connection, 0, len(r.byConn))
	for _, c := range r.byConn {
		out = append(out, c)
	}
	return out
}

// OnlineUsers snapshots the ids of users with a registered connection.
func (r *Registry) OnlineUsers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.byUser))
	for userID := range r.byUser {
		out = append(out, userID)
	}
	return out
}
