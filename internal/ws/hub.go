package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/Mujanati13/Qabalan-sub006/internal/domain"
	"github.com/Mujanati13/Qabalan-sub006/pkg/logger"
)

// Event is the wire envelope for every socket message, both directions.
type Event struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data,omitempty"`
}

// Client is one live authenticated connection. SessionID distinguishes
// connections of the same user so a stale disconnect cannot evict its
// replacement.
type Client struct {
	SessionID string
	UserID    uint
	Role      string
	Send      chan []byte

	hub    *Hub
	mu     sync.Mutex
	closed bool
}

// Close releases the client exactly once: its send channel is closed and
// its registry entry removed (compare-and-remove, see Hub.unregister).
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.Send)
	if c.hub != nil {
		c.hub.unregister(c)
	}
}

// Hub is the in-memory live-connection registry: at most one connection per
// user id, plus a shared broadcast room for elevated roles. The hub is the
// sole writer of its own maps; other components reach connections only
// through the emit primitives. Construct one per process (or per test) —
// there is no package-level instance.
type Hub struct {
	mu         sync.RWMutex
	byUser     map[uint]*Client
	admins     map[*Client]struct{}
	isElevated func(role string) bool
}

// NewHub builds a hub with the given elevation predicate; nil defaults to
// the domain admin/staff rule.
func NewHub(isElevated func(role string) bool) *Hub {
	if isElevated == nil {
		isElevated = domain.IsElevated
	}
	return &Hub{
		byUser:     make(map[uint]*Client),
		admins:     make(map[*Client]struct{}),
		isElevated: isElevated,
	}
}

// Register tracks a freshly authenticated connection. A previous connection
// for the same user id is evicted and closed; elevated roles are placed in
// the admin room immediately.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	c.hub = h
	prev := h.byUser[c.UserID]
	if prev != nil && prev != c {
		delete(h.admins, prev)
	}
	h.byUser[c.UserID] = c
	if h.isElevated(c.Role) {
		h.admins[c] = struct{}{}
	}
	h.mu.Unlock()

	if prev != nil && prev != c {
		logger.Debugf("[WS] user %d reconnected, evicting session %s", c.UserID, prev.SessionID)
		prev.Close()
	}
}

// unregister removes the client, but only while it still owns its user-id
// slot. A stale connection disconnecting after its replacement registered
// must not evict the newer entry.
func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.byUser[c.UserID] == c {
		delete(h.byUser, c.UserID)
	}
	delete(h.admins, c)
}

// JoinAdminRoom adds an elevated client to the broadcast room. Joining
// twice has no additional effect; non-elevated roles are refused.
func (h *Hub) JoinAdminRoom(c *Client) bool {
	if !h.isElevated(c.Role) {
		return false
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.byUser[c.UserID] != c {
		return false
	}
	h.admins[c] = struct{}{}
	return true
}

// IsOnline reports whether a user currently has a live connection. The
// registry is the sole source of truth for reachability.
func (h *Hub) IsOnline(userID uint) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.byUser[userID] != nil
}

func (h *Hub) ConnectedCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.byUser)
}

// EmitToUser delivers an event to one user's live connection. A target with
// no connection is a logged no-op; push delivery is the other channel for
// the same logical event.
func (h *Hub) EmitToUser(userID uint, event string, payload interface{}) {
	h.mu.RLock()
	c := h.byUser[userID]
	h.mu.RUnlock()
	if c == nil {
		logger.Debugf("[WS] user %d has no live connection, skipping %q", userID, event)
		return
	}
	h.deliver(c, event, payload)
}

// EmitToAdmins broadcasts an event to every member of the admin room.
func (h *Hub) EmitToAdmins(event string, payload interface{}) {
	h.mu.RLock()
	members := make([]*Client, 0, len(h.admins))
	for c := range h.admins {
		members = append(members, c)
	}
	h.mu.RUnlock()
	for _, c := range members {
		h.deliver(c, event, payload)
	}
}

// SendTo queues an event to a single known client (used for connection
// confirmations and pong replies).
func (h *Hub) SendTo(c *Client, event string, payload interface{}) {
	h.deliver(c, event, payload)
}

func (h *Hub) deliver(c *Client, event string, payload interface{}) {
	data, err := json.Marshal(Event{Event: event, Data: payload})
	if err != nil {
		logger.Errorf("[WS] marshal %q event: %v", event, err)
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.Send <- data:
	default:
		// Slow consumer; drop rather than block the emitter.
	}
}

// Convenience wrappers for the well-known event names.

func (h *Hub) NotifyNewOrder(order interface{}) {
	h.EmitToAdmins(domain.EventNewOrderCreated, order)
}

func (h *Hub) NotifyOrderUpdated(order interface{}) {
	h.EmitToAdmins(domain.EventOrderUpdated, order)
}

func (h *Hub) BroadcastOrderStatus(payload interface{}) {
	h.EmitToAdmins(domain.EventOrderStatusChanged, payload)
}

func (h *Hub) NotifyUser(userID uint, payload interface{}) {
	h.EmitToUser(userID, domain.EventNotification, payload)
}

// SystemBroadcast pushes a system-wide banner to the admin room.
func (h *Hub) SystemBroadcast(message string) {
	h.EmitToAdmins(domain.EventNotification, map[string]interface{}{
		"type":      domain.NotificationTypeSystem,
		"message":   message,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"isSystem":  true,
	})
}
