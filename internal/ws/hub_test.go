package ws

import (
	"encoding/json"
	"testing"

	"github.com/Mujanati13/Qabalan-sub006/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(userID uint, role, session string) *Client {
	return &Client{
		SessionID: session,
		UserID:    userID,
		Role:      role,
		Send:      make(chan []byte, 16),
	}
}

func recvEvent(t *testing.T, c *Client) Event {
	t.Helper()
	select {
	case raw, ok := <-c.Send:
		require.True(t, ok, "send channel closed")
		var ev Event
		require.NoError(t, json.Unmarshal(raw, &ev))
		return ev
	default:
		t.Fatal("expected a queued event")
		return Event{}
	}
}

func assertNoEvent(t *testing.T, c *Client) {
	t.Helper()
	select {
	case raw, ok := <-c.Send:
		if ok {
			t.Fatalf("unexpected event queued: %s", raw)
		}
	default:
	}
}

func TestSecondConnectionReplacesFirst(t *testing.T) {
	hub := NewHub(nil)
	first := newTestClient(42, domain.RoleCustomer, "sess-1")
	second := newTestClient(42, domain.RoleCustomer, "sess-2")

	hub.Register(first)
	require.True(t, hub.IsOnline(42))
	hub.Register(second)

	// The first client was evicted and closed.
	assert.Equal(t, 1, hub.ConnectedCount())
	_, open := <-first.Send
	assert.False(t, open, "evicted client's send channel should be closed")

	// Emitting reaches the surviving connection only.
	hub.EmitToUser(42, domain.EventNotification, map[string]string{"message": "hi"})
	ev := recvEvent(t, second)
	assert.Equal(t, domain.EventNotification, ev.Event)
}

func TestStaleDisconnectDoesNotEvictReplacement(t *testing.T) {
	hub := NewHub(nil)
	first := newTestClient(42, domain.RoleCustomer, "sess-1")
	second := newTestClient(42, domain.RoleCustomer, "sess-2")

	hub.Register(first)
	hub.Register(second)

	// The stale first connection disconnects after being replaced; the
	// surviving registry entry must stay.
	first.Close()
	assert.True(t, hub.IsOnline(42))

	hub.EmitToUser(42, domain.EventNotification, nil)
	ev := recvEvent(t, second)
	assert.Equal(t, domain.EventNotification, ev.Event)
}

func TestEmitToOfflineUserIsNoOp(t *testing.T) {
	hub := NewHub(nil)
	// Must not panic or block.
	hub.EmitToUser(999, domain.EventNotification, map[string]string{"message": "nobody home"})
}

func TestElevatedRolesJoinAdminRoomOnRegister(t *testing.T) {
	hub := NewHub(nil)
	admin := newTestClient(1, domain.RoleAdmin, "sess-a")
	staff := newTestClient(2, domain.RoleStaff, "sess-s")
	customer := newTestClient(3, domain.RoleCustomer, "sess-c")
	hub.Register(admin)
	hub.Register(staff)
	hub.Register(customer)

	hub.EmitToAdmins(domain.EventNewOrderCreated, map[string]interface{}{"order_id": 7})

	assert.Equal(t, domain.EventNewOrderCreated, recvEvent(t, admin).Event)
	assert.Equal(t, domain.EventNewOrderCreated, recvEvent(t, staff).Event)
	assertNoEvent(t, customer)
}

func TestJoinAdminRoomIsIdempotentAndRoleGated(t *testing.T) {
	hub := NewHub(nil)
	staff := newTestClient(2, domain.RoleStaff, "sess-s")
	customer := newTestClient(3, domain.RoleCustomer, "sess-c")
	hub.Register(staff)
	hub.Register(customer)

	assert.True(t, hub.JoinAdminRoom(staff))
	assert.True(t, hub.JoinAdminRoom(staff), "joining twice has no additional effect")
	assert.False(t, hub.JoinAdminRoom(customer))

	hub.BroadcastOrderStatus(map[string]string{"status": "shipped"})
	ev := recvEvent(t, staff)
	assert.Equal(t, domain.EventOrderStatusChanged, ev.Event)
	// Idempotent join: exactly one copy queued.
	assertNoEvent(t, staff)
	assertNoEvent(t, customer)
}

func TestCustomElevationPredicate(t *testing.T) {
	hub := NewHub(func(role string) bool { return role == "supervisor" })
	sup := newTestClient(10, "supervisor", "sess-sup")
	admin := newTestClient(11, domain.RoleAdmin, "sess-a")
	hub.Register(sup)
	hub.Register(admin)

	hub.SystemBroadcast("maintenance at midnight")

	ev := recvEvent(t, sup)
	assert.Equal(t, domain.EventNotification, ev.Event)
	data, ok := ev.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, true, data["isSystem"])
	assert.Equal(t, "maintenance at midnight", data["message"])
	assertNoEvent(t, admin)
}

func TestDisconnectRemovesRegistryEntry(t *testing.T) {
	hub := NewHub(nil)
	c := newTestClient(5, domain.RoleCustomer, "sess-x")
	hub.Register(c)
	require.True(t, hub.IsOnline(5))

	c.Close()
	assert.False(t, hub.IsOnline(5))
	assert.Zero(t, hub.ConnectedCount())

	// Closing twice is safe.
	c.Close()
}
