package ws

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(userID string) *Client {
	return &Client{UserID: userID, Send: make(chan []byte, 8)}
}

func TestHubRegisterAndUnregister(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := newTestClient("user-1")
	hub.Register <- client
	assert.Eventually(t, func() bool { return hub.IsOnline("user-1") }, time.Second, 10*time.Millisecond)
	assert.False(t, hub.IsOnline("user-2"))

	hub.Unregister <- client
	assert.Eventually(t, func() bool { return !hub.IsOnline("user-1") }, time.Second, 10*time.Millisecond)
}

func TestHubReconnectReplacesOldConnection(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	first := newTestClient("user-1")
	second := newTestClient("user-1")

	hub.Register <- first
	hub.Register <- second
	assert.Eventually(t, func() bool {
		_, open := <-first.Send
		return !open
	}, time.Second, 10*time.Millisecond, "old connection's send channel should be closed")
	assert.True(t, hub.IsOnline("user-1"))

	// the stale client unregistering must not evict the new one
	hub.Unregister <- first
	hub.SendToUser("user-1", map[string]string{"type": "ping"})
	select {
	case payload := <-second.Send:
		assert.Contains(t, string(payload), "ping")
	case <-time.After(time.Second):
		t.Fatal("expected event on the replacement connection")
	}
}

func TestSendToUser(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := newTestClient("user-1")
	hub.Register <- client
	require.Eventually(t, func() bool { return hub.IsOnline("user-1") }, time.Second, 10*time.Millisecond)

	hub.SendToUser("user-1", map[string]interface{}{"type": "message", "data": "hello"})
	select {
	case payload := <-client.Send:
		assert.JSONEq(t, `{"type":"message","data":"hello"}`, string(payload))
	case <-time.After(time.Second):
		t.Fatal("expected event delivery")
	}

	// offline recipient is a no-op
	hub.SendToUser("user-9", map[string]string{"type": "message"})
}

func TestSendToUserDropsWhenSaturated(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := &Client{UserID: "user-1", Send: make(chan []byte, 1)}
	hub.Register <- client
	require.Eventually(t, func() bool { return hub.IsOnline("user-1") }, time.Second, 10*time.Millisecond)

	hub.SendToUser("user-1", map[string]string{"seq": "1"})
	hub.SendToUser("user-1", map[string]string{"seq": "2"})

	payload := <-client.Send
	assert.Contains(t, string(payload), `"1"`)
	select {
	case extra := <-client.Send:
		t.Fatalf("expected second event dropped, got %s", extra)
	case <-time.After(50 * time.Millisecond):
	}
}
