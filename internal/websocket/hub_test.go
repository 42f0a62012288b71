package websocket

import (
	"testing"
	"time"

	"graphnode-be/internal/dto"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error { return nil }

func clientCount(h *Hub, userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

func TestNotifyChangedDeliversToEachDevice(t *testing.T) {
	h := NewHub(nil, nopLogger{})
	go h.Run()

	userID := uuid.New()
	phone := &Client{Hub: h, UserID: userID, Send: make(chan []byte, 4)}
	laptop := &Client{Hub: h, UserID: userID, Send: make(chan []byte, 4)}
	stranger := &Client{Hub: h, UserID: uuid.New(), Send: make(chan []byte, 4)}

	h.register <- phone
	h.register <- laptop
	h.register <- stranger
	require.Eventually(t, func() bool { return clientCount(h, userID) == 2 }, time.Second, 10*time.Millisecond)

	h.NotifyChanged(dto.SyncChangedMessage{UserId: userID, Kinds: []string{"folders"}})

	for _, c := range []*Client{phone, laptop} {
		select {
		case msg := <-c.Send:
			assert.Contains(t, string(msg), `"sync_changed"`)
			assert.Contains(t, string(msg), `"folders"`)
		case <-time.After(time.Second):
			t.Fatal("notice never delivered")
		}
	}

	select {
	case <-stranger.Send:
		t.Fatal("notice leaked to another user's socket")
	default:
	}
}

func TestNotifyChangedDropsStalledClient(t *testing.T) {
	h := NewHub(nil, nopLogger{})
	go h.Run()

	userID := uuid.New()

	// Nothing drains Send, so the first delivery takes the drop path.
	stalled := &Client{Hub: h, UserID: userID, Send: make(chan []byte)}
	h.register <- stalled
	require.Eventually(t, func() bool { return clientCount(h, userID) == 1 }, time.Second, 10*time.Millisecond)

	h.NotifyChanged(dto.SyncChangedMessage{UserId: userID, Kinds: []string{"notes"}})

	require.Eventually(t, func() bool { return clientCount(h, userID) == 0 }, time.Second, 10*time.Millisecond)

	select {
	case _, ok := <-stalled.Send:
		assert.False(t, ok, "send channel closed exactly once, by the hub")
	case <-time.After(time.Second):
		t.Fatal("send channel never closed")
	}

	// The Run goroutine survived the drop: registration and delivery still work.
	healthy := &Client{Hub: h, UserID: userID, Send: make(chan []byte, 1)}
	h.register <- healthy
	require.Eventually(t, func() bool { return clientCount(h, userID) == 1 }, time.Second, 10*time.Millisecond)

	h.NotifyChanged(dto.SyncChangedMessage{UserId: userID, Kinds: []string{"notes"}})

	select {
	case msg := <-healthy.Send:
		assert.Contains(t, string(msg), `"sync_changed"`)
	case <-time.After(time.Second):
		t.Fatal("hub stopped delivering after dropping a stalled client")
	}
}
