package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"graphnode-be/internal/dto"
	"graphnode-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const clusterChannel = "sync_cluster_events"

// Hub tracks every open sync socket per user. A user can hold several at
// once (one per device), and a sync-changed notice goes to all of them so
// idle devices know to pull.
type Hub struct {
	// UserID -> open connections for that user (multi-device)
	clients map[uuid.UUID][]*Client

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	// Redis relays notices to sockets held by other instances.
	rdb *redis.Client

	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[uuid.UUID][]*Client),
		rdb:        rdb,
		logger:     log,
	}
}

func (h *Hub) Run() {
	if h.rdb != nil {
		go h.subscribeToRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.UserID] = append(h.clients[client.UserID], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Sync socket registered", map[string]interface{}{"user_id": client.UserID})

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.UserID]; ok {
				for i, c := range clients {
					if c == client {
						h.clients[client.UserID] = append(clients[:i], clients[i+1:]...)
						close(client.Send)
						break
					}
				}
				if len(h.clients[client.UserID]) == 0 {
					delete(h.clients, client.UserID)
				}
			}
			h.mu.Unlock()
		}
	}
}

// NotifyChanged tells every socket the user holds that their data moved on
// the server. It is a hint to pull, not a data channel: the payload carries
// only the changed kinds.
func (h *Hub) NotifyChanged(notice dto.SyncChangedMessage) {
	data, _ := json.Marshal(map[string]interface{}{
		"type": "sync_changed",
		"data": notice,
	})

	h.deliverLocal(notice.UserId, data)

	// Relay so instances holding this user's other sockets deliver too.
	if h.rdb != nil {
		payload, _ := json.Marshal(clusterEnvelope{
			TargetUserID: notice.UserId.String(),
			Message:      data,
		})
		h.rdb.Publish(context.Background(), clusterChannel, payload)
	}
}

func (h *Hub) deliverLocal(userID uuid.UUID, data []byte) {
	h.mu.RLock()
	clients := h.clients[userID]
	h.mu.RUnlock()

	for _, client := range clients {
		select {
		case client.Send <- data:
		default:
			// The unregister branch owns channel closure; closing here too
			// would close the channel twice.
			h.logger.Warn("Hub", "Sync socket buffer full, dropping connection", map[string]interface{}{"user_id": userID})
			h.unregister <- client
		}
	}
}

type clusterEnvelope struct {
	TargetUserID string          `json:"target_user_id"`
	Message      json.RawMessage `json:"message"`
}

func (h *Hub) subscribeToRedis() {
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, clusterChannel)
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		var envelope clusterEnvelope
		if err := json.Unmarshal([]byte(msg.Payload), &envelope); err != nil {
			log.Printf("Redis msg parse error: %v", err)
			continue
		}

		uid, err := uuid.Parse(envelope.TargetUserID)
		if err != nil {
			continue
		}

		h.deliverLocal(uid, envelope.Message)
	}
}
