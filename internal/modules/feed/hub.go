package feed

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"stagegear/internal/pkg/timeutil"
)

// StatusEvent is one lifecycle status change pushed to dashboard clients.
type StatusEvent struct {
	Entity    string    `json:"entity"`
	ID        string    `json:"id"`
	OldStatus string    `json:"old_status"`
	NewStatus string    `json:"new_status"`
	At        time.Time `json:"at"`
}

// Hub fans status events out to connected clients, one connection per user.
type Hub struct {
	connections map[string]*websocket.Conn
	mu          sync.RWMutex
	log         *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		connections: make(map[string]*websocket.Conn),
		log:         log,
	}
}

func (h *Hub) Register(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if old, exists := h.connections[userID]; exists && old != nil {
		_ = old.Close()
	}

	h.connections[userID] = conn
}

func (h *Hub) Unregister(userID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if conn, exists := h.connections[userID]; exists && conn != nil {
		_ = conn.Close()
		delete(h.connections, userID)
	}
}

// StatusChanged implements the notifier consumed by the lifecycle services.
func (h *Hub) StatusChanged(entity, id, oldStatus, newStatus string) {
	h.Broadcast(StatusEvent{
		Entity:    entity,
		ID:        id,
		OldStatus: oldStatus,
		NewStatus: newStatus,
		At:        timeutil.Now(),
	})
}

func (h *Hub) Broadcast(ev StatusEvent) {
	h.mu.RLock()
	conns := make(map[string]*websocket.Conn, len(h.connections))
	for id, conn := range h.connections {
		conns[id] = conn
	}
	h.mu.RUnlock()

	for userID, conn := range conns {
		if conn == nil {
			continue
		}
		if err := conn.WriteJSON(ev); err != nil {
			h.log.Warn("feed write failed, dropping connection",
				zap.String("user_id", userID),
				zap.Error(err),
			)
			h.Unregister(userID)
		}
	}
}

func (h *Hub) OnlineCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.connections)
}

func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for userID, conn := range h.connections {
		if conn != nil {
			_ = conn.Close()
		}
		delete(h.connections, userID)
	}
}
