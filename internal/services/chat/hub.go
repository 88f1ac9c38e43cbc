package chat

import (
	"sync"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

// Hub keeps one room per booking and broadcasts persisted messages to
// the sockets currently joined to that room.
type Hub struct {
	mu     sync.RWMutex
	rooms  map[uint]map[*websocket.Conn]bool
	logger *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		rooms:  make(map[uint]map[*websocket.Conn]bool),
		logger: logger,
	}
}

// Join adds a connection to a booking room.
func (h *Hub) Join(bookingID uint, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[bookingID] == nil {
		h.rooms[bookingID] = make(map[*websocket.Conn]bool)
	}
	h.rooms[bookingID][conn] = true
}

// Leave removes a connection and drops the room when it empties.
func (h *Hub) Leave(bookingID uint, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.rooms[bookingID], conn)
	if len(h.rooms[bookingID]) == 0 {
		delete(h.rooms, bookingID)
	}
}

// Broadcast sends payload to every socket in the booking's room. A dead
// socket is skipped; its reader goroutine cleans it up on Leave.
func (h *Hub) Broadcast(bookingID uint, payload interface{}) {
	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.rooms[bookingID]))
	for conn := range h.rooms[bookingID] {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	for _, conn := range conns {
		if err := conn.WriteJSON(payload); err != nil {
			h.logger.Debug("websocket write failed", zap.Error(err))
		}
	}
}
