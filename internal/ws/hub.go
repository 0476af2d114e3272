package ws

import (
	"sync"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Client ties a websocket connection to the authenticated user behind it so
// notifications can be delivered per recipient.
type Client struct {
	Conn   *websocket.Conn
	UserID uuid.UUID
}

// Direct is a payload addressed to a set of users.
type Direct struct {
	UserIDs []uuid.UUID
	Payload []byte
}

type Hub struct {
	clients    map[*websocket.Conn]uuid.UUID
	Register   chan Client
	Unregister chan *websocket.Conn
	Broadcast  chan []byte
	Send       chan Direct
	mutex      sync.Mutex
	log        *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[*websocket.Conn]uuid.UUID),
		Register:   make(chan Client),
		Unregister: make(chan *websocket.Conn),
		Broadcast:  make(chan []byte),
		Send:       make(chan Direct, 64),
		log:        log,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mutex.Lock()
			h.clients[client.Conn] = client.UserID
			h.mutex.Unlock()
			h.log.Debug("ws client connected", zap.String("user_id", client.UserID.String()))

		case conn := <-h.Unregister:
			h.mutex.Lock()
			if _, ok := h.clients[conn]; ok {
				delete(h.clients, conn)
				conn.Close()
			}
			h.mutex.Unlock()

		case message := <-h.Broadcast:
			h.mutex.Lock()
			for conn := range h.clients {
				if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
					conn.Close()
					delete(h.clients, conn)
				}
			}
			h.mutex.Unlock()

		case direct := <-h.Send:
			targets := make(map[uuid.UUID]bool, len(direct.UserIDs))
			for _, id := range direct.UserIDs {
				targets[id] = true
			}
			h.mutex.Lock()
			for conn, userID := range h.clients {
				if !targets[userID] {
					continue
				}
				if err := conn.WriteMessage(websocket.TextMessage, direct.Payload); err != nil {
					conn.Close()
					delete(h.clients, conn)
				}
			}
			h.mutex.Unlock()
		}
	}
}
