package controller

import (
	"log"
	"sync"

	"github.com/gofiber/websocket/v2"

	"github.com/ismail6385/primeuaeservices-sub000/models"
)

// TicketHub fans newly created tickets out to connected admin sessions so
// the inbox updates without polling.
type TicketHub struct {
	mu     sync.Mutex
	conns  map[*websocket.Conn]struct{}
	Logger *log.Logger
}

func NewTicketHub(logger *log.Logger) *TicketHub {
	return &TicketHub{
		conns:  make(map[*websocket.Conn]struct{}),
		Logger: logger,
	}
}

// BroadcastTicket pushes a ticket to every connected session. Dead
// connections are dropped on write failure.
func (h *TicketHub) BroadcastTicket(ticket models.Ticket) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.conns {
		msg := struct {
			Type   string        `json:"type"`
			Ticket models.Ticket `json:"ticket"`
		}{
			Type:   "ticket.created",
			Ticket: ticket,
		}
		if err := conn.WriteJSON(msg); err != nil {
			h.Logger.Printf("ticket feed: dropping connection: %v", err)
			conn.Close()
			delete(h.conns, conn)
		}
	}
}

// HandleFeed keeps a connection registered until the client goes away.
func (h *TicketHub) HandleFeed(c *websocket.Conn) {
	h.mu.Lock()
	h.conns[c] = struct{}{}
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.conns, c)
		h.mu.Unlock()
		c.Close()
	}()

	// Read loop only to detect disconnects; clients don't send anything
	for {
		if _, _, err := c.ReadMessage(); err != nil {
			return
		}
	}
}
