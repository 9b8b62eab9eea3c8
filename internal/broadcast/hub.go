package broadcast

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
)

// Hub осуществляет fan-out событий всем подключённым клиентам.
// Рассылка неблокирующая: медленный дашборд с переполненным буфером
// отключается, а не тормозит конвейер обработки позиций.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
	logger  *logrus.Logger

	register   chan *Client
	unregister chan *Client
	events     chan Event
}

func NewHub(logger *logrus.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		logger:     logger,
		register:   make(chan *Client),
		unregister: make(chan *Client),
		events:     make(chan Event, 256),
	}
}

// Run обслуживает регистрацию клиентов и рассылку событий до отмены контекста
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c.sessionID] = c
			h.mu.Unlock()
		case c := <-h.unregister:
			h.mu.Lock()
			if cur, ok := h.clients[c.sessionID]; ok && cur == c {
				delete(h.clients, c.sessionID)
			}
			h.mu.Unlock()
			c.closeSend()
		case ev := <-h.events:
			h.fanOut(ev)
		}
	}
}

// Broadcast публикует событие всем подписчикам. Не блокируется: при
// переполненной очереди хаба событие отбрасывается с логом.
func (h *Hub) Broadcast(eventType string, payload any) {
	select {
	case h.events <- Event{Type: eventType, Payload: payload}:
	default:
		h.logger.WithField("event", eventType).Warn("Hub event queue full, dropping event")
	}
}

// SendTo доставляет событие одному клиенту (ответ на sos-create, incident-sync).
// Неизвестный sessionID - no-op.
func (h *Hub) SendTo(sessionID, eventType string, payload any) {
	h.mu.RLock()
	c, ok := h.clients[sessionID]
	h.mu.RUnlock()
	if !ok {
		return
	}
	data, valid := Event{Type: eventType, Payload: payload}.marshal()
	if !valid {
		h.logger.WithField("event", eventType).Error("Failed to marshal event payload")
		return
	}
	c.enqueue(data)
}

func (h *Hub) fanOut(ev Event) {
	data, valid := ev.marshal()
	if !valid {
		h.logger.WithField("event", ev.Type).Error("Failed to marshal event payload")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		if !c.enqueue(data) {
			h.logger.WithField("session_id", c.sessionID).Warn("Client send buffer full, dropping connection")
			go c.conn.Close()
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, c := range h.clients {
		c.closeSend()
	}
	h.clients = make(map[string]*Client)
}
