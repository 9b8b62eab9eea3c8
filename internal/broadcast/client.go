package broadcast

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
	sendBufferSize = 64
)

// MessageHandler обрабатывает входящие сообщения клиента. Сообщения одного
// клиента обрабатываются последовательно в его read-горутине: порядок
// отчётов о позиции внутри сессии гарантирован.
type MessageHandler interface {
	HandleMessage(sessionID string, data []byte)
	HandleConnect(sessionID string)
	HandleDisconnect(sessionID string)
}

// Client - одно websocket-подключение (турист либо дашборд)
type Client struct {
	sessionID string
	hub       *Hub
	conn      *websocket.Conn
	handler   MessageHandler

	sendMu sync.Mutex
	send   chan []byte
	closed bool
}

// Attach регистрирует новое подключение в хабе, назначает ему эфемерный
// идентификатор сессии и запускает читающую и пишущую горутины.
func (h *Hub) Attach(conn *websocket.Conn, handler MessageHandler) *Client {
	c := &Client{
		sessionID: uuid.NewString(),
		hub:       h,
		conn:      conn,
		handler:   handler,
		send:      make(chan []byte, sendBufferSize),
	}
	h.register <- c

	go c.writePump()
	go c.readPump()

	handler.HandleConnect(c.sessionID)
	return c
}

// SessionID возвращает идентификатор сессии подключения
func (c *Client) SessionID() string {
	return c.sessionID
}

// enqueue кладёт кадр в буфер отправки; false при переполнении или закрытии
func (c *Client) enqueue(data []byte) bool {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.closed {
		return true
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

func (c *Client) closeSend() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
		c.handler.HandleDisconnect(c.sessionID)
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		c.handler.HandleMessage(c.sessionID, data)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
