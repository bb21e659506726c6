package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/noobcash/noobcash-go/pkg/logging"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Event is a single message pushed to every connected /ws/events
// client: a transaction accepted into the mempool, or a block sealed
// onto the chain.
type Event struct {
	Type      string `json:"type"`
	Data      any    `json:"data"`
	Timestamp int64  `json:"timestamp"`
}

// EventHub fans node.EventSink notifications out to connected
// WebSocket clients. It implements node.EventSink.
type EventHub struct {
	mu        sync.RWMutex
	clients   map[*wsClient]struct{}
	broadcast chan Event
	log       *logging.Logger
}

type wsClient struct {
	conn *websocket.Conn
	send chan []byte
}

// NewEventHub returns a running EventHub; its dispatch loop starts
// immediately in a background goroutine.
func NewEventHub() *EventHub {
	h := &EventHub{
		clients:   make(map[*wsClient]struct{}),
		broadcast: make(chan Event, 256),
		log:       logging.GetDefault().Component("events"),
	}
	go h.run()
	return h
}

func (h *EventHub) run() {
	for event := range h.broadcast {
		data, err := json.Marshal(event)
		if err != nil {
			h.log.Error("failed to marshal event", "error", err)
			continue
		}

		h.mu.RLock()
		for c := range h.clients {
			select {
			case c.send <- data:
			default:
			}
		}
		h.mu.RUnlock()
	}
}

// Emit implements node.EventSink.
func (h *EventHub) Emit(eventType string, payload any) {
	event := Event{Type: eventType, Data: payload, Timestamp: time.Now().Unix()}
	select {
	case h.broadcast <- event:
	default:
		h.log.Warn("event channel full, dropping event", "type", eventType)
	}
}

// ServeWS upgrades the connection and streams events to it until the
// client disconnects.
func (h *EventHub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("websocket upgrade failed", "error", err)
		return
	}

	client := &wsClient{conn: conn, send: make(chan []byte, 64)}

	h.mu.Lock()
	h.clients[client] = struct{}{}
	h.mu.Unlock()

	go h.writePump(client)
	go h.readPump(client)
}

func (h *EventHub) readPump(c *wsClient) {
	defer h.disconnect(c)
	c.conn.SetReadLimit(4096)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *EventHub) writePump(c *wsClient) {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *EventHub) disconnect(c *wsClient) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}
