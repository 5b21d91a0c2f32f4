package ws

import (
	"log/slog"
	"sync"

	"mediqa/casesim/internal/logging"

	"github.com/goccy/go-json"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	MsgState MessageType = "state"
	MsgError MessageType = "error"
)

// Message is the WebSocket envelope format
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Hub fans controller state out to the live connections of each tab
type Hub struct {
	// tabID -> connections; a tab may be open in more than one socket while reconnecting
	conns map[string]map[*Connection]bool

	mu     sync.RWMutex
	logger *slog.Logger

	// Channels for coordination
	register   chan *Connection
	unregister chan *Connection
	disconnect chan string
	broadcast  chan *BroadcastMessage
	done       chan struct{}
	stopOnce   sync.Once
}

// Connection represents a WebSocket connection
type Connection struct {
	TabID string
	Send  chan []byte
	Hub   *Hub
}

// BroadcastMessage is a message to broadcast. A non-nil Conn narrows delivery
// to that connection.
type BroadcastMessage struct {
	TabID   string
	Conn    *Connection
	Message *Message
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	h := &Hub{
		conns:      make(map[string]map[*Connection]bool),
		logger:     logging.New("ws"),
		register:   make(chan *Connection),
		unregister: make(chan *Connection),
		disconnect: make(chan string),
		broadcast:  make(chan *BroadcastMessage, 256),
		done:       make(chan struct{}),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case <-h.done:
			h.mu.Lock()
			for tabID := range h.conns {
				h.dropTabLocked(tabID)
			}
			h.mu.Unlock()
			return

		case conn := <-h.register:
			h.mu.Lock()
			if h.conns[conn.TabID] == nil {
				h.conns[conn.TabID] = make(map[*Connection]bool)
			}
			h.conns[conn.TabID][conn] = true
			h.mu.Unlock()
			h.logger.Info("tab connected", slog.String("tab_id", conn.TabID))

		case conn := <-h.unregister:
			h.mu.Lock()
			if tab, ok := h.conns[conn.TabID]; ok && tab[conn] {
				delete(tab, conn)
				close(conn.Send)
				if len(tab) == 0 {
					delete(h.conns, conn.TabID)
				}
				h.logger.Info("tab disconnected", slog.String("tab_id", conn.TabID))
			}
			h.mu.Unlock()

		case tabID := <-h.disconnect:
			h.mu.Lock()
			h.dropTabLocked(tabID)
			h.mu.Unlock()

		case msg := <-h.broadcast:
			data, err := json.Marshal(msg.Message)
			if err != nil {
				h.logger.Error("failed to encode message", slog.String("tab_id", msg.TabID), slog.Any("error", err))
				continue
			}
			h.mu.RLock()
			for conn := range h.conns[msg.TabID] {
				if msg.Conn != nil && msg.Conn != conn {
					continue
				}
				select {
				case conn.Send <- data:
				default:
					// Drop message if buffer full
				}
			}
			h.mu.RUnlock()
		}
	}
}

func (h *Hub) dropTabLocked(tabID string) {
	for conn := range h.conns[tabID] {
		close(conn.Send)
	}
	delete(h.conns, tabID)
}

// Register adds a connection
func (h *Hub) Register(conn *Connection) {
	select {
	case h.register <- conn:
	case <-h.done:
		close(conn.Send)
	}
}

// Unregister removes a connection
func (h *Hub) Unregister(conn *Connection) {
	select {
	case h.unregister <- conn:
	case <-h.done:
	}
}

// BroadcastToTab sends a message to every connection of a tab (implements service.Broadcaster)
func (h *Hub) BroadcastToTab(tabID string, msgType string, payload interface{}) {
	h.enqueue(tabID, nil, MessageType(msgType), payload)
}

// SendTo sends a message to a single registered connection. It is ordered
// with the tab's broadcasts.
func (h *Hub) SendTo(conn *Connection, msgType MessageType, payload interface{}) {
	h.enqueue(conn.TabID, conn, msgType, payload)
}

func (h *Hub) enqueue(tabID string, conn *Connection, msgType MessageType, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("failed to encode payload", slog.String("tab_id", tabID), slog.Any("error", err))
		return
	}
	select {
	case h.broadcast <- &BroadcastMessage{
		TabID: tabID,
		Conn:  conn,
		Message: &Message{
			Type:    msgType,
			Payload: data,
		},
	}:
	case <-h.done:
	}
}

// DisconnectTab closes every connection of a tab (implements service.Broadcaster)
func (h *Hub) DisconnectTab(tabID string) {
	select {
	case h.disconnect <- tabID:
	case <-h.done:
	}
}

// ConnectionCount returns the number of live connections of a tab
func (h *Hub) ConnectionCount(tabID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns[tabID])
}

// Stop closes all connections and stops the hub
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}
