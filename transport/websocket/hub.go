package websocket

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/wricardo/maze-solver/maze/service"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512

	// Pending broadcasts before step frames start being dropped.
	broadcastBuffer = 1024
)

// Outgoing event names.
const (
	EventStep          = "step"
	EventSolveComplete = "solve_complete"
	EventStateUpdate   = "state_update"
	EventError         = "error"
)

// ActionCancel is the only client action: stop the session's running solve.
const ActionCancel = "cancel"

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Message represents a WebSocket message
type Message struct {
	SessionID string      `json:"session_id"`
	Event     string      `json:"event"`
	Data      interface{} `json:"data,omitempty"`

	// to limits delivery to one client of the session.
	to *Client
}

// ClientMessage is what clients send to the server.
type ClientMessage struct {
	Action string `json:"action"`
}

// CancelFunc stops the running solve of a session.
type CancelFunc func(sessionID string) error

// Client represents a WebSocket client
type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	send      chan []byte
	sessionID string
}

// Hub maintains the set of active clients and broadcasts messages
type Hub struct {
	// Registered clients by session ID
	sessions map[string]map[*Client]bool

	// Outbound messages for a session
	broadcast chan *Message

	// Register requests from clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	onCancel CancelFunc
}

// NewHub creates a new WebSocket hub. onCancel handles client cancel
// requests and may be nil.
func NewHub(onCancel CancelFunc) *Hub {
	return &Hub{
		sessions:   make(map[string]map[*Client]bool),
		broadcast:  make(chan *Message, broadcastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		onCancel:   onCancel,
	}
}

// Run starts the hub's event loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastMessage(message)
		}
	}
}

// ServeWS upgrades the request and attaches the client to sessionID. A
// non-nil initial value is sent as a state_update before anything else.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, sessionID string, initial interface{}) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	client := &Client{
		hub:       h,
		conn:      conn,
		send:      make(chan []byte, 256),
		sessionID: sessionID,
	}

	if initial != nil {
		if data, err := json.Marshal(&Message{SessionID: sessionID, Event: EventStateUpdate, Data: initial}); err == nil {
			client.send <- data
		}
	}

	client.hub.register <- client

	go client.writePump()
	go client.readPump()
}

// BroadcastStep forwards a solve step. Frames are dropped rather than
// blocking the solver when the hub falls behind.
func (h *Hub) BroadcastStep(frame service.StepFrame) {
	message := &Message{SessionID: frame.SessionID, Event: EventStep, Data: frame}
	select {
	case h.broadcast <- message:
	default:
		log.Printf("WebSocket hub busy, dropped step %d for session %s", frame.Step.Index, frame.SessionID)
	}
}

// BroadcastSolveComplete announces the outcome of a solve.
func (h *Hub) BroadcastSolveComplete(result *service.SolveResult) {
	h.BroadcastEvent(result.SessionID, EventSolveComplete, result)
}

// BroadcastState sends the current grid to all clients in a session
func (h *Hub) BroadcastState(state *service.GridState) {
	h.BroadcastEvent(state.SessionID, EventStateUpdate, state)
}

// BroadcastEvent sends a custom event to all clients in a session
func (h *Hub) BroadcastEvent(sessionID string, event string, data interface{}) {
	h.broadcast <- &Message{
		SessionID: sessionID,
		Event:     event,
		Data:      data,
	}
}

// registerClient adds a client to a session
func (h *Hub) registerClient(client *Client) {
	if h.sessions[client.sessionID] == nil {
		h.sessions[client.sessionID] = make(map[*Client]bool)
	}
	h.sessions[client.sessionID][client] = true

	log.Printf("Client registered for session %s (total clients: %d)",
		client.sessionID, len(h.sessions[client.sessionID]))
}

// unregisterClient removes a client from a session
func (h *Hub) unregisterClient(client *Client) {
	if clients, ok := h.sessions[client.sessionID]; ok {
		if _, ok := clients[client]; ok {
			delete(clients, client)
			close(client.send)

			if len(clients) == 0 {
				delete(h.sessions, client.sessionID)
			}

			log.Printf("Client unregistered from session %s (remaining clients: %d)",
				client.sessionID, len(clients))
		}
	}
}

// broadcastMessage sends a message to all clients in a session
func (h *Hub) broadcastMessage(message *Message) {
	clients, ok := h.sessions[message.SessionID]
	if !ok {
		return
	}

	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("Failed to marshal broadcast message: %v", err)
		return
	}

	if message.to != nil {
		if clients[message.to] {
			h.deliver(message.to, data)
		}
		return
	}
	for client := range clients {
		h.deliver(client, data)
	}
}

// deliver queues data for client, dropping clients that fall behind. Only
// the hub goroutine sends on or closes client.send.
func (h *Hub) deliver(client *Client, data []byte) {
	select {
	case client.send <- data:
	default:
		h.unregisterClient(client)
	}
}

// handleClientMessage acts on a message read from the client.
func (c *Client) handleClientMessage(raw []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.reply(EventError, "malformed message")
		return
	}

	switch msg.Action {
	case ActionCancel:
		if c.hub.onCancel == nil {
			c.reply(EventError, "cancel is not supported")
			return
		}
		if err := c.hub.onCancel(c.sessionID); err != nil {
			c.reply(EventError, err.Error())
		}
	default:
		c.reply(EventError, "unknown action: "+msg.Action)
	}
}

// reply queues a message for this client only. The hub drops it if the
// client has already gone.
func (c *Client) reply(event string, data interface{}) {
	select {
	case c.hub.broadcast <- &Message{SessionID: c.sessionID, Event: event, Data: data, to: c}:
	default:
		log.Printf("WebSocket hub busy, dropped %s reply for session %s", event, c.sessionID)
	}
}

// readPump pumps messages from the WebSocket connection to the hub
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}
		c.handleClientMessage(message)
	}
}

// writePump pumps messages from the hub to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
