package stream

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second

	// Viewer clients only listen; inbound frames are pongs at most.
	maxMessageSize = 512
)

// WSMessage is the stream's wire envelope. The scene snapshot arrives
// as the first message (type "snapshot"), followed by live scene ops.
type WSMessage struct {
	Type      string    `json:"type"`
	Payload   any       `json:"payload,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Client is one connected map viewer.
type Client struct {
	id       string
	hub      *Hub
	conn     *websocket.Conn
	send     chan []byte
	snapshot func() any
}

// Hub fans scene operations out to every connected viewer.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 256),
	}
}

// Run owns the client set. It exits when ctx is cancelled, closing
// every remaining connection.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			return

		case client := <-h.register:
			// The snapshot is captured here, on the loop, so no op
			// broadcast after the capture can slip past the client.
			data, err := json.Marshal(WSMessage{
				Type:      "snapshot",
				Payload:   client.snapshot(),
				Timestamp: time.Now(),
			})
			if err != nil {
				log.Printf("op=stream.snapshot client=%s err=%v", client.id, err)
				close(client.send)
				continue
			}

			client.send <- data
			h.clients[client] = true
			log.Printf("op=stream.register client=%s clients=%d", client.id, len(h.clients))

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				log.Printf("op=stream.unregister client=%s clients=%d", client.id, len(h.clients))
			}

		case data := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- data:
				default:
					close(client.send)
					delete(h.clients, client)
				}
			}
		}
	}
}

// Broadcast queues one message for every connected viewer. It never
// blocks: when the hub queue is full the message is dropped and clients
// recover from the next snapshot.
func (h *Hub) Broadcast(messageType string, payload any) {
	data, err := json.Marshal(WSMessage{
		Type:      messageType,
		Payload:   payload,
		Timestamp: time.Now(),
	})
	if err != nil {
		log.Printf("op=stream.broadcast err=%v", err)
		return
	}

	select {
	case h.broadcast <- data:
	default:
		log.Printf("op=stream.broadcast msg=%s dropped=1", messageType)
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The viewer is served from arbitrary dev hosts; the stream carries
	// no privileged data.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWS upgrades the request and attaches the viewer to the hub.
// snapshot is called during registration and its result is queued as
// the client's first message, ahead of any later op.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, snapshot func() any) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("op=stream.upgrade err=%v", err)
		return
	}

	client := &Client{
		id:       uuid.NewString(),
		hub:      h,
		conn:     conn,
		send:     make(chan []byte, 64),
		snapshot: snapshot,
	}

	h.register <- client

	go client.writePump()
	go client.readPump()
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				// Hub closed the channel.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Flush whatever else is queued into the same frame.
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, []byte{}); err != nil {
				return
			}
		}
	}
}

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
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("op=stream.read client=%s err=%v", c.id, err)
			}
			break
		}
		// Inbound frames from viewers carry nothing actionable.
	}
}
