package websocket

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"

	"ulemsee/internal/models"
)

const (
	historyChannel = "history_updates"

	// Pending messages per connection before a slow reader is dropped.
	sendBufferSize = 16
	writeWait      = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// connection owns one websocket. Only its writer goroutine writes to conn.
type connection struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub pushes history events to every connected websocket. With a Redis
// client, events go through pub/sub so every server instance sees them.
type Hub struct {
	mu          sync.Mutex
	connections map[*connection]struct{}
	redisClient *redis.Client
}

func NewHub(redisClient *redis.Client) *Hub {
	return &Hub{
		connections: make(map[*connection]struct{}),
		redisClient: redisClient,
	}
}

// Run relays pub/sub messages to local connections until ctx is done. It
// returns immediately when no Redis client is configured.
func (h *Hub) Run(ctx context.Context) {
	if h.redisClient == nil {
		return
	}

	pubsub := h.redisClient.Subscribe(ctx, historyChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			h.broadcast([]byte(msg.Payload))
		}
	}
}

// Publish never waits on websocket clients; slow ones are disconnected.
func (h *Hub) Publish(ctx context.Context, event models.HistoryEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("failed to marshal history event: %v", err)
		return
	}

	if h.redisClient != nil {
		err := h.redisClient.Publish(ctx, historyChannel, string(data)).Err()
		if err == nil {
			return
		}
		log.Printf("failed to publish history event to Redis, delivering locally: %v", err)
	}

	h.broadcast(data)
}

func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	c := &connection{conn: conn, send: make(chan []byte, sendBufferSize)}
	h.register(c)

	go h.writeLoop(c)
	go h.readLoop(c)
}

func (h *Hub) ConnectionCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.connections)
}

func (h *Hub) register(c *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.connections[c] = struct{}{}
	log.Printf("WebSocket connected (total: %d)", len(h.connections))
}

// unregister closes c.send once; the writer then closes the socket.
func (h *Hub) unregister(c *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

func (h *Hub) removeLocked(c *connection) {
	if _, ok := h.connections[c]; !ok {
		return
	}
	delete(h.connections, c)
	close(c.send)
	log.Printf("WebSocket disconnected (total: %d)", len(h.connections))
}

// readLoop discards client messages and detects disconnects.
func (h *Hub) readLoop(c *connection) {
	defer h.unregister(c)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writeLoop(c *connection) {
	defer func() {
		h.unregister(c)
		c.conn.Close()
	}()

	for data := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
	}
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

func (h *Hub) broadcast(data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.connections {
		select {
		case c.send <- data:
		default:
			log.Printf("WebSocket client is not keeping up, disconnecting")
			h.removeLocked(c)
		}
	}
}
