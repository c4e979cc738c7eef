package handler

import (
	"net/http"
	"sync"
	"time"

	"github.com/critics-hub/yamdb/internal/broker"
	"github.com/critics-hub/yamdb/internal/middleware"
	"github.com/critics-hub/yamdb/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	maxSessionLifetime = 15 * time.Minute
	writeWait          = 10 * time.Second
	pongWait           = 60 * time.Second
	pingPeriod         = (pongWait * 9) / 10
	maxMessageSize     = 4 * 1024
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // add origin check in production
	},
}

// FeedHandler streams review and comment activity to websocket clients.
// The stream is read-only: clients never send anything but control frames,
// all writes go through the regular REST endpoints.
type FeedHandler struct {
	broker  broker.EventBroker
	clients map[*websocket.Conn]*feedClient
	mu      sync.RWMutex
}

type feedClient struct {
	conn        *websocket.Conn
	username    string
	connectedAt time.Time

	// Serializes writes: the broadcast fan-out and the per-client ping
	// loop share the connection, and gorilla allows a single writer.
	writeMu sync.Mutex
}

func (c *feedClient) writeJSON(v interface{}) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(v)
}

func (c *feedClient) writeMessage(messageType int, data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(messageType, data)
}

func NewFeedHandler(eventBroker broker.EventBroker) *FeedHandler {
	return &FeedHandler{
		broker:  eventBroker,
		clients: make(map[*websocket.Conn]*feedClient),
	}
}

// Run consumes the activity stream and fans events out to every connected
// client. It returns when the broker subscription closes.
func (h *FeedHandler) Run() error {
	events, err := h.broker.Subscribe()
	if err != nil {
		return err
	}

	go func() {
		for event := range events {
			h.broadcast(event)
		}
	}()

	return nil
}

// HandleFeed upgrades the connection and keeps it open until the client
// disconnects or the session lifetime is up.
// GET /api/v1/feed
func (h *FeedHandler) HandleFeed(c *gin.Context) {
	actor := middleware.Actor(c)
	if actor == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Log.Warn("Websocket upgrade failed",
			zap.String("username", actor.Username),
			zap.Error(err),
		)
		return
	}

	client := &feedClient{
		conn:        conn,
		username:    actor.Username,
		connectedAt: time.Now(),
	}

	h.mu.Lock()
	h.clients[conn] = client
	total := len(h.clients)
	h.mu.Unlock()

	logger.Log.Info("Feed client connected",
		zap.String("username", client.username),
		zap.Int("total", total),
	)

	defer h.removeClient(conn)

	h.serveClient(client)
}

func (h *FeedHandler) serveClient(client *feedClient) {
	client.conn.SetReadLimit(maxMessageSize)
	client.conn.SetReadDeadline(time.Now().Add(pongWait))
	client.conn.SetPongHandler(func(string) error {
		client.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	sessionTimer := time.NewTimer(maxSessionLifetime)
	defer sessionTimer.Stop()

	done := make(chan struct{})
	defer close(done)

	go h.pingClient(client, ticker, done)

	readErr := make(chan error, 1)
	go func() {
		// Drain the connection so control frames are processed; any data
		// frame from the client is ignored.
		for {
			if _, _, err := client.conn.ReadMessage(); err != nil {
				readErr <- err
				return
			}
		}
	}()

	select {
	case <-sessionTimer.C:
		h.closeClientGracefully(client, "session expired")
	case err := <-readErr:
		if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
			logger.Log.Warn("Feed connection error",
				zap.String("username", client.username),
				zap.Error(err),
			)
		}
	}
}

func (h *FeedHandler) broadcast(event broker.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.clients {
		if err := client.writeJSON(event); err != nil {
			// serveClient notices the broken connection and cleans up.
			logger.Log.Warn("Failed to send feed event", zap.Error(err))
		}
	}
}

func (h *FeedHandler) pingClient(client *feedClient, ticker *time.Ticker, done <-chan struct{}) {
	for {
		select {
		case <-ticker.C:
			if err := client.writeMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

func (h *FeedHandler) closeClientGracefully(client *feedClient, reason string) {
	client.writeMessage(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason),
	)
}

func (h *FeedHandler) removeClient(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	client, exists := h.clients[conn]
	if exists {
		delete(h.clients, conn)
		conn.Close()

		logger.Log.Info("Feed client disconnected",
			zap.String("username", client.username),
			zap.Duration("session", time.Since(client.connectedAt).Round(time.Second)),
			zap.Int("remaining", len(h.clients)),
		)
	}
}
