package stream

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"regatta-server/pkg/logging"
	"regatta-server/pkg/metrics"
)

const writeTimeout = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// The mobile client connects from app webviews with no stable origin.
		return true
	},
}

// Hub bridges broker subscriptions onto websocket connections. Every
// connected client receives every published message; clients filter by
// the message key.
type Hub struct {
	broker  *Broker
	logger  *logging.StructuredLogger
	metrics *metrics.Collector

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}

	register   chan *websocket.Conn
	unregister chan *websocket.Conn
}

// NewHub creates a websocket hub fed by the given broker.
func NewHub(broker *Broker, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *Hub {
	return &Hub{
		broker:     broker,
		logger:     logger,
		metrics:    metricsCollector,
		clients:    make(map[*websocket.Conn]struct{}),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
	}
}

// Run pumps broker messages to connected clients until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	conditions := h.broker.Subscribe(KeyConditions)
	defer conditions.Unsubscribe()
	notices := h.broker.Subscribe(KeyNotices)
	defer notices.Unsubscribe()
	entrants := h.broker.Subscribe(KeyEntrants)
	defer entrants.Unsubscribe()

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case conn := <-h.register:
			h.mu.Lock()
			h.clients[conn] = struct{}{}
			count := len(h.clients)
			h.mu.Unlock()

			h.metrics.StreamClients.Set(float64(count))
			h.logger.Debug(ctx, "[WS_CONNECT] Client connected", logging.Fields{
				"clients": count,
			})

		case conn := <-h.unregister:
			h.drop(ctx, conn)

		case msg := <-conditions.C:
			h.broadcast(ctx, msg)
		case msg := <-notices.C:
			h.broadcast(ctx, msg)
		case msg := <-entrants.C:
			h.broadcast(ctx, msg)
		}
	}
}

func (h *Hub) broadcast(ctx context.Context, msg Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.clients) == 0 {
		return
	}

	h.metrics.StreamBroadcastsTotal.WithLabelValues(msg.Key).Inc()

	for conn := range h.clients {
		conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteJSON(msg); err != nil {
			h.logger.Warn(ctx, "[WS_WRITE_ERROR] Dropping client", logging.Fields{
				"key": msg.Key,
			})
			conn.Close()
			delete(h.clients, conn)
		}
	}

	h.metrics.StreamClients.Set(float64(len(h.clients)))
}

func (h *Hub) drop(ctx context.Context, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[conn]; ok {
		conn.Close()
		delete(h.clients, conn)
		h.metrics.StreamClients.Set(float64(len(h.clients)))
		h.logger.Debug(ctx, "[WS_DISCONNECT] Client disconnected", logging.Fields{
			"clients": len(h.clients),
		})
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.clients {
		conn.Close()
		delete(h.clients, conn)
	}
	h.metrics.StreamClients.Set(0)
}

// HandleWebSocket upgrades an HTTP request and registers the connection.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	if !websocket.IsWebSocketUpgrade(r) {
		http.Error(w, "websocket upgrade required", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error(r.Context(), "[WS_UPGRADE_ERROR] Upgrade failed", logging.Fields{}, err)
		return
	}

	h.register <- conn

	// Read loop exists to detect disconnects. Pings are answered by the
	// connection's default ping handler, never from this goroutine.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				h.unregister <- conn
				return
			}
		}
	}()
}
