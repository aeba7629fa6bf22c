package stream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"regatta-server/pkg/logging"
	"regatta-server/pkg/metrics"
)

// Shared fixtures. The metrics collector registers against the global
// prometheus registry, so the package gets exactly one.
var (
	testLogger  = logging.NewStructuredLogger("stream-test", "0.0.0", logging.ErrorLevel)
	testMetrics = metrics.NewCollector("regatta_stream_test")
)

func dialHub(t *testing.T, hub *Hub) (*websocket.Conn, func()) {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(hub.HandleWebSocket))

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		server.Close()
		t.Fatalf("dial failed: %v", err)
	}

	return conn, func() {
		conn.Close()
		server.Close()
	}
}

func TestHub_BroadcastsToClient(t *testing.T) {
	broker := NewBroker()
	hub := NewHub(broker, testLogger, testMetrics)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	conn, cleanup := dialHub(t, hub)
	defer cleanup()

	// Registration is asynchronous; publish until the client is wired in.
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))

	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			select {
			case <-done:
				return
			case <-time.After(20 * time.Millisecond):
				broker.Publish(KeyConditions, map[string]string{"tick": "1"})
			}
		}
	}()

	var msg Message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("client read failed: %v", err)
	}
	if msg.Key != KeyConditions {
		t.Errorf("key = %q, want %q", msg.Key, KeyConditions)
	}
	if msg.At.IsZero() {
		t.Error("message carries no timestamp")
	}
}

func TestHub_PingKeepsConnectionAlive(t *testing.T) {
	broker := NewBroker()
	hub := NewHub(broker, testLogger, testMetrics)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	conn, cleanup := dialHub(t, hub)
	defer cleanup()

	pong := make(chan struct{}, 1)
	conn.SetPongHandler(func(string) error {
		select {
		case pong <- struct{}{}:
		default:
		}
		return nil
	})

	// The pong arrives on the read loop, so one must be running.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
		t.Fatalf("ping failed: %v", err)
	}

	select {
	case <-pong:
	case <-time.After(3 * time.Second):
		t.Fatal("no pong received")
	}
}

func TestHub_RejectsPlainHTTP(t *testing.T) {
	hub := NewHub(NewBroker(), testLogger, testMetrics)

	server := httptest.NewServer(http.HandlerFunc(hub.HandleWebSocket))
	defer server.Close()

	resp, err := http.Get(server.URL)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}
