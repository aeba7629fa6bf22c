package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"regatta-server/pkg/logging"
	"regatta-server/pkg/metrics"
)

// Subjects published to downstream race-committee systems.
const (
	SubjectConditions = "regatta.conditions"
	SubjectNotices    = "regatta.notices"
	SubjectEntrants   = "regatta.entrants"
)

// Publisher pushes domain events onto NATS. Publishing is best effort:
// when the bus is unreachable events are silently skipped, never blocking
// the request path.
type Publisher struct {
	mu      sync.Mutex
	conn    *nats.Conn
	enabled bool

	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewPublisher creates a disconnected publisher.
func NewPublisher(logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *Publisher {
	return &Publisher{
		logger:  logger,
		metrics: metricsCollector,
	}
}

// Connect dials the NATS server with automatic reconnects.
func (p *Publisher) Connect(url string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	opts := []nats.Option{
		nats.Name("regatta-server"),
		nats.ReconnectWait(2 * time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			p.logger.Warn(context.Background(), "[NATS_DISCONNECT] Bus disconnected", logging.Fields{})
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			p.logger.Info(context.Background(), "[NATS_RECONNECT] Bus reconnected", logging.Fields{
				"url": nc.ConnectedUrl(),
			})
		}),
	}

	conn, err := nats.Connect(url, opts...)
	if err != nil {
		p.enabled = false
		return fmt.Errorf("failed to connect to nats: %w", err)
	}

	p.conn = conn
	p.enabled = true

	p.logger.Info(context.Background(), "[NATS_CONNECT] Bus connected", logging.Fields{
		"url": url,
	})

	return nil
}

// Publish serializes v and publishes it on subject. A disabled publisher
// is a no-op.
func (p *Publisher) Publish(subject string, v interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.enabled || p.conn == nil {
		return nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := p.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish on %s: %w", subject, err)
	}

	p.metrics.EventsPublishedTotal.WithLabelValues(subject).Inc()

	return nil
}

// IsConnected reports whether the bus connection is live.
func (p *Publisher) IsConnected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.enabled && p.conn != nil && p.conn.IsConnected()
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.conn != nil {
		p.conn.Close()
		p.conn = nil
		p.enabled = false
	}
}
