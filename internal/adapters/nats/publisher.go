package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/bikepark/internal/core/domain"
	"github.com/samirrijal/bikepark/internal/pkg/metrics"
)

// SubjectPrefix is the root of every session event subject.
const SubjectPrefix = "bikepark.session."

// SessionSubject returns the subject an event of kind is published on.
func SessionSubject(sessionID string, kind domain.EventKind) string {
	return SubjectPrefix + sessionID + "." + string(kind)
}

// SessionWildcard matches every event of one session.
func SessionWildcard(sessionID string) string {
	return SubjectPrefix + sessionID + ".>"
}

// Publisher implements ports.EventPublisher using NATS JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS and enables JetStream.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	cfg := nats.StreamConfig{
		Name:      "SESSION_EVENTS",
		Subjects:  []string{SubjectPrefix + ">"},
		Retention: nats.InterestPolicy,
		MaxAge:    1 * time.Hour,
		Storage:   nats.MemoryStorage,
	}
	if _, err := js.AddStream(&cfg); err != nil {
		// Stream may already exist, try update
		if _, err := js.UpdateStream(&cfg); err != nil {
			return nil, fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
		}
	}

	return &Publisher{conn: conn, js: js}, nil
}

// PublishSessionEvent publishes evt on its session subject.
func (p *Publisher) PublishSessionEvent(ctx context.Context, evt *domain.SessionEvent) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	if _, err := p.js.Publish(SessionSubject(evt.SessionID, evt.Kind), data, nats.Context(ctx)); err != nil {
		return err
	}
	metrics.EventsPublished.WithLabelValues(string(evt.Kind)).Inc()
	return nil
}

// Connected reports whether the connection is up.
func (p *Publisher) Connected() bool {
	return p.conn.IsConnected()
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// RawConn creates a plain NATS connection for subscribing (e.g. WebSocket relay).
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.Name("bikepark"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}
