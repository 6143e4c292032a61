package natsadapter

import (
	"fmt"
	"sync"

	"github.com/nats-io/nats.go"
)

// Subscriber relays session events to in-process listeners such as the
// WebSocket handler. It uses core NATS subscriptions, so listeners only
// see events published while they are attached.
type Subscriber struct {
	conn *nats.Conn

	mu   sync.Mutex
	subs map[*nats.Subscription]struct{}
}

// NewSubscriber wraps an existing connection.
func NewSubscriber(conn *nats.Conn) *Subscriber {
	return &Subscriber{conn: conn, subs: make(map[*nats.Subscription]struct{})}
}

// SubscribeSession calls fn with the raw JSON of every event of sessionID.
// The returned function cancels the subscription.
func (s *Subscriber) SubscribeSession(sessionID string, fn func(data []byte)) (func(), error) {
	sub, err := s.conn.Subscribe(SessionWildcard(sessionID), func(msg *nats.Msg) {
		fn(msg.Data)
	})
	if err != nil {
		return nil, fmt.Errorf("subscribe session %s: %w", sessionID, err)
	}

	s.mu.Lock()
	s.subs[sub] = struct{}{}
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, sub)
		s.mu.Unlock()
		_ = sub.Unsubscribe()
	}, nil
}

// Connected reports whether the connection is up.
func (s *Subscriber) Connected() bool {
	return s.conn.IsConnected()
}

// Close unsubscribes and drains.
func (s *Subscriber) Close() {
	s.mu.Lock()
	for sub := range s.subs {
		_ = sub.Unsubscribe()
	}
	s.subs = map[*nats.Subscription]struct{}{}
	s.mu.Unlock()
	_ = s.conn.Drain()
}
