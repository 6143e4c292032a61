package http

import (
	"context"
	"time"

	"github.com/samirrijal/bikepark/internal/core/usecases"
)

// Pinger is a backing service that can be health-checked.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Broker reports message broker connectivity.
type Broker interface {
	Connected() bool
}

// SessionEvents streams the raw JSON events of one session.
type SessionEvents interface {
	SubscribeSession(sessionID string, fn func(data []byte)) (func(), error)
}

// Dependencies holds all services needed by HTTP handlers. Cache, Broker
// and Events are nil when the backing service is not configured.
type Dependencies struct {
	Sessions   *usecases.SessionService
	Filter     *usecases.FilterService
	Geocoding  *usecases.GeocodingService
	Directions *usecases.DirectionsService
	Locations  *usecases.LocationStore
	FeedURL    string

	Cache  Pinger
	Broker Broker
	Events SessionEvents

	RequestTimeout time.Duration
	Version        string
}
