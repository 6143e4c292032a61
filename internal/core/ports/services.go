package ports

import (
	"context"

	"github.com/paulmach/orb/geojson"

	"github.com/samirrijal/bikepark/internal/core/domain"
)

// FeedSource fetches the GIS feed as a GeoJSON FeatureCollection.
type FeedSource interface {
	FetchFeatures(ctx context.Context, feedURL string) (*geojson.FeatureCollection, error)
}

// Geocoder resolves free-text addresses. A non-OK service status is
// returned as *domain.GeocodeError.
type Geocoder interface {
	Name() string
	Geocode(ctx context.Context, address string) (*domain.GeocodeResult, error)
}

// DirectionsProvider computes routes. A non-OK service status is returned
// as *domain.DirectionsError.
type DirectionsProvider interface {
	Route(ctx context.Context, origin, destination domain.GeoPoint, mode domain.TravelMode) (*domain.RouteResult, error)
}

// EventPublisher publishes session events to a message broker.
type EventPublisher interface {
	PublishSessionEvent(ctx context.Context, event *domain.SessionEvent) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}
