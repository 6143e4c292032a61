package usecases_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/samirrijal/bikepark/internal/core/domain"
	"github.com/samirrijal/bikepark/internal/core/usecases"
)

// --- Mock SessionRepository ---

type mockSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*domain.Session
}

func newMockSessionRepo() *mockSessionRepo {
	return &mockSessionRepo{sessions: make(map[string]*domain.Session)}
}

func (m *mockSessionRepo) Save(ctx context.Context, s *domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
	return nil
}

func (m *mockSessionRepo) Get(ctx context.Context, id string) (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return s, nil
}

func (m *mockSessionRepo) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return domain.ErrSessionNotFound
	}
	delete(m.sessions, id)
	return nil
}

func (m *mockSessionRepo) DeleteIdle(ctx context.Context, cutoff time.Time) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []string
	for id, s := range m.sessions {
		if s.LastSeen.Before(cutoff) {
			delete(m.sessions, id)
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (m *mockSessionRepo) Count(ctx context.Context) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// --- Mock FeedSource ---

type mockFeed struct {
	calls   int
	fetchFn func(ctx context.Context, url string) (*geojson.FeatureCollection, error)
}

func (m *mockFeed) FetchFeatures(ctx context.Context, url string) (*geojson.FeatureCollection, error) {
	m.calls++
	if m.fetchFn != nil {
		return m.fetchFn(ctx, url)
	}
	return geojson.NewFeatureCollection(), nil
}

// --- Mock Geocoder ---

type mockGeocoder struct {
	calls     int
	geocodeFn func(ctx context.Context, address string) (*domain.GeocodeResult, error)
}

func (m *mockGeocoder) Name() string { return "mock" }

func (m *mockGeocoder) Geocode(ctx context.Context, address string) (*domain.GeocodeResult, error) {
	m.calls++
	if m.geocodeFn != nil {
		return m.geocodeFn(ctx, address)
	}
	return nil, &domain.GeocodeError{Address: address, Status: "ZERO_RESULTS"}
}

// --- Mock DirectionsProvider ---

type mockDirections struct {
	calls   int
	routeFn func(ctx context.Context, origin, dest domain.GeoPoint, mode domain.TravelMode) (*domain.RouteResult, error)
}

func (m *mockDirections) Route(ctx context.Context, origin, dest domain.GeoPoint, mode domain.TravelMode) (*domain.RouteResult, error) {
	m.calls++
	if m.routeFn != nil {
		return m.routeFn(ctx, origin, dest, mode)
	}
	return &domain.RouteResult{Path: []domain.GeoPoint{origin, dest}}, nil
}

// --- Mock EventPublisher ---

type mockPublisher struct {
	mu     sync.Mutex
	events []*domain.SessionEvent
}

func (m *mockPublisher) PublishSessionEvent(ctx context.Context, evt *domain.SessionEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, evt)
	return nil
}

func (m *mockPublisher) kinds() []domain.EventKind {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.EventKind, len(m.events))
	for i, e := range m.events {
		out[i] = e.Kind
	}
	return out
}

// --- Mock CacheService ---

type mockCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMockCache() *mockCache {
	return &mockCache{data: make(map[string][]byte)}
}

func (m *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, fmt.Errorf("cache miss: %s", key)
	}
	return v, nil
}

func (m *mockCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// --- Fixtures ---

// pointFeature builds a feed feature at lat/lng with the given properties.
func pointFeature(id int, lat, lng float64, props map[string]any) *geojson.Feature {
	f := geojson.NewFeature(orb.Point{lng, lat})
	f.ID = float64(id)
	for k, v := range props {
		f.Properties[k] = v
	}
	return f
}

// featureCollection builds n features; every even one is lit.
func featureCollection(n int) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for i := 0; i < n; i++ {
		lighting := "No"
		if i%2 == 0 {
			lighting = "Yes"
		}
		fc.Append(pointFeature(i+1, 47.60+float64(i)*0.001, -122.33-float64(i)*0.001, map[string]any{
			usecases.PropName:           fmt.Sprintf("Rack %d", i+1),
			usecases.PropAddress:        fmt.Sprintf("%d Pine St", 100+i),
			usecases.PropNearbyLighting: lighting,
		}))
	}
	return fc
}

type fixture struct {
	repo       *mockSessionRepo
	feed       *mockFeed
	geocoder   *mockGeocoder
	directions *mockDirections
	publisher  *mockPublisher

	sessions *usecases.SessionService
	filter   *usecases.FilterService
	geocode  *usecases.GeocodingService
	route    *usecases.DirectionsService
}

func newFixture(fc *geojson.FeatureCollection) *fixture {
	f := &fixture{
		repo: newMockSessionRepo(),
		feed: &mockFeed{fetchFn: func(ctx context.Context, url string) (*geojson.FeatureCollection, error) {
			return fc, nil
		}},
		geocoder:   &mockGeocoder{},
		directions: &mockDirections{},
		publisher:  &mockPublisher{},
	}
	store := usecases.NewLocationStore(f.feed, nil, 0)
	f.sessions = usecases.NewSessionService(f.repo, store, usecases.NewMarkerPresenter(), f.publisher, usecases.SessionOptions{
		FeedURL:  "https://example.org/bike-parking.geojson",
		Viewport: domain.Viewport{Center: domain.GeoPoint{Lat: 47.6062, Lng: -122.3321}, Zoom: 13},
		IdleTTL:  time.Hour,
	})
	f.filter = usecases.NewFilterService(f.repo, f.publisher)
	f.geocode = usecases.NewGeocodingService(f.repo, f.geocoder, nil, f.publisher, 0)
	f.route = usecases.NewDirectionsService(f.repo, f.directions, f.publisher)
	return f
}
