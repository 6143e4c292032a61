//go:build integration
// +build integration

package http_test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	handler "github.com/samirrijal/bikepark/internal/adapters/http"
	natsadapter "github.com/samirrijal/bikepark/internal/adapters/nats"
	"github.com/samirrijal/bikepark/internal/adapters/valkey"
	"github.com/samirrijal/bikepark/internal/core/domain"
	"github.com/samirrijal/bikepark/internal/core/usecases"
	"github.com/samirrijal/bikepark/internal/pkg/config"
)

// setupBackends connects to the NATS and Valkey instances named by the
// BIKEPARK_NATS_URL and BIKEPARK_VALKEY_ADDR environment variables.
func setupBackends(t *testing.T) (*config.Config, *natsadapter.Publisher, *natsadapter.Subscriber, *valkey.Cache) {
	t.Setenv("BIKEPARK_FEED_URL", "https://example.org/bike-parking.geojson")
	cfg, err := config.Load("bikepark-test")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.NATS.URL == "" || cfg.Valkey.Addr == "" {
		t.Skip("BIKEPARK_NATS_URL and BIKEPARK_VALKEY_ADDR must be set")
	}

	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		t.Fatalf("connect publisher: %v", err)
	}
	t.Cleanup(pub.Close)

	conn, err := natsadapter.RawConn(cfg.NATS.URL)
	if err != nil {
		t.Fatalf("connect subscriber: %v", err)
	}
	sub := natsadapter.NewSubscriber(conn)
	t.Cleanup(sub.Close)

	cache, err := valkey.New(cfg.Valkey.Addr, "bikepark-test:")
	if err != nil {
		t.Fatalf("connect valkey: %v", err)
	}
	t.Cleanup(cache.Close)

	return cfg, pub, sub, cache
}

func TestIntegration_Ready(t *testing.T) {
	_, pub, _, cache := setupBackends(t)
	deps := makeDeps(0, func(d *handler.Dependencies, env *testEnv) {
		d.Broker = pub
		d.Cache = cache
	})
	app := setupApp(deps)

	req := httptest.NewRequest("GET", "/v1/ready", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var result struct {
		Checks map[string]string `json:"checks"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&result)
	if result.Checks["nats"] != "ok" || result.Checks["cache"] != "ok" {
		t.Errorf("unexpected checks %v", result.Checks)
	}
}

func TestIntegration_FilterPublishesEvent(t *testing.T) {
	_, pub, sub, _ := setupBackends(t)
	app := setupApp(makeDeps(4))
	view := createSession(t, app)

	events := make(chan domain.SessionEvent, 4)
	unsubscribe, err := sub.SubscribeSession(view.ID, func(data []byte) {
		var evt domain.SessionEvent
		if json.Unmarshal(data, &evt) == nil {
			events <- evt
		}
	})
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer unsubscribe()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pub.PublishSessionEvent(ctx, &domain.SessionEvent{
		SessionID: view.ID,
		Kind:      domain.EventMarkersChanged,
		Payload:   []usecases.MarkerVisibility{{ID: "1", Attached: false}},
	}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	select {
	case evt := <-events:
		if evt.Kind != domain.EventMarkersChanged || evt.SessionID != view.ID {
			t.Errorf("unexpected event %+v", evt)
		}
	case <-ctx.Done():
		t.Fatal("timed out waiting for session event")
	}
}

func TestIntegration_CacheRoundTrip(t *testing.T) {
	_, _, _, cache := setupBackends(t)
	ctx := context.Background()

	if err := cache.Set(ctx, "geocode:pike place", []byte(`{"lat":47.6}`), 30); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := cache.Get(ctx, "geocode:pike place")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != `{"lat":47.6}` {
		t.Errorf("unexpected value %s", got)
	}
	_ = cache.Delete(ctx, "geocode:pike place")
}
