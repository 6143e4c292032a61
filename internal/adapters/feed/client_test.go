package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const sampleFeed = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "id": 1, "geometry": {"type": "Point", "coordinates": [-122.335, 47.608]},
     "properties": {"NAME": "Pike Place", "NEARBY_LIGHTING": "Yes"}},
    {"type": "Feature", "id": 2, "geometry": {"type": "Point", "coordinates": [-122.320, 47.615]},
     "properties": {"NAME": "Capitol Hill"}}
  ]
}`

func TestClient_FetchFeatures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); ua != "bikepark-test" {
			t.Errorf("expected user agent bikepark-test, got %q", ua)
		}
		w.Header().Set("Content-Type", "application/geo+json")
		_, _ = w.Write([]byte(sampleFeed))
	}))
	defer srv.Close()

	c := NewClient(5*time.Second, "bikepark-test")
	fc, err := c.FetchFeatures(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fc.Features) != 2 {
		t.Fatalf("expected 2 features, got %d", len(fc.Features))
	}
	if fc.Features[0].Properties["NAME"] != "Pike Place" {
		t.Errorf("unexpected NAME %v", fc.Features[0].Properties["NAME"])
	}
}

func TestClient_FetchFeatures_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(5*time.Second, "")
	if _, err := c.FetchFeatures(context.Background(), srv.URL); err == nil {
		t.Fatal("expected error for 503 response")
	}
}

func TestClient_FetchFeatures_Malformed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"type": "FeatureCollection", "features": [`))
	}))
	defer srv.Close()

	c := NewClient(5*time.Second, "")
	if _, err := c.FetchFeatures(context.Background(), srv.URL); err == nil {
		t.Fatal("expected decode error")
	}
}
