package nominatim

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/samirrijal/bikepark/internal/core/domain"
)

func TestClient_Geocode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("q") != "400 Broad St, Seattle" {
			t.Errorf("unexpected query %q", r.URL.Query().Get("q"))
		}
		if r.Header.Get("User-Agent") != "bikepark-test" {
			t.Errorf("missing user agent")
		}
		_, _ = w.Write([]byte(`[{"lat":"47.6205","lon":"-122.3493","display_name":"Space Needle, Seattle"}]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "bikepark-test", 5*time.Second)
	res, err := c.Geocode(context.Background(), "400 Broad St, Seattle")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Position.Lat != 47.6205 || res.Position.Lng != -122.3493 {
		t.Errorf("unexpected position %+v", res.Position)
	}
	if res.Provider != "nominatim" {
		t.Errorf("expected provider nominatim, got %s", res.Provider)
	}
}

func TestClient_Geocode_ZeroResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "bikepark-test", 5*time.Second)
	_, err := c.Geocode(context.Background(), "nowhere at all")

	var gerr *domain.GeocodeError
	if !errors.As(err, &gerr) {
		t.Fatalf("expected GeocodeError, got %v", err)
	}
	if gerr.Status != "ZERO_RESULTS" {
		t.Errorf("expected ZERO_RESULTS, got %s", gerr.Status)
	}
}

func TestClient_Geocode_RateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "bikepark-test", 5*time.Second)
	_, err := c.Geocode(context.Background(), "somewhere")

	var gerr *domain.GeocodeError
	if !errors.As(err, &gerr) || gerr.Status != "OVER_QUERY_LIMIT" {
		t.Fatalf("expected OVER_QUERY_LIMIT, got %v", err)
	}
}
