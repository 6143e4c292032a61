package usecases_test

import (
	"context"
	"testing"

	"github.com/paulmach/orb/geojson"

	"github.com/samirrijal/bikepark/internal/core/domain"
	"github.com/samirrijal/bikepark/internal/core/usecases"
)

func TestLitNearby_ExactMatch(t *testing.T) {
	tests := map[string]bool{
		"Yes":  true,
		"yes":  false,
		"YES":  false,
		"No":   false,
		"":     false,
		"Yes ": false,
	}
	for v, want := range tests {
		if got := usecases.LitNearby(domain.LocationRecord{NearbyLighting: v}); got != want {
			t.Errorf("LitNearby(%q) = %v, want %v", v, got, want)
		}
	}
}

func TestFilterService_ShowOnlyThenShowAll(t *testing.T) {
	fc := geojson.NewFeatureCollection()
	for i, lighting := range []any{"Yes", "No", "yes", nil, "Yes"} {
		props := map[string]any{}
		if lighting != nil {
			props[usecases.PropNearbyLighting] = lighting
		}
		fc.Append(pointFeature(i+1, 47.6, -122.3, props))
	}
	f := newFixture(fc)
	ctx := context.Background()
	view, _ := f.sessions.Bootstrap(ctx)

	vis, err := f.filter.ShowOnly(ctx, view.ID, usecases.LitNearby)
	if err != nil {
		t.Fatalf("show only: %v", err)
	}
	want := []bool{true, false, false, false, true}
	for i, v := range vis {
		if v.Attached != want[i] {
			t.Errorf("marker %d attached=%v, want %v", i, v.Attached, want[i])
		}
	}

	got, _ := f.sessions.Get(ctx, view.ID)
	if len(got.Markers) != 5 {
		t.Fatalf("filtering must not remove markers, got %d", len(got.Markers))
	}

	if _, err := f.filter.ShowAll(ctx, view.ID); err != nil {
		t.Fatalf("show all: %v", err)
	}
	got, _ = f.sessions.Get(ctx, view.ID)
	for i, m := range got.Markers {
		if !m.Attached {
			t.Errorf("marker %d should be attached after ShowAll", i)
		}
	}
}

func TestFilterService_Idempotent(t *testing.T) {
	f := newFixture(featureCollection(4))
	ctx := context.Background()
	view, _ := f.sessions.Bootstrap(ctx)

	first, _ := f.filter.ShowOnly(ctx, view.ID, usecases.LitNearby)
	second, _ := f.filter.ShowOnly(ctx, view.ID, usecases.LitNearby)
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("marker %d changed on repeated filter", i)
		}
	}
}

func TestFilterService_UnknownSession(t *testing.T) {
	f := newFixture(featureCollection(1))
	if _, err := f.filter.ShowAll(context.Background(), "missing"); err != domain.ErrSessionNotFound {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}
