package googlemaps

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"googlemaps.github.io/maps"

	"github.com/samirrijal/bikepark/internal/core/domain"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, "OK"},
		{errors.New("maps: OVER_QUERY_LIMIT - You have exceeded your daily request quota"), "OVER_QUERY_LIMIT"},
		{errors.New("maps: REQUEST_DENIED - "), "REQUEST_DENIED"},
		{fmt.Errorf("wrapped: %w", context.DeadlineExceeded), "UNKNOWN_ERROR"},
		{errors.New("dial tcp: connection refused"), "UNKNOWN_ERROR"},
	}
	for _, tt := range tests {
		if got := Status(tt.err); got != tt.want {
			t.Errorf("Status(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestDecodePath(t *testing.T) {
	// Reference polyline from the encoding format documentation.
	path, err := DecodePath("_p~iF~ps|U_ulLnnqC_mqNvxq`@")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(path) != 3 {
		t.Fatalf("expected 3 points, got %d", len(path))
	}
	if path[0].Lat != 38.5 || path[0].Lng != -120.2 {
		t.Errorf("unexpected first point %+v", path[0])
	}
	if path[2].Lat != 43.252 || path[2].Lng != -126.453 {
		t.Errorf("unexpected last point %+v", path[2])
	}
}

func TestStripTags(t *testing.T) {
	got := StripTags("Turn <b>left</b> onto <b>Pine St</b><div style=\"font-size:0.9em\">Destination will be on the right</div>")
	want := "Turn left onto Pine StDestination will be on the right"
	if got != want {
		t.Errorf("StripTags = %q, want %q", got, want)
	}
}

func TestConvertRoute(t *testing.T) {
	r := maps.Route{
		Summary:          "Pine St",
		OverviewPolyline: maps.Polyline{Points: "_p~iF~ps|U_ulLnnqC"},
		Legs: []*maps.Leg{{
			Distance: maps.Distance{Meters: 850},
			Duration: 11 * time.Minute,
			Steps: []*maps.Step{
				{HTMLInstructions: "Head <b>north</b>", Distance: maps.Distance{Meters: 850}, Duration: 11 * time.Minute},
			},
		}},
	}

	out, err := convertRoute(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.DistanceMeters != 850 || out.DurationSeconds != 660 {
		t.Errorf("unexpected totals %d m / %d s", out.DistanceMeters, out.DurationSeconds)
	}
	if len(out.Path) != 2 {
		t.Errorf("expected 2 path points, got %d", len(out.Path))
	}
	if len(out.Steps) != 1 || out.Steps[0].Instruction != "Head north" {
		t.Errorf("unexpected steps %+v", out.Steps)
	}
}

func TestUnconfigured_DeniesRoutes(t *testing.T) {
	_, err := Unconfigured{}.Route(context.Background(), domain.GeoPoint{}, domain.GeoPoint{Lat: 1}, domain.TravelModeWalking)

	var derr *domain.DirectionsError
	if !errors.As(err, &derr) || derr.Status != "REQUEST_DENIED" {
		t.Fatalf("expected REQUEST_DENIED, got %v", err)
	}
}
