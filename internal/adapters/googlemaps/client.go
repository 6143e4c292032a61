package googlemaps

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/twpayne/go-polyline"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"googlemaps.github.io/maps"

	"github.com/samirrijal/bikepark/internal/core/domain"
	"github.com/samirrijal/bikepark/internal/pkg/telemetry"
)

// Client implements ports.Geocoder and ports.DirectionsProvider with the
// Google Maps web services.
type Client struct {
	maps *maps.Client
}

// NewClient creates a client authenticated with apiKey.
func NewClient(apiKey string) (*Client, error) {
	c, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("google maps client: %w", err)
	}
	return &Client{maps: c}, nil
}

func (c *Client) Name() string { return "google" }

// Geocode resolves address to its first match.
func (c *Client) Geocode(ctx context.Context, address string) (*domain.GeocodeResult, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "google.geocode")
	defer span.End()

	results, err := c.maps.Geocode(ctx, &maps.GeocodingRequest{Address: address})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, &domain.GeocodeError{Address: address, Status: Status(err), Err: err}
	}
	span.SetAttributes(attribute.Int("geocode.results", len(results)))
	if len(results) == 0 {
		return nil, &domain.GeocodeError{Address: address, Status: "ZERO_RESULTS"}
	}

	loc := results[0].Geometry.Location
	return &domain.GeocodeResult{
		Position:         domain.GeoPoint{Lat: loc.Lat, Lng: loc.Lng},
		FormattedAddress: results[0].FormattedAddress,
		Provider:         c.Name(),
	}, nil
}

// Route requests a route and converts the first one returned.
func (c *Client) Route(ctx context.Context, origin, destination domain.GeoPoint, mode domain.TravelMode) (*domain.RouteResult, error) {
	req := &maps.DirectionsRequest{
		Origin:      origin.String(),
		Destination: destination.String(),
		Mode:        travelMode(mode),
	}
	ctx, span := telemetry.Tracer().Start(ctx, "google.directions")
	defer span.End()
	span.SetAttributes(attribute.String("directions.mode", string(req.Mode)))

	routes, _, err := c.maps.Directions(ctx, req)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, &domain.DirectionsError{Status: Status(err), Err: err}
	}
	if len(routes) == 0 {
		return nil, &domain.DirectionsError{Status: "ZERO_RESULTS"}
	}
	return convertRoute(routes[0])
}

func convertRoute(r maps.Route) (*domain.RouteResult, error) {
	path, err := DecodePath(r.OverviewPolyline.Points)
	if err != nil {
		return nil, &domain.DirectionsError{Status: "UNKNOWN_ERROR", Err: err}
	}

	out := &domain.RouteResult{
		Summary:  r.Summary,
		Path:     path,
		Warnings: r.Warnings,
	}
	for _, leg := range r.Legs {
		if leg == nil {
			continue
		}
		out.DistanceMeters += leg.Meters
		out.DurationSeconds += int(leg.Duration.Seconds())
		for _, st := range leg.Steps {
			if st == nil {
				continue
			}
			out.Steps = append(out.Steps, domain.RouteStep{
				Instruction:     StripTags(st.HTMLInstructions),
				DistanceMeters:  st.Meters,
				DurationSeconds: int(st.Duration.Seconds()),
			})
		}
	}
	return out, nil
}

// DecodePath decodes an encoded polyline into points.
func DecodePath(encoded string) ([]domain.GeoPoint, error) {
	if encoded == "" {
		return nil, nil
	}
	coords, _, err := polyline.DecodeCoords([]byte(encoded))
	if err != nil {
		return nil, fmt.Errorf("decode polyline: %w", err)
	}
	path := make([]domain.GeoPoint, len(coords))
	for i, c := range coords {
		path[i] = domain.GeoPoint{Lat: c[0], Lng: c[1]}
	}
	return path, nil
}

// Status extracts the service status from a maps client error, which has
// the form "maps: STATUS - message". Anything else is UNKNOWN_ERROR.
func Status(err error) string {
	if err == nil {
		return "OK"
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return "UNKNOWN_ERROR"
	}
	msg, ok := strings.CutPrefix(err.Error(), "maps: ")
	if !ok {
		return "UNKNOWN_ERROR"
	}
	status, _, _ := strings.Cut(msg, " - ")
	status = strings.TrimSpace(status)
	if status == "" || strings.ContainsAny(status, " :") {
		return "UNKNOWN_ERROR"
	}
	return status
}

// StripTags removes markup from an HTML instruction.
func StripTags(s string) string {
	var b strings.Builder
	depth := 0
	for _, r := range s {
		switch {
		case r == '<':
			depth++
		case r == '>' && depth > 0:
			depth--
		case depth == 0:
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func travelMode(m domain.TravelMode) maps.Mode {
	switch m {
	case domain.TravelModeWalking:
		return maps.TravelModeWalking
	default:
		return maps.Mode(strings.ToLower(string(m)))
	}
}
