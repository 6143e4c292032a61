package googlemaps

import (
	"context"

	"github.com/samirrijal/bikepark/internal/core/domain"
)

// Unconfigured stands in for the directions service when no API key is
// set. Every request fails the way the service rejects an unauthorised key.
type Unconfigured struct{}

func (Unconfigured) Route(ctx context.Context, origin, destination domain.GeoPoint, mode domain.TravelMode) (*domain.RouteResult, error) {
	return nil, &domain.DirectionsError{Status: "REQUEST_DENIED"}
}
