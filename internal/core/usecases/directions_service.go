package usecases

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/samirrijal/bikepark/internal/core/domain"
	"github.com/samirrijal/bikepark/internal/core/ports"
	"github.com/samirrijal/bikepark/internal/pkg/geospatial"
	"github.com/samirrijal/bikepark/internal/pkg/metrics"
)

// MissingPinsMessage is shown when directions are requested without both pins.
const MissingPinsMessage = "Set your location and choose a destination before asking for directions."

// DirectionsService requests walking routes from the user pin to a marker.
type DirectionsService struct {
	sessions  ports.SessionRepository
	routes    ports.DirectionsProvider
	publisher ports.EventPublisher
	now       func() time.Time
}

// NewDirectionsService creates a new DirectionsService. publisher may be nil.
func NewDirectionsService(sessions ports.SessionRepository, routes ports.DirectionsProvider, publisher ports.EventPublisher) *DirectionsService {
	return &DirectionsService{sessions: sessions, routes: routes, publisher: publisher, now: time.Now}
}

// GetDirections routes from the session's user pin to the marker with
// destinationID. Without either pin it returns *domain.ValidationError and
// makes no routing request. A non-OK routing status is logged and returned
// as *domain.DirectionsError.
func (s *DirectionsService) GetDirections(ctx context.Context, sessionID, destinationID string) (*domain.RouteResult, error) {
	var origin, dest domain.GeoPoint
	err := withSession(ctx, s.sessions, s.now, sessionID, func(sess *domain.Session) error {
		if sess.UserPin == nil {
			return &domain.ValidationError{Field: "origin", Message: MissingPinsMessage}
		}
		if destinationID == "" {
			return &domain.ValidationError{Field: "destination", Message: MissingPinsMessage}
		}
		m, _, ok := sess.Marker(destinationID)
		if !ok {
			return &domain.ValidationError{Field: "destination", Message: MissingPinsMessage}
		}
		origin = sess.UserPin.Position
		dest = m.Position
		return nil
	})
	if err != nil {
		return nil, err
	}

	route, err := s.routes.Route(ctx, origin, dest, domain.TravelModeWalking)
	if err != nil {
		var derr *domain.DirectionsError
		if !errors.As(err, &derr) {
			derr = &domain.DirectionsError{Status: "UNKNOWN_ERROR", Err: err}
		}
		metrics.DirectionsRequests.WithLabelValues(derr.Status).Inc()
		slog.WarnContext(ctx, "directions failed",
			"session_id", sessionID,
			"destination_id", destinationID,
			"status", derr.Status,
			"error", err,
		)
		return nil, derr
	}
	metrics.DirectionsRequests.WithLabelValues(StatusOK).Inc()

	route.Origin = origin
	route.Destination = dest
	route.DestinationID = destinationID
	route.Mode = domain.TravelModeWalking
	route.StraightLineMeters = geospatial.Haversine(origin.Lat, origin.Lng, dest.Lat, dest.Lng)

	publishEvent(ctx, s.publisher, sessionID, domain.EventRouteRendered, route)
	return route, nil
}
