package usecases

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/samirrijal/bikepark/internal/core/domain"
	"github.com/samirrijal/bikepark/internal/core/ports"
	"github.com/samirrijal/bikepark/internal/pkg/metrics"
)

// StatusOK is the status recorded for successful external calls.
const StatusOK = "OK"

// GeocodingService places the user pin from the browser position or from
// an entered address.
type GeocodingService struct {
	sessions  ports.SessionRepository
	geocoder  ports.Geocoder
	cache     ports.CacheService
	publisher ports.EventPublisher
	cacheTTL  int
	now       func() time.Time
}

// NewGeocodingService creates a new GeocodingService. cache and publisher may be nil.
func NewGeocodingService(
	sessions ports.SessionRepository,
	geocoder ports.Geocoder,
	cache ports.CacheService,
	publisher ports.EventPublisher,
	cacheTTL int,
) *GeocodingService {
	return &GeocodingService{
		sessions:  sessions,
		geocoder:  geocoder,
		cache:     cache,
		publisher: publisher,
		cacheTTL:  cacheTTL,
		now:       time.Now,
	}
}

// LocateByBrowser places the user pin at the position reported by the
// page and recenters the map. A reported error becomes a
// *domain.GeolocationError and leaves the session untouched.
func (s *GeocodingService) LocateByBrowser(ctx context.Context, sessionID string, report domain.PositionReport) (*domain.UserPin, error) {
	if _, err := s.sessions.Get(ctx, sessionID); err != nil {
		return nil, err
	}

	if report.ErrorCode != "" || report.Position == nil || !report.Position.Valid() {
		code := report.ErrorCode
		if code == "" {
			code = domain.GeolocationPositionUnavailable
		}
		gerr := domain.NewGeolocationError(code)
		slog.WarnContext(ctx, "geolocation failed", "session_id", sessionID, "code", gerr.Code)
		return nil, gerr
	}

	return s.placePin(ctx, sessionID, domain.UserPin{
		Position: *report.Position,
		Source:   domain.UserPinBrowser,
	})
}

// LocateByAddress resolves text with the geocoder and places the user pin
// there. A non-OK status is logged and returned as *domain.GeocodeError;
// the previous pin stays in place.
func (s *GeocodingService) LocateByAddress(ctx context.Context, sessionID, text string) (*domain.UserPin, error) {
	if _, err := s.sessions.Get(ctx, sessionID); err != nil {
		return nil, err
	}

	address := strings.TrimSpace(text)
	if address == "" {
		gerr := &domain.GeocodeError{Address: text, Status: "INVALID_REQUEST"}
		slog.WarnContext(ctx, "geocode failed", "session_id", sessionID, "status", gerr.Status)
		return nil, gerr
	}

	res, err := s.resolve(ctx, address)
	if err != nil {
		var gerr *domain.GeocodeError
		if !errors.As(err, &gerr) {
			gerr = &domain.GeocodeError{Address: address, Status: "UNKNOWN_ERROR", Err: err}
		}
		metrics.GeocodeRequests.WithLabelValues(s.geocoder.Name(), gerr.Status).Inc()
		slog.WarnContext(ctx, "geocode failed",
			"session_id", sessionID,
			"address", address,
			"status", gerr.Status,
			"error", err,
		)
		return nil, gerr
	}

	return s.placePin(ctx, sessionID, domain.UserPin{
		Position:         res.Position,
		Source:           domain.UserPinAddress,
		Query:            address,
		FormattedAddress: res.FormattedAddress,
	})
}

func (s *GeocodingService) resolve(ctx context.Context, address string) (*domain.GeocodeResult, error) {
	cacheKey := "geocode:" + s.geocoder.Name() + ":" + strings.ToLower(address)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var res domain.GeocodeResult
			if err := json.Unmarshal(data, &res); err == nil {
				metrics.CacheHits.WithLabelValues("geocode").Inc()
				return &res, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("geocode").Inc()
	}

	res, err := s.geocoder.Geocode(ctx, address)
	if err != nil {
		return nil, err
	}
	metrics.GeocodeRequests.WithLabelValues(s.geocoder.Name(), StatusOK).Inc()

	if s.cache != nil && s.cacheTTL > 0 {
		if data, err := json.Marshal(res); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, s.cacheTTL)
		}
	}
	return res, nil
}

// placePin replaces the session's user pin and recenters the map on it.
func (s *GeocodingService) placePin(ctx context.Context, sessionID string, pin domain.UserPin) (*domain.UserPin, error) {
	pin.PlacedAt = s.now()
	err := withSession(ctx, s.sessions, s.now, sessionID, func(sess *domain.Session) error {
		sess.UserPin = &pin
		sess.Viewport.Center = pin.Position
		return nil
	})
	if err != nil {
		return nil, err
	}
	publishEvent(ctx, s.publisher, sessionID, domain.EventUserPinPlaced, pin)
	return &pin, nil
}
