package usecases

import (
	"context"
	"time"

	"github.com/samirrijal/bikepark/internal/core/domain"
	"github.com/samirrijal/bikepark/internal/core/ports"
)

// Predicate selects which records keep their marker attached.
type Predicate func(domain.LocationRecord) bool

// LitNearby matches records whose NearbyLighting is exactly "Yes".
func LitNearby(rec domain.LocationRecord) bool {
	return rec.NearbyLighting == domain.LightingYes
}

// FilterService toggles marker visibility.
type FilterService struct {
	sessions  ports.SessionRepository
	publisher ports.EventPublisher
	now       func() time.Time
}

// NewFilterService creates a new FilterService. publisher may be nil.
func NewFilterService(sessions ports.SessionRepository, publisher ports.EventPublisher) *FilterService {
	return &FilterService{sessions: sessions, publisher: publisher, now: time.Now}
}

// MarkerVisibility is the attach state of one marker after a filter.
type MarkerVisibility struct {
	ID       string `json:"id"`
	Attached bool   `json:"attached"`
}

// ShowOnly attaches every marker whose record passes pred and detaches the rest.
func (s *FilterService) ShowOnly(ctx context.Context, sessionID string, pred Predicate) ([]MarkerVisibility, error) {
	var out []MarkerVisibility
	err := withSession(ctx, s.sessions, s.now, sessionID, func(sess *domain.Session) error {
		out = make([]MarkerVisibility, len(sess.Markers))
		for i, m := range sess.Markers {
			m.Attached = pred(sess.Records[i])
			out[i] = MarkerVisibility{ID: m.ID, Attached: m.Attached}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	publishEvent(ctx, s.publisher, sessionID, domain.EventMarkersChanged, out)
	return out, nil
}

// ShowAll attaches every marker.
func (s *FilterService) ShowAll(ctx context.Context, sessionID string) ([]MarkerVisibility, error) {
	return s.ShowOnly(ctx, sessionID, func(domain.LocationRecord) bool { return true })
}
