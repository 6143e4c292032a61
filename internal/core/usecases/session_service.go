package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/samirrijal/bikepark/internal/core/domain"
	"github.com/samirrijal/bikepark/internal/core/ports"
	"github.com/samirrijal/bikepark/internal/pkg/geospatial"
	"github.com/samirrijal/bikepark/internal/pkg/metrics"
)

// SessionService bootstraps map sessions and serves marker clicks.
type SessionService struct {
	sessions  ports.SessionRepository
	store     *LocationStore
	presenter *MarkerPresenter
	publisher ports.EventPublisher
	feedURL   string
	viewport  domain.Viewport
	idleTTL   time.Duration
	now       func() time.Time
}

// SessionOptions configures a SessionService.
type SessionOptions struct {
	FeedURL  string
	Viewport domain.Viewport
	IdleTTL  time.Duration
}

// NewSessionService creates a new SessionService. publisher may be nil.
func NewSessionService(
	sessions ports.SessionRepository,
	store *LocationStore,
	presenter *MarkerPresenter,
	publisher ports.EventPublisher,
	opts SessionOptions,
) *SessionService {
	return &SessionService{
		sessions:  sessions,
		store:     store,
		presenter: presenter,
		publisher: publisher,
		feedURL:   opts.FeedURL,
		viewport:  opts.Viewport,
		idleTTL:   opts.IdleTTL,
		now:       time.Now,
	}
}

// Bootstrap opens a new session: it loads the feed, presents every record
// and builds the selection list. A feed failure leaves the session empty
// with FeedError set; it is not returned as an error.
func (s *SessionService) Bootstrap(ctx context.Context) (domain.SessionView, error) {
	sess := domain.NewSession(uuid.NewString(), s.viewport, s.now())

	records, err := s.store.Load(ctx, s.feedURL)
	if err != nil {
		sess.FeedError = err.Error()
	}

	points := make([][2]float64, 0, len(records))
	for _, rec := range records {
		sess.AddMarker(rec, s.presenter.Present(rec), s.presenter.Entry(rec))
		points = append(points, [2]float64{rec.Coordinates.Lat, rec.Coordinates.Lng})
	}
	if minLat, minLng, maxLat, maxLng, ok := geospatial.Extent(points); ok {
		sess.Viewport.Fit = &domain.Bounds{MinLat: minLat, MinLng: minLng, MaxLat: maxLat, MaxLng: maxLng}
	}

	if err := s.sessions.Save(ctx, sess); err != nil {
		return domain.SessionView{}, fmt.Errorf("save session: %w", err)
	}
	metrics.ActiveSessions.Set(float64(s.sessions.Count(ctx)))

	slog.InfoContext(ctx, "session started", "session_id", sess.ID, "markers", len(sess.Markers))

	sess.Lock()
	defer sess.Unlock()
	return sess.View(), nil
}

// Get returns a snapshot of a session.
func (s *SessionService) Get(ctx context.Context, id string) (domain.SessionView, error) {
	var view domain.SessionView
	err := s.withSession(ctx, id, func(sess *domain.Session) error {
		view = sess.View()
		return nil
	})
	return view, err
}

// OpenPopup shows the shared popup at the clicked marker, replacing any
// popup already open in the session.
func (s *SessionService) OpenPopup(ctx context.Context, sessionID, markerID string) (*domain.Popup, error) {
	var popup domain.Popup
	err := s.withSession(ctx, sessionID, func(sess *domain.Session) error {
		m, _, ok := sess.Marker(markerID)
		if !ok {
			return domain.ErrMarkerNotFound
		}
		sess.Popup = &domain.Popup{MarkerID: m.ID, Position: m.Position, Content: m.Popup}
		popup = *sess.Popup
		return nil
	})
	if err != nil {
		return nil, err
	}
	publishEvent(ctx, s.publisher, sessionID, domain.EventPopupOpened, popup)
	return &popup, nil
}

// Close tears a session down.
func (s *SessionService) Close(ctx context.Context, id string) error {
	if err := s.sessions.Delete(ctx, id); err != nil {
		return err
	}
	metrics.ActiveSessions.Set(float64(s.sessions.Count(ctx)))
	publishEvent(ctx, s.publisher, id, domain.EventSessionClosed, nil)
	return nil
}

// SweepIdle removes sessions idle for longer than the configured TTL.
func (s *SessionService) SweepIdle(ctx context.Context) (int, error) {
	if s.idleTTL <= 0 {
		return 0, nil
	}
	ids, err := s.sessions.DeleteIdle(ctx, s.now().Add(-s.idleTTL))
	if err != nil {
		return 0, err
	}
	for _, id := range ids {
		publishEvent(ctx, s.publisher, id, domain.EventSessionClosed, nil)
	}
	metrics.ActiveSessions.Set(float64(s.sessions.Count(ctx)))
	return len(ids), nil
}

// RunSweeper calls SweepIdle every interval until ctx is done.
func (s *SessionService) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.SweepIdle(ctx)
			if err != nil {
				slog.Warn("session sweep failed", "error", err)
				continue
			}
			if n > 0 {
				slog.Info("idle sessions closed", "count", n)
			}
		}
	}
}

func (s *SessionService) withSession(ctx context.Context, id string, fn func(*domain.Session) error) error {
	return withSession(ctx, s.sessions, s.now, id, fn)
}

// withSession loads a session and runs fn under its lock.
func withSession(ctx context.Context, repo ports.SessionRepository, now func() time.Time, id string, fn func(*domain.Session) error) error {
	sess, err := repo.Get(ctx, id)
	if err != nil {
		return err
	}
	sess.Lock()
	defer sess.Unlock()
	sess.LastSeen = now()
	return fn(sess)
}

func publishEvent(ctx context.Context, pub ports.EventPublisher, sessionID string, kind domain.EventKind, payload any) {
	if pub == nil {
		return
	}
	evt := &domain.SessionEvent{SessionID: sessionID, Kind: kind, Time: time.Now(), Payload: payload}
	if err := pub.PublishSessionEvent(ctx, evt); err != nil {
		slog.WarnContext(ctx, "publish session event failed", "session_id", sessionID, "kind", kind, "error", err)
	}
}
