package ports

import (
	"context"
	"time"

	"github.com/samirrijal/bikepark/internal/core/domain"
)

// SessionRepository keeps the sessions of open map pages.
type SessionRepository interface {
	Save(ctx context.Context, s *domain.Session) error
	Get(ctx context.Context, id string) (*domain.Session, error)
	Delete(ctx context.Context, id string) error
	// DeleteIdle removes sessions not seen since the cutoff and returns their IDs.
	DeleteIdle(ctx context.Context, cutoff time.Time) ([]string, error)
	Count(ctx context.Context) int
}
