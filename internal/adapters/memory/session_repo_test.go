package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/samirrijal/bikepark/internal/core/domain"
)

func TestSessionRepo_SaveGetDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionRepo()
	sess := domain.NewSession("s1", domain.Viewport{}, time.Now())

	if err := repo.Save(ctx, sess); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := repo.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != sess {
		t.Error("expected the same session pointer back")
	}
	if repo.Count(ctx) != 1 {
		t.Errorf("expected count 1, got %d", repo.Count(ctx))
	}

	if err := repo.Delete(ctx, "s1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.Get(ctx, "s1"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
	if err := repo.Delete(ctx, "s1"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound on second delete, got %v", err)
	}
}

func TestSessionRepo_DeleteIdle(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionRepo()
	now := time.Now()

	_ = repo.Save(ctx, domain.NewSession("old", domain.Viewport{}, now.Add(-2*time.Hour)))
	_ = repo.Save(ctx, domain.NewSession("fresh", domain.Viewport{}, now))

	ids, err := repo.DeleteIdle(ctx, now.Add(-time.Hour))
	if err != nil {
		t.Fatalf("delete idle: %v", err)
	}
	if len(ids) != 1 || ids[0] != "old" {
		t.Fatalf("expected [old], got %v", ids)
	}
	if _, err := repo.Get(ctx, "fresh"); err != nil {
		t.Errorf("fresh session should remain: %v", err)
	}
}
