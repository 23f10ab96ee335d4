package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"profilereview/internal/profile"
)

func TestAcquireRejectsHeldKey(t *testing.T) {
	l := New()
	ctx := context.Background()
	release, err := l.Acquire(ctx, "k", time.Minute)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if _, err := l.Acquire(ctx, "k", time.Minute); !errors.Is(err, profile.ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}
	if _, err := l.Acquire(ctx, "other", time.Minute); err != nil {
		t.Fatalf("expected independent key to lock, got %v", err)
	}
	if err := release(ctx); err != nil {
		t.Fatalf("release: %v", err)
	}
	if _, err := l.Acquire(ctx, "k", time.Minute); err != nil {
		t.Fatalf("expected key free after release, got %v", err)
	}
}

func TestExpiredLeaseIsReclaimed(t *testing.T) {
	l := New()
	now := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)
	l.SetClock(func() time.Time { return now })
	ctx := context.Background()
	stale, err := l.Acquire(ctx, "k", time.Second)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	now = now.Add(2 * time.Second)
	if _, err := l.Acquire(ctx, "k", time.Minute); err != nil {
		t.Fatalf("expected expired lease reclaimed, got %v", err)
	}
	if err := stale(ctx); err != nil {
		t.Fatalf("stale release: %v", err)
	}
	if _, err := l.Acquire(ctx, "k", time.Minute); !errors.Is(err, profile.ErrLocked) {
		t.Fatalf("stale release must not drop the new lease, got %v", err)
	}
}
