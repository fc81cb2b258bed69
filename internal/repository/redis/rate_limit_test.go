package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
)

func newTestRepository(t *testing.T) (*RateLimitRepository, *miniredis.Miniredis) {
	t.Helper()

	srv := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := NewRateLimitRepository(client, SlidingWindowConfig{
		KeyPrefix: "credentials:rate-limit",
		TTL:       2 * time.Minute,
	})
	return repo, srv
}

func TestRateLimitRepositoryCountsWithinWindow(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		at := now.Add(time.Duration(-i*10) * time.Second)
		if err := repo.RecordAttempt(ctx, "login:192.0.2.1", at); err != nil {
			t.Fatalf("RecordAttempt returned error: %v", err)
		}
	}

	count, err := repo.CountAttempts(ctx, "login:192.0.2.1", time.Minute, now)
	if err != nil {
		t.Fatalf("CountAttempts returned error: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 attempts, got %d", count)
	}

	// A different identifier is scoped separately.
	count, err = repo.CountAttempts(ctx, "login:192.0.2.2", time.Minute, now)
	if err != nil {
		t.Fatalf("CountAttempts returned error: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected 0 attempts for other identifier, got %d", count)
	}
}

func TestRateLimitRepositoryRejectsNonPositiveWindow(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()
	now := time.Now()

	if _, err := repo.CountAttempts(ctx, "login:192.0.2.1", 0, now); err == nil {
		t.Fatal("expected error for zero window in CountAttempts")
	}
	if err := repo.TrimWindow(ctx, "login:192.0.2.1", -time.Second, now); err == nil {
		t.Fatal("expected error for negative window in TrimWindow")
	}
	if _, _, err := repo.OldestAttempt(ctx, "login:192.0.2.1", 0, now); err == nil {
		t.Fatal("expected error for zero window in OldestAttempt")
	}
}

func TestRateLimitRepositoryTrimWindow(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	if err := repo.RecordAttempt(ctx, "login:192.0.2.1", now.Add(-2*time.Minute)); err != nil {
		t.Fatalf("RecordAttempt returned error: %v", err)
	}
	if err := repo.RecordAttempt(ctx, "login:192.0.2.1", now.Add(-10*time.Second)); err != nil {
		t.Fatalf("RecordAttempt returned error: %v", err)
	}

	if err := repo.TrimWindow(ctx, "login:192.0.2.1", time.Minute, now); err != nil {
		t.Fatalf("TrimWindow returned error: %v", err)
	}

	count, err := repo.CountAttempts(ctx, "login:192.0.2.1", time.Hour, now)
	if err != nil {
		t.Fatalf("CountAttempts returned error: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 attempt after trim, got %d", count)
	}
}

func TestRateLimitRepositoryOldestAttempt(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	_, found, err := repo.OldestAttempt(ctx, "login:192.0.2.1", time.Minute, now)
	if err != nil {
		t.Fatalf("OldestAttempt returned error: %v", err)
	}
	if found {
		t.Fatal("expected no attempts for fresh identifier")
	}

	oldest := now.Add(-40 * time.Second)
	if err := repo.RecordAttempt(ctx, "login:192.0.2.1", oldest); err != nil {
		t.Fatalf("RecordAttempt returned error: %v", err)
	}
	if err := repo.RecordAttempt(ctx, "login:192.0.2.1", now.Add(-5*time.Second)); err != nil {
		t.Fatalf("RecordAttempt returned error: %v", err)
	}

	got, found, err := repo.OldestAttempt(ctx, "login:192.0.2.1", time.Minute, now)
	if err != nil {
		t.Fatalf("OldestAttempt returned error: %v", err)
	}
	if !found {
		t.Fatal("expected an attempt inside the window")
	}
	if !got.Equal(oldest) {
		t.Fatalf("expected oldest %v, got %v", oldest, got)
	}
}
