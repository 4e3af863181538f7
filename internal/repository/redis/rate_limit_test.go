package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
)

func newTestRepository(t *testing.T) *RateLimitRepository {
	t.Helper()
	srv := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRateLimitRepository(client, "vaultify:ratelimit:login", time.Minute)
}

func TestRateLimitCountsWindowedAttempts(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	now := time.Now()

	for i := 0; i < 3; i++ {
		if err := repo.RecordAttempt(ctx, "203.0.113.7", now.Add(time.Duration(i)*time.Second)); err != nil {
			t.Fatalf("RecordAttempt: %v", err)
		}
	}
	// One attempt well outside a one-minute window.
	if err := repo.RecordAttempt(ctx, "203.0.113.7", now.Add(-2*time.Minute)); err != nil {
		t.Fatalf("RecordAttempt: %v", err)
	}

	count, err := repo.CountAttempts(ctx, "203.0.113.7", time.Minute, now.Add(3*time.Second))
	if err != nil {
		t.Fatalf("CountAttempts: %v", err)
	}
	if count != 3 {
		t.Fatalf("count = %d, want 3", count)
	}
}

func TestRateLimitIsolatesIdentifiers(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	now := time.Now()

	if err := repo.RecordAttempt(ctx, "203.0.113.7", now); err != nil {
		t.Fatalf("RecordAttempt: %v", err)
	}

	count, err := repo.CountAttempts(ctx, "198.51.100.1", time.Minute, now)
	if err != nil {
		t.Fatalf("CountAttempts: %v", err)
	}
	if count != 0 {
		t.Fatalf("count = %d, want 0", count)
	}
}

func TestRateLimitTrimWindow(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	now := time.Now()

	if err := repo.RecordAttempt(ctx, "203.0.113.7", now.Add(-2*time.Minute)); err != nil {
		t.Fatalf("RecordAttempt: %v", err)
	}
	if err := repo.RecordAttempt(ctx, "203.0.113.7", now); err != nil {
		t.Fatalf("RecordAttempt: %v", err)
	}

	if err := repo.TrimWindow(ctx, "203.0.113.7", time.Minute, now); err != nil {
		t.Fatalf("TrimWindow: %v", err)
	}

	// With the stale entry trimmed, a wide count sees only the fresh one.
	count, err := repo.CountAttempts(ctx, "203.0.113.7", time.Hour, now)
	if err != nil {
		t.Fatalf("CountAttempts: %v", err)
	}
	if count != 1 {
		t.Fatalf("count = %d, want 1", count)
	}
}

func TestRateLimitOldestAttempt(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	now := time.Now()

	_, ok, err := repo.OldestAttempt(ctx, "203.0.113.7", time.Minute, now)
	if err != nil {
		t.Fatalf("OldestAttempt: %v", err)
	}
	if ok {
		t.Fatal("expected no attempts")
	}

	first := now.Add(-30 * time.Second)
	if err := repo.RecordAttempt(ctx, "203.0.113.7", first); err != nil {
		t.Fatalf("RecordAttempt: %v", err)
	}
	if err := repo.RecordAttempt(ctx, "203.0.113.7", now); err != nil {
		t.Fatalf("RecordAttempt: %v", err)
	}

	oldest, ok, err := repo.OldestAttempt(ctx, "203.0.113.7", time.Minute, now)
	if err != nil {
		t.Fatalf("OldestAttempt: %v", err)
	}
	if !ok {
		t.Fatal("expected an attempt")
	}
	if !oldest.Equal(time.Unix(0, first.UnixNano())) {
		t.Fatalf("oldest = %v, want %v", oldest, first)
	}
}
