package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/burakzaferozcan/Vaultify/internal/core/domain"
)

type capturedEvents struct {
	mu     sync.Mutex
	events []domain.ActivityRecordedEvent
	err    error
}

func (c *capturedEvents) PublishActivityRecorded(_ context.Context, event domain.ActivityRecordedEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.events = append(c.events, event)
	return nil
}

func TestRecordAppendsAndPublishes(t *testing.T) {
	repo := newMemActivityRepo()
	events := &capturedEvents{}
	svc := NewActivityService(repo, events, nil)

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.WithClock(func() time.Time { return now })

	meta := &domain.RequestMetadata{IPAddress: "203.0.113.7", UserAgent: "test-agent"}
	svc.Record(context.Background(), "owner-1", domain.ActionCreate, domain.ResourcePassword, "Created password entry: GitHub", meta)

	log := repo.byOwner("owner-1")
	if len(log) != 1 {
		t.Fatalf("got %d entries, want 1", len(log))
	}
	entry := log[0]
	if entry.ID == "" {
		t.Fatal("entry id not assigned")
	}
	if !entry.CreatedAt.Equal(now) {
		t.Fatalf("created at %v, want %v", entry.CreatedAt, now)
	}
	if entry.IPAddress == nil || *entry.IPAddress != "203.0.113.7" {
		t.Fatal("client IP not captured")
	}

	if len(events.events) != 1 {
		t.Fatalf("got %d events, want 1", len(events.events))
	}
	if events.events[0].EventID != entry.ID {
		t.Fatal("event id does not match entry id")
	}
}

func TestRecordSwallowsAppendFailure(t *testing.T) {
	repo := newMemActivityRepo()
	repo.createErr = errors.New("db down")
	events := &capturedEvents{}
	svc := NewActivityService(repo, events, nil)

	// Must not panic and must not publish.
	svc.Record(context.Background(), "owner-1", domain.ActionView, domain.ResourcePassword, "Viewed", nil)

	if len(events.events) != 0 {
		t.Fatal("event published for an entry that was never stored")
	}
}

func TestRecordToleratesPublishFailure(t *testing.T) {
	repo := newMemActivityRepo()
	events := &capturedEvents{err: errors.New("broker down")}
	svc := NewActivityService(repo, events, nil)

	svc.Record(context.Background(), "owner-1", domain.ActionView, domain.ResourcePassword, "Viewed", nil)

	if len(repo.byOwner("owner-1")) != 1 {
		t.Fatal("entry lost because the event publish failed")
	}
}

func TestRecentDefaultsLimit(t *testing.T) {
	repo := newMemActivityRepo()
	svc := NewActivityService(repo, nil, nil)

	for i := 0; i < 15; i++ {
		svc.Record(context.Background(), "owner-1", domain.ActionView, domain.ResourcePassword, "Viewed", nil)
	}

	recent, err := svc.Recent(context.Background(), "owner-1", 0)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recent) != 10 {
		t.Fatalf("got %d entries, want default 10", len(recent))
	}
}

func TestStatsCountsNewEntries(t *testing.T) {
	repo := newMemActivityRepo()
	svc := NewActivityService(repo, nil, nil)

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	old := base.Add(-48 * time.Hour)

	svc.WithClock(func() time.Time { return old })
	svc.Record(context.Background(), "owner-1", domain.ActionCreate, domain.ResourcePassword, "old", nil)

	svc.WithClock(func() time.Time { return base })
	svc.Record(context.Background(), "owner-1", domain.ActionView, domain.ResourcePassword, "new", nil)
	svc.Record(context.Background(), "owner-1", domain.ActionView, domain.ResourceCard, "new", nil)

	stats, err := svc.Stats(context.Background(), "owner-1")
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Total != 3 {
		t.Fatalf("total = %d, want 3", stats.Total)
	}
	if stats.Last24Hours != 2 {
		t.Fatalf("last 24h = %d, want 2", stats.Last24Hours)
	}
	if stats.ActionCounts[domain.ActionView] != 2 || stats.ActionCounts[domain.ActionCreate] != 1 {
		t.Fatalf("action counts = %+v", stats.ActionCounts)
	}
}

func TestSecurityEventsFiltersActions(t *testing.T) {
	repo := newMemActivityRepo()
	svc := NewActivityService(repo, nil, nil)

	svc.Record(context.Background(), "owner-1", domain.ActionLogin, domain.ResourceAccount, "Logged in", nil)
	svc.Record(context.Background(), "owner-1", domain.ActionView, domain.ResourcePassword, "Viewed", nil)
	svc.Record(context.Background(), "owner-1", domain.ActionExport, domain.ResourcePassword, "Exported", nil)
	svc.Record(context.Background(), "owner-1", domain.ActionLogout, domain.ResourceAccount, "Logged out", nil)

	events, err := svc.SecurityEvents(context.Background(), "owner-1", 0)
	if err != nil {
		t.Fatalf("SecurityEvents: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("got %d events, want 3", len(events))
	}
	for _, e := range events {
		if e.Action == domain.ActionView {
			t.Fatal("view action leaked into security events")
		}
	}
}
