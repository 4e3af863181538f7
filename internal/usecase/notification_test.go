package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/burakzaferozcan/Vaultify/internal/core/domain"
)

func newTestNotificationService(t *testing.T) (*NotificationService, *memCardRepo, *memAccountRepo, *memMailer) {
	t.Helper()
	cards := newMemCardRepo()
	accounts := newMemAccountRepo()
	mailer := newMemMailer()
	svc := NewNotificationService(cards, accounts, mailer, 3, nil)
	return svc, cards, accounts, mailer
}

func seedOwner(t *testing.T, accounts *memAccountRepo, id, email string) {
	t.Helper()
	err := accounts.Create(context.Background(), domain.Account{ID: id, Name: "Owner", Email: email})
	if err != nil {
		t.Fatalf("seed account: %v", err)
	}
}

func expiringCard(id, ownerID string, lastNotified *time.Time) domain.Card {
	return domain.Card{
		ID:          id,
		OwnerID:     ownerID,
		CardName:    "Card " + id,
		ExpiryMonth: "01",
		ExpiryYear:  "25",
		Notifications: domain.NotificationSettings{
			Expiry: domain.ExpiryNotification{Enabled: true, DaysBeforeExpiry: 30, LastNotified: lastNotified},
		},
	}
}

func TestExpirySweepNotifiesAndSetsCooldown(t *testing.T) {
	svc, cards, accounts, mailer := newTestNotificationService(t)
	now := time.Date(2024, time.December, 22, 10, 0, 0, 0, time.UTC)
	svc.WithClock(func() time.Time { return now })

	seedOwner(t, accounts, "owner-1", "alice@example.com")
	if err := cards.Create(context.Background(), expiringCard("c1", "owner-1", nil)); err != nil {
		t.Fatalf("seed card: %v", err)
	}

	result, err := svc.CheckExpiringCards(context.Background())
	if err != nil {
		t.Fatalf("CheckExpiringCards: %v", err)
	}
	if result.Checked != 1 || result.Notified != 1 || result.Failed != 0 {
		t.Fatalf("result = %+v", result)
	}
	if len(mailer.expiry) != 1 {
		t.Fatalf("got %d emails, want 1", len(mailer.expiry))
	}
	if mailer.expiry[0].recipient != "alice@example.com" {
		t.Fatalf("recipient = %q", mailer.expiry[0].recipient)
	}
	if mailer.expiry[0].days != 10 {
		t.Fatalf("daysUntilExpiry = %d, want 10", mailer.expiry[0].days)
	}

	stored, err := cards.GetByID(context.Background(), "owner-1", "c1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.Notifications.Expiry.LastNotified == nil || !stored.Notifications.Expiry.LastNotified.Equal(now) {
		t.Fatal("cooldown timestamp not persisted")
	}
}

func TestExpirySweepCooldown(t *testing.T) {
	svc, cards, accounts, mailer := newTestNotificationService(t)
	now := time.Date(2024, time.December, 22, 10, 0, 0, 0, time.UTC)
	svc.WithClock(func() time.Time { return now })

	seedOwner(t, accounts, "owner-1", "alice@example.com")

	oneDayAgo := now.Add(-24 * time.Hour)
	fourDaysAgo := now.Add(-4 * 24 * time.Hour)
	if err := cards.Create(context.Background(), expiringCard("recent", "owner-1", &oneDayAgo)); err != nil {
		t.Fatalf("seed card: %v", err)
	}
	if err := cards.Create(context.Background(), expiringCard("stale", "owner-1", &fourDaysAgo)); err != nil {
		t.Fatalf("seed card: %v", err)
	}

	result, err := svc.CheckExpiringCards(context.Background())
	if err != nil {
		t.Fatalf("CheckExpiringCards: %v", err)
	}
	if result.Notified != 1 {
		t.Fatalf("notified = %d, want 1 (only the stale cooldown)", result.Notified)
	}
	if len(mailer.expiry) != 1 || mailer.expiry[0].cardName != "Card stale" {
		t.Fatalf("emails = %+v", mailer.expiry)
	}
}

func TestExpirySweepSkipsOutsideWindow(t *testing.T) {
	svc, cards, accounts, mailer := newTestNotificationService(t)
	// 60 days before expiry: outside the 30-day window.
	now := time.Date(2024, time.November, 2, 10, 0, 0, 0, time.UTC)
	svc.WithClock(func() time.Time { return now })

	seedOwner(t, accounts, "owner-1", "alice@example.com")
	if err := cards.Create(context.Background(), expiringCard("c1", "owner-1", nil)); err != nil {
		t.Fatalf("seed card: %v", err)
	}

	result, err := svc.CheckExpiringCards(context.Background())
	if err != nil {
		t.Fatalf("CheckExpiringCards: %v", err)
	}
	if result.Notified != 0 || len(mailer.expiry) != 0 {
		t.Fatalf("unexpected notification: %+v", result)
	}
}

func TestExpirySweepIsolatesFailures(t *testing.T) {
	svc, cards, accounts, mailer := newTestNotificationService(t)
	now := time.Date(2024, time.December, 22, 10, 0, 0, 0, time.UTC)
	svc.WithClock(func() time.Time { return now })

	seedOwner(t, accounts, "owner-1", "alice@example.com")
	// c1's owner is missing, c2's delivery fails, c3 succeeds.
	if err := cards.Create(context.Background(), expiringCard("c1", "ghost-owner", nil)); err != nil {
		t.Fatalf("seed card: %v", err)
	}
	if err := cards.Create(context.Background(), expiringCard("c2", "owner-1", nil)); err != nil {
		t.Fatalf("seed card: %v", err)
	}
	if err := cards.Create(context.Background(), expiringCard("c3", "owner-1", nil)); err != nil {
		t.Fatalf("seed card: %v", err)
	}
	mailer.failFor["Card c2"] = true

	result, err := svc.CheckExpiringCards(context.Background())
	if err != nil {
		t.Fatalf("CheckExpiringCards: %v", err)
	}
	if result.Checked != 3 || result.Notified != 1 || result.Failed != 2 {
		t.Fatalf("result = %+v", result)
	}
	if len(mailer.expiry) != 1 || mailer.expiry[0].cardName != "Card c3" {
		t.Fatalf("emails = %+v", mailer.expiry)
	}

	// Failed deliveries must not start a cooldown.
	failed, err := cards.GetByID(context.Background(), "owner-1", "c2")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if failed.Notifications.Expiry.LastNotified != nil {
		t.Fatal("failed delivery set the cooldown timestamp")
	}
}

func TestSpendingSweepNotifiesOverThreshold(t *testing.T) {
	svc, cards, accounts, mailer := newTestNotificationService(t)
	now := time.Date(2024, time.December, 22, 10, 0, 0, 0, time.UTC)
	svc.WithClock(func() time.Time { return now })

	seedOwner(t, accounts, "owner-1", "alice@example.com")

	over := domain.Card{
		ID: "over", OwnerID: "owner-1", CardName: "Over",
		SpendingLimit: 1000, CurrentSpending: 850,
		Notifications: domain.NotificationSettings{
			Spending: domain.SpendingNotification{Enabled: true, Threshold: 80},
		},
	}
	under := domain.Card{
		ID: "under", OwnerID: "owner-1", CardName: "Under",
		SpendingLimit: 1000, CurrentSpending: 200,
		Notifications: domain.NotificationSettings{
			Spending: domain.SpendingNotification{Enabled: true, Threshold: 80},
		},
	}
	if err := cards.Create(context.Background(), over); err != nil {
		t.Fatalf("seed card: %v", err)
	}
	if err := cards.Create(context.Background(), under); err != nil {
		t.Fatalf("seed card: %v", err)
	}

	result, err := svc.CheckSpendingLimits(context.Background())
	if err != nil {
		t.Fatalf("CheckSpendingLimits: %v", err)
	}
	if result.Checked != 2 || result.Notified != 1 {
		t.Fatalf("result = %+v", result)
	}
	if len(mailer.spending) != 1 {
		t.Fatalf("got %d emails, want 1", len(mailer.spending))
	}
	sent := mailer.spending[0]
	if sent.cardName != "Over" || sent.percentage != 85 || sent.limit != 1000 {
		t.Fatalf("email = %+v", sent)
	}

	stored, err := cards.GetByID(context.Background(), "owner-1", "over")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.Notifications.Spending.LastNotified == nil {
		t.Fatal("cooldown timestamp not persisted")
	}
}

func TestSpendingSweepCooldown(t *testing.T) {
	svc, cards, accounts, mailer := newTestNotificationService(t)
	now := time.Date(2024, time.December, 22, 10, 0, 0, 0, time.UTC)
	svc.WithClock(func() time.Time { return now })

	seedOwner(t, accounts, "owner-1", "alice@example.com")

	twoDaysAgo := now.Add(-2 * 24 * time.Hour)
	card := domain.Card{
		ID: "c1", OwnerID: "owner-1", CardName: "Card",
		SpendingLimit: 1000, CurrentSpending: 999,
		Notifications: domain.NotificationSettings{
			Spending: domain.SpendingNotification{Enabled: true, Threshold: 80, LastNotified: &twoDaysAgo},
		},
	}
	if err := cards.Create(context.Background(), card); err != nil {
		t.Fatalf("seed card: %v", err)
	}

	result, err := svc.CheckSpendingLimits(context.Background())
	if err != nil {
		t.Fatalf("CheckSpendingLimits: %v", err)
	}
	if result.Notified != 0 || len(mailer.spending) != 0 {
		t.Fatalf("cooldown ignored: %+v", result)
	}
}
