package usecase

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/burakzaferozcan/Vaultify/internal/core/domain"
	"github.com/burakzaferozcan/Vaultify/internal/core/port"
	"github.com/burakzaferozcan/Vaultify/internal/infra/logger"
)

// DefaultNotificationCooldownDays suppresses repeat alerts for the same
// card within this many whole days.
const DefaultNotificationCooldownDays = 3

// SweepResult summarizes one notification sweep.
type SweepResult struct {
	Checked  int
	Notified int
	Failed   int
}

// NotificationService runs the expiry and spending sweeps. A failure on
// one card never aborts the sweep; the card is counted and skipped.
type NotificationService struct {
	cards        port.CardRepository
	accounts     port.AccountRepository
	mailer       port.Mailer
	cooldownDays int
	log          *zap.Logger
	now          func() time.Time
}

// NewNotificationService constructs a NotificationService. A non-positive
// cooldown falls back to the default.
func NewNotificationService(cards port.CardRepository, accounts port.AccountRepository, mailer port.Mailer, cooldownDays int, log *zap.Logger) *NotificationService {
	if cooldownDays <= 0 {
		cooldownDays = DefaultNotificationCooldownDays
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &NotificationService{
		cards:        cards,
		accounts:     accounts,
		mailer:       mailer,
		cooldownDays: cooldownDays,
		log:          log,
		now:          time.Now,
	}
}

// WithClock allows injection of a custom clock (primarily for testing).
func (s *NotificationService) WithClock(now func() time.Time) *NotificationService {
	if now != nil {
		s.now = now
	}
	return s
}

// CheckExpiringCards emails owners of cards that expire within their
// configured window, subject to the cooldown.
func (s *NotificationService) CheckExpiringCards(ctx context.Context) (SweepResult, error) {
	cards, err := s.cards.ListExpiryCandidates(ctx)
	if err != nil {
		return SweepResult{}, fmt.Errorf("list expiry candidates: %w", err)
	}

	now := s.now().UTC()
	result := SweepResult{Checked: len(cards)}

	for _, card := range cards {
		if !card.IsExpiringSoon(now) {
			continue
		}
		if !s.shouldNotify(card.Notifications.Expiry.LastNotified, now) {
			continue
		}

		recipient, ok := s.resolveOwner(ctx, card)
		if !ok {
			result.Failed++
			continue
		}

		expiry, _ := card.ExpiryDate()
		daysLeft := int(math.Ceil(expiry.Sub(now).Hours() / 24))
		if daysLeft < 0 {
			daysLeft = 0
		}

		if err := s.mailer.SendExpiryNotification(ctx, recipient, card.CardName, daysLeft); err != nil {
			s.log.Warn("expiry notification failed",
				zap.String("card_id", card.ID),
				zap.String("recipient", logger.MaskEmail(recipient)),
				zap.Error(err))
			result.Failed++
			continue
		}
		if err := s.cards.SetExpiryNotified(ctx, card.ID, now); err != nil {
			s.log.Warn("persist expiry cooldown failed", zap.String("card_id", card.ID), zap.Error(err))
		}
		result.Notified++
	}

	s.log.Info("expiry sweep complete",
		zap.Int("checked", result.Checked),
		zap.Int("notified", result.Notified),
		zap.Int("failed", result.Failed))
	return result, nil
}

// CheckSpendingLimits emails owners of cards whose spending reached the
// configured threshold percentage, subject to the cooldown.
func (s *NotificationService) CheckSpendingLimits(ctx context.Context) (SweepResult, error) {
	cards, err := s.cards.ListSpendingCandidates(ctx)
	if err != nil {
		return SweepResult{}, fmt.Errorf("list spending candidates: %w", err)
	}

	now := s.now().UTC()
	result := SweepResult{Checked: len(cards)}

	for _, card := range cards {
		status := card.SpendingStatus()
		if status == nil || !status.IsNearLimit {
			continue
		}
		if !s.shouldNotify(card.Notifications.Spending.LastNotified, now) {
			continue
		}

		recipient, ok := s.resolveOwner(ctx, card)
		if !ok {
			result.Failed++
			continue
		}

		pct := int(math.Round(status.Percentage))
		if err := s.mailer.SendSpendingNotification(ctx, recipient, card.CardName, pct, card.SpendingLimit); err != nil {
			s.log.Warn("spending notification failed",
				zap.String("card_id", card.ID),
				zap.String("recipient", logger.MaskEmail(recipient)),
				zap.Error(err))
			result.Failed++
			continue
		}
		if err := s.cards.SetSpendingNotified(ctx, card.ID, now); err != nil {
			s.log.Warn("persist spending cooldown failed", zap.String("card_id", card.ID), zap.Error(err))
		}
		result.Notified++
	}

	s.log.Info("spending sweep complete",
		zap.Int("checked", result.Checked),
		zap.Int("notified", result.Notified),
		zap.Int("failed", result.Failed))
	return result, nil
}

// shouldNotify applies the cooldown: notify when never notified before, or
// when at least cooldownDays whole days have passed.
func (s *NotificationService) shouldNotify(lastNotified *time.Time, now time.Time) bool {
	if lastNotified == nil {
		return true
	}
	days := math.Floor(now.Sub(*lastNotified).Hours() / 24)
	return days >= float64(s.cooldownDays)
}

func (s *NotificationService) resolveOwner(ctx context.Context, card domain.Card) (string, bool) {
	account, err := s.accounts.GetByID(ctx, card.OwnerID)
	if err != nil {
		s.log.Warn("owner lookup failed during sweep",
			zap.String("card_id", card.ID),
			zap.String("owner_id", card.OwnerID),
			zap.Error(err))
		return "", false
	}
	return account.Email, true
}
