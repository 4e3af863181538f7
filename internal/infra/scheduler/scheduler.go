package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/burakzaferozcan/Vaultify/internal/usecase"
)

// CardSweeper runs the card notification sweeps. Implemented by
// usecase.NotificationService.
type CardSweeper interface {
	CheckExpiringCards(ctx context.Context) (usecase.SweepResult, error)
	CheckSpendingLimits(ctx context.Context) (usecase.SweepResult, error)
}

// Scheduler fires the daily card notification sweeps at a fixed UTC hour.
type Scheduler struct {
	sweeper CardSweeper
	hourUTC int
	log     *zap.Logger
	now     func() time.Time
}

// New constructs a Scheduler firing once a day at hourUTC.
func New(sweeper CardSweeper, hourUTC int, log *zap.Logger) *Scheduler {
	if hourUTC < 0 || hourUTC > 23 {
		hourUTC = 0
	}
	return &Scheduler{
		sweeper: sweeper,
		hourUTC: hourUTC,
		log:     log,
		now:     time.Now,
	}
}

// WithClock overrides the time source. Intended for tests.
func (s *Scheduler) WithClock(now func() time.Time) *Scheduler {
	s.now = now
	return s
}

// Run blocks until ctx is cancelled, executing both sweeps once per day.
func (s *Scheduler) Run(ctx context.Context) {
	for {
		wait := time.Until(nextSweep(s.now(), s.hourUTC))

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		s.runOnce(ctx)
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	expiry, err := s.sweeper.CheckExpiringCards(ctx)
	if err != nil {
		s.log.Error("expiry sweep failed", zap.Error(err))
	} else {
		s.log.Info("expiry sweep complete",
			zap.Int("checked", expiry.Checked),
			zap.Int("notified", expiry.Notified),
			zap.Int("failed", expiry.Failed))
	}

	spending, err := s.sweeper.CheckSpendingLimits(ctx)
	if err != nil {
		s.log.Error("spending sweep failed", zap.Error(err))
	} else {
		s.log.Info("spending sweep complete",
			zap.Int("checked", spending.Checked),
			zap.Int("notified", spending.Notified),
			zap.Int("failed", spending.Failed))
	}
}

// nextSweep returns the next occurrence of hourUTC strictly after now.
func nextSweep(now time.Time, hourUTC int) time.Time {
	now = now.UTC()
	next := time.Date(now.Year(), now.Month(), now.Day(), hourUTC, 0, 0, 0, time.UTC)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
