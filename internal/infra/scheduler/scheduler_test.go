package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/burakzaferozcan/Vaultify/internal/usecase"
)

type fakeSweeper struct {
	expiryCalls   int
	spendingCalls int
	expiryErr     error
}

func (f *fakeSweeper) CheckExpiringCards(ctx context.Context) (usecase.SweepResult, error) {
	f.expiryCalls++
	if f.expiryErr != nil {
		return usecase.SweepResult{}, f.expiryErr
	}
	return usecase.SweepResult{Checked: 2, Notified: 1}, nil
}

func (f *fakeSweeper) CheckSpendingLimits(ctx context.Context) (usecase.SweepResult, error) {
	f.spendingCalls++
	return usecase.SweepResult{Checked: 1}, nil
}

func TestNextSweep(t *testing.T) {
	cases := []struct {
		name string
		now  time.Time
		hour int
		want time.Time
	}{
		{
			name: "later today",
			now:  time.Date(2025, 3, 14, 6, 30, 0, 0, time.UTC),
			hour: 9,
			want: time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC),
		},
		{
			name: "already passed rolls to tomorrow",
			now:  time.Date(2025, 3, 14, 9, 0, 1, 0, time.UTC),
			hour: 9,
			want: time.Date(2025, 3, 15, 9, 0, 0, 0, time.UTC),
		},
		{
			name: "exactly on the hour rolls to tomorrow",
			now:  time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC),
			hour: 9,
			want: time.Date(2025, 3, 15, 9, 0, 0, 0, time.UTC),
		},
		{
			name: "midnight hour",
			now:  time.Date(2025, 3, 14, 23, 59, 0, 0, time.UTC),
			hour: 0,
			want: time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := nextSweep(tc.now, tc.hour)
			if !got.Equal(tc.want) {
				t.Fatalf("nextSweep(%v, %d) = %v, want %v", tc.now, tc.hour, got, tc.want)
			}
		})
	}
}

func TestRunOnceExecutesBothSweeps(t *testing.T) {
	sweeper := &fakeSweeper{}
	s := New(sweeper, 9, zap.NewNop())

	s.runOnce(context.Background())

	if sweeper.expiryCalls != 1 {
		t.Fatalf("expected 1 expiry sweep, got %d", sweeper.expiryCalls)
	}
	if sweeper.spendingCalls != 1 {
		t.Fatalf("expected 1 spending sweep, got %d", sweeper.spendingCalls)
	}
}

func TestRunOnceContinuesAfterExpiryFailure(t *testing.T) {
	sweeper := &fakeSweeper{expiryErr: errors.New("postgres down")}
	s := New(sweeper, 9, zap.NewNop())

	s.runOnce(context.Background())

	if sweeper.spendingCalls != 1 {
		t.Fatalf("spending sweep should still run, got %d calls", sweeper.spendingCalls)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	sweeper := &fakeSweeper{}
	s := New(sweeper, 9, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop after cancellation")
	}
}
