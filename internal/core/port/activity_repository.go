package port

import (
	"context"
	"time"

	"github.com/burakzaferozcan/Vaultify/internal/core/domain"
)

// ActivityRepository exposes persistence behavior for the append-only audit
// trail. There are deliberately no update or delete operations.
type ActivityRepository interface {
	Create(ctx context.Context, activity domain.Activity) error
	// ListRecent returns entries ordered by creation time descending.
	ListRecent(ctx context.Context, ownerID string, limit int) ([]domain.Activity, error)
	CountByOwner(ctx context.Context, ownerID string) (int, error)
	CountSince(ctx context.Context, ownerID string, since time.Time) (int, error)
	// CountByAction returns a per-action breakdown for the owner.
	CountByAction(ctx context.Context, ownerID string) (map[domain.ActivityAction]int, error)
	// ListByActions filters to the given actions, newest first.
	ListByActions(ctx context.Context, ownerID string, actions []domain.ActivityAction, limit int) ([]domain.Activity, error)
}
