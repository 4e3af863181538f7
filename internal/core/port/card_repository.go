package port

import (
	"context"
	"time"

	"github.com/burakzaferozcan/Vaultify/internal/core/domain"
)

// CardRepository exposes persistence behavior for payment card records.
// Owner-scoped operations collapse not-found and not-owned into
// repository.ErrNotFound, same as CredentialRepository.
type CardRepository interface {
	Create(ctx context.Context, card domain.Card) error
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Card, error)
	GetByID(ctx context.Context, ownerID, id string) (*domain.Card, error)
	Update(ctx context.Context, ownerID, id string, patch domain.CardPatch) (*domain.Card, error)
	Delete(ctx context.Context, ownerID, id string) (*domain.Card, error)

	// ListExpiryCandidates returns cards with expiry notifications enabled,
	// across all owners.
	ListExpiryCandidates(ctx context.Context) ([]domain.Card, error)
	// ListSpendingCandidates returns cards with spending notifications
	// enabled and a positive spending limit, across all owners.
	ListSpendingCandidates(ctx context.Context) ([]domain.Card, error)
	// SetExpiryNotified persists the expiry-notification cooldown timestamp.
	SetExpiryNotified(ctx context.Context, id string, at time.Time) error
	// SetSpendingNotified persists the spending-notification cooldown timestamp.
	SetSpendingNotified(ctx context.Context, id string, at time.Time) error
}
