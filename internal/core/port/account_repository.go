package port

import (
	"context"
	"time"

	"github.com/burakzaferozcan/Vaultify/internal/core/domain"
)

// AccountRepository exposes persistence behavior for accounts.
type AccountRepository interface {
	Create(ctx context.Context, account domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	// GetByEmail matches the address case-insensitively.
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	// UpdateProfile applies the non-nil patch fields and returns the updated
	// row, or repository.ErrNotFound when no account matched.
	UpdateProfile(ctx context.Context, id string, patch domain.AccountPatch) (*domain.Account, error)
	UpdatePassword(ctx context.Context, id string, passwordHash string, changedAt time.Time) error
}
