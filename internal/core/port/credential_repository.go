package port

import (
	"context"

	"github.com/burakzaferozcan/Vaultify/internal/core/domain"
)

// CredentialRepository exposes persistence behavior for password records.
// Every owner-scoped operation filters on both record id and owner id in the
// query itself, so a record owned by someone else behaves exactly like a
// missing one.
type CredentialRepository interface {
	Create(ctx context.Context, credential domain.Credential) error
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Credential, error)
	GetByID(ctx context.Context, ownerID, id string) (*domain.Credential, error)
	// Update applies the non-nil patch fields and returns the updated row,
	// or repository.ErrNotFound when no owned record matched.
	Update(ctx context.Context, ownerID, id string, patch domain.CredentialPatch) (*domain.Credential, error)
	// Delete removes the record and returns it, or repository.ErrNotFound.
	Delete(ctx context.Context, ownerID, id string) (*domain.Credential, error)
	// Search matches the query case-insensitively against title, username,
	// url, and notes. The encrypted secret is never searched.
	Search(ctx context.Context, ownerID, query string) ([]domain.Credential, error)
}
