package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/burakzaferozcan/Vaultify/internal/core/domain"
	"github.com/burakzaferozcan/Vaultify/internal/core/port"
	"github.com/burakzaferozcan/Vaultify/internal/repository"
)

var credentialColumns = []string{"id", "owner_id", "title", "username", "secret", "url", "notes", "created_at", "updated_at"}

const credentialReturning = "RETURNING id, owner_id, title, username, secret, url, notes, created_at, updated_at"

// CredentialRepository implements port.CredentialRepository using
// PostgreSQL. Every owner-scoped statement filters on both id and owner_id,
// so foreign records behave exactly like missing ones.
type CredentialRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewCredentialRepository constructs a repository backed by any executor
// that satisfies pgExecutor.
func NewCredentialRepository(exec pgExecutor) *CredentialRepository {
	return &CredentialRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a new credential row.
func (r *CredentialRepository) Create(ctx context.Context, credential domain.Credential) error {
	stmt, args, err := r.builder.Insert("credentials").
		Columns(credentialColumns...).
		Values(
			credential.ID,
			credential.OwnerID,
			credential.Title,
			credential.Username,
			credential.Secret,
			credential.URL,
			credential.Notes,
			credential.CreatedAt,
			credential.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert credential sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert credential: %w", err)
	}

	return nil
}

// ListByOwner returns the owner's credentials, newest first.
func (r *CredentialRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Credential, error) {
	stmt, args, err := r.builder.Select(credentialColumns...).
		From("credentials").
		Where(squirrel.Eq{"owner_id": ownerID}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list credentials sql: %w", err)
	}

	return r.queryCredentials(ctx, stmt, args)
}

// GetByID retrieves a single credential owned by the account.
func (r *CredentialRepository) GetByID(ctx context.Context, ownerID, id string) (*domain.Credential, error) {
	stmt, args, err := r.builder.Select(credentialColumns...).
		From("credentials").
		Where(squirrel.Eq{"id": id, "owner_id": ownerID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select credential sql: %w", err)
	}

	return scanCredential(r.exec.QueryRow(ctx, stmt, args...))
}

// Update applies the non-nil patch fields and returns the updated row.
func (r *CredentialRepository) Update(ctx context.Context, ownerID, id string, patch domain.CredentialPatch) (*domain.Credential, error) {
	query := r.builder.Update("credentials").
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": id, "owner_id": ownerID}).
		Suffix(credentialReturning)

	if patch.Title != nil {
		query = query.Set("title", *patch.Title)
	}
	if patch.Username != nil {
		query = query.Set("username", *patch.Username)
	}
	if patch.Secret != nil {
		query = query.Set("secret", *patch.Secret)
	}
	if patch.URL != nil {
		query = query.Set("url", *patch.URL)
	}
	if patch.Notes != nil {
		query = query.Set("notes", *patch.Notes)
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build update credential sql: %w", err)
	}

	return scanCredential(r.exec.QueryRow(ctx, stmt, args...))
}

// Delete removes an owned credential and returns the deleted row.
func (r *CredentialRepository) Delete(ctx context.Context, ownerID, id string) (*domain.Credential, error) {
	stmt, args, err := r.builder.Delete("credentials").
		Where(squirrel.Eq{"id": id, "owner_id": ownerID}).
		Suffix(credentialReturning).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build delete credential sql: %w", err)
	}

	return scanCredential(r.exec.QueryRow(ctx, stmt, args...))
}

// Search matches the query case-insensitively against title, username, url,
// and notes. The encrypted secret column is deliberately not searched.
func (r *CredentialRepository) Search(ctx context.Context, ownerID, query string) ([]domain.Credential, error) {
	pattern := "%" + escapeLike(query) + "%"
	stmt, args, err := r.builder.Select(credentialColumns...).
		From("credentials").
		Where(squirrel.Eq{"owner_id": ownerID}).
		Where(squirrel.Or{
			squirrel.ILike{"title": pattern},
			squirrel.ILike{"username": pattern},
			squirrel.ILike{"url": pattern},
			squirrel.ILike{"notes": pattern},
		}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build search credentials sql: %w", err)
	}

	return r.queryCredentials(ctx, stmt, args)
}

func (r *CredentialRepository) queryCredentials(ctx context.Context, stmt string, args []any) ([]domain.Credential, error) {
	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query credentials: %w", err)
	}
	defer rows.Close()

	credentials := make([]domain.Credential, 0)
	for rows.Next() {
		var c domain.Credential
		if err := rows.Scan(
			&c.ID,
			&c.OwnerID,
			&c.Title,
			&c.Username,
			&c.Secret,
			&c.URL,
			&c.Notes,
			&c.CreatedAt,
			&c.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan credential: %w", err)
		}
		credentials = append(credentials, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate credentials: %w", err)
	}

	return credentials, nil
}

func scanCredential(row pgx.Row) (*domain.Credential, error) {
	var c domain.Credential
	if err := row.Scan(
		&c.ID,
		&c.OwnerID,
		&c.Title,
		&c.Username,
		&c.Secret,
		&c.URL,
		&c.Notes,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan credential: %w", err)
	}
	return &c, nil
}

var _ port.CredentialRepository = (*CredentialRepository)(nil)
