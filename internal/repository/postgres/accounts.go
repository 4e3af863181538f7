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

var accountColumns = []string{"id", "name", "email", "password_hash", "created_at", "updated_at"}

// AccountRepository implements port.AccountRepository using PostgreSQL.
type AccountRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewAccountRepository constructs a repository backed by any executor that
// satisfies pgExecutor.
func NewAccountRepository(exec pgExecutor) *AccountRepository {
	return &AccountRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a new account row. A unique index on lower(email) maps to
// repository.ErrDuplicate.
func (r *AccountRepository) Create(ctx context.Context, account domain.Account) error {
	stmt, args, err := r.builder.Insert("accounts").
		Columns(accountColumns...).
		Values(
			account.ID,
			account.Name,
			account.Email,
			account.PasswordHash,
			account.CreatedAt,
			account.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert account sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("insert account: %w", err)
	}

	return nil
}

// GetByID retrieves an account by identifier.
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	stmt, args, err := r.builder.Select(accountColumns...).
		From("accounts").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select account sql: %w", err)
	}

	return r.scanAccount(r.exec.QueryRow(ctx, stmt, args...))
}

// GetByEmail retrieves an account by email, matching case-insensitively.
func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	stmt, args, err := r.builder.Select(accountColumns...).
		From("accounts").
		Where("lower(email) = lower(?)", email).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select account by email sql: %w", err)
	}

	return r.scanAccount(r.exec.QueryRow(ctx, stmt, args...))
}

// UpdateProfile applies the non-nil patch fields and returns the updated row.
func (r *AccountRepository) UpdateProfile(ctx context.Context, id string, patch domain.AccountPatch) (*domain.Account, error) {
	query := r.builder.Update("accounts").
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING id, name, email, password_hash, created_at, updated_at")

	if patch.Name != nil {
		query = query.Set("name", *patch.Name)
	}
	if patch.Email != nil {
		query = query.Set("email", *patch.Email)
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build update account sql: %w", err)
	}

	account, err := r.scanAccount(r.exec.QueryRow(ctx, stmt, args...))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, repository.ErrDuplicate
		}
		return nil, err
	}
	return account, nil
}

// UpdatePassword stores a new password hash.
func (r *AccountRepository) UpdatePassword(ctx context.Context, id string, passwordHash string, changedAt time.Time) error {
	stmt, args, err := r.builder.Update("accounts").
		Set("password_hash", passwordHash).
		Set("updated_at", changedAt).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update password sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func (r *AccountRepository) scanAccount(row pgx.Row) (*domain.Account, error) {
	var account domain.Account
	if err := row.Scan(
		&account.ID,
		&account.Name,
		&account.Email,
		&account.PasswordHash,
		&account.CreatedAt,
		&account.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan account: %w", err)
	}
	return &account, nil
}

var _ port.AccountRepository = (*AccountRepository)(nil)
