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

var cardColumns = []string{
	"id",
	"owner_id",
	"card_name",
	"cardholder_name",
	"card_number",
	"expiry_month",
	"expiry_year",
	"cvv",
	"card_type",
	"card_brand",
	"category",
	"notes",
	"spending_limit",
	"current_spending",
	"expiry_notify_enabled",
	"expiry_notify_days",
	"expiry_last_notified",
	"spending_notify_enabled",
	"spending_notify_threshold",
	"spending_last_notified",
	"created_at",
	"updated_at",
}

const cardReturning = "RETURNING id, owner_id, card_name, cardholder_name, card_number, expiry_month, expiry_year, cvv, " +
	"card_type, card_brand, category, notes, spending_limit, current_spending, " +
	"expiry_notify_enabled, expiry_notify_days, expiry_last_notified, " +
	"spending_notify_enabled, spending_notify_threshold, spending_last_notified, created_at, updated_at"

// CardRepository implements port.CardRepository using PostgreSQL.
type CardRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewCardRepository constructs a repository backed by any executor that
// satisfies pgExecutor.
func NewCardRepository(exec pgExecutor) *CardRepository {
	return &CardRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a new card row.
func (r *CardRepository) Create(ctx context.Context, card domain.Card) error {
	stmt, args, err := r.builder.Insert("cards").
		Columns(cardColumns...).
		Values(
			card.ID,
			card.OwnerID,
			card.CardName,
			card.CardholderName,
			card.CardNumber,
			card.ExpiryMonth,
			card.ExpiryYear,
			card.CVV,
			card.CardType,
			card.CardBrand,
			card.Category,
			card.Notes,
			card.SpendingLimit,
			card.CurrentSpending,
			card.Notifications.Expiry.Enabled,
			card.Notifications.Expiry.DaysBeforeExpiry,
			card.Notifications.Expiry.LastNotified,
			card.Notifications.Spending.Enabled,
			card.Notifications.Spending.Threshold,
			card.Notifications.Spending.LastNotified,
			card.CreatedAt,
			card.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert card sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert card: %w", err)
	}

	return nil
}

// ListByOwner returns the owner's cards, newest first.
func (r *CardRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Card, error) {
	stmt, args, err := r.builder.Select(cardColumns...).
		From("cards").
		Where(squirrel.Eq{"owner_id": ownerID}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list cards sql: %w", err)
	}

	return r.queryCards(ctx, stmt, args)
}

// GetByID retrieves a single card owned by the account.
func (r *CardRepository) GetByID(ctx context.Context, ownerID, id string) (*domain.Card, error) {
	stmt, args, err := r.builder.Select(cardColumns...).
		From("cards").
		Where(squirrel.Eq{"id": id, "owner_id": ownerID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select card sql: %w", err)
	}

	return scanCard(r.exec.QueryRow(ctx, stmt, args...))
}

// Update applies the non-nil patch fields and returns the updated row.
func (r *CardRepository) Update(ctx context.Context, ownerID, id string, patch domain.CardPatch) (*domain.Card, error) {
	query := r.builder.Update("cards").
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": id, "owner_id": ownerID}).
		Suffix(cardReturning)

	if patch.CardName != nil {
		query = query.Set("card_name", *patch.CardName)
	}
	if patch.CardholderName != nil {
		query = query.Set("cardholder_name", *patch.CardholderName)
	}
	if patch.CardNumber != nil {
		query = query.Set("card_number", *patch.CardNumber)
	}
	if patch.ExpiryMonth != nil {
		query = query.Set("expiry_month", *patch.ExpiryMonth)
	}
	if patch.ExpiryYear != nil {
		query = query.Set("expiry_year", *patch.ExpiryYear)
	}
	if patch.CVV != nil {
		query = query.Set("cvv", *patch.CVV)
	}
	if patch.CardType != nil {
		query = query.Set("card_type", *patch.CardType)
	}
	if patch.CardBrand != nil {
		query = query.Set("card_brand", *patch.CardBrand)
	}
	if patch.Category != nil {
		query = query.Set("category", *patch.Category)
	}
	if patch.Notes != nil {
		query = query.Set("notes", *patch.Notes)
	}
	if patch.SpendingLimit != nil {
		query = query.Set("spending_limit", *patch.SpendingLimit)
	}
	if patch.CurrentSpending != nil {
		query = query.Set("current_spending", *patch.CurrentSpending)
	}
	if patch.Notifications != nil {
		query = query.
			Set("expiry_notify_enabled", patch.Notifications.Expiry.Enabled).
			Set("expiry_notify_days", patch.Notifications.Expiry.DaysBeforeExpiry).
			Set("spending_notify_enabled", patch.Notifications.Spending.Enabled).
			Set("spending_notify_threshold", patch.Notifications.Spending.Threshold)
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build update card sql: %w", err)
	}

	return scanCard(r.exec.QueryRow(ctx, stmt, args...))
}

// Delete removes an owned card and returns the deleted row.
func (r *CardRepository) Delete(ctx context.Context, ownerID, id string) (*domain.Card, error) {
	stmt, args, err := r.builder.Delete("cards").
		Where(squirrel.Eq{"id": id, "owner_id": ownerID}).
		Suffix(cardReturning).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build delete card sql: %w", err)
	}

	return scanCard(r.exec.QueryRow(ctx, stmt, args...))
}

// ListExpiryCandidates returns cards with expiry notifications enabled,
// across all owners.
func (r *CardRepository) ListExpiryCandidates(ctx context.Context) ([]domain.Card, error) {
	stmt, args, err := r.builder.Select(cardColumns...).
		From("cards").
		Where(squirrel.Eq{"expiry_notify_enabled": true}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list expiry candidates sql: %w", err)
	}

	return r.queryCards(ctx, stmt, args)
}

// ListSpendingCandidates returns cards with spending notifications enabled
// and a positive limit, across all owners.
func (r *CardRepository) ListSpendingCandidates(ctx context.Context) ([]domain.Card, error) {
	stmt, args, err := r.builder.Select(cardColumns...).
		From("cards").
		Where(squirrel.Eq{"spending_notify_enabled": true}).
		Where(squirrel.Gt{"spending_limit": 0}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list spending candidates sql: %w", err)
	}

	return r.queryCards(ctx, stmt, args)
}

// SetExpiryNotified persists the expiry-notification cooldown timestamp.
func (r *CardRepository) SetExpiryNotified(ctx context.Context, id string, at time.Time) error {
	return r.setNotified(ctx, "expiry_last_notified", id, at)
}

// SetSpendingNotified persists the spending-notification cooldown timestamp.
func (r *CardRepository) SetSpendingNotified(ctx context.Context, id string, at time.Time) error {
	return r.setNotified(ctx, "spending_last_notified", id, at)
}

func (r *CardRepository) setNotified(ctx context.Context, column, id string, at time.Time) error {
	stmt, args, err := r.builder.Update("cards").
		Set(column, at).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update %s sql: %w", column, err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update %s: %w", column, err)
	}
	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func (r *CardRepository) queryCards(ctx context.Context, stmt string, args []any) ([]domain.Card, error) {
	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query cards: %w", err)
	}
	defer rows.Close()

	cards := make([]domain.Card, 0)
	for rows.Next() {
		card, err := scanCardFields(rows)
		if err != nil {
			return nil, err
		}
		cards = append(cards, *card)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cards: %w", err)
	}

	return cards, nil
}

func scanCard(row pgx.Row) (*domain.Card, error) {
	card, err := scanCardFields(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return card, nil
}

func scanCardFields(row pgx.Row) (*domain.Card, error) {
	var card domain.Card
	if err := row.Scan(
		&card.ID,
		&card.OwnerID,
		&card.CardName,
		&card.CardholderName,
		&card.CardNumber,
		&card.ExpiryMonth,
		&card.ExpiryYear,
		&card.CVV,
		&card.CardType,
		&card.CardBrand,
		&card.Category,
		&card.Notes,
		&card.SpendingLimit,
		&card.CurrentSpending,
		&card.Notifications.Expiry.Enabled,
		&card.Notifications.Expiry.DaysBeforeExpiry,
		&card.Notifications.Expiry.LastNotified,
		&card.Notifications.Spending.Enabled,
		&card.Notifications.Spending.Threshold,
		&card.Notifications.Spending.LastNotified,
		&card.CreatedAt,
		&card.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan card: %w", err)
	}
	return &card, nil
}

var _ port.CardRepository = (*CardRepository)(nil)
