package postgres

import (
	"context"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"

	"github.com/burakzaferozcan/Vaultify/internal/core/domain"
	"github.com/burakzaferozcan/Vaultify/internal/core/port"
)

var activityColumns = []string{"id", "owner_id", "action", "resource_type", "details", "ip_address", "user_agent", "created_at"}

// ActivityRepository implements port.ActivityRepository using PostgreSQL.
// The table is append-only: there are no update or delete statements here.
type ActivityRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewActivityRepository constructs a repository backed by any executor that
// satisfies pgExecutor.
func NewActivityRepository(exec pgExecutor) *ActivityRepository {
	return &ActivityRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create appends one audit entry.
func (r *ActivityRepository) Create(ctx context.Context, activity domain.Activity) error {
	stmt, args, err := r.builder.Insert("activities").
		Columns(activityColumns...).
		Values(
			activity.ID,
			activity.OwnerID,
			activity.Action,
			activity.ResourceType,
			activity.Details,
			activity.IPAddress,
			activity.UserAgent,
			activity.CreatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert activity sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}

	return nil
}

// ListRecent returns the owner's newest entries.
func (r *ActivityRepository) ListRecent(ctx context.Context, ownerID string, limit int) ([]domain.Activity, error) {
	query := r.builder.Select(activityColumns...).
		From("activities").
		Where(squirrel.Eq{"owner_id": ownerID}).
		OrderBy("created_at DESC")
	if limit > 0 {
		query = query.Limit(uint64(limit))
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list activities sql: %w", err)
	}

	return r.queryActivities(ctx, stmt, args)
}

// CountByOwner returns the owner's total entry count.
func (r *ActivityRepository) CountByOwner(ctx context.Context, ownerID string) (int, error) {
	stmt, args, err := r.builder.Select("COUNT(*)").
		From("activities").
		Where(squirrel.Eq{"owner_id": ownerID}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count activities sql: %w", err)
	}

	var count int64
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("scan activities count: %w", err)
	}

	return int(count), nil
}

// CountSince returns the number of entries created at or after since.
func (r *ActivityRepository) CountSince(ctx context.Context, ownerID string, since time.Time) (int, error) {
	stmt, args, err := r.builder.Select("COUNT(*)").
		From("activities").
		Where(squirrel.Eq{"owner_id": ownerID}).
		Where(squirrel.GtOrEq{"created_at": since}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count recent activities sql: %w", err)
	}

	var count int64
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("scan recent activities count: %w", err)
	}

	return int(count), nil
}

// CountByAction returns a per-action breakdown for the owner.
func (r *ActivityRepository) CountByAction(ctx context.Context, ownerID string) (map[domain.ActivityAction]int, error) {
	stmt, args, err := r.builder.Select("action", "COUNT(*)").
		From("activities").
		Where(squirrel.Eq{"owner_id": ownerID}).
		GroupBy("action").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build count by action sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query action counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.ActivityAction]int)
	for rows.Next() {
		var (
			action domain.ActivityAction
			count  int64
		)
		if err := rows.Scan(&action, &count); err != nil {
			return nil, fmt.Errorf("scan action count: %w", err)
		}
		counts[action] = int(count)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate action counts: %w", err)
	}

	return counts, nil
}

// ListByActions filters to the given actions, newest first.
func (r *ActivityRepository) ListByActions(ctx context.Context, ownerID string, actions []domain.ActivityAction, limit int) ([]domain.Activity, error) {
	values := make([]string, 0, len(actions))
	for _, action := range actions {
		values = append(values, string(action))
	}

	query := r.builder.Select(activityColumns...).
		From("activities").
		Where(squirrel.Eq{"owner_id": ownerID, "action": values}).
		OrderBy("created_at DESC")
	if limit > 0 {
		query = query.Limit(uint64(limit))
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list by actions sql: %w", err)
	}

	return r.queryActivities(ctx, stmt, args)
}

func (r *ActivityRepository) queryActivities(ctx context.Context, stmt string, args []any) ([]domain.Activity, error) {
	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query activities: %w", err)
	}
	defer rows.Close()

	activities := make([]domain.Activity, 0)
	for rows.Next() {
		var a domain.Activity
		if err := rows.Scan(
			&a.ID,
			&a.OwnerID,
			&a.Action,
			&a.ResourceType,
			&a.Details,
			&a.IPAddress,
			&a.UserAgent,
			&a.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		activities = append(activities, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate activities: %w", err)
	}

	return activities, nil
}

var _ port.ActivityRepository = (*ActivityRepository)(nil)
