package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/burakzaferozcan/Vaultify/internal/core/domain"
	"github.com/burakzaferozcan/Vaultify/internal/core/port"
)

const (
	defaultRecentLimit   = 10
	defaultSecurityLimit = 5
)

// securityActions are the actions surfaced by SecurityEvents.
var securityActions = []domain.ActivityAction{
	domain.ActionLogin,
	domain.ActionLogout,
	domain.ActionExport,
}

// ActivityService maintains the append-only audit trail.
type ActivityService struct {
	activities port.ActivityRepository
	events     port.EventPublisher
	logger     *zap.Logger
	now        func() time.Time
}

// NewActivityService constructs an ActivityService.
func NewActivityService(activities port.ActivityRepository, events port.EventPublisher, log *zap.Logger) *ActivityService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ActivityService{
		activities: activities,
		events:     events,
		logger:     log,
		now:        time.Now,
	}
}

// WithClock allows injection of a custom clock (primarily for testing).
func (s *ActivityService) WithClock(now func() time.Time) *ActivityService {
	if now != nil {
		s.now = now
	}
	return s
}

// Record appends one audit entry for a completed operation. A failing
// append is logged and swallowed: the business operation already succeeded
// and must not be rolled back by its audit side effect.
func (s *ActivityService) Record(ctx context.Context, ownerID string, action domain.ActivityAction, resource domain.ResourceType, details string, meta *domain.RequestMetadata) {
	entry := domain.Activity{
		ID:           uuid.NewString(),
		OwnerID:      ownerID,
		Action:       action,
		ResourceType: resource,
		Details:      details,
		CreatedAt:    s.now().UTC(),
	}
	if meta != nil {
		if meta.IPAddress != "" {
			ip := meta.IPAddress
			entry.IPAddress = &ip
		}
		if meta.UserAgent != "" {
			ua := meta.UserAgent
			entry.UserAgent = &ua
		}
	}

	if err := s.activities.Create(ctx, entry); err != nil {
		s.logger.Error("failed to append activity entry",
			zap.String("owner_id", ownerID),
			zap.String("action", string(action)),
			zap.String("resource_type", string(resource)),
			zap.Error(err),
		)
		return
	}

	if s.events == nil {
		return
	}

	event := domain.ActivityRecordedEvent{
		EventID:      entry.ID,
		OwnerID:      entry.OwnerID,
		Action:       entry.Action,
		ResourceType: entry.ResourceType,
		Details:      entry.Details,
		OccurredAt:   entry.CreatedAt,
	}
	if err := s.events.PublishActivityRecorded(ctx, event); err != nil {
		s.logger.Warn("failed to publish activity event", zap.Error(err))
	}
}

// Recent returns the owner's newest entries, capped at limit (default 10).
func (s *ActivityService) Recent(ctx context.Context, ownerID string, limit int) ([]domain.Activity, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	return s.activities.ListRecent(ctx, ownerID, limit)
}

// Stats summarises the owner's audit trail: total entries, entries in the
// trailing 24 hours, and a per-action breakdown.
func (s *ActivityService) Stats(ctx context.Context, ownerID string) (domain.ActivityStats, error) {
	total, err := s.activities.CountByOwner(ctx, ownerID)
	if err != nil {
		return domain.ActivityStats{}, err
	}

	since := s.now().UTC().Add(-24 * time.Hour)
	recent, err := s.activities.CountSince(ctx, ownerID, since)
	if err != nil {
		return domain.ActivityStats{}, err
	}

	counts, err := s.activities.CountByAction(ctx, ownerID)
	if err != nil {
		return domain.ActivityStats{}, err
	}

	return domain.ActivityStats{
		Total:        total,
		Last24Hours:  recent,
		ActionCounts: counts,
	}, nil
}

// SecurityEvents returns the owner's newest login/logout/export entries,
// capped at limit (default 5).
func (s *ActivityService) SecurityEvents(ctx context.Context, ownerID string, limit int) ([]domain.Activity, error) {
	if limit <= 0 {
		limit = defaultSecurityLimit
	}
	return s.activities.ListByActions(ctx, ownerID, securityActions, limit)
}
