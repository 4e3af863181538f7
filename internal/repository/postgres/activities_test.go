package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v2"

	"github.com/burakzaferozcan/Vaultify/internal/core/domain"
	"github.com/burakzaferozcan/Vaultify/internal/repository"
)

var duplicateEmailErr = pgconn.PgError{Code: uniqueViolation, ConstraintName: "accounts_email_lower_idx"}

func TestActivityRepository_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewActivityRepository(mock)

	ip := "203.0.113.7"
	activity := domain.Activity{
		ID:           "activity-1",
		OwnerID:      "owner-1",
		Action:       domain.ActionCreate,
		ResourceType: domain.ResourcePassword,
		Details:      "Created password entry: GitHub",
		IPAddress:    &ip,
		CreatedAt:    time.Now().UTC(),
	}

	mock.ExpectExec(`INSERT INTO activities`).
		WithArgs(
			activity.ID,
			activity.OwnerID,
			activity.Action,
			activity.ResourceType,
			activity.Details,
			&ip,
			(*string)(nil),
			activity.CreatedAt,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	if err := repo.Create(context.Background(), activity); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestActivityRepository_ListRecent(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewActivityRepository(mock)

	createdAt := time.Now().UTC()
	rows := pgxmock.NewRows(activityColumns).
		AddRow("activity-2", "owner-1", domain.ActionView, domain.ResourcePassword, "Viewed password entry: GitHub", (*string)(nil), (*string)(nil), createdAt).
		AddRow("activity-1", "owner-1", domain.ActionCreate, domain.ResourcePassword, "Created password entry: GitHub", (*string)(nil), (*string)(nil), createdAt.Add(-time.Minute))

	mock.ExpectQuery(`SELECT .+ FROM activities`).
		WithArgs("owner-1").
		WillReturnRows(rows)

	activities, err := repo.ListRecent(context.Background(), "owner-1", 10)
	if err != nil {
		t.Fatalf("ListRecent returned error: %v", err)
	}
	if len(activities) != 2 {
		t.Fatalf("got %d activities, want 2", len(activities))
	}
	if activities[0].Action != domain.ActionView {
		t.Fatalf("first action = %s, want view", activities[0].Action)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestActivityRepository_CountByAction(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewActivityRepository(mock)

	rows := pgxmock.NewRows([]string{"action", "count"}).
		AddRow(domain.ActionView, int64(4)).
		AddRow(domain.ActionCreate, int64(2))

	mock.ExpectQuery(`SELECT action, COUNT\(\*\) FROM activities`).
		WithArgs("owner-1").
		WillReturnRows(rows)

	counts, err := repo.CountByAction(context.Background(), "owner-1")
	if err != nil {
		t.Fatalf("CountByAction returned error: %v", err)
	}
	if counts[domain.ActionView] != 4 || counts[domain.ActionCreate] != 2 {
		t.Fatalf("counts = %+v", counts)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAccountRepository_CreateDuplicateEmail(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewAccountRepository(mock)

	now := time.Now().UTC()
	account := domain.Account{
		ID:           "account-1",
		Name:         "Alice",
		Email:        "alice@example.com",
		PasswordHash: "argon2id$...",
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	mock.ExpectExec(`INSERT INTO accounts`).
		WithArgs(account.ID, account.Name, account.Email, account.PasswordHash, account.CreatedAt, account.UpdatedAt).
		WillReturnError(&duplicateEmailErr)

	err = repo.Create(context.Background(), account)
	if !errors.Is(err, repository.ErrDuplicate) {
		t.Fatalf("got %v, want ErrDuplicate", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
