package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/burakzaferozcan/Vaultify/internal/core/domain"
	"github.com/burakzaferozcan/Vaultify/internal/core/port"
	"github.com/burakzaferozcan/Vaultify/internal/infra/security"
	"github.com/burakzaferozcan/Vaultify/internal/repository"
)

var (
	// ErrEmailTaken indicates the registration email is already bound to an
	// account.
	ErrEmailTaken = errors.New("email address already in use")
	// ErrInvalidCredentials indicates the email or password is incorrect.
	// A missing account and a wrong password both return this value so the
	// two cases are indistinguishable to the caller.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrAccountNotFound indicates the account does not exist.
	ErrAccountNotFound = errors.New("account not found")
)

// AuthSession pairs an account with its freshly issued session token.
type AuthSession struct {
	Account domain.Account
	Token   string
}

// AuthService coordinates registration, login, and profile flows.
type AuthService struct {
	accounts   port.AccountRepository
	activities *ActivityService
	sessions   *security.SessionManager
	now        func() time.Time
}

// NewAuthService constructs an AuthService.
func NewAuthService(accounts port.AccountRepository, activities *ActivityService, sessions *security.SessionManager) *AuthService {
	return &AuthService{
		accounts:   accounts,
		activities: activities,
		sessions:   sessions,
		now:        time.Now,
	}
}

// WithClock allows injection of a custom clock (primarily for testing).
func (s *AuthService) WithClock(now func() time.Time) *AuthService {
	if now != nil {
		s.now = now
	}
	return s
}

// Register creates a new account and issues a session token.
func (s *AuthService) Register(ctx context.Context, name, email, password string, meta *domain.RequestMetadata) (AuthSession, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if name == "" {
		return AuthSession{}, fmt.Errorf("name is required")
	}
	if email == "" {
		return AuthSession{}, fmt.Errorf("email is required")
	}
	if password == "" {
		return AuthSession{}, fmt.Errorf("password is required")
	}

	if _, err := s.accounts.GetByEmail(ctx, email); err == nil {
		return AuthSession{}, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return AuthSession{}, fmt.Errorf("lookup account: %w", err)
	}

	passwordHash, err := security.HashPassword(password)
	if err != nil {
		return AuthSession{}, fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	account := domain.Account{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.accounts.Create(ctx, account); err != nil {
		// A concurrent registration can still hit the unique index.
		if errors.Is(err, repository.ErrDuplicate) {
			return AuthSession{}, ErrEmailTaken
		}
		return AuthSession{}, fmt.Errorf("create account: %w", err)
	}

	token, err := s.sessions.Issue(account.ID)
	if err != nil {
		return AuthSession{}, fmt.Errorf("issue session token: %w", err)
	}

	s.activities.Record(ctx, account.ID, domain.ActionCreate, domain.ResourceAccount, "Account created", meta)

	account.PasswordHash = ""
	return AuthSession{Account: account, Token: token}, nil
}

// Login verifies credentials and issues a session token. Missing accounts
// and wrong passwords are deliberately indistinguishable.
func (s *AuthService) Login(ctx context.Context, email, password string, meta *domain.RequestMetadata) (AuthSession, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return AuthSession{}, ErrInvalidCredentials
	}

	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return AuthSession{}, ErrInvalidCredentials
		}
		return AuthSession{}, fmt.Errorf("lookup account: %w", err)
	}

	ok, err := security.VerifyPassword(password, account.PasswordHash)
	if err != nil {
		return AuthSession{}, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return AuthSession{}, ErrInvalidCredentials
	}

	token, err := s.sessions.Issue(account.ID)
	if err != nil {
		return AuthSession{}, fmt.Errorf("issue session token: %w", err)
	}

	s.activities.Record(ctx, account.ID, domain.ActionLogin, domain.ResourceAccount, "Logged in", meta)

	sanitized := *account
	sanitized.PasswordHash = ""
	return AuthSession{Account: sanitized, Token: token}, nil
}

// Logout records the logout. Session tokens are stateless and expire
// naturally; there is no revocation.
func (s *AuthService) Logout(ctx context.Context, accountID string, meta *domain.RequestMetadata) {
	s.activities.Record(ctx, accountID, domain.ActionLogout, domain.ResourceAccount, "Logged out", meta)
}

// Profile returns the account without its password hash.
func (s *AuthService) Profile(ctx context.Context, accountID string) (domain.Account, error) {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Account{}, ErrAccountNotFound
		}
		return domain.Account{}, fmt.Errorf("lookup account: %w", err)
	}

	sanitized := *account
	sanitized.PasswordHash = ""
	return sanitized, nil
}

// UpdateProfile applies the allowed profile fields. The update activity is
// recorded only when a row actually matched.
func (s *AuthService) UpdateProfile(ctx context.Context, accountID string, patch domain.AccountPatch, meta *domain.RequestMetadata) (domain.Account, error) {
	if patch.Email != nil {
		normalized := normalizeEmail(*patch.Email)
		patch.Email = &normalized
	}

	account, err := s.accounts.UpdateProfile(ctx, accountID, patch)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Account{}, ErrAccountNotFound
		}
		if errors.Is(err, repository.ErrDuplicate) {
			return domain.Account{}, ErrEmailTaken
		}
		return domain.Account{}, fmt.Errorf("update profile: %w", err)
	}

	s.activities.Record(ctx, accountID, domain.ActionUpdate, domain.ResourceAccount, "Profile updated", meta)

	sanitized := *account
	sanitized.PasswordHash = ""
	return sanitized, nil
}

// ChangePassword re-verifies the current password before storing a new
// hash. A wrong current password returns ErrInvalidCredentials.
func (s *AuthService) ChangePassword(ctx context.Context, accountID, currentPassword, newPassword string, meta *domain.RequestMetadata) error {
	if newPassword == "" {
		return fmt.Errorf("new password is required")
	}

	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidCredentials
		}
		return fmt.Errorf("lookup account: %w", err)
	}

	ok, err := security.VerifyPassword(currentPassword, account.PasswordHash)
	if err != nil {
		return fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return ErrInvalidCredentials
	}

	newHash, err := security.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.accounts.UpdatePassword(ctx, accountID, newHash, s.now().UTC()); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	s.activities.Record(ctx, accountID, domain.ActionUpdate, domain.ResourceAccount, "Password changed", meta)
	return nil
}

// ParseToken resolves a session token to the embedded account id.
func (s *AuthService) ParseToken(token string) (string, error) {
	return s.sessions.Parse(token)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
