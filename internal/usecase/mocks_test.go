package usecase

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/burakzaferozcan/Vaultify/internal/core/domain"
	"github.com/burakzaferozcan/Vaultify/internal/repository"
)

// In-memory fakes shared by the service tests. They implement the port
// interfaces with the same ownership and not-found semantics as the
// postgres repositories.

type memAccountRepo struct {
	mu        sync.Mutex
	accounts  map[string]domain.Account
	createErr error
}

func newMemAccountRepo() *memAccountRepo {
	return &memAccountRepo{accounts: make(map[string]domain.Account)}
}

func (r *memAccountRepo) Create(_ context.Context, account domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	for _, existing := range r.accounts {
		if strings.EqualFold(existing.Email, account.Email) {
			return repository.ErrDuplicate
		}
	}
	r.accounts[account.ID] = account
	return nil
}

func (r *memAccountRepo) GetByID(_ context.Context, id string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	account, ok := r.accounts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &account, nil
}

func (r *memAccountRepo) GetByEmail(_ context.Context, email string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, account := range r.accounts {
		if strings.EqualFold(account.Email, email) {
			found := account
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memAccountRepo) UpdateProfile(_ context.Context, id string, patch domain.AccountPatch) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	account, ok := r.accounts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if patch.Name != nil {
		account.Name = *patch.Name
	}
	if patch.Email != nil {
		for otherID, other := range r.accounts {
			if otherID != id && strings.EqualFold(other.Email, *patch.Email) {
				return nil, repository.ErrDuplicate
			}
		}
		account.Email = *patch.Email
	}
	account.UpdatedAt = time.Now().UTC()
	r.accounts[id] = account
	return &account, nil
}

func (r *memAccountRepo) UpdatePassword(_ context.Context, id string, passwordHash string, changedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	account, ok := r.accounts[id]
	if !ok {
		return repository.ErrNotFound
	}
	account.PasswordHash = passwordHash
	account.UpdatedAt = changedAt
	r.accounts[id] = account
	return nil
}

type memCredentialRepo struct {
	mu          sync.Mutex
	credentials map[string]domain.Credential
}

func newMemCredentialRepo() *memCredentialRepo {
	return &memCredentialRepo{credentials: make(map[string]domain.Credential)}
}

func (r *memCredentialRepo) Create(_ context.Context, credential domain.Credential) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.credentials[credential.ID] = credential
	return nil
}

func (r *memCredentialRepo) ListByOwner(_ context.Context, ownerID string) ([]domain.Credential, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Credential
	for _, c := range r.credentials {
		if c.OwnerID == ownerID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *memCredentialRepo) GetByID(_ context.Context, ownerID, id string) (*domain.Credential, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.credentials[id]
	if !ok || c.OwnerID != ownerID {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

func (r *memCredentialRepo) Update(_ context.Context, ownerID, id string, patch domain.CredentialPatch) (*domain.Credential, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.credentials[id]
	if !ok || c.OwnerID != ownerID {
		return nil, repository.ErrNotFound
	}
	if patch.Title != nil {
		c.Title = *patch.Title
	}
	if patch.Username != nil {
		c.Username = *patch.Username
	}
	if patch.Secret != nil {
		c.Secret = *patch.Secret
	}
	if patch.URL != nil {
		c.URL = *patch.URL
	}
	if patch.Notes != nil {
		c.Notes = *patch.Notes
	}
	c.UpdatedAt = time.Now().UTC()
	r.credentials[id] = c
	return &c, nil
}

func (r *memCredentialRepo) Delete(_ context.Context, ownerID, id string) (*domain.Credential, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.credentials[id]
	if !ok || c.OwnerID != ownerID {
		return nil, repository.ErrNotFound
	}
	delete(r.credentials, id)
	return &c, nil
}

func (r *memCredentialRepo) Search(_ context.Context, ownerID, query string) ([]domain.Credential, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	q := strings.ToLower(query)
	var out []domain.Credential
	for _, c := range r.credentials {
		if c.OwnerID != ownerID {
			continue
		}
		haystack := strings.ToLower(c.Title + " " + c.Username + " " + c.URL + " " + c.Notes)
		if strings.Contains(haystack, q) {
			out = append(out, c)
		}
	}
	return out, nil
}

type memCardRepo struct {
	mu    sync.Mutex
	cards map[string]domain.Card
}

func newMemCardRepo() *memCardRepo {
	return &memCardRepo{cards: make(map[string]domain.Card)}
}

func (r *memCardRepo) Create(_ context.Context, card domain.Card) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cards[card.ID] = card
	return nil
}

func (r *memCardRepo) ListByOwner(_ context.Context, ownerID string) ([]domain.Card, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Card
	for _, c := range r.cards {
		if c.OwnerID == ownerID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *memCardRepo) GetByID(_ context.Context, ownerID, id string) (*domain.Card, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.cards[id]
	if !ok || c.OwnerID != ownerID {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

func (r *memCardRepo) Update(_ context.Context, ownerID, id string, patch domain.CardPatch) (*domain.Card, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.cards[id]
	if !ok || c.OwnerID != ownerID {
		return nil, repository.ErrNotFound
	}
	if patch.CardName != nil {
		c.CardName = *patch.CardName
	}
	if patch.CardholderName != nil {
		c.CardholderName = *patch.CardholderName
	}
	if patch.CardNumber != nil {
		c.CardNumber = *patch.CardNumber
	}
	if patch.ExpiryMonth != nil {
		c.ExpiryMonth = *patch.ExpiryMonth
	}
	if patch.ExpiryYear != nil {
		c.ExpiryYear = *patch.ExpiryYear
	}
	if patch.CVV != nil {
		c.CVV = *patch.CVV
	}
	if patch.CardType != nil {
		c.CardType = *patch.CardType
	}
	if patch.CardBrand != nil {
		c.CardBrand = *patch.CardBrand
	}
	if patch.Category != nil {
		c.Category = *patch.Category
	}
	if patch.Notes != nil {
		c.Notes = *patch.Notes
	}
	if patch.SpendingLimit != nil {
		c.SpendingLimit = *patch.SpendingLimit
	}
	if patch.CurrentSpending != nil {
		c.CurrentSpending = *patch.CurrentSpending
	}
	if patch.Notifications != nil {
		c.Notifications = *patch.Notifications
	}
	c.UpdatedAt = time.Now().UTC()
	r.cards[id] = c
	return &c, nil
}

func (r *memCardRepo) Delete(_ context.Context, ownerID, id string) (*domain.Card, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.cards[id]
	if !ok || c.OwnerID != ownerID {
		return nil, repository.ErrNotFound
	}
	delete(r.cards, id)
	return &c, nil
}

func (r *memCardRepo) ListExpiryCandidates(_ context.Context) ([]domain.Card, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Card
	for _, c := range r.cards {
		if c.Notifications.Expiry.Enabled {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memCardRepo) ListSpendingCandidates(_ context.Context) ([]domain.Card, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Card
	for _, c := range r.cards {
		if c.Notifications.Spending.Enabled && c.SpendingLimit > 0 {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memCardRepo) SetExpiryNotified(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.cards[id]
	if !ok {
		return repository.ErrNotFound
	}
	c.Notifications.Expiry.LastNotified = &at
	r.cards[id] = c
	return nil
}

func (r *memCardRepo) SetSpendingNotified(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.cards[id]
	if !ok {
		return repository.ErrNotFound
	}
	c.Notifications.Spending.LastNotified = &at
	r.cards[id] = c
	return nil
}

type memActivityRepo struct {
	mu        sync.Mutex
	entries   []domain.Activity
	createErr error
}

func newMemActivityRepo() *memActivityRepo {
	return &memActivityRepo{}
}

func (r *memActivityRepo) Create(_ context.Context, activity domain.Activity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	r.entries = append(r.entries, activity)
	return nil
}

func (r *memActivityRepo) ListRecent(_ context.Context, ownerID string, limit int) ([]domain.Activity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Activity
	for i := len(r.entries) - 1; i >= 0 && len(out) < limit; i-- {
		if r.entries[i].OwnerID == ownerID {
			out = append(out, r.entries[i])
		}
	}
	return out, nil
}

func (r *memActivityRepo) CountByOwner(_ context.Context, ownerID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.entries {
		if e.OwnerID == ownerID {
			n++
		}
	}
	return n, nil
}

func (r *memActivityRepo) CountSince(_ context.Context, ownerID string, since time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.entries {
		if e.OwnerID == ownerID && !e.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (r *memActivityRepo) CountByAction(_ context.Context, ownerID string) (map[domain.ActivityAction]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[domain.ActivityAction]int)
	for _, e := range r.entries {
		if e.OwnerID == ownerID {
			counts[e.Action]++
		}
	}
	return counts, nil
}

func (r *memActivityRepo) ListByActions(_ context.Context, ownerID string, actions []domain.ActivityAction, limit int) ([]domain.Activity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	wanted := make(map[domain.ActivityAction]bool, len(actions))
	for _, a := range actions {
		wanted[a] = true
	}
	var out []domain.Activity
	for i := len(r.entries) - 1; i >= 0 && len(out) < limit; i-- {
		if r.entries[i].OwnerID == ownerID && wanted[r.entries[i].Action] {
			out = append(out, r.entries[i])
		}
	}
	return out, nil
}

// byOwner filters the raw log for assertions.
func (r *memActivityRepo) byOwner(ownerID string) []domain.Activity {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Activity
	for _, e := range r.entries {
		if e.OwnerID == ownerID {
			out = append(out, e)
		}
	}
	return out
}

type sentMail struct {
	recipient  string
	cardName   string
	days       int
	percentage int
	limit      float64
}

type memMailer struct {
	mu       sync.Mutex
	expiry   []sentMail
	spending []sentMail
	failFor  map[string]bool
}

func newMemMailer() *memMailer {
	return &memMailer{failFor: make(map[string]bool)}
}

func (m *memMailer) SendExpiryNotification(_ context.Context, recipient, cardName string, daysUntilExpiry int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failFor[cardName] {
		return context.DeadlineExceeded
	}
	m.expiry = append(m.expiry, sentMail{recipient: recipient, cardName: cardName, days: daysUntilExpiry})
	return nil
}

func (m *memMailer) SendSpendingNotification(_ context.Context, recipient, cardName string, percentage int, limit float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failFor[cardName] {
		return context.DeadlineExceeded
	}
	m.spending = append(m.spending, sentMail{recipient: recipient, cardName: cardName, percentage: percentage, limit: limit})
	return nil
}
