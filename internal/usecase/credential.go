package usecase

import (
	"bytes"
	"context"
	"encoding/json"
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

// ErrCredentialNotFound indicates the credential does not exist or is not
// owned by the requesting account.
var ErrCredentialNotFound = errors.New("password entry not found")

// csvHeader is the fixed column order of CSV exports.
var csvHeader = []string{"Title", "Username", "Password", "URL", "Notes", "Creation Date", "Last Updated"}

// CredentialService manages stored password entries. Secrets are encrypted
// before they reach the repository and decrypted when entries are read back.
type CredentialService struct {
	credentials port.CredentialRepository
	activities  *ActivityService
	cipher      *security.Cipher
	now         func() time.Time
}

// NewCredentialService constructs a CredentialService.
func NewCredentialService(credentials port.CredentialRepository, activities *ActivityService, cipher *security.Cipher) *CredentialService {
	return &CredentialService{
		credentials: credentials,
		activities:  activities,
		cipher:      cipher,
		now:         time.Now,
	}
}

// WithClock allows injection of a custom clock (primarily for testing).
func (s *CredentialService) WithClock(now func() time.Time) *CredentialService {
	if now != nil {
		s.now = now
	}
	return s
}

// Create encrypts the secret and stores a new entry.
func (s *CredentialService) Create(ctx context.Context, ownerID string, input domain.Credential, meta *domain.RequestMetadata) (domain.Credential, error) {
	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" {
		return domain.Credential{}, fmt.Errorf("title is required")
	}
	if input.Secret == "" {
		return domain.Credential{}, fmt.Errorf("password is required")
	}

	encrypted, err := s.cipher.Encrypt(input.Secret)
	if err != nil {
		return domain.Credential{}, fmt.Errorf("encrypt secret: %w", err)
	}

	now := s.now().UTC()
	credential := domain.Credential{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Title:     input.Title,
		Username:  input.Username,
		Secret:    encrypted,
		URL:       input.URL,
		Notes:     input.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.credentials.Create(ctx, credential); err != nil {
		return domain.Credential{}, fmt.Errorf("create credential: %w", err)
	}

	s.activities.Record(ctx, ownerID, domain.ActionCreate, domain.ResourcePassword,
		fmt.Sprintf("Created password entry: %s", credential.Title), meta)

	return credential, nil
}

// GetAll lists every entry owned by the account with decrypted secrets.
// No activity is recorded for the bulk read.
func (s *CredentialService) GetAll(ctx context.Context, ownerID string) ([]domain.Credential, error) {
	credentials, err := s.credentials.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list credentials: %w", err)
	}
	if err := s.decryptSecrets(credentials); err != nil {
		return nil, err
	}
	return credentials, nil
}

// GetByID fetches a single entry with its decrypted secret and records a
// view activity.
func (s *CredentialService) GetByID(ctx context.Context, ownerID, id string, meta *domain.RequestMetadata) (domain.Credential, error) {
	credential, err := s.credentials.GetByID(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Credential{}, ErrCredentialNotFound
		}
		return domain.Credential{}, fmt.Errorf("get credential: %w", err)
	}

	result := *credential
	plaintext, err := s.cipher.Decrypt(result.Secret)
	if err != nil {
		return domain.Credential{}, fmt.Errorf("decrypt secret: %w", err)
	}
	result.Secret = plaintext

	s.activities.Record(ctx, ownerID, domain.ActionView, domain.ResourcePassword,
		fmt.Sprintf("Viewed password entry: %s", credential.Title), meta)

	return result, nil
}

// Decrypt returns the plaintext secret of a single entry.
func (s *CredentialService) Decrypt(ctx context.Context, ownerID, id string) (string, error) {
	credential, err := s.credentials.GetByID(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrCredentialNotFound
		}
		return "", fmt.Errorf("get credential: %w", err)
	}

	plaintext, err := s.cipher.Decrypt(credential.Secret)
	if err != nil {
		return "", fmt.Errorf("decrypt secret: %w", err)
	}
	return plaintext, nil
}

// Update applies a partial update. A present Secret field arrives in
// plaintext and is re-encrypted before storage.
func (s *CredentialService) Update(ctx context.Context, ownerID, id string, patch domain.CredentialPatch, meta *domain.RequestMetadata) (domain.Credential, error) {
	if patch.Secret != nil {
		if *patch.Secret == "" {
			return domain.Credential{}, fmt.Errorf("password cannot be empty")
		}
		encrypted, err := s.cipher.Encrypt(*patch.Secret)
		if err != nil {
			return domain.Credential{}, fmt.Errorf("encrypt secret: %w", err)
		}
		patch.Secret = &encrypted
	}

	credential, err := s.credentials.Update(ctx, ownerID, id, patch)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Credential{}, ErrCredentialNotFound
		}
		return domain.Credential{}, fmt.Errorf("update credential: %w", err)
	}

	s.activities.Record(ctx, ownerID, domain.ActionUpdate, domain.ResourcePassword,
		fmt.Sprintf("Updated password entry: %s", credential.Title), meta)

	return *credential, nil
}

// Delete removes an entry owned by the account.
func (s *CredentialService) Delete(ctx context.Context, ownerID, id string, meta *domain.RequestMetadata) error {
	deleted, err := s.credentials.Delete(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCredentialNotFound
		}
		return fmt.Errorf("delete credential: %w", err)
	}

	s.activities.Record(ctx, ownerID, domain.ActionDelete, domain.ResourcePassword,
		fmt.Sprintf("Deleted password entry: %s", deleted.Title), meta)

	return nil
}

// Search matches the query against title, username, url, and notes. The
// encrypted secret is never searched. The search is recorded only when it
// returns at least one result.
func (s *CredentialService) Search(ctx context.Context, ownerID, query string, meta *domain.RequestMetadata) ([]domain.Credential, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.GetAll(ctx, ownerID)
	}

	results, err := s.credentials.Search(ctx, ownerID, query)
	if err != nil {
		return nil, fmt.Errorf("search credentials: %w", err)
	}

	if err := s.decryptSecrets(results); err != nil {
		return nil, err
	}

	if len(results) > 0 {
		s.activities.Record(ctx, ownerID, domain.ActionView, domain.ResourcePassword,
			fmt.Sprintf("Searched passwords: %s", query), meta)
	}

	return results, nil
}

// decryptSecrets replaces stored ciphertexts with plaintext for response
// assembly. Decrypted values are never written back.
func (s *CredentialService) decryptSecrets(credentials []domain.Credential) error {
	for i := range credentials {
		plaintext, err := s.cipher.Decrypt(credentials[i].Secret)
		if err != nil {
			return fmt.Errorf("decrypt secret for %q: %w", credentials[i].Title, err)
		}
		credentials[i].Secret = plaintext
	}
	return nil
}

// ExportFormat selects the serialization of an export.
type ExportFormat string

const (
	ExportJSON ExportFormat = "json"
	ExportCSV  ExportFormat = "csv"
)

// Export serializes all entries of the account with decrypted secrets and
// records an export activity.
func (s *CredentialService) Export(ctx context.Context, ownerID string, format ExportFormat, meta *domain.RequestMetadata) ([]byte, error) {
	credentials, err := s.credentials.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list credentials: %w", err)
	}

	entries := make([]exportEntry, 0, len(credentials))
	for _, c := range credentials {
		plaintext, err := s.cipher.Decrypt(c.Secret)
		if err != nil {
			return nil, fmt.Errorf("decrypt secret for %q: %w", c.Title, err)
		}
		entries = append(entries, exportEntry{
			Title:       c.Title,
			Username:    c.Username,
			Password:    plaintext,
			URL:         c.URL,
			Notes:       c.Notes,
			CreatedDate: c.CreatedAt.UTC().Format("2006-01-02"),
			UpdatedDate: c.UpdatedAt.UTC().Format("2006-01-02"),
		})
	}

	var out []byte
	switch format {
	case ExportCSV:
		out = renderCSV(entries)
	case ExportJSON:
		out, err = json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshal export: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}

	s.activities.Record(ctx, ownerID, domain.ActionExport, domain.ResourcePassword,
		fmt.Sprintf("Exported %d password entries as %s", len(entries), strings.ToUpper(string(format))), meta)

	return out, nil
}

type exportEntry struct {
	Title       string `json:"Title"`
	Username    string `json:"Username"`
	Password    string `json:"Password"`
	URL         string `json:"URL"`
	Notes       string `json:"Notes"`
	CreatedDate string `json:"Creation Date"`
	UpdatedDate string `json:"Last Updated"`
}

// renderCSV writes the fixed-order layout by hand: the header row is
// unquoted, non-empty fields are quoted with embedded quotes doubled,
// empty fields render as nothing, and rows are joined by newlines without
// a trailing one.
func renderCSV(entries []exportEntry) []byte {
	var buf bytes.Buffer
	buf.WriteString(strings.Join(csvHeader, ","))
	for _, e := range entries {
		buf.WriteByte('\n')
		fields := []string{e.Title, e.Username, e.Password, e.URL, e.Notes, e.CreatedDate, e.UpdatedDate}
		for i, f := range fields {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeCSVField(&buf, f)
		}
	}
	return buf.Bytes()
}

func writeCSVField(buf *bytes.Buffer, field string) {
	if field == "" {
		return
	}
	buf.WriteByte('"')
	buf.WriteString(strings.ReplaceAll(field, `"`, `""`))
	buf.WriteByte('"')
}
