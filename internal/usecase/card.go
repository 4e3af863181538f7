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

// ErrCardNotFound indicates the card does not exist or is not owned by the
// requesting account.
var ErrCardNotFound = errors.New("card not found")

// CardView is a card returned to a caller: the number and CVV are
// decrypted and the spending status computed.
type CardView struct {
	domain.Card
	SpendingStatus *domain.SpendingStatus
}

// CardService manages payment cards. Card numbers and CVVs are encrypted
// before storage and decrypted on every read path, including the create
// response.
type CardService struct {
	cards      port.CardRepository
	activities *ActivityService
	cipher     *security.Cipher
	now        func() time.Time
}

// NewCardService constructs a CardService.
func NewCardService(cards port.CardRepository, activities *ActivityService, cipher *security.Cipher) *CardService {
	return &CardService{
		cards:      cards,
		activities: activities,
		cipher:     cipher,
		now:        time.Now,
	}
}

// WithClock allows injection of a custom clock (primarily for testing).
func (s *CardService) WithClock(now func() time.Time) *CardService {
	if now != nil {
		s.now = now
	}
	return s
}

// Create encrypts the sensitive fields and stores a new card. The returned
// view carries the decrypted fields.
func (s *CardService) Create(ctx context.Context, ownerID string, input domain.Card, meta *domain.RequestMetadata) (CardView, error) {
	input.CardName = strings.TrimSpace(input.CardName)
	if input.CardName == "" {
		return CardView{}, fmt.Errorf("card name is required")
	}
	if input.CardNumber == "" {
		return CardView{}, fmt.Errorf("card number is required")
	}
	if input.CardType == "" {
		input.CardType = domain.CardTypeOther
	}

	plainNumber, plainCVV := input.CardNumber, input.CVV

	encNumber, err := s.cipher.Encrypt(plainNumber)
	if err != nil {
		return CardView{}, fmt.Errorf("encrypt card number: %w", err)
	}
	encCVV := ""
	if plainCVV != "" {
		encCVV, err = s.cipher.Encrypt(plainCVV)
		if err != nil {
			return CardView{}, fmt.Errorf("encrypt cvv: %w", err)
		}
	}

	now := s.now().UTC()
	card := input
	card.ID = uuid.NewString()
	card.OwnerID = ownerID
	card.CardNumber = encNumber
	card.CVV = encCVV
	card.CreatedAt = now
	card.UpdatedAt = now

	if err := s.cards.Create(ctx, card); err != nil {
		return CardView{}, fmt.Errorf("create card: %w", err)
	}

	s.activities.Record(ctx, ownerID, domain.ActionCreate, domain.ResourceCard,
		fmt.Sprintf("Created card: %s", card.CardName), meta)

	card.CardNumber = plainNumber
	card.CVV = plainCVV
	return s.view(card), nil
}

// GetAll lists the account's cards with decrypted numbers and CVVs.
func (s *CardService) GetAll(ctx context.Context, ownerID string) ([]CardView, error) {
	cards, err := s.cards.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}

	views := make([]CardView, 0, len(cards))
	for _, card := range cards {
		view, err := s.decryptView(card)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

// GetByID fetches a single card, decrypted, and records a view activity.
func (s *CardService) GetByID(ctx context.Context, ownerID, id string, meta *domain.RequestMetadata) (CardView, error) {
	card, err := s.cards.GetByID(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return CardView{}, ErrCardNotFound
		}
		return CardView{}, fmt.Errorf("get card: %w", err)
	}

	view, err := s.decryptView(*card)
	if err != nil {
		return CardView{}, err
	}

	s.activities.Record(ctx, ownerID, domain.ActionView, domain.ResourceCard,
		fmt.Sprintf("Viewed card: %s", card.CardName), meta)

	return view, nil
}

// Update applies a partial update. Present CardNumber and CVV fields arrive
// in plaintext and only those are re-encrypted.
func (s *CardService) Update(ctx context.Context, ownerID, id string, patch domain.CardPatch, meta *domain.RequestMetadata) (CardView, error) {
	if patch.CardNumber != nil {
		if *patch.CardNumber == "" {
			return CardView{}, fmt.Errorf("card number cannot be empty")
		}
		enc, err := s.cipher.Encrypt(*patch.CardNumber)
		if err != nil {
			return CardView{}, fmt.Errorf("encrypt card number: %w", err)
		}
		patch.CardNumber = &enc
	}
	if patch.CVV != nil && *patch.CVV != "" {
		enc, err := s.cipher.Encrypt(*patch.CVV)
		if err != nil {
			return CardView{}, fmt.Errorf("encrypt cvv: %w", err)
		}
		patch.CVV = &enc
	}

	card, err := s.cards.Update(ctx, ownerID, id, patch)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return CardView{}, ErrCardNotFound
		}
		return CardView{}, fmt.Errorf("update card: %w", err)
	}

	view, err := s.decryptView(*card)
	if err != nil {
		return CardView{}, err
	}

	s.activities.Record(ctx, ownerID, domain.ActionUpdate, domain.ResourceCard,
		fmt.Sprintf("Updated card: %s", card.CardName), meta)

	return view, nil
}

// Delete removes a card owned by the account.
func (s *CardService) Delete(ctx context.Context, ownerID, id string, meta *domain.RequestMetadata) error {
	deleted, err := s.cards.Delete(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCardNotFound
		}
		return fmt.Errorf("delete card: %w", err)
	}

	s.activities.Record(ctx, ownerID, domain.ActionDelete, domain.ResourceCard,
		fmt.Sprintf("Deleted card: %s", deleted.CardName), meta)

	return nil
}

func (s *CardService) decryptView(card domain.Card) (CardView, error) {
	number, err := s.cipher.Decrypt(card.CardNumber)
	if err != nil {
		return CardView{}, fmt.Errorf("decrypt card number for %q: %w", card.CardName, err)
	}
	card.CardNumber = number

	if card.CVV != "" {
		cvv, err := s.cipher.Decrypt(card.CVV)
		if err != nil {
			return CardView{}, fmt.Errorf("decrypt cvv for %q: %w", card.CardName, err)
		}
		card.CVV = cvv
	}

	return s.view(card), nil
}

func (s *CardService) view(card domain.Card) CardView {
	return CardView{Card: card, SpendingStatus: card.SpendingStatus()}
}
