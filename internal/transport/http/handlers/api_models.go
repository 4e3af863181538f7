package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/burakzaferozcan/Vaultify/internal/core/domain"
	"github.com/burakzaferozcan/Vaultify/internal/usecase"
)

// ErrorResponse represents a generic error payload with trace ID for
// debugging.
type ErrorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

// NewErrorResponse creates an error response with trace ID from context.
func NewErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	traceID, _ := c.Get("trace_id")
	traceIDStr, _ := traceID.(string)

	return ErrorResponse{
		Error:   errorMsg,
		TraceID: traceIDStr,
	}
}

// MessageResponse represents a simple message payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// HealthResponse reports service status.
type HealthResponse struct {
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
}

// AccountSummary describes the account view returned by the API. The
// password hash never appears here.
type AccountSummary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toAccountSummary(a domain.Account) AccountSummary {
	return AccountSummary{
		ID:        a.ID,
		Name:      a.Name,
		Email:     a.Email,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

// RegisterRequest defines the account registration payload.
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// LoginRequest defines the login payload.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse carries a session token and the account it belongs to.
type AuthResponse struct {
	Token   string         `json:"token"`
	Account AccountSummary `json:"account"`
}

// UpdateProfileRequest carries optional profile fields.
type UpdateProfileRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email" binding:"omitempty,email"`
}

// ChangePasswordRequest carries the password change payload.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8"`
}

// PasswordEntryRequest defines the create payload for a password entry.
type PasswordEntryRequest struct {
	Title    string `json:"title" binding:"required"`
	Username string `json:"username"`
	Password string `json:"password" binding:"required"`
	URL      string `json:"url"`
	Notes    string `json:"notes"`
}

// PasswordEntryPatch defines the partial update payload. A present
// password field arrives in plaintext and is re-encrypted server side.
type PasswordEntryPatch struct {
	Title    *string `json:"title"`
	Username *string `json:"username"`
	Password *string `json:"password"`
	URL      *string `json:"url"`
	Notes    *string `json:"notes"`
}

// PasswordEntryResponse is the stored entry as returned by read endpoints,
// with the password already decrypted. Create and update echo the stored
// record instead.
type PasswordEntryResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Username  string    `json:"username"`
	Password  string    `json:"password"`
	URL       string    `json:"url"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toPasswordEntryResponse(c domain.Credential) PasswordEntryResponse {
	return PasswordEntryResponse{
		ID:        c.ID,
		Title:     c.Title,
		Username:  c.Username,
		Password:  c.Secret,
		URL:       c.URL,
		Notes:     c.Notes,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func toPasswordEntryResponses(credentials []domain.Credential) []PasswordEntryResponse {
	out := make([]PasswordEntryResponse, 0, len(credentials))
	for _, c := range credentials {
		out = append(out, toPasswordEntryResponse(c))
	}
	return out
}

// DecryptResponse carries a decrypted secret.
type DecryptResponse struct {
	Password string `json:"password"`
}

// NotificationSettingsModel mirrors domain.NotificationSettings on the wire.
type NotificationSettingsModel struct {
	Expiry   ExpiryNotificationModel   `json:"expiry"`
	Spending SpendingNotificationModel `json:"spending"`
}

// ExpiryNotificationModel configures the card-expiry alert.
type ExpiryNotificationModel struct {
	Enabled          bool       `json:"enabled"`
	DaysBeforeExpiry int        `json:"days_before_expiry"`
	LastNotified     *time.Time `json:"last_notified,omitempty"`
}

// SpendingNotificationModel configures the spending-limit alert.
type SpendingNotificationModel struct {
	Enabled      bool       `json:"enabled"`
	Threshold    float64    `json:"threshold"`
	LastNotified *time.Time `json:"last_notified,omitempty"`
}

func (m NotificationSettingsModel) toDomain() domain.NotificationSettings {
	return domain.NotificationSettings{
		Expiry: domain.ExpiryNotification{
			Enabled:          m.Expiry.Enabled,
			DaysBeforeExpiry: m.Expiry.DaysBeforeExpiry,
		},
		Spending: domain.SpendingNotification{
			Enabled:   m.Spending.Enabled,
			Threshold: m.Spending.Threshold,
		},
	}
}

func toNotificationSettingsModel(s domain.NotificationSettings) NotificationSettingsModel {
	return NotificationSettingsModel{
		Expiry: ExpiryNotificationModel{
			Enabled:          s.Expiry.Enabled,
			DaysBeforeExpiry: s.Expiry.DaysBeforeExpiry,
			LastNotified:     s.Expiry.LastNotified,
		},
		Spending: SpendingNotificationModel{
			Enabled:      s.Spending.Enabled,
			Threshold:    s.Spending.Threshold,
			LastNotified: s.Spending.LastNotified,
		},
	}
}

// CardRequest defines the create payload for a card.
type CardRequest struct {
	CardName        string                     `json:"card_name" binding:"required"`
	CardholderName  string                     `json:"cardholder_name"`
	CardNumber      string                     `json:"card_number" binding:"required"`
	ExpiryMonth     string                     `json:"expiry_month" binding:"required"`
	ExpiryYear      string                     `json:"expiry_year" binding:"required"`
	CVV             string                     `json:"cvv"`
	CardType        string                     `json:"card_type"`
	CardBrand       string                     `json:"card_brand"`
	Category        string                     `json:"category"`
	Notes           string                     `json:"notes"`
	SpendingLimit   float64                    `json:"spending_limit"`
	CurrentSpending float64                    `json:"current_spending"`
	Notifications   *NotificationSettingsModel `json:"notifications"`
}

func (r CardRequest) toDomain() domain.Card {
	card := domain.Card{
		CardName:        r.CardName,
		CardholderName:  r.CardholderName,
		CardNumber:      r.CardNumber,
		ExpiryMonth:     r.ExpiryMonth,
		ExpiryYear:      r.ExpiryYear,
		CVV:             r.CVV,
		CardType:        domain.CardType(r.CardType),
		CardBrand:       r.CardBrand,
		Category:        r.Category,
		Notes:           r.Notes,
		SpendingLimit:   r.SpendingLimit,
		CurrentSpending: r.CurrentSpending,
	}
	if r.Notifications != nil {
		card.Notifications = r.Notifications.toDomain()
	}
	return card
}

// CardPatchRequest defines the partial update payload for a card.
type CardPatchRequest struct {
	CardName        *string                    `json:"card_name"`
	CardholderName  *string                    `json:"cardholder_name"`
	CardNumber      *string                    `json:"card_number"`
	ExpiryMonth     *string                    `json:"expiry_month"`
	ExpiryYear      *string                    `json:"expiry_year"`
	CVV             *string                    `json:"cvv"`
	CardType        *string                    `json:"card_type"`
	CardBrand       *string                    `json:"card_brand"`
	Category        *string                    `json:"category"`
	Notes           *string                    `json:"notes"`
	SpendingLimit   *float64                   `json:"spending_limit"`
	CurrentSpending *float64                   `json:"current_spending"`
	Notifications   *NotificationSettingsModel `json:"notifications"`
}

func (r CardPatchRequest) toDomain() domain.CardPatch {
	patch := domain.CardPatch{
		CardName:        r.CardName,
		CardholderName:  r.CardholderName,
		CardNumber:      r.CardNumber,
		ExpiryMonth:     r.ExpiryMonth,
		ExpiryYear:      r.ExpiryYear,
		CVV:             r.CVV,
		CardBrand:       r.CardBrand,
		Category:        r.Category,
		Notes:           r.Notes,
		SpendingLimit:   r.SpendingLimit,
		CurrentSpending: r.CurrentSpending,
	}
	if r.CardType != nil {
		cardType := domain.CardType(*r.CardType)
		patch.CardType = &cardType
	}
	if r.Notifications != nil {
		settings := r.Notifications.toDomain()
		patch.Notifications = &settings
	}
	return patch
}

// SpendingStatusModel is the computed spending position of a card.
type SpendingStatusModel struct {
	Percentage  float64 `json:"percentage"`
	IsNearLimit bool    `json:"is_near_limit"`
}

// CardResponse is a card as returned by the API, with decrypted number and
// CVV and the computed spending status.
type CardResponse struct {
	ID              string                    `json:"id"`
	CardName        string                    `json:"card_name"`
	CardholderName  string                    `json:"cardholder_name"`
	CardNumber      string                    `json:"card_number"`
	ExpiryMonth     string                    `json:"expiry_month"`
	ExpiryYear      string                    `json:"expiry_year"`
	CVV             string                    `json:"cvv"`
	CardType        string                    `json:"card_type"`
	CardBrand       string                    `json:"card_brand"`
	Category        string                    `json:"category"`
	Notes           string                    `json:"notes"`
	SpendingLimit   float64                   `json:"spending_limit"`
	CurrentSpending float64                   `json:"current_spending"`
	SpendingStatus  *SpendingStatusModel      `json:"spending_status,omitempty"`
	Notifications   NotificationSettingsModel `json:"notifications"`
	CreatedAt       time.Time                 `json:"created_at"`
	UpdatedAt       time.Time                 `json:"updated_at"`
}

func toCardResponse(view usecase.CardView) CardResponse {
	resp := CardResponse{
		ID:              view.ID,
		CardName:        view.CardName,
		CardholderName:  view.CardholderName,
		CardNumber:      view.CardNumber,
		ExpiryMonth:     view.ExpiryMonth,
		ExpiryYear:      view.ExpiryYear,
		CVV:             view.CVV,
		CardType:        string(view.CardType),
		CardBrand:       view.CardBrand,
		Category:        view.Category,
		Notes:           view.Notes,
		SpendingLimit:   view.SpendingLimit,
		CurrentSpending: view.CurrentSpending,
		Notifications:   toNotificationSettingsModel(view.Notifications),
		CreatedAt:       view.CreatedAt,
		UpdatedAt:       view.UpdatedAt,
	}
	if view.SpendingStatus != nil {
		resp.SpendingStatus = &SpendingStatusModel{
			Percentage:  view.SpendingStatus.Percentage,
			IsNearLimit: view.SpendingStatus.IsNearLimit,
		}
	}
	return resp
}

func toCardResponses(views []usecase.CardView) []CardResponse {
	out := make([]CardResponse, 0, len(views))
	for _, view := range views {
		out = append(out, toCardResponse(view))
	}
	return out
}

// ActivityResponse is one audit trail entry.
type ActivityResponse struct {
	ID           string    `json:"id"`
	Action       string    `json:"action"`
	ResourceType string    `json:"resource_type"`
	Details      string    `json:"details"`
	IPAddress    *string   `json:"ip_address,omitempty"`
	UserAgent    *string   `json:"user_agent,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

func toActivityResponses(activities []domain.Activity) []ActivityResponse {
	out := make([]ActivityResponse, 0, len(activities))
	for _, a := range activities {
		out = append(out, ActivityResponse{
			ID:           a.ID,
			Action:       string(a.Action),
			ResourceType: string(a.ResourceType),
			Details:      a.Details,
			IPAddress:    a.IPAddress,
			UserAgent:    a.UserAgent,
			CreatedAt:    a.CreatedAt,
		})
	}
	return out
}

// ActivityStatsResponse summarises the audit trail.
type ActivityStatsResponse struct {
	Total        int            `json:"total"`
	Last24Hours  int            `json:"last_24_hours"`
	ActionCounts map[string]int `json:"action_counts"`
}

func toActivityStatsResponse(stats domain.ActivityStats) ActivityStatsResponse {
	counts := make(map[string]int, len(stats.ActionCounts))
	for action, count := range stats.ActionCounts {
		counts[string(action)] = count
	}
	return ActivityStatsResponse{
		Total:        stats.Total,
		Last24Hours:  stats.Last24Hours,
		ActionCounts: counts,
	}
}

// SweepResponse reports the outcome of a notification sweep.
type SweepResponse struct {
	Checked  int `json:"checked"`
	Notified int `json:"notified"`
	Failed   int `json:"failed"`
}
