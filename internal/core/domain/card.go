package domain

import (
	"math"
	"strconv"
	"time"
)

// CardType enumerates supported card kinds.
type CardType string

const (
	CardTypeCredit CardType = "credit"
	CardTypeDebit  CardType = "debit"
	CardTypeOther  CardType = "other"
)

// Card is a user-owned payment card record. CardNumber and CVV hold
// ciphertext at rest and are decrypted on every read path.
type Card struct {
	ID              string
	OwnerID         string
	CardName        string
	CardholderName  string
	CardNumber      string
	ExpiryMonth     string
	ExpiryYear      string
	CVV             string
	CardType        CardType
	CardBrand       string
	Category        string
	Notes           string
	SpendingLimit   float64
	CurrentSpending float64
	Notifications   NotificationSettings
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NotificationSettings groups per-card alerting preferences.
type NotificationSettings struct {
	Expiry   ExpiryNotification
	Spending SpendingNotification
}

// ExpiryNotification configures the card-expiry alert.
type ExpiryNotification struct {
	Enabled          bool
	DaysBeforeExpiry int
	LastNotified     *time.Time
}

// SpendingNotification configures the spending-limit alert. Threshold is a
// percentage of SpendingLimit.
type SpendingNotification struct {
	Enabled      bool
	Threshold    float64
	LastNotified *time.Time
}

// SpendingStatus is computed at read time and never persisted.
type SpendingStatus struct {
	Percentage  float64
	IsNearLimit bool
}

// CardPatch carries optional fields for partial updates. CardNumber and CVV
// arrive as plaintext and are re-encrypted only when present.
type CardPatch struct {
	CardName        *string
	CardholderName  *string
	CardNumber      *string
	ExpiryMonth     *string
	ExpiryYear      *string
	CVV             *string
	CardType        *CardType
	CardBrand       *string
	Category        *string
	Notes           *string
	SpendingLimit   *float64
	CurrentSpending *float64
	Notifications   *NotificationSettings
}

// ExpiryDate resolves the stored two-digit year and 1-12 month into the
// first instant of the expiry month. Years are interpreted as 2000+YY.
func (c Card) ExpiryDate() (time.Time, bool) {
	year, err := strconv.Atoi(c.ExpiryYear)
	if err != nil {
		return time.Time{}, false
	}
	month, err := strconv.Atoi(c.ExpiryMonth)
	if err != nil || month < 1 || month > 12 {
		return time.Time{}, false
	}
	return time.Date(2000+year, time.Month(month), 1, 0, 0, 0, 0, time.UTC), true
}

// IsExpiringSoon reports whether the card expires within the configured
// notification window relative to now.
func (c Card) IsExpiringSoon(now time.Time) bool {
	expiry, ok := c.ExpiryDate()
	if !ok {
		return false
	}
	days := math.Ceil(expiry.Sub(now).Hours() / 24)
	return days <= float64(c.Notifications.Expiry.DaysBeforeExpiry)
}

// SpendingStatus returns the spending percentage and near-limit flag, or nil
// when no spending limit is configured.
func (c Card) SpendingStatus() *SpendingStatus {
	if c.SpendingLimit <= 0 {
		return nil
	}
	pct := c.CurrentSpending / c.SpendingLimit * 100
	return &SpendingStatus{
		Percentage:  pct,
		IsNearLimit: pct >= c.Notifications.Spending.Threshold,
	}
}
