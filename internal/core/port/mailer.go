package port

import "context"

// Mailer delivers card notification emails. Implementations report delivery
// failures as errors; the notification sweep isolates them per card.
type Mailer interface {
	SendExpiryNotification(ctx context.Context, recipient, cardName string, daysUntilExpiry int) error
	SendSpendingNotification(ctx context.Context, recipient, cardName string, percentage int, limit float64) error
}
