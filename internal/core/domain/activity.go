package domain

import "time"

// ActivityAction enumerates auditable user actions.
type ActivityAction string

const (
	ActionCreate ActivityAction = "create"
	ActionUpdate ActivityAction = "update"
	ActionDelete ActivityAction = "delete"
	ActionView   ActivityAction = "view"
	ActionExport ActivityAction = "export"
	ActionLogin  ActivityAction = "login"
	ActionLogout ActivityAction = "logout"
)

// ResourceType enumerates the resources an activity entry can reference.
type ResourceType string

const (
	ResourcePassword ResourceType = "password"
	ResourceCard     ResourceType = "card"
	ResourceNote     ResourceType = "note"
	ResourceAccount  ResourceType = "account"
)

// Activity is an append-only audit fact. Entries are never updated or
// deleted after creation.
type Activity struct {
	ID           string
	OwnerID      string
	Action       ActivityAction
	ResourceType ResourceType
	Details      string
	IPAddress    *string
	UserAgent    *string
	CreatedAt    time.Time
}

// RequestMetadata captures optional client information attached to an entry.
type RequestMetadata struct {
	IPAddress string
	UserAgent string
}

// ActivityStats summarises an owner's audit trail.
type ActivityStats struct {
	Total        int
	Last24Hours  int
	ActionCounts map[ActivityAction]int
}

// ActivityRecordedEvent is the bus representation of a freshly appended
// audit entry.
type ActivityRecordedEvent struct {
	EventID      string         `json:"event_id"`
	OwnerID      string         `json:"owner_id"`
	Action       ActivityAction `json:"action"`
	ResourceType ResourceType   `json:"resource_type"`
	Details      string         `json:"details"`
	OccurredAt   time.Time      `json:"occurred_at"`
}
