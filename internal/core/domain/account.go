package domain

import "time"

// Account mirrors the persisted representation in the accounts table.
// PasswordHash holds the encoded Argon2id digest, never the plaintext.
type Account struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// AccountPatch carries optional profile fields for partial updates.
// Only non-nil fields are applied.
type AccountPatch struct {
	Name  *string
	Email *string
}
