package domain

import "time"

// Credential is a user-owned password record. Secret always holds the
// AES-GCM ciphertext when the record came from or is headed to the store;
// it is decrypted only transiently for response assembly.
type Credential struct {
	ID        string
	OwnerID   string
	Title     string
	Username  string
	Secret    string
	URL       string
	Notes     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CredentialPatch carries optional fields for partial updates. A non-nil
// Secret arrives as plaintext and is re-encrypted before persistence.
type CredentialPatch struct {
	Title    *string
	Username *string
	Secret   *string
	URL      *string
	Notes    *string
}
