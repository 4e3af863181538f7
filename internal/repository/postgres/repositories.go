package postgres

import "github.com/jackc/pgx/v5/pgxpool"

// Repositories groups the concrete PostgreSQL repository implementations.
type Repositories struct {
	Accounts    *AccountRepository
	Credentials *CredentialRepository
	Cards       *CardRepository
	Activities  *ActivityRepository
}

// NewRepositories wires all repositories backed by the provided pool.
func NewRepositories(pool *pgxpool.Pool) *Repositories {
	return &Repositories{
		Accounts:    NewAccountRepository(pool),
		Credentials: NewCredentialRepository(pool),
		Cards:       NewCardRepository(pool),
		Activities:  NewActivityRepository(pool),
	}
}
