package usecase

import (
	"context"
	"testing"

	"github.com/burakzaferozcan/Vaultify/internal/core/domain"
	"github.com/burakzaferozcan/Vaultify/internal/infra/security"
)

// Exercises the whole account lifecycle against one shared audit trail:
// register, log in, store a secret, read it back decrypted.
func TestVaultFlowRegisterLoginCreateRead(t *testing.T) {
	ctx := context.Background()

	accounts := newMemAccountRepo()
	credentials := newMemCredentialRepo()
	activityRepo := newMemActivityRepo()
	activities := NewActivityService(activityRepo, nil, nil)

	cipher, err := security.NewCipher(testCipherKey)
	if err != nil {
		t.Fatalf("NewCipher: %v", err)
	}

	auth := NewAuthService(accounts, activities, newTestSessions(t))
	vault := NewCredentialService(credentials, activities, cipher)

	registered, err := auth.Register(ctx, "Alice", "alice@example.com", "s3cret-pass", nil)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	session, err := auth.Login(ctx, "alice@example.com", "s3cret-pass", nil)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	ownerID, err := auth.ParseToken(session.Token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if ownerID != registered.Account.ID {
		t.Fatalf("token resolves to %q, want %q", ownerID, registered.Account.ID)
	}

	created, err := vault.Create(ctx, ownerID, domain.Credential{
		Title:    "Mail",
		Username: "alice",
		Secret:   "hunter22",
	}, nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Secret == "hunter22" {
		t.Fatal("create response carries the plaintext; want the stored ciphertext")
	}

	got, err := vault.GetByID(ctx, ownerID, created.ID, nil)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Secret != "hunter22" {
		t.Fatalf("GetByID secret = %q, want plaintext", got.Secret)
	}

	stored, err := credentials.GetByID(ctx, ownerID, created.ID)
	if err != nil {
		t.Fatalf("GetByID (repo): %v", err)
	}
	if stored.Secret == "hunter22" {
		t.Fatal("secret stored in plaintext")
	}

	// One audit entry per operation, in order.
	log := activityRepo.byOwner(ownerID)
	want := []domain.ActivityAction{
		domain.ActionCreate, // account registration
		domain.ActionLogin,
		domain.ActionCreate, // password entry
		domain.ActionView,
	}
	if len(log) != len(want) {
		t.Fatalf("got %d audit entries, want %d: %+v", len(log), len(want), log)
	}
	for i, action := range want {
		if log[i].Action != action {
			t.Fatalf("audit entry %d is %s, want %s", i, log[i].Action, action)
		}
	}
}
