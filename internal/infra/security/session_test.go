package security

import (
	"errors"
	"testing"
	"time"
)

var sessionTestSecret = []byte("0123456789abcdef0123456789abcdef")

func TestSessionIssueAndParse(t *testing.T) {
	m, err := NewSessionManager(sessionTestSecret, "vaultify", 7*24*time.Hour)
	if err != nil {
		t.Fatalf("NewSessionManager returned error: %v", err)
	}

	token, err := m.Issue("account-123")
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	accountID, err := m.Parse(token)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if accountID != "account-123" {
		t.Fatalf("account id mismatch: got %q", accountID)
	}
}

func TestSessionParseExpired(t *testing.T) {
	m, err := NewSessionManager(sessionTestSecret, "vaultify", time.Nanosecond)
	if err != nil {
		t.Fatalf("NewSessionManager returned error: %v", err)
	}

	token, err := m.Issue("account-123")
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	time.Sleep(10 * time.Millisecond)

	if _, err := m.Parse(token); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestSessionParseWrongSecret(t *testing.T) {
	m, err := NewSessionManager(sessionTestSecret, "vaultify", time.Hour)
	if err != nil {
		t.Fatalf("NewSessionManager returned error: %v", err)
	}
	other, err := NewSessionManager([]byte("ffffffffffffffffffffffffffffffff"), "vaultify", time.Hour)
	if err != nil {
		t.Fatalf("NewSessionManager returned error: %v", err)
	}

	token, err := m.Issue("account-123")
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	if _, err := other.Parse(token); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestSessionParseMalformed(t *testing.T) {
	m, err := NewSessionManager(sessionTestSecret, "vaultify", time.Hour)
	if err != nil {
		t.Fatalf("NewSessionManager returned error: %v", err)
	}

	for _, token := range []string{"", "   ", "not.a.jwt"} {
		if _, err := m.Parse(token); !errors.Is(err, ErrTokenInvalid) {
			t.Fatalf("Parse(%q): expected ErrTokenInvalid, got %v", token, err)
		}
	}
}

func TestNewSessionManagerRejectsShortSecret(t *testing.T) {
	if _, err := NewSessionManager([]byte("short"), "vaultify", time.Hour); err == nil {
		t.Fatal("expected error for short secret")
	}
}
