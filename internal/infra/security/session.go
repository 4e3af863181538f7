package security

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrTokenInvalid indicates the session token is malformed or its
	// signature does not verify.
	ErrTokenInvalid = errors.New("session token invalid")
	// ErrTokenExpired indicates the session token expired.
	ErrTokenExpired = errors.New("session token expired")
)

// SessionClaims binds a session token to an account id.
type SessionClaims struct {
	AccountID string `json:"uid"`
	jwt.RegisteredClaims
}

// SessionManager signs and verifies HS256 session tokens with a fixed TTL.
// Tokens are stateless; logout does not revoke them, they expire naturally.
type SessionManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// NewSessionManager constructs a SessionManager. TTL defaults to 7 days.
func NewSessionManager(secret []byte, issuer string, ttl time.Duration) (*SessionManager, error) {
	if len(secret) < 32 {
		return nil, fmt.Errorf("session: secret must be at least 32 bytes, got %d", len(secret))
	}
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &SessionManager{secret: secret, issuer: issuer, ttl: ttl}, nil
}

// Issue signs a token carrying the account id.
func (m *SessionManager) Issue(accountID string) (string, error) {
	if accountID == "" {
		return "", fmt.Errorf("session: account id is required")
	}

	now := time.Now().UTC()
	claims := SessionClaims{
		AccountID: accountID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   accountID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("session: sign token: %w", err)
	}

	return signed, nil
}

// Parse validates the token and returns the embedded account id.
func (m *SessionManager) Parse(token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrTokenInvalid
	}

	claims := &SessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithIssuer(m.issuer))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", ErrTokenInvalid
	}

	if !parsed.Valid || strings.TrimSpace(claims.AccountID) == "" {
		return "", ErrTokenInvalid
	}

	return claims.AccountID, nil
}
