package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
)

// ErrDecryptFailed indicates the ciphertext could not be authenticated and
// decrypted under the active key. Callers must treat the payload as unusable
// rather than fall back to partial plaintext.
var ErrDecryptFailed = errors.New("cipher: decryption failed")

// Cipher performs AES-256-GCM field encryption with a process-wide key.
// The key is loaded once at startup and immutable afterwards; rotating it
// invalidates all previously encrypted fields.
type Cipher struct {
	aead cipher.AEAD
}

// NewCipher builds a Cipher from a hex-encoded 32-byte key.
func NewCipher(hexKey string) (*Cipher, error) {
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("cipher: decode key: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("cipher: key must be 32 bytes, got %d", len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("cipher: init aes: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("cipher: init gcm: %w", err)
	}

	return &Cipher{aead: aead}, nil
}

// Encrypt seals the plaintext with a fresh random nonce and returns
// base64(nonce || ciphertext). Two calls with the same plaintext yield
// different output.
func (c *Cipher) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("cipher: generate nonce: %w", err)
	}

	sealed := c.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt. Malformed input, truncated data, tampering, and
// key mismatch all surface as ErrDecryptFailed.
func (c *Cipher) Decrypt(encoded string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("%w: decode: %v", ErrDecryptFailed, err)
	}

	ns := c.aead.NonceSize()
	if len(data) < ns {
		return "", fmt.Errorf("%w: ciphertext too short", ErrDecryptFailed)
	}

	plaintext, err := c.aead.Open(nil, data[:ns], data[ns:], nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecryptFailed, err)
	}

	return string(plaintext), nil
}
