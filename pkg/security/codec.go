package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

var ErrInvalidToken = errors.New("invalid token")

const codecKeyInfo = "secure-file-ops link codec v1"

// Codec seals short strings (file IDs) into URL safe tokens with AES-256-GCM.
// It only provides confidentiality and integrity, tokens never expire.
type Codec struct {
	aead cipher.AEAD
}

// NewCodec derives the encryption key from secret. The same secret always
// yields the same key so links survive restarts as long as the secret stays
// the same
func NewCodec(secret string) (*Codec, error) {
	if secret == "" {
		return nil, errors.New("no encryption secret provided")
	}

	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(codecKeyInfo)), key); err != nil {
		return nil, fmt.Errorf("failed to derive encryption key, %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	return &Codec{aead: aead}, nil
}

// Seal encrypts plaintext and returns base64url(nonce || ciphertext)
func (c *Codec) Seal(plaintext string) (string, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce, %w", err)
	}

	out := c.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.RawURLEncoding.EncodeToString(out), nil
}

// Open reverses Seal. Any malformed, foreign or tampered token
// results in ErrInvalidToken
func (c *Codec) Open(token string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return "", ErrInvalidToken
	}

	ns := c.aead.NonceSize()
	if len(raw) < ns+c.aead.Overhead() {
		return "", ErrInvalidToken
	}

	plain, err := c.aead.Open(nil, raw[:ns], raw[ns:], nil)
	if err != nil {
		return "", ErrInvalidToken
	}

	return string(plain), nil
}
