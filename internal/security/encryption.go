package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"strings"
)

const minKeyBytes = 32

// Encryptor performs symmetric encryption of at-rest secrets such as
// channel access tokens. Ciphertexts are authenticated; tampering fails
// closed on decrypt.
type Encryptor struct {
	aead cipher.AEAD
}

// NewEncryptor derives an AES-256-GCM encryptor from a configured key.
// Keys may carry a "base64:" prefix; after decoding the key must be at
// least 32 bytes and is truncated to 32.
func NewEncryptor(key string) (*Encryptor, error) {
	if key == "" {
		return nil, fmt.Errorf("encryption key is required")
	}

	raw := []byte(key)
	if strings.HasPrefix(key, "base64:") {
		decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(key, "base64:"))
		if err != nil {
			return nil, fmt.Errorf("invalid base64 encryption key: %w", err)
		}
		raw = decoded
	}

	if len(raw) < minKeyBytes {
		return nil, fmt.Errorf("encryption key must be at least %d bytes", minKeyBytes)
	}

	block, err := aes.NewCipher(raw[:minKeyBytes])
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize gcm: %w", err)
	}

	return &Encryptor{aead: aead}, nil
}

// Encrypt returns base64(nonce || ciphertext || tag).
func (e *Encryptor) Encrypt(plaintext string) (string, error) {
	if e == nil || e.aead == nil {
		return "", fmt.Errorf("encryptor is not initialized")
	}

	nonce := make([]byte, e.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := e.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt authenticates and decrypts a payload produced by Encrypt. Any
// modification of the payload yields an error, never a wrong plaintext.
func (e *Encryptor) Decrypt(payload string) (string, error) {
	if e == nil || e.aead == nil {
		return "", fmt.Errorf("encryptor is not initialized")
	}

	decoded, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", fmt.Errorf("invalid encrypted payload: %w", err)
	}
	if len(decoded) < e.aead.NonceSize() {
		return "", fmt.Errorf("invalid encrypted payload: too short")
	}

	nonce := decoded[:e.aead.NonceSize()]
	ciphertext := decoded[e.aead.NonceSize():]

	plaintext, err := e.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt payload: %w", err)
	}

	return string(plaintext), nil
}
