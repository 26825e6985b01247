// Package msgcipher implements the symmetric scheme the mobile clients use
// for direct messages, plus the emoji strip/re-splice helpers that keep
// glyphs out of the ciphertext.
//
// The per-conversation key is generated server-side and handed to both
// participants in the conversation payload, protected only by TLS. This is a
// known-weak arrangement kept for compatibility with the client contract; a
// proper key exchange would replace it, not this package.
package msgcipher

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// KeySize is the conversation key length in bytes.
const KeySize = chacha20poly1305.KeySize

var ErrInvalidCiphertext = errors.New("invalid ciphertext")

// NewKey returns a fresh random conversation key.
func NewKey() ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, err
	}
	return key, nil
}

// Encrypt seals plaintext with the conversation key and returns
// base64(nonce || ciphertext).
func Encrypt(key, plaintext []byte) (string, error) {
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return "", fmt.Errorf("creating cipher: %w", err)
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}

	sealed := aead.Seal(nonce, nonce, plaintext, nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt.
func Decrypt(key []byte, encoded string) ([]byte, error) {
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("creating cipher: %w", err)
	}

	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, ErrInvalidCiphertext
	}
	if len(raw) < aead.NonceSize() {
		return nil, ErrInvalidCiphertext
	}

	nonce, sealed := raw[:aead.NonceSize()], raw[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, ErrInvalidCiphertext
	}
	return plaintext, nil
}
