// Package service implements the identity vault's cryptographic primitives:
// passcode key derivation, AES-256-GCM payload sealing, RSA key pairs and DIDs,
// recovery keys and session tokens. Every type here is stateless apart from its
// configuration and is safe for concurrent use.
package service

import (
	"context"

	"github.com/bymjmazzei/par-noir/internal/identity/domain"
)

// AEAD defines the interface for Authenticated Encryption with Associated Data.
type AEAD interface {
	// Encrypt encrypts plaintext with optional AAD and returns ciphertext and nonce.
	Encrypt(plaintext, aad []byte) (ciphertext, nonce []byte, err error)

	// Decrypt decrypts ciphertext using the provided nonce and AAD.
	Decrypt(ciphertext, nonce, aad []byte) ([]byte, error)
}

// KeyDeriver turns a passcode and a caller supplied salt into a symmetric key.
type KeyDeriver interface {
	DeriveKey(passcode string, salt []byte) ([]byte, error)
}

// Cipher seals and opens identity payloads under a passcode.
type Cipher interface {
	Encrypt(plaintext []byte, passcode string) (*domain.Sealed, error)
	Decrypt(sealed *domain.Sealed, passcode string) ([]byte, error)
}

// Keeper is the subset of *secrets.Keeper used to seal export files.
type Keeper interface {
	Encrypt(ctx context.Context, plaintext []byte) ([]byte, error)
	Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error)
	Close() error
}
