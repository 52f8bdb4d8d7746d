package service

import (
	"crypto/sha512"
	"fmt"

	"golang.org/x/crypto/pbkdf2"

	"github.com/bymjmazzei/par-noir/internal/errors"
	"github.com/bymjmazzei/par-noir/internal/identity/domain"
)

// PBKDF2Deriver derives 256-bit keys with PBKDF2-HMAC-SHA512.
//
// The salt is always supplied by the caller so that the same passcode and salt
// reproduce the same key. Derived keys are never cached; callers zero them with
// domain.Zero once the cipher has been built.
type PBKDF2Deriver struct {
	iterations int
}

// NewPBKDF2Deriver returns a deriver running the given number of iterations.
// Counts below domain.MinKDFIterations are rejected.
func NewPBKDF2Deriver(iterations int) (*PBKDF2Deriver, error) {
	if iterations < domain.MinKDFIterations {
		return nil, errors.Wrap(
			errors.ErrInvalidInput,
			fmt.Sprintf("kdf iterations must be at least %d", domain.MinKDFIterations),
		)
	}
	return &PBKDF2Deriver{iterations: iterations}, nil
}

// Iterations returns the configured iteration count.
func (d *PBKDF2Deriver) Iterations() int {
	return d.iterations
}

// DeriveKey derives a domain.KeySize byte key from passcode and salt.
func (d *PBKDF2Deriver) DeriveKey(passcode string, salt []byte) ([]byte, error) {
	if passcode == "" {
		return nil, errors.Wrap(domain.ErrDerivation, "empty passcode")
	}
	if len(salt) != domain.SaltSize {
		return nil, errors.Wrapf(domain.ErrDerivation, "salt must be %d bytes", domain.SaltSize)
	}
	return pbkdf2.Key([]byte(passcode), salt, d.iterations, domain.KeySize, sha512.New), nil
}
