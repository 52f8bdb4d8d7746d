package service

import (
	"crypto/rand"

	"github.com/bymjmazzei/par-noir/internal/errors"
	"github.com/bymjmazzei/par-noir/internal/identity/domain"
)

// PayloadCipher encrypts identity payloads under a passcode.
//
// There is a single parameter set, tagged domain.KDFVersionCurrent. Decrypt
// selects it from the tag and never falls back to another derivation.
type PayloadCipher struct {
	deriver KeyDeriver
}

// NewPayloadCipher creates a PayloadCipher backed by deriver.
func NewPayloadCipher(deriver KeyDeriver) *PayloadCipher {
	return &PayloadCipher{deriver: deriver}
}

// Encrypt generates a fresh salt and IV, derives a key and seals plaintext.
func (c *PayloadCipher) Encrypt(plaintext []byte, passcode string) (*domain.Sealed, error) {
	salt := make([]byte, domain.SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, errors.Wrap(err, "failed to generate salt")
	}

	key, err := c.deriver.DeriveKey(passcode, salt)
	if err != nil {
		return nil, err
	}
	defer domain.Zero(key)

	aead, err := NewAESGCM(key)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create cipher")
	}

	ciphertext, iv, err := aead.Encrypt(plaintext, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encrypt payload")
	}

	return &domain.Sealed{
		Ciphertext: ciphertext,
		IV:         iv,
		Salt:       salt,
		KDFVersion: domain.KDFVersionCurrent,
	}, nil
}

// Decrypt re-derives the key from the sealed salt and opens the ciphertext.
// Every cipher level failure is reported as domain.ErrDecryption without the
// underlying cause.
func (c *PayloadCipher) Decrypt(sealed *domain.Sealed, passcode string) ([]byte, error) {
	if sealed == nil {
		return nil, domain.ErrDecryption
	}
	switch sealed.KDFVersion {
	case 0, domain.KDFVersionCurrent:
	default:
		return nil, errors.Wrapf(domain.ErrUnsupportedKDFVersion, "version %d", sealed.KDFVersion)
	}

	key, err := c.deriver.DeriveKey(passcode, sealed.Salt)
	if err != nil {
		return nil, err
	}
	defer domain.Zero(key)

	aead, err := NewAESGCM(key)
	if err != nil {
		return nil, domain.ErrDecryption
	}

	plaintext, err := aead.Decrypt(sealed.Ciphertext, sealed.IV, nil)
	if err != nil {
		return nil, domain.ErrDecryption
	}
	return plaintext, nil
}
