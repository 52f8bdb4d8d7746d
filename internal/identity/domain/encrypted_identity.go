// Package domain defines the identity vault's data model: the at-rest
// EncryptedIdentity, the transient decrypted Payload, AuthSession and the export
// envelope.
package domain

import (
	"encoding/base64"

	validation "github.com/jellydator/validation"

	"github.com/bymjmazzei/par-noir/internal/errors"
	customValidation "github.com/bymjmazzei/par-noir/internal/validation"
)

// EncryptedIdentity is the persisted form of an identity. Only PublicKey is
// plaintext. EncryptedBlob, IV and Salt are produced together by a single
// encryption call and must never be mixed across identities.
type EncryptedIdentity struct {
	PublicKey     string `json:"publicKey"`
	EncryptedBlob string `json:"encryptedBlob"`
	IV            string `json:"iv"`
	Salt          string `json:"salt"`
	// KDFVersion selects the derivation parameter set. Zero is read as
	// KDFVersionCurrent so records written without the tag stay readable.
	KDFVersion int `json:"kdfVersion,omitempty"`
}

// Sealed is the raw output of one encryption call.
type Sealed struct {
	Ciphertext []byte
	IV         []byte
	Salt       []byte
	KDFVersion int
}

// Validate checks that every field is present and base64 encoded. It runs
// before any decryption is attempted.
func (e *EncryptedIdentity) Validate() error {
	err := validation.ValidateStruct(e,
		validation.Field(&e.PublicKey, validation.Required, customValidation.NotBlank),
		validation.Field(&e.EncryptedBlob, validation.Required, customValidation.Base64),
		validation.Field(&e.IV, validation.Required, customValidation.Base64),
		validation.Field(&e.Salt, validation.Required, customValidation.Base64),
		validation.Field(&e.KDFVersion, validation.Min(0)),
	)
	if err != nil {
		return errors.Wrap(ErrInvalidIdentity, err.Error())
	}
	return nil
}

// Seal decodes the base64 fields into a Sealed value.
func (e *EncryptedIdentity) Seal() (*Sealed, error) {
	ciphertext, err := base64.StdEncoding.DecodeString(e.EncryptedBlob)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidIdentity, "encryptedBlob")
	}
	iv, err := base64.StdEncoding.DecodeString(e.IV)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidIdentity, "iv")
	}
	salt, err := base64.StdEncoding.DecodeString(e.Salt)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidIdentity, "salt")
	}
	return &Sealed{Ciphertext: ciphertext, IV: iv, Salt: salt, KDFVersion: e.KDFVersion}, nil
}

// NewEncryptedIdentity encodes sealed output for persistence.
func NewEncryptedIdentity(publicKey string, sealed *Sealed) *EncryptedIdentity {
	return &EncryptedIdentity{
		PublicKey:     publicKey,
		EncryptedBlob: base64.StdEncoding.EncodeToString(sealed.Ciphertext),
		IV:            base64.StdEncoding.EncodeToString(sealed.IV),
		Salt:          base64.StdEncoding.EncodeToString(sealed.Salt),
		KDFVersion:    sealed.KDFVersion,
	}
}
