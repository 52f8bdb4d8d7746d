package domain

import (
	"github.com/bymjmazzei/par-noir/internal/errors"
)

// Vault error taxonomy. ErrDecryption and ErrAuthorization are distinct inside
// the vault but callers at the UI boundary only ever see ErrAuthenticationFailed.
var (
	// ErrDerivation indicates a malformed passcode or salt. Retrying with the
	// same inputs cannot succeed.
	ErrDerivation = errors.Wrap(errors.ErrInvalidInput, "key derivation failed")

	// ErrDecryption covers a wrong passcode, a wrong salt, a tampered ciphertext
	// and a corrupt IV alike.
	ErrDecryption = errors.Wrap(errors.ErrUnauthorized, "decryption failed")

	// ErrAuthorization indicates decryption succeeded but the payload belongs to
	// a different username.
	ErrAuthorization = errors.Wrap(errors.ErrUnauthorized, "identity does not match expected username")

	// ErrAuthenticationFailed is the single outcome exposed for ErrDerivation,
	// ErrDecryption and ErrAuthorization at the UI boundary.
	ErrAuthenticationFailed = errors.Wrap(errors.ErrUnauthorized, "authentication failed")

	// ErrUnsupportedKDFVersion indicates ciphertext tagged with an unknown parameter set.
	ErrUnsupportedKDFVersion = errors.Wrap(errors.ErrInvalidInput, "unsupported kdf version")

	// ErrInvalidToken indicates a malformed, mismatched or expired session token.
	ErrInvalidToken = errors.Wrap(errors.ErrUnauthorized, "invalid session token")

	// ErrInvalidExport indicates an export envelope failed structural validation.
	ErrInvalidExport = errors.Wrap(errors.ErrInvalidInput, "invalid export envelope")

	// ErrInvalidIdentity indicates an EncryptedIdentity is missing a field or
	// carries a field that is not valid base64.
	ErrInvalidIdentity = errors.Wrap(errors.ErrInvalidInput, "invalid encrypted identity")
)

// IsAuthenticationFailure reports whether err is one of the failures that must
// be collapsed into ErrAuthenticationFailed before leaving the vault.
func IsAuthenticationFailure(err error) bool {
	return errors.Is(err, ErrDerivation) ||
		errors.Is(err, ErrDecryption) ||
		errors.Is(err, ErrAuthorization) ||
		errors.Is(err, ErrUnsupportedKDFVersion) ||
		errors.Is(err, ErrAuthenticationFailed)
}
