package domain

import (
	"github.com/bymjmazzei/par-noir/internal/errors"
)

// Registry error definitions.
var (
	// ErrIdentityNotFound indicates no version group exists for the public key.
	ErrIdentityNotFound = errors.Wrap(errors.ErrNotFound, "identity not found")

	// ErrMigration indicates a legacy entry was malformed and skipped.
	ErrMigration = errors.New("legacy identity migration failed")

	// ErrCorruptStore indicates the persisted registry could not be decoded.
	// The registry reports it and continues as if the key were empty.
	ErrCorruptStore = errors.New("corrupt registry store")
)
