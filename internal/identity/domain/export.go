package domain

import (
	"fmt"
	"time"

	"github.com/bymjmazzei/par-noir/internal/errors"
)

// ExportEnvelope is the transfer format for moving identities between devices.
type ExportEnvelope struct {
	Version    string              `json:"version"`
	Timestamp  time.Time           `json:"timestamp"`
	Identities []EncryptedIdentity `json:"identities"`
}

// NewExportEnvelope wraps identities in a current-version envelope.
func NewExportEnvelope(identities []EncryptedIdentity, now time.Time) *ExportEnvelope {
	return &ExportEnvelope{
		Version:    ExportVersion,
		Timestamp:  now.UTC(),
		Identities: identities,
	}
}

// Validate checks the envelope version, that at least one identity is present
// and that every identity carries its ciphertext, IV and salt.
func (e *ExportEnvelope) Validate() error {
	if e.Version != ExportVersion {
		return errors.Wrapf(ErrInvalidExport, "unsupported version %q", e.Version)
	}
	if len(e.Identities) == 0 {
		return errors.Wrap(ErrInvalidExport, "no identities")
	}
	for i := range e.Identities {
		if err := e.Identities[i].Validate(); err != nil {
			return errors.Wrap(ErrInvalidExport, fmt.Sprintf("identities[%d]: %v", i, err))
		}
	}
	return nil
}
