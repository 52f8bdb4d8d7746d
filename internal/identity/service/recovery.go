package service

import (
	"github.com/tyler-smith/go-bip39"

	"github.com/bymjmazzei/par-noir/internal/errors"
	"github.com/bymjmazzei/par-noir/internal/identity/domain"
)

// RecoveryKeyGenerator creates the recovery keys stored inside a new payload.
// Each key is rendered from 256 bits of fresh entropy as a 24-word BIP-39
// phrase. Keys are independent of each other and of the passcode.
type RecoveryKeyGenerator struct {
	count int
}

// NewRecoveryKeyGenerator returns a generator producing count keys.
func NewRecoveryKeyGenerator(count int) (*RecoveryKeyGenerator, error) {
	if count < 1 {
		return nil, errors.Wrap(errors.ErrInvalidInput, "recovery key count must be positive")
	}
	return &RecoveryKeyGenerator{count: count}, nil
}

// Generate returns count keys. Purposes follow domain.RecoveryPurposes and
// wrap around when count exceeds the number of purposes.
func (g *RecoveryKeyGenerator) Generate() ([]domain.RecoveryKey, error) {
	keys := make([]domain.RecoveryKey, 0, g.count)
	for i := 0; i < g.count; i++ {
		entropy, err := bip39.NewEntropy(256)
		if err != nil {
			return nil, errors.Wrap(err, "failed to generate recovery entropy")
		}
		phrase, err := bip39.NewMnemonic(entropy)
		domain.Zero(entropy)
		if err != nil {
			return nil, errors.Wrap(err, "failed to encode recovery key")
		}
		keys = append(keys, domain.RecoveryKey{
			Purpose: domain.RecoveryPurposes[i%len(domain.RecoveryPurposes)],
			Key:     phrase,
		})
	}
	return keys, nil
}
