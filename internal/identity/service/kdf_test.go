package service

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/bymjmazzei/par-noir/internal/errors"
	"github.com/bymjmazzei/par-noir/internal/identity/domain"
)

func TestNewPBKDF2Deriver(t *testing.T) {
	t.Run("Success_MinimumIterations", func(t *testing.T) {
		deriver, err := NewPBKDF2Deriver(domain.MinKDFIterations)
		require.NoError(t, err)
		assert.Equal(t, domain.MinKDFIterations, deriver.Iterations())
	})

	t.Run("Error_BelowMinimum", func(t *testing.T) {
		deriver, err := NewPBKDF2Deriver(100_000)
		assert.Nil(t, deriver)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})
}

func TestPBKDF2Deriver_DeriveKey(t *testing.T) {
	deriver, err := NewPBKDF2Deriver(domain.MinKDFIterations)
	require.NoError(t, err)

	salt := make([]byte, domain.SaltSize)
	_, err = rand.Read(salt)
	require.NoError(t, err)

	t.Run("same passcode and salt reproduce the key", func(t *testing.T) {
		k1, err := deriver.DeriveKey("correct-horse", salt)
		require.NoError(t, err)
		k2, err := deriver.DeriveKey("correct-horse", salt)
		require.NoError(t, err)

		assert.Len(t, k1, domain.KeySize)
		assert.Equal(t, k1, k2)
	})

	t.Run("different salt gives a different key", func(t *testing.T) {
		other := make([]byte, domain.SaltSize)
		copy(other, salt)
		other[0] ^= 0x01

		k1, err := deriver.DeriveKey("correct-horse", salt)
		require.NoError(t, err)
		k2, err := deriver.DeriveKey("correct-horse", other)
		require.NoError(t, err)

		assert.NotEqual(t, k1, k2)
	})

	t.Run("empty passcode", func(t *testing.T) {
		_, err := deriver.DeriveKey("", salt)
		assert.ErrorIs(t, err, domain.ErrDerivation)
	})

	t.Run("short salt", func(t *testing.T) {
		_, err := deriver.DeriveKey("correct-horse", salt[:8])
		assert.ErrorIs(t, err, domain.ErrDerivation)
	})

	t.Run("nil salt", func(t *testing.T) {
		_, err := deriver.DeriveKey("correct-horse", nil)
		assert.ErrorIs(t, err, domain.ErrDerivation)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})
}
