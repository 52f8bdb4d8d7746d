package service

import (
	"bytes"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bymjmazzei/par-noir/internal/identity/domain"
)

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("entropy unavailable")
}

func TestNewKeyPairGenerator(t *testing.T) {
	_, err := NewKeyPairGenerator(1024)
	assert.Error(t, err)

	g, err := NewKeyPairGenerator(domain.MinRSABits)
	require.NoError(t, err)
	assert.NotNil(t, g)
}

func TestKeyPairGenerator_GenerateKeyPair(t *testing.T) {
	g, err := NewKeyPairGenerator(domain.MinRSABits)
	require.NoError(t, err)

	kp, err := g.GenerateKeyPair()
	require.NoError(t, err)

	pubDER, err := base64.StdEncoding.DecodeString(kp.PublicKey)
	require.NoError(t, err)
	pub, err := x509.ParsePKIXPublicKey(pubDER)
	require.NoError(t, err)
	rsaPub, ok := pub.(*rsa.PublicKey)
	require.True(t, ok)
	assert.Equal(t, domain.MinRSABits, rsaPub.N.BitLen())

	privDER, err := base64.StdEncoding.DecodeString(kp.PrivateKey)
	require.NoError(t, err)
	priv, err := x509.ParsePKCS8PrivateKey(privDER)
	require.NoError(t, err)
	assert.True(t, rsaPub.Equal(priv.(*rsa.PrivateKey).Public()))

	assert.Equal(t, DIDFromPublicKey(pubDER), kp.DID)

	did, err := g.GenerateDID(rsaPub)
	require.NoError(t, err)
	assert.Equal(t, kp.DID, did)
}

func TestDIDFromPublicKey(t *testing.T) {
	did := DIDFromPublicKey([]byte("public key"))

	require.True(t, strings.HasPrefix(did, "did:key:z"))
	raw, err := base58.Decode(strings.TrimPrefix(did, "did:key:z"))
	require.NoError(t, err)
	assert.Len(t, raw, 32)

	assert.Equal(t, did, DIDFromPublicKey([]byte("public key")))
	assert.NotEqual(t, did, DIDFromPublicKey([]byte("other key")))
}

func TestRandomDID(t *testing.T) {
	t.Run("reads 32 bytes", func(t *testing.T) {
		src := bytes.NewReader(bytes.Repeat([]byte{0x07}, 32))
		did, err := RandomDID(src)
		require.NoError(t, err)
		assert.Equal(t, "did:key:z"+base58.Encode(bytes.Repeat([]byte{0x07}, 32)), did)
	})

	t.Run("source failure", func(t *testing.T) {
		_, err := RandomDID(failingReader{})
		assert.Error(t, err)
	})

	t.Run("fallback when the key cannot be encoded", func(t *testing.T) {
		g := &KeyPairGenerator{bits: domain.MinRSABits, random: bytes.NewReader(make([]byte, 32))}
		did, err := g.GenerateDID(&rsa.PublicKey{})
		require.NoError(t, err)
		assert.Equal(t, "did:key:z"+base58.Encode(make([]byte, 32)), did)
	})
}

func TestKeyPairMatches(t *testing.T) {
	g, err := NewKeyPairGenerator(domain.MinRSABits)
	require.NoError(t, err)
	alice, err := g.GenerateKeyPair()
	require.NoError(t, err)
	mallory, err := g.GenerateKeyPair()
	require.NoError(t, err)

	tests := []struct {
		name       string
		publicKey  string
		privateKey string
		did        string
		want       bool
	}{
		{"own key pair", alice.PublicKey, alice.PrivateKey, alice.DID, true},
		{"foreign public key", alice.PublicKey, mallory.PrivateKey, mallory.DID, false},
		{"foreign private key with matching did", alice.PublicKey, mallory.PrivateKey, alice.DID, false},
		{"foreign did", alice.PublicKey, alice.PrivateKey, mallory.DID, false},
		{"public key not base64", "not base64!", alice.PrivateKey, alice.DID, false},
		{"private key not pkcs8", alice.PublicKey, base64.StdEncoding.EncodeToString([]byte("junk")), alice.DID, false},
		{"empty public key", "", alice.PrivateKey, alice.DID, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KeyPairMatches(tt.publicKey, tt.privateKey, tt.did))
		})
	}
}
