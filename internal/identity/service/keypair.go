package service

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/subtle"
	"crypto/x509"
	"encoding/base64"
	"fmt"
	"io"

	"github.com/mr-tron/base58"

	"github.com/bymjmazzei/par-noir/internal/errors"
	"github.com/bymjmazzei/par-noir/internal/identity/domain"
)

// KeyPair is a freshly generated identity key pair in its exported form.
type KeyPair struct {
	// PublicKey is the base64 PKIX DER encoding. It is the identity's lookup key.
	PublicKey string
	// PrivateKey is the base64 PKCS#8 DER encoding. It only ever lives inside
	// the encrypted payload.
	PrivateKey string
	DID        string
}

// KeyPairGenerator produces RSA key pairs and the did:key identifier derived
// from them.
type KeyPairGenerator struct {
	bits   int
	random io.Reader
}

// NewKeyPairGenerator returns a generator for RSA keys of the given size.
func NewKeyPairGenerator(bits int) (*KeyPairGenerator, error) {
	if bits < domain.MinRSABits {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "rsa key size must be at least %d bits", domain.MinRSABits)
	}
	return &KeyPairGenerator{bits: bits, random: rand.Reader}, nil
}

// GenerateKeyPair creates a new RSA key pair and its DID.
func (g *KeyPairGenerator) GenerateKeyPair() (*KeyPair, error) {
	priv, err := rsa.GenerateKey(g.random, g.bits)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate rsa key")
	}

	pubDER, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode public key")
	}
	privDER, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode private key")
	}
	defer domain.Zero(privDER)

	return &KeyPair{
		PublicKey:  base64.StdEncoding.EncodeToString(pubDER),
		PrivateKey: base64.StdEncoding.EncodeToString(privDER),
		DID:        DIDFromPublicKey(pubDER),
	}, nil
}

// GenerateDID returns a did:key identifier for pub. If the key cannot be
// encoded the identifier falls back to 32 bytes drawn from crypto/rand.
func (g *KeyPairGenerator) GenerateDID(pub *rsa.PublicKey) (string, error) {
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return RandomDID(g.random)
	}
	return DIDFromPublicKey(der), nil
}

// DIDFromPublicKey renders did:key:z followed by the base58btc encoding of the
// SHA-256 digest of a PKIX DER public key.
func DIDFromPublicKey(pubDER []byte) string {
	sum := sha256.Sum256(pubDER)
	return domain.DIDPrefix + "z" + base58.Encode(sum[:])
}

// RandomDID renders a did:key identifier from 32 random bytes read from r.
func RandomDID(r io.Reader) (string, error) {
	buf := make([]byte, 32)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", fmt.Errorf("failed to read random identifier: %w", err)
	}
	return domain.DIDPrefix + "z" + base58.Encode(buf), nil
}

// KeyPairMatches reports whether the payload fields of an identity belong to
// the plaintext public key stored next to them: the PKCS#8 private key must
// produce exactly that PKIX public key and did must be its did:key.
func KeyPairMatches(publicKey, privateKey, did string) bool {
	pubDER, err := base64.StdEncoding.DecodeString(publicKey)
	if err != nil || len(pubDER) == 0 {
		return false
	}
	if DIDFromPublicKey(pubDER) != did {
		return false
	}

	privDER, err := base64.StdEncoding.DecodeString(privateKey)
	if err != nil {
		return false
	}
	defer domain.Zero(privDER)

	parsed, err := x509.ParsePKCS8PrivateKey(privDER)
	if err != nil {
		return false
	}
	priv, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return false
	}
	derived, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare(derived, pubDER) == 1
}
