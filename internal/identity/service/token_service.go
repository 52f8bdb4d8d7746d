package service

import (
	"crypto/rand"
	"crypto/sha256"
	"io"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/hkdf"

	"github.com/bymjmazzei/par-noir/internal/errors"
	"github.com/bymjmazzei/par-noir/internal/identity/domain"
)

const tokenKeyInfo = "par-noir session token v1"

type sessionClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies HS256 session tokens.
//
// A token is a convenience artifact bound to an AuthSession. It carries the
// DID as subject and is never accepted as authorization on its own.
type TokenService struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

// TokenOption configures a TokenService.
type TokenOption func(*TokenService)

// WithTokenClock overrides the clock used for iat, exp and verification.
func WithTokenClock(now func() time.Time) TokenOption {
	return func(s *TokenService) {
		s.now = now
	}
}

// NewTokenService expands secret into a signing key with HKDF-SHA256. An empty
// secret is replaced by 32 random bytes, which makes tokens valid for the
// lifetime of the process only.
func NewTokenService(secret []byte, ttl time.Duration, opts ...TokenOption) (*TokenService, error) {
	if ttl <= 0 {
		return nil, errors.Wrap(errors.ErrInvalidInput, "token ttl must be positive")
	}
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return nil, errors.Wrap(err, "failed to generate signing secret")
		}
	}

	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, nil, []byte(tokenKeyInfo)), key); err != nil {
		return nil, errors.Wrap(err, "failed to derive signing key")
	}

	s := &TokenService{key: key, ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// GenerateAuthToken issues a token for did and username.
func (s *TokenService) GenerateAuthToken(did, username string) (string, error) {
	if did == "" || username == "" {
		return "", errors.Wrap(errors.ErrInvalidInput, "did and username are required")
	}
	id, err := uuid.NewV7()
	if err != nil {
		return "", errors.Wrap(err, "failed to generate token id")
	}

	now := s.now()
	claims := sessionClaims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   did,
			ID:        id.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return "", errors.Wrap(err, "failed to sign token")
	}
	return signed, nil
}

// VerifyAuthToken checks the token shape, its signature, that the subject is
// expectedDID and that it has not expired.
func (s *TokenService) VerifyAuthToken(token, expectedDID string) (*domain.TokenClaims, error) {
	if strings.Count(token, ".") != 2 {
		return nil, errors.Wrap(domain.ErrInvalidToken, "malformed token")
	}

	claims := &sessionClaims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return s.key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithSubject(expectedDID),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, errors.Wrap(domain.ErrInvalidToken, err.Error())
	}

	return &domain.TokenClaims{
		DID:       claims.Subject,
		Username:  claims.Username,
		TokenID:   claims.ID,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
