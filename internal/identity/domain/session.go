package domain

import "time"

// AuthSession is issued after a successful authentication. It lives for the
// process lifetime only and is never persisted.
type AuthSession struct {
	ID              string    `json:"id"`
	PNName          string    `json:"pnName"`
	Nickname        string    `json:"nickname"`
	AccessToken     string    `json:"accessToken"`
	ExpiresIn       int       `json:"expiresIn"`
	AuthenticatedAt time.Time `json:"authenticatedAt"`
	PublicKey       string    `json:"publicKey"`
}

// TokenClaims is the verified content of a session token.
type TokenClaims struct {
	DID       string
	Username  string
	TokenID   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}
