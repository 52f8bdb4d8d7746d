package dto

import (
	"time"

	"github.com/bymjmazzei/par-noir/internal/identity/domain"
	registryDomain "github.com/bymjmazzei/par-noir/internal/registry/domain"
	"github.com/bymjmazzei/par-noir/internal/store"
)

// IdentityResponse represents one registry version in API responses. The
// encrypted identity file is only returned by the export endpoint.
type IdentityResponse struct {
	PublicKey    string    `json:"publicKey"`
	Nickname     string    `json:"nickname"`
	Version      int       `json:"version"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	LastAccessed time.Time `json:"lastAccessed"`
}

// MapIdentityToResponse converts a registry version to an API response.
func MapIdentityToResponse(v *registryDomain.VersionedIdentity) IdentityResponse {
	return IdentityResponse{
		PublicKey:    v.PublicKey,
		Nickname:     v.Nickname,
		Version:      v.Version,
		IsActive:     v.IsActive,
		CreatedAt:    v.CreatedAt,
		LastAccessed: v.LastAccessed,
	}
}

// ListIdentitiesResponse represents a list of registry versions.
type ListIdentitiesResponse struct {
	Data []IdentityResponse `json:"data"`
}

// MapIdentitiesToListResponse converts registry versions to a list API response.
func MapIdentitiesToListResponse(versions []registryDomain.VersionedIdentity) ListIdentitiesResponse {
	data := make([]IdentityResponse, 0, len(versions))
	for i := range versions {
		data = append(data, MapIdentityToResponse(&versions[i]))
	}
	return ListIdentitiesResponse{Data: data}
}

// SessionResponse is returned after a successful authentication.
type SessionResponse struct {
	ID              string    `json:"id"`
	PNName          string    `json:"pnName"`
	Nickname        string    `json:"nickname"`
	AccessToken     string    `json:"accessToken"` //nolint:gosec // issued to the caller
	ExpiresIn       int       `json:"expiresIn"`
	AuthenticatedAt time.Time `json:"authenticatedAt"`
	PublicKey       string    `json:"publicKey"`
}

// MapSessionToResponse converts an auth session to an API response.
func MapSessionToResponse(s *domain.AuthSession) SessionResponse {
	return SessionResponse{
		ID:              s.ID,
		PNName:          s.PNName,
		Nickname:        s.Nickname,
		AccessToken:     s.AccessToken,
		ExpiresIn:       s.ExpiresIn,
		AuthenticatedAt: s.AuthenticatedAt,
		PublicKey:       s.PublicKey,
	}
}

// VerifySessionResponse describes a valid session token.
type VerifySessionResponse struct {
	DID       string    `json:"did"`
	Username  string    `json:"username"`
	TokenID   string    `json:"tokenId"`
	IssuedAt  time.Time `json:"issuedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// MapClaimsToResponse converts verified token claims to an API response.
func MapClaimsToResponse(c *domain.TokenClaims) VerifySessionResponse {
	return VerifySessionResponse{
		DID:       c.DID,
		Username:  c.Username,
		TokenID:   c.TokenID,
		IssuedAt:  c.IssuedAt,
		ExpiresAt: c.ExpiresAt,
	}
}

// DirectoryResponse is one page of the local identity directory.
type DirectoryResponse struct {
	Data       []store.Identity `json:"data"`
	Total      int              `json:"total"`
	Page       int              `json:"page"`
	PageSize   int              `json:"pageSize"`
	TotalPages int              `json:"totalPages"`
}

// MapPageToResponse converts a store page to an API response.
func MapPageToResponse(p store.Page) DirectoryResponse {
	items := p.Items
	if items == nil {
		items = []store.Identity{}
	}
	return DirectoryResponse{
		Data:       items,
		Total:      p.Total,
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalPages: p.TotalPages,
	}
}
