package dto

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/bymjmazzei/par-noir/internal/identity/domain"
	registryDomain "github.com/bymjmazzei/par-noir/internal/registry/domain"
	"github.com/bymjmazzei/par-noir/internal/store"
)

func TestMapIdentitiesToListResponse(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	t.Run("omits the identity file", func(t *testing.T) {
		resp := MapIdentitiesToListResponse([]registryDomain.VersionedIdentity{
			{PublicKey: "pk", IDFile: `{"encryptedBlob":"x"}`, Nickname: "Al", Version: 2, IsActive: true, CreatedAt: now, LastAccessed: now},
			{PublicKey: "pk", IDFile: `{"encryptedBlob":"y"}`, Nickname: "Al", Version: 1, CreatedAt: now, LastAccessed: now},
		})

		assert.Len(t, resp.Data, 2)
		assert.Equal(t, IdentityResponse{
			PublicKey: "pk", Nickname: "Al", Version: 2, IsActive: true, CreatedAt: now, LastAccessed: now,
		}, resp.Data[0])
		assert.Equal(t, 1, resp.Data[1].Version)
	})

	t.Run("empty input maps to empty data", func(t *testing.T) {
		resp := MapIdentitiesToListResponse(nil)
		assert.NotNil(t, resp.Data)
		assert.Empty(t, resp.Data)
	})
}

func TestMapSessionToResponse(t *testing.T) {
	now := time.Now().UTC()
	resp := MapSessionToResponse(&domain.AuthSession{
		ID: "did:key:z1", PNName: "alice", Nickname: "Al", AccessToken: "tok",
		ExpiresIn: 3600, AuthenticatedAt: now, PublicKey: "pk",
	})
	assert.Equal(t, "did:key:z1", resp.ID)
	assert.Equal(t, "alice", resp.PNName)
	assert.Equal(t, "tok", resp.AccessToken)
	assert.Equal(t, 3600, resp.ExpiresIn)
	assert.Equal(t, now, resp.AuthenticatedAt)
	assert.Equal(t, "pk", resp.PublicKey)
}

func TestMapPageToResponse(t *testing.T) {
	resp := MapPageToResponse(store.Page{Page: 1, PageSize: 20})
	assert.NotNil(t, resp.Data)
	assert.Zero(t, resp.Total)

	resp = MapPageToResponse(store.Page{
		Items: []store.Identity{{ID: "a"}}, Total: 21, Page: 2, PageSize: 20, TotalPages: 2,
	})
	assert.Len(t, resp.Data, 1)
	assert.Equal(t, 21, resp.Total)
	assert.Equal(t, 2, resp.TotalPages)
}
