// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	"encoding/json"

	validation "github.com/jellydator/validation"

	"github.com/bymjmazzei/par-noir/internal/identity/domain"
	"github.com/bymjmazzei/par-noir/internal/store"
	customValidation "github.com/bymjmazzei/par-noir/internal/validation"
)

// CreateIdentityRequest contains the parameters for creating a new identity.
// The passcode policy and the username format are enforced by the use case.
type CreateIdentityRequest struct {
	Username      string `json:"username"`
	Nickname      string `json:"nickname"`
	Passcode      string `json:"passcode"` //nolint:gosec // request input, never echoed
	RecoveryEmail string `json:"recoveryEmail,omitempty"`
	RecoveryPhone string `json:"recoveryPhone,omitempty"`
}

// Validate checks if the create identity request is valid.
func (r *CreateIdentityRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Username, validation.Required, customValidation.NotBlank),
		validation.Field(&r.Nickname, validation.Required, customValidation.NotBlank),
		validation.Field(&r.Passcode, validation.Required),
		validation.Field(&r.RecoveryEmail, customValidation.Email),
		validation.Field(&r.RecoveryPhone, customValidation.Phone),
	)
}

// ToInput maps the request to the use case input.
func (r *CreateIdentityRequest) ToInput() domain.CreateIdentityInput {
	return domain.CreateIdentityInput{
		Username:      r.Username,
		Nickname:      r.Nickname,
		Passcode:      r.Passcode,
		RecoveryEmail: r.RecoveryEmail,
		RecoveryPhone: r.RecoveryPhone,
	}
}

// AuthenticateRequest unlocks the active version of an identity. Username is
// optional; when set the decrypted identity must belong to it.
type AuthenticateRequest struct {
	Passcode string `json:"passcode"` //nolint:gosec // request input, never echoed
	Username string `json:"username,omitempty"`
}

// Validate checks if the authenticate request is valid.
func (r *AuthenticateRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Passcode, validation.Required),
	)
}

// UpdateNicknameRequest renames an identity.
type UpdateNicknameRequest struct {
	Nickname string `json:"nickname"`
}

// Validate checks if the update nickname request is valid.
func (r *UpdateNicknameRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Nickname, validation.Required, customValidation.NotBlank),
	)
}

// ExportRequest selects the identities to export. An empty list exports every
// active identity.
type ExportRequest struct {
	PublicKeys []string `json:"publicKeys"`
}

// Validate checks if the export request is valid.
func (r *ExportRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.PublicKeys,
			validation.Each(validation.Required, customValidation.NotBlank),
		),
	)
}

// ImportRequest carries an export envelope and the passcode its identities
// are encrypted under.
type ImportRequest struct {
	Passcode string          `json:"passcode"` //nolint:gosec // request input, never echoed
	Export   json.RawMessage `json:"export"`
}

// Validate checks if the import request is valid.
func (r *ImportRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Passcode, validation.Required),
		validation.Field(&r.Export, validation.Required),
	)
}

// VerifySessionRequest checks a session token against the DID it was issued for.
type VerifySessionRequest struct {
	Token string `json:"token"`
	DID   string `json:"did"`
}

// Validate checks if the verify session request is valid.
func (r *VerifySessionRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Token, validation.Required, customValidation.NotBlank),
		validation.Field(&r.DID, validation.Required, customValidation.NotBlank),
	)
}

var sortFields = []interface{}{
	"alias", "displayName", "contact", "status",
	"loginCount", "createdAt", "updatedAt", "lastAccessed",
}

// DirectoryQuery holds the filter and sort parameters of a directory listing.
// Pagination is parsed separately by httputil.ParsePagination.
type DirectoryQuery struct {
	Status    string `form:"status"`
	Search    string `form:"search"`
	SortBy    string `form:"sortBy"`
	SortOrder string `form:"sortOrder"`
}

// Validate checks if the directory query is valid.
func (q *DirectoryQuery) Validate() error {
	return validation.ValidateStruct(q,
		validation.Field(&q.Status, validation.In(
			string(store.StatusActive),
			string(store.StatusInactive),
			string(store.StatusLocked),
			string(store.StatusArchived),
		)),
		validation.Field(&q.SortBy, validation.In(sortFields...)),
		validation.Field(&q.SortOrder, validation.In(store.SortAsc, store.SortDesc)),
	)
}

// ToQuery maps the parameters to a store query.
func (q *DirectoryQuery) ToQuery(page, pageSize int) store.Query {
	return store.Query{
		Page:      page,
		PageSize:  pageSize,
		Status:    store.Status(q.Status),
		Search:    q.Search,
		SortBy:    q.SortBy,
		SortOrder: q.SortOrder,
	}
}
