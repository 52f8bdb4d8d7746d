// Package store is the indexed identity store: an in-memory collection of
// identity records with secondary indexes by alias, contact and status, a
// time-boxed lookup cache and a coalesced update queue.
//
// Records here are the non-secret view of an identity. Nothing in this
// package ever holds a passcode, a derived key or a decrypted payload.
package store

import (
	"time"

	"github.com/bymjmazzei/par-noir/internal/errors"
)

// Status is the lifecycle status of a stored identity.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusLocked   Status = "locked"
	StatusArchived Status = "archived"
)

// ErrStoreConsistency signals that the primary map and an index disagree. It
// indicates a bug, not a recoverable condition.
var ErrStoreConsistency = errors.New("store consistency violation")

// Identity is a stored identity record.
type Identity struct {
	ID           string    `json:"id"`
	PublicKey    string    `json:"publicKey"`
	DID          string    `json:"did"`
	Alias        string    `json:"alias"`
	DisplayName  string    `json:"displayName"`
	Contact      string    `json:"contact,omitempty"`
	Status       Status    `json:"status"`
	LoginCount   int       `json:"loginCount"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	LastAccessed time.Time `json:"lastAccessed"`
}

// Patch is a partial update. Nil fields are left unchanged.
type Patch struct {
	Alias        *string
	DisplayName  *string
	Contact      *string
	Status       *Status
	LoginCount   *int
	LastAccessed *time.Time
}

func (p Patch) apply(id *Identity) {
	if p.Alias != nil {
		id.Alias = *p.Alias
	}
	if p.DisplayName != nil {
		id.DisplayName = *p.DisplayName
	}
	if p.Contact != nil {
		id.Contact = *p.Contact
	}
	if p.Status != nil {
		id.Status = *p.Status
	}
	if p.LoginCount != nil {
		id.LoginCount = *p.LoginCount
	}
	if p.LastAccessed != nil {
		id.LastAccessed = *p.LastAccessed
	}
}

// Sort orders accepted by Query.SortOrder.
const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

// Query selects a page of identities. Page is 1-indexed.
type Query struct {
	Page     int
	PageSize int
	// Status filters by status when not empty.
	Status Status
	// Search is a case-insensitive substring matched against alias, display
	// name and contact.
	Search string
	// SortBy names one of alias, displayName, contact, status, loginCount,
	// createdAt, updatedAt or lastAccessed. Empty keeps id order.
	SortBy    string
	SortOrder string
}

// Page is one page of a Query result.
type Page struct {
	Items      []Identity `json:"items"`
	Total      int        `json:"total"`
	Page       int        `json:"page"`
	PageSize   int        `json:"pageSize"`
	TotalPages int        `json:"totalPages"`
}
