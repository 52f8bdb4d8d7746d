// Package domain defines the versioned identity registry's records: bounded
// per-public-key version history, the legacy single-snapshot format and the
// outcome of migrating from it.
package domain

import (
	"bytes"
	"encoding/json"
	"time"
)

// Persistence keys and defaults.
const (
	// KeyVersioned holds the publicKey -> VersionGroup mapping.
	KeyVersioned = "pn-identities-versioned"

	// KeyLegacy holds the single-snapshot list written by older releases.
	KeyLegacy = "pn-identities"

	// DefaultMaxVersions is the number of versions retained per public key.
	DefaultMaxVersions = 3
)

// VersionedIdentity is one snapshot of an identity. IDFile is opaque to the
// registry: it is the serialized EncryptedIdentity and is never decrypted here.
type VersionedIdentity struct {
	PublicKey    string    `json:"publicKey"`
	IDFile       string    `json:"idFile"`
	Nickname     string    `json:"nickname"`
	Version      int       `json:"version"`
	CreatedAt    time.Time `json:"createdAt"`
	LastAccessed time.Time `json:"lastAccessed"`
	IsActive     bool      `json:"isActive"`
}

// VersionGroup holds the retained versions of one public key.
type VersionGroup struct {
	PublicKey string              `json:"publicKey"`
	Versions  []VersionedIdentity `json:"versions"`
}

// Active returns the index of the active version, or -1.
func (g *VersionGroup) Active() int {
	for i := range g.Versions {
		if g.Versions[i].IsActive {
			return i
		}
	}
	return -1
}

// LatestVersion returns the highest version number in the group, or zero for
// an empty group.
func (g *VersionGroup) LatestVersion() int {
	latest := 0
	for _, v := range g.Versions {
		if v.Version > latest {
			latest = v.Version
		}
	}
	return latest
}

// LegacyIdentity is an entry of the pre-versioning store. Older releases wrote
// idFile either as a JSON string or as the embedded EncryptedIdentity object.
type LegacyIdentity struct {
	PublicKey string          `json:"publicKey"`
	IDFile    json.RawMessage `json:"idFile"`
	Nickname  string          `json:"nickname"`
}

// IDFileString returns IDFile as the opaque string stored in a
// VersionedIdentity. Strings are unquoted, objects are kept as compact JSON.
func (l *LegacyIdentity) IDFileString() string {
	raw := bytes.TrimSpace(l.IDFile)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return ""
		}
		return s
	}
	var compact bytes.Buffer
	if err := json.Compact(&compact, raw); err != nil {
		return ""
	}
	return compact.String()
}

// MigrationReport summarizes one MigrateFromOldFormat run.
type MigrationReport struct {
	Migrated      int  `json:"migrated"`
	Skipped       int  `json:"skipped"`
	LegacyRemoved bool `json:"legacyRemoved"`
}
