package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Owner is a tenant identity. Owners hold profiles and API keys and are
// created on demand by external identifier (email).
type Owner struct {
	ID     string `json:"id"`
	Email  string `json:"email"`
	Active bool   `json:"active"`
	Timestamps
}

// APIKey is an opaque credential stored only as a peppered hash. Possession
// of the raw key grants full owner-scoped access; deletion revokes it
// immediately.
type APIKey struct {
	ID         string     `json:"id"`
	OwnerID    string     `json:"owner_id"`
	KeyHash    string     `json:"-"`
	CreatedAt  time.Time  `json:"created_at"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
}

// HashAPIKey computes the stored lookup hash for a raw credential:
// hex(SHA-256(raw || pepper)). The pepper is a process-wide secret, distinct
// from any per-record salt.
func HashAPIKey(raw, pepper string) string {
	sum := sha256.Sum256([]byte(raw + pepper))
	return hex.EncodeToString(sum[:])
}
