//nolint:revive // types is a standard Go package name pattern
package types

import "github.com/google/uuid"

// IdentityClass distinguishes quota tiers. The ledger itself is
// class-agnostic beyond reading the limit that applies.
type IdentityClass string

// Identity classes recognized by the quota ledger.
const (
	IdentityAnonymous IdentityClass = "anonymous"
	IdentityEntitled  IdentityClass = "entitled"
)

// Identity is the key a usage quota is tracked under: an opaque anonymous
// token minted on first contact, or a stable authenticated credential.
// UserID is set only for entitled identities.
type Identity struct {
	Key    string        `json:"key"`
	Class  IdentityClass `json:"class"`
	UserID uuid.UUID     `json:"-"`
}

// Allowance is a point-in-time view of an identity's regeneration budget.
type Allowance struct {
	Used      int `json:"used"`
	Limit     int `json:"limit"`
	Remaining int `json:"remaining"`
}
