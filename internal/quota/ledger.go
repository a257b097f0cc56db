// Package quota enforces the per-identity cap on regeneration turns. The
// invariant: under arbitrary concurrent ConsumeTurn calls for one identity
// with limit L, the stored counter never exceeds L and exactly min(calls, L)
// calls succeed.
package quota

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonathan/career-advisor/internal/types"
)

// ErrLimitReached is the sentinel a Store returns when the conditional
// increment finds the counter at or above the limit.
var ErrLimitReached = errors.New("quota limit reached")

// Store is the persistence contract the ledger runs on. IncrementBelow must
// be atomic: create-if-absent and increment in one step, refusing when the
// current value is at or above limit, regardless of concurrent callers.
type Store interface {
	// Usage returns the current counter for an identity key, 0 when no
	// record exists. Read-only.
	Usage(ctx context.Context, key string) (int, error)
	// IncrementBelow atomically increments the counter for key if and only
	// if the current value is below limit, creating the record when absent.
	// It returns the counter value after the call; when the increment is
	// refused the returned error wraps ErrLimitReached.
	IncrementBelow(ctx context.Context, key string, limit int) (int, error)
}

// Default turn limits per identity class.
const (
	DefaultAnonymousLimit = 3
	DefaultEntitledLimit  = 10
)

// Ledger applies class-based limits on top of a Store. It never retries:
// exceeding quota is reported immediately.
type Ledger struct {
	store  Store
	limits map[types.IdentityClass]int
}

// NewLedger builds a ledger. Non-positive limits fall back to defaults.
func NewLedger(store Store, anonymousLimit, entitledLimit int) *Ledger {
	if anonymousLimit <= 0 {
		anonymousLimit = DefaultAnonymousLimit
	}
	if entitledLimit <= 0 {
		entitledLimit = DefaultEntitledLimit
	}
	return &Ledger{
		store: store,
		limits: map[types.IdentityClass]int{
			types.IdentityAnonymous: anonymousLimit,
			types.IdentityEntitled:  entitledLimit,
		},
	}
}

// Limit returns the turn limit for an identity class. Unknown classes get
// the anonymous limit.
func (l *Ledger) Limit(class types.IdentityClass) int {
	if limit, ok := l.limits[class]; ok {
		return limit
	}
	return l.limits[types.IdentityAnonymous]
}

// CheckAllowance reports the identity's current budget without mutating
// anything.
func (l *Ledger) CheckAllowance(ctx context.Context, id types.Identity) (types.Allowance, error) {
	limit := l.Limit(id.Class)
	used, err := l.store.Usage(ctx, id.Key)
	if err != nil {
		return types.Allowance{}, fmt.Errorf("failed to read quota usage: %w", err)
	}
	return allowance(used, limit), nil
}

// ConsumeTurn atomically spends one regeneration turn. When the identity is
// at its limit it fails with *QuotaExceededError and mutates nothing.
func (l *Ledger) ConsumeTurn(ctx context.Context, id types.Identity) (types.Allowance, error) {
	limit := l.Limit(id.Class)
	if limit <= 0 {
		return types.Allowance{}, &QuotaExceededError{Class: id.Class, Used: 0, Limit: limit}
	}

	used, err := l.store.IncrementBelow(ctx, id.Key, limit)
	if err != nil {
		if errors.Is(err, ErrLimitReached) {
			return types.Allowance{}, &QuotaExceededError{Class: id.Class, Used: used, Limit: limit}
		}
		return types.Allowance{}, fmt.Errorf("failed to consume turn: %w", err)
	}
	return allowance(used, limit), nil
}

func allowance(used, limit int) types.Allowance {
	remaining := limit - used
	if remaining < 0 {
		remaining = 0
	}
	return types.Allowance{Used: used, Limit: limit, Remaining: remaining}
}
