package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jonathan/career-advisor/internal/quota"
)

// QuotaStore implements quota.Store on Postgres. The uniqueness constraint
// on quota_records.identity guarantees at most one row per identity even
// under concurrent first-time callers; the conditional upsert guarantees
// the counter never passes the limit.
type QuotaStore struct {
	db *DB
}

// NewQuotaStore wraps a database handle as a quota store.
func NewQuotaStore(db *DB) *QuotaStore {
	return &QuotaStore{db: db}
}

// Usage returns the stored counter for an identity, 0 when no record
// exists. Records are created lazily on first consume, never here.
func (s *QuotaStore) Usage(ctx context.Context, key string) (int, error) {
	var used int
	err := s.db.pool.QueryRow(ctx,
		`SELECT used FROM quota_records WHERE identity = $1`,
		key,
	).Scan(&used)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read quota record: %w", err)
	}
	return used, nil
}

// IncrementBelow performs the increment as a single atomic statement:
// insert-or-increment keyed on the identity column, with the increment
// refused when the stored counter has reached the limit. No separate
// read-then-write exists, so concurrent callers cannot push the counter
// past the limit.
func (s *QuotaStore) IncrementBelow(ctx context.Context, key string, limit int) (int, error) {
	var used int
	err := s.db.pool.QueryRow(ctx,
		`INSERT INTO quota_records (identity, used)
		 VALUES ($1, 1)
		 ON CONFLICT (identity) DO UPDATE
		   SET used = quota_records.used + 1, updated_at = NOW()
		   WHERE quota_records.used < $2
		 RETURNING used`,
		key, limit,
	).Scan(&used)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// The conditional update refused: the identity is at its limit.
			current, readErr := s.Usage(ctx, key)
			if readErr != nil {
				return 0, readErr
			}
			return current, quota.ErrLimitReached
		}
		return 0, fmt.Errorf("failed to increment quota record: %w", err)
	}
	return used, nil
}
