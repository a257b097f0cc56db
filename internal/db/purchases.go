package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/google/uuid"
)

// Purchase records a completed checkout that entitles a user to the higher
// quota tier. Rows are written at the checkout-webhook boundary and read to
// classify identities; this service never deletes them.
type Purchase struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	SKU       string    `json:"sku"`
	CreatedAt time.Time `json:"created_at"`
}

// SavePurchase stores a purchase record and returns its ID. Re-delivery of
// the same checkout reference is absorbed by the uniqueness constraint.
func (db *DB) SavePurchase(ctx context.Context, userID uuid.UUID, sku, checkoutRef string) (uuid.UUID, error) {
	var id uuid.UUID
	err := db.pool.QueryRow(ctx,
		`INSERT INTO purchases (user_id, sku, checkout_ref)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (checkout_ref) DO UPDATE SET sku = EXCLUDED.sku
		 RETURNING id`,
		userID, sku, checkoutRef,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to save purchase: %w", err)
	}
	return id, nil
}

// HasPurchase reports whether a user holds any entitling purchase.
func (db *DB) HasPurchase(ctx context.Context, userID uuid.UUID) (bool, error) {
	var id uuid.UUID
	err := db.pool.QueryRow(ctx,
		`SELECT id FROM purchases WHERE user_id = $1 LIMIT 1`,
		userID,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to look up purchases: %w", err)
	}
	return true, nil
}

// ListPurchases returns a user's purchases, newest first.
func (db *DB) ListPurchases(ctx context.Context, userID uuid.UUID) ([]Purchase, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, user_id, sku, created_at
		 FROM purchases WHERE user_id = $1 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list purchases: %w", err)
	}
	defer rows.Close()

	var purchases []Purchase
	for rows.Next() {
		var p Purchase
		if err := rows.Scan(&p.ID, &p.UserID, &p.SKU, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan purchase: %w", err)
		}
		purchases = append(purchases, p)
	}
	return purchases, nil
}
