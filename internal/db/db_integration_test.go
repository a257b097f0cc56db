//go:build integration

package db

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/career-advisor/internal/quota"
)

// Integration tests require a live Postgres with the migrations applied.
// Run with: DATABASE_URL=postgres://... go test -tags integration ./internal/db/

func testDB(t *testing.T) *DB {
	t.Helper()
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	database, err := Connect(ctx, url)
	require.NoError(t, err)
	t.Cleanup(database.Close)
	return database
}

func uniqueIdentity(prefix string) string {
	return fmt.Sprintf("%s:%s", prefix, uuid.New())
}

func TestQuotaStore_IncrementToCeiling(t *testing.T) {
	store := NewQuotaStore(testDB(t))
	ctx := context.Background()
	identity := uniqueIdentity("anon")

	used, err := store.Usage(ctx, identity)
	require.NoError(t, err)
	assert.Equal(t, 0, used, "unknown identity reads as zero")

	for want := 1; want <= 3; want++ {
		used, err = store.IncrementBelow(ctx, identity, 3)
		require.NoError(t, err)
		assert.Equal(t, want, used)
	}

	used, err = store.IncrementBelow(ctx, identity, 3)
	require.ErrorIs(t, err, quota.ErrLimitReached)
	assert.Equal(t, 3, used, "counter never passes the limit")

	used, err = store.Usage(ctx, identity)
	require.NoError(t, err)
	assert.Equal(t, 3, used)
}

func TestQuotaStore_ConcurrentIncrements(t *testing.T) {
	store := NewQuotaStore(testDB(t))
	ctx := context.Background()
	identity := uniqueIdentity("anon")
	const limit = 5

	var g errgroup.Group
	results := make(chan error, limit*3)
	for i := 0; i < limit*3; i++ {
		g.Go(func() error {
			_, err := store.IncrementBelow(ctx, identity, limit)
			results <- err
			return nil
		})
	}
	require.NoError(t, g.Wait())
	close(results)

	var succeeded, refused int
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, quota.ErrLimitReached):
			refused++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, limit, succeeded)
	assert.Equal(t, limit*2, refused)

	used, err := store.Usage(ctx, identity)
	require.NoError(t, err)
	assert.Equal(t, limit, used)
}

func TestPurchases_SaveAndLookup(t *testing.T) {
	database := testDB(t)
	ctx := context.Background()
	userID := uuid.New()

	has, err := database.HasPurchase(ctx, userID)
	require.NoError(t, err)
	assert.False(t, has)

	ref := uniqueIdentity("checkout")
	id, err := database.SavePurchase(ctx, userID, "advisor-pro", ref)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, id)

	// Webhook re-delivery of the same checkout reference is absorbed.
	again, err := database.SavePurchase(ctx, userID, "advisor-pro", ref)
	require.NoError(t, err)
	assert.Equal(t, id, again)

	has, err = database.HasPurchase(ctx, userID)
	require.NoError(t, err)
	assert.True(t, has)

	purchases, err := database.ListPurchases(ctx, userID)
	require.NoError(t, err)
	require.Len(t, purchases, 1)
	assert.Equal(t, "advisor-pro", purchases[0].SKU)
	assert.Equal(t, userID, purchases[0].UserID)
}
