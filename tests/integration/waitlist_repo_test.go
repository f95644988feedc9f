package integration

import (
	"context"
	"testing"
	"time"

	"github.com/ettra/waitlist-api/internal/models"
	"github.com/ettra/waitlist-api/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWaitlistRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	testDB, err := SetupTestDatabase(ctx)
	require.NoError(t, err)
	defer testDB.Teardown(context.Background())

	repo := repositories.NewWaitlistRepository(testDB.DB)

	t.Run("create and fetch", func(t *testing.T) {
		entry, err := repo.Create(ctx, "first@example.com")
		require.NoError(t, err)
		assert.NotEmpty(t, entry.ID)
		assert.Equal(t, "first@example.com", entry.Email)
		assert.WithinDuration(t, time.Now().UTC(), entry.CreatedAt, time.Minute)

		fetched, err := repo.GetByEmail(ctx, "first@example.com")
		require.NoError(t, err)
		assert.Equal(t, entry.ID, fetched.ID)
	})

	t.Run("duplicate email maps to conflict", func(t *testing.T) {
		_, err := repo.Create(ctx, "dup@example.com")
		require.NoError(t, err)

		_, err = repo.Create(ctx, "dup@example.com")
		assert.ErrorIs(t, err, models.ErrConflict)

		// Exactly one row survived the second attempt
		count, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)
	})

	t.Run("unknown email maps to not found", func(t *testing.T) {
		_, err := repo.GetByEmail(ctx, "missing@example.com")
		assert.ErrorIs(t, err, models.ErrNotFound)
	})
}
