package repositories

import (
	"context"
	"time"

	"github.com/ettra/waitlist-api/internal/database"
	"github.com/ettra/waitlist-api/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type WaitlistRepository struct {
	pool *pgxpool.Pool
}

func NewWaitlistRepository(db *database.DB) *WaitlistRepository {
	return &WaitlistRepository{pool: db.Pool}
}

// Create inserts one waitlist entry. The email must already be
// normalized by the caller; the unique index on email turns a repeat
// signup into models.ErrConflict.
func (r *WaitlistRepository) Create(ctx context.Context, email string) (*models.WaitlistEntry, error) {
	entry := &models.WaitlistEntry{
		ID:        uuid.New().String(),
		Email:     email,
		CreatedAt: time.Now().UTC(),
	}

	query := `
		INSERT INTO waitlist (id, email, created_at)
		VALUES ($1, $2, $3)
		RETURNING id, email, created_at
	`

	err := r.pool.QueryRow(ctx, query, entry.ID, entry.Email, entry.CreatedAt).
		Scan(&entry.ID, &entry.Email, &entry.CreatedAt)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return entry, nil
}

// GetByEmail looks up an entry by normalized email
func (r *WaitlistRepository) GetByEmail(ctx context.Context, email string) (*models.WaitlistEntry, error) {
	query := `SELECT id, email, created_at FROM waitlist WHERE email = $1`

	var entry models.WaitlistEntry
	err := r.pool.QueryRow(ctx, query, email).Scan(&entry.ID, &entry.Email, &entry.CreatedAt)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &entry, nil
}

// Count reports the number of signups
func (r *WaitlistRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM waitlist`).Scan(&count)
	if err != nil {
		return 0, database.MapPostgresError(err)
	}
	return count, nil
}
