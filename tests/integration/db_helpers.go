package integration

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/ettra/waitlist-api/internal/config"
	"github.com/ettra/waitlist-api/internal/database"
)

// TestDB manages a PostgreSQL testcontainer plus the application's
// database handle.
type TestDB struct {
	Container testcontainers.Container
	DB        *database.DB
}

// SetupTestDatabase starts a PostgreSQL container, connects through the
// application's pool, and applies the embedded migrations.
func SetupTestDatabase(ctx context.Context) (*TestDB, error) {
	container, err := postgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:16-alpine"),
		postgres.WithDatabase("waitlist"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start postgres container: %w", err)
	}

	connString, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("failed to get connection string: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	db, err := database.NewConnection(&config.DatabaseConfig{
		URL:               connString,
		MaxConns:          5,
		MinConns:          1,
		MaxConnLifetime:   5 * time.Minute,
		MaxConnIdleTime:   1 * time.Minute,
		HealthCheckPeriod: 1 * time.Minute,
	}, logger)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("failed to connect: %w", err)
	}

	if err := db.Migrate(ctx); err != nil {
		db.Close()
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}

	return &TestDB{Container: container, DB: db}, nil
}

// Teardown closes the pool and terminates the container
func (t *TestDB) Teardown(ctx context.Context) {
	t.DB.Close()
	_ = t.Container.Terminate(ctx)
}
