package testhelpers

import (
	"context"
	"os"
	"testing"

	"catalog/internal/models"
	"catalog/internal/repositories"
	"catalog/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TestDB holds the database connection for testing
type TestDB struct {
	Pool    *pgxpool.Pool
	Cleanup func() error
}

// SetupTestDB connects to TEST_DATABASE_URL, applies the schema and empties the catalog tables.
// The test is skipped when no database is configured.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	connString := os.Getenv("TEST_DATABASE_URL")
	if connString == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	if err := database.Migrate(ctx, pool); err != nil {
		pool.Close()
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	db := &TestDB{
		Pool: pool,
		Cleanup: func() error {
			defer pool.Close()
			return truncate(context.Background(), pool)
		},
	}
	if err := truncate(ctx, pool); err != nil {
		t.Fatalf("Failed to reset test database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Cleanup(); err != nil {
			t.Logf("Failed to clean test database: %v", err)
		}
	})
	return db
}

func truncate(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `TRUNCATE product_variant_prices, product_variants, product_images, products, variants CASCADE`)
	return err
}

// SetupTestVariant creates an active variant dimension
func SetupTestVariant(t *testing.T, db *TestDB, title string) *models.Variant {
	t.Helper()

	variant := &models.Variant{ID: uuid.New(), Title: title, Active: true}
	if err := repositories.NewVariantRepo(db.Pool).Create(context.Background(), variant); err != nil {
		t.Fatalf("Failed to create test variant: %v", err)
	}
	return variant
}
