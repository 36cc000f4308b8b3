package repositories

import (
	"context"
	"errors"
	"fmt"

	"catalog/internal/common"
	"catalog/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type VariantRepository interface {
	Create(ctx context.Context, variant *models.Variant) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Variant, error)
	ListActive(ctx context.Context) ([]*models.Variant, error)
	List(ctx context.Context) ([]*models.Variant, error)
}

type variantRepo struct {
	db Database
}

func NewVariantRepo(db Database) VariantRepository {
	return &variantRepo{db: db}
}

func (r *variantRepo) Create(ctx context.Context, variant *models.Variant) error {
	query := `
		INSERT INTO variants (id, title, description, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query, variant.ID, variant.Title, variant.Description, variant.Active).
		Scan(&variant.CreatedAt, &variant.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, "variants_title_key") {
			return common.InvalidProductData("variant title already exists", map[string]string{"title": variant.Title})
		}
		return err
	}
	return nil
}

func (r *variantRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Variant, error) {
	variant := &models.Variant{}
	query := `
		SELECT id, title, description, active, created_at, updated_at
		FROM variants
		WHERE id = $1
	`
	err := r.db.QueryRow(ctx, query, id).Scan(&variant.ID, &variant.Title, &variant.Description, &variant.Active, &variant.CreatedAt, &variant.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NotFound("variant %s not found", id)
		}
		return nil, err
	}
	return variant, nil
}

func (r *variantRepo) ListActive(ctx context.Context) ([]*models.Variant, error) {
	return r.list(ctx, `
		SELECT id, title, description, active, created_at, updated_at
		FROM variants
		WHERE active = TRUE
		ORDER BY title
	`)
}

func (r *variantRepo) List(ctx context.Context) ([]*models.Variant, error) {
	return r.list(ctx, `
		SELECT id, title, description, active, created_at, updated_at
		FROM variants
		ORDER BY title
	`)
}

func (r *variantRepo) list(ctx context.Context, query string) ([]*models.Variant, error) {
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list variants: %w", err)
	}
	defer rows.Close()

	var variants []*models.Variant
	for rows.Next() {
		variant := &models.Variant{}
		if err := rows.Scan(&variant.ID, &variant.Title, &variant.Description, &variant.Active, &variant.CreatedAt, &variant.UpdatedAt); err != nil {
			return nil, err
		}
		variants = append(variants, variant)
	}
	return variants, rows.Err()
}
