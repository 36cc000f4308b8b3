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

// ProductVariantRepository persists option assignments (product, variant dimension, option value).
type ProductVariantRepository interface {
	Create(ctx context.Context, pv *models.ProductVariant) error
	Find(ctx context.Context, productID, variantID uuid.UUID, title string) (*models.ProductVariant, error)
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]*models.ProductVariant, error)
	DeleteByIDs(ctx context.Context, productID uuid.UUID, ids []uuid.UUID) (int64, error)
	DistinctTitles(ctx context.Context) ([]string, error)
}

type productVariantRepo struct {
	db Database
}

func NewProductVariantRepo(db Database) ProductVariantRepository {
	return &productVariantRepo{db: db}
}

func (r *productVariantRepo) Create(ctx context.Context, pv *models.ProductVariant) error {
	query := `
		INSERT INTO product_variants (id, variant_title, variant_id, product_id, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING created_at
	`
	if pv.ID == uuid.Nil {
		pv.ID = uuid.New()
	}
	err := r.db.QueryRow(ctx, query, pv.ID, pv.VariantTitle, pv.VariantID, pv.ProductID).Scan(&pv.CreatedAt)
	if err != nil {
		if isUniqueViolation(err, "product_variants_identity_key") {
			return common.InvalidProductData("option already assigned to product", map[string]string{"tags": pv.VariantTitle})
		}
		return fmt.Errorf("insert product variant: %w", err)
	}
	return nil
}

// Find returns the assignment identified by (product, variant, title), or a NotFound error.
func (r *productVariantRepo) Find(ctx context.Context, productID, variantID uuid.UUID, title string) (*models.ProductVariant, error) {
	pv := &models.ProductVariant{}
	query := `
		SELECT id, variant_title, variant_id, product_id, created_at
		FROM product_variants
		WHERE product_id = $1 AND variant_id = $2 AND variant_title = $3
	`
	err := r.db.QueryRow(ctx, query, productID, variantID, title).Scan(&pv.ID, &pv.VariantTitle, &pv.VariantID, &pv.ProductID, &pv.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NotFound("option %q not assigned to product %s", title, productID)
		}
		return nil, err
	}
	return pv, nil
}

func (r *productVariantRepo) ListByProduct(ctx context.Context, productID uuid.UUID) ([]*models.ProductVariant, error) {
	query := `
		SELECT id, variant_title, variant_id, product_id, created_at
		FROM product_variants
		WHERE product_id = $1
		ORDER BY seq ASC
	`
	rows, err := r.db.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("list product variants: %w", err)
	}
	defer rows.Close()

	var pvs []*models.ProductVariant
	for rows.Next() {
		pv := &models.ProductVariant{}
		if err := rows.Scan(&pv.ID, &pv.VariantTitle, &pv.VariantID, &pv.ProductID, &pv.CreatedAt); err != nil {
			return nil, err
		}
		pvs = append(pvs, pv)
	}
	return pvs, rows.Err()
}

func (r *productVariantRepo) DeleteByIDs(ctx context.Context, productID uuid.UUID, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	query := `DELETE FROM product_variants WHERE product_id = $1 AND id = ANY($2)`
	tag, err := r.db.Exec(ctx, query, productID, ids)
	if err != nil {
		return 0, fmt.Errorf("delete product variants: %w", err)
	}
	return tag.RowsAffected(), nil
}

// DistinctTitles lists every option value in use, for listing filters.
func (r *productVariantRepo) DistinctTitles(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT DISTINCT variant_title FROM product_variants ORDER BY variant_title`)
	if err != nil {
		return nil, fmt.Errorf("list option titles: %w", err)
	}
	defer rows.Close()

	var titles []string
	for rows.Next() {
		var title string
		if err := rows.Scan(&title); err != nil {
			return nil, err
		}
		titles = append(titles, title)
	}
	return titles, rows.Err()
}
