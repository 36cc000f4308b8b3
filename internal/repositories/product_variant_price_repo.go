package repositories

import (
	"context"
	"fmt"

	"catalog/internal/common"
	"catalog/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// priceSlotsConstraint is deferred; violations are reported by the transaction commit.
const priceSlotsConstraint = "product_variant_prices_slots_key"

// ProductVariantPriceRepository persists the price matrix and exposes its read projections.
type ProductVariantPriceRepository interface {
	Create(ctx context.Context, price *models.ProductVariantPrice) error
	Update(ctx context.Context, price *models.ProductVariantPrice) error
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]*models.ProductVariantPrice, error)
	DeleteByIDs(ctx context.Context, productID uuid.UUID, ids []uuid.UUID) (int64, error)

	FindProductIDsByPriceRange(ctx context.Context, min, max decimal.Decimal) ([]uuid.UUID, error)
	FindProductIDsByOptionText(ctx context.Context, text string) ([]uuid.UUID, error)
	ListSummaries(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID][]models.PriceRowSummary, error)
	FindLowStock(ctx context.Context, threshold int) ([]*models.StockLevel, error)
}

type productVariantPriceRepo struct {
	db Database
}

func NewProductVariantPriceRepo(db Database) ProductVariantPriceRepository {
	return &productVariantPriceRepo{db: db}
}

func (r *productVariantPriceRepo) Create(ctx context.Context, price *models.ProductVariantPrice) error {
	query := `
		INSERT INTO product_variant_prices (id, product_variant_one, product_variant_two, product_variant_three, price, stock, product_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	if price.ID == uuid.Nil {
		price.ID = uuid.New()
	}
	err := r.db.QueryRow(ctx, query, price.ID, price.ProductVariantOne, price.ProductVariantTwo, price.ProductVariantThree, price.Price, price.Stock, price.ProductID).
		Scan(&price.CreatedAt, &price.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert variant price: %w", err)
	}
	return nil
}

func (r *productVariantPriceRepo) Update(ctx context.Context, price *models.ProductVariantPrice) error {
	query := `
		UPDATE product_variant_prices
		SET product_variant_one = $1, product_variant_two = $2, product_variant_three = $3, price = $4, stock = $5, updated_at = NOW()
		WHERE id = $6 AND product_id = $7
	`
	tag, err := r.db.Exec(ctx, query, price.ProductVariantOne, price.ProductVariantTwo, price.ProductVariantThree, price.Price, price.Stock, price.ID, price.ProductID)
	if err != nil {
		return fmt.Errorf("update variant price: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return common.NotFound("price row %s not found for product %s", price.ID, price.ProductID)
	}
	return nil
}

func (r *productVariantPriceRepo) ListByProduct(ctx context.Context, productID uuid.UUID) ([]*models.ProductVariantPrice, error) {
	query := `
		SELECT id, product_id, product_variant_one, product_variant_two, product_variant_three, price, stock, created_at, updated_at
		FROM product_variant_prices
		WHERE product_id = $1
		ORDER BY seq ASC
	`
	rows, err := r.db.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("list variant prices: %w", err)
	}
	defer rows.Close()

	var prices []*models.ProductVariantPrice
	for rows.Next() {
		p := &models.ProductVariantPrice{}
		if err := rows.Scan(&p.ID, &p.ProductID, &p.ProductVariantOne, &p.ProductVariantTwo, &p.ProductVariantThree, &p.Price, &p.Stock, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		prices = append(prices, p)
	}
	return prices, rows.Err()
}

func (r *productVariantPriceRepo) DeleteByIDs(ctx context.Context, productID uuid.UUID, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	query := `DELETE FROM product_variant_prices WHERE product_id = $1 AND id = ANY($2)`
	tag, err := r.db.Exec(ctx, query, productID, ids)
	if err != nil {
		return 0, fmt.Errorf("delete variant prices: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *productVariantPriceRepo) FindProductIDsByPriceRange(ctx context.Context, min, max decimal.Decimal) ([]uuid.UUID, error) {
	query := `
		SELECT DISTINCT product_id
		FROM product_variant_prices
		WHERE price BETWEEN $1 AND $2
	`
	return r.collectIDs(ctx, query, min, max)
}

func (r *productVariantPriceRepo) FindProductIDsByOptionText(ctx context.Context, text string) ([]uuid.UUID, error) {
	query := `
		SELECT DISTINCT pvp.product_id
		FROM product_variant_prices pvp
		JOIN product_variants pv
		  ON pv.id IN (pvp.product_variant_one, pvp.product_variant_two, pvp.product_variant_three)
		WHERE pv.variant_title = $1
	`
	return r.collectIDs(ctx, query, text)
}

func (r *productVariantPriceRepo) collectIDs(ctx context.Context, query string, args ...any) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find product ids: %w", err)
	}
	defer rows.Close()

	ids := []uuid.UUID{}
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ListSummaries returns the price rows of each product with slot titles spelled out.
func (r *productVariantPriceRepo) ListSummaries(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID][]models.PriceRowSummary, error) {
	summaries := make(map[uuid.UUID][]models.PriceRowSummary, len(productIDs))
	if len(productIDs) == 0 {
		return summaries, nil
	}

	query := `
		SELECT pvp.product_id,
		       COALESCE(one.variant_title, ''), COALESCE(two.variant_title, ''), COALESCE(three.variant_title, ''),
		       pvp.price, pvp.stock
		FROM product_variant_prices pvp
		LEFT JOIN product_variants one ON one.id = pvp.product_variant_one
		LEFT JOIN product_variants two ON two.id = pvp.product_variant_two
		LEFT JOIN product_variants three ON three.id = pvp.product_variant_three
		WHERE pvp.product_id = ANY($1)
		ORDER BY pvp.seq ASC
	`
	rows, err := r.db.Query(ctx, query, productIDs)
	if err != nil {
		return nil, fmt.Errorf("list price summaries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var productID uuid.UUID
		var s models.PriceRowSummary
		if err := rows.Scan(&productID, &s.VariantOne, &s.VariantTwo, &s.VariantThree, &s.Price, &s.Stock); err != nil {
			return nil, err
		}
		summaries[productID] = append(summaries[productID], s)
	}
	return summaries, rows.Err()
}

func (r *productVariantPriceRepo) FindLowStock(ctx context.Context, threshold int) ([]*models.StockLevel, error) {
	query := `
		SELECT pvp.id, p.id, p.title,
		       COALESCE(one.variant_title, ''), COALESCE(two.variant_title, ''), COALESCE(three.variant_title, ''),
		       pvp.stock
		FROM product_variant_prices pvp
		JOIN products p ON p.id = pvp.product_id
		LEFT JOIN product_variants one ON one.id = pvp.product_variant_one
		LEFT JOIN product_variants two ON two.id = pvp.product_variant_two
		LEFT JOIN product_variants three ON three.id = pvp.product_variant_three
		WHERE pvp.stock <= $1
		ORDER BY pvp.stock ASC, p.title
	`
	rows, err := r.db.Query(ctx, query, threshold)
	if err != nil {
		return nil, fmt.Errorf("find low stock: %w", err)
	}
	defer rows.Close()

	var levels []*models.StockLevel
	for rows.Next() {
		var one, two, three string
		level := &models.StockLevel{}
		if err := rows.Scan(&level.PriceRowID, &level.ProductID, &level.ProductTitle, &one, &two, &three, &level.Stock); err != nil {
			return nil, err
		}
		level.VariantTitle = models.JoinVariantTitle(one, two, three)
		levels = append(levels, level)
	}
	return levels, rows.Err()
}
