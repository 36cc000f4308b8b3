package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"catalog/internal/common"
	"catalog/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const productSKUConstraint = "products_sku_key"

type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	Update(ctx context.Context, product *models.Product) error
	// ExistsBySKU reports whether sku is taken by a product other than excludeID.
	ExistsBySKU(ctx context.Context, sku string, excludeID *uuid.UUID) (bool, error)
	List(ctx context.Context, filter *models.ProductListFilter) ([]*models.Product, error)
	Count(ctx context.Context, filter *models.ProductListFilter) (int, error)
}

type productRepo struct {
	db Database
}

func NewProductRepo(db Database) ProductRepository {
	return &productRepo{db: db}
}

func (r *productRepo) Create(ctx context.Context, product *models.Product) error {
	query := `
		INSERT INTO products (id, title, sku, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query, product.ID, product.Title, product.SKU, product.Description).
		Scan(&product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, productSKUConstraint) {
			return common.DuplicateSKU(product.SKU)
		}
		return err
	}
	return nil
}

func (r *productRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product := &models.Product{}
	query := `
		SELECT id, title, sku, description, created_at, updated_at
		FROM products
		WHERE id = $1
	`
	err := r.db.QueryRow(ctx, query, id).Scan(&product.ID, &product.Title, &product.SKU, &product.Description, &product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NotFound("product %s not found", id)
		}
		return nil, err
	}
	return product, nil
}

func (r *productRepo) Update(ctx context.Context, product *models.Product) error {
	query := `
		UPDATE products
		SET title = $1, sku = $2, description = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING updated_at
	`
	err := r.db.QueryRow(ctx, query, product.Title, product.SKU, product.Description, product.ID).Scan(&product.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.NotFound("product %s not found", product.ID)
		}
		if isUniqueViolation(err, productSKUConstraint) {
			return common.DuplicateSKU(product.SKU)
		}
		return err
	}
	return nil
}

func (r *productRepo) ExistsBySKU(ctx context.Context, sku string, excludeID *uuid.UUID) (bool, error) {
	var exists bool
	var err error
	if excludeID != nil {
		query := `SELECT EXISTS (SELECT 1 FROM products WHERE sku = $1 AND id <> $2)`
		err = r.db.QueryRow(ctx, query, sku, *excludeID).Scan(&exists)
	} else {
		query := `SELECT EXISTS (SELECT 1 FROM products WHERE sku = $1)`
		err = r.db.QueryRow(ctx, query, sku).Scan(&exists)
	}
	if err != nil {
		return false, fmt.Errorf("check sku: %w", err)
	}
	return exists, nil
}

// likeEscaper makes LIKE wildcards in user input match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// buildFilter renders the WHERE clause shared by List and Count.
func buildFilter(filter *models.ProductListFilter) (string, []any) {
	conditions := []string{"TRUE"}
	var args []any

	if filter.Title != "" {
		args = append(args, "%"+likeEscaper.Replace(filter.Title)+"%")
		conditions = append(conditions, fmt.Sprintf(`p.title ILIKE $%d ESCAPE '\'`, len(args)))
	}

	if filter.Date != nil {
		y, m, d := filter.Date.UTC().Date()
		day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		args = append(args, day, day.AddDate(0, 0, 1))
		conditions = append(conditions, fmt.Sprintf("p.created_at >= $%d AND p.created_at < $%d", len(args)-1, len(args)))
	}

	if filter.ProductIDs != nil {
		args = append(args, filter.ProductIDs)
		conditions = append(conditions, fmt.Sprintf("p.id = ANY($%d)", len(args)))
	}

	return strings.Join(conditions, " AND "), args
}

func (r *productRepo) List(ctx context.Context, filter *models.ProductListFilter) ([]*models.Product, error) {
	where, args := buildFilter(filter)
	args = append(args, filter.Limit, filter.Offset)
	query := fmt.Sprintf(`
		SELECT p.id, p.title, p.sku, p.description, p.created_at, p.updated_at
		FROM products p
		WHERE %s
		ORDER BY p.created_at DESC, p.id
		LIMIT $%d OFFSET $%d
	`, where, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		product := &models.Product{}
		if err := rows.Scan(&product.ID, &product.Title, &product.SKU, &product.Description, &product.CreatedAt, &product.UpdatedAt); err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	return products, rows.Err()
}

func (r *productRepo) Count(ctx context.Context, filter *models.ProductListFilter) (int, error) {
	where, args := buildFilter(filter)
	query := fmt.Sprintf(`SELECT COUNT(*) FROM products p WHERE %s`, where)

	var count int
	if err := r.db.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return count, nil
}
