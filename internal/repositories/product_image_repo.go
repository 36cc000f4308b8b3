package repositories

import (
	"context"
	"fmt"

	"catalog/internal/common"
	"catalog/internal/models"

	"github.com/google/uuid"
)

type ProductImageRepository interface {
	Create(ctx context.Context, image *models.ProductImage) error
	GetByProductID(ctx context.Context, productID uuid.UUID) ([]*models.ProductImage, error)
}

type productImageRepo struct {
	db Database
}

func NewProductImageRepo(db Database) ProductImageRepository {
	return &productImageRepo{db: db}
}

func (r *productImageRepo) Create(ctx context.Context, image *models.ProductImage) error {
	query := `
		INSERT INTO product_images (id, product_id, file_path, created_at)
		SELECT $1, p.id, $3, NOW()
		FROM products p
		WHERE p.id = $2
		RETURNING created_at
	`
	if image.ID == uuid.Nil {
		image.ID = uuid.New()
	}
	rows, err := r.db.Query(ctx, query, image.ID, image.ProductID, image.FilePath)
	if err != nil {
		return fmt.Errorf("insert product image: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return fmt.Errorf("insert product image: %w", err)
		}
		return common.NotFound("product %s not found", image.ProductID)
	}
	if err := rows.Scan(&image.CreatedAt); err != nil {
		return err
	}
	return nil
}

func (r *productImageRepo) GetByProductID(ctx context.Context, productID uuid.UUID) ([]*models.ProductImage, error) {
	query := `
		SELECT id, product_id, file_path, created_at
		FROM product_images
		WHERE product_id = $1
		ORDER BY seq ASC
	`
	rows, err := r.db.Query(ctx, query, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var images []*models.ProductImage
	for rows.Next() {
		image := &models.ProductImage{}
		if err := rows.Scan(&image.ID, &image.ProductID, &image.FilePath, &image.CreatedAt); err != nil {
			return nil, err
		}
		images = append(images, image)
	}
	return images, rows.Err()
}
