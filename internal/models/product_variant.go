package models

import (
	"time"

	"github.com/google/uuid"
)

// ProductVariant records that a product offers one option value under one variant dimension.
// (ProductID, VariantID, VariantTitle) identifies it.
type ProductVariant struct {
	ID           uuid.UUID `json:"id" db:"id"`
	VariantTitle string    `json:"variant_title" db:"variant_title"`
	VariantID    uuid.UUID `json:"variant_id" db:"variant_id"`
	ProductID    uuid.UUID `json:"product_id" db:"product_id"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
