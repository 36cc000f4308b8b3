package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Product struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	SKU         string    `json:"sku" db:"sku"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// ProductListFilter holds the listing criteria. Every set field narrows the result (AND).
type ProductListFilter struct {
	Title     string           `json:"title,omitempty"`      // Case-insensitive substring of the title
	PriceFrom *decimal.Decimal `json:"price_from,omitempty"` // Applied only together with PriceTo
	PriceTo   *decimal.Decimal `json:"price_to,omitempty"`
	Variant   string           `json:"variant,omitempty"` // Option value referenced by any price row slot
	Date      *time.Time       `json:"date,omitempty"`    // UTC creation day
	Limit     int              `json:"limit,omitempty"`
	Offset    int              `json:"offset,omitempty"`

	// ProductIDs restricts the query to a precomputed id set; nil means unrestricted.
	ProductIDs []uuid.UUID `json:"-"`
}

// ProductDetail is the edit view of a single product.
type ProductDetail struct {
	ID            uuid.UUID          `json:"id"`
	Title         string             `json:"product_name"`
	SKU           string             `json:"product_sku"`
	Description   string             `json:"description"`
	Images        []string           `json:"product_image"`
	VariantPrices []VariantPriceView `json:"product_variant_prices"`
	Variants      []VariantSelection `json:"product_variant"`
}

// VariantPriceView is a price row rendered with its composite title.
type VariantPriceView struct {
	ID    uuid.UUID       `json:"id"`
	Title string          `json:"title"`
	Price decimal.Decimal `json:"price"`
	Stock int             `json:"stock"`
}

// ProductListItem is one row of the product listing.
type ProductListItem struct {
	ID          uuid.UUID         `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	CreatedAt   time.Time         `json:"created_at"`
	Variants    []PriceRowSummary `json:"product_variant"`
}

// PriceRowSummary spells out the slot titles of a price row; empty strings mark unused slots.
type PriceRowSummary struct {
	VariantOne   string          `json:"product_variant_one"`
	VariantTwo   string          `json:"product_variant_two"`
	VariantThree string          `json:"product_variant_three"`
	Price        decimal.Decimal `json:"price"`
	Stock        int             `json:"stock"`
}

type ProductListPage struct {
	Products []ProductListItem `json:"products"`
	Total    int               `json:"total"`
	Limit    int               `json:"limit"`
	Offset   int               `json:"offset"`
	Summary  string            `json:"pagination_details"`
}
