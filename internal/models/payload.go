package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductPayload is the desired state submitted on create and update.
type ProductPayload struct {
	Title         string              `json:"title"`
	SKU           string              `json:"sku"`
	Description   string              `json:"description"`
	Images        []string            `json:"product_image"`
	Variants      []VariantSelection  `json:"product_variant"`
	VariantPrices []VariantPriceInput `json:"product_variant_prices"`
}

// VariantSelection lists the option values chosen under one variant dimension.
type VariantSelection struct {
	Option uuid.UUID `json:"option"`
	Tags   []string  `json:"tags"`
}

// VariantPriceInput is one desired price row. ID is set only when editing an existing row.
// Options, when present, names the variant dimension of each title segment.
type VariantPriceInput struct {
	ID      *uuid.UUID       `json:"id,omitempty"`
	Title   string           `json:"title"`
	Price   *decimal.Decimal `json:"price,omitempty"`
	Stock   *int             `json:"stock,omitempty"`
	Options []uuid.UUID      `json:"options,omitempty"`
}

// PriceOrZero returns the submitted price, or zero when absent.
func (in *VariantPriceInput) PriceOrZero() decimal.Decimal {
	if in.Price == nil {
		return decimal.Zero
	}
	return *in.Price
}

// StockOrZero returns the submitted stock, or zero when absent.
func (in *VariantPriceInput) StockOrZero() int {
	if in.Stock == nil {
		return 0
	}
	return *in.Stock
}
