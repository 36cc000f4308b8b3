package services

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"catalog/internal/common"
	"catalog/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	maxFieldLength = 255
	// prices are stored as NUMERIC(12,2)
	priceScale = 2
)

var maxPrice = decimal.New(1, 12-priceScale)

// validatePayload checks everything that can be checked without the database. Slot resolution
// happens later, against the assignments of the transaction.
func validatePayload(p *models.ProductPayload) error {
	fields := map[string]string{}

	p.Title = strings.TrimSpace(p.Title)
	p.SKU = strings.TrimSpace(p.SKU)
	if err := common.ValidateRequiredString(p.Title, "title", maxFieldLength); err != nil {
		fields["title"] = err.Error()
	}
	if err := common.ValidateRequiredString(p.SKU, "sku", maxFieldLength); err != nil {
		fields["sku"] = err.Error()
	}

	for i, img := range p.Images {
		if strings.TrimSpace(img) == "" {
			fields[fmt.Sprintf("product_image[%d]", i)] = "image reference is empty"
		}
	}

	for i, sel := range p.Variants {
		if sel.Option == uuid.Nil {
			fields[fmt.Sprintf("product_variant[%d].option", i)] = "option is required"
		}
		for j, tag := range sel.Tags {
			if tag == "" {
				fields[fmt.Sprintf("product_variant[%d].tags[%d]", i, j)] = "tag is empty"
			} else if strings.Contains(tag, models.VariantTitleSeparator) {
				fields[fmt.Sprintf("product_variant[%d].tags[%d]", i, j)] = "tag cannot contain " + models.VariantTitleSeparator
			} else if utf8.RuneCountInString(tag) > maxFieldLength {
				fields[fmt.Sprintf("product_variant[%d].tags[%d]", i, j)] = fmt.Sprintf("tag cannot exceed %d characters", maxFieldLength)
			}
		}
	}

	for i, row := range p.VariantPrices {
		key := fmt.Sprintf("product_variant_prices[%d]", i)
		segments, err := models.SplitVariantTitle(row.Title)
		if err != nil {
			fields[key+".title"] = err.Error()
		} else if len(row.Options) > 0 && len(row.Options) != len(segments) {
			fields[key+".options"] = fmt.Sprintf("expected %d options, got %d", len(segments), len(row.Options))
		}
		if row.Price != nil {
			switch {
			case row.Price.IsNegative():
				fields[key+".price"] = "price cannot be negative"
			case !row.Price.Equal(row.Price.Truncate(priceScale)):
				fields[key+".price"] = fmt.Sprintf("price cannot have more than %d decimal places", priceScale)
			case row.Price.GreaterThanOrEqual(maxPrice):
				fields[key+".price"] = "price must be less than " + maxPrice.String()
			}
		}
		if row.Stock != nil {
			if *row.Stock < 0 {
				fields[key+".stock"] = "stock cannot be negative"
			} else if *row.Stock > math.MaxInt32 {
				fields[key+".stock"] = fmt.Sprintf("stock cannot exceed %d", math.MaxInt32)
			}
		}
	}

	if len(fields) > 0 {
		return common.InvalidProductData("invalid product data", fields)
	}
	return nil
}
