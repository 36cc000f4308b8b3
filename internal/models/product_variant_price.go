package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MaxVariantSlots is the number of assignment slots on a price row.
const MaxVariantSlots = 3

// VariantTitleSeparator joins slot titles into a composite price row title ("Red/Large").
const VariantTitleSeparator = "/"

var (
	ErrEmptyVariantTitle   = errors.New("variant title is empty")
	ErrTooManyVariantSlots = fmt.Errorf("variant title has more than %d segments", MaxVariantSlots)
	ErrEmptyVariantSegment = errors.New("variant title has an empty segment")
)

// ProductVariantPrice is a priced, stocked combination of up to three assignments.
// Slot order is the order of the composite title, not sorted.
type ProductVariantPrice struct {
	ID                  uuid.UUID       `json:"id" db:"id"`
	ProductID           uuid.UUID       `json:"product_id" db:"product_id"`
	ProductVariantOne   *uuid.UUID      `json:"product_variant_one" db:"product_variant_one"`
	ProductVariantTwo   *uuid.UUID      `json:"product_variant_two" db:"product_variant_two"`
	ProductVariantThree *uuid.UUID      `json:"product_variant_three" db:"product_variant_three"`
	Price               decimal.Decimal `json:"price" db:"price"`
	Stock               int             `json:"stock" db:"stock"`
	CreatedAt           time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at" db:"updated_at"`
}

// SlotKey is the ordered slot tuple of a price row; uuid.Nil marks an empty slot.
type SlotKey [MaxVariantSlots]uuid.UUID

// Slots returns the slot references in positional order.
func (p *ProductVariantPrice) Slots() [MaxVariantSlots]*uuid.UUID {
	return [MaxVariantSlots]*uuid.UUID{p.ProductVariantOne, p.ProductVariantTwo, p.ProductVariantThree}
}

// SetSlots assigns the slot references from ids; missing positions are cleared.
func (p *ProductVariantPrice) SetSlots(ids []uuid.UUID) {
	slots := [MaxVariantSlots]*uuid.UUID{}
	for i := 0; i < len(ids) && i < MaxVariantSlots; i++ {
		id := ids[i]
		slots[i] = &id
	}
	p.ProductVariantOne, p.ProductVariantTwo, p.ProductVariantThree = slots[0], slots[1], slots[2]
}

func (p *ProductVariantPrice) SlotKey() SlotKey {
	var key SlotKey
	for i, slot := range p.Slots() {
		if slot != nil {
			key[i] = *slot
		}
	}
	return key
}

// SplitVariantTitle splits a composite title into its 1-3 positional segments.
func SplitVariantTitle(title string) ([]string, error) {
	if title == "" {
		return nil, ErrEmptyVariantTitle
	}
	segments := strings.Split(title, VariantTitleSeparator)
	if len(segments) > MaxVariantSlots {
		return nil, ErrTooManyVariantSlots
	}
	for _, s := range segments {
		if s == "" {
			return nil, ErrEmptyVariantSegment
		}
	}
	return segments, nil
}

// JoinVariantTitle rebuilds a composite title from slot titles, skipping empty slots.
func JoinVariantTitle(slotTitles ...string) string {
	parts := make([]string, 0, len(slotTitles))
	for _, t := range slotTitles {
		if t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, VariantTitleSeparator)
}

// StockLevel is a price row's stock together with the titles needed to report it.
type StockLevel struct {
	PriceRowID   uuid.UUID `json:"price_row_id"`
	ProductID    uuid.UUID `json:"product_id"`
	ProductTitle string    `json:"product_title"`
	VariantTitle string    `json:"variant_title"`
	Stock        int       `json:"stock"`
}
