package repositories

import (
	"context"
	"errors"
	"fmt"
	"log"

	"catalog/internal/common"
)

// Repositories bundles the catalog repositories bound to one Database handle.
type Repositories struct {
	Variants        VariantRepository
	Products        ProductRepository
	Images          ProductImageRepository
	ProductVariants ProductVariantRepository
	VariantPrices   ProductVariantPriceRepository
}

func NewRepositories(db Database) *Repositories {
	return &Repositories{
		Variants:        NewVariantRepo(db),
		Products:        NewProductRepo(db),
		Images:          NewProductImageRepo(db),
		ProductVariants: NewProductVariantRepo(db),
		VariantPrices:   NewProductVariantPriceRepo(db),
	}
}

// Transactor runs a unit of work: fn sees repositories bound to a single transaction which
// commits when fn returns nil and rolls back otherwise.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(repos *Repositories) error) error
}

type pgxTransactor struct {
	db TxStarter
}

func NewTransactor(db TxStarter) Transactor {
	return &pgxTransactor{db: db}
}

func (t *pgxTransactor) WithinTransaction(ctx context.Context, fn func(repos *Repositories) error) (err error) {
	tx, err := t.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	committing := false
	defer func() {
		if err == nil || committing {
			return
		}
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, context.Canceled) {
			log.Printf("WARN: rollback failed: %v", rbErr)
		}
	}()

	if err = fn(NewRepositories(tx)); err != nil {
		return err
	}

	committing = true
	if err = tx.Commit(ctx); err != nil {
		// The slot tuple constraint is deferred, so a clash only surfaces here.
		if isUniqueViolation(err, priceSlotsConstraint) {
			return common.InvalidProductData("duplicate variant combination", map[string]string{"product_variant_prices": "two price rows share a variant combination"})
		}
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
