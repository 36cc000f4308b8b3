package jobs

import (
	"context"
	"log"

	"catalog/internal/models"
	"catalog/internal/repositories"
)

const defaultLowStockThreshold = 5

type StockAlertService struct {
	priceRepo repositories.ProductVariantPriceRepository
}

func NewStockAlertService(priceRepo repositories.ProductVariantPriceRepository) *StockAlertService {
	return &StockAlertService{priceRepo: priceRepo}
}

// CheckLowStock returns the price rows whose stock is at or below threshold.
func (a *StockAlertService) CheckLowStock(ctx context.Context, threshold int) ([]*models.StockLevel, error) {
	if threshold < 0 {
		threshold = defaultLowStockThreshold
	}

	levels, err := a.priceRepo.FindLowStock(ctx, threshold)
	if err != nil {
		log.Printf("Failed to scan low stock: %v", err)
		return nil, err
	}
	return levels, nil
}

func (a *StockAlertService) LogLowStockAlerts(levels []*models.StockLevel, threshold int) {
	if len(levels) == 0 {
		log.Println("No low stock alerts to log")
		return
	}

	log.Printf("WARN: %d price rows at or below stock threshold %d:", len(levels), threshold)
	for _, level := range levels {
		title := level.VariantTitle
		if title == "" {
			title = "(no variant)"
		}
		log.Printf("- Product '%s' variant '%s' has %d units", level.ProductTitle, title, level.Stock)
	}
}
