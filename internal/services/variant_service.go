package services

import (
	"context"
	"strings"

	"catalog/internal/common"
	"catalog/internal/models"
	"catalog/internal/repositories"

	"github.com/google/uuid"
)

type VariantService interface {
	Create(ctx context.Context, variant *models.Variant) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Variant, error)
	ListActive(ctx context.Context) ([]*models.Variant, error)
}

type variantService struct {
	variantRepo repositories.VariantRepository
}

func NewVariantService(variantRepo repositories.VariantRepository) VariantService {
	return &variantService{variantRepo: variantRepo}
}

func (s *variantService) Create(ctx context.Context, variant *models.Variant) error {
	variant.Title = strings.TrimSpace(variant.Title)
	if err := common.ValidateRequiredString(variant.Title, "title", maxFieldLength); err != nil {
		return common.InvalidProductData(err.Error(), map[string]string{"title": err.Error()})
	}
	variant.ID = uuid.New()
	return s.variantRepo.Create(ctx, variant)
}

func (s *variantService) GetByID(ctx context.Context, id uuid.UUID) (*models.Variant, error) {
	return s.variantRepo.GetByID(ctx, id)
}

func (s *variantService) ListActive(ctx context.Context) ([]*models.Variant, error) {
	variants, err := s.variantRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	if variants == nil {
		variants = []*models.Variant{}
	}
	return variants, nil
}
