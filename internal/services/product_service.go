package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"catalog/internal/caching"
	"catalog/internal/common"
	"catalog/internal/models"
	"catalog/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ProductService interface {
	Create(ctx context.Context, payload *models.ProductPayload) (*models.Product, error)
	Update(ctx context.Context, id uuid.UUID, payload *models.ProductPayload) (*models.Product, error)
	GetDetail(ctx context.Context, id uuid.UUID) (*models.ProductDetail, error)
	List(ctx context.Context, filter *models.ProductListFilter) (*models.ProductListPage, error)
	UploadProductImage(ctx context.Context, productID uuid.UUID, filename string, reader io.Reader, size int64, contentType string) (*models.ProductImage, error)

	FindProductIDsByPriceRange(ctx context.Context, min, max decimal.Decimal) ([]uuid.UUID, error)
	FindProductIDsByOptionText(ctx context.Context, text string) ([]uuid.UUID, error)

	// OptionFacets returns the distinct option values, cached.
	OptionFacets(ctx context.Context) ([]string, error)
	// RefreshOptionFacets reloads the option values from the database into the cache.
	RefreshOptionFacets(ctx context.Context) ([]string, error)
}

type productService struct {
	transactor   repositories.Transactor
	repos        *repositories.Repositories
	minioService MinioService
	cacheService caching.CacheService
	cacheTTL     time.Duration
}

func NewProductService(transactor repositories.Transactor, repos *repositories.Repositories, minioService MinioService, cacheService caching.CacheService, cacheTTL time.Duration) ProductService {
	if cacheTTL <= 0 {
		cacheTTL = 15 * time.Minute
	}
	return &productService{
		transactor:   transactor,
		repos:        repos,
		minioService: minioService,
		cacheService: cacheService,
		cacheTTL:     cacheTTL,
	}
}

func (s *productService) Create(ctx context.Context, payload *models.ProductPayload) (*models.Product, error) {
	if err := validatePayload(payload); err != nil {
		return nil, err
	}

	var product *models.Product
	err := s.transactor.WithinTransaction(ctx, func(repos *repositories.Repositories) error {
		var err error
		product, err = (&reconciler{repos: repos}).create(ctx, payload)
		return err
	})
	if err != nil {
		return nil, err
	}

	log.Printf("INFO: created product %s (sku %s) with %d price rows", product.ID, product.SKU, len(payload.VariantPrices))
	return product, nil
}

func (s *productService) Update(ctx context.Context, id uuid.UUID, payload *models.ProductPayload) (*models.Product, error) {
	if err := validatePayload(payload); err != nil {
		return nil, err
	}

	var product *models.Product
	err := s.transactor.WithinTransaction(ctx, func(repos *repositories.Repositories) error {
		var err error
		product, err = (&reconciler{repos: repos}).update(ctx, id, payload)
		return err
	})
	if err != nil {
		return nil, err
	}

	// Invalidate cache for this product
	if cacheErr := s.cacheService.DeleteProductDetail(ctx, id); cacheErr != nil {
		log.Printf("WARN: failed to invalidate cache for product %s: %v", id, cacheErr)
	}
	return product, nil
}

func (s *productService) GetDetail(ctx context.Context, id uuid.UUID) (*models.ProductDetail, error) {
	if cached, err := s.cacheService.GetProductDetail(ctx, id); cached != nil {
		return cached, nil
	} else if err != nil {
		log.Printf("WARN: cache error for product %s: %v", id, err)
	}

	detail, err := s.loadDetail(ctx, id)
	if err != nil {
		return nil, err
	}

	if cacheErr := s.cacheService.SetProductDetail(ctx, detail, s.cacheTTL); cacheErr != nil {
		log.Printf("WARN: failed to cache product %s: %v", id, cacheErr)
	}
	return detail, nil
}

func (s *productService) loadDetail(ctx context.Context, id uuid.UUID) (*models.ProductDetail, error) {
	product, err := s.repos.Products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	images, err := s.repos.Images.GetByProductID(ctx, id)
	if err != nil {
		return nil, err
	}
	assignments, err := s.repos.ProductVariants.ListByProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	prices, err := s.repos.VariantPrices.ListByProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	variants, err := s.repos.Variants.List(ctx)
	if err != nil {
		return nil, err
	}

	detail := &models.ProductDetail{
		ID:            product.ID,
		Title:         product.Title,
		SKU:           product.SKU,
		Description:   product.Description,
		Images:        make([]string, 0, len(images)),
		VariantPrices: make([]models.VariantPriceView, 0, len(prices)),
		Variants:      make([]models.VariantSelection, 0, len(variants)),
	}
	for _, img := range images {
		detail.Images = append(detail.Images, img.FilePath)
	}

	titles := make(map[uuid.UUID]string, len(assignments))
	tags := make(map[uuid.UUID][]string)
	for _, pv := range assignments {
		titles[pv.ID] = pv.VariantTitle
		tags[pv.VariantID] = append(tags[pv.VariantID], pv.VariantTitle)
	}

	for _, p := range prices {
		var slotTitles []string
		for _, slot := range p.Slots() {
			if slot != nil {
				slotTitles = append(slotTitles, titles[*slot])
			}
		}
		detail.VariantPrices = append(detail.VariantPrices, models.VariantPriceView{
			ID:    p.ID,
			Title: models.JoinVariantTitle(slotTitles...),
			Price: p.Price,
			Stock: p.Stock,
		})
	}

	for _, v := range variants {
		selected := tags[v.ID]
		if selected == nil {
			selected = []string{}
		}
		detail.Variants = append(detail.Variants, models.VariantSelection{Option: v.ID, Tags: selected})
	}
	return detail, nil
}

func (s *productService) List(ctx context.Context, filter *models.ProductListFilter) (*models.ProductListPage, error) {
	filter.Limit, filter.Offset = common.ValidatePaginationParams(filter.Limit, filter.Offset)
	filter.ProductIDs = nil

	if (filter.PriceFrom == nil) != (filter.PriceTo == nil) {
		return nil, common.InvalidProductData("price_from and price_to must be given together",
			map[string]string{"price_from": "required with price_to", "price_to": "required with price_from"})
	}
	if filter.PriceFrom != nil {
		ids, err := s.FindProductIDsByPriceRange(ctx, *filter.PriceFrom, *filter.PriceTo)
		if err != nil {
			return nil, err
		}
		filter.ProductIDs = intersectIDs(filter.ProductIDs, ids)
	}
	if filter.Variant != "" {
		ids, err := s.FindProductIDsByOptionText(ctx, filter.Variant)
		if err != nil {
			return nil, err
		}
		filter.ProductIDs = intersectIDs(filter.ProductIDs, ids)
	}

	total, err := s.repos.Products.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	products, err := s.repos.Products.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
	}
	summaries, err := s.repos.VariantPrices.ListSummaries(ctx, ids)
	if err != nil {
		return nil, err
	}

	page := &models.ProductListPage{
		Products: make([]models.ProductListItem, 0, len(products)),
		Total:    total,
		Limit:    filter.Limit,
		Offset:   filter.Offset,
		Summary:  common.PaginationSummary(filter.Offset, len(products), total),
	}
	for _, p := range products {
		rows := summaries[p.ID]
		if rows == nil {
			rows = []models.PriceRowSummary{}
		}
		page.Products = append(page.Products, models.ProductListItem{
			ID:          p.ID,
			Title:       p.Title,
			Description: p.Description,
			CreatedAt:   p.CreatedAt,
			Variants:    rows,
		})
	}
	return page, nil
}

// intersectIDs narrows current by next; a nil current means no restriction yet.
func intersectIDs(current, next []uuid.UUID) []uuid.UUID {
	if current == nil {
		return next
	}
	keep := make(map[uuid.UUID]struct{}, len(next))
	for _, id := range next {
		keep[id] = struct{}{}
	}
	out := make([]uuid.UUID, 0, len(current))
	for _, id := range current {
		if _, ok := keep[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

func (s *productService) FindProductIDsByPriceRange(ctx context.Context, min, max decimal.Decimal) ([]uuid.UUID, error) {
	if min.GreaterThan(max) {
		return nil, common.InvalidProductData("price_from cannot exceed price_to",
			map[string]string{"price_from": min.String(), "price_to": max.String()})
	}
	return s.repos.VariantPrices.FindProductIDsByPriceRange(ctx, min, max)
}

func (s *productService) FindProductIDsByOptionText(ctx context.Context, text string) ([]uuid.UUID, error) {
	return s.repos.VariantPrices.FindProductIDsByOptionText(ctx, text)
}

func (s *productService) UploadProductImage(ctx context.Context, productID uuid.UUID, filename string, reader io.Reader, size int64, contentType string) (*models.ProductImage, error) {
	if _, err := s.repos.Products.GetByID(ctx, productID); err != nil {
		return nil, err
	}

	objectName := imageObjectName(productID, filename)
	if err := s.minioService.UploadImage(ctx, objectName, reader, size, contentType); err != nil {
		return nil, fmt.Errorf("upload image: %w", err)
	}

	image := &models.ProductImage{ID: uuid.New(), ProductID: productID, FilePath: objectName}
	if err := s.repos.Images.Create(ctx, image); err != nil {
		if delErr := s.minioService.DeleteImage(ctx, objectName); delErr != nil {
			log.Printf("WARN: failed to remove orphaned image %s: %v", objectName, delErr)
		}
		return nil, err
	}

	if cacheErr := s.cacheService.DeleteProductDetail(ctx, productID); cacheErr != nil {
		log.Printf("WARN: failed to invalidate cache for product %s: %v", productID, cacheErr)
	}
	return image, nil
}

func (s *productService) OptionFacets(ctx context.Context) ([]string, error) {
	if cached, err := s.cacheService.GetOptionFacets(ctx); cached != nil {
		return cached, nil
	} else if err != nil {
		log.Printf("WARN: cache error for option facets: %v", err)
	}
	return s.RefreshOptionFacets(ctx)
}

func (s *productService) RefreshOptionFacets(ctx context.Context) ([]string, error) {
	facets, err := s.repos.ProductVariants.DistinctTitles(ctx)
	if err != nil {
		return nil, err
	}
	if facets == nil {
		facets = []string{}
	}
	if cacheErr := s.cacheService.SetOptionFacets(ctx, facets, s.cacheTTL); cacheErr != nil {
		log.Printf("WARN: failed to cache option facets: %v", cacheErr)
	}
	return facets, nil
}
