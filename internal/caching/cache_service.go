package caching

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"catalog/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "catalog:"

type CacheService interface {
	// Product detail caching
	GetProductDetail(ctx context.Context, productID uuid.UUID) (*models.ProductDetail, error)
	SetProductDetail(ctx context.Context, detail *models.ProductDetail, ttl time.Duration) error
	DeleteProductDetail(ctx context.Context, productID uuid.UUID) error

	// Option value facets for the listing filter
	GetOptionFacets(ctx context.Context) ([]string, error)
	SetOptionFacets(ctx context.Context, facets []string, ttl time.Duration) error

	Ping(ctx context.Context) error
}

type redisCacheService struct {
	client *redis.Client
}

func NewRedisCacheService(addr, password string, db int) CacheService {
	parsedAddr := addr
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		parsedAddr = strings.TrimPrefix(strings.TrimPrefix(addr, "redis://"), "rediss://")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     parsedAddr,
		Password: password,
		DB:       db,
	})

	if pingErr := client.Ping(context.Background()).Err(); pingErr != nil {
		log.Printf("WARN: Redis ping failed on initialization: %v (address: %s)", pingErr, parsedAddr)
	} else {
		log.Printf("DEBUG: Redis connection established successfully")
	}

	return &redisCacheService{client: client}
}

func productDetailKey(productID uuid.UUID) string {
	return fmt.Sprintf("%sproduct:%s", keyPrefix, productID.String())
}

func optionFacetsKey() string {
	return keyPrefix + "facets:options"
}

func (r *redisCacheService) GetProductDetail(ctx context.Context, productID uuid.UUID) (*models.ProductDetail, error) {
	data, err := r.client.Get(ctx, productDetailKey(productID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil // cache miss
		}
		return nil, err
	}

	var detail models.ProductDetail
	if err := json.Unmarshal(data, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

func (r *redisCacheService) SetProductDetail(ctx context.Context, detail *models.ProductDetail, ttl time.Duration) error {
	data, err := json.Marshal(detail)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, productDetailKey(detail.ID), data, ttl).Err()
}

func (r *redisCacheService) DeleteProductDetail(ctx context.Context, productID uuid.UUID) error {
	return r.client.Del(ctx, productDetailKey(productID)).Err()
}

func (r *redisCacheService) GetOptionFacets(ctx context.Context) ([]string, error) {
	data, err := r.client.Get(ctx, optionFacetsKey()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil // cache miss
		}
		return nil, err
	}

	var facets []string
	if err := json.Unmarshal(data, &facets); err != nil {
		return nil, err
	}
	return facets, nil
}

func (r *redisCacheService) SetOptionFacets(ctx context.Context, facets []string, ttl time.Duration) error {
	if facets == nil {
		facets = []string{}
	}
	data, err := json.Marshal(facets)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, optionFacetsKey(), data, ttl).Err()
}

func (r *redisCacheService) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
