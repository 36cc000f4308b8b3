package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"catalog/internal/caching"
	"catalog/internal/config"
	"catalog/internal/handlers"
	"catalog/internal/jobs"
	"catalog/internal/jobs/background"
	"catalog/internal/middleware"
	"catalog/internal/repositories"
	"catalog/internal/services"
	"catalog/pkg/database"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Create database connection pool
	pool, err := database.NewPool(ctx, cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		log.Fatalf("Failed to apply schema: %v", err)
	}

	cacheService := caching.NewRedisCacheService(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)

	minioService, err := services.NewMinioService(cfg.Minio.Endpoint, cfg.Minio.AccessKey, cfg.Minio.SecretKey, cfg.Minio.UseSSL, cfg.Minio.Bucket)
	if err != nil {
		log.Fatalf("Failed to initialize MinIO client: %v", err)
	}
	if err := minioService.EnsureBucketExists(ctx); err != nil {
		log.Printf("WARNING: image bucket %s is not available: %v", cfg.Minio.Bucket, err)
	}

	// Initialize repositories and services
	repos := repositories.NewRepositories(pool)
	transactor := repositories.NewTransactor(pool)

	productService := services.NewProductService(transactor, repos, minioService, cacheService, cfg.Redis.CacheTTL())
	variantService := services.NewVariantService(repos.Variants)
	stockAlertService := jobs.NewStockAlertService(repos.VariantPrices)

	scheduler, err := background.NewJobScheduler(productService, stockAlertService, background.Settings{
		FacetRefreshInterval: cfg.Jobs.FacetRefreshInterval(),
		StockAlertInterval:   cfg.Jobs.StockAlertInterval(),
		LowStockThreshold:    cfg.Jobs.LowStockThreshold,
	})
	if err != nil {
		log.Fatalf("Failed to create job scheduler: %v", err)
	}
	scheduler.Start()

	productHandlers := handlers.NewProductHandlers(productService)
	variantHandlers := handlers.NewVariantHandlers(variantService)
	healthHandlers := handlers.NewHealthHandlers(pool, cacheService, minioService)

	e := echo.New()
	e.HideBanner = true
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.RemoveTrailingSlash())
	if cfg.Server.RateLimit > 0 {
		e.Use(echoMiddleware.RateLimiter(echoMiddleware.NewRateLimiterMemoryStore(rate.Limit(cfg.Server.RateLimit))))
	}

	versionMiddleware := middleware.NewVersionMiddleware()
	e.Use(versionMiddleware.APIVersionResolver())

	e.GET("/health", healthHandlers.HealthCheck)

	v1 := e.Group("/v1")
	v1.Use(versionMiddleware.VersionHeader("v1"))

	v1.GET("/variants", variantHandlers.ListVariants)
	v1.POST("/variants", variantHandlers.CreateVariant)
	v1.GET("/variants/:id", variantHandlers.GetVariant)

	v1.GET("/products", productHandlers.ListProducts)
	v1.POST("/products", productHandlers.CreateProduct)
	v1.GET("/products/facets", productHandlers.GetOptionFacets)
	v1.GET("/products/:id", productHandlers.GetProduct)
	v1.PUT("/products/:id", productHandlers.UpdateProduct)
	v1.POST("/products/:id/images", productHandlers.UploadProductImage)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("Catalog server v%s starting on port %d", version, cfg.Server.Port)
		if err := e.Start(fmt.Sprintf(":%d", cfg.Server.Port)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Printf("Shutting down")

		if err := scheduler.Stop(); err != nil {
			log.Printf("Failed to stop job scheduler: %v", err)
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Printf("Server error: %v", err)
	}
}
