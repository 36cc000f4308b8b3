package background

import (
	"context"
	"log"
	"sync"
	"time"

	"catalog/internal/jobs"

	"github.com/go-co-op/gocron/v2"
)

// FacetRefresher reloads the cached option value facets.
type FacetRefresher interface {
	RefreshOptionFacets(ctx context.Context) ([]string, error)
}

// Settings holds the job intervals.
type Settings struct {
	FacetRefreshInterval time.Duration
	StockAlertInterval   time.Duration
	LowStockThreshold    int
}

// JobScheduler manages the catalog background jobs
type JobScheduler struct {
	scheduler  gocron.Scheduler
	facets     FacetRefresher
	stockAlert *jobs.StockAlertService
	settings   Settings
	registered map[string]gocron.Job
	mu         sync.RWMutex
}

func NewJobScheduler(facets FacetRefresher, stockAlert *jobs.StockAlertService, settings Settings) (*JobScheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	js := &JobScheduler{
		scheduler:  scheduler,
		facets:     facets,
		stockAlert: stockAlert,
		settings:   settings,
		registered: make(map[string]gocron.Job),
	}
	js.registerJobs()

	return js, nil
}

// Start starts the job scheduler
func (js *JobScheduler) Start() {
	log.Printf("Starting background job scheduler")
	js.scheduler.Start()
}

// Stop stops the job scheduler
func (js *JobScheduler) Stop() error {
	log.Printf("Stopping background job scheduler")
	return js.scheduler.Shutdown()
}

func (js *JobScheduler) registerJobs() {
	js.register("option-facet-refresh", js.settings.FacetRefreshInterval, js.refreshOptionFacets)
	js.register("low-stock-scan", js.settings.StockAlertInterval, js.scanLowStock)
	log.Printf("Registered %d background jobs", len(js.registered))
}

func (js *JobScheduler) register(name string, every time.Duration, task func(ctx context.Context) error) {
	job, err := js.scheduler.NewJob(
		gocron.DurationJob(every),
		gocron.NewTask(task, context.Background()),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		log.Printf("Failed to create %s job: %v", name, err)
		return
	}

	js.mu.Lock()
	js.registered[name] = job
	js.mu.Unlock()
}

// JobNames lists the registered jobs.
func (js *JobScheduler) JobNames() []string {
	js.mu.RLock()
	defer js.mu.RUnlock()

	names := make([]string, 0, len(js.registered))
	for name := range js.registered {
		names = append(names, name)
	}
	return names
}

func (js *JobScheduler) refreshOptionFacets(ctx context.Context) error {
	facets, err := js.facets.RefreshOptionFacets(ctx)
	if err != nil {
		log.Printf("Failed to refresh option facets: %v", err)
		return err
	}
	log.Printf("Refreshed %d option facets", len(facets))
	return nil
}

func (js *JobScheduler) scanLowStock(ctx context.Context) error {
	levels, err := js.stockAlert.CheckLowStock(ctx, js.settings.LowStockThreshold)
	if err != nil {
		return err
	}
	js.stockAlert.LogLowStockAlerts(levels, js.settings.LowStockThreshold)
	return nil
}
