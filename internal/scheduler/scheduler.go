package scheduler

import (
	"context"
	"time"

	"github.com/ikkim/kicks-storefront/pkg/logger"
	"github.com/robfig/cron/v3"
)

// CatalogWarmer preloads the catalog cache.
type CatalogWarmer interface {
	WarmCache(ctx context.Context) error
}

// CartEvictor drops idle cart sessions from memory.
type CartEvictor interface {
	EvictIdle(maxIdle time.Duration) int
}

type Options struct {
	// WarmSpec is the cron spec for catalog warm-up, empty disables it
	WarmSpec    string
	WarmTimeout time.Duration
	// EvictSpec is the cron spec for idle cart eviction, empty disables it
	EvictSpec string
	MaxIdle   time.Duration
}

// Scheduler runs the periodic catalog warm-up and idle cart eviction
type Scheduler struct {
	cron    *cron.Cron
	catalog CatalogWarmer
	carts   CartEvictor
	opts    Options
}

func NewScheduler(catalog CatalogWarmer, carts CartEvictor, opts Options) *Scheduler {
	if opts.WarmTimeout <= 0 {
		opts.WarmTimeout = 30 * time.Second
	}
	if opts.MaxIdle <= 0 {
		opts.MaxIdle = 30 * time.Minute
	}
	return &Scheduler{
		cron:    cron.New(),
		catalog: catalog,
		carts:   carts,
		opts:    opts,
	}
}

// Start registers the jobs and starts the cron runner.
func (s *Scheduler) Start() error {
	if s.opts.WarmSpec != "" && s.catalog != nil {
		if _, err := s.cron.AddFunc(s.opts.WarmSpec, s.WarmCatalog); err != nil {
			logger.Error("Failed to add cron job for catalog warm-up", err, map[string]interface{}{
				"spec": s.opts.WarmSpec,
			})
			return err
		}
	}

	if s.opts.EvictSpec != "" && s.carts != nil {
		if _, err := s.cron.AddFunc(s.opts.EvictSpec, func() { s.EvictIdleCarts() }); err != nil {
			logger.Error("Failed to add cron job for cart eviction", err, map[string]interface{}{
				"spec": s.opts.EvictSpec,
			})
			return err
		}
	}

	s.cron.Start()
	logger.Info("Scheduler started", map[string]interface{}{
		"jobs":       len(s.cron.Entries()),
		"warm_spec":  s.opts.WarmSpec,
		"evict_spec": s.opts.EvictSpec,
	})
	return nil
}

// WarmCatalog runs one catalog warm-up.
func (s *Scheduler) WarmCatalog() {
	ctx, cancel := context.WithTimeout(context.Background(), s.opts.WarmTimeout)
	defer cancel()

	if err := s.catalog.WarmCache(ctx); err != nil {
		logger.Error("Failed to warm catalog cache", err)
		return
	}
	logger.Debug("Catalog cache warmed", nil)
}

// EvictIdleCarts runs one eviction pass and returns how many sessions were dropped.
func (s *Scheduler) EvictIdleCarts() int {
	n := s.carts.EvictIdle(s.opts.MaxIdle)
	if n > 0 {
		logger.Info("Idle cart sessions evicted", map[string]interface{}{
			"evicted":  n,
			"max_idle": s.opts.MaxIdle.String(),
		})
	}
	return n
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	logger.Info("Stopping scheduler...", nil)
	<-s.cron.Stop().Done()
	logger.Info("Scheduler stopped", nil)
}
