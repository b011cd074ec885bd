package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/kabeer11000/cache/observability"
	"github.com/kabeer11000/cache/worker"
)

// WarmupProvider pre-populates the cache with initial data.
// Implementations should be idempotent and safe to call multiple times.
type WarmupProvider interface {
	// Name returns a human-readable name for logging purposes
	Name() string

	// Warmup writes the provider's data into c.
	Warmup(ctx context.Context, c *Cache) error
}

// WarmupConfig configures the warming behavior.
type WarmupConfig struct {
	// Timeout is the maximum duration to wait for all providers
	Timeout time.Duration

	// ContinueOnError keeps warming after a provider fails
	// (sequential mode only; parallel providers are independent)
	ContinueOnError bool

	// Parallel runs providers concurrently on a worker pool
	Parallel bool

	// Workers bounds parallel warming; 0 means one worker per provider
	Workers int
}

// DefaultWarmupConfig returns sensible defaults for cache warming.
func DefaultWarmupConfig() WarmupConfig {
	return WarmupConfig{
		Timeout:         30 * time.Second,
		ContinueOnError: true,
		Parallel:        true,
	}
}

// WarmupResult is the outcome of warming a single provider.
type WarmupResult struct {
	Provider string
	Duration time.Duration
	Err      error
}

// WarmupResults aggregates a full warming run.
type WarmupResults struct {
	Results   []WarmupResult
	TotalTime time.Duration
	Errors    int
}

// HasErrors returns true if any provider failed during warmup.
func (wr *WarmupResults) HasErrors() bool {
	return wr.Errors > 0
}

// Warmer runs registered providers against a Cache.
type Warmer struct {
	cache     *Cache
	providers []WarmupProvider
	logger    *observability.Logger
	config    WarmupConfig
}

// NewWarmer creates a warmer for c. A nil logger is replaced with a
// no-op one.
func NewWarmer(c *Cache, logger *observability.Logger, config WarmupConfig) *Warmer {
	if logger == nil {
		logger = observability.Nop()
	}
	return &Warmer{
		cache:     c,
		providers: make([]WarmupProvider, 0),
		logger:    logger,
		config:    config,
	}
}

// RegisterProvider adds a warmup provider to the warmer.
func (w *Warmer) RegisterProvider(provider WarmupProvider) {
	w.providers = append(w.providers, provider)
}

// Warmup executes all registered providers and returns aggregate
// results including timing and errors.
func (w *Warmer) Warmup(ctx context.Context) *WarmupResults {
	start := time.Now()
	results := &WarmupResults{
		Results: make([]WarmupResult, 0, len(w.providers)),
	}

	if len(w.providers) == 0 {
		results.TotalTime = time.Since(start)
		return results
	}

	warmupCtx := ctx
	if w.config.Timeout > 0 {
		var cancel context.CancelFunc
		warmupCtx, cancel = context.WithTimeout(ctx, w.config.Timeout)
		defer cancel()
	}

	if w.config.Parallel {
		results.Results = w.warmupParallel(warmupCtx)
	} else {
		results.Results = w.warmupSequential(warmupCtx)
	}

	for _, r := range results.Results {
		if r.Err != nil {
			results.Errors++
		}
	}
	results.TotalTime = time.Since(start)

	if results.Errors > 0 {
		w.logger.LogWarn(ctx, fmt.Sprintf("cache warmup completed with %d/%d errors in %v",
			results.Errors, len(w.providers), results.TotalTime))
	} else {
		w.logger.LogInfo(ctx, fmt.Sprintf("cache warmup completed (%d providers) in %v",
			len(w.providers), results.TotalTime))
	}

	return results
}

// warmupParallel runs all providers on a bounded worker pool.
func (w *Warmer) warmupParallel(ctx context.Context) []WarmupResult {
	workers := w.config.Workers
	if workers <= 0 {
		workers = len(w.providers)
	}

	pool := worker.New(ctx, workers, len(w.providers))
	defer pool.Close()

	jobs := make([]worker.Job, 0, len(w.providers))
	for _, provider := range w.providers {
		p := provider
		jobs = append(jobs, worker.Job{
			ID: p.Name(),
			Run: func(ctx context.Context) error {
				return w.warm(ctx, p)
			},
		})
	}

	results := make([]WarmupResult, 0, len(jobs))
	for _, r := range pool.RunAll(jobs) {
		results = append(results, WarmupResult{
			Provider: r.JobID,
			Duration: r.Duration,
			Err:      r.Err,
		})
	}
	return results
}

// warmupSequential runs providers one at a time.
func (w *Warmer) warmupSequential(ctx context.Context) []WarmupResult {
	results := make([]WarmupResult, 0, len(w.providers))

	for _, provider := range w.providers {
		start := time.Now()
		err := w.warm(ctx, provider)
		results = append(results, WarmupResult{
			Provider: provider.Name(),
			Duration: time.Since(start),
			Err:      err,
		})

		if err != nil && !w.config.ContinueOnError {
			break
		}
	}

	return results
}

func (w *Warmer) warm(ctx context.Context, provider WarmupProvider) error {
	name := provider.Name()
	w.logger.LogDebug(ctx, fmt.Sprintf("warming cache: %s", name))

	err := provider.Warmup(ctx, w.cache)
	if err != nil {
		w.logger.LogWarn(ctx, fmt.Sprintf("cache warmup failed for %s: %v", name, err))
	}
	return err
}
