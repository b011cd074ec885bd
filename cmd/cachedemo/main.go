package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/kabeer11000/cache"
	"github.com/kabeer11000/cache/config"
	"github.com/kabeer11000/cache/observability"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load configuration
	log.Println("Loading configuration...")
	cfg := config.MustLoad(os.Getenv("CACHE_CONFIG"))

	// Setup observability (foundational - must be first)
	logger := observability.NewLogger(cfg.Observability.Logging.Level, cfg.Observability.Logging.Format)

	metrics, err := observability.NewMetrics("cachedemo", cfg.Observability.Metrics.Enabled)
	if err != nil {
		log.Fatalf("Failed to create metrics: %v", err)
	}

	// Build the engine from the loaded options plus collaborators the
	// file format cannot express.
	engineCfg := cfg.Cache
	engineCfg.Logger = logger
	engineCfg.Metrics = metrics
	engineCfg.SizeOf = jsonSize
	engineCfg.OnDispose = func(key string, value any, reason cache.Reason) {
		logger.Info("entry disposed", "key", key, "reason", reason)
	}

	c, err := cache.New(engineCfg)
	if err != nil {
		log.Fatalf("Failed to create cache: %v", err)
	}
	defer c.Close()

	c.On(cache.EventExpire, func(ev cache.Event) {
		logger.Info("entry expired", "key", ev.Key)
	})
	c.On(cache.EventEvict, func(ev cache.Event) {
		logger.Info("entry evicted", "key", ev.Key)
	})

	// Metrics endpoint
	if cfg.Observability.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		addr := fmt.Sprintf(":%d", cfg.Observability.Metrics.Port)
		go func() {
			logger.Info("metrics endpoint listening", "addr", addr)
			if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
				logger.LogError(ctx, "metrics server failed", err)
			}
		}()
	}

	// Exercise the engine
	c.Set("greeting", "hello")
	c.SetWithTTL("session:42", map[string]any{"user": "demo"}, 30*time.Second)

	if v, ok := c.Get("greeting"); ok {
		logger.Info("read back", "key", "greeting", "value", v)
	}

	price, err := c.GetOrLoad(ctx, "price:ETH-USDC", func(ctx context.Context) (any, error) {
		// Stand-in for a slow upstream call
		time.Sleep(50 * time.Millisecond)
		return 2543.17, nil
	})
	if err != nil {
		logger.LogError(ctx, "load failed", err)
	} else {
		logger.Info("loaded", "key", "price:ETH-USDC", "value", price)
	}

	stats := c.Stats()
	logger.Info("cache stats",
		"size", stats.Size,
		"expired", stats.Expired,
		"estimated", humanize.Bytes(uint64(stats.Bytes)),
	)

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down")
}

// jsonSize is a best-effort byte estimator: the length of the JSON
// encoding plus the key.
func jsonSize(key string, value any) int {
	data, err := json.Marshal(value)
	if err != nil {
		return len(key)
	}
	return len(key) + len(data)
}
