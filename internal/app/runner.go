package app

import (
	"context"
	"fmt"
	"time"

	"github.com/classly-hq/classly-networking/internal/config"
	"github.com/classly-hq/classly-networking/internal/executor"
	"github.com/classly-hq/classly-networking/internal/logger"
	"github.com/classly-hq/classly-networking/internal/storage"
	"github.com/classly-hq/classly-networking/pkg/catalog"
	"github.com/classly-hq/classly-networking/pkg/network"
	"github.com/classly-hq/classly-networking/pkg/reporters"
	"github.com/oklog/ulid/v2"
)

// Runner is the request runner runtime. It executes the selected catalog
// entries once or on a fixed interval, journals each outcome and forwards it
// to the configured reporters.
type Runner struct {
	cfg      *config.Config
	entries  []catalog.Entry
	fanout   *reporters.Fanout
	executor *executor.Service
	interval time.Duration
	log      logger.Logger
	store    storage.Store
}

// NewRunner builds a runner from config files.
func NewRunner(ctx context.Context, cfg *config.Config, log logger.Logger) (*Runner, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = &logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	cat, err := catalog.Load(cfg.CatalogFile)
	if err != nil {
		return nil, fmt.Errorf("load request catalog: %w", err)
	}
	entries, err := cat.Select(cfg.Only)
	if err != nil {
		return nil, fmt.Errorf("select requests: %w", err)
	}
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.ID())
	}
	log.InfoObj("request catalog loaded", "catalog_meta", map[string]any{
		"count": len(ids),
		"ids":   ids,
	})

	fanout, err := buildFanout(ctx, cfg.ReportersFile, log)
	if err != nil {
		return nil, err
	}

	store, err := storage.NewStore(cfg.StorageType, cfg.BBoltPath, storage.Options{
		TTL:             cfg.StorageTTL,
		CleanupInterval: cfg.StorageCleanupInterval,
	})
	if err != nil {
		_ = fanout.Close()
		return nil, fmt.Errorf("init storage: %w", err)
	}
	log.InfoObj("storage initialized", "storage_config", map[string]any{
		"type":                     cfg.StorageType,
		"path":                     cfg.BBoltPath,
		"ttl_seconds":              int(cfg.StorageTTL.Seconds()),
		"cleanup_interval_seconds": int(cfg.StorageCleanupInterval.Seconds()),
	})

	var opts []network.Option
	if cfg.DebugHTTP {
		opts = append(opts, network.WithLogger(log))
	}
	manager := network.NewManager(nil, opts...)

	return &Runner{
		cfg:      cfg,
		entries:  entries,
		fanout:   fanout,
		executor: executor.NewService(manager, store, fanout, cfg.Concurrency, log),
		interval: cfg.RunInterval,
		log:      log,
		store:    store,
	}, nil
}

// buildFanout loads the reporters file. An empty path disables reporting.
func buildFanout(ctx context.Context, path string, log logger.Logger) (*reporters.Fanout, error) {
	if path == "" {
		log.InfoObj("reporting disabled", "reporters_file", path)
		return reporters.NewFanout(nil), nil
	}

	reg, err := reporters.LoadRegistry(path)
	if err != nil {
		return nil, fmt.Errorf("load reporters registry: %w", err)
	}
	enabled := reg.Enabled()
	clients, err := reporters.BuildAll(ctx, reporters.DefaultRegistry(), enabled, log)
	if err != nil {
		return nil, fmt.Errorf("build reporters: %w", err)
	}

	summaries := make([]map[string]any, 0, len(enabled))
	for _, c := range enabled {
		summaries = append(summaries, map[string]any{
			"id":            c.ID,
			"type":          c.Type,
			"only_failures": c.OnlyFailures,
			"requests":      c.Requests,
		})
	}
	log.InfoObj("reporters registry loaded", "reporters_meta", map[string]any{
		"count":     len(summaries),
		"reporters": summaries,
	})
	return reporters.NewFanout(clients), nil
}

// Run executes the selected requests. With a zero interval it runs once and
// returns the joined request errors; otherwise it repeats until ctx is done.
func (r *Runner) Run(ctx context.Context) error {
	if r == nil || r.executor == nil {
		return fmt.Errorf("runner is not initialized")
	}
	defer r.close()

	r.log.InfoObj("runner starting", "runner_state", map[string]any{
		"requests_count":  len(r.entries),
		"reporters_count": r.fanout.Size(),
		"run_interval":    r.interval.String(),
		"concurrency":     r.cfg.Concurrency,
	})

	if r.interval <= 0 {
		return r.runOnce(ctx)
	}

	if err := r.runOnce(ctx); err != nil {
		r.log.ErrorObj("initial run failed", "error", err)
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.log.InfoObj("runner loop exiting", "reason", ctx.Err())
			return nil
		case <-ticker.C:
			if err := r.runOnce(ctx); err != nil {
				r.log.ErrorObj("scheduled run failed", "error", err)
			}
		}
	}
}

// runOnce performs a single pass over the selected requests.
func (r *Runner) runOnce(ctx context.Context) error {
	start := time.Now()
	runID := ulid.Make().String()
	r.log.InfoObj("run started", "run_meta", map[string]any{
		"run_id":         runID,
		"requests_count": len(r.entries),
		"started_at":     start.UTC(),
	})

	execs, err := r.executor.Run(ctx, runID, r.entries)

	failed := 0
	for _, e := range execs {
		if !e.Succeeded() {
			failed++
		}
	}
	r.log.InfoObj("run completed", "run_meta", map[string]any{
		"run_id":     runID,
		"succeeded":  len(execs) - failed,
		"failed":     failed,
		"elapsed_ms": time.Since(start).Milliseconds(),
	})
	return err
}

// close releases the reporters and the journal, logging any errors encountered.
func (r *Runner) close() {
	if err := r.fanout.Close(); err != nil {
		r.log.ErrorObj("reporters close failed", "error", err)
	}
	if r.store == nil {
		return
	}
	if err := r.store.Close(); err != nil {
		r.log.ErrorObj("storage close failed", "error", err)
	}
}
