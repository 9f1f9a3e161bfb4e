package app

import (
	"context"
	"fmt"
	"time"

	"github.com/samvad-hq/paykit/internal/config"
	"github.com/samvad-hq/paykit/internal/logger"
	"github.com/samvad-hq/paykit/internal/storage"
	"github.com/samvad-hq/paykit/pkg/publishers"
)

// Watcher polls invoices on an interval and publishes status transitions.
// It owns the storage backend and publisher connections it was built with.
type Watcher struct {
	tracker  *Tracker
	interval time.Duration
	log      logger.Logger
	store    storage.Store
	fanout   *publishers.Fanout
}

// NewWatcher builds a watcher runtime from config files.
func NewWatcher(ctx context.Context, cfg *config.Config, log logger.Logger) (*Watcher, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = &logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	publisherReg, err := publishers.LoadRegistry(cfg.PublishersFile)
	if err != nil {
		return nil, fmt.Errorf("load publishers registry: %w", err)
	}
	enabledPublishers := publisherReg.Enabled()
	if len(enabledPublishers) == 0 {
		return nil, fmt.Errorf("no publishers configured")
	}

	pubClients, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), enabledPublishers, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}
	fanout := publishers.NewFanout(pubClients)
	publisherSummaries := make([]map[string]string, 0, len(enabledPublishers))
	for _, pubCfg := range enabledPublishers {
		publisherSummaries = append(publisherSummaries, map[string]string{
			"id":   pubCfg.ID,
			"type": pubCfg.Type,
		})
	}
	log.InfoObj("publishers registry loaded", "publishers_meta", map[string]any{
		"count":      len(publisherSummaries),
		"publishers": publisherSummaries,
	})

	store, err := storage.NewStore(cfg.StorageType, cfg.BBoltPath, storage.Options{
		EntryTTL:        cfg.StorageTTL,
		CleanupInterval: cfg.StorageCleanupInterval,
	})
	if err != nil {
		fanout.Close()
		return nil, fmt.Errorf("init storage: %w", err)
	}
	log.InfoObj("storage initialized", "storage_config", map[string]any{
		"type":                     cfg.StorageType,
		"path":                     cfg.BBoltPath,
		"entry_ttl_seconds":        int(cfg.StorageTTL.Seconds()),
		"cleanup_interval_seconds": int(cfg.StorageCleanupInterval.Seconds()),
	})

	tracker := NewTracker(NewInvoiceClient(cfg, log), store, fanout, cfg.WatchLimit, log)
	return &Watcher{
		tracker:  tracker,
		interval: cfg.WatchInterval,
		log:      log,
		store:    store,
		fanout:   fanout,
	}, nil
}

// Run performs a pass immediately and then on every tick until the context is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	if w == nil || w.tracker == nil {
		return fmt.Errorf("watcher is not initialized")
	}
	if w.interval <= 0 {
		return fmt.Errorf("watch interval must be positive")
	}
	defer w.close()

	w.log.InfoObj("watcher loop starting", "watcher_state", map[string]any{
		"publishers_count": w.fanout.Size(),
		"watch_interval":   w.interval.String(),
	})

	if err := w.runOnce(ctx); err != nil {
		w.log.ErrorObj("initial sync failed", "error", err)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.InfoObj("watcher loop exiting", "reason", ctx.Err())
			return nil
		case <-ticker.C:
			if err := w.runOnce(ctx); err != nil {
				w.log.ErrorObj("scheduled sync failed", "error", err)
			}
		}
	}
}

func (w *Watcher) runOnce(ctx context.Context) error {
	start := time.Now()
	res, err := w.tracker.Sync(ctx)
	w.log.DebugObj("sync pass finished", "sync_meta", map[string]any{
		"published":  res.Published,
		"elapsed_ms": time.Since(start).Milliseconds(),
	})
	return err
}

// close releases storage and publisher connections, logging failures.
func (w *Watcher) close() {
	if w.store != nil {
		if err := w.store.Close(); err != nil {
			w.log.ErrorObj("storage close failed", "error", err)
		}
	}
	if err := w.fanout.Close(); err != nil {
		w.log.ErrorObj("publisher close failed", "error", err)
	}
}
