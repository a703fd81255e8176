// Package refresher periodically re-renders subscribed report messages,
// recovering from gateway events the bot may have missed.
package refresher

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Updater rebuilds the roster snapshot and reconciles all subscriptions.
type Updater interface {
	RefreshAndReconcile(ctx context.Context) error
}

// Refresher runs the updater on a fixed interval
type Refresher struct {
	updater  Updater
	interval time.Duration

	stopChan chan struct{}
	wg       sync.WaitGroup
}

// New creates a new Refresher
func New(updater Updater, intervalSeconds int) *Refresher {
	return &Refresher{
		updater:  updater,
		interval: time.Duration(intervalSeconds) * time.Second,
		stopChan: make(chan struct{}),
	}
}

// Start begins the refresh loop
func (r *Refresher) Start(ctx context.Context) {
	slog.Info("Starting refresher", "interval", r.interval)

	r.wg.Add(1)
	defer r.wg.Done()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	// Initial refresh
	r.refresh(ctx)

	for {
		select {
		case <-ctx.Done():
			slog.Info("Refresher stopped (context cancelled)")
			return
		case <-r.stopChan:
			slog.Info("Refresher stopped")
			return
		case <-ticker.C:
			r.refresh(ctx)
		}
	}
}

// Stop signals the refresher to stop
func (r *Refresher) Stop() {
	close(r.stopChan)
	r.wg.Wait()
}

func (r *Refresher) refresh(ctx context.Context) {
	if err := r.updater.RefreshAndReconcile(ctx); err != nil {
		slog.Error("Failed to refresh subscriptions", "error", err)
	}
}
