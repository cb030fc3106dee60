package workers

import (
	"context"
	"time"

	"github.com/cbodonnell/hideseek/pkg/log"
)

// Refresher reloads the cached event set.
type Refresher interface {
	RefreshEvents(ctx context.Context) error
}

type RefreshWorker struct {
	refresher   Refresher
	refreshChan <-chan struct{}
	interval    time.Duration
}

type NewRefreshWorkerOptions struct {
	Refresher Refresher
	// RefreshChan requests an immediate refresh. Optional.
	RefreshChan <-chan struct{}
	// Interval disables periodic refreshes when zero.
	Interval time.Duration
}

// NewRefreshWorker creates a new RefreshWorker.
// The worker refreshes on request and, when an interval is set,
// periodically so events created by other players show up.
func NewRefreshWorker(opts NewRefreshWorkerOptions) *RefreshWorker {
	return &RefreshWorker{
		refresher:   opts.Refresher,
		refreshChan: opts.RefreshChan,
		interval:    opts.Interval,
	}
}

func (w *RefreshWorker) Start(ctx context.Context) {
	var tick <-chan time.Time
	if w.interval > 0 {
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.refreshChan:
			w.refresh(ctx)
		case <-tick:
			w.refresh(ctx)
		}
	}
}

func (w *RefreshWorker) refresh(ctx context.Context) {
	if err := w.refresher.RefreshEvents(ctx); err != nil {
		log.Error("Failed to refresh events: %v", err)
	}
}
