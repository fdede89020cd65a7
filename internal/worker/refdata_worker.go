package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/prize_address/internal/refdata"
	"github.com/GTDGit/prize_address/internal/sse"
)

// RefDataWorker loads the reference datasets and, with a positive interval,
// reloads them periodically. Every load publishes a new snapshot; datasets
// that fail to reload keep their previous content.
type RefDataWorker struct {
	loader   *refdata.Loader
	holder   *refdata.Holder
	interval time.Duration
	notifier sse.RefDataNotifier
}

// NewRefDataWorker constructs a RefDataWorker.
func NewRefDataWorker(loader *refdata.Loader, holder *refdata.Holder, interval time.Duration) *RefDataWorker {
	return &RefDataWorker{
		loader:   loader,
		holder:   holder,
		interval: interval,
		notifier: sse.NopNotifier{},
	}
}

// WithNotifier sets the notifier told about every publish.
func (w *RefDataWorker) WithNotifier(n sse.RefDataNotifier) *RefDataWorker {
	if n != nil {
		w.notifier = n
	}
	return w
}

// Start loads immediately, then reloads on every tick until ctx is done.
// With a zero interval it returns after the first load.
func (w *RefDataWorker) Start(ctx context.Context) {
	log.Info().Dur("interval", w.interval).Msg("Starting reference data worker")

	w.run(ctx)
	if w.interval <= 0 {
		return
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.run(ctx)
		case <-ctx.Done():
			log.Info().Msg("Reference data worker stopped")
			return
		}
	}
}

func (w *RefDataWorker) run(ctx context.Context) {
	start := time.Now()
	snap := w.loader.LoadInto(ctx, w.holder, w.notifier.NotifyPublished)

	event := log.Info()
	if !snap.AllLoaded() {
		event = log.Warn()
	}
	event.
		Dur("duration", time.Since(start)).
		Int("provinces", len(snap.Provinces())).
		Int("districts", len(snap.Districts())).
		Int("subdistricts", len(snap.Subdistricts())).
		Int("sites", len(snap.Sites())).
		Bool("complete", snap.AllLoaded()).
		Msg("Reference data published")
}
