package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Sweeper drops expired in-memory entries and reports how many it removed.
type Sweeper interface {
	Sweep() int
}

// SweeperFunc adapts a function to Sweeper.
type SweeperFunc func() int

// Sweep calls f.
func (f SweeperFunc) Sweep() int { return f() }

// SweepWorker periodically evicts expired sessions and rate-limit windows
// held in process memory. Redis-backed state expires on its own.
type SweepWorker struct {
	sweepers map[string]Sweeper
	interval time.Duration
}

// NewSweepWorker constructs a SweepWorker. sweepers is keyed by a name used in logs.
func NewSweepWorker(sweepers map[string]Sweeper, interval time.Duration) *SweepWorker {
	return &SweepWorker{
		sweepers: sweepers,
		interval: interval,
	}
}

// Start runs the sweep loop until ctx is done.
func (w *SweepWorker) Start(ctx context.Context) {
	log.Info().Dur("interval", w.interval).Msg("Starting sweep worker")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.RunOnce()
		case <-ctx.Done():
			log.Info().Msg("Sweep worker stopped")
			return
		}
	}
}

// RunOnce sweeps every registered store once and returns the total removed.
func (w *SweepWorker) RunOnce() int {
	total := 0
	for name, s := range w.sweepers {
		n := s.Sweep()
		if n > 0 {
			log.Debug().Str("store", name).Int("removed", n).Msg("Swept expired entries")
		}
		total += n
	}
	return total
}
