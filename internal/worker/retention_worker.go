package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

const sweepTimeout = 30 * time.Second

// ExpiredResultStore deletes test results past their expires_at.
type ExpiredResultStore interface {
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// RetentionWorker periodically removes expired test results.
type RetentionWorker struct {
	results  ExpiredResultStore
	interval time.Duration
	log      zerolog.Logger
	now      func() time.Time
}

func NewRetentionWorker(results ExpiredResultStore, interval time.Duration, log zerolog.Logger) *RetentionWorker {
	return &RetentionWorker{
		results:  results,
		interval: interval,
		log:      log.With().Str("component", "retention_worker").Logger(),
		now:      time.Now,
	}
}

// Start sweeps once immediately and then every interval until ctx is done.
func (w *RetentionWorker) Start(ctx context.Context) {
	w.log.Info().Dur("interval", w.interval).Msg("RetentionWorker started")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("RetentionWorker stopped")
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *RetentionWorker) sweep(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, sweepTimeout)
	defer cancel()

	removed, err := w.results.DeleteExpired(ctx, w.now().UTC())
	if err != nil {
		if ctx.Err() == nil {
			w.log.Error().Err(err).Msg("Retention sweep failed")
		}
		return
	}
	if removed > 0 {
		w.log.Info().Int64("removed", removed).Msg("Expired test results removed")
	}
}
