package workers

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/aethernova/habits-api/internal/core/domain"
)

const freezeWorkerName = "freeze_expiry"

type FreezeExpirer interface {
	ExpireFreezes(ctx context.Context, now time.Time) (int, error)
}

// FreezeExpiryWorker periodically clears freezes whose window has ended.
type FreezeExpiryWorker struct {
	repo     FreezeExpirer
	interval time.Duration
	clock    domain.Clock
	observer Observer
	logger   *zap.Logger
}

func NewFreezeExpiryWorker(repo FreezeExpirer, interval time.Duration, clock domain.Clock, observer Observer, logger *zap.Logger) *FreezeExpiryWorker {
	if clock == nil {
		clock = domain.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FreezeExpiryWorker{
		repo:     repo,
		interval: interval,
		clock:    clock,
		observer: observerOrNop(observer),
		logger:   logger.Named("freeze_worker"),
	}
}

// Start sweeps once immediately, then on every tick until ctx is done.
func (w *FreezeExpiryWorker) Start(ctx context.Context) {
	go func() {
		w.logger.Info("Freeze expiry worker started", zap.Duration("interval", w.interval))
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		w.Sweep(ctx)
		for {
			select {
			case <-ticker.C:
				w.Sweep(ctx)
			case <-ctx.Done():
				w.logger.Info("Freeze expiry worker shutting down")
				return
			}
		}
	}()
}

func (w *FreezeExpiryWorker) Sweep(ctx context.Context) int {
	n, err := w.repo.ExpireFreezes(ctx, w.clock.Now())
	w.observer.JobDone(freezeWorkerName, err)
	if err != nil {
		w.logger.Error("Freeze sweep failed", zap.Error(err))
		return 0
	}
	if n > 0 {
		w.observer.FreezesCleared(n)
		w.logger.Info("Expired freezes cleared", zap.Int("count", n))
	}
	return n
}
