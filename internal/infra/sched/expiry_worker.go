package sched

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"realestate-marketplace/internal/domain"
	red "realestate-marketplace/internal/infra/redis"
	"realestate-marketplace/internal/usecase"
)

const expiryLockKey = "sched:promotion-expiry"

// ExpiryWorker catches up stored promotion statuses with the clock. Reads
// already treat an elapsed window as expired, so the sweep only reconciles
// the persisted rows and clears property flags.
type ExpiryWorker struct {
	interval time.Duration
	promoUC  usecase.PromotionUseCase
	locker   red.Locker
	log      *zerolog.Logger
}

func NewExpiryWorker(interval time.Duration, promoUC usecase.PromotionUseCase, locker red.Locker, logger *zerolog.Logger) *ExpiryWorker {
	if interval <= 0 {
		interval = time.Hour
	}
	l := logger.With().Str("component", "ExpiryWorker").Logger()
	return &ExpiryWorker{interval: interval, promoUC: promoUC, locker: locker, log: &l}
}

func (w *ExpiryWorker) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Msg("starting expiry worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("stopping expiry worker")
			return ctx.Err()
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

func (w *ExpiryWorker) tick(ctx context.Context) {
	token, err := w.locker.TryLock(ctx, expiryLockKey, w.interval)
	if err != nil {
		if !errors.Is(err, domain.ErrLockNotAcquired) {
			w.log.Warn().Err(err).Msg("expiry lock error")
		}
		return
	}
	defer w.locker.Unlock(ctx, expiryLockKey, token)

	n, err := w.promoUC.ExpireDue(ctx, time.Now(), 500)
	if err != nil {
		w.log.Error().Err(err).Msg("expiry sweep error")
	}
	if n > 0 {
		w.log.Info().Int("count", n).Msg("promotions expired")
	}
}
