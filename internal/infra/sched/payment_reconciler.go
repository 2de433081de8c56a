package sched

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"realestate-marketplace/internal/domain"
	"realestate-marketplace/internal/domain/ports/repository"
	red "realestate-marketplace/internal/infra/redis"
	"realestate-marketplace/internal/usecase"
)

const reconcilerLockKey = "sched:payment-reconciler"

// PaymentReconciler periodically scans for stale pending payments and tries
// to finalize them through the same reconciliation path the webhook uses.
// This covers cases where the webhook was lost or the process crashed
// mid-confirm.
type PaymentReconciler struct {
	uc         usecase.PromotionUseCase
	payments   repository.PaymentRepository
	locker     red.Locker
	interval   time.Duration // how often to scan
	staleAfter time.Duration // how old a pending payment must be to retry
	log        *zerolog.Logger
}

func NewPaymentReconciler(uc usecase.PromotionUseCase, payments repository.PaymentRepository, locker red.Locker, interval, staleAfter time.Duration, logger *zerolog.Logger) *PaymentReconciler {
	if interval <= 0 {
		interval = time.Minute
	}
	if staleAfter <= 0 {
		staleAfter = 10 * time.Minute
	}
	l := logger.With().Str("component", "PaymentReconciler").Logger()
	return &PaymentReconciler{uc: uc, payments: payments, locker: locker, interval: interval, staleAfter: staleAfter, log: &l}
}

func (w *PaymentReconciler) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Msg("starting payment reconciler")
	t := time.NewTicker(w.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("stopping payment reconciler")
			return ctx.Err()
		case <-t.C:
			w.tick(ctx)
		}
	}
}

func (w *PaymentReconciler) tick(ctx context.Context) {
	// Only one replica sweeps per tick. Losing the race is not an error.
	token, err := w.locker.TryLock(ctx, reconcilerLockKey, w.interval)
	if err != nil {
		if !errors.Is(err, domain.ErrLockNotAcquired) {
			w.log.Warn().Err(err).Msg("reconciler lock error")
		}
		return
	}
	defer w.locker.Unlock(ctx, reconcilerLockKey, token)

	cutoff := time.Now().Add(-w.staleAfter)
	pending, err := w.payments.ListPendingOlderThan(ctx, repository.NoTX, cutoff, 200)
	if err != nil {
		w.log.Error().Err(err).Msg("list pending payments failed")
		return
	}
	for _, p := range pending {
		if p.Reference == "" {
			continue
		}
		if _, err := w.uc.ReconcileByReference(ctx, p.Reference); err != nil {
			w.log.Warn().Err(err).Str("payment_id", p.ID).Str("reference", p.Reference).Msg("reconcile failed")
			continue
		}
		w.log.Info().Str("payment_id", p.ID).Msg("payment reconciled")
	}
}
