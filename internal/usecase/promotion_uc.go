package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"realestate-marketplace/internal/domain"
	"realestate-marketplace/internal/domain/model"
	"realestate-marketplace/internal/domain/ports/adapter"
	"realestate-marketplace/internal/domain/ports/repository"
	"realestate-marketplace/internal/infra/metrics"
)

// CheckoutResult is returned from a successful purchase initiation. Both
// records stay pending until the gateway reports an outcome.
type CheckoutResult struct {
	CheckoutURL string
	PaymentID   string
	PromotionID string
	Reference   string
	Amount      int64
}

// VerificationStatus is the polling-safe view of one purchase attempt.
type VerificationStatus struct {
	PaymentStatus   model.PaymentStatus
	PromotionStatus model.PromotionStatus
	Promotion       *model.Promotion
}

// DashboardSummary aggregates a user's promotion spend.
type DashboardSummary struct {
	ActivePromotions []*model.Promotion
	PendingPayments  []*model.Payment
	TotalSpent       int64
	CountsByTier     map[model.TierType]int
}

// PromotionUseCase is the only component allowed to create Payment/Promotion
// pairs and to move them to terminal states. Webhook push and client poll
// both funnel into ReconcileByReference, so the two paths share semantics.
type PromotionUseCase interface {
	InitiatePurchase(ctx context.Context, userID, propertyID string, tierType model.TierType, durationDays int, promoCode string) (*CheckoutResult, error)
	ReconcileByReference(ctx context.Context, reference string) (*model.Payment, error)
	ActivatePromotion(ctx context.Context, promotionID string) (bool, error)
	HandleWebhook(ctx context.Context, rawBody []byte, signature string) error
	VerifyPayment(ctx context.Context, userID, ref string) (*VerificationStatus, error)
	Dashboard(ctx context.Context, userID string) (*DashboardSummary, error)
	ExpireDue(ctx context.Context, now time.Time, limit int) (int, error)
}

var _ PromotionUseCase = (*promotionUC)(nil)

type promotionUC struct {
	payments repository.PaymentRepository
	promos   repository.PromotionRepository
	props    repository.PropertyRepository
	tiers    repository.PromotionTierRepository
	codes    repository.PromoCodeRepository
	users    repository.UserRepository
	tx       repository.TransactionManager
	gateway  adapter.PaymentGateway
	notifier adapter.Notifier
	log      *zerolog.Logger

	callbackURL    string
	currency       string
	gatewayTimeout time.Duration
}

func NewPromotionUseCase(
	payments repository.PaymentRepository,
	promos repository.PromotionRepository,
	props repository.PropertyRepository,
	tiers repository.PromotionTierRepository,
	codes repository.PromoCodeRepository,
	users repository.UserRepository,
	tx repository.TransactionManager,
	gateway adapter.PaymentGateway,
	notifier adapter.Notifier,
	callbackURL, currency string,
	logger *zerolog.Logger,
) *promotionUC {
	return &promotionUC{
		payments:       payments,
		promos:         promos,
		props:          props,
		tiers:          tiers,
		codes:          codes,
		users:          users,
		tx:             tx,
		gateway:        gateway,
		notifier:       notifier,
		callbackURL:    callbackURL,
		currency:       currency,
		gatewayTimeout: 30 * time.Second,
		log:            logger,
	}
}

func (u *promotionUC) InitiatePurchase(ctx context.Context, userID, propertyID string, tierType model.TierType, durationDays int, promoCode string) (*CheckoutResult, error) {
	prop, err := u.props.FindByID(ctx, repository.NoTX, propertyID)
	if err != nil {
		return nil, err
	}
	if prop.OwnerID != userID {
		return nil, domain.ErrNotOwner
	}
	if !model.IsValidDuration(durationDays) {
		return nil, domain.ErrInvalidDuration
	}
	tier, err := u.tiers.FindByType(ctx, repository.NoTX, tierType)
	if err != nil {
		return nil, err
	}
	if !tier.Active {
		return nil, domain.ErrTierUnavailable
	}
	base, ok := tier.PriceFor(durationDays)
	if !ok {
		return nil, domain.ErrInvalidDuration
	}

	user, err := u.users.FindByID(ctx, repository.NoTX, userID)
	if err != nil {
		return nil, err
	}

	reference := ulid.Make().String()
	var payment *model.Payment
	var promo *model.Promotion

	// Payment creation, promotion creation and promo-code redemption share
	// one transaction: the code counter can never exceed its cap, and a
	// crash leaves either a complete pending pair or nothing.
	err = u.tx.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		final := base
		var discount int64
		code := normalizeCode(promoCode)
		if code != "" {
			pc, err := u.codes.FindByCode(ctx, tx, code)
			switch {
			case err == domain.ErrNotFound:
				code = "" // unknown code is ignored, same as pricing
			case err != nil:
				return err
			case !pc.Valid(time.Now()):
				code = ""
			default:
				redeemed, err := u.codes.RedeemOnce(ctx, tx, code, time.Now())
				if err != nil {
					return err
				}
				if !redeemed {
					return domain.ErrPromoCodeExhausted
				}
				final = model.ApplyDiscount(base, pc.DiscountPercent)
				discount = base - final
				metrics.IncPromoCodeRedemption()
			}
		}

		promo, err = model.NewPromotion(uuid.NewString(), userID, propertyID, tier, durationDays)
		if err != nil {
			return err
		}
		if err := u.promos.Save(ctx, tx, promo); err != nil {
			return err
		}

		payment, err = model.NewPayment(uuid.NewString(), userID, u.gateway.Name(), reference, final, u.currency)
		if err != nil {
			return err
		}
		payment.PromotionID = &promo.ID
		payment.PromoCode = code
		payment.Discount = discount
		payment.Description = fmt.Sprintf("%s promotion for %d days", tier.Type, durationDays)
		payment.Meta = map[string]interface{}{
			"property_id":  propertyID,
			"promotion_id": promo.ID,
			"tier":         string(tier.Type),
			"duration":     durationDays,
		}
		return u.payments.Save(ctx, tx, payment)
	})
	if err != nil {
		return nil, err
	}

	gwCtx, cancel := context.WithTimeout(ctx, u.gatewayTimeout)
	defer cancel()
	session, gwErr := u.gateway.InitializeCheckout(gwCtx, adapter.CheckoutRequest{
		Amount:      payment.Amount,
		Currency:    payment.Currency,
		Email:       user.Email,
		Reference:   reference,
		CallbackURL: u.callbackURL,
		Metadata:    payment.Meta,
	})
	if gwErr != nil {
		// Close both records so no ghost checkout stays reachable.
		if failErr := u.failPair(ctx, payment.ID, promo.ID); failErr != nil {
			u.log.Error().Err(failErr).Str("payment_id", payment.ID).Msg("failed to close records after gateway error")
		}
		metrics.IncPayment(string(model.PaymentStatusFailed))
		return nil, fmt.Errorf("%w: %v", domain.ErrGatewayUnavailable, gwErr)
	}

	metrics.IncPayment(string(model.PaymentStatusPending))
	u.log.Info().
		Str("payment_id", payment.ID).
		Str("promotion_id", promo.ID).
		Str("reference", reference).
		Int64("amount", payment.Amount).
		Msg("promotion purchase initiated")

	return &CheckoutResult{
		CheckoutURL: session.CheckoutURL,
		PaymentID:   payment.ID,
		PromotionID: promo.ID,
		Reference:   reference,
		Amount:      payment.Amount,
	}, nil
}

func (u *promotionUC) failPair(ctx context.Context, paymentID, promotionID string) error {
	return u.tx.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		if _, err := u.payments.UpdateStatusIfPending(ctx, tx, paymentID, model.PaymentStatusFailed, nil, nil); err != nil {
			return err
		}
		_, err := u.promos.MarkFailedIfPending(ctx, tx, promotionID)
		return err
	})
}

// ReconcileByReference resolves a pending payment to a terminal state using
// the gateway-reported outcome. Already-terminal payments are returned as-is
// with no side effects; the pending->terminal transition is a conditional
// update, so when webhook and poll race only one caller activates.
func (u *promotionUC) ReconcileByReference(ctx context.Context, reference string) (*model.Payment, error) {
	p, err := u.payments.FindByReference(ctx, repository.NoTX, reference)
	if err != nil {
		return nil, err
	}
	if p.Status.IsTerminal() {
		return p, nil
	}

	gwCtx, cancel := context.WithTimeout(ctx, u.gatewayTimeout)
	defer cancel()
	result, err := u.gateway.VerifyTransaction(gwCtx, reference)
	switch {
	case errors.Is(err, domain.ErrGatewayTxNotFound):
		// The provider never saw this reference: initiation crashed before
		// the checkout was registered. Close the pair instead of leaving it
		// pending for every future reconciler tick.
		result = &adapter.VerifyResult{}
	case err != nil:
		// Transport-level failure: retryable, nothing mutated.
		return nil, fmt.Errorf("%w: %v", domain.ErrGatewayUnavailable, err)
	}

	var won, activated bool
	err = u.tx.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		now := time.Now()
		if result.Succeeded {
			paidAt := now
			if result.PaidAt != nil {
				paidAt = *result.PaidAt
			}
			ok, err := u.payments.UpdateStatusIfPending(ctx, tx, p.ID, model.PaymentStatusCompleted, &result.GatewayTxID, &paidAt)
			if err != nil {
				return err
			}
			if !ok {
				return nil // another reconciler finished first
			}
			won = true
			if p.PromotionID != nil {
				activated, err = u.activateInTx(ctx, tx, *p.PromotionID, now)
				return err
			}
			return nil
		}

		ok, err := u.payments.UpdateStatusIfPending(ctx, tx, p.ID, model.PaymentStatusFailed, nil, nil)
		if err != nil {
			return err
		}
		if ok && p.PromotionID != nil {
			if _, err := u.promos.MarkFailedIfPending(ctx, tx, *p.PromotionID); err != nil {
				return err
			}
		}
		won = ok
		return nil
	})
	if err != nil {
		return nil, err
	}

	if won {
		if result.Succeeded {
			metrics.IncPayment(string(model.PaymentStatusCompleted))
			metrics.AddPaymentRevenue(p.Currency, p.Amount)
		} else {
			metrics.IncPayment(string(model.PaymentStatusFailed))
		}
		u.notifyOutcome(ctx, p, result.Succeeded, activated)
	}

	return u.payments.FindByReference(ctx, repository.NoTX, reference)
}

// ActivatePromotion runs the pending->active transition in its own
// transaction. Calling it again on an active promotion is a no-op: dates are
// never re-stamped and no notification is re-sent.
func (u *promotionUC) ActivatePromotion(ctx context.Context, promotionID string) (bool, error) {
	var activated bool
	err := u.tx.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		var err error
		activated, err = u.activateInTx(ctx, tx, promotionID, time.Now())
		return err
	})
	if err != nil {
		return false, err
	}
	if activated {
		promo, err := u.promos.FindByID(ctx, repository.NoTX, promotionID)
		if err == nil {
			if nErr := u.notifier.PromotionActivated(ctx, promo.UserID, promo); nErr != nil {
				u.log.Warn().Err(nErr).Str("promotion_id", promotionID).Msg("activation notification failed")
			}
		}
	}
	return activated, nil
}

// activateInTx performs the effectful transition. The property is locked and
// rewritten through the same visibility-gate path as any other property
// update, so the is_promoted => approved => is_active invariant is re-derived
// inside the activation transaction.
func (u *promotionUC) activateInTx(ctx context.Context, tx repository.Tx, promotionID string, now time.Time) (bool, error) {
	promo, err := u.promos.FindByID(ctx, tx, promotionID)
	if err != nil {
		return false, err
	}
	if promo.Status != model.PromotionStatusPending {
		return false, nil // active, failed or expired: nothing to do
	}

	// At most one promotion may be active per property: a newer purchase
	// supersedes the running one.
	if prev, err := u.promos.FindActiveByProperty(ctx, tx, promo.PropertyID); err == nil && prev != nil && prev.ID != promo.ID {
		if _, err := u.promos.ExpireIfActive(ctx, tx, prev.ID); err != nil {
			return false, err
		}
		u.log.Info().Str("superseded", prev.ID).Str("promotion_id", promo.ID).Msg("previous promotion superseded")
	} else if err != nil && err != domain.ErrNotFound {
		return false, err
	}

	start := now
	end := now.Add(time.Duration(promo.DurationDays) * 24 * time.Hour)
	ok, err := u.promos.ActivateIfPending(ctx, tx, promo.ID, start, end)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}

	paidAmount := int64(0)
	if payment, err := u.payments.FindByPromotionID(ctx, tx, promo.ID); err == nil {
		paidAmount = payment.Amount
	}

	prop, err := u.props.FindByID(ctx, tx, promo.PropertyID)
	if err != nil {
		return false, err
	}
	prev := *prop
	prop.IsPromoted = true
	prop.PromotionTier = promo.TierType
	prop.PromotionStart = &start
	prop.PromotionEnd = &end
	prop.PromotionPrice = paidAmount
	prop.IsPremium = true
	if promo.TierType == model.TierPremium {
		prop.IsFeatured = true
	}
	prop.ApplyUpdate(&prev, "", now)
	if err := u.props.Save(ctx, tx, prop); err != nil {
		return false, err
	}

	metrics.IncPromotionActivated(string(promo.TierType))
	return true, nil
}

func (u *promotionUC) notifyOutcome(ctx context.Context, p *model.Payment, succeeded, activated bool) {
	if succeeded && activated && p.PromotionID != nil {
		promo, err := u.promos.FindByID(ctx, repository.NoTX, *p.PromotionID)
		if err != nil {
			return
		}
		if err := u.notifier.PromotionActivated(ctx, p.UserID, promo); err != nil {
			u.log.Warn().Err(err).Str("payment_id", p.ID).Msg("activation notification failed")
		}
		return
	}
	if !succeeded {
		if err := u.notifier.PaymentFailed(ctx, p.UserID, p); err != nil {
			u.log.Warn().Err(err).Str("payment_id", p.ID).Msg("failure notification failed")
		}
	}
}

// webhookEvent is the subset of the gateway payload the orchestrator needs;
// everything else in the body is opaque.
type webhookEvent struct {
	Event string `json:"event"`
	Data  struct {
		Reference string `json:"reference"`
		Status    string `json:"status"`
	} `json:"data"`
}

// HandleWebhook verifies the signature over the raw payload, then reconciles.
// A verified payload is always acked regardless of payment outcome so the
// gateway does not retry-storm; only a bad signature is an error.
func (u *promotionUC) HandleWebhook(ctx context.Context, rawBody []byte, signature string) error {
	if !u.gateway.VerifyWebhookSignature(rawBody, signature) {
		metrics.IncWebhookRejected()
		return domain.ErrInvalidSignature
	}

	var evt webhookEvent
	if err := json.Unmarshal(rawBody, &evt); err != nil {
		u.log.Warn().Err(err).Msg("webhook payload malformed, acking")
		return nil
	}
	if evt.Data.Reference == "" {
		u.log.Warn().Str("event", evt.Event).Msg("webhook without reference, acking")
		return nil
	}

	if _, err := u.ReconcileByReference(ctx, evt.Data.Reference); err != nil {
		// Unknown reference is terminal, gateway errors will be retried by
		// the reconciler; either way the webhook is acked.
		u.log.Warn().Err(err).Str("reference", evt.Data.Reference).Msg("webhook reconcile failed")
	}
	return nil
}

// VerifyPayment is the client polling path. Accepts the gateway reference,
// the payment id or the promotion id and reconciles pending payments on the
// spot.
func (u *promotionUC) VerifyPayment(ctx context.Context, userID, ref string) (*VerificationStatus, error) {
	p, err := u.payments.FindByReference(ctx, repository.NoTX, ref)
	if err == domain.ErrNotFound {
		p, err = u.payments.FindByID(ctx, repository.NoTX, ref)
	}
	if err == domain.ErrNotFound {
		p, err = u.payments.FindByPromotionID(ctx, repository.NoTX, ref)
	}
	if err != nil {
		return nil, err
	}
	if p.UserID != userID {
		return nil, domain.ErrNotOwner
	}

	if !p.Status.IsTerminal() {
		if p, err = u.ReconcileByReference(ctx, p.Reference); err != nil {
			return nil, err
		}
	}

	status := &VerificationStatus{PaymentStatus: p.Status}
	if p.PromotionID != nil {
		promo, err := u.promos.FindByID(ctx, repository.NoTX, *p.PromotionID)
		if err != nil {
			return nil, err
		}
		status.PromotionStatus = promo.Status
		status.Promotion = promo
	}
	return status, nil
}

func (u *promotionUC) Dashboard(ctx context.Context, userID string) (*DashboardSummary, error) {
	promos, err := u.promos.ListByUser(ctx, repository.NoTX, userID)
	if err != nil {
		return nil, err
	}
	pending, err := u.payments.ListPendingByUser(ctx, repository.NoTX, userID)
	if err != nil {
		return nil, err
	}
	spent, err := u.payments.SumCompletedByUser(ctx, repository.NoTX, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	summary := &DashboardSummary{
		PendingPayments: pending,
		TotalSpent:      spent,
		CountsByTier:    make(map[model.TierType]int),
	}
	for _, promo := range promos {
		if promo.IsRunning(now) {
			summary.ActivePromotions = append(summary.ActivePromotions, promo)
		}
		if promo.Status != model.PromotionStatusFailed {
			summary.CountsByTier[promo.TierType]++
		}
	}
	return summary, nil
}

// ExpireDue catches the stored status up with the clock: active promotions
// whose window has ended become expired and the property's promotion flags
// are cleared. Reads never depend on this sweep; IsRunning is computed.
func (u *promotionUC) ExpireDue(ctx context.Context, now time.Time, limit int) (int, error) {
	due, err := u.promos.ListActiveEndedBefore(ctx, repository.NoTX, now, limit)
	if err != nil {
		if err == domain.ErrNotFound {
			return 0, nil
		}
		return 0, err
	}

	expired := 0
	for _, promo := range due {
		err := u.tx.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
			ok, err := u.promos.ExpireIfActive(ctx, tx, promo.ID)
			if err != nil || !ok {
				return err
			}
			prop, err := u.props.FindByID(ctx, tx, promo.PropertyID)
			if err != nil {
				return err
			}
			// Only clear when the property still carries this window; a
			// superseding promotion owns the flags otherwise.
			if prop.PromotionEnd != nil && !prop.PromotionEnd.After(now) {
				prop.ClearPromotion(now)
				if err := u.props.Save(ctx, tx, prop); err != nil {
					return err
				}
			}
			expired++
			return nil
		})
		if err != nil {
			u.log.Error().Err(err).Str("promotion_id", promo.ID).Msg("expiry sweep failed for promotion")
		}
	}
	if expired > 0 {
		metrics.AddPromotionsExpired(expired)
	}
	return expired, nil
}
