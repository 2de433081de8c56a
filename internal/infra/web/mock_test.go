//go:build !integration

package web_test

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"realestate-marketplace/internal/domain"
	"realestate-marketplace/internal/domain/model"
	"realestate-marketplace/internal/usecase"
)

func newTestLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

// mockPromotionUC scripts the orchestrator per test.
type mockPromotionUC struct {
	initiateFunc func(ctx context.Context, userID, propertyID string, tierType model.TierType, durationDays int, promoCode string) (*usecase.CheckoutResult, error)
	webhookFunc  func(ctx context.Context, rawBody []byte, signature string) error
	verifyFunc   func(ctx context.Context, userID, ref string) (*usecase.VerificationStatus, error)

	webhookCalls int
}

func (m *mockPromotionUC) InitiatePurchase(ctx context.Context, userID, propertyID string, tierType model.TierType, durationDays int, promoCode string) (*usecase.CheckoutResult, error) {
	if m.initiateFunc != nil {
		return m.initiateFunc(ctx, userID, propertyID, tierType, durationDays, promoCode)
	}
	return &usecase.CheckoutResult{
		CheckoutURL: "https://example.test/pay/ref-1",
		PaymentID:   "pay-1",
		PromotionID: "promo-1",
		Reference:   "ref-1",
		Amount:      1000,
	}, nil
}

func (m *mockPromotionUC) ReconcileByReference(ctx context.Context, reference string) (*model.Payment, error) {
	return nil, domain.ErrNotFound
}

func (m *mockPromotionUC) ActivatePromotion(ctx context.Context, promotionID string) (bool, error) {
	return false, nil
}

func (m *mockPromotionUC) HandleWebhook(ctx context.Context, rawBody []byte, signature string) error {
	m.webhookCalls++
	if m.webhookFunc != nil {
		return m.webhookFunc(ctx, rawBody, signature)
	}
	return nil
}

func (m *mockPromotionUC) VerifyPayment(ctx context.Context, userID, ref string) (*usecase.VerificationStatus, error) {
	if m.verifyFunc != nil {
		return m.verifyFunc(ctx, userID, ref)
	}
	return &usecase.VerificationStatus{PaymentStatus: model.PaymentStatusCompleted, PromotionStatus: model.PromotionStatusActive}, nil
}

func (m *mockPromotionUC) Dashboard(ctx context.Context, userID string) (*usecase.DashboardSummary, error) {
	return &usecase.DashboardSummary{CountsByTier: map[model.TierType]int{}}, nil
}

func (m *mockPromotionUC) ExpireDue(ctx context.Context, now time.Time, limit int) (int, error) {
	return 0, nil
}

type mockPricingUC struct {
	quoteErr error
}

func (m *mockPricingUC) Quote(ctx context.Context, tierType model.TierType, durationDays int, promoCode string) (*usecase.PriceQuote, error) {
	if m.quoteErr != nil {
		return nil, m.quoteErr
	}
	q := &usecase.PriceQuote{TierType: tierType, DurationDays: durationDays, OriginalPrice: 1000, FinalPrice: 1000}
	if promoCode != "" {
		q.FinalPrice = 900
		q.Discount = 100
		q.CodeApplied = true
	}
	return q, nil
}

func (m *mockPricingUC) ListTiers(ctx context.Context) ([]*model.PromotionTier, error) {
	return []*model.PromotionTier{{ID: "t1", Type: model.TierStandard, Active: true}}, nil
}

type mockPropertyUC struct {
	props map[string]*model.Property
}

func newMockPropertyUC() *mockPropertyUC {
	return &mockPropertyUC{props: map[string]*model.Property{}}
}

func (m *mockPropertyUC) Create(ctx context.Context, ownerID string, in usecase.PropertyInput) (*model.Property, error) {
	p, err := model.NewProperty("prop-1", ownerID, in.Title, in.Price)
	if err != nil {
		return nil, err
	}
	m.props[p.ID] = p
	return p, nil
}

func (m *mockPropertyUC) Update(ctx context.Context, callerID, propertyID string, in usecase.PropertyInput) (*model.Property, error) {
	p, ok := m.props[propertyID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if p.OwnerID != callerID {
		return nil, domain.ErrNotOwner
	}
	p.Title = in.Title
	return p, nil
}

func (m *mockPropertyUC) Get(ctx context.Context, propertyID string) (*model.Property, error) {
	p, ok := m.props[propertyID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

func (m *mockPropertyUC) ListByOwner(ctx context.Context, ownerID string) ([]*model.Property, error) {
	var out []*model.Property
	for _, p := range m.props {
		if p.OwnerID == ownerID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockPropertyUC) Approve(ctx context.Context, propertyID, adminID string) (*model.Property, error) {
	p, ok := m.props[propertyID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	p.ApprovalStatus = model.ApprovalStatusApproved
	p.IsActive = true
	return p, nil
}

func (m *mockPropertyUC) Reject(ctx context.Context, propertyID, adminID string) (*model.Property, error) {
	p, ok := m.props[propertyID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	p.ApprovalStatus = model.ApprovalStatusRejected
	p.IsActive = false
	return p, nil
}

func (m *mockPropertyUC) RequestChanges(ctx context.Context, propertyID, adminID string) (*model.Property, error) {
	p, ok := m.props[propertyID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	p.ApprovalStatus = model.ApprovalStatusChangesRequested
	p.IsActive = false
	return p, nil
}
