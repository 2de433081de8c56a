//go:build !integration

package usecase_test

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"realestate-marketplace/internal/domain"
	"realestate-marketplace/internal/domain/model"
	"realestate-marketplace/internal/domain/ports/adapter"
	"realestate-marketplace/internal/domain/ports/repository"
)

// newTestLogger creates a silent zerolog.Logger for use in tests.
func newTestLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

type mockTxManager struct{}

func (m *mockTxManager) WithTx(ctx context.Context, _ pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	return fn(ctx, struct{}{})
}

// memUserRepo is a small in-memory implementation used by unit tests.
type memUserRepo struct {
	mu    sync.RWMutex
	store map[string]*model.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{store: make(map[string]*model.User)}
}

func (m *memUserRepo) Save(ctx context.Context, tx repository.Tx, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *u
	m.store[u.ID] = &cp
	return nil
}

func (m *memUserRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

type memPropertyRepo struct {
	mu      sync.RWMutex
	store   map[string]*model.Property
	saveErr error
}

func newMemPropertyRepo() *memPropertyRepo {
	return &memPropertyRepo{store: make(map[string]*model.Property)}
}

func (m *memPropertyRepo) Save(ctx context.Context, tx repository.Tx, p *model.Property) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.store[p.ID] = &cp
	return nil
}

func (m *memPropertyRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Property, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memPropertyRepo) ListByOwner(ctx context.Context, tx repository.Tx, ownerID string) ([]*model.Property, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Property
	for _, p := range m.store {
		if p.OwnerID == ownerID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

type memTierRepo struct {
	mu    sync.RWMutex
	store map[model.TierType]*model.PromotionTier
}

func newMemTierRepo() *memTierRepo {
	return &memTierRepo{store: make(map[model.TierType]*model.PromotionTier)}
}

func (m *memTierRepo) Save(ctx context.Context, tx repository.Tx, t *model.PromotionTier) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *t
	m.store[t.Type] = &cp
	return nil
}

func (m *memTierRepo) FindByType(ctx context.Context, tx repository.Tx, tierType model.TierType) (*model.PromotionTier, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.store[tierType]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *memTierRepo) ListActive(ctx context.Context, tx repository.Tx) ([]*model.PromotionTier, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.PromotionTier
	for _, t := range m.store {
		if t.Active {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out, nil
}

// memPromoCodeRepo implements the conditional redeem the way the SQL does:
// a single guarded increment under one lock.
type memPromoCodeRepo struct {
	mu    sync.Mutex
	store map[string]*model.PromoCode
}

func newMemPromoCodeRepo() *memPromoCodeRepo {
	return &memPromoCodeRepo{store: make(map[string]*model.PromoCode)}
}

func (m *memPromoCodeRepo) Save(ctx context.Context, tx repository.Tx, c *model.PromoCode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *c
	m.store[c.Code] = &cp
	return nil
}

func (m *memPromoCodeRepo) FindByCode(ctx context.Context, tx repository.Tx, code string) (*model.PromoCode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.store[code]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *memPromoCodeRepo) RedeemOnce(ctx context.Context, tx repository.Tx, code string, now time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.store[code]
	if !ok || !c.Active || !now.Before(c.ValidUntil) || c.TimesUsed >= c.MaxUses {
		return false, nil
	}
	c.TimesUsed++
	return true, nil
}

type memPromotionRepo struct {
	mu    sync.Mutex
	store map[string]*model.Promotion
}

func newMemPromotionRepo() *memPromotionRepo {
	return &memPromotionRepo{store: make(map[string]*model.Promotion)}
}

func (m *memPromotionRepo) Save(ctx context.Context, tx repository.Tx, p *model.Promotion) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.store[p.ID] = &cp
	return nil
}

func (m *memPromotionRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Promotion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memPromotionRepo) FindActiveByProperty(ctx context.Context, tx repository.Tx, propertyID string) (*model.Promotion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.store {
		if p.PropertyID == propertyID && p.Status == model.PromotionStatusActive {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memPromotionRepo) ActivateIfPending(ctx context.Context, tx repository.Tx, id string, start, end time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.store[id]
	if !ok || p.Status != model.PromotionStatusPending {
		return false, nil
	}
	s, e := start, end
	p.Status = model.PromotionStatusActive
	p.StartDate = &s
	p.EndDate = &e
	p.UpdatedAt = time.Now()
	return true, nil
}

func (m *memPromotionRepo) MarkFailedIfPending(ctx context.Context, tx repository.Tx, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.store[id]
	if !ok || p.Status != model.PromotionStatusPending {
		return false, nil
	}
	p.Status = model.PromotionStatusFailed
	p.UpdatedAt = time.Now()
	return true, nil
}

func (m *memPromotionRepo) ExpireIfActive(ctx context.Context, tx repository.Tx, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.store[id]
	if !ok || p.Status != model.PromotionStatusActive {
		return false, nil
	}
	p.Status = model.PromotionStatusExpired
	p.UpdatedAt = time.Now()
	return true, nil
}

func (m *memPromotionRepo) ListActiveEndedBefore(ctx context.Context, tx repository.Tx, cutoff time.Time, limit int) ([]*model.Promotion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Promotion
	for _, p := range m.store {
		if p.Status == model.PromotionStatusActive && p.EndDate != nil && p.EndDate.Before(cutoff) {
			cp := *p
			out = append(out, &cp)
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

func (m *memPromotionRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.Promotion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Promotion
	for _, p := range m.store {
		if p.UserID == userID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

type memPaymentRepo struct {
	mu      sync.Mutex
	store   map[string]*model.Payment
	byRef   map[string]string
	saveErr error

	// SaveFunc, when set, intercepts Save.
	SaveFunc func(ctx context.Context, tx repository.Tx, p *model.Payment) error
}

func newMemPaymentRepo() *memPaymentRepo {
	return &memPaymentRepo{store: make(map[string]*model.Payment), byRef: make(map[string]string)}
}

func (m *memPaymentRepo) Save(ctx context.Context, tx repository.Tx, p *model.Payment) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, tx, p)
	}
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.store[p.ID] = &cp
	m.byRef[p.Reference] = p.ID
	return nil
}

func (m *memPaymentRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memPaymentRepo) FindByReference(ctx context.Context, tx repository.Tx, reference string) (*model.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.byRef[reference]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *m.store[id]
	return &cp, nil
}

func (m *memPaymentRepo) FindByPromotionID(ctx context.Context, tx repository.Tx, promotionID string) (*model.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.store {
		if p.PromotionID != nil && *p.PromotionID == promotionID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memPaymentRepo) UpdateStatusIfPending(ctx context.Context, tx repository.Tx, id string, status model.PaymentStatus, gatewayTxID *string, paidAt *time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.store[id]
	if !ok || p.Status != model.PaymentStatusPending {
		return false, nil
	}
	p.Status = status
	if gatewayTxID != nil {
		p.GatewayTxID = *gatewayTxID
	}
	if paidAt != nil {
		t := *paidAt
		p.PaidAt = &t
	}
	p.UpdatedAt = time.Now()
	return true, nil
}

func (m *memPaymentRepo) ListPendingOlderThan(ctx context.Context, tx repository.Tx, olderThan time.Time, limit int) ([]*model.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Payment
	for _, p := range m.store {
		if p.Status == model.PaymentStatusPending && p.CreatedAt.Before(olderThan) {
			cp := *p
			out = append(out, &cp)
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

func (m *memPaymentRepo) ListPendingByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Payment
	for _, p := range m.store {
		if p.Status == model.PaymentStatusPending && p.UserID == userID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memPaymentRepo) SumCompletedByUser(ctx context.Context, tx repository.Tx, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var sum int64
	for _, p := range m.store {
		if p.Status == model.PaymentStatusCompleted && p.UserID == userID {
			sum += p.Amount
		}
	}
	return sum, nil
}

// mockGateway scripts gateway responses per test.
type mockGateway struct {
	mu sync.Mutex

	initErr     error
	verifyErr   error
	verifyOK    bool
	verifyCalls int
}

func (g *mockGateway) Name() string { return "mock" }

func (g *mockGateway) InitializeCheckout(ctx context.Context, r adapter.CheckoutRequest) (*adapter.CheckoutSession, error) {
	if g.initErr != nil {
		return nil, g.initErr
	}
	return &adapter.CheckoutSession{CheckoutURL: "https://example.test/pay/" + r.Reference, Reference: r.Reference}, nil
}

func (g *mockGateway) VerifyTransaction(ctx context.Context, reference string) (*adapter.VerifyResult, error) {
	g.mu.Lock()
	g.verifyCalls++
	g.mu.Unlock()
	if g.verifyErr != nil {
		return nil, g.verifyErr
	}
	now := time.Now()
	return &adapter.VerifyResult{Succeeded: g.verifyOK, GatewayTxID: "gw-1", PaidAt: &now}, nil
}

func (g *mockGateway) VerifyWebhookSignature(payload []byte, signature string) bool {
	return signature == "valid"
}

// mockNotifier records deliveries.
type mockNotifier struct {
	mu        sync.Mutex
	activated []string // promotion IDs
	failed    []string // payment IDs
}

func (n *mockNotifier) Name() string { return "mock" }

func (n *mockNotifier) PromotionActivated(ctx context.Context, userID string, promo *model.Promotion) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.activated = append(n.activated, promo.ID)
	return nil
}

func (n *mockNotifier) PaymentFailed(ctx context.Context, userID string, payment *model.Payment) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.failed = append(n.failed, payment.ID)
	return nil
}
