package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"realestate-marketplace/internal/domain"
	"realestate-marketplace/internal/domain/model"
	"realestate-marketplace/internal/usecase"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		http.Error(w, "Not found", http.StatusNotFound)
	case errors.Is(err, domain.ErrInvalidArgument),
		errors.Is(err, domain.ErrInvalidDuration):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, domain.ErrNotOwner):
		http.Error(w, "Forbidden", http.StatusForbidden)
	case errors.Is(err, domain.ErrInvalidSignature):
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
	case errors.Is(err, domain.ErrPromoCodeExhausted):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, domain.ErrTierUnavailable):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, domain.ErrGatewayUnavailable):
		http.Error(w, "Payment provider unavailable", http.StatusBadGateway)
	default:
		http.Error(w, "Internal error", http.StatusInternalServerError)
	}
}

// ---- pricing ----

func priceQuoteHandler(pricingUC usecase.PricingUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		days, err := strconv.Atoi(q.Get("duration_days"))
		if err != nil {
			http.Error(w, "duration_days must be an integer", http.StatusBadRequest)
			return
		}

		quote, err := pricingUC.Quote(r.Context(), model.TierType(q.Get("tier")), days, q.Get("promo_code"))
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, struct {
			Tier          model.TierType `json:"tier"`
			DurationDays  int            `json:"duration_days"`
			OriginalPrice int64          `json:"original_price"`
			FinalPrice    int64          `json:"final_price"`
			Discount      int64          `json:"discount"`
			CodeApplied   bool           `json:"code_applied"`
		}{quote.TierType, quote.DurationDays, quote.OriginalPrice, quote.FinalPrice, quote.Discount, quote.CodeApplied})
	}
}

func tiersListHandler(pricingUC usecase.PricingUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tiers, err := pricingUC.ListTiers(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, tiers)
	}
}

// ---- checkout / verification ----

type checkoutRequest struct {
	PropertyID   string `json:"property_id"`
	Tier         string `json:"tier"`
	DurationDays int    `json:"duration_days"`
	PromoCode    string `json:"promo_code"`
}

func checkoutHandler(promoUC usecase.PromotionUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req checkoutRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		res, err := promoUC.InitiatePurchase(r.Context(), userIDFrom(r.Context()), req.PropertyID, model.TierType(req.Tier), req.DurationDays, req.PromoCode)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, struct {
			CheckoutURL string `json:"checkout_url"`
			PaymentID   string `json:"payment_id"`
			PromotionID string `json:"promotion_id"`
			Reference   string `json:"reference"`
			Amount      int64  `json:"amount"`
		}{res.CheckoutURL, res.PaymentID, res.PromotionID, res.Reference, res.Amount})
	}
}

func verifyHandler(promoUC usecase.PromotionUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ref := r.URL.Query().Get("reference")
		if ref == "" {
			http.Error(w, "reference is required", http.StatusBadRequest)
			return
		}

		status, err := promoUC.VerifyPayment(r.Context(), userIDFrom(r.Context()), ref)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, struct {
			PaymentStatus   model.PaymentStatus   `json:"payment_status"`
			PromotionStatus model.PromotionStatus `json:"promotion_status"`
			Promotion       *model.Promotion      `json:"promotion,omitempty"`
		}{status.PaymentStatus, status.PromotionStatus, status.Promotion})
	}
}

// webhookHandler reads the raw body before anything else: the signature is
// computed over the exact bytes the provider sent.
func webhookHandler(promoUC usecase.PromotionUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
		if err != nil {
			http.Error(w, "Bad request", http.StatusBadRequest)
			return
		}

		if err := promoUC.HandleWebhook(r.Context(), body, r.Header.Get("x-paystack-signature")); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

func dashboardHandler(promoUC usecase.PromotionUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sum, err := promoUC.Dashboard(r.Context(), userIDFrom(r.Context()))
		if err != nil {
			writeError(w, err)
			return
		}

		now := time.Now()
		type activePromotion struct {
			*model.Promotion
			DaysRemaining int `json:"days_remaining"`
		}
		active := make([]activePromotion, 0, len(sum.ActivePromotions))
		for _, p := range sum.ActivePromotions {
			active = append(active, activePromotion{p, p.DaysRemaining(now)})
		}

		writeJSON(w, http.StatusOK, struct {
			ActivePromotions []activePromotion      `json:"active_promotions"`
			PendingPayments  []*model.Payment       `json:"pending_payments"`
			TotalSpent       int64                  `json:"total_spent"`
			CountsByTier     map[model.TierType]int `json:"counts_by_tier"`
		}{active, sum.PendingPayments, sum.TotalSpent, sum.CountsByTier})
	}
}

// ---- properties ----

type propertyRequest struct {
	Title         string `json:"title"`
	Description   string `json:"description"`
	Price         int64  `json:"price"`
	City          string `json:"city"`
	IsPromoted    bool   `json:"is_promoted"`
	PromotionTier string `json:"promotion_tier"`
}

func (p propertyRequest) toInput() usecase.PropertyInput {
	return usecase.PropertyInput{
		Title:         p.Title,
		Description:   p.Description,
		Price:         p.Price,
		City:          p.City,
		IsPromoted:    p.IsPromoted,
		PromotionTier: model.TierType(p.PromotionTier),
	}
}

func propertyCreateHandler(propUC usecase.PropertyUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req propertyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		prop, err := propUC.Create(r.Context(), userIDFrom(r.Context()), req.toInput())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, prop)
	}
}

func propertyUpdateHandler(propUC usecase.PropertyUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req propertyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		prop, err := propUC.Update(r.Context(), userIDFrom(r.Context()), chi.URLParam(r, "id"), req.toInput())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, prop)
	}
}

func propertyGetHandler(propUC usecase.PropertyUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		prop, err := propUC.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, prop)
	}
}

func propertyListMineHandler(propUC usecase.PropertyUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		props, err := propUC.ListByOwner(r.Context(), userIDFrom(r.Context()))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, props)
	}
}

// ---- moderation ----

func moderationHandler(propUC usecase.PropertyUseCase, action string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		adminID := userIDFrom(r.Context())

		var (
			prop *model.Property
			err  error
		)
		switch action {
		case "approve":
			prop, err = propUC.Approve(r.Context(), id, adminID)
		case "reject":
			prop, err = propUC.Reject(r.Context(), id, adminID)
		case "request-changes":
			prop, err = propUC.RequestChanges(r.Context(), id, adminID)
		default:
			http.Error(w, "Unknown action", http.StatusBadRequest)
			return
		}
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, prop)
	}
}
