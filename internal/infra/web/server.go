package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	red "realestate-marketplace/internal/infra/redis"
	"realestate-marketplace/internal/usecase"
)

const (
	verifyPollLimit  = 10
	verifyPollWindow = time.Minute
)

type Server struct {
	promoUC   usecase.PromotionUseCase
	pricingUC usecase.PricingUseCase
	propUC    usecase.PropertyUseCase
	auth      *AuthManager
	limiter   *red.RateLimiter
	log       *zerolog.Logger
}

func NewServer(
	promoUC usecase.PromotionUseCase,
	pricingUC usecase.PricingUseCase,
	propUC usecase.PropertyUseCase,
	auth *AuthManager,
	limiter *red.RateLimiter,
	logger *zerolog.Logger,
) *Server {
	return &Server{
		promoUC:   promoUC,
		pricingUC: pricingUC,
		propUC:    propUC,
		auth:      auth,
		limiter:   limiter,
		log:       logger,
	}
}

// Router builds the full route tree. The webhook stays outside the auth group
// because the provider authenticates with a payload signature, not a session.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		// public
		r.Get("/promotions/tiers", tiersListHandler(s.pricingUC))
		r.Get("/promotions/price", priceQuoteHandler(s.pricingUC))
		r.Post("/payments/webhook", webhookHandler(s.promoUC))
		r.Get("/properties/{id}", propertyGetHandler(s.propUC))

		// authenticated
		r.Group(func(r chi.Router) {
			r.Use(s.auth.Authenticate)

			r.Post("/promotions/checkout", checkoutHandler(s.promoUC))
			r.Get("/promotions/dashboard", dashboardHandler(s.promoUC))
			r.With(s.verifyRateLimit).Get("/payments/verify", verifyHandler(s.promoUC))

			r.Post("/properties", propertyCreateHandler(s.propUC))
			r.Put("/properties/{id}", propertyUpdateHandler(s.propUC))
			r.Get("/properties", propertyListMineHandler(s.propUC))
		})

		// moderation
		r.Group(func(r chi.Router) {
			r.Use(s.auth.Authenticate, RequireAdmin)

			r.Post("/admin/properties/{id}/approve", moderationHandler(s.propUC, "approve"))
			r.Post("/admin/properties/{id}/reject", moderationHandler(s.propUC, "reject"))
			r.Post("/admin/properties/{id}/request-changes", moderationHandler(s.propUC, "request-changes"))
		})
	})

	return r
}

// verifyRateLimit caps polling per user. A limiter outage fails open: the
// reconciler makes the poll endpoint a convenience, not a correctness path.
func (s *Server) verifyRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.limiter != nil {
			ok, err := s.limiter.Allow(r.Context(), red.VerifyPollKey(userIDFrom(r.Context())), verifyPollLimit, verifyPollWindow)
			if err != nil {
				s.log.Warn().Err(err).Msg("rate limiter unavailable")
			} else if !ok {
				http.Error(w, "Too many requests", http.StatusTooManyRequests)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
