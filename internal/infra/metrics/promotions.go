package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		promotionsActivatedTotal,
		promotionsExpiredTotal,
		promoCodeRedemptionsTotal,
	)
}

var (
	promotionsActivatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "promotions_activated_total",
			Help: "Promotions activated, labeled by tier.",
		},
		[]string{"tier"},
	)

	promotionsExpiredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "promotions_expired_total",
			Help: "Promotions transitioned active -> expired by the sweep.",
		},
	)

	promoCodeRedemptionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "promo_code_redemptions_total",
			Help: "Successful promo code redemptions.",
		},
	)
)

func IncPromotionActivated(tier string) {
	promotionsActivatedTotal.WithLabelValues(norm(tier)).Inc()
}

func AddPromotionsExpired(n int) {
	promotionsExpiredTotal.Add(float64(n))
}

func IncPromoCodeRedemption() {
	promoCodeRedemptionsTotal.Inc()
}
