package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Checkout pipeline metrics. Registered on the default registry and served
// by the /metrics endpoint.
var (
	CheckoutsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_attempts_total",
		Help: "Checkout attempts by terminal state.",
	}, []string{"state"})

	CheckoutDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "checkout_duration_seconds",
		Help:    "End-to-end placeOrder latency.",
		Buckets: prometheus.DefBuckets,
	})

	RateLimitRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ratelimit_rejections_total",
		Help: "Requests rejected by the rate limiter, by endpoint category.",
	}, []string{"category"})

	RateLimitFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ratelimit_fallback_decisions_total",
		Help: "Rate limit decisions served by the non-authoritative local fallback.",
	})

	TamperAlerts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "checkout_price_mismatch_total",
		Help: "Checkouts rejected because the client total diverged beyond tolerance.",
	})

	CouponChecks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "coupon_validations_total",
		Help: "Coupon validation outcomes.",
	}, []string{"outcome"})
)
