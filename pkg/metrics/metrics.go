package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// DeliveriesTotal counts notification deliveries by platform and status
	DeliveriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "wolf_push",
		Name:      "deliveries_total",
		Help:      "Notification deliveries by platform and status",
	}, []string{"platform", "status"})

	// SubscriptionsTotal counts subscription lifecycle events
	SubscriptionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "wolf_push",
		Name:      "subscriptions_total",
		Help:      "Subscription operations by action",
	}, []string{"action"})

	// DispatchDuration observes broadcast dispatch latency
	DispatchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "wolf_push",
		Name:      "dispatch_duration_seconds",
		Help:      "Broadcast dispatch latency in seconds",
		Buckets:   prometheus.DefBuckets,
	})

	// DedupSuppressedTotal counts notifications suppressed by the dedup window
	DedupSuppressedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "wolf_push",
		Name:      "dedup_suppressed_total",
		Help:      "Notifications suppressed as duplicates",
	})
)

// RecordDelivery records one delivery attempt
func RecordDelivery(platform, status string) {
	DeliveriesTotal.WithLabelValues(platform, status).Inc()
}

// RecordSubscription records one subscription operation
func RecordSubscription(action string) {
	SubscriptionsTotal.WithLabelValues(action).Inc()
}

// Handler returns a gin handler serving the Prometheus scrape endpoint
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
