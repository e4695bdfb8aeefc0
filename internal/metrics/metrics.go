package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workforcenexus_http_requests_total",
			Help: "Total HTTP requests by method and status code",
		},
		[]string{"method", "status"},
	)

	AuthFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "workforcenexus_auth_failures_total",
			Help: "Total rejected API key authentications",
		},
	)

	RateLimitRejectionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "workforcenexus_rate_limit_rejections_total",
			Help: "Total requests rejected by the hourly per-key rate limit",
		},
	)

	NotificationsDispatchedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workforcenexus_notifications_dispatched_total",
			Help: "Outbox dispatch outcomes",
		},
		[]string{"outcome"},
	)

	ExpiringLicensesGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "workforcenexus_expiring_licenses",
			Help: "Licenses expiring within the scan window, set by the daily scan",
		},
	)
)

var registry = prometheus.NewRegistry()

func init() {
	registry.MustRegister(
		HTTPRequestsTotal,
		AuthFailuresTotal,
		RateLimitRejectionsTotal,
		NotificationsDispatchedTotal,
		ExpiringLicensesGauge,
	)
}

// Handler returns the HTTP handler exposing the registered collectors.
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
