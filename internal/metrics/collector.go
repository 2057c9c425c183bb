package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/sendwatch/mailauth/internal/core"
)

type Collector struct {
	// Gateway client metrics
	gatewayDuration *prometheus.HistogramVec
	gatewayTotal    *prometheus.CounterVec
	gatewayErrors   *prometheus.CounterVec

	// Derived-state metrics, refreshed on every domain list render
	domainsByStatus *prometheus.GaugeVec

	// DNS preview metrics
	dnsPreviewDuration prometheus.Histogram
	dnsPreviewTotal    *prometheus.CounterVec
}

func NewCollector() *Collector {
	return NewCollectorWith(prometheus.DefaultRegisterer)
}

// NewCollectorWith registers the metrics on the given registerer, so tests
// can use an isolated registry.
func NewCollectorWith(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		gatewayDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mailauth_gateway_request_duration_seconds",
				Help:    "Duration of backend gateway requests in seconds",
				Buckets: []float64{.025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"operation"},
		),

		gatewayTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mailauth_gateway_requests_total",
				Help: "Total number of backend gateway requests",
			},
			[]string{"operation", "outcome"},
		),

		gatewayErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mailauth_gateway_errors_total",
				Help: "Backend gateway failures by error kind",
			},
			[]string{"operation", "kind"},
		),

		domainsByStatus: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "mailauth_domains_by_status",
				Help: "Domains per derived authentication status at last list render",
			},
			[]string{"status"},
		),

		dnsPreviewDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "mailauth_dns_preview_duration_seconds",
				Help:    "Duration of DNS record preview lookups in seconds",
				Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
		),

		dnsPreviewTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mailauth_dns_preview_total",
				Help: "Total DNS record preview lookups",
			},
			[]string{"outcome"},
		),
	}
}

func (c *Collector) RecordGatewayRequest(operation string, err error, kind string, elapsed time.Duration) {
	c.gatewayDuration.WithLabelValues(operation).Observe(elapsed.Seconds())

	outcome := "success"
	if err != nil {
		outcome = "failure"
		c.gatewayErrors.WithLabelValues(operation, kind).Inc()
	}
	c.gatewayTotal.WithLabelValues(operation, outcome).Inc()
}

// RecordDomainStatuses publishes the per-status domain counts from the most
// recent list render. Absent statuses are reset so stale values do not linger.
func (c *Collector) RecordDomainStatuses(counts map[core.DomainStatus]int) {
	for _, status := range []core.DomainStatus{
		core.StatusError, core.StatusWarning, core.StatusIncomplete, core.StatusValid,
	} {
		c.domainsByStatus.WithLabelValues(string(status)).Set(float64(counts[status]))
	}
}

func (c *Collector) RecordDNSPreview(err error, elapsed time.Duration) {
	c.dnsPreviewDuration.Observe(elapsed.Seconds())

	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	c.dnsPreviewTotal.WithLabelValues(outcome).Inc()
}
