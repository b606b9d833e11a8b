// Package metrics holds the Prometheus collectors exported by `molard serve --metrics-addr`.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ServiceStartsTotal = promauto.NewCounterVec(prometheus.CounterOpts{Name: "molard_service_starts_total", Help: "Sub-service start attempts by service and result"}, []string{"service", "result"})
	ServiceRunning     = promauto.NewGaugeVec(prometheus.GaugeOpts{Name: "molard_service_running", Help: "1 while a supervised sub-service is considered running"}, []string{"service"})
	ProbesTotal        = promauto.NewCounterVec(prometheus.CounterOpts{Name: "molard_probes_total", Help: "Health probes by service and outcome"}, []string{"service", "outcome"})
	PortsFreedTotal    = promauto.NewCounterVec(prometheus.CounterOpts{Name: "molard_ports_freed_total", Help: "Attempts to free a busy port by outcome"}, []string{"outcome"})
	SignInsTotal       = promauto.NewCounterVec(prometheus.CounterOpts{Name: "molard_signins_total", Help: "Loopback sign-in flows by outcome"}, []string{"outcome"})
	SignInDuration     = promauto.NewHistogram(prometheus.HistogramOpts{Name: "molard_signin_duration_seconds", Help: "Time from sign-in start to callback or failure", Buckets: prometheus.ExponentialBuckets(0.5, 2, 10)})
)

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Outcome maps a boolean result to a label value.
func Outcome(ok bool, yes, no string) string {
	if ok {
		return yes
	}
	return no
}

// SetRunning flips the running gauge of a service.
func SetRunning(service string, running bool) {
	v := 0.0
	if running {
		v = 1
	}
	ServiceRunning.WithLabelValues(service).Set(v)
}
