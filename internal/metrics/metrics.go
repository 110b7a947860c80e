// Package metrics holds the Prometheus instruments exposed by the settings
// inspector.  All collectors are registered with the global registry, so
// serving promhttp.Handler() is enough to expose them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ResolveTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "taiga_settings_resolve_total",
			Help: "Cumulative number of successful settings resolutions.",
		})

	ResolveErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "taiga_settings_resolve_errors_total",
			Help: "Cumulative number of settings resolutions that failed.",
		})

	FeatureEnabled = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "taiga_settings_feature_enabled",
			Help: "1 when the optional settings block is switched on, else 0.",
		}, []string{"feature"})
)

func init() {
	prometheus.MustRegister(
		ResolveTotal,
		ResolveErrorsTotal,
		FeatureEnabled,
	)
}

// ObserveResolve records one resolution outcome.  features is only read on
// success.
func ObserveResolve(features map[string]bool, err error) {
	if err != nil {
		ResolveErrorsTotal.Inc()
		return
	}
	ResolveTotal.Inc()
	for name, on := range features {
		v := 0.0
		if on {
			v = 1
		}
		FeatureEnabled.WithLabelValues(name).Set(v)
	}
}
