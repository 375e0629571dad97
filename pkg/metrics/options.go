package metrics

import (
	"slices"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures a Manager before its collectors are registered.
type Option func(*Manager)

// WithNamespace overrides the "medalcast" metric name prefix.
func WithNamespace(namespace string) Option {
	return func(m *Manager) {
		if namespace != "" {
			m.namespace = namespace
		}
	}
}

// WithSubsystem overrides the "api" subsystem segment.
func WithSubsystem(subsystem string) Option {
	return func(m *Manager) {
		if subsystem != "" {
			m.subsystem = subsystem
		}
	}
}

// WithLatencyBuckets sets the millisecond buckets shared by the prediction,
// artifact load, HTTP and error latency histograms.
func WithLatencyBuckets(buckets []float64) Option {
	return func(m *Manager) {
		if len(buckets) > 0 && slices.IsSorted(buckets) {
			m.latencyBuckets = slices.Clone(buckets)
		}
	}
}

// WithProbabilityBuckets sets the buckets of the athlete probability histogram.
// Values outside [0, 1] are ignored.
func WithProbabilityBuckets(buckets []float64) Option {
	return func(m *Manager) {
		for _, b := range buckets {
			if b < 0 || b > 1 {
				return
			}
		}
		if len(buckets) > 0 && slices.IsSorted(buckets) {
			m.probBuckets = slices.Clone(buckets)
		}
	}
}

// WithMedalBuckets sets the buckets of the predicted medal total histogram.
func WithMedalBuckets(buckets []float64) Option {
	return func(m *Manager) {
		if len(buckets) > 0 && slices.IsSorted(buckets) {
			m.medalBuckets = slices.Clone(buckets)
		}
	}
}

// WithRefreshInterval sets how often RunSystemCollector samples by default.
func WithRefreshInterval(interval time.Duration) Option {
	return func(m *Manager) {
		if interval > 0 {
			m.refreshInterval = interval
		}
	}
}

// WithPrometheusRegistry registers the collectors on registry instead of the
// default registerer.
func WithPrometheusRegistry(registry prometheus.Registerer) Option {
	return func(m *Manager) {
		if registry != nil {
			m.registry = registry
		}
	}
}
