// Package metrics holds the Prometheus collectors for settings resolution and
// object-storage operations.
package metrics

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/sitedir/internal/common"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "sitedir"

// Settings lookup sources.
const (
	SourceCache = "cache"
	SourceStore = "store"
	SourceEnv   = "env"
	SourceNone  = "none"
)

// Metrics groups the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	settingsLookups     *prometheus.CounterVec
	settingsStoreErrors prometheus.Counter
	storageRequests     *prometheus.CounterVec
	storageDuration     *prometheus.HistogramVec
	storageBytes        *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		settingsLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "settings",
			Name:      "lookups_total",
			Help:      "Settings lookups by the source that answered them.",
		}, []string{"source"}),
		settingsStoreErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "settings",
			Name:      "store_errors_total",
			Help:      "Settings store reads that failed and fell back to the environment.",
		}),
		storageRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "objectstore",
			Name:      "requests_total",
			Help:      "Object storage requests by operation and outcome.",
		}, []string{"op", "outcome"}),
		storageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "objectstore",
			Name:      "request_duration_seconds",
			Help:      "Object storage request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
		storageBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "objectstore",
			Name:      "bytes_total",
			Help:      "Bytes written to object storage.",
		}, []string{"op"}),
	}

	for _, c := range []prometheus.Collector{
		m.settingsLookups, m.settingsStoreErrors,
		m.storageRequests, m.storageDuration, m.storageBytes,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) SettingsLookup(source string) {
	if m == nil {
		return
	}
	m.settingsLookups.WithLabelValues(source).Inc()
}

func (m *Metrics) SettingsStoreError() {
	if m == nil {
		return
	}
	m.settingsStoreErrors.Inc()
}

// StorageOp records one object-storage call.
func (m *Metrics) StorageOp(op string, err error, elapsed time.Duration, bytes int64) {
	if m == nil {
		return
	}
	m.storageRequests.WithLabelValues(op, Outcome(err)).Inc()
	m.storageDuration.WithLabelValues(op).Observe(elapsed.Seconds())
	if bytes > 0 {
		m.storageBytes.WithLabelValues(op).Add(float64(bytes))
	}
}

// Outcome classifies err for the outcome label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, common.ErrNotConfigured):
		return "not_configured"
	default:
		return "error"
	}
}
