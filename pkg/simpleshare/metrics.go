package simpleshare

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics tracks native calls and stale-handle recovery. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	mu sync.Mutex

	nativeCalls      *prometheus.CounterVec
	recoveries       *prometheus.CounterVec
	recoveryFailures *prometheus.CounterVec
	warnings         *prometheus.CounterVec

	registerer prometheus.Registerer
	registered bool
}

func newCounterVec(name, help string, labels []string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "simpleshare",
			Subsystem: "native",
			Name:      name,
			Help:      help,
		},
		labels,
	)
}

// NewMetrics creates a metrics collector. A nil registerer falls back to
// prometheus.DefaultRegisterer.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &Metrics{
		registerer:       registerer,
		nativeCalls:      newCounterVec("calls_total", "Native boundary calls by operation and outcome", []string{"operation", "outcome"}),
		recoveries:       newCounterVec("handle_recoveries_total", "Stale handles recreated by the recovery protocol", []string{"operation"}),
		recoveryFailures: newCounterVec("handle_recovery_failures_total", "Stale-handle failures that could not be recovered", []string{"operation", "reason"}),
		warnings:         newCounterVec("payload_warnings_total", "Non-fatal payload validation warnings", []string{"field"}),
	}
}

// Register registers the Prometheus collectors. Safe to call multiple times.
// When the registerer already holds collectors of the same name, m adopts
// them so every Metrics on a registry feeds the same series.
func (m *Metrics) Register() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.registered {
		return nil
	}

	collectors := []**prometheus.CounterVec{
		&m.nativeCalls,
		&m.recoveries,
		&m.recoveryFailures,
		&m.warnings,
	}

	for _, c := range collectors {
		if err := m.registerer.Register(*c); err != nil {
			are, ok := err.(prometheus.AlreadyRegisteredError)
			if !ok {
				return err
			}
			existing, ok := are.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				return err
			}
			// Record into the series another Metrics already exposes.
			*c = existing
		}
	}

	m.registered = true
	return nil
}

func (m *Metrics) recordCall(operation string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	switch {
	case err == nil:
	case IsHandleNotFound(err):
		outcome = "stale_handle"
	default:
		outcome = "error"
	}
	m.nativeCalls.WithLabelValues(operation, outcome).Inc()
}

func (m *Metrics) recordRecovery(operation string) {
	if m == nil {
		return
	}
	m.recoveries.WithLabelValues(operation).Inc()
}

func (m *Metrics) recordRecoveryFailure(operation, reason string) {
	if m == nil {
		return
	}
	m.recoveryFailures.WithLabelValues(operation, reason).Inc()
}

func (m *Metrics) recordWarning(field string) {
	if m == nil {
		return
	}
	m.warnings.WithLabelValues(field).Inc()
}
