package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "speechcore"

// Metrics holds the counters and gauges this SDK core exposes. The SDK
// never starts its own HTTP server; the embedding application registers
// Metrics against whatever prometheus.Registerer backs its own
// /metrics endpoint.
type Metrics struct {
	ConnectAttempts prometheus.Counter
	ConnectRetries  prometheus.Counter
	ConnectFailures prometheus.Counter
	DecodeErrors    prometheus.Counter
	UndoOperations  prometheus.Counter
	RedoOperations  prometheus.Counter
	ActiveSessions  prometheus.Gauge
}

// New builds and registers a Metrics against reg. A nil reg is valid and
// yields unregistered (but still usable) instruments, for tests that
// don't care about scraping.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ConnectAttempts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: prometheus.BuildFQName(namespace, "stream", "connect_attempts_total"),
			Help: "Total AsyncSession connect attempts, including retries.",
		}),
		ConnectRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: prometheus.BuildFQName(namespace, "stream", "connect_retries_total"),
			Help: "Total AsyncSession connect retries after a failed attempt.",
		}),
		ConnectFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: prometheus.BuildFQName(namespace, "stream", "connect_failures_total"),
			Help: "Total AsyncSession connect attempts that exhausted all retries.",
		}),
		DecodeErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: prometheus.BuildFQName(namespace, "transcribe", "decode_errors_total"),
			Help: "Total server messages that failed MessageDecoder.Decode.",
		}),
		UndoOperations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: prometheus.BuildFQName(namespace, "transcribe", "undo_operations_total"),
			Help: "Total undo operations applied to a TranscribeDocument.",
		}),
		RedoOperations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: prometheus.BuildFQName(namespace, "transcribe", "redo_operations_total"),
			Help: "Total redo operations applied to a TranscribeDocument.",
		}),
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: prometheus.BuildFQName(namespace, "stream", "active_sessions"),
			Help: "Number of AsyncSession instances currently Open.",
		}),
	}

	if reg != nil {
		reg.MustRegister(
			m.ConnectAttempts,
			m.ConnectRetries,
			m.ConnectFailures,
			m.DecodeErrors,
			m.UndoOperations,
			m.RedoOperations,
			m.ActiveSessions,
		)
	}
	return m
}
