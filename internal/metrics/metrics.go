// Package metrics exposes the server daemon's Prometheus metrics:
// session counts, byte counters, and compiler duration, behind a
// standard /metrics HTTP endpoint.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	SessionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "pdistcc",
		Subsystem: "server",
		Name:      "sessions_total",
		Help:      "Number of compilation sessions served.",
	})

	SessionsRejected = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "pdistcc",
		Subsystem: "server",
		Name:      "sessions_rejected_total",
		Help:      "Number of sessions rejected at classification (UnsupportedCompiler/UnsupportedCompilationMode).",
	})

	BytesReceived = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "pdistcc",
		Subsystem: "server",
		Name:      "bytes_received_total",
		Help:      "Preprocessed source bytes received from clients.",
	})

	BytesSent = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "pdistcc",
		Subsystem: "server",
		Name:      "bytes_sent_total",
		Help:      "Object file bytes sent back to clients.",
	})

	CompilerDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "pdistcc",
		Subsystem: "server",
		Name:      "compiler_duration_seconds",
		Help:      "Wall-clock time spent running the remote compiler.",
		Buckets:   prometheus.DefBuckets,
	})
)

// Handler serves the registered metrics in the Prometheus exposition
// format; wire it up to a daemon's /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
