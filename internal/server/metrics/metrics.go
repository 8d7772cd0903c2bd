// Package metrics holds the Prometheus instruments of the object service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Operation labels.
const (
	OpUpload   = "upload"
	OpDownload = "download"
	OpStat     = "stat"
)

// Metrics holds the service's instruments.
type Metrics struct {
	ObjectsUploaded   prometheus.Counter       // fragkeeper_objects_uploaded_total
	ObjectsDownloaded prometheus.Counter       // fragkeeper_objects_downloaded_total
	BytesUploaded     prometheus.Counter       // fragkeeper_bytes_uploaded_total (plaintext)
	BytesDownloaded   prometheus.Counter       // fragkeeper_bytes_downloaded_total (plaintext)
	FragmentsWritten  prometheus.Counter       // fragkeeper_fragments_written_total
	Failures          *prometheus.CounterVec   // fragkeeper_operation_failures_total{operation,reason}
	Duration          *prometheus.HistogramVec // fragkeeper_operation_duration_seconds{operation}
}

// NewMetrics registers the instruments with reg. Pass a fresh
// prometheus.NewRegistry() in tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		ObjectsUploaded: f.NewCounter(prometheus.CounterOpts{
			Name: "fragkeeper_objects_uploaded_total",
			Help: "Objects stored",
		}),
		ObjectsDownloaded: f.NewCounter(prometheus.CounterOpts{
			Name: "fragkeeper_objects_downloaded_total",
			Help: "Objects decrypted and returned",
		}),
		BytesUploaded: f.NewCounter(prometheus.CounterOpts{
			Name: "fragkeeper_bytes_uploaded_total",
			Help: "Plaintext bytes stored",
		}),
		BytesDownloaded: f.NewCounter(prometheus.CounterOpts{
			Name: "fragkeeper_bytes_downloaded_total",
			Help: "Plaintext bytes returned",
		}),
		FragmentsWritten: f.NewCounter(prometheus.CounterOpts{
			Name: "fragkeeper_fragments_written_total",
			Help: "Fragments written to the fragment store",
		}),
		Failures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "fragkeeper_operation_failures_total",
			Help: "Failed operations by reason",
		}, []string{"operation", "reason"}),
		Duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fragkeeper_operation_duration_seconds",
			Help:    "Operation latency in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
	}
}

// NewRegistry returns a registry with the Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler serves reg in the Prometheus text format.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}
