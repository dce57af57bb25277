// Package monitoring records client-side Prometheus metrics for every round
// trip made to Weaviate.
//
// Available Metrics:
//
//   - weaviate_client_requests_total{protocol, method, endpoint, status}
//   - weaviate_client_request_duration_seconds{protocol, method, endpoint}
//   - weaviate_client_errors_total{protocol, endpoint}
//   - weaviate_client_batch_objects_total{protocol, result}
//
// Metrics are always recorded; they become visible once Register is called
// with a registry (the facade exposes this as weaviate.RegisterMetrics).
package monitoring

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
)

// Protocol labels.
const (
	ProtocolREST = "rest"
	ProtocolGRPC = "grpc"
)

var (
	requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weaviate_client_requests_total",
			Help: "Total number of requests sent to Weaviate",
		},
		[]string{"protocol", "method", "endpoint", "status"},
	)

	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "weaviate_client_request_duration_seconds",
			Help:    "Weaviate request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"protocol", "method", "endpoint"},
	)

	errorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weaviate_client_errors_total",
			Help: "Total number of failed Weaviate requests",
		},
		[]string{"protocol", "endpoint"},
	)

	batchObjectsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weaviate_client_batch_objects_total",
			Help: "Objects submitted through batch ingestion by outcome",
		},
		[]string{"protocol", "result"}, // result: success, failed
	)
)

// Collectors returns every collector owned by this package.
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{requestsTotal, requestDuration, errorsTotal, batchObjectsTotal}
}

// Register adds the client collectors to reg. Collectors that are already
// registered are ignored so several clients can share one registry.
func Register(reg prometheus.Registerer) error {
	for _, c := range Collectors() {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

// RecordRequest records one round trip. status is the HTTP status code, or 0
// when the request never completed; for gRPC callers pass 200 on success.
func RecordRequest(protocol, method, path string, status int, duration time.Duration) {
	endpoint := NormalizeEndpoint(path)
	requestsTotal.WithLabelValues(protocol, method, endpoint, strconv.Itoa(status)).Inc()
	requestDuration.WithLabelValues(protocol, method, endpoint).Observe(duration.Seconds())
	if status == 0 || status >= 400 {
		errorsTotal.WithLabelValues(protocol, endpoint).Inc()
	}
}

// RecordBatchObjects records the per-object outcome of a batch request.
func RecordBatchObjects(protocol string, succeeded, failed int) {
	if succeeded > 0 {
		batchObjectsTotal.WithLabelValues(protocol, "success").Add(float64(succeeded))
	}
	if failed > 0 {
		batchObjectsTotal.WithLabelValues(protocol, "failed").Add(float64(failed))
	}
}

// NormalizeEndpoint strips the query string and collapses ids so label
// cardinality stays bounded: /v1/objects/Pizza/<uuid> -> /v1/objects/Pizza/:id.
// Tenant and shard names become :name, backup ids (after the backend) :id.
func NormalizeEndpoint(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	parts := strings.Split(path, "/")
	for i := 1; i < len(parts); i++ {
		part := parts[i]
		switch {
		case isNumeric(part) || isUUID(part):
			parts[i] = ":id"
		case i+1 < len(parts) && parts[i+1] != "":
			switch part {
			case "tenants", "shards":
				parts[i+1] = ":name"
				i++
			case "backups":
				// backend stays; the backup id after it does not
				if i+2 < len(parts) && parts[i+2] != "" {
					parts[i+2] = ":id"
				}
				i += 2
			}
		}
	}
	return strings.Join(parts, "/")
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func isUUID(s string) bool {
	return len(s) == 36 && uuid.Validate(s) == nil
}
