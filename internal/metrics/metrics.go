// Package metrics holds the prometheus collectors of the catalog service.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Failure reasons recorded by ProductCreateFailures.
const (
	ReasonValidation  = "validation"
	ReasonAttachment  = "attachment"
	ReasonPersistence = "persistence"
)

// Metrics groups the collectors. Build it with New and register it once.
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	ProductsCreated       prometheus.Counter
	ProductCreateFailures *prometheus.CounterVec
	ProductReadFailures   prometheus.Counter
	AttachmentsStored     prometheus.Counter
	DimensionsDropped     prometheus.Counter
}

// New creates the collectors under the given namespace.
func New(namespace string) *Metrics {
	return &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),

		ProductsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "products_created_total",
			Help:      "Total products created",
		}),
		ProductCreateFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "product_create_failures_total",
			Help:      "Failed product creations by reason",
		}, []string{"reason"}),
		ProductReadFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "product_read_failures_total",
			Help:      "Failed product list queries",
		}),
		AttachmentsStored: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "attachments_stored_total",
			Help:      "Attachments written for created products",
		}),
		DimensionsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dimensions_dropped_total",
			Help:      "Submissions whose dimensions field failed to parse and was dropped",
		}),
	}
}

// Register registers every collector with reg.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.ProductsCreated,
		m.ProductCreateFailures,
		m.ProductReadFailures,
		m.AttachmentsStored,
		m.DimensionsDropped,
	}

	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return fmt.Errorf("failed to register metric: %w", err)
		}
	}
	return nil
}
