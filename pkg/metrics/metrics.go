package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Collector struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	InFlightGauge   prometheus.Gauge

	OrdersCreatedTotal   prometheus.Counter
	OrdersCompletedTotal prometheus.Counter
	OrdersRefundedTotal  prometheus.Counter
	StockRejectionsTotal prometheus.Counter

	StreamMessagesTotal *prometheus.CounterVec
	StreamErrorsTotal   *prometheus.CounterVec

	CacheHitsTotal          *prometheus.CounterVec
	CacheMissesTotal        *prometheus.CounterVec
	CacheInvalidationsTotal *prometheus.CounterVec

	ProcessorQueueDepth   prometheus.Gauge
	ProcessorDroppedTotal prometheus.Counter
}

func NewCollector(serviceName string) *Collector {
	return &Collector{
		RequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by method, path, and status code.",
		}, []string{"method", "path", "status"}),

		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: serviceName,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency distribution.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"method", "path", "status"}),

		InFlightGauge: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: serviceName,
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		}),

		OrdersCreatedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "orders",
			Name:      "created_total",
			Help:      "Total orders accepted into pending state.",
		}),

		OrdersCompletedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "orders",
			Name:      "completed_total",
			Help:      "Total orders moved to completed by the processor.",
		}),

		OrdersRefundedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "orders",
			Name:      "refunded_total",
			Help:      "Total orders moved to refunded by the refund consumer.",
		}),

		StockRejectionsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "orders",
			Name:      "stock_rejections_total",
			Help:      "Order requests rejected for insufficient stock.",
		}),

		StreamMessagesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "stream",
			Name:      "messages_total",
			Help:      "Stream messages processed by stream name.",
		}, []string{"stream"}),

		StreamErrorsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "stream",
			Name:      "errors_total",
			Help:      "Stream processing errors by stream name. Messages are left pending.",
		}, []string{"stream"}),

		CacheHitsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "cache",
			Name:      "hits_total",
			Help:      "Cache hits by namespace.",
		}, []string{"namespace"}),

		CacheMissesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "cache",
			Name:      "misses_total",
			Help:      "Cache misses by namespace.",
		}, []string{"namespace"}),

		CacheInvalidationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "cache",
			Name:      "invalidations_total",
			Help:      "Cache invalidations by namespace.",
		}, []string{"namespace"}),

		ProcessorQueueDepth: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: serviceName,
			Subsystem: "processor",
			Name:      "queue_depth",
			Help:      "Orders waiting for background completion.",
		}),

		ProcessorDroppedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "processor",
			Name:      "dropped_total",
			Help:      "Completion jobs dropped due to full buffer. Alert if non-zero.",
		}),
	}
}

func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
