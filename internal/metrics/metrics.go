package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"route", "method", "status"},
	)
	RequestLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_latency_seconds",
			Help:    "Latency of HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	// Ledger operations
	TransactionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_transactions_total",
			Help: "Total completed ledger transactions",
		},
		[]string{"type"}, // TOPUP|PAYMENT
	)
	TransactionsFailed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_transactions_failed_total",
			Help: "Total rejected or failed ledger operations",
		},
		[]string{"reason"},
	)

	// Event consumer
	EventsConsumed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rental_events_consumed_total",
			Help: "Total rental events consumed",
		},
		[]string{"outcome"}, // processed|duplicate|invalid|failed
	)
)

// Handler serves the /metrics endpoint.
var Handler = promhttp.Handler

func Init() {
	prometheus.MustRegister(RequestsTotal)
	prometheus.MustRegister(RequestLatency)
	prometheus.MustRegister(TransactionsTotal)
	prometheus.MustRegister(TransactionsFailed)
	prometheus.MustRegister(EventsConsumed)
}
