package obs

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// PaymentInitiateTotal counts payment initiation outcomes.
	PaymentInitiateTotal *prometheus.CounterVec
	// CallbackReceivedTotal counts inbound gateway callbacks by method.
	CallbackReceivedTotal *prometheus.CounterVec
	// StatusCheckTotal counts status poll outcomes.
	StatusCheckTotal *prometheus.CounterVec
	// UpstreamRequestTotal counts calls to the gateway by operation and result.
	UpstreamRequestTotal *prometheus.CounterVec
	// UpstreamRequestLatency records gateway call latency in milliseconds.
	UpstreamRequestLatency *prometheus.HistogramVec
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		PaymentInitiateTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_initiate_total",
			Help:      "Count of payment initiation outcomes.",
		}, []string{"result"})
		CallbackReceivedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "callback_received_total",
			Help:      "Count of gateway callbacks received by HTTP method.",
		}, []string{"method"})
		StatusCheckTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "status_check_total",
			Help:      "Count of transaction status poll outcomes.",
		}, []string{"result"})
		UpstreamRequestTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_request_total",
			Help:      "Count of gateway requests by operation and result.",
		}, []string{"operation", "result"})
		UpstreamRequestLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_request_duration_ms",
			Help:      "Latency of gateway requests in milliseconds.",
			Buckets:   defaultBucketsMS,
		}, []string{"operation"})

		PaymentInitiateTotal = register(reg, PaymentInitiateTotal).(*prometheus.CounterVec)
		CallbackReceivedTotal = register(reg, CallbackReceivedTotal).(*prometheus.CounterVec)
		StatusCheckTotal = register(reg, StatusCheckTotal).(*prometheus.CounterVec)
		UpstreamRequestTotal = register(reg, UpstreamRequestTotal).(*prometheus.CounterVec)
		UpstreamRequestLatency = register(reg, UpstreamRequestLatency).(*prometheus.HistogramVec)
	})
}
