package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder is the metrics sink used by the API client and the dashboard services.
type Recorder interface {
	IncrementCounter(name string, tags map[string]string)
	RecordProcessingTime(name string, duration time.Duration, tags map[string]string)
	RecordGauge(name string, value float64, tags map[string]string)
}

const (
	ClientRequest    = "client.request"
	TransferOutcome  = "transfer.outcome"
	TransferAmount   = "transfer.amount"
	ToastPushed      = "toast.pushed"
	AccountsListed   = "accounts.listed"
	BalanceFetch     = "balance.fetch"
	SessionEvent     = "session.event"
	WorkflowDuration = "transfer.duration"
)

type PrometheusMetrics struct {
	clientRequests   *prometheus.CounterVec
	clientLatency    *prometheus.HistogramVec
	transfersTotal   *prometheus.CounterVec
	transferDuration prometheus.Histogram
	transferAmount   prometheus.Histogram
	toastsTotal      *prometheus.CounterVec
	accountsKnown    prometheus.Gauge
	balanceFetches   *prometheus.CounterVec
	sessionEvents    *prometheus.CounterVec
}

// NewPrometheusMetrics registers the client collectors on reg.
// Pass prometheus.DefaultRegisterer in binaries and a fresh registry in tests.
func NewPrometheusMetrics(reg prometheus.Registerer) Recorder {
	factory := promauto.With(reg)
	return &PrometheusMetrics{
		clientRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledgervault_client_requests_total",
				Help: "Total number of backend requests issued by the client",
			},
			[]string{"method", "path", "outcome"},
		),
		clientLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ledgervault_client_request_duration_seconds",
				Help:    "Backend round trip latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		transfersTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledgervault_transfers_total",
				Help: "Transfer submissions by kind and outcome",
			},
			[]string{"kind", "status"},
		),
		transferDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "ledgervault_transfer_duration_milliseconds",
				Help:    "Transfer submission duration in milliseconds",
				Buckets: prometheus.ExponentialBuckets(1, 2, 12),
			},
		),
		transferAmount: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "ledgervault_transfer_amount",
				Help:    "Submitted transfer amount in base currency units",
				Buckets: prometheus.ExponentialBuckets(1, 10, 8),
			},
		),
		toastsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledgervault_toasts_total",
				Help: "Toasts shown by severity",
			},
			[]string{"severity"},
		),
		accountsKnown: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "ledgervault_accounts_listed",
				Help: "Number of accounts in the last successful listing",
			},
		),
		balanceFetches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledgervault_balance_fetches_total",
				Help: "Balance lookups by outcome",
			},
			[]string{"status"},
		),
		sessionEvents: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledgervault_session_events_total",
				Help: "Login, logout and registration events",
			},
			[]string{"event_type"},
		),
	}
}

func (m *PrometheusMetrics) IncrementCounter(name string, tags map[string]string) {
	switch name {
	case ClientRequest:
		m.clientRequests.WithLabelValues(tags["method"], tags["path"], tags["outcome"]).Inc()
	case TransferOutcome:
		m.transfersTotal.WithLabelValues(tags["kind"], tags["status"]).Inc()
	case ToastPushed:
		m.toastsTotal.WithLabelValues(tags["severity"]).Inc()
	case BalanceFetch:
		m.balanceFetches.WithLabelValues(tags["status"]).Inc()
	case SessionEvent:
		if eventType := tags["event_type"]; eventType != "" {
			m.sessionEvents.WithLabelValues(eventType).Inc()
		}
	}
}

func (m *PrometheusMetrics) RecordProcessingTime(name string, duration time.Duration, tags map[string]string) {
	switch name {
	case ClientRequest:
		m.clientLatency.WithLabelValues(tags["method"], tags["path"]).Observe(duration.Seconds())
	case WorkflowDuration:
		m.transferDuration.Observe(float64(duration.Milliseconds()))
	}
}

func (m *PrometheusMetrics) RecordGauge(name string, value float64, tags map[string]string) {
	switch name {
	case TransferAmount:
		m.transferAmount.Observe(value)
	case AccountsListed:
		m.accountsKnown.Set(value)
	}
}

// Noop discards every observation.
type Noop struct{}

func (Noop) IncrementCounter(string, map[string]string)                    {}
func (Noop) RecordProcessingTime(string, time.Duration, map[string]string) {}
func (Noop) RecordGauge(string, float64, map[string]string)                {}
