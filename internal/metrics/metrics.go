package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RPCCallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "history",
		Subsystem: "rpc",
		Name:      "calls_total",
		Help:      "Total chain RPC and provider calls by status",
	}, []string{"chain", "method", "status"})

	RPCLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "history",
		Subsystem: "rpc",
		Name:      "call_duration_seconds",
		Help:      "Chain RPC and provider call duration",
		Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"chain", "method"})

	RPCRateLimitWaits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "history",
		Subsystem: "rpc",
		Name:      "rate_limit_waits_total",
		Help:      "Calls delayed by the client-side rate limiter",
	}, []string{"chain"})

	PipelineTransactions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "history",
		Subsystem: "pipeline",
		Name:      "transactions_total",
		Help:      "Transactions seen by the reconstruction pipeline by outcome",
	}, []string{"chain", "outcome"})

	DecodeSkips = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "history",
		Subsystem: "decode",
		Name:      "skipped_logs_total",
		Help:      "Logs skipped or legs dropped during decoding",
	}, []string{"chain", "reason"})

	ChainFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "history",
		Subsystem: "orchestrator",
		Name:      "chain_failures_total",
		Help:      "Chains that contributed an empty slice after a provider failure",
	}, []string{"chain"})

	RequestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "history",
		Subsystem: "orchestrator",
		Name:      "request_duration_seconds",
		Help:      "History query duration",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
	})

	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "history",
		Subsystem: "cache",
		Name:      "lookups_total",
		Help:      "Cache lookups by cache name and result",
	}, []string{"cache", "result"})
)

// ChainLabel formats a chain ID as a metric label.
func ChainLabel(chainID int64) string {
	return strconv.FormatInt(chainID, 10)
}
