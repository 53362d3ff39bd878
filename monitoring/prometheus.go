package monitoring

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mezonai/sawlet/logx"
)

type processorPromMetrics struct {
	upUnixSeconds  prometheus.Gauge
	appliedOps     *prometheus.CounterVec
	rejectedOps    *prometheus.CounterVec
	applyLatency   *prometheus.HistogramVec
	panicCount     prometheus.Counter
	submittedBatch *prometheus.CounterVec
	pollAttempts   prometheus.Counter
	timeToCommit   prometheus.Histogram
	trackedStatus  *prometheus.CounterVec
	stateEvents    *prometheus.CounterVec
}

func newPromMetrics() *processorPromMetrics {
	return &processorPromMetrics{
		upUnixSeconds: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "sawlet_up_timestamp_unix_seconds",
				Help: "Unix timestamp of the process start",
			},
		),
		appliedOps: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sawlet_processor_applied_total",
				Help: "Operations applied by the transaction processor",
			},
			[]string{"op"},
		),
		rejectedOps: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sawlet_processor_rejected_total",
				Help: "Operations rejected by the transaction processor",
			},
			[]string{"op", "code"},
		),
		applyLatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "sawlet_processor_apply_seconds",
				Help: "Time spent applying one transaction",
			},
			[]string{"op"},
		),
		panicCount: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "sawlet_panic_total",
				Help: "Recovered panics in background goroutines",
			},
		),
		submittedBatch: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sawlet_client_submissions_total",
				Help: "Batch submissions by outcome",
			},
			[]string{"outcome"},
		),
		pollAttempts: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "sawlet_client_poll_attempts_total",
				Help: "Batch status polls issued by the commit tracker",
			},
		),
		timeToCommit: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name: "sawlet_client_time_to_commit_seconds",
				Help: "Latency from the first poll until a batch is committed",
			},
		),
		trackedStatus: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sawlet_client_tracked_total",
				Help: "Final status of tracked transactions",
			},
			[]string{"status"},
		),
		stateEvents: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sawlet_events_state_changes_total",
				Help: "Account state changes received from the validator",
			},
			[]string{"kind"},
		),
	}
}

var (
	metrics     *processorPromMetrics
	metricsOnce sync.Once
)

// InitMetrics registers the collectors once. Until it is called every
// recording function below is a no-op, so library users pay nothing.
func InitMetrics() {
	metricsOnce.Do(func() {
		metrics = newPromMetrics()
		metrics.upUnixSeconds.SetToCurrentTime()
	})
}

func RegisterMetrics(mux *http.ServeMux) {
	logx.Info("MONITORING", "Registering prometheus metrics")
	mux.Handle("/metrics", promhttp.Handler())
}

func RecordApplied(op string, duration time.Duration) {
	if metrics == nil {
		return
	}
	metrics.appliedOps.With(prometheus.Labels{"op": op}).Inc()
	metrics.applyLatency.With(prometheus.Labels{"op": op}).Observe(duration.Seconds())
}

func RecordRejected(op, code string) {
	if metrics == nil {
		return
	}
	metrics.rejectedOps.With(prometheus.Labels{"op": op, "code": code}).Inc()
}

func IncreasePanicCount() {
	if metrics == nil {
		return
	}
	metrics.panicCount.Inc()
}

func RecordSubmission(outcome string) {
	if metrics == nil {
		return
	}
	metrics.submittedBatch.With(prometheus.Labels{"outcome": outcome}).Inc()
}

func IncreasePollAttempts() {
	if metrics == nil {
		return
	}
	metrics.pollAttempts.Inc()
}

func RecordTimeToCommit(duration time.Duration) {
	if metrics == nil {
		return
	}
	metrics.timeToCommit.Observe(duration.Seconds())
}

func RecordTracked(status string) {
	if metrics == nil {
		return
	}
	metrics.trackedStatus.With(prometheus.Labels{"status": status}).Inc()
}

func RecordStateEvent(kind string) {
	if metrics == nil {
		return
	}
	metrics.stateEvents.With(prometheus.Labels{"kind": kind}).Inc()
}
