package metrics

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

// Config carries constant labels applied to all gateway metrics.
type Config struct {
	ServiceName string
	Environment string
}

const (
	JobReasonDeadlineExceeded	= "deadline_exceeded"
	JobReasonDB			= "db"
	JobReasonRemote			= "remote"
	JobReasonUnknown		= "unknown"
)

const (
	SubmissionModeOnline	= "online"
	SubmissionModeResubmit	= "resubmit"
	OutcomeLabelConfirmed	= "confirmed"
	OutcomeLabelRejected	= "rejected"
	OutcomeLabelTimeout	= "timeout"
	OutcomeLabelTransport	= "transport_error"
)

// GatewayMetrics captures fiscal gateway health signals.
type GatewayMetrics struct {
	submissions    *prometheus.CounterVec
	offlineQueued  prometheus.Counter
	offlineBacklog prometheus.Gauge
	jobRuns        *prometheus.CounterVec
	jobDuration    *prometheus.HistogramVec
	jobTimeouts    *prometheus.CounterVec
	jobErrors      *prometheus.CounterVec
	batchProcessed *prometheus.CounterVec
}

var (
	gatewayMetricsOnce sync.Once
	gatewayMetrics     *GatewayMetrics
)

// Gateway returns the singleton gateway metrics registry.
func Gateway() *GatewayMetrics {
	return GatewayWithConfig(Config{})
}

// GatewayWithConfig returns the singleton gateway metrics registry using config labels.
func GatewayWithConfig(cfg Config) *GatewayMetrics {
	gatewayMetricsOnce.Do(func() {
		gatewayMetrics = newGatewayMetrics(prometheus.DefaultRegisterer, cfg)
	})
	return gatewayMetrics
}

// ResetGatewayMetricsForTest resets the gateway metrics singleton for tests.
func ResetGatewayMetricsForTest() {
	gatewayMetricsOnce = sync.Once{}
	gatewayMetrics = nil
}

func newGatewayMetrics(registerer prometheus.Registerer, cfg Config) *GatewayMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "fiscalgate"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}
	constLabels := prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}

	submissions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "fiscalgate_submissions_total",
		Help:        "Sale submissions to the fiscal authority by mode and outcome.",
		ConstLabels: constLabels,
	}, []string{"mode", "outcome"})
	offlineQueued := prometheus.NewCounter(prometheus.CounterOpts{
		Name:        "fiscalgate_offline_queued_total",
		Help:        "Transactions persisted to the offline queue after authority timeouts.",
		ConstLabels: constLabels,
	})
	offlineBacklog := prometheus.NewGauge(prometheus.GaugeOpts{
		Name:        "fiscalgate_offline_backlog",
		Help:        "Offline transactions still awaiting successful resubmission.",
		ConstLabels: constLabels,
	})
	jobRuns := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "fiscalgate_job_runs_total",
		Help:        "Background job runs by name.",
		ConstLabels: constLabels,
	}, []string{"job"})
	jobDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:        "fiscalgate_job_duration_seconds",
		Help:        "Background job latency to keep the offline backlog fresh.",
		Buckets:     []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		ConstLabels: constLabels,
	}, []string{"job"})
	jobTimeouts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "fiscalgate_job_timeouts_total",
		Help:        "Background job timeouts that delay offline resubmission.",
		ConstLabels: constLabels,
	}, []string{"job"})
	jobErrors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "fiscalgate_job_errors_total",
		Help:        "Background job errors by low-cardinality reason.",
		ConstLabels: constLabels,
	}, []string{"job", "reason"})
	batchProcessed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "fiscalgate_batch_processed_total",
		Help:        "Offline transactions drained per background job run.",
		ConstLabels: constLabels,
	}, []string{"job"})

	registerer.MustRegister(
		submissions,
		offlineQueued,
		offlineBacklog,
		jobRuns,
		jobDuration,
		jobTimeouts,
		jobErrors,
		batchProcessed,
	)

	return &GatewayMetrics{
		submissions:    submissions,
		offlineQueued:  offlineQueued,
		offlineBacklog: offlineBacklog,
		jobRuns:        jobRuns,
		jobDuration:    jobDuration,
		jobTimeouts:    jobTimeouts,
		jobErrors:      jobErrors,
		batchProcessed: batchProcessed,
	}
}

// IncSubmission increments the submission counter for a mode and outcome.
func (m *GatewayMetrics) IncSubmission(mode, outcome string) {
	if m == nil || m.submissions == nil {
		return
	}
	m.submissions.WithLabelValues(mode, outcome).Inc()
}

// IncOfflineQueued increments the offline queue counter.
func (m *GatewayMetrics) IncOfflineQueued() {
	if m == nil || m.offlineQueued == nil {
		return
	}
	m.offlineQueued.Inc()
}

// SetOfflineBacklog records the current count of unsubmitted offline rows.
func (m *GatewayMetrics) SetOfflineBacklog(count int64) {
	if m == nil || m.offlineBacklog == nil {
		return
	}
	m.offlineBacklog.Set(float64(count))
}

// IncJobRun increments the run counter for a background job.
func (m *GatewayMetrics) IncJobRun(job string) {
	if m == nil || m.jobRuns == nil {
		return
	}
	m.jobRuns.WithLabelValues(job).Inc()
}

// ObserveJobDuration records background job latency in seconds.
func (m *GatewayMetrics) ObserveJobDuration(job string, duration time.Duration) {
	if m == nil || m.jobDuration == nil {
		return
	}
	m.jobDuration.WithLabelValues(job).Observe(duration.Seconds())
}

// IncJobTimeout increments the timeout counter for the background job.
func (m *GatewayMetrics) IncJobTimeout(job string) {
	if m == nil || m.jobTimeouts == nil {
		return
	}
	m.jobTimeouts.WithLabelValues(job).Inc()
}

// IncJobError increments the job error counter with classification.
func (m *GatewayMetrics) IncJobError(job string, err error) {
	if m == nil || m.jobErrors == nil || err == nil {
		return
	}
	m.jobErrors.WithLabelValues(job, ClassifyJobReason(err)).Inc()
}

// AddBatchProcessed increments the batch processed counter for a job by count.
func (m *GatewayMetrics) AddBatchProcessed(job string, count int) {
	if m == nil || m.batchProcessed == nil || count <= 0 {
		return
	}
	m.batchProcessed.WithLabelValues(job).Add(float64(count))
}

// ClassifyJobReason maps background job errors to low-cardinality reasons.
func ClassifyJobReason(err error) string {
	if err == nil {
		return JobReasonUnknown
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return JobReasonDeadlineExceeded
	}
	if isDBError(err) {
		return JobReasonDB
	}
	return JobReasonUnknown
}

func isDBError(err error) bool {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false
	}
	return errors.Is(err, gorm.ErrInvalidDB) ||
		errors.Is(err, gorm.ErrInvalidTransaction) ||
		errors.Is(err, gorm.ErrMissingWhereClause) ||
		errors.Is(err, gorm.ErrDuplicatedKey)
}
