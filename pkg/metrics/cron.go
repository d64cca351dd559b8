package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "mixbar"

// JobMetrics records runs of scheduled maintenance jobs.
type JobMetrics struct {
	duration *prometheus.HistogramVec
	runs     *prometheus.CounterVec
	affected *prometheus.CounterVec
	skips    prometheus.Counter
}

// NewJobMetrics registers the job collectors on the provided registerer.
func NewJobMetrics(reg prometheus.Registerer) *JobMetrics {
	if reg == nil {
		return &JobMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "job_duration_seconds",
		Help:      "Duration of scheduled jobs in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"job"})
	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "job_runs_total",
		Help:      "Scheduled job runs by result.",
	}, []string{"job", "result"})
	affected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "job_affected_rows_total",
		Help:      "Rows changed by scheduled jobs.",
	}, []string{"job"})
	skips := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "job_cycles_skipped_total",
		Help:      "Cycles skipped because another worker held the lock.",
	})
	reg.MustRegister(duration, runs, affected, skips)
	return &JobMetrics{duration: duration, runs: runs, affected: affected, skips: skips}
}

func (j *JobMetrics) ObserveSkip() {
	if j == nil || j.skips == nil {
		return
	}
	j.skips.Inc()
}

func (j *JobMetrics) ObserveDuration(job string, d time.Duration) {
	if j == nil || j.duration == nil {
		return
	}
	j.duration.WithLabelValues(normalizeLabel(job)).Observe(d.Seconds())
}

// ObserveRun counts one run; err == nil is a success.
func (j *JobMetrics) ObserveRun(job string, err error) {
	if j == nil || j.runs == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "failure"
	}
	j.runs.WithLabelValues(normalizeLabel(job), result).Inc()
}

func (j *JobMetrics) AddAffected(job string, n int64) {
	if j == nil || j.affected == nil || n <= 0 {
		return
	}
	j.affected.WithLabelValues(normalizeLabel(job)).Add(float64(n))
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
