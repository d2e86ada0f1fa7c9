package workerpool

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PromMetrics is a MetricsPolicy backed by Prometheus collectors.
type PromMetrics struct {
	JobsQueued   prometheus.Gauge
	JobsExecuted prometheus.Counter
	JobsFailed   prometheus.Counter
	JobDuration  prometheus.Histogram
}

// NewPromMetrics creates the collectors and registers them with reg.
// A nil reg registers with prometheus.DefaultRegisterer.
func NewPromMetrics(reg prometheus.Registerer, namespace, subsystem string) (*PromMetrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &PromMetrics{
		JobsQueued: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "jobs_queued",
			Help:      "Current number of jobs waiting for a worker",
		}),
		JobsExecuted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "jobs_executed_total",
			Help:      "Total number of jobs executed, failed ones included",
		}),
		JobsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "jobs_failed_total",
			Help:      "Total number of jobs that returned an error or panicked",
		}),
		JobDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "job_duration_seconds",
			Help:      "Histogram of job execution time",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	for _, c := range []prometheus.Collector{m.JobsQueued, m.JobsExecuted, m.JobsFailed, m.JobDuration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *PromMetrics) IncQueued()             { m.JobsQueued.Inc() }
func (m *PromMetrics) BatchDecQueued(n int64) { m.JobsQueued.Sub(float64(n)) }
func (m *PromMetrics) IncExecuted()           { m.JobsExecuted.Inc() }
func (m *PromMetrics) IncFailed()             { m.JobsFailed.Inc() }

func (m *PromMetrics) ObserveDuration(d time.Duration) {
	m.JobDuration.Observe(d.Seconds())
}
