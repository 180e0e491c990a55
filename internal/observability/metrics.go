package observability

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	types "github.com/WinterJet2021/MayWin-Core-Backend/internal/domain"
	"github.com/WinterJet2021/MayWin-Core-Backend/internal/domain/scheduling"
	"github.com/WinterJet2021/MayWin-Core-Backend/internal/platform/logger"
)

type Metrics struct {
	apiRequests    *CounterVec
	apiLatency     *HistogramVec
	apiInflight    *Gauge
	jobsFinished   *CounterVec
	jobDuration    *HistogramVec
	solverAttempts *CounterVec
	solverLatency  *HistogramVec
	queueBacklog   *Gauge
	queueRejected  *Counter
	jobsByStatus   *GaugeVec

	scrapeInterval time.Duration
}

type MetricsConfig struct {
	Enabled bool
	// ScrapeInterval paces the job-status gauge collector. Zero means 15s.
	ScrapeInterval time.Duration
}

var (
	initOnce sync.Once
	instance *Metrics
)

// Current is nil until Init ran with metrics enabled. Every method is nil-safe.
func Current() *Metrics {
	return instance
}

func Init(log *logger.Logger, cfg MetricsConfig) *Metrics {
	if !cfg.Enabled {
		return nil
	}
	initOnce.Do(func() {
		instance = NewMetrics()
		instance.scrapeInterval = cfg.ScrapeInterval
		if log != nil {
			log.Info("metrics enabled")
		}
	})
	return instance
}

// NewMetrics builds an unregistered set, mostly for tests.
func NewMetrics() *Metrics {
	return &Metrics{
		apiRequests: NewCounterVec("maywin_api_requests_total", "Total API requests by method/route/status.", []string{"method", "route", "status"}),
		apiLatency: NewHistogramVec(
			"maywin_api_request_duration_seconds",
			"API request latency in seconds by method/route.",
			[]string{"method", "route"},
			[]float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		),
		apiInflight:  NewGauge("maywin_api_inflight_requests", "In-flight API requests."),
		jobsFinished: NewCounterVec("maywin_jobs_finished_total", "Jobs that reached a terminal state by status/code.", []string{"status", "code"}),
		jobDuration: NewHistogramVec(
			"maywin_job_duration_seconds",
			"Wall time of one job run by terminal status.",
			[]string{"status"},
			[]float64{1, 5, 15, 30, 60, 90, 120, 300},
		),
		solverAttempts: NewCounterVec("maywin_solver_attempts_total", "Solver attempts by plan/outcome.", []string{"plan", "outcome"}),
		solverLatency: NewHistogramVec(
			"maywin_solver_attempt_duration_seconds",
			"Solver attempt wall time by plan.",
			[]string{"plan"},
			[]float64{0.5, 1, 5, 10, 20, 30, 45, 60},
		),
		queueBacklog:  NewGauge("maywin_job_queue_backlog", "Job ids waiting in the in-process queue."),
		queueRejected: NewCounter("maywin_job_queue_rejected_total", "Enqueue calls rejected because the queue was full."),
		jobsByStatus:  NewGaugeVec("maywin_jobs_by_status", "Stored jobs by status.", []string{"status"}),
	}
}

func (m *Metrics) WriteHTTP(w http.ResponseWriter, r *http.Request) {
	if m == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_ = m.WritePrometheus(w)
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	for _, c := range []interface{ WritePrometheus(io.Writer) error }{
		m.apiRequests, m.apiLatency, m.apiInflight,
		m.jobsFinished, m.jobDuration,
		m.solverAttempts, m.solverLatency,
		m.queueBacklog, m.queueRejected, m.jobsByStatus,
	} {
		if err := c.WritePrometheus(w); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) ObserveAPI(method, route string, status int, dur time.Duration) {
	if m == nil {
		return
	}
	if method == "" {
		method = "UNKNOWN"
	}
	if route == "" {
		route = "unknown"
	}
	m.apiRequests.Inc(method, route, strconv.Itoa(status))
	m.apiLatency.Observe(dur.Seconds(), method, route)
}

func (m *Metrics) APIInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) APIInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

func (m *Metrics) ObserveJob(status types.JobStatus, code string, dur time.Duration) {
	if m == nil {
		return
	}
	if code == "" {
		code = "none"
	}
	m.jobsFinished.Inc(string(status), code)
	m.jobDuration.Observe(dur.Seconds(), string(status))
}

func (m *Metrics) ObserveSolverAttempt(plan types.SolverPlan, good bool, dur time.Duration) {
	if m == nil {
		return
	}
	outcome := "infeasible"
	if good {
		outcome = "feasible"
	}
	m.solverAttempts.Inc(string(plan), outcome)
	m.solverLatency.Observe(dur.Seconds(), string(plan))
}

func (m *Metrics) SetQueueBacklog(n int) {
	if m == nil {
		return
	}
	m.queueBacklog.Set(float64(n))
}

func (m *Metrics) IncQueueRejected() {
	if m == nil {
		return
	}
	m.queueRejected.Inc()
}

// StartJobStatusCollector periodically counts schedule_jobs rows by status.
func (m *Metrics) StartJobStatusCollector(ctx context.Context, log *logger.Logger, db *gorm.DB) {
	if m == nil || db == nil {
		return
	}
	interval := m.scrapeInterval
	if interval <= 0 {
		interval = 15 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.collectJobStatuses(ctx, log, db)
			}
		}
	}()
}

func (m *Metrics) collectJobStatuses(ctx context.Context, log *logger.Logger, db *gorm.DB) {
	for _, s := range scheduling.AllJobStatuses() {
		m.jobsByStatus.Set(0, string(s))
	}
	var rows []struct {
		Status string
		Count  int64
	}
	if err := db.WithContext(ctx).
		Model(&types.ScheduleJob{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&rows).Error; err != nil {
		if log != nil {
			log.Warn("metrics: job status query failed", "error", err)
		}
		return
	}
	for _, row := range rows {
		status := strings.TrimSpace(row.Status)
		if status == "" {
			status = "unknown"
		}
		m.jobsByStatus.Set(float64(row.Count), status)
	}
}
