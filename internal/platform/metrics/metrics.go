// Package metrics exposes the service's Prometheus instruments.
//
// Exported series:
//
//	hos_compliance_checks_total{result}         evaluator calls by outcome
//	hos_violations_total{kind}                  violations found by compliance and trip checks
//	hos_duty_status_changes_total{status}       accepted duty-status changes
//	hos_log_certifications_total{action}        certified and uncertified log days
//	hos_replay_failures_total                   histories rejected as inconsistent
//	hos_operation_duration_seconds{op,outcome}  timed repository/provider calls
//	http_requests_total{method,code}            served requests
//
// All Record methods are safe on a nil *Collector so callers can run without metrics.
package metrics

import (
	"eld-hos-service/internal/domain"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Collector struct {
	checks         *prometheus.CounterVec
	violations     *prometheus.CounterVec
	statusChanges  *prometheus.CounterVec
	certifications *prometheus.CounterVec
	replayFailures prometheus.Counter
	opDuration     *prometheus.HistogramVec
	httpRequests   *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// NewCollector registers the instruments on reg. A nil reg uses a fresh registry.
func NewCollector(reg *prometheus.Registry) *Collector {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	c := &Collector{
		checks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hos_compliance_checks_total",
			Help: "Compliance evaluations by result.",
		}, []string{"result"}),
		violations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hos_violations_total",
			Help: "HOS violations reported, by kind.",
		}, []string{"kind"}),
		statusChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hos_duty_status_changes_total",
			Help: "Accepted duty-status changes, by new status.",
		}, []string{"status"}),
		certifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hos_log_certifications_total",
			Help: "Daily log certification changes, by action.",
		}, []string{"action"}),
		replayFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hos_replay_failures_total",
			Help: "Duty histories that could not be replayed.",
		}),
		opDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "hos_operation_duration_seconds",
			Help:    "Latency of timed repository and provider operations.",
			Buckets: prometheus.DefBuckets,
		}, []string{"op", "outcome"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests served, by method and status code.",
		}, []string{"method", "code"}),
		gatherer: reg,
	}

	reg.MustRegister(
		c.checks,
		c.violations,
		c.statusChanges,
		c.certifications,
		c.replayFailures,
		c.opDuration,
		c.httpRequests,
	)

	return c
}

func (c *Collector) RecordCheck(res domain.ComplianceResult) {
	if c == nil {
		return
	}
	result := "can_drive"
	if !res.CanDrive {
		result = "cannot_drive"
	}
	c.checks.WithLabelValues(result).Inc()
	for _, v := range res.Violations {
		c.violations.WithLabelValues(string(v.Kind)).Inc()
	}
}

func (c *Collector) RecordInvalidCheck() {
	if c == nil {
		return
	}
	c.checks.WithLabelValues("invalid").Inc()
}

func (c *Collector) RecordStatusChange(s domain.DutyStatus) {
	if c == nil {
		return
	}
	c.statusChanges.WithLabelValues(string(s)).Inc()
}

// RecordCertification counts n log days under action (certify or uncertify).
func (c *Collector) RecordCertification(action string, n int) {
	if c == nil {
		return
	}
	c.certifications.WithLabelValues(action).Add(float64(n))
}

func (c *Collector) RecordReplayFailure() {
	if c == nil {
		return
	}
	c.replayFailures.Inc()
}

// ObserveOperation matches obs.Recorder so timed operations feed the histogram.
func (c *Collector) ObserveOperation(op string, d time.Duration, err error) {
	if c == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	c.opDuration.WithLabelValues(op, outcome).Observe(d.Seconds())
}

func (c *Collector) RecordRequest(method string, code int) {
	if c == nil {
		return
	}
	c.httpRequests.WithLabelValues(method, strconv.Itoa(code)).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}
