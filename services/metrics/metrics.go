// Package metrics collects and exposes Prometheus metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/trezcool/scorebook/core/roster"
)

// Collector implements roster.Recorder and counts imports, logins and HTTP requests.
type Collector struct {
	scoreUpdates prometheus.Counter
	saves        prometheus.Counter
	saveFailures prometheus.Counter
	imports      prometheus.Counter
	importedRows prometheus.Counter
	logins       *prometheus.CounterVec
	requests     *prometheus.CounterVec
	latency      prometheus.Histogram
}

var _ roster.Recorder = (*Collector)(nil)

// NewCollector creates a Collector and registers its metrics on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		scoreUpdates: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scorebook_score_updates_total",
			Help: "Number of score writes.",
		}),
		saves: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scorebook_saves_total",
			Help: "Number of snapshot saves, failed ones included.",
		}),
		saveFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scorebook_save_failures_total",
			Help: "Number of snapshot saves that failed.",
		}),
		imports: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scorebook_imports_total",
			Help: "Number of bulk class imports.",
		}),
		importedRows: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scorebook_imported_students_total",
			Help: "Number of students created by bulk imports.",
		}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scorebook_logins_total",
			Help: "Number of login attempts by outcome.",
		}, []string{"outcome"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scorebook_http_requests_total",
			Help: "Number of API responses by method and status code.",
		}, []string{"method", "status_code"}),
		latency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "scorebook_http_request_duration_seconds",
			Help:    "API request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.scoreUpdates,
		c.saves,
		c.saveFailures,
		c.imports,
		c.importedRows,
		c.logins,
		c.requests,
		c.latency,
	)
	return c
}

func (c *Collector) RecordScoreUpdate() {
	c.scoreUpdates.Inc()
}

func (c *Collector) RecordSave(err error) {
	c.saves.Inc()
	if err != nil {
		c.saveFailures.Inc()
	}
}

// RecordImport counts one bulk import of `students` names.
func (c *Collector) RecordImport(students int) {
	c.imports.Inc()
	c.importedRows.Add(float64(students))
}

func (c *Collector) RecordLogin(ok bool) {
	outcome := "failure"
	if ok {
		outcome = "success"
	}
	c.logins.WithLabelValues(outcome).Inc()
}

func (c *Collector) RecordRequest(method string, statusCode int, d time.Duration) {
	c.requests.WithLabelValues(method, strconv.Itoa(statusCode)).Inc()
	c.latency.Observe(d.Seconds())
}

// Handler serves the metrics gathered by `gatherer` in the Prometheus text format.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
