// Package prom exports deduplication metrics to Prometheus.
//
// A batch run is too short-lived to be scraped, so the CLI pushes the
// collected metrics to a Pushgateway when it finishes:
//
//	c := prom.New()
//	d, _ := lshdedup.NewDeduplicator(lshdedup.WithMetricsCollector(c))
//	res, err := d.Run(ctx, texts)
//	_ = c.Push(ctx, "http://pushgateway:9091", "lshdedup")
package prom

import (
	"context"
	"net/http"
	"time"

	"github.com/hupe1980/lshdedup"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/push"
)

var _ lshdedup.MetricsCollector = (*Collector)(nil)

// Stage labels.
const (
	StageBuild   = "build"
	StageQuery   = "query"
	StageCluster = "cluster"
)

type options struct {
	namespace   string
	constLabels prometheus.Labels
}

// Option configures a Collector.
type Option func(*options)

// WithNamespace sets the metric namespace. Default: "lshdedup".
func WithNamespace(ns string) Option {
	return func(o *options) { o.namespace = ns }
}

// WithConstLabels attaches labels to every metric, e.g. the corpus name.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(o *options) { o.constLabels = labels }
}

// Collector implements lshdedup.MetricsCollector on a private registry.
type Collector struct {
	registry *prometheus.Registry

	duration   *prometheus.HistogramVec
	errors     *prometheus.CounterVec
	runs       prometheus.Counter
	records    prometheus.Gauge
	candidates prometheus.Gauge
	groups     prometheus.Gauge
	duplicates prometheus.Gauge
	lastRun    prometheus.Gauge
}

// New creates a Collector with its metrics registered.
func New(optFns ...Option) *Collector {
	o := options{namespace: "lshdedup"}
	for _, fn := range optFns {
		fn(&o)
	}

	c := &Collector{
		registry: prometheus.NewRegistry(),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   o.namespace,
			Name:        "stage_duration_seconds",
			Help:        "Duration of pipeline stages.",
			Buckets:     prometheus.ExponentialBuckets(0.001, 4, 10),
			ConstLabels: o.constLabels,
		}, []string{"stage"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   o.namespace,
			Name:        "stage_errors_total",
			Help:        "Failed pipeline stages.",
			ConstLabels: o.constLabels,
		}, []string{"stage"}),
		runs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   o.namespace,
			Name:        "runs_total",
			Help:        "Completed deduplication runs.",
			ConstLabels: o.constLabels,
		}),
		records: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   o.namespace,
			Name:        "records",
			Help:        "Records in the last run.",
			ConstLabels: o.constLabels,
		}),
		candidates: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   o.namespace,
			Name:        "candidates",
			Help:        "Summed candidate set sizes in the last run.",
			ConstLabels: o.constLabels,
		}),
		groups: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   o.namespace,
			Name:        "groups",
			Help:        "Duplicate groups in the last run.",
			ConstLabels: o.constLabels,
		}),
		duplicates: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   o.namespace,
			Name:        "duplicates",
			Help:        "Records that are not the first of their group.",
			ConstLabels: o.constLabels,
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   o.namespace,
			Name:        "last_success_timestamp_seconds",
			Help:        "Unix time of the last completed run.",
			ConstLabels: o.constLabels,
		}),
	}

	c.registry.MustRegister(
		c.duration,
		c.errors,
		c.runs,
		c.records,
		c.candidates,
		c.groups,
		c.duplicates,
		c.lastRun,
	)
	return c
}

func (c *Collector) observe(stage string, d time.Duration, err error) {
	c.duration.WithLabelValues(stage).Observe(d.Seconds())
	if err != nil {
		c.errors.WithLabelValues(stage).Inc()
	}
}

// RecordBuild implements lshdedup.MetricsCollector.
func (c *Collector) RecordBuild(records int, d time.Duration, err error) {
	c.observe(StageBuild, d, err)
	if err == nil {
		c.records.Set(float64(records))
	}
}

// RecordQueries implements lshdedup.MetricsCollector.
func (c *Collector) RecordQueries(_, candidates int, d time.Duration, err error) {
	c.observe(StageQuery, d, err)
	if err == nil {
		c.candidates.Set(float64(candidates))
	}
}

// RecordCluster implements lshdedup.MetricsCollector. A successful
// cluster stage completes a run.
func (c *Collector) RecordCluster(groups, duplicates int, d time.Duration, err error) {
	c.observe(StageCluster, d, err)
	if err != nil {
		return
	}
	c.groups.Set(float64(groups))
	c.duplicates.Set(float64(duplicates))
	c.runs.Inc()
	c.lastRun.SetToCurrentTime()
}

// Registry returns the registry holding the metrics.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// Handler serves the metrics for scraping.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Push replaces the job's metrics on the Pushgateway at url.
func (c *Collector) Push(ctx context.Context, url, job string) error {
	return push.New(url, job).Gatherer(c.registry).PushContext(ctx)
}
