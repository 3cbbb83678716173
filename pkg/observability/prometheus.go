package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "mdaograph"

// PrometheusHooks implements every hook interface on top of Prometheus
// collectors.
type PrometheusHooks struct {
	stageRuns     *prometheus.CounterVec
	stageDuration *prometheus.HistogramVec
	stageNodes    *prometheus.GaugeVec
	findings      *prometheus.CounterVec

	cacheLookups *prometheus.CounterVec
	cacheBytes   *prometheus.CounterVec

	httpInFlight *prometheus.GaugeVec
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// NewPrometheusHooks registers the collectors with reg. Passing
// prometheus.DefaultRegisterer exposes them on promhttp.Handler.
func NewPrometheusHooks(reg prometheus.Registerer) *PrometheusHooks {
	f := promauto.With(reg)
	return &PrometheusHooks{
		stageRuns: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "stage",
				Name:      "runs_total",
				Help:      "Total number of stage transforms by outcome",
			},
			[]string{"stage", "outcome"},
		),
		stageDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "stage",
				Name:      "duration_seconds",
				Help:      "Stage transform latency in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 14), // 0.1ms to ~0.8s
			},
			[]string{"stage"},
		),
		stageNodes: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "stage",
				Name:      "nodes",
				Help:      "Node count of the last graph produced by a stage",
			},
			[]string{"stage"},
		),
		findings: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "validate",
				Name:      "findings_total",
				Help:      "Total number of validation findings",
			},
			[]string{"stage"},
		),
		cacheLookups: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "cache",
				Name:      "lookups_total",
				Help:      "Total number of cache lookups by result",
			},
			[]string{"stage", "result"},
		),
		cacheBytes: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "cache",
				Name:      "written_bytes_total",
				Help:      "Total bytes written to the cache",
			},
			[]string{"stage"},
		),
		httpInFlight: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_in_flight",
				Help:      "Number of requests being served",
			},
			[]string{"route"},
		),
		httpRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "code"},
		),
		httpDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request latency in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
			},
			[]string{"method", "route"},
		),
	}
}

func (p *PrometheusHooks) OnStageStart(context.Context, string, int) {}

func (p *PrometheusHooks) OnStageComplete(_ context.Context, stage string, nodes, _ int, d time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	p.stageRuns.WithLabelValues(stage, outcome).Inc()
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
	if err == nil {
		p.stageNodes.WithLabelValues(stage).Set(float64(nodes))
	}
}

func (p *PrometheusHooks) OnValidate(_ context.Context, stage string, findings int) {
	p.findings.WithLabelValues(stage).Add(float64(findings))
}

func (p *PrometheusHooks) OnCacheHit(_ context.Context, keyType string) {
	p.cacheLookups.WithLabelValues(keyType, "hit").Inc()
}

func (p *PrometheusHooks) OnCacheMiss(_ context.Context, keyType string) {
	p.cacheLookups.WithLabelValues(keyType, "miss").Inc()
}

func (p *PrometheusHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	p.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

func (p *PrometheusHooks) OnRequest(_ context.Context, _, route string) {
	p.httpInFlight.WithLabelValues(route).Inc()
}

func (p *PrometheusHooks) OnResponse(_ context.Context, method, route string, code int, d time.Duration) {
	p.httpInFlight.WithLabelValues(route).Dec()
	p.httpRequests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	p.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

var (
	_ PipelineHooks = (*PrometheusHooks)(nil)
	_ CacheHooks    = (*PrometheusHooks)(nil)
	_ HTTPHooks     = (*PrometheusHooks)(nil)
)
