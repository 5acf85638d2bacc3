package prometheus

import (
	"strconv"
	"time"

	"github.com/turtacn/CohortMap/internal/application/orgchart"
	"github.com/turtacn/CohortMap/pkg/errors"
)

// AppMetrics holds all application metrics.
type AppMetrics struct {
	// HTTP Layer
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec
	HTTPActiveRequests  GaugeVec

	// gRPC Layer
	GRPCRequestsTotal   CounterVec
	GRPCRequestDuration HistogramVec

	// Hierarchy Layer
	BuildsTotal      CounterVec
	BuildDuration    HistogramVec
	CacheHitsTotal   CounterVec
	CacheMissesTotal CounterVec
	IngestTotal      CounterVec
	IngestRows       HistogramVec
	NoDataTotal      CounterVec
	ExportsTotal     CounterVec

	// System Health
	HealthCheckStatus GaugeVec
	ErrorsTotal       CounterVec
}

var _ orgchart.Metrics = (*AppMetrics)(nil)

// Default Buckets
var (
	DefaultHTTPDurationBuckets  = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	DefaultBuildDurationBuckets = []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1}
	DefaultRowBuckets           = []float64{10, 50, 100, 500, 1000, 5000, 10000, 50000}
)

// NewAppMetrics registers all metrics and returns AppMetrics struct.
func NewAppMetrics(collector MetricsCollector) *AppMetrics {
	m := &AppMetrics{}

	// HTTP
	m.HTTPRequestsTotal = collector.RegisterCounter("http_requests_total", "Total HTTP requests", "method", "path", "status_code")
	m.HTTPRequestDuration = collector.RegisterHistogram("http_request_duration_seconds", "HTTP request duration", DefaultHTTPDurationBuckets, "method", "path")
	m.HTTPActiveRequests = collector.RegisterGauge("http_active_requests", "Active HTTP requests", "method")

	// gRPC
	m.GRPCRequestsTotal = collector.RegisterCounter("grpc_requests_total", "Total gRPC requests", "service", "method", "code")
	m.GRPCRequestDuration = collector.RegisterHistogram("grpc_request_duration_seconds", "gRPC request duration", DefaultHTTPDurationBuckets, "service", "method")

	// Hierarchy
	m.BuildsTotal = collector.RegisterCounter("hierarchy_builds_total", "Hierarchy builds", "result")
	m.BuildDuration = collector.RegisterHistogram("hierarchy_build_duration_seconds", "Hierarchy build duration", DefaultBuildDurationBuckets)
	m.CacheHitsTotal = collector.RegisterCounter("cache_hits_total", "Cache hits", "cache")
	m.CacheMissesTotal = collector.RegisterCounter("cache_misses_total", "Cache misses", "cache")
	m.IngestTotal = collector.RegisterCounter("dataset_ingest_total", "Dataset uploads", "result")
	m.IngestRows = collector.RegisterHistogram("dataset_ingest_rows", "Rows per accepted upload", DefaultRowBuckets)
	m.NoDataTotal = collector.RegisterCounter("hierarchy_no_data_total", "Views that matched no data", "region")
	m.ExportsTotal = collector.RegisterCounter("exports_total", "CSV exports", "kind", "target")

	// System Health
	m.HealthCheckStatus = collector.RegisterGauge("health_check_status", "Health check status (1=up, 0=down)", "component")
	m.ErrorsTotal = collector.RegisterCounter("errors_total", "Total errors by code", "component", "code")

	return m
}

// ObserveBuild records one hierarchy build.
func (m *AppMetrics) ObserveBuild(d time.Duration, err error) {
	m.BuildsTotal.WithLabelValues(result(err)).Inc()
	if err == nil {
		m.BuildDuration.WithLabelValues().Observe(d.Seconds())
		return
	}
	RecordError(m, "builder", err)
}

// ObserveCache records a memo lookup.
func (m *AppMetrics) ObserveCache(hit bool) {
	RecordCacheAccess(m, "memo", hit)
}

// ObserveIngest records one upload of a table pair.
func (m *AppMetrics) ObserveIngest(rows int, err error) {
	m.IngestTotal.WithLabelValues(result(err)).Inc()
	if err == nil {
		m.IngestRows.WithLabelValues().Observe(float64(rows))
		return
	}
	RecordError(m, "ingest", err)
}

// ObserveNoData records a view whose filters matched nothing.
func (m *AppMetrics) ObserveNoData(region string) {
	m.NoDataTotal.WithLabelValues(region).Inc()
}

// Helpers

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func RecordHTTPRequest(metrics *AppMetrics, method, path string, statusCode int, duration time.Duration) {
	metrics.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	metrics.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

func RecordGRPCRequest(metrics *AppMetrics, service, method, code string, duration time.Duration) {
	metrics.GRPCRequestsTotal.WithLabelValues(service, method, code).Inc()
	metrics.GRPCRequestDuration.WithLabelValues(service, method).Observe(duration.Seconds())
}

func RecordCacheAccess(metrics *AppMetrics, cache string, hit bool) {
	if hit {
		metrics.CacheHitsTotal.WithLabelValues(cache).Inc()
	} else {
		metrics.CacheMissesTotal.WithLabelValues(cache).Inc()
	}
}

func RecordExport(metrics *AppMetrics, kind string, stored bool) {
	target := "download"
	if stored {
		target = "object_store"
	}
	metrics.ExportsTotal.WithLabelValues(kind, target).Inc()
}

func RecordHealth(metrics *AppMetrics, component string, up bool) {
	v := 0.0
	if up {
		v = 1
	}
	metrics.HealthCheckStatus.WithLabelValues(component).Set(v)
}

// RecordError counts err under its application error code.
func RecordError(metrics *AppMetrics, component string, err error) {
	code := errors.GetCode(err)
	metrics.ErrorsTotal.WithLabelValues(component, string(code)).Inc()
}

//Personal.AI order the ending
