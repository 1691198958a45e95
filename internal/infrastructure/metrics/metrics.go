package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "utility_kpi"

// 報表計算耗時的秒數分桶
var buckets = []float64{.001, .005, .01, .05, .1, .5, 1}

// Metrics 收集報表、快取與資料載入的指標；每個實例使用自己的 registry。
type Metrics struct {
	registry *prometheus.Registry

	reportDuration *prometheus.HistogramVec
	cacheHits      *prometheus.CounterVec
	cacheMisses    *prometheus.CounterVec
	loaded         *prometheus.CounterVec
	rejected       *prometheus.CounterVec
	snapshotSize   prometheus.Gauge
	lastIngestion  prometheus.Gauge
}

// New 建立並註冊所有指標，含 Go runtime 與 process collector。
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		reportDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "report_duration_seconds",
			Help:      "Time taken to compute a report.",
			Buckets:   buckets,
		}, []string{"report"}),
		cacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "Report results served from cache.",
		}, []string{"report"}),
		cacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_misses_total",
			Help:      "Report results computed on cache miss.",
		}, []string{"report"}),
		loaded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_loaded_total",
			Help:      "Monthly records accepted by ingestion.",
		}, []string{"source"}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_rejected_total",
			Help:      "Monthly records rejected by validation.",
		}, []string{"source"}),
		snapshotSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "snapshot_records",
			Help:      "Records in the active snapshot.",
		}),
		lastIngestion: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_ingestion_timestamp_seconds",
			Help:      "Unix time of the last successful ingestion.",
		}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.reportDuration,
		m.cacheHits,
		m.cacheMisses,
		m.loaded,
		m.rejected,
		m.snapshotSize,
		m.lastIngestion,
	)
	return m
}

// Handler 回傳 /metrics 的 HTTP handler。
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry 供測試或額外 collector 使用。
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) ObserveReport(report string, took time.Duration) {
	m.reportDuration.WithLabelValues(report).Observe(took.Seconds())
}

func (m *Metrics) CacheHit(report string) {
	m.cacheHits.WithLabelValues(report).Inc()
}

func (m *Metrics) CacheMiss(report string) {
	m.cacheMisses.WithLabelValues(report).Inc()
}

// ObserveIngestion 記錄一次載入；loaded 即為新快照的筆數。
func (m *Metrics) ObserveIngestion(source string, loaded, failed int) {
	m.loaded.WithLabelValues(source).Add(float64(loaded))
	m.rejected.WithLabelValues(source).Add(float64(failed))
	m.snapshotSize.Set(float64(loaded))
	m.lastIngestion.SetToCurrentTime()
}
