// Package metrics 定义服务的 Prometheus 指标。
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/top3pick/phonerec/pipeline"
)

var (
	// API
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "phonerec_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "phonerec_api_request_duration_seconds",
			Help:    "API request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// 推荐
	RecommendationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "phonerec_recommendations_total",
			Help: "Total number of recommendation queries by mode and outcome",
		},
		[]string{"mode", "outcome"}, // mode: text/specs, outcome: ok/empty/error
	)

	RecommendationResults = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "phonerec_recommendation_results",
			Help:    "Number of phones returned per recommendation query",
			Buckets: []float64{0, 1, 2, 3, 5, 10, 20, 50, 100},
		},
		[]string{"mode"},
	)

	PipelineNodeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "phonerec_pipeline_node_duration_seconds",
			Help:    "Duration of a single pipeline node",
			Buckets: []float64{0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		},
		[]string{"node", "kind"},
	)

	PipelineNodeDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "phonerec_pipeline_node_dropped_total",
			Help: "Candidates removed by a pipeline node",
		},
		[]string{"node"},
	)

	PipelineNodeErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "phonerec_pipeline_node_errors_total",
			Help: "Errors returned by a pipeline node",
		},
		[]string{"node"},
	)

	// 引擎
	EngineBuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "phonerec_engine_build_duration_seconds",
			Help:    "Time spent building features and the text index",
			Buckets: prometheus.DefBuckets,
		},
	)

	EngineCatalogSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "phonerec_engine_catalog_phones",
			Help: "Number of phones in the active engine",
		},
	)

	EngineVocabularySize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "phonerec_engine_vocabulary_terms",
			Help: "Number of terms in the active text index",
		},
	)

	EngineReloadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "phonerec_engine_reloads_total",
			Help: "Engine init and reload attempts",
		},
		[]string{"source", "result"}, // source: snapshot/train
	)

	SnapshotOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "phonerec_snapshot_operations_total",
			Help: "Snapshot save/load operations",
		},
		[]string{"op", "backend", "result"},
	)

	CatalogDefaultedFields = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "phonerec_catalog_defaulted_fields_total",
			Help: "Numeric catalog fields replaced by the default value during ingestion",
		},
	)
)

// RecordAPIRequest 记录一次 HTTP 请求。
func RecordAPIRequest(method, route string, status int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordRecommendation 记录一次推荐查询。
func RecordRecommendation(mode string, results int, err error) {
	outcome := "ok"
	switch {
	case err != nil:
		outcome = "error"
	case results == 0:
		outcome = "empty"
	}
	RecommendationsTotal.WithLabelValues(mode, outcome).Inc()
	if err == nil {
		RecommendationResults.WithLabelValues(mode).Observe(float64(results))
	}
}

// ObserveNode 实现 pipeline.Observer。
func ObserveNode(node pipeline.Node, in, out int, elapsed time.Duration, err error) {
	PipelineNodeDuration.WithLabelValues(node.Name(), string(node.Kind())).Observe(elapsed.Seconds())
	if err != nil {
		PipelineNodeErrors.WithLabelValues(node.Name()).Inc()
		return
	}
	if in > out {
		PipelineNodeDropped.WithLabelValues(node.Name()).Add(float64(in - out))
	}
}

var _ pipeline.Observer = ObserveNode

// RecordEngineBuild 记录一次引擎构建。
func RecordEngineBuild(duration time.Duration, phones, vocabulary, defaulted int) {
	EngineBuildDuration.Observe(duration.Seconds())
	SetEngineSize(phones, vocabulary)
	CatalogDefaultedFields.Add(float64(defaulted))
}

// SetEngineSize 更新当前引擎规模。
func SetEngineSize(phones, vocabulary int) {
	EngineCatalogSize.Set(float64(phones))
	EngineVocabularySize.Set(float64(vocabulary))
}

// RecordReload 记录一次初始化/重载。
func RecordReload(source string, err error) {
	EngineReloadsTotal.WithLabelValues(source, result(err)).Inc()
}

// RecordSnapshot 记录一次快照读写。
func RecordSnapshot(op, backend string, err error) {
	SnapshotOperations.WithLabelValues(op, backend, result(err)).Inc()
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
