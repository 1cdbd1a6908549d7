// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// UpstreamRecorder は上流API呼び出しのメトリクス収集インターフェース。
// upstreamパッケージから利用する。
type UpstreamRecorder interface {
	RecordUpstreamRequest(target string, statusCode int, duration time.Duration)
	RecordUpstreamTransportError(target string)
}

// SagaRecorder はアカウント削除サーガのステップ結果を記録するインターフェース。
type SagaRecorder interface {
	RecordSagaStep(step string, succeeded bool)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	upstreamRequests *prometheus.CounterVec
	upstreamErrors   *prometheus.CounterVec
	upstreamLatency  *prometheus.HistogramVec
	sagaSteps        *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		upstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "remeet_upstream_requests_total",
			Help: "上流API呼び出しの合計数（ターゲット・HTTPステータス別）",
		}, []string{"target", "status_code"}),
		upstreamErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "remeet_upstream_transport_errors_total",
			Help: "上流API呼び出しのトランスポート失敗の合計数",
		}, []string{"target"}),
		upstreamLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "remeet_upstream_latency_seconds",
			Help:    "上流API呼び出しのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}, []string{"target"}),
		sagaSteps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "remeet_deletion_step_total",
			Help: "アカウント削除サーガのステップ実行結果の合計数",
		}, []string{"step", "outcome"}),
	}

	reg.MustRegister(
		c.upstreamRequests,
		c.upstreamErrors,
		c.upstreamLatency,
		c.sagaSteps,
	)

	return c
}

// RecordUpstreamRequest は上流API呼び出しの結果を記録する。
func (c *Collector) RecordUpstreamRequest(target string, statusCode int, duration time.Duration) {
	c.upstreamRequests.WithLabelValues(target, strconv.Itoa(statusCode)).Inc()
	c.upstreamLatency.WithLabelValues(target).Observe(duration.Seconds())
}

// RecordUpstreamTransportError は上流API呼び出しのトランスポート失敗を記録する。
func (c *Collector) RecordUpstreamTransportError(target string) {
	c.upstreamErrors.WithLabelValues(target).Inc()
}

// RecordSagaStep はサーガのステップ実行結果を記録する。
func (c *Collector) RecordSagaStep(step string, succeeded bool) {
	outcome := "success"
	if !succeeded {
		outcome = "failure"
	}
	c.sagaSteps.WithLabelValues(step, outcome).Inc()
}

// Handler は指定されたGathererのPrometheusエクスポジションハンドラーを返す。
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// compile-time interface check
var _ UpstreamRecorder = (*Collector)(nil)
var _ SagaRecorder = (*Collector)(nil)
