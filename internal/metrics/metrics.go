// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// ミドルウェアやサービス層から利用する。
type MetricsCollector interface {
	RecordHTTPStatus(statusCode int)
	RecordHTTPLatency(duration time.Duration)
	RecordLoginFailure()
	RecordRequestTransition(transition string)
	RecordMailDispatched()
	RecordMailFailed()
	RecordMailDropped()
	SetMailQueueDepth(depth int)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	httpStatus        *prometheus.CounterVec
	httpLatency       prometheus.Histogram
	loginFailures     prometheus.Counter
	requestTransition *prometheus.CounterVec
	mailDispatched    prometheus.Counter
	mailFailed        prometheus.Counter
	mailDropped       prometheus.Counter
	mailQueueDepth    prometheus.Gauge
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "partyup_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		httpLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "partyup_http_latency_seconds",
			Help:    "HTTPリクエスト処理のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		loginFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "partyup_login_failures_total",
			Help: "ログイン失敗の合計数",
		}),
		requestTransition: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "partyup_group_request_transitions_total",
			Help: "参加リクエストの状態遷移数",
		}, []string{"transition"}),
		mailDispatched: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "partyup_mail_dispatched_total",
			Help: "送信に成功したメールの合計数",
		}),
		mailFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "partyup_mail_failed_total",
			Help: "送信に失敗したメールの合計数",
		}),
		mailDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "partyup_mail_dropped_total",
			Help: "キュー満杯で破棄されたメールの合計数",
		}),
		mailQueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "partyup_mail_queue_depth",
			Help: "メールキューの現在の深さ",
		}),
	}

	reg.MustRegister(
		c.httpStatus,
		c.httpLatency,
		c.loginFailures,
		c.requestTransition,
		c.mailDispatched,
		c.mailFailed,
		c.mailDropped,
		c.mailQueueDepth,
	)

	return c
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordHTTPLatency はリクエスト処理のレイテンシを記録する。
func (c *Collector) RecordHTTPLatency(duration time.Duration) {
	c.httpLatency.Observe(duration.Seconds())
}

// RecordLoginFailure はログイン失敗を記録する。
func (c *Collector) RecordLoginFailure() {
	c.loginFailures.Inc()
}

// RecordRequestTransition は参加リクエストの状態遷移を記録する。
// transitionは"created"/"accepted"/"rejected"のいずれか。
func (c *Collector) RecordRequestTransition(transition string) {
	c.requestTransition.WithLabelValues(transition).Inc()
}

// RecordMailDispatched はメール送信成功を記録する。
func (c *Collector) RecordMailDispatched() {
	c.mailDispatched.Inc()
}

// RecordMailFailed はメール送信失敗を記録する。
func (c *Collector) RecordMailFailed() {
	c.mailFailed.Inc()
}

// RecordMailDropped はキュー満杯によるメール破棄を記録する。
func (c *Collector) RecordMailDropped() {
	c.mailDropped.Inc()
}

// SetMailQueueDepth はメールキューの現在の深さを記録する。
func (c *Collector) SetMailQueueDepth(depth int) {
	c.mailQueueDepth.Set(float64(depth))
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetupMetricsRoute は/metricsエンドポイントを提供するHTTPハンドラーを返す。
// Prometheusスクレイプに対応する。
func SetupMetricsRoute(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	return mux
}
