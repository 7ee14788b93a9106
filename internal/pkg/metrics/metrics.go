package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics はアプリケーションのメトリクスを管理する
type Metrics struct {
	// HTTPリクエストの総数（method, path, status_code）
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPリクエストのレイテンシ（method, path）
	HTTPRequestDuration *prometheus.HistogramVec

	// 予約作成の結果（outcome: created, debt, capacity, lock_failed, error）
	ReservationsTotal *prometheus.CounterVec

	// 支払い登録の結果（outcome: registered, overpayment, not_allowed, error）
	PaymentsTotal *prometheus.CounterVec

	// 状態遷移の回数（from, to, trigger）
	StateTransitionsTotal *prometheus.CounterVec

	// 分散ロックの操作時間（operation: acquire/release, status: success/failed）
	DistributedLockDuration *prometheus.HistogramVec

	// 定期ジョブで自動キャンセルした予約数（status）
	ExpiredReservationsTotal *prometheus.CounterVec

	// 送信した入金催促の数
	PaymentRemindersTotal prometheus.Counter
}

// New は新しいMetricsインスタンスを作成し、デフォルトレジストリに登録する
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry は指定したレジストリにメトリクスを登録する
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		ReservationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reservations_created_total",
				Help: "Total number of reservation creation attempts by outcome",
			},
			[]string{"outcome"},
		),
		PaymentsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payments_registered_total",
				Help: "Total number of payment registration attempts by outcome",
			},
			[]string{"outcome"},
		),
		StateTransitionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reservation_state_transitions_total",
				Help: "Total number of reservation state transitions",
			},
			[]string{"from", "to", "trigger"},
		),
		DistributedLockDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "distributed_lock_duration_seconds",
				Help:    "Time spent on distributed lock operations",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"operation", "status"},
		),
		ExpiredReservationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reservations_expired_total",
				Help: "Total number of reservations cancelled by the expiry sweep",
			},
			[]string{"status"},
		),
		PaymentRemindersTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "payment_reminders_total",
				Help: "Total number of payment reminders published",
			},
		),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.ReservationsTotal,
		m.PaymentsTotal,
		m.StateTransitionsTotal,
		m.DistributedLockDuration,
		m.ExpiredReservationsTotal,
		m.PaymentRemindersTotal,
	)

	return m
}

// 以下のヘルパーは nil レシーバーでも安全に呼び出せる

// ObserveReservation は予約作成の結果を記録する
func (m *Metrics) ObserveReservation(outcome string) {
	if m == nil {
		return
	}
	m.ReservationsTotal.WithLabelValues(outcome).Inc()
}

// ObservePayment は支払い登録の結果を記録する
func (m *Metrics) ObservePayment(outcome string) {
	if m == nil {
		return
	}
	m.PaymentsTotal.WithLabelValues(outcome).Inc()
}

// ObserveTransition は状態遷移を記録する。作成時は from を "none" とする
func (m *Metrics) ObserveTransition(from, to, trigger string) {
	if m == nil {
		return
	}
	if from == "" {
		from = "none"
	}
	m.StateTransitionsTotal.WithLabelValues(from, to, trigger).Inc()
}

// ObserveLock はロック操作の所要時間を記録する
func (m *Metrics) ObserveLock(operation string, start time.Time, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "failed"
	}
	m.DistributedLockDuration.WithLabelValues(operation, status).Observe(time.Since(start).Seconds())
}

// ObserveExpired は自動キャンセル件数を記録する
func (m *Metrics) ObserveExpired(status string, count int) {
	if m == nil || count == 0 {
		return
	}
	m.ExpiredReservationsTotal.WithLabelValues(status).Add(float64(count))
}

// ObserveReminder は入金催促の送信を記録する
func (m *Metrics) ObserveReminder() {
	if m == nil {
		return
	}
	m.PaymentRemindersTotal.Inc()
}

// デフォルトのメトリクスインスタンス
var defaultMetrics *Metrics

// Init はデフォルトのメトリクスインスタンスを初期化する
func Init() *Metrics {
	defaultMetrics = New()
	return defaultMetrics
}

// Get はデフォルトのメトリクスインスタンスを返す
func Get() *Metrics {
	return defaultMetrics
}
