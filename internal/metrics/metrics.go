package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRegistry 创建自定义 Prometheus Registry，并注册常用采集器
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler 返回 Prometheus 指标 HTTP 处理器
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

// 解码结果标签
const (
	ResultOK         = "ok"
	ResultTooShort   = "too_short"
	ResultBadPayload = "bad_payload"
)

// AppMetrics 自定义业务指标
type AppMetrics struct {
	UplinkReceived  *prometheus.CounterVec // labels: source=http|mqtt
	UplinkDecode    *prometheus.CounterVec // labels: result
	UplinkDuplicate prometheus.Counter
	PinStored       prometheus.Counter
	AlertSent       *prometheus.CounterVec // labels: kind, result
	LiveClients     prometheus.Gauge       // 当前 websocket 订阅数
}

// NewAppMetrics 注册并返回业务指标
func NewAppMetrics(reg prometheus.Registerer) *AppMetrics {
	m := &AppMetrics{
		UplinkReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "uplink_received_total",
			Help: "Uplink events received by source.",
		}, []string{"source"}),
		UplinkDecode: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "uplink_decode_total",
			Help: "Uplink frame decode attempts.",
		}, []string{"result"}),
		UplinkDuplicate: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "uplink_duplicate_total",
			Help: "Uplinks dropped as duplicates (devEUI, fCnt).",
		}),
		PinStored: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pin_stored_total",
			Help: "Pins persisted.",
		}),
		AlertSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "alert_sent_total",
			Help: "Posture alerts delivered.",
		}, []string{"kind", "result"}),
		LiveClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "livefeed_clients",
			Help: "Current number of live map subscribers.",
		}),
	}
	reg.MustRegister(m.UplinkReceived, m.UplinkDecode, m.UplinkDuplicate, m.PinStored, m.AlertSent, m.LiveClients)
	return m
}
