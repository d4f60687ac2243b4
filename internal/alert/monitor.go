package alert

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/RobertATU/LoRaWAN-Lamb-Link-Next/internal/metrics"
)

const (
	// queueSize 待发送告警缓冲，满时丢弃并计数
	queueSize = 256
	// sendTimeout 单条告警（含重试）的发送上限
	sendTimeout = 30 * time.Second
)

// Reading 单次上行中与姿态相关的数据
type Reading struct {
	SheepID   string
	DevEUI    string
	AcceleroX int
	Latitude  float64
	Longitude float64
}

// Monitor 组合 Detector 与 Sender；Sender 为 nil 时只记录日志。
// 状态判定在调用方同步完成，webhook 由单个后台协程按顺序投递，不阻塞入库。
type Monitor struct {
	detector *Detector
	sender   Sender
	metrics  *metrics.AppMetrics
	logger   *zap.Logger

	mu     sync.Mutex
	closed bool
	queue  chan Event
	done   chan struct{}
}

func NewMonitor(detector *Detector, sender Sender, m *metrics.AppMetrics, logger *zap.Logger) *Monitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	mon := &Monitor{detector: detector, sender: sender, metrics: m, logger: logger}
	if sender != nil {
		mon.queue = make(chan Event, queueSize)
		mon.done = make(chan struct{})
		go mon.run()
	}
	return mon
}

// Observe 处理一次读数，返回触发的告警类型。
// 返回的错误只来自计数存储；投递失败记录在日志与 alert_sent_total 中。
func (m *Monitor) Observe(ctx context.Context, r Reading) (Kind, error) {
	kind, err := m.detector.Observe(ctx, r.SheepID, r.AcceleroX)
	if err != nil || kind == KindNone {
		return kind, err
	}

	m.logger.Info("posture alert",
		zap.String("kind", string(kind)),
		zap.String("sheep", r.SheepID),
		zap.String("dev_eui", r.DevEUI),
		zap.Int("accelero_x", r.AcceleroX))
	if m.sender == nil {
		return kind, nil
	}

	ev := Event{
		Event:   kind,
		SheepID: r.SheepID,
		DevEUI:  r.DevEUI,
		Message: Message(kind, r.SheepID),
		Data: map[string]any{
			"latitude":   r.Latitude,
			"longitude":  r.Longitude,
			"accelero_x": r.AcceleroX,
		},
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		m.record(kind, "dropped")
		m.logger.Warn("alert dropped, monitor closed", zap.String("sheep", r.SheepID))
		return kind, nil
	}
	select {
	case m.queue <- ev:
	default:
		m.record(kind, "dropped")
		m.logger.Warn("alert queue full, dropping", zap.String("sheep", r.SheepID), zap.String("kind", string(kind)))
	}
	return kind, nil
}

// Close 停止接收新告警并等待队列发送完毕
func (m *Monitor) Close() {
	if m == nil || m.sender == nil {
		return
	}
	m.mu.Lock()
	if !m.closed {
		m.closed = true
		close(m.queue)
	}
	m.mu.Unlock()
	<-m.done
}

func (m *Monitor) run() {
	defer close(m.done)
	for ev := range m.queue {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		err := m.sender.Send(ctx, ev)
		cancel()

		result := "ok"
		if err != nil {
			result = "error"
			m.logger.Warn("alert webhook failed", zap.String("sheep", ev.SheepID), zap.Error(err))
		}
		m.record(ev.Event, result)
	}
}

func (m *Monitor) record(kind Kind, result string) {
	if m.metrics != nil {
		m.metrics.AlertSent.WithLabelValues(string(kind), result).Inc()
	}
}
