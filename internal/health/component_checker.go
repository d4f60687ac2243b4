package health

import (
	"context"
	"time"
)

// Connector 报告连接状态的组件（MQTT 订阅者）
type Connector interface {
	IsConnected() bool
}

// MQTTChecker MQTT 断线时 HTTP 上行仍可用，因此只降级
type MQTTChecker struct {
	conn Connector
}

func NewMQTTChecker(conn Connector) *MQTTChecker {
	return &MQTTChecker{conn: conn}
}

func (c *MQTTChecker) Name() string { return "mqtt" }

func (c *MQTTChecker) Check(_ context.Context) CheckResult {
	start := time.Now()
	if !c.conn.IsConnected() {
		return CheckResult{Status: StatusDegraded, Message: "broker disconnected", Latency: time.Since(start)}
	}
	return CheckResult{Status: StatusHealthy, Message: "ok", Latency: time.Since(start)}
}

// FuncChecker 以函数实现检查器
type FuncChecker struct {
	name string
	fn   func(ctx context.Context) CheckResult
}

func NewFuncChecker(name string, fn func(ctx context.Context) CheckResult) *FuncChecker {
	return &FuncChecker{name: name, fn: fn}
}

func (c *FuncChecker) Name() string { return c.name }

func (c *FuncChecker) Check(ctx context.Context) CheckResult { return c.fn(ctx) }
