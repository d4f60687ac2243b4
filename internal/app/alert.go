package app

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/RobertATU/LoRaWAN-Lamb-Link-Next/internal/alert"
	cfgpkg "github.com/RobertATU/LoRaWAN-Lamb-Link-Next/internal/config"
	"github.com/RobertATU/LoRaWAN-Lamb-Link-Next/internal/flock"
	"github.com/RobertATU/LoRaWAN-Lamb-Link-Next/internal/metrics"
)

// NewAlertMonitor 姿态告警；未启用 webhook 时只记录日志
func NewAlertMonitor(cfg cfgpkg.AlertConfig, counter alert.StreakCounter, m *metrics.AppMetrics, log *zap.Logger) *alert.Monitor {
	var sender alert.Sender
	if cfg.Enabled {
		sender = alert.NewWebhook(&http.Client{Timeout: cfg.Timeout}, cfg.WebhookURL, cfg.APIKey, cfg.Secret)
		log.Info("posture alert webhook enabled", zap.String("url", cfg.WebhookURL), zap.Int("threshold", cfg.Threshold))
	}
	return alert.NewMonitor(alert.NewDetector(counter, cfg.Threshold), sender, m, log.Named("alert"))
}

// LoadFlock 加载羊只登记表；未配置路径时为空表
func LoadFlock(cfg cfgpkg.FlockConfig, log *zap.Logger) (*flock.Registry, error) {
	if cfg.Path == "" {
		log.Warn("flock registry not configured, sheep named after devices")
		return flock.Empty(), nil
	}
	reg, err := flock.Load(cfg.Path)
	if err != nil {
		return nil, err
	}
	log.Info("flock registry loaded", zap.String("path", cfg.Path), zap.Int("sheep", reg.Len()))
	return reg, nil
}
