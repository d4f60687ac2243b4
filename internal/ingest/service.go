// Package ingest 上行处理管线：解码、去重、命名、入库、姿态告警、实时推送
package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/RobertATU/LoRaWAN-Lamb-Link-Next/internal/alert"
	"github.com/RobertATU/LoRaWAN-Lamb-Link-Next/internal/flock"
	"github.com/RobertATU/LoRaWAN-Lamb-Link-Next/internal/metrics"
	"github.com/RobertATU/LoRaWAN-Lamb-Link-Next/internal/protocol/atu"
	"github.com/RobertATU/LoRaWAN-Lamb-Link-Next/internal/storage"
	"github.com/RobertATU/LoRaWAN-Lamb-Link-Next/internal/storage/models"
)

// 上行来源
const (
	SourceHTTP = "http"
	SourceMQTT = "mqtt"
)

// Deduper 由 storage/redis.UplinkDeduper 实现
type Deduper interface {
	FirstSeen(ctx context.Context, devEUI string, fCnt int64) (bool, error)
	// Forget 释放标记，入库失败后网络服务器的重投才能通过
	Forget(ctx context.Context, devEUI string, fCnt int64) error
}

// Broadcaster 由 livefeed.Hub 实现
type Broadcaster interface {
	Broadcast(pin models.Pin)
}

// Options 可选依赖，均可为 nil
type Options struct {
	Deduper Deduper
	Flock   *flock.Registry
	Alerts  *alert.Monitor
	Feed    Broadcaster
	Metrics *metrics.AppMetrics
	Logger  *zap.Logger
}

// Service 上行处理服务，可被 HTTP 与 MQTT 并发调用
type Service struct {
	repo    storage.PinRepo
	dedup   Deduper
	flock   *flock.Registry
	alerts  *alert.Monitor
	feed    Broadcaster
	metrics *metrics.AppMetrics
	logger  *zap.Logger
	newID   func() string
}

func NewService(repo storage.PinRepo, opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:    repo,
		dedup:   opts.Deduper,
		flock:   opts.Flock,
		alerts:  opts.Alerts,
		feed:    opts.Feed,
		metrics: opts.Metrics,
		logger:  logger,
		newID:   func() string { return uuid.New().String() },
	}
}

// HandleUplink 处理一条上行并返回入库后的 Pin。
// 重复帧返回 ErrDuplicate；告警失败只记日志，不影响入库结果。
func (s *Service) HandleUplink(ctx context.Context, up Uplink, source string) (*models.Pin, error) {
	if s.metrics != nil {
		s.metrics.UplinkReceived.WithLabelValues(source).Inc()
	}

	tel, err := up.Telemetry()
	if err != nil {
		s.countDecode(err)
		return nil, err
	}
	s.countDecode(nil)

	marked := false
	if s.dedup != nil && up.FCnt != nil && up.DevEUI != "" {
		first, err := s.dedup.FirstSeen(ctx, up.DevEUI, *up.FCnt)
		marked = err == nil && first
		if err != nil {
			// 去重不可用时放行，宁可重复也不丢数据
			s.logger.Warn("uplink dedup failed", zap.String("dev_eui", up.DevEUI), zap.Error(err))
		} else if !first {
			if s.metrics != nil {
				s.metrics.UplinkDuplicate.Inc()
			}
			s.logger.Debug("duplicate uplink dropped", zap.String("dev_eui", up.DevEUI), zap.Int64("f_cnt", *up.FCnt))
			return nil, ErrDuplicate
		}
	}

	objectJSON := up.ObjectJSON
	if up.Data != "" {
		b, err := json.Marshal(tel)
		if err != nil {
			s.forget(ctx, up, marked)
			return nil, fmt.Errorf("encode telemetry: %w", err)
		}
		objectJSON = string(b)
	}

	pin := &models.Pin{
		GenID:      s.newID(),
		SheepID:    s.flock.SheepName(up.DevEUI, up.DeviceName, tel.Name),
		DevEUI:     up.DevEUI,
		DeviceName: up.DeviceName,
		FCnt:       up.FCnt,
		Latitude:   tel.Latitude,
		Longitude:  tel.Longitude,
		AcceleroX:  int32(tel.AcceleroX),
		Sats:       int32(tel.Sats),
		ObjectJSON: objectJSON,
	}
	if err := s.repo.CreatePin(ctx, pin); err != nil {
		s.forget(ctx, up, marked)
		return nil, fmt.Errorf("store pin: %w", err)
	}
	if s.metrics != nil {
		s.metrics.PinStored.Inc()
	}
	s.logger.Info("pin stored",
		zap.String("source", source),
		zap.String("sheep", pin.SheepID),
		zap.String("dev_eui", pin.DevEUI),
		zap.String("gen_id", pin.GenID),
		zap.Float64("lat", pin.Latitude),
		zap.Float64("lon", pin.Longitude),
		zap.Int32("accelero_x", pin.AcceleroX))

	if s.alerts != nil {
		_, err := s.alerts.Observe(ctx, alert.Reading{
			SheepID:   pin.SheepID,
			DevEUI:    pin.DevEUI,
			AcceleroX: tel.AcceleroX,
			Latitude:  pin.Latitude,
			Longitude: pin.Longitude,
		})
		if err != nil {
			s.logger.Warn("posture alert failed", zap.String("sheep", pin.SheepID), zap.Error(err))
		}
	}
	if s.feed != nil {
		s.feed.Broadcast(*pin)
	}
	return pin, nil
}

// Close 等待在途告警发送完毕
func (s *Service) Close() {
	s.alerts.Close()
}

// forget 入库失败时撤销去重标记
func (s *Service) forget(ctx context.Context, up Uplink, marked bool) {
	if !marked {
		return
	}
	if err := s.dedup.Forget(context.WithoutCancel(ctx), up.DevEUI, *up.FCnt); err != nil {
		s.logger.Warn("uplink dedup release failed",
			zap.String("dev_eui", up.DevEUI), zap.Int64("f_cnt", *up.FCnt), zap.Error(err))
	}
}

func (s *Service) countDecode(err error) {
	if s.metrics == nil {
		return
	}
	result := metrics.ResultOK
	switch {
	case err == nil:
	case errors.Is(err, atu.ErrFrameTooShort):
		result = metrics.ResultTooShort
	default:
		result = metrics.ResultBadPayload
	}
	s.metrics.UplinkDecode.WithLabelValues(result).Inc()
}
