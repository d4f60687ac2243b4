// Package mqttsub 订阅网络服务器的 MQTT 上行事件并交给 ingest 处理
package mqttsub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"github.com/RobertATU/LoRaWAN-Lamb-Link-Next/internal/config"
	"github.com/RobertATU/LoRaWAN-Lamb-Link-Next/internal/ingest"
	"github.com/RobertATU/LoRaWAN-Lamb-Link-Next/internal/storage/models"
)

// handleTimeout 单条消息处理上限（入库 + 告警）
const handleTimeout = 15 * time.Second

// UplinkHandler 由 *ingest.Service 实现
type UplinkHandler interface {
	HandleUplink(ctx context.Context, up ingest.Uplink, source string) (*models.Pin, error)
}

// Subscriber MQTT 订阅者
type Subscriber struct {
	cfg     config.MQTTConfig
	handler UplinkHandler
	logger  *zap.Logger
	client  mqtt.Client
}

// New 创建订阅者；clientSuffix 用于区分多实例
func New(cfg config.MQTTConfig, clientSuffix string, handler UplinkHandler, logger *zap.Logger) *Subscriber {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Subscriber{cfg: cfg, handler: handler, logger: logger}
	s.client = mqtt.NewClient(s.clientOptions(clientSuffix))
	return s
}

// clientOptions 按序投递：同一羊只的读数必须按到达顺序进入姿态状态机
func (s *Subscriber) clientOptions(clientSuffix string) *mqtt.ClientOptions {
	cfg := s.cfg
	clientID := cfg.ClientID
	if clientSuffix != "" {
		clientID = clientID + "-" + clientSuffix
	}
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(clientID).
		SetUsername(cfg.Username).
		SetPassword(cfg.Password).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetCleanSession(false).
		SetOrderMatters(true)
	// 重连后重新订阅
	opts.SetOnConnectHandler(func(c mqtt.Client) {
		s.logger.Info("mqtt connected", zap.String("broker", cfg.Broker))
		if err := s.subscribe(c); err != nil {
			s.logger.Error("mqtt subscribe failed", zap.String("topic", cfg.Topic), zap.Error(err))
		}
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		s.logger.Warn("mqtt connection lost", zap.Error(err))
	})
	return opts
}

// Start 连接 broker；首次连接失败时 paho 会在后台重试
func (s *Subscriber) Start(ctx context.Context) error {
	token := s.client.Connect()
	select {
	case <-token.Done():
		if err := token.Error(); err != nil {
			return fmt.Errorf("mqtt connect %s: %w", s.cfg.Broker, err)
		}
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(10 * time.Second):
		s.logger.Warn("mqtt connect still pending, retrying in background", zap.String("broker", s.cfg.Broker))
	}
	return nil
}

// Stop 断开连接，等待最多 250ms 处理在途消息
func (s *Subscriber) Stop() {
	if s.client.IsConnected() {
		s.client.Unsubscribe(s.cfg.Topic).WaitTimeout(time.Second)
	}
	s.client.Disconnect(250)
	s.logger.Info("mqtt subscriber stopped")
}

func (s *Subscriber) subscribe(c mqtt.Client) error {
	token := c.Subscribe(s.cfg.Topic, s.cfg.QoS, func(_ mqtt.Client, msg mqtt.Message) {
		s.HandleMessage(msg.Topic(), msg.Payload())
	})
	token.Wait()
	return token.Error()
}

// HandleMessage 解析并处理一条上行事件
func (s *Subscriber) HandleMessage(topic string, payload []byte) {
	var up ingest.Uplink
	if err := json.Unmarshal(payload, &up); err != nil {
		s.logger.Warn("mqtt payload unmarshal error", zap.String("topic", topic), zap.Error(err))
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), handleTimeout)
	defer cancel()

	_, err := s.handler.HandleUplink(ctx, up, ingest.SourceMQTT)
	switch {
	case err == nil:
	case errors.Is(err, ingest.ErrDuplicate):
	default:
		s.logger.Warn("mqtt uplink rejected",
			zap.String("topic", topic),
			zap.String("dev_eui", up.DevEUI),
			zap.Error(err))
	}
}

// IsConnected 供健康检查使用
func (s *Subscriber) IsConnected() bool {
	return s.client.IsConnectionOpen()
}
