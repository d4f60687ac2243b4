package app

import (
	"go.uber.org/zap"

	"github.com/RobertATU/LoRaWAN-Lamb-Link-Next/internal/alert"
	cfgpkg "github.com/RobertATU/LoRaWAN-Lamb-Link-Next/internal/config"
	"github.com/RobertATU/LoRaWAN-Lamb-Link-Next/internal/ingest"
	redisstorage "github.com/RobertATU/LoRaWAN-Lamb-Link-Next/internal/storage/redis"
)

// NewRedisClient 创建Redis客户端；未启用时返回 nil, nil
func NewRedisClient(cfg cfgpkg.RedisConfig, logger *zap.Logger) (*redisstorage.Client, error) {
	if !cfg.Enabled {
		logger.Info("redis is disabled, dedup off and posture streaks kept in memory")
		return nil, nil
	}

	client, err := redisstorage.NewClient(cfg)
	if err != nil {
		return nil, err
	}

	logger.Info("redis client initialized",
		zap.String("addr", cfg.Addr),
		zap.Int("pool_size", cfg.PoolSize))

	return client, nil
}

// NewDeduper Redis 不可用时不去重
func NewDeduper(client *redisstorage.Client, cfg cfgpkg.IngestConfig) ingest.Deduper {
	if client == nil {
		return nil
	}
	return redisstorage.NewUplinkDeduper(client, cfg.DedupTTL)
}

// NewStreakCounter 多实例部署时计数放在 Redis
func NewStreakCounter(client *redisstorage.Client) alert.StreakCounter {
	if client == nil {
		return alert.NewMemoryCounter()
	}
	return redisstorage.NewStreakStore(client)
}
