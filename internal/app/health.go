package app

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/RobertATU/LoRaWAN-Lamb-Link-Next/internal/flock"
	"github.com/RobertATU/LoRaWAN-Lamb-Link-Next/internal/health"
	redisstorage "github.com/RobertATU/LoRaWAN-Lamb-Link-Next/internal/storage/redis"
)

// NewHealthAggregator 创建健康检查聚合器；memory 驱动下 dbpool 为 nil
func NewHealthAggregator(dbpool *pgxpool.Pool, reg *flock.Registry) *health.Aggregator {
	agg := health.NewAggregator()
	if dbpool != nil {
		agg.AddChecker(health.NewDatabaseChecker(dbpool))
	}
	agg.AddChecker(health.NewFuncChecker("flock", func(context.Context) health.CheckResult {
		status := health.StatusHealthy
		if reg.Len() == 0 {
			// 未登记时退回设备名，仍可服务
			status = health.StatusDegraded
		}
		return health.CheckResult{Status: status, Message: fmt.Sprintf("%d sheep registered", reg.Len())}
	}))
	return agg
}

// AddRedisChecker 添加Redis检查器到聚合器
func AddRedisChecker(aggregator *health.Aggregator, redisClient *redisstorage.Client) {
	if redisClient != nil {
		aggregator.AddChecker(health.NewRedisChecker(redisClient))
	}
}

// AddMQTTChecker MQTT 订阅启动后添加
func AddMQTTChecker(aggregator *health.Aggregator, conn health.Connector) {
	aggregator.AddChecker(health.NewMQTTChecker(conn))
}
