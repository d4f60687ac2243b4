package app

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/RobertATU/LoRaWAN-Lamb-Link-Next/db"
	cfgpkg "github.com/RobertATU/LoRaWAN-Lamb-Link-Next/internal/config"
	"github.com/RobertATU/LoRaWAN-Lamb-Link-Next/internal/migrate"
	"github.com/RobertATU/LoRaWAN-Lamb-Link-Next/internal/storage"
	"github.com/RobertATU/LoRaWAN-Lamb-Link-Next/internal/storage/gormrepo"
	"github.com/RobertATU/LoRaWAN-Lamb-Link-Next/internal/storage/memory"
	pgstorage "github.com/RobertATU/LoRaWAN-Lamb-Link-Next/internal/storage/pg"
)

// ConnectDBAndMigrate 建立数据库连接并按需执行迁移。
// migrationsDir 为空时使用内嵌迁移。
func ConnectDBAndMigrate(ctx context.Context, cfg cfgpkg.DatabaseConfig, log *zap.Logger) (*pgxpool.Pool, error) {
	dbpool, err := pgstorage.NewPool(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	if !cfg.AutoMigrate {
		return dbpool, nil
	}
	runner := migrate.Runner{Dir: cfg.MigrationsDir}
	if cfg.MigrationsDir == "" {
		runner.FS = db.Migrations()
	}
	applied, err := runner.Up(ctx, dbpool)
	if err != nil {
		dbpool.Close()
		return nil, fmt.Errorf("db migrate: %w", err)
	}
	log.Info("db migrations applied", zap.Int64s("versions", applied))
	return dbpool, nil
}

// NewPinRepo 按驱动选择存储实现；memory 驱动不需要连接池
func NewPinRepo(cfg cfgpkg.DatabaseConfig, pool *pgxpool.Pool) (storage.PinRepo, error) {
	switch cfg.Driver {
	case cfgpkg.DriverMemory:
		return memory.New(), nil
	case cfgpkg.DriverGORM:
		gdb, err := gormrepo.OpenFromPool(pool)
		if err != nil {
			return nil, fmt.Errorf("open gorm: %w", err)
		}
		return gormrepo.New(gdb), nil
	case cfgpkg.DriverPGX:
		return &pgstorage.Repository{Pool: pool}, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}
