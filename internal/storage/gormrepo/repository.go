package gormrepo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/RobertATU/LoRaWAN-Lamb-Link-Next/internal/storage"
	"github.com/RobertATU/LoRaWAN-Lamb-Link-Next/internal/storage/models"
)

// Repository 基于 GORM 的 PinRepo 实现
type Repository struct {
	db *gorm.DB
}

var _ storage.PinRepo = (*Repository)(nil)

// New 返回一个使用给定 *gorm.DB 的 PinRepo 实例。
func New(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// OpenFromPool 复用已有 pgx 连接池打开 GORM（共享连接与 SQL 追踪）
func OpenFromPool(pool *pgxpool.Pool) (*gorm.DB, error) {
	sqlDB := stdlib.OpenDBFromPool(pool)
	return gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
}

// CreatePin 写入定位点，GORM 回填 id/created_at
func (r *Repository) CreatePin(ctx context.Context, pin *models.Pin) error {
	return r.db.WithContext(ctx).Create(pin).Error
}

// ListPins 分页返回定位点，按 created_at 倒序。
func (r *Repository) ListPins(ctx context.Context, limit, offset int) ([]models.Pin, error) {
	pins := []models.Pin{}
	q := r.db.WithContext(ctx).Order("created_at DESC").Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}
	if err := q.Find(&pins).Error; err != nil {
		return nil, err
	}
	return pins, nil
}

// LatestPins 每只羊最近一条
func (r *Repository) LatestPins(ctx context.Context) ([]models.Pin, error) {
	pins := []models.Pin{}
	err := r.db.WithContext(ctx).
		Raw(`SELECT DISTINCT ON (sheep_id) * FROM pins ORDER BY sheep_id, created_at DESC, id DESC`).
		Scan(&pins).Error
	if err != nil {
		return nil, err
	}
	return pins, nil
}

// GetLatestPinBySheep 查询指定羊只最近一条。
func (r *Repository) GetLatestPinBySheep(ctx context.Context, sheepID string) (*models.Pin, error) {
	var pin models.Pin
	err := r.db.WithContext(ctx).
		Where("sheep_id = ?", sheepID).
		Order("created_at DESC").Order("id DESC").
		First(&pin).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &pin, nil
}

// DeletePinByGenID 在事务中读取后删除，返回被删除的记录。
func (r *Repository) DeletePinByGenID(ctx context.Context, genID string) (*models.Pin, error) {
	var pin models.Pin
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("gen_id = ?", genID).First(&pin).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Pin{}, pin.ID).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &pin, nil
}
