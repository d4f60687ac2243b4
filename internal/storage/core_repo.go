package storage

import (
	"context"
	"errors"

	"github.com/RobertATU/LoRaWAN-Lamb-Link-Next/internal/storage/models"
)

// ErrNotFound 记录不存在（各实现需将驱动自身的"无结果"错误转换为此错误）
var ErrNotFound = errors.New("record not found")

// PinRepo 定位点存储抽象。
// 约束：
// - 上层只通过本接口访问定位点，pgx 与 gorm 两种实现可互换
// - 列表按 created_at 倒序（最新在前）
type PinRepo interface {
	// CreatePin 写入定位点，回填 ID 与 CreatedAt
	CreatePin(ctx context.Context, pin *models.Pin) error
	// ListPins 分页返回定位点；limit<=0 表示不限制
	ListPins(ctx context.Context, limit, offset int) ([]models.Pin, error)
	// LatestPins 每只羊最近一条定位点（地图展示）
	LatestPins(ctx context.Context) ([]models.Pin, error)
	// GetLatestPinBySheep 指定羊只最近一条定位点
	GetLatestPinBySheep(ctx context.Context, sheepID string) (*models.Pin, error)
	// DeletePinByGenID 删除并返回被删除的定位点
	DeletePinByGenID(ctx context.Context, genID string) (*models.Pin, error)
}
