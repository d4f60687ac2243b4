package pg

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/RobertATU/LoRaWAN-Lamb-Link-Next/internal/storage"
	"github.com/RobertATU/LoRaWAN-Lamb-Link-Next/internal/storage/models"
)

// Repository 基于 pgx 的 PinRepo 实现（手写 SQL）
type Repository struct {
	Pool *pgxpool.Pool
}

var _ storage.PinRepo = (*Repository)(nil)

const pinColumns = `id, gen_id, sheep_id, dev_eui, device_name, f_cnt, latitude, longitude, accelero_x, sats, object_json, created_at`

// CreatePin 插入定位点并回填 id/created_at
func (r *Repository) CreatePin(ctx context.Context, pin *models.Pin) error {
	const q = `INSERT INTO pins (gen_id, sheep_id, dev_eui, device_name, f_cnt, latitude, longitude, accelero_x, sats, object_json, created_at)
               VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,NOW())
               RETURNING id, created_at`
	return r.Pool.QueryRow(ctx, q,
		pin.GenID, pin.SheepID, pin.DevEUI, pin.DeviceName, pin.FCnt,
		pin.Latitude, pin.Longitude, pin.AcceleroX, pin.Sats, pin.ObjectJSON,
	).Scan(&pin.ID, &pin.CreatedAt)
}

// ListPins 分页查询，按时间倒序
func (r *Repository) ListPins(ctx context.Context, limit, offset int) ([]models.Pin, error) {
	q := `SELECT ` + pinColumns + ` FROM pins ORDER BY created_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		q += ` LIMIT $1 OFFSET $2`
		args = append(args, limit, offset)
	}
	rows, err := r.Pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	return collectPins(rows)
}

// LatestPins 每只羊最近一条（DISTINCT ON）
func (r *Repository) LatestPins(ctx context.Context) ([]models.Pin, error) {
	const q = `SELECT DISTINCT ON (sheep_id) ` + pinColumns + `
               FROM pins ORDER BY sheep_id, created_at DESC, id DESC`
	rows, err := r.Pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	return collectPins(rows)
}

// GetLatestPinBySheep 查询指定羊只最近一条
func (r *Repository) GetLatestPinBySheep(ctx context.Context, sheepID string) (*models.Pin, error) {
	const q = `SELECT ` + pinColumns + ` FROM pins WHERE sheep_id = $1 ORDER BY created_at DESC, id DESC LIMIT 1`
	p, err := scanPin(r.Pool.QueryRow(ctx, q, sheepID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	return p, err
}

// DeletePinByGenID 删除并返回被删除的记录
func (r *Repository) DeletePinByGenID(ctx context.Context, genID string) (*models.Pin, error) {
	const q = `DELETE FROM pins WHERE gen_id = $1 RETURNING ` + pinColumns
	p, err := scanPin(r.Pool.QueryRow(ctx, q, genID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	return p, err
}

func scanPin(row pgx.Row) (*models.Pin, error) {
	var (
		p          models.Pin
		devEUI     *string
		deviceName *string
		objectJSON *string
	)
	if err := row.Scan(&p.ID, &p.GenID, &p.SheepID, &devEUI, &deviceName, &p.FCnt,
		&p.Latitude, &p.Longitude, &p.AcceleroX, &p.Sats, &objectJSON, &p.CreatedAt); err != nil {
		return nil, err
	}
	if devEUI != nil {
		p.DevEUI = *devEUI
	}
	if deviceName != nil {
		p.DeviceName = *deviceName
	}
	if objectJSON != nil {
		p.ObjectJSON = *objectJSON
	}
	return &p, nil
}

func collectPins(rows pgx.Rows) ([]models.Pin, error) {
	defer rows.Close()
	// 初始化为空数组，避免JSON序列化为null
	out := []models.Pin{}
	for rows.Next() {
		p, err := scanPin(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}
