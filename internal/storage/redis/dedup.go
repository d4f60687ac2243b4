package redis

import (
	"context"
	"fmt"
	"time"
)

// DefaultDedupTTL 默认去重窗口
const DefaultDedupTTL = 24 * time.Hour

// UplinkDeduper 基于 (devEUI, fCnt) 的上行去重。
// 网络服务器在多网关接收或重试时会重复投递同一帧。
type UplinkDeduper struct {
	client *Client
	ttl    time.Duration
}

// NewUplinkDeduper 创建去重器
func NewUplinkDeduper(client *Client, ttl time.Duration) *UplinkDeduper {
	if ttl <= 0 {
		ttl = DefaultDedupTTL
	}
	return &UplinkDeduper{client: client, ttl: ttl}
}

// FirstSeen 原子地标记 (devEUI, fCnt)；首次出现返回 true
func (d *UplinkDeduper) FirstSeen(ctx context.Context, devEUI string, fCnt int64) (bool, error) {
	if d == nil || d.client == nil {
		return false, fmt.Errorf("deduper not initialized")
	}
	if devEUI == "" {
		return false, fmt.Errorf("devEUI is empty")
	}
	// SETNX：key 不存在时设置成功 => 首次出现
	ok, err := d.client.SetNX(ctx, dedupKey(devEUI, fCnt), "1", d.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx: %w", err)
	}
	return ok, nil
}

// Forget 删除 (devEUI, fCnt) 标记，允许重投
func (d *UplinkDeduper) Forget(ctx context.Context, devEUI string, fCnt int64) error {
	if d == nil || d.client == nil {
		return fmt.Errorf("deduper not initialized")
	}
	if err := d.client.Del(ctx, dedupKey(devEUI, fCnt)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

func dedupKey(devEUI string, fCnt int64) string {
	return fmt.Sprintf("%s:uplink:%s:%d", keyPrefix, devEUI, fCnt)
}
