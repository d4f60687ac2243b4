package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// streakTTL 长时间无上行后计数自动失效
const streakTTL = 7 * 24 * time.Hour

// StreakStore 羊只连续翻倒计数（多实例共享）
type StreakStore struct {
	client *Client
}

func NewStreakStore(client *Client) *StreakStore {
	return &StreakStore{client: client}
}

// Incr 计数加一并返回新值
func (s *StreakStore) Incr(ctx context.Context, sheepID string) (int, error) {
	key := streakKey(sheepID)
	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, streakTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("redis incr streak: %w", err)
	}
	return int(incr.Val()), nil
}

// Reset 清零并返回清零前的值
func (s *StreakStore) Reset(ctx context.Context, sheepID string) (int, error) {
	prev, err := s.client.GetDel(ctx, streakKey(sheepID)).Int()
	if err != nil && !errors.Is(err, redis.Nil) {
		return 0, fmt.Errorf("redis reset streak: %w", err)
	}
	return prev, nil
}

func streakKey(sheepID string) string {
	return fmt.Sprintf("%s:streak:%s", keyPrefix, sheepID)
}
