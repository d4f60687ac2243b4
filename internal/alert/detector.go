// Package alert 根据 X 轴加速度判断羊只是否翻倒，并通过签名 webhook 通知牧场主
package alert

import (
	"context"
	"errors"
	"sync"
)

// Kind 告警类型
type Kind string

const (
	KindNone       Kind = ""
	KindUpsideDown Kind = "upside_down"
	KindBackUp     Kind = "back_up"
)

// DefaultThreshold 连续多少次负读数判定为翻倒
const DefaultThreshold = 2

// StreakCounter 每只羊的连续负读数计数（内存或 Redis）
type StreakCounter interface {
	Incr(ctx context.Context, sheepID string) (int, error)
	// Reset 清零并返回清零前的值
	Reset(ctx context.Context, sheepID string) (int, error)
}

// Detector 姿态状态机：
//   - accelero_x < 0 计数加一，恰好达到阈值时报 upside_down（只报一次）
//   - accelero_x > 0 清零；若清零前已达阈值则报 back_up
//   - accelero_x == 0 只清零，不报警
type Detector struct {
	counter   StreakCounter
	threshold int
}

func NewDetector(counter StreakCounter, threshold int) *Detector {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	if counter == nil {
		counter = NewMemoryCounter()
	}
	return &Detector{counter: counter, threshold: threshold}
}

// Observe 记录一次读数并返回需要发送的告警
func (d *Detector) Observe(ctx context.Context, sheepID string, acceleroX int) (Kind, error) {
	if sheepID == "" {
		return KindNone, errors.New("alert: empty sheep id")
	}
	if acceleroX < 0 {
		n, err := d.counter.Incr(ctx, sheepID)
		if err != nil {
			return KindNone, err
		}
		if n == d.threshold {
			return KindUpsideDown, nil
		}
		return KindNone, nil
	}
	prev, err := d.counter.Reset(ctx, sheepID)
	if err != nil {
		return KindNone, err
	}
	if acceleroX > 0 && prev >= d.threshold {
		return KindBackUp, nil
	}
	return KindNone, nil
}

// MemoryCounter 单实例部署使用的进程内计数
type MemoryCounter struct {
	mu     sync.Mutex
	counts map[string]int
}

func NewMemoryCounter() *MemoryCounter {
	return &MemoryCounter{counts: make(map[string]int)}
}

func (c *MemoryCounter) Incr(_ context.Context, sheepID string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts[sheepID]++
	return c.counts[sheepID], nil
}

func (c *MemoryCounter) Reset(_ context.Context, sheepID string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	prev := c.counts[sheepID]
	delete(c.counts, sheepID)
	return prev, nil
}
