// Package memory 进程内 PinRepo 实现，用于开发环境与单元测试
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/RobertATU/LoRaWAN-Lamb-Link-Next/internal/storage"
	"github.com/RobertATU/LoRaWAN-Lamb-Link-Next/internal/storage/models"
)

// Repository 并发安全的内存存储
type Repository struct {
	mu     sync.RWMutex
	nextID int64
	pins   []models.Pin // 按写入顺序
	now    func() time.Time
}

var _ storage.PinRepo = (*Repository)(nil)

func New() *Repository {
	return &Repository{now: time.Now}
}

func (r *Repository) CreatePin(_ context.Context, pin *models.Pin) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	pin.ID = r.nextID
	pin.CreatedAt = r.now()
	r.pins = append(r.pins, *pin)
	return nil
}

// newestFirst 返回按 created_at、id 倒序的副本
func (r *Repository) newestFirst() []models.Pin {
	out := make([]models.Pin, len(r.pins))
	copy(out, r.pins)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func (r *Repository) ListPins(_ context.Context, limit, offset int) ([]models.Pin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := r.newestFirst()
	if offset >= len(all) {
		return []models.Pin{}, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (r *Repository) LatestPins(_ context.Context) ([]models.Pin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := make(map[string]bool)
	out := []models.Pin{}
	for _, p := range r.newestFirst() {
		if seen[p.SheepID] {
			continue
		}
		seen[p.SheepID] = true
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SheepID < out[j].SheepID })
	return out, nil
}

func (r *Repository) GetLatestPinBySheep(_ context.Context, sheepID string) (*models.Pin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.newestFirst() {
		if p.SheepID == sheepID {
			return &p, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (r *Repository) DeletePinByGenID(_ context.Context, genID string) (*models.Pin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, p := range r.pins {
		if p.GenID == genID {
			r.pins = append(r.pins[:i], r.pins[i+1:]...)
			return &p, nil
		}
	}
	return nil, storage.ErrNotFound
}
