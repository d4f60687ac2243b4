package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/RobertATU/LoRaWAN-Lamb-Link-Next/internal/alert"
	cfgpkg "github.com/RobertATU/LoRaWAN-Lamb-Link-Next/internal/config"
	"github.com/RobertATU/LoRaWAN-Lamb-Link-Next/internal/health"
	"github.com/RobertATU/LoRaWAN-Lamb-Link-Next/internal/storage/memory"
)

func TestGenerateServerID(t *testing.T) {
	t.Setenv("SERVER_ID", "")
	a, b := GenerateServerID(), GenerateServerID()
	assert.NotEqual(t, a, b)

	t.Setenv("SERVER_ID", "node-7")
	assert.Equal(t, "node-7", GenerateServerID())
}

func TestNewPinRepo(t *testing.T) {
	repo, err := NewPinRepo(cfgpkg.DatabaseConfig{Driver: cfgpkg.DriverMemory}, nil)
	require.NoError(t, err)
	assert.IsType(t, &memory.Repository{}, repo)

	_, err = NewPinRepo(cfgpkg.DatabaseConfig{Driver: "sqlite"}, nil)
	assert.Error(t, err)
}

func TestRedisDisabledFallbacks(t *testing.T) {
	assert.Nil(t, NewDeduper(nil, cfgpkg.IngestConfig{}))
	assert.IsType(t, &alert.MemoryCounter{}, NewStreakCounter(nil))

	c, err := NewRedisClient(cfgpkg.RedisConfig{Enabled: false}, zap.NewNop())
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestLoadFlockAndHealth(t *testing.T) {
	reg, err := LoadFlock(cfgpkg.FlockConfig{}, zap.NewNop())
	require.NoError(t, err)
	agg := NewHealthAggregator(nil, reg)
	assert.Equal(t, health.StatusDegraded, agg.OverallStatus(context.Background()))

	p := filepath.Join(t.TempDir(), "flock.yaml")
	require.NoError(t, os.WriteFile(p, []byte("sheep:\n  - {devEUI: AA01, name: Dolly}\n"), 0o600))
	reg, err = LoadFlock(cfgpkg.FlockConfig{Path: p}, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 1, reg.Len())
	assert.Equal(t, health.StatusHealthy, NewHealthAggregator(nil, reg).OverallStatus(context.Background()))
}
