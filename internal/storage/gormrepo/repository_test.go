package gormrepo

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RobertATU/LoRaWAN-Lamb-Link-Next/db"
	"github.com/RobertATU/LoRaWAN-Lamb-Link-Next/internal/migrate"
	"github.com/RobertATU/LoRaWAN-Lamb-Link-Next/internal/storage"
	"github.com/RobertATU/LoRaWAN-Lamb-Link-Next/internal/storage/models"
)

func setupRepo(t *testing.T) *Repository {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL 未设置，跳过 GORM 集成测试")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	if err := pool.Ping(ctx); err != nil {
		t.Skipf("数据库不可用: %v", err)
	}
	_, err = migrate.Runner{FS: db.Migrations()}.Up(ctx, pool)
	require.NoError(t, err)

	gdb, err := OpenFromPool(pool)
	require.NoError(t, err)
	return New(gdb)
}

func TestRepository_CreateAndQuery(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	sheep := "gorm-sheep-" + uuid.NewString()[:8]
	t.Cleanup(func() { repo.db.Where("sheep_id = ?", sheep).Delete(&models.Pin{}) })

	p := &models.Pin{GenID: uuid.NewString(), SheepID: sheep, Latitude: 53.27, Longitude: -9.05, AcceleroX: -12, Sats: 5}
	require.NoError(t, repo.CreatePin(ctx, p))
	assert.NotZero(t, p.ID)

	got, err := repo.GetLatestPinBySheep(ctx, sheep)
	require.NoError(t, err)
	assert.Equal(t, p.GenID, got.GenID)
	assert.Equal(t, int32(-12), got.AcceleroX)

	deleted, err := repo.DeletePinByGenID(ctx, p.GenID)
	require.NoError(t, err)
	assert.Equal(t, sheep, deleted.SheepID)

	_, err = repo.GetLatestPinBySheep(ctx, sheep)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = repo.DeletePinByGenID(ctx, p.GenID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
