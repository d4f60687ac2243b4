package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "lamb.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoad_Defaults(t *testing.T) {
	p := writeConfig(t, "app:\n  env: test\n")

	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "lamb-link", cfg.App.Name)
	assert.Equal(t, "test", cfg.App.Env)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, 5*time.Second, cfg.HTTP.ReadTimeout)
	assert.Equal(t, DriverPGX, cfg.Database.Driver)
	assert.Equal(t, "application/+/device/+/event/up", cfg.MQTT.Topic)
	assert.Equal(t, byte(1), cfg.MQTT.QoS)
	assert.Equal(t, 2, cfg.Alert.Threshold)
	assert.Equal(t, 24*time.Hour, cfg.Ingest.DedupTTL)
}

func TestLoad_FileOverrides(t *testing.T) {
	p := writeConfig(t, `
database:
  driver: gorm
api:
  auth:
    enabled: true
    apiKeys: ["k1", "k2"]
alert:
  enabled: true
  webhookUrl: http://hooks.local/sheep
  threshold: 3
`)
	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, DriverGORM, cfg.Database.Driver)
	assert.True(t, cfg.API.Auth.Enabled)
	assert.Equal(t, []string{"k1", "k2"}, cfg.API.Auth.APIKeys)
	assert.Equal(t, 3, cfg.Alert.Threshold)
}

func TestLoad_EnvOverride(t *testing.T) {
	p := writeConfig(t, "http:\n  addr: \":9000\"\n")
	t.Setenv("LAMB_HTTP_ADDR", ":9100")

	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, ":9100", cfg.HTTP.Addr)
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"未知驱动", "database:\n  driver: mysql\n"},
		{"告警缺少地址", "alert:\n  enabled: true\n"},
		{"阈值非正", "alert:\n  threshold: 0\n"},
		{"qos越界", "mqtt:\n  qos: 3\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}
