package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/humdrum/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoad_Missing(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)

	cfg, err = config.Load("")
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestLoad_YAML(t *testing.T) {
	path := write(t, "humdrum.yaml", `
site: app/site.yaml
addr: ":9000"
log:
  level: debug
store:
  type: redis
redis:
  addr: redis:6379
  db: 2
session:
  ttl: 1h
max_forward_depth: 8
metrics: true
`)
	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "app/site.yaml", cfg.Site)
	assert.Equal(t, ":9000", cfg.Addr)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format, "unset fields keep defaults")
	assert.Equal(t, config.StoreRedis, cfg.Store.Type)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, time.Hour, cfg.Session.TTL.Std())
	assert.Equal(t, 10*time.Second, cfg.Session.LockTTL.Std())
	assert.Equal(t, 8, cfg.MaxForwardDepth)
	assert.True(t, cfg.Metrics)
}

func TestLoad_JSON(t *testing.T) {
	path := write(t, "humdrum.json", `{"store": {"type": "file", "dir": "/tmp/s"}, "session": {"ttl": "90s"}}`)
	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.StoreFile, cfg.Store.Type)
	assert.Equal(t, "/tmp/s", cfg.Store.Dir)
	assert.Equal(t, 90*time.Second, cfg.Session.TTL.Std())
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]string{
		"bad yaml":     "site: [",
		"bad duration": "session:\n  ttl: soon\n",
		"bad store":    "store:\n  type: etcd\n",
		"bad depth":    "max_forward_depth: -1\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := config.Load(write(t, "c.yaml", body))
			assert.Error(t, err)
		})
	}
}
