package cli_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/humdrum/internal/cli"
	"github.com/aretw0/humdrum/internal/config"
	"github.com/aretw0/humdrum/pkg/adapters/file"
	"github.com/aretw0/humdrum/pkg/adapters/memory"
	"github.com/aretw0/humdrum/pkg/adapters/redis"
	"github.com/aretw0/humdrum/pkg/domain"
	"github.com/aretw0/humdrum/pkg/persistence/middleware"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const siteYAML = `
controllers:
  main:
    processes:
      - {name: count, args: {key: n}}
    default: {type: text, body: "n=${n}"}
`

func writeSite(t *testing.T) config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Site = filepath.Join(dir, "site.yaml")
	cfg.Commands = filepath.Join(dir, "commands.yaml")
	cfg.Store.Dir = filepath.Join(dir, "sessions")
	require.NoError(t, os.WriteFile(cfg.Site, []byte(siteYAML), 0644))
	return cfg
}

func TestCreateLogger(t *testing.T) {
	cfg := config.Default()
	logger, err := cli.CreateLogger(cfg)
	require.NoError(t, err)
	assert.NotNil(t, logger)

	cfg.Log.Level = "loud"
	_, err = cli.CreateLogger(cfg)
	assert.Error(t, err)

	cfg = config.Default()
	cfg.Log.Format = "xml"
	_, err = cli.CreateLogger(cfg)
	assert.Error(t, err)
}

func TestOpenBackend(t *testing.T) {
	ctx := context.Background()
	cfg := config.Default()

	b, err := cli.OpenBackend(ctx, cfg)
	require.NoError(t, err)
	assert.IsType(t, &memory.Store{}, b.Store)
	assert.Nil(t, b.Locker)

	cfg.Store.Type = config.StoreFile
	cfg.Store.Dir = t.TempDir()
	b, err = cli.OpenBackend(ctx, cfg)
	require.NoError(t, err)
	assert.IsType(t, &file.Store{}, b.Store)

	mr := miniredis.RunT(t)
	cfg.Store.Type = config.StoreRedis
	cfg.Redis.Addr = mr.Addr()
	b, err = cli.OpenBackend(ctx, cfg)
	require.NoError(t, err)
	assert.IsType(t, &redis.Store{}, b.Store)
	assert.NotNil(t, b.Locker)
	require.NoError(t, b.Close())

	mr.Close()
	_, err = cli.OpenBackend(ctx, cfg)
	assert.Error(t, err)

	cfg.Store.Type = "etcd"
	_, err = cli.OpenBackend(ctx, cfg)
	assert.Error(t, err)
}

func TestCreateRegistry(t *testing.T) {
	cfg := writeSite(t)

	reg, err := cli.CreateRegistry(cfg)
	require.NoError(t, err)
	assert.True(t, reg.Has("count"))
	assert.False(t, reg.Has("exec"), "no commands file")

	require.NoError(t, os.WriteFile(cfg.Commands, []byte("commands:\n  - {name: hi, command: echo}\n"), 0644))
	reg, err = cli.CreateRegistry(cfg)
	require.NoError(t, err)
	assert.True(t, reg.Has("exec"))
}

func TestCreateApp(t *testing.T) {
	cfg := writeSite(t)
	cfg.Store.Type = config.StoreFile

	setup, err := cli.CreateApp(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer setup.Close()

	for i := 0; i < 2; i++ {
		var buf bytes.Buffer
		_, err := setup.App.Dispatch(context.Background(), "", "cli", domain.NewRequest(domain.SourceTest, &buf))
		require.NoError(t, err)
		if i == 1 {
			assert.Equal(t, "n=2", buf.String())
		}
	}

	// The file store outlives the app.
	_, err = os.Stat(filepath.Join(cfg.Store.Dir, "cli.json"))
	assert.NoError(t, err)

	cfg.Site = filepath.Join(t.TempDir(), "missing.yaml")
	_, err = cli.CreateApp(context.Background(), cfg, nil)
	assert.Error(t, err)
}

func TestCreateMetrics(t *testing.T) {
	metrics, reg := cli.CreateMetrics()
	metrics.Forwards.WithLabelValues("a", "b").Inc()

	n, err := testutil.GatherAndCount(reg, "humdrum_forwards_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestOpenBackend_SecureStore(t *testing.T) {
	ctx := context.Background()
	cfg := config.Default()
	cfg.Store.Mask = []string{"^password$"}
	cfg.Store.EncryptionKey = base64.StdEncoding.EncodeToString(bytes.Repeat([]byte("k"), 32))

	b, err := cli.OpenBackend(ctx, cfg)
	require.NoError(t, err)

	model := domain.NewModel("s")
	model.Set("password", "hunter2")
	model.Set("user", "ana")
	require.NoError(t, b.Store.Save(ctx, "s", model))

	loaded, err := b.Store.Load(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, "ana", loaded.Data["user"])
	assert.Equal(t, middleware.Mask, loaded.Data["password"])

	cfg.Store.EncryptionKey = "c2hvcnQ="
	_, err = cli.OpenBackend(ctx, cfg)
	assert.ErrorIs(t, err, middleware.ErrInvalidKey)
}

func TestOpenBackend_KeyFromEnv(t *testing.T) {
	t.Setenv(config.EnvStoreKey, "not base64!")
	_, err := cli.OpenBackend(context.Background(), config.Default())
	assert.Error(t, err)
}
