package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFrom_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := LoadFrom("")
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 5, cfg.Feed.PageSize)
	assert.Equal(t, 24*time.Hour, cfg.JWT.TTL)
	assert.Empty(t, cfg.Redis.Addr)
}

func TestLoadFrom_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := "database:\n  driver: postgres\n  dsn: host=db user=app\nfeed:\n  page_size: 20\n"
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
	t.Setenv("MINITWIT_REDIS_ADDR", "localhost:6379")
	t.Setenv("MINITWIT_JWT_TTL", "2h")

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "host=db user=app", cfg.Database.DSN)
	assert.Equal(t, 20, cfg.Feed.PageSize)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 2*time.Hour, cfg.JWT.TTL)
}

func TestLoadFrom_MissingExplicitFile(t *testing.T) {
	_, err := LoadFrom(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	chdir(t, t.TempDir())
	base, err := LoadFrom("")
	require.NoError(t, err)

	bad := *base
	bad.Database.Driver = "mysql"
	assert.Error(t, bad.Validate())

	release := *base
	release.Server.Mode = "release"
	assert.Error(t, release.Validate())
	release.JWT.Secret = "a-real-secret"
	assert.NoError(t, release.Validate())

	badMode := *base
	badMode.Server.Mode = "production"
	assert.Error(t, badMode.Validate())

	zeroPage := *base
	zeroPage.Feed.PageSize = 0
	assert.Error(t, zeroPage.Validate())
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
