package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "memory", cfg.Cache.Backend)
	assert.Equal(t, 20*time.Second, cfg.Cache.TTL)
	assert.Equal(t, 10, cfg.Listing.PageSize)
	assert.Equal(t, "/media", cfg.Storage.URLPrefix)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PORT", "9090")
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("DATABASE_URL", "file::memory:")
	t.Setenv("CACHE_TTL", "5s")
	t.Setenv("YATUBE_LISTING_PAGE_SIZE", "3")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "file::memory:", cfg.Database.DSN)
	assert.Equal(t, 5*time.Second, cfg.Cache.TTL)
	assert.Equal(t, 3, cfg.Listing.PageSize)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.yaml")
	content := []byte("cache:\n  backend: redis\n  redis_addr: cache:6379\nlisting:\n  page_size: 25\n")
	require.NoError(t, os.WriteFile(path, content, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "redis", cfg.Cache.Backend)
	assert.Equal(t, "cache:6379", cfg.Cache.RedisAddr)
	assert.Equal(t, 25, cfg.Listing.PageSize)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := Load("")
	require.NoError(t, err)

	cases := map[string]func(c *Config){
		"driver":  func(c *Config) { c.Database.Driver = "oracle" },
		"cache":   func(c *Config) { c.Cache.Backend = "memcached" },
		"storage": func(c *Config) { c.Storage.Backend = "s3" },
		"page":    func(c *Config) { c.Listing.PageSize = 0 },
		"ttl":     func(c *Config) { c.Cache.TTL = 0 },
		"ttl<0":   func(c *Config) { c.Cache.TTL = -time.Second },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := *cfg
			mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
}
