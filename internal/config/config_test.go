package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"BLOG_CONFIG", "LISTEN_ADDR", "PORT", "DATABASE_PATH", "GIN_MODE",
		"LOG_LEVEL", "FEED_CACHE_TTL", "FEED_LIMIT", "SLUG_COLLAPSE_CHAINS",
	} {
		t.Setenv(key, "")
	}
	// PAGE_ROOT is looked up, so an empty value would still count as set.
	if prev, ok := os.LookupEnv("PAGE_ROOT"); ok {
		os.Unsetenv("PAGE_ROOT")
		t.Cleanup(func() { os.Setenv("PAGE_ROOT", prev) })
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
}

func TestLoadReadsEnvironment(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())

	t.Setenv("PORT", "9090")
	t.Setenv("DATABASE_PATH", " data/blog.db ")
	t.Setenv("PAGE_ROOT", "blog/")
	t.Setenv("FEED_CACHE_TTL", "2m")
	t.Setenv("FEED_LIMIT", "5")
	t.Setenv("SLUG_COLLAPSE_CHAINS", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.ListenAddr)
	assert.Equal(t, "data/blog.db", cfg.DatabasePath)
	assert.Equal(t, "/blog", cfg.PageRoot)
	assert.Equal(t, 2*time.Minute, cfg.FeedCacheTTL)
	assert.Equal(t, 5, cfg.FeedLimit)
	assert.True(t, cfg.CollapseChains)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	t.Chdir(dir)

	path := filepath.Join(dir, "blog.yaml")
	content := "listen_addr: \":7000\"\npage_root: /posts\nfeed_cache_ttl: 10s\nlog_level: debug\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	t.Setenv("BLOG_CONFIG", path)
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.ListenAddr)
	assert.Equal(t, "/posts", cfg.PageRoot)
	assert.Equal(t, 10*time.Second, cfg.FeedCacheTTL)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "ttl", key: "FEED_CACHE_TTL", value: "soon"},
		{name: "limit", key: "FEED_LIMIT", value: "-1"},
		{name: "collapse", key: "SLUG_COLLAPSE_CHAINS", value: "maybe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Chdir(t.TempDir())
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestNormalizePageRoot(t *testing.T) {
	assert.Equal(t, "", NormalizePageRoot(" / "))
	assert.Equal(t, "/blog", NormalizePageRoot("blog"))
	assert.Equal(t, "/a/b", NormalizePageRoot("/a/b//"))
}
