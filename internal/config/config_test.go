package config

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, k := range []string{"HOLIDAZE_API_URL", "PAGE_LIMIT", "API_TIMEOUT_SECONDS", "STATE_ENC_KEY", "DATABASE_URL", "COOKIE_HASH_KEY", "COOKIE_BLOCK_KEY"} {
		t.Setenv(k, "")
	}
	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, DefaultAPIURL, cfg.APIURL)
	assert.Equal(t, 100, cfg.PageLimit)
	assert.Equal(t, 10*time.Second, cfg.APITimeout)
	assert.Empty(t, cfg.DatabaseURL)
	assert.Nil(t, cfg.StateEncKey)
	assert.Error(t, cfg.RequireCookieKeys())
}

func TestFromEnvOverrides(t *testing.T) {
	key := base64.StdEncoding.EncodeToString(make([]byte, 32))
	t.Setenv("HOLIDAZE_API_URL", "http://api.local/")
	t.Setenv("PAGE_LIMIT", "12")
	t.Setenv("API_RATE_PER_SECOND", "2.5")
	t.Setenv("CACHE_TTL_SECONDS", "30")
	t.Setenv("STATE_ENC_KEY", key)
	t.Setenv("COOKIE_HASH_KEY", key)
	t.Setenv("COOKIE_BLOCK_KEY", key)

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "http://api.local", cfg.APIURL)
	assert.Equal(t, 12, cfg.PageLimit)
	assert.InDelta(t, 2.5, cfg.RatePerSecond, 1e-9)
	assert.Equal(t, 30*time.Second, cfg.CacheTTL)
	assert.Len(t, cfg.StateEncKey, 32)
	assert.NoError(t, cfg.RequireCookieKeys())
}

func TestFromEnvRejects(t *testing.T) {
	tests := map[string][2]string{
		"page limit too big": {"PAGE_LIMIT", "101"},
		"page limit not int": {"PAGE_LIMIT", "lots"},
		"zero timeout":       {"API_TIMEOUT_SECONDS", "0"},
		"short state key":    {"STATE_ENC_KEY", base64.StdEncoding.EncodeToString([]byte("short"))},
		"bad base64":         {"COOKIE_HASH_KEY", "!!!"},
	}
	for name, kv := range tests {
		t.Run(name, func(t *testing.T) {
			t.Setenv(kv[0], kv[1])
			_, err := FromEnv()
			assert.Error(t, err)
		})
	}
}

func TestKeyFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "key")
	require.NoError(t, os.WriteFile(path, []byte(base64.StdEncoding.EncodeToString(make([]byte, 32))+"\n"), 0o600))
	t.Setenv("STATE_ENC_KEY", path)

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Len(t, cfg.StateEncKey, 32)
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("LISTEN_ADDR=:9999\n"), 0o600))
	t.Setenv("LISTEN_ADDR", "")
	os.Unsetenv("LISTEN_ADDR")

	cfg, err := Load(path, filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.ListenAddr)
}
