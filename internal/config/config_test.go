package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), false)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:5043/api", cfg.APIBaseURL)
	assert.Equal(t, 10*time.Second, cfg.Timeout.Std())
	assert.Equal(t, "es-CL", cfg.Currency)
	assert.NotEmpty(t, cfg.Database)
}

func TestLoad_ExplicitMissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), true)
	assert.Error(t, err)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
api_base_url: https://tienda.example.com/api
timeout: 3s
database: /tmp/cart-test.db
currency: en-US
`), 0o644))

	cfg, err := Load(path, true)
	require.NoError(t, err)

	assert.Equal(t, "https://tienda.example.com/api", cfg.APIBaseURL)
	assert.Equal(t, 3*time.Second, cfg.Timeout.Std())
	assert.Equal(t, "/tmp/cart-test.db", cfg.Database)
	assert.Equal(t, "en-US", cfg.Currency)
}

func TestLoad_MalformedYAMLFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api_base_url: [broken"), 0o644))

	_, err := Load(path, true)
	assert.Error(t, err)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api_base_url: https://file.example.com/api\n"), 0o644))

	t.Setenv(EnvAPIURL, "https://env.example.com/api")
	t.Setenv(EnvDatabase, "/tmp/env-cart.db")

	cfg, err := Load(path, true)
	require.NoError(t, err)

	assert.Equal(t, "https://env.example.com/api", cfg.APIBaseURL)
	assert.Equal(t, "/tmp/env-cart.db", cfg.Database)
}

func TestToken_EnvWinsOverFile(t *testing.T) {
	tokenPath := filepath.Join(t.TempDir(), "token")
	require.NoError(t, os.WriteFile(tokenPath, []byte("file-token\n"), 0o600))

	cfg := Config{TokenFile: tokenPath}
	t.Setenv(EnvToken, "")
	assert.Equal(t, "file-token", cfg.Token(), "token file is trimmed and used")

	t.Setenv(EnvToken, "env-token")
	assert.Equal(t, "env-token", cfg.Token())
}

func TestToken_AbsentMeansGuest(t *testing.T) {
	t.Setenv(EnvToken, "")
	cfg := Config{}
	assert.Empty(t, cfg.Token())
}
