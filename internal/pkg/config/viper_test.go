package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
vendor:
  base_url: https://api.example.test/json
  timeout_seconds: 15
registration:
  max_attempts: 4
instrument:
  log_mask_fields: backup_password, secret_seed ,,pin
  exporters:
    - otlp
app:
  server:
    cors:
      - http://localhost:3000
`

func TestNewViperFromBytes(t *testing.T) {
	t.Parallel()

	cfg, err := NewViperFromBytes("yaml", []byte(sampleYAML), WithDefaults(map[string]any{
		"vendor.locale":             "en-US",
		"registration.max_attempts": 30,
	}))
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.test/json", cfg.GetString("vendor.base_url"))
	assert.Equal(t, 15*time.Second, cfg.GetSecond("vendor.timeout_seconds"))
	assert.Equal(t, "en-US", cfg.GetString("vendor.locale"))
	assert.Equal(t, 4, cfg.GetInt("registration.max_attempts"))
	assert.Equal(t, []string{"backup_password", "secret_seed", "pin"}, cfg.GetArray("instrument.log_mask_fields"))
	assert.Equal(t, []string{"otlp"}, cfg.GetArray("instrument.exporters"))
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.GetArray("app.server.cors"))
	assert.Empty(t, cfg.GetArray("missing.key"))
	assert.NoError(t, cfg.Close())
}

func TestNewViperFromBytes_RequiresType(t *testing.T) {
	t.Parallel()

	_, err := NewViperFromBytes(" ", nil)
	require.Error(t, err)
}

func TestNewViper_MissingFileUsesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := NewViper(filepath.Join(t.TempDir(), "absent.yaml"), WithDefaults(map[string]any{
		"keystore.driver": "file",
	}))
	require.NoError(t, err)
	assert.Equal(t, "file", cfg.GetString("keystore.driver"))
}

func TestNewViper_ReadsFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o600))

	cfg, err := NewViper(path)
	require.NoError(t, err)
	assert.Equal(t, 15*time.Second, cfg.GetSecond("vendor.timeout_seconds"))
}

func TestWithEnvBinding(t *testing.T) {
	t.Setenv("AUTHBITE_TEST_API_KEY", "from-env")

	cfg, err := NewViperFromBytes("yaml", []byte(sampleYAML), WithEnvBinding("vendor.api_key", "AUTHBITE_TEST_API_KEY"))
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.GetString("vendor.api_key"))
}

func TestWithEnvPrefix(t *testing.T) {
	t.Setenv("AUTHBITE_VENDOR_BASE_URL", "http://override.test")

	cfg, err := NewViperFromBytes("yaml", []byte(sampleYAML), WithEnvPrefix("AUTHBITE"))
	require.NoError(t, err)
	assert.Equal(t, "http://override.test", cfg.GetString("vendor.base_url"))
}
