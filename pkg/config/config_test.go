package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "app.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeTempConfig(t, `
app:
  name: TripRadar
  env: test
  url: http://localhost:3000
providers:
  amadeus:
    api_key: amadeus_key
    api_secret: amadeus_secret
    base_url: https://test.api.amadeus.com
    timeout: 5s
alerts:
  cron_spec: "30 8 * * *"
  timezone: America/New_York
  check_delay: 1s
api:
  port: "9090"
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "TripRadar", cfg.App.Name)
	assert.Equal(t, "amadeus_key", cfg.Providers.Amadeus.APIKey)
	assert.Equal(t, 5*time.Second, cfg.Providers.Amadeus.Timeout)
	assert.Equal(t, "30 8 * * *", cfg.Alerts.CronSpec)
	assert.Equal(t, "America/New_York", cfg.Alerts.Timezone)
	assert.Equal(t, time.Second, cfg.Alerts.CheckDelay)
	assert.Equal(t, "9090", cfg.API.Port)
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeTempConfig(t, `
app:
  name: TripRadar
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "0 9 * * *", cfg.Alerts.CronSpec)
	assert.Equal(t, 2*time.Second, cfg.Alerts.CheckDelay)
	assert.Equal(t, 10*time.Second, cfg.Alerts.FetchTimeout)
	assert.Equal(t, "8080", cfg.API.Port)
	assert.Equal(t, 587, cfg.SMTP.Port)
	assert.Equal(t, "https://api.twilio.com", cfg.Twilio.BaseURL)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	path := writeTempConfig(t, `
app:
  name: TripRadar
providers:
  amadeus:
    api_key: from_file
`)

	t.Setenv("AMADEUS_API_KEY", "from_env")
	t.Setenv("API_PORT", "7070")
	t.Setenv("NATS_URL", "nats://localhost:4222")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "from_env", cfg.Providers.Amadeus.APIKey)
	assert.Equal(t, "7070", cfg.API.Port)
	assert.Equal(t, "nats://localhost:4222", cfg.NATS.URL)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig("/nonexistent/app.yaml")
	assert.Error(t, err)
}

func TestGetDefaultConfigPath(t *testing.T) {
	t.Setenv("APP_ENV", "")
	assert.Equal(t, "configs/dev/app.yaml", GetDefaultConfigPath())

	t.Setenv("APP_ENV", "prod")
	assert.Equal(t, "configs/prod/app.yaml", GetDefaultConfigPath())
}
