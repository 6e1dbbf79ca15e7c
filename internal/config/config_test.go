package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var managedKeys = []string{
	"APP_PORT", "PUBLIC_BASE_URL", "STORE_DRIVER", "STORE_KEY", "STORE_FILE_DIR", "DATABASE_DSN",
	"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB", "GOOGLE_SHEETS_CREDENTIALS_PATH", "GOOGLE_SHEET_DATABASE_ID",
	"GOOGLE_SHEET_RANGE", "MONGODB_URI", "MONGODB_DB_NAME", "WEATHER_API_KEY", "WEATHER_BASE_URL",
	"WEATHER_LANG", "WEATHER_UNITS", "WHATSAPP_TOKEN", "WHATSAPP_PHONE_NUMBER_ID", "WHATSAPP_BASE_URL",
	"WHATSAPP_API_VERSION", "WHATSAPP_ALERT_RECIPIENT", "ALERT_CRON_SCHEDULE", "TIMEZONE", "LOG_LEVEL", "LOG_FORMAT",
}

// clearEnv blanks every variable Load reads; t.Setenv restores them afterwards.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range managedKeys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func emptyEnvFile(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(p, []byte("# empty\n"), 0o600))
	return p
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(emptyEnvFile(t))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "info", cfg.Server.LogLevel)
	assert.Equal(t, "json", cfg.Server.LogFormat)
	assert.Equal(t, DriverFile, cfg.Store.Driver)
	assert.Equal(t, "stock_items", cfg.Store.Key)
	assert.Equal(t, "data", cfg.Store.FileDir)
	assert.Equal(t, "Inventario!A:D", cfg.Sheets.Range)
	assert.False(t, cfg.Sheets.Enabled())
	assert.False(t, cfg.MongoDB.Enabled())
	assert.False(t, cfg.WhatsApp.Enabled())
	assert.Equal(t, "es", cfg.Weather.Lang)
	assert.Equal(t, "0 7 * * *", cfg.Alerts.CronSchedule)
}

func TestLoadFromEnvFile(t *testing.T) {
	clearEnv(t)

	p := filepath.Join(t.TempDir(), "app.env")
	content := "STORE_DRIVER=Redis\nREDIS_ADDR=localhost:6379\nREDIS_DB=3\nPUBLIC_BASE_URL=https://field.example.com/\n"
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))

	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, DriverRedis, cfg.Store.Driver)
	assert.Equal(t, "localhost:6379", cfg.Store.Redis.Addr)
	assert.Equal(t, 3, cfg.Store.Redis.DB)
	assert.Equal(t, "https://field.example.com", cfg.Server.PublicBaseURL)
}

func TestLoadRejectsInvalidRedisDB(t *testing.T) {
	clearEnv(t)
	t.Setenv("REDIS_DB", "two")

	_, err := Load(emptyEnvFile(t))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:  ServerConfig{Port: "8080"},
			Store:   StoreConfig{Driver: DriverFile, Key: "stock_items", FileDir: "data"},
			Weather: WeatherConfig{BaseURL: "https://api.openweathermap.org/data/2.5"},
		}
	}

	require.NoError(t, valid().Validate())

	cases := map[string]func(*Config){
		"missing port":        func(c *Config) { c.Server.Port = "" },
		"unknown driver":      func(c *Config) { c.Store.Driver = "dynamo" },
		"redis without addr":  func(c *Config) { c.Store.Driver = DriverRedis },
		"sqlite without dsn":  func(c *Config) { c.Store.Driver = DriverSQLite },
		"empty key":           func(c *Config) { c.Store.Key = "" },
		"half sheets config":  func(c *Config) { c.Sheets.SpreadsheetID = "abc" },
		"mongo without db":    func(c *Config) { c.MongoDB.URI = "mongodb://localhost" },
		"whatsapp no version": func(c *Config) {
			c.WhatsApp = WhatsAppConfig{AccessToken: "t", PhoneNumberID: "p", AlertRecipient: "r", BaseURL: "x"}
		},
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := valid()
			mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	var nilCfg *Config
	assert.Error(t, nilCfg.Validate())
}
