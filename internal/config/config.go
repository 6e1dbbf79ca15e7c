package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Snapshot store drivers.
const (
	DriverFile     = "file"
	DriverRedis    = "redis"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config represents the full application configuration surface.
type Config struct {
	Server   ServerConfig
	Store    StoreConfig
	Sheets   SheetsConfig
	MongoDB  MongoDBConfig
	Weather  WeatherConfig
	WhatsApp WhatsAppConfig
	Alerts   AlertsConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port          string
	PublicBaseURL string
	LogLevel      string
	LogFormat     string
}

// StoreConfig selects where the inventory snapshot is kept.
type StoreConfig struct {
	Driver  string
	Key     string
	FileDir string
	DSN     string
	Redis   RedisConfig
}

// RedisConfig holds Redis connection options.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// SheetsConfig contains configuration required to interact with Google Sheets.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
	Range           string
}

// Enabled reports whether Sheets import/export is configured.
func (c SheetsConfig) Enabled() bool {
	return c.CredentialsPath != "" && c.SpreadsheetID != ""
}

// MongoDBConfig holds settings for the field report store.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// Enabled reports whether field reports are configured.
func (c MongoDBConfig) Enabled() bool {
	return c.URI != ""
}

// WeatherConfig holds OpenWeatherMap settings.
type WeatherConfig struct {
	APIKey  string
	BaseURL string
	Lang    string
	Units   string
}

// WhatsAppConfig contains credentials and options for the Meta WhatsApp Cloud API.
type WhatsAppConfig struct {
	AccessToken    string
	PhoneNumberID  string
	BaseURL        string
	APIVersion     string
	AlertRecipient string
}

// Enabled reports whether low-stock alerts can be delivered.
func (c WhatsAppConfig) Enabled() bool {
	return c.AccessToken != "" && c.PhoneNumberID != "" && c.AlertRecipient != ""
}

// AlertsConfig holds scheduler-related settings.
type AlertsConfig struct {
	CronSchedule string
	Timezone     string
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Missing .env files are fine when configuration comes from the environment.
		_ = godotenv.Load()
	}

	redisDB, err := strconv.Atoi(getenvWithDefault("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("REDIS_DB must be an integer: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:          getenvWithDefault("APP_PORT", "8080"),
			PublicBaseURL: strings.TrimSuffix(getenvWithDefault("PUBLIC_BASE_URL", "http://localhost:8080"), "/"),
			LogLevel:      getenvWithDefault("LOG_LEVEL", "info"),
			LogFormat:     getenvWithDefault("LOG_FORMAT", "json"),
		},
		Store: StoreConfig{
			Driver:  strings.ToLower(getenvWithDefault("STORE_DRIVER", DriverFile)),
			Key:     getenvWithDefault("STORE_KEY", "stock_items"),
			FileDir: getenvWithDefault("STORE_FILE_DIR", "data"),
			DSN:     os.Getenv("DATABASE_DSN"),
			Redis: RedisConfig{
				Addr:     os.Getenv("REDIS_ADDR"),
				Password: os.Getenv("REDIS_PASSWORD"),
				DB:       redisDB,
			},
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_DATABASE_ID"),
			Range:           getenvWithDefault("GOOGLE_SHEET_RANGE", "Inventario!A:D"),
		},
		MongoDB: MongoDBConfig{
			URI:    os.Getenv("MONGODB_URI"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "fieldops"),
		},
		Weather: WeatherConfig{
			APIKey:  os.Getenv("WEATHER_API_KEY"),
			BaseURL: getenvWithDefault("WEATHER_BASE_URL", "https://api.openweathermap.org/data/2.5"),
			Lang:    getenvWithDefault("WEATHER_LANG", "es"),
			Units:   getenvWithDefault("WEATHER_UNITS", "metric"),
		},
		WhatsApp: WhatsAppConfig{
			AccessToken:    os.Getenv("WHATSAPP_TOKEN"),
			PhoneNumberID:  os.Getenv("WHATSAPP_PHONE_NUMBER_ID"),
			BaseURL:        getenvWithDefault("WHATSAPP_BASE_URL", "https://graph.facebook.com"),
			APIVersion:     getenvWithDefault("WHATSAPP_API_VERSION", "v20.0"),
			AlertRecipient: os.Getenv("WHATSAPP_ALERT_RECIPIENT"),
		},
		Alerts: AlertsConfig{
			CronSchedule: getenvWithDefault("ALERT_CRON_SCHEDULE", "0 7 * * *"),
			Timezone:     getenvWithDefault("TIMEZONE", "America/Mexico_City"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	if c.Store.Key == "" {
		return errors.New("STORE_KEY must not be empty")
	}

	switch c.Store.Driver {
	case DriverFile:
		if c.Store.FileDir == "" {
			return errors.New("STORE_FILE_DIR must be provided for the file driver")
		}
	case DriverRedis:
		if c.Store.Redis.Addr == "" {
			return errors.New("REDIS_ADDR must be provided for the redis driver")
		}
	case DriverSQLite, DriverPostgres:
		if c.Store.DSN == "" {
			return fmt.Errorf("DATABASE_DSN must be provided for the %s driver", c.Store.Driver)
		}
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q", c.Store.Driver)
	}

	if (c.Sheets.CredentialsPath == "") != (c.Sheets.SpreadsheetID == "") {
		return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH and GOOGLE_SHEET_DATABASE_ID must be provided together")
	}

	if c.MongoDB.Enabled() && c.MongoDB.DBName == "" {
		return errors.New("MONGODB_DB_NAME must not be empty")
	}

	if c.Weather.BaseURL == "" {
		return errors.New("WEATHER_BASE_URL must not be empty")
	}

	if c.WhatsApp.Enabled() {
		if c.WhatsApp.BaseURL == "" {
			return errors.New("WHATSAPP_BASE_URL must not be empty")
		}
		if c.WhatsApp.APIVersion == "" {
			return errors.New("WHATSAPP_API_VERSION must not be empty")
		}
		if c.Alerts.CronSchedule == "" {
			return errors.New("ALERT_CRON_SCHEDULE must be provided")
		}
		if c.Alerts.Timezone == "" {
			return errors.New("TIMEZONE must be provided")
		}
	}

	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
