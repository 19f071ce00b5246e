package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config groups the application settings, read from the environment and an
// optional .env / config.env file. Environment variables win.
type Config struct {
	App      AppConfig
	HTTP     HTTPConfig
	DB       DBConfig
	Log      LogConfig
	RabbitMQ RabbitMQConfig
}

// AppConfig holds general application settings.
type AppConfig struct {
	Env  string // development, production
	Name string
}

// HTTPConfig holds the HTTP server settings.
type HTTPConfig struct {
	Host        string
	Port        int
	CORSEnabled bool
}

// Addr returns the listen address (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DBConfig selects the product store.
type DBConfig struct {
	Driver string // sqlite, postgres or memory
	DSN    string
	Debug  bool
}

// LogConfig holds the logger settings.
type LogConfig struct {
	Level string
}

// RabbitMQConfig enables inventory events when URL is set.
type RabbitMQConfig struct {
	URL      string
	Exchange string
}

// Enabled reports whether events should be published.
func (c RabbitMQConfig) Enabled() bool {
	return c.URL != ""
}

// Load reads the configuration with defaults applied.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read .env: %w", err)
		}
	}

	return FromViper(v)
}

// FromViper builds a Config from an already prepared viper instance.
func FromViper(v *viper.Viper) (*Config, error) {
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &Config{
		App: AppConfig{
			Env:  v.GetString("APP_ENV"),
			Name: v.GetString("APP_NAME"),
		},
		HTTP: HTTPConfig{
			Host:        v.GetString("HTTP_HOST"),
			Port:        v.GetInt("HTTP_PORT"),
			CORSEnabled: v.GetBool("CORS_ENABLED"),
		},
		DB: DBConfig{
			Driver: strings.ToLower(v.GetString("DB_DRIVER")),
			DSN:    v.GetString("DATABASE_DSN"),
			Debug:  v.GetBool("DB_DEBUG"),
		},
		Log: LogConfig{
			Level: v.GetString("LOG_LEVEL"),
		},
		RabbitMQ: RabbitMQConfig{
			URL:      v.GetString("RABBITMQ_URL"),
			Exchange: v.GetString("RABBITMQ_EXCHANGE"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_NAME", "inventario")
	v.SetDefault("HTTP_HOST", "0.0.0.0")
	v.SetDefault("HTTP_PORT", 5000)
	v.SetDefault("CORS_ENABLED", true)
	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DATABASE_DSN", "inventario.db")
	v.SetDefault("DB_DEBUG", false)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("RABBITMQ_EXCHANGE", "inventario")
}

func (c *Config) validate() error {
	switch c.DB.Driver {
	case "sqlite", "postgres", "memory":
	default:
		return fmt.Errorf("invalid DB_DRIVER %q: want sqlite, postgres or memory", c.DB.Driver)
	}
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("invalid HTTP_PORT %d", c.HTTP.Port)
	}
	return nil
}
