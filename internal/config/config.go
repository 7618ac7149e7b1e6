package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full application configuration. Values come from an optional
// yaml file overridden by LEAFY_* environment variables.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	Store    StoreConfig    `mapstructure:"store"`
	Pricing  PricingConfig  `mapstructure:"pricing"`
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Telegram TelegramConfig `mapstructure:"telegram"`
}

type AppConfig struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
}

type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// StoreConfig selects the persistence backend. Driver is one of memory, sqlite,
// postgres; DSN is ignored for memory.
type StoreConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

type PricingConfig struct {
	// UnitPrice is the fixed per-seedling price in currency minor units.
	UnitPrice int64 `mapstructure:"unit_price"`
}

type CatalogConfig struct {
	// MaturationDays is the display horizon for batch readiness progress.
	MaturationDays int `mapstructure:"maturation_days"`
}

type AuthConfig struct {
	JWTSecret     string        `mapstructure:"jwt_secret"`
	TokenTTL      time.Duration `mapstructure:"token_ttl"`
	AdminUsername string        `mapstructure:"admin_username"`
	AdminPassword string        `mapstructure:"admin_password"`
}

type TelegramConfig struct {
	BotToken string        `mapstructure:"bot_token"`
	ChatID   string        `mapstructure:"chat_id"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// Load reads configuration from the given file path. A missing file is not an
// error; defaults and environment variables still apply.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("LEAFY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadDefault loads the conventional config file path.
func LoadDefault() (*Config, error) {
	return Load("config.yaml")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "leafy")
	v.SetDefault("app.env", "dev")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("store.driver", "memory")
	v.SetDefault("store.dsn", "")
	v.SetDefault("pricing.unit_price", 5000)
	v.SetDefault("catalog.maturation_days", 14)
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_ttl", 24*time.Hour)
	// Keys need a default registered for AutomaticEnv to surface them
	// through Unmarshal.
	v.SetDefault("auth.admin_username", "")
	v.SetDefault("auth.admin_password", "")
	v.SetDefault("telegram.bot_token", "")
	v.SetDefault("telegram.chat_id", "")
	v.SetDefault("telegram.timeout", 5*time.Second)
}

// Validate checks configuration completeness.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case "memory":
	case "sqlite", "postgres":
		if c.Store.DSN == "" {
			return fmt.Errorf("store dsn is required for driver %q", c.Store.Driver)
		}
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	if c.Pricing.UnitPrice <= 0 {
		return fmt.Errorf("unit price must be positive")
	}
	if c.Catalog.MaturationDays <= 0 {
		return fmt.Errorf("maturation days must be positive")
	}
	return nil
}
