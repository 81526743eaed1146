// Package config loads the bot configuration from defaults, an optional
// YAML file, a .env file and the environment, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Bot      BotConfig      `mapstructure:"bot"`
	Store    StoreConfig    `mapstructure:"store"`
	Journal  JournalConfig  `mapstructure:"journal"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	Logger   LoggerConfig   `mapstructure:"logger"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// BotConfig holds the Telegram credentials.
type BotConfig struct {
	Token string `mapstructure:"token"`
}

// StoreConfig holds the data file settings.
type StoreConfig struct {
	Path        string        `mapstructure:"path" validate:"required"`
	Scope       string        `mapstructure:"scope" validate:"oneof=shared per_user"`
	SaveTimeout time.Duration `mapstructure:"save_timeout" validate:"gte=0"`
}

// JournalConfig holds the event journal settings. An empty path disables it.
type JournalConfig struct {
	Path string `mapstructure:"path"`
}

// TelegramConfig holds Bot API client settings.
type TelegramConfig struct {
	PollTimeout time.Duration `mapstructure:"poll_timeout" validate:"gt=0"`
	SendTimeout time.Duration `mapstructure:"send_timeout" validate:"gt=0"`
	RateLimit   float64       `mapstructure:"rate_limit" validate:"gte=0"`
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=json console"`
}

// MetricsConfig holds the ops server settings.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr" validate:"required_if=Enabled true"`
}

// Options selects the optional sources.
type Options struct {
	// File is a YAML config file. Empty means none.
	File string

	// EnvFile is a dotenv file; a missing file is ignored.
	// Default: ".env"
	EnvFile string
}

// envBindings maps config keys to environment variables.
var envBindings = map[string]string{
	"bot.token":             "BOT_TOKEN",
	"store.path":            "DATA_FILE",
	"store.scope":           "LIST_SCOPE",
	"store.save_timeout":    "STORE_SAVE_TIMEOUT",
	"journal.path":          "JOURNAL_PATH",
	"telegram.poll_timeout": "TELEGRAM_POLL_TIMEOUT",
	"telegram.send_timeout": "TELEGRAM_SEND_TIMEOUT",
	"telegram.rate_limit":   "TELEGRAM_RATE_LIMIT",
	"logger.level":          "LOG_LEVEL",
	"logger.format":         "LOG_FORMAT",
	"metrics.enabled":       "METRICS_ENABLED",
	"metrics.addr":          "METRICS_ADDR",
}

// Load reads and validates the configuration.
func Load(opts Options) (*Config, error) {
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	// Already exported variables win over the file.
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", envFile, err)
	}

	v := viper.New()
	setDefaults(v)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	if opts.File != "" {
		v.SetConfigFile(opts.File)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks field constraints. The bot token is only checked by
// ValidateServe since offline commands do not need it.
func (c *Config) Validate() error {
	return validator.New().Struct(c)
}

// ValidateServe additionally requires what serving the bot needs.
func (c *Config) ValidateServe() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Bot.Token == "" {
		return errors.New("bot token is required (BOT_TOKEN)")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("bot.token", "")

	v.SetDefault("store.path", DefaultDataPath())
	v.SetDefault("store.scope", "shared")
	v.SetDefault("store.save_timeout", "5s")

	v.SetDefault("journal.path", "")

	v.SetDefault("telegram.poll_timeout", "10s")
	v.SetDefault("telegram.send_timeout", "10s")
	v.SetDefault("telegram.rate_limit", 25)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")

	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.addr", ":9090")
}

// DefaultDataPath is $XDG_DATA_HOME/shoplist/data.json, or ./data.json
// when XDG_DATA_HOME is unset.
func DefaultDataPath() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "shoplist", "data.json")
	}
	return "data.json"
}
