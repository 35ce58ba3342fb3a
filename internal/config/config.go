// Package config manages application configuration from environment
// variables, the config file, and default values.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config defines the application configuration. Values can be set via
// environment variables prefixed with BOT_ (e.g. BOT_TELEGRAM_TOKEN) or
// through config.yaml.
type Config struct {
	Log       LogConfig       `mapstructure:"log"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	API       APIConfig       `mapstructure:"api"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Messages  MessagesConfig  `mapstructure:"messages"`
}

// LogConfig controls structured logging output.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// TelegramConfig holds the bot credential and the admin allow-list.
// AdminIDs is a comma-separated list of Telegram user IDs; AdminIDList is
// its parsed form, filled during Load.
type TelegramConfig struct {
	Token    string `mapstructure:"token" validate:"required"`
	AdminIDs string `mapstructure:"admin_ids"`

	AdminIDList []int64 `mapstructure:"-"`
}

// APIConfig holds the provisioning panel credential and endpoint.
type APIConfig struct {
	Token   string        `mapstructure:"token"    validate:"required"`
	BaseURL string        `mapstructure:"base_url" validate:"required,url"`
	Timeout time.Duration `mapstructure:"timeout"  validate:"min=1s,max=5m"`
}

// DatabaseConfig holds the SQLite database location.
type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// SchedulerConfig configures scheduled background tasks by name.
type SchedulerConfig struct {
	Tasks map[string]TaskConfig `mapstructure:"tasks"`
}

// TaskConfig enables one scheduled task and sets its cron schedule.
type TaskConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule"`
}

// MessagesConfig holds the user-facing reply texts.
type MessagesConfig struct {
	Greeting          string `mapstructure:"greeting"           validate:"required"`
	AlreadyRegistered string `mapstructure:"already_registered" validate:"required"`
	ChooseUsername    string `mapstructure:"choose_username"    validate:"required"`
	RegistrationDone  string `mapstructure:"registration_done"  validate:"required"`
	NotRegistered     string `mapstructure:"not_registered"     validate:"required"`
	UsersEmpty        string `mapstructure:"users_empty"        validate:"required"`
	RegistryEmpty     string `mapstructure:"registry_empty"     validate:"required"`
	GeneralError      string `mapstructure:"general_error"      validate:"required"`
}

// Load loads and validates configuration from:
// 1. Default values
// 2. The config file at configPath (optional)
// 3. BOT_* environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	v.SetEnvPrefix("BOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Allow missing config file; env and defaults may be enough.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	adminIDs, err := ParseAdminIDs(cfg.Telegram.AdminIDs)
	if err != nil {
		return nil, fmt.Errorf("invalid telegram.admin_ids: %w", err)
	}
	cfg.Telegram.AdminIDList = adminIDs

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// ParseAdminIDs parses a comma-separated list of Telegram user IDs.
// Empty entries are skipped; an empty input yields an empty list.
func ParseAdminIDs(raw string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("not a valid user ID: %q", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", true)

	v.SetDefault("telegram.token", "")
	v.SetDefault("telegram.admin_ids", "")

	v.SetDefault("api.token", "")
	v.SetDefault("api.base_url", "")
	v.SetDefault("api.timeout", 30*time.Second)

	v.SetDefault("database.path", "storage.db")

	v.SetDefault("scheduler.tasks.sql_maintenance.enabled", true)
	v.SetDefault("scheduler.tasks.sql_maintenance.schedule", "0 3 * * *")

	v.SetDefault("messages.greeting", "Hi 👋\nChoose an action:")
	v.SetDefault("messages.already_registered", "You are already registered.")
	v.SetDefault("messages.choose_username", "Choose a username:")
	v.SetDefault("messages.registration_done", "✅ Registration complete\n\nServer response:\n%s")
	v.SetDefault("messages.not_registered", "❌ You are not registered yet.")
	v.SetDefault("messages.users_empty", "The user list is empty or the response format was not recognized.")
	v.SetDefault("messages.registry_empty", "No users in the database yet.")
	v.SetDefault("messages.general_error", "An error occurred. Please try again later.")
}
