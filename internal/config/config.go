// Package config provides configuration loading, validation, and
// management for groupwarden. It reads an optional YAML file, applies
// defaults, layers BOT_* environment variables on top, and validates the
// result.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-telegram/bot/models"
	"github.com/spf13/viper"
)

// Config defines the application configuration parameters for all
// components: logging, the Telegram surface, storage, the antispam
// moderation behavior, metrics, and scheduled tasks.
type Config struct {
	Logger    LoggerConfig    `mapstructure:"log"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Antispam  AntispamConfig  `mapstructure:"antispam"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

// LoggerConfig controls log verbosity and output format.
type LoggerConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// TelegramConfig holds the bot credentials and the user-facing strings.
// BotInfo is populated at startup from GetMe, not from the config file.
type TelegramConfig struct {
	Token    string         `mapstructure:"token" validate:"required"`
	Messages MessagesConfig `mapstructure:"messages"`

	BotInfo *models.User `mapstructure:"-"`
}

// MessagesConfig holds every string the bot sends to chats.
type MessagesConfig struct {
	Enabled       string `mapstructure:"enabled"`
	Disabled      string `mapstructure:"disabled"`
	GroupsOnly    string `mapstructure:"groups_only"`
	NeedAdmin     string `mapstructure:"need_admin"`
	NeedRights    string `mapstructure:"need_rights"`
	NotAuthorized string `mapstructure:"not_authorized"`
	GeneralError  string `mapstructure:"general_error"`
	KickNotice    string `mapstructure:"kick_notice"`
	Welcome       string `mapstructure:"welcome"`
}

// DatabaseConfig locates the SQLite state store.
type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// AntispamConfig tunes the moderation executor. ActionDelay is the pause
// before acting on a verdict (lets welcome bots react first); NoticeDelay
// is how long after the kick the group notice is posted.
type AntispamConfig struct {
	ActionDelay time.Duration `mapstructure:"action_delay" validate:"min=0,max=1m"`
	NoticeDelay time.Duration `mapstructure:"notice_delay" validate:"min=0,max=5m"`
}

// MetricsConfig controls the Prometheus exposition endpoint.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr" validate:"required_if=Enabled true,omitempty,hostname_port"`
}

// SchedulerConfig maps task names to their schedules.
type SchedulerConfig struct {
	Tasks map[string]TaskConfig `mapstructure:"tasks"`
}

// TaskConfig enables a registered task and assigns it a cron schedule.
type TaskConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule"`
}

// LoadConfig reads configuration from the given YAML file (which may be
// absent), applies defaults and BOT_* environment variables, and
// validates the result.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetEnvPrefix("BOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// Missing config file is fine; defaults and env vars apply.
		var notFound viper.ConfigFileNotFoundError
		if !errors.Is(err, os.ErrNotExist) && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", true)

	v.SetDefault("database.path", "storage.db")

	v.SetDefault("antispam.action_delay", time.Second)
	v.SetDefault("antispam.notice_delay", 10*time.Second)

	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.addr", "localhost:9090")

	v.SetDefault("scheduler.tasks.store_maintenance.enabled", true)
	v.SetDefault("scheduler.tasks.store_maintenance.schedule", "0 0 4 * * *")

	v.SetDefault("telegram.messages.enabled", "Antispam is now enabled in this group.")
	v.SetDefault("telegram.messages.disabled", "Antispam is now disabled in this group.")
	v.SetDefault("telegram.messages.groups_only", "Antispam can only be used in groups.")
	v.SetDefault("telegram.messages.need_admin", "I must be an admin with the Delete Messages and Ban Users permissions for antispam to work.")
	v.SetDefault("telegram.messages.need_rights", "Antispam requires the Delete Messages and Ban Users permissions.")
	v.SetDefault("telegram.messages.not_authorized", "Only group admins can toggle antispam.")
	v.SetDefault("telegram.messages.general_error", "An error occurred. Please try again later.")
	v.SetDefault("telegram.messages.kick_notice", "Kicked auto-detected spambot with ID %d")
	v.SetDefault("telegram.messages.welcome", "Hello! Add me to a group and use /antispam to enable spambot detection.")
}
