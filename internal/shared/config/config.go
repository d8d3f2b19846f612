package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Notification channels.
const (
	ChannelLog      = "log"
	ChannelTelegram = "telegram"
	ChannelKafka    = "kafka"
)

// Config holds all configuration for the application.
type Config struct {
	AppEnv        string
	DatabaseURL   string // Empty selects the in-memory store
	EncryptionKey string
	Notify        NotifyConfig
}

// NotifyConfig selects and configures the activation notification transport.
type NotifyConfig struct {
	Channel  string
	Timeout  time.Duration
	Telegram TelegramConfig
	Kafka    KafkaConfig
}

type TelegramConfig struct {
	Token  string
	Silent bool // Deliver without a notification sound
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// env bindings, viper key -> environment variable
var envBindings = map[string]string{
	"app.env":         "APP_ENV",
	"database.url":    "DATABASE_URL",
	"encryption.key":  "ENCRYPTION_KEY",
	"notify.channel":  "NOTIFY_CHANNEL",
	"notify.timeout":  "NOTIFY_TIMEOUT",
	"telegram.token":  "TELEGRAM_BOT_TOKEN",
	"telegram.silent": "TELEGRAM_SILENT",
	"kafka.brokers":   "KAFKA_BROKERS",
	"kafka.topic":     "KAFKA_TOPIC",
}

// Load loads configuration from the environment (and an optional .env file).
func Load() (*Config, error) {
	return LoadWithFlags(nil)
}

// LoadWithFlags is Load with command-line overrides. Flags are bound by
// their viper key name, e.g. --notify.channel.
func LoadWithFlags(flags *pflag.FlagSet) (*Config, error) {
	// 1. Load .env file into the process environment
	if err := godotenv.Load(); err != nil {
		// A missing file is fine, we rely on OS-set env vars then.
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	v := viper.New()

	// 2. Explicitly bind viper keys to env var names
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("could not bind %s: %w", key, err)
		}
	}
	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("could not bind flags: %w", err)
		}
	}

	// 3. Set defaults
	v.SetDefault("app.env", "dev")
	v.SetDefault("notify.channel", ChannelLog)
	v.SetDefault("notify.timeout", "5s")
	v.SetDefault("kafka.topic", "account.notifications")

	// 4. Get values
	cfg := Config{
		AppEnv:        v.GetString("app.env"),
		DatabaseURL:   v.GetString("database.url"),
		EncryptionKey: v.GetString("encryption.key"),
		Notify: NotifyConfig{
			Channel: strings.ToLower(v.GetString("notify.channel")),
			Timeout: v.GetDuration("notify.timeout"),
			Telegram: TelegramConfig{
				Token:  v.GetString("telegram.token"),
				Silent: v.GetBool("telegram.silent"),
			},
			Kafka: KafkaConfig{
				Brokers: splitList(v.GetString("kafka.brokers")),
				Topic:   v.GetString("kafka.topic"),
			},
		},
	}

	// 5. Validation
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// IsDev reports whether human-readable logging should be used.
func (c *Config) IsDev() bool {
	return c.AppEnv == "dev" || c.AppEnv == "development"
}

// Validate checks required settings for the selected store and channel.
func (c *Config) Validate() error {
	if c.DatabaseURL != "" {
		if c.EncryptionKey == "" {
			return errors.New("ENCRYPTION_KEY is required when DATABASE_URL is set")
		}
		if len(c.EncryptionKey) != 64 {
			return fmt.Errorf("ENCRYPTION_KEY must be a 64-character hex string (32 bytes), but got %d chars", len(c.EncryptionKey))
		}
	}

	if c.Notify.Timeout <= 0 {
		return fmt.Errorf("NOTIFY_TIMEOUT must be positive, got %s", c.Notify.Timeout)
	}

	switch c.Notify.Channel {
	case ChannelLog:
	case ChannelTelegram:
		if c.Notify.Telegram.Token == "" {
			return errors.New("TELEGRAM_BOT_TOKEN is required for the telegram channel")
		}
	case ChannelKafka:
		if len(c.Notify.Kafka.Brokers) == 0 {
			return errors.New("KAFKA_BROKERS is required for the kafka channel")
		}
		if c.Notify.Kafka.Topic == "" {
			return errors.New("KAFKA_TOPIC must not be empty")
		}
	default:
		return fmt.Errorf("unknown NOTIFY_CHANNEL %q (want log, telegram or kafka)", c.Notify.Channel)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
