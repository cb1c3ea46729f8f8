package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Queue drivers accepted by QUEUE_DRIVER.
const (
	QueueDriverMemory   = "memory"
	QueueDriverRabbitMQ = "rabbitmq"
	QueueDriverKafka    = "kafka"
)

// Config holds all configuration for the application.
type Config struct {
	Port                             string `mapstructure:"PORT"`
	GinMode                          string `mapstructure:"GIN_MODE"`
	FirebaseProjectID                string `mapstructure:"FIREBASE_PROJECT_ID"`
	GoogleApplicationCredentials     string `mapstructure:"GOOGLE_APPLICATION_CREDENTIALS"`
	FirebaseServiceAccountJSONBase64 string `mapstructure:"FIREBASE_SERVICE_ACCOUNT_JSON_BASE64"`
	FirebaseWebAPIKey                string `mapstructure:"FIREBASE_WEB_API_KEY"` // Identity Toolkit REST key
	ClientURL                        string `mapstructure:"CLIENT_URL"`
	AppURL                           string `mapstructure:"APP_URL"`
	TrustedProxies                   string `mapstructure:"TRUSTED_PROXIES"` // Comma separated IPs/CIDRs allowed to set X-Forwarded-For

	SMTPHost     string `mapstructure:"SMTP_HOST"`
	SMTPPort     int    `mapstructure:"SMTP_PORT"`
	SMTPUser     string `mapstructure:"SMTP_USER"`
	SMTPPassword string `mapstructure:"SMTP_PASSWORD"`
	EmailFrom    string `mapstructure:"EMAIL_FROM"`

	QueueDriver   string `mapstructure:"QUEUE_DRIVER"`
	RabbitMQURL   string `mapstructure:"RABBITMQ_URL"`
	KafkaBrokers  string `mapstructure:"KAFKA_BROKERS"` // Comma separated
	KafkaTopic    string `mapstructure:"KAFKA_TOPIC"`
	KafkaGroupID  string `mapstructure:"KAFKA_GROUP_ID"`
	KafkaUsername string `mapstructure:"KAFKA_USERNAME"` // SASL/PLAIN over TLS when set
	KafkaPassword string `mapstructure:"KAFKA_PASSWORD"`

	QueuePublishTimeout time.Duration `mapstructure:"QUEUE_PUBLISH_TIMEOUT"` // Upper bound on a signup-path publish

	RedisAddr          string        `mapstructure:"REDIS_ADDR"`
	RedisPassword      string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB            int           `mapstructure:"REDIS_DB"`
	AdminEmailCacheTTL time.Duration `mapstructure:"ADMIN_EMAIL_CACHE_TTL"`

	PackagesFile       string  `mapstructure:"PACKAGES_FILE"`
	DefaultPhoneRegion string  `mapstructure:"DEFAULT_PHONE_REGION"`
	AuthRateLimit      float64 `mapstructure:"AUTH_RATE_LIMIT"` // Requests per second per client IP
	AuthRateBurst      int     `mapstructure:"AUTH_RATE_BURST"`
}

var appConfig *Config

var envKeys = []string{
	"PORT", "GIN_MODE",
	"FIREBASE_PROJECT_ID", "GOOGLE_APPLICATION_CREDENTIALS", "FIREBASE_SERVICE_ACCOUNT_JSON_BASE64",
	"FIREBASE_WEB_API_KEY", "CLIENT_URL", "APP_URL", "TRUSTED_PROXIES",
	"SMTP_HOST", "SMTP_PORT", "SMTP_USER", "SMTP_PASSWORD", "EMAIL_FROM",
	"QUEUE_DRIVER", "RABBITMQ_URL", "KAFKA_BROKERS", "KAFKA_TOPIC", "KAFKA_GROUP_ID",
	"KAFKA_USERNAME", "KAFKA_PASSWORD", "QUEUE_PUBLISH_TIMEOUT",
	"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB", "ADMIN_EMAIL_CACHE_TTL",
	"PACKAGES_FILE", "DEFAULT_PHONE_REGION", "AUTH_RATE_LIMIT", "AUTH_RATE_BURST",
}

// LoadConfig reads and validates the configuration.
func LoadConfig() (*Config, error) {
	cfg, err := Read()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	appConfig = cfg
	return appConfig, nil
}

// Read loads configuration from environment variables using Viper without
// validating it. Outside release mode a local .env file is read first when present.
func Read() (*Config, error) {
	if !strings.EqualFold(os.Getenv("GIN_MODE"), "release") {
		// A missing .env is fine; the process environment still applies.
		_ = godotenv.Load()
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)
	for _, key := range envKeys {
		_ = v.BindEnv(key)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.New("failed to unmarshal config: " + err.Error())
	}
	if cfg.EmailFrom == "" {
		cfg.EmailFrom = cfg.SMTPUser
	}
	cfg.QueueDriver = strings.ToLower(strings.TrimSpace(cfg.QueueDriver))
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("APP_URL", "http://localhost:3000")
	v.SetDefault("CLIENT_URL", "http://localhost:3000")
	v.SetDefault("SMTP_HOST", "smtp.gmail.com")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("QUEUE_DRIVER", QueueDriverMemory)
	v.SetDefault("KAFKA_TOPIC", "signup-notifications")
	v.SetDefault("KAFKA_GROUP_ID", "stockx-notifier")
	v.SetDefault("QUEUE_PUBLISH_TIMEOUT", 3*time.Second)
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("ADMIN_EMAIL_CACHE_TTL", 5*time.Minute)
	v.SetDefault("DEFAULT_PHONE_REGION", "US")
	v.SetDefault("AUTH_RATE_LIMIT", 1.0)
	v.SetDefault("AUTH_RATE_BURST", 5)
}

// Validate checks required fields and driver-specific settings.
func (c *Config) Validate() error {
	if c.FirebaseProjectID == "" {
		return errors.New("FIREBASE_PROJECT_ID is required")
	}
	if c.FirebaseWebAPIKey == "" {
		return errors.New("FIREBASE_WEB_API_KEY is required")
	}
	switch c.QueueDriver {
	case QueueDriverMemory:
	case QueueDriverRabbitMQ:
		if c.RabbitMQURL == "" {
			return errors.New("RABBITMQ_URL is required when QUEUE_DRIVER=rabbitmq")
		}
	case QueueDriverKafka:
		if len(c.KafkaBrokerList()) == 0 {
			return errors.New("KAFKA_BROKERS is required when QUEUE_DRIVER=kafka")
		}
	default:
		return errors.New("QUEUE_DRIVER must be one of memory, rabbitmq, kafka")
	}
	if c.AuthRateLimit <= 0 || c.AuthRateBurst <= 0 {
		return errors.New("AUTH_RATE_LIMIT and AUTH_RATE_BURST must be positive")
	}
	return nil
}

// KafkaBrokerList splits KAFKA_BROKERS on commas.
func (c *Config) KafkaBrokerList() []string {
	return splitList(c.KafkaBrokers)
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// TrustedProxyList splits TRUSTED_PROXIES on commas. Empty means no proxy is trusted.
func (c *Config) TrustedProxyList() []string {
	return splitList(c.TrustedProxies)
}

// IsRelease reports whether gin runs in release mode.
func (c *Config) IsRelease() bool {
	return strings.EqualFold(c.GinMode, "release")
}

// GetConfig returns the loaded application configuration.
// It will panic if LoadConfig has not been called successfully.
func GetConfig() *Config {
	if appConfig == nil {
		panic("config not loaded; call LoadConfig first")
	}
	return appConfig
}
