package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Database drivers understood by the database package.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config is the full runtime configuration, read from the environment.
type Config struct {
	ServiceName string
	LogLevel    string
	AppPort     string
	// SecureCookies marks session cookies Secure and SameSite=None.
	SecureCookies bool

	DBDriver    string
	DatabaseDSN string

	JWTSecret      string
	SellerEmail    string
	SellerPassword string

	RabbitMQURL string
	RedisAddr   string

	RazorpayKeyID         string
	RazorpayKeySecret     string
	RazorpayWebhookSecret string
	Currency              string
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("SERVICE_NAME", "greencart")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("COOKIE_SECURE", false)
	v.SetDefault("DB_DRIVER", DriverSQLite)
	v.SetDefault("DATABASE_DSN", "greencart.db")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("SELLER_EMAIL", "admin@greencart.dev")
	v.SetDefault("SELLER_PASSWORD", "")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("RAZORPAY_KEY_ID", "")
	v.SetDefault("RAZORPAY_KEY_SECRET", "")
	v.SetDefault("RAZORPAY_WEBHOOK_SECRET", "")
	v.SetDefault("CURRENCY", "INR")
}

// Load reads the configuration from environment variables.
func Load() (Config, error) {
	v := viper.New()
	SetDefaults(v)
	v.AutomaticEnv()
	return FromViper(v)
}

// FromViper builds and validates a Config from an existing viper instance.
func FromViper(v *viper.Viper) (Config, error) {
	cfg := Config{
		ServiceName:           v.GetString("SERVICE_NAME"),
		LogLevel:              v.GetString("LOG_LEVEL"),
		AppPort:               v.GetString("APP_PORT"),
		SecureCookies:         v.GetBool("COOKIE_SECURE"),
		DBDriver:              strings.ToLower(v.GetString("DB_DRIVER")),
		DatabaseDSN:           v.GetString("DATABASE_DSN"),
		JWTSecret:             v.GetString("JWT_SECRET"),
		SellerEmail:           v.GetString("SELLER_EMAIL"),
		SellerPassword:        v.GetString("SELLER_PASSWORD"),
		RabbitMQURL:           v.GetString("RABBITMQ_URL"),
		RedisAddr:             v.GetString("REDIS_ADDR"),
		RazorpayKeyID:         v.GetString("RAZORPAY_KEY_ID"),
		RazorpayKeySecret:     v.GetString("RAZORPAY_KEY_SECRET"),
		RazorpayWebhookSecret: v.GetString("RAZORPAY_WEBHOOK_SECRET"),
		Currency:              strings.ToUpper(v.GetString("CURRENCY")),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports missing or unsupported settings.
func (c Config) Validate() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.RazorpayKeySecret == "" {
		errs = append(errs, errors.New("RAZORPAY_KEY_SECRET is required"))
	}
	switch c.DBDriver {
	case DriverSQLite, DriverPostgres, DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver))
	}
	return errors.Join(errs...)
}

// Warnings lists settings that are allowed but leave a feature unusable.
func (c Config) Warnings() []string {
	var warnings []string
	if c.RazorpayWebhookSecret == "" {
		warnings = append(warnings, "RAZORPAY_WEBHOOK_SECRET is not set, every webhook delivery will be rejected")
	}
	if c.RazorpayKeyID == "" {
		warnings = append(warnings, "RAZORPAY_KEY_ID is not set, online checkout cannot open")
	}
	if c.SellerPassword == "" {
		warnings = append(warnings, "SELLER_PASSWORD is not set, seller login is disabled")
	}
	return warnings
}
