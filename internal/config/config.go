package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/PizzaFlow/backend/internal/database"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("component", "config")

// Config holds the process configuration read from environment variables
type Config struct {
	// Server Configuration
	Port   int    `json:"port"`
	Host   string `json:"host"`
	AppEnv string `json:"app_env"`

	// Database configuration
	Database database.DatabaseConfig `json:"database"`

	// Logging configuration
	LogLevel string `json:"log_level"`

	// Security Configuration
	JWTSecret string        `json:"jwt_secret"`
	JWTTTL    time.Duration `json:"jwt_ttl"`

	// Notifications. An empty AMQPHost keeps notifications in the log.
	AMQPHost        string        `json:"amqp_host"`
	AMQPPort        int           `json:"amqp_port"`
	AMQPUser        string        `json:"amqp_user"`
	AMQPPassword    string        `json:"amqp_password"`
	AMQPExchange    string        `json:"amqp_exchange"`
	NotifyQueueSize int           `json:"notify_queue_size"`
	BusinessConfig  string        `json:"business_config"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
}

// String returns a string representation of Config with sensitive data masked
func (c *Config) String() string {
	return fmt.Sprintf("Config{Port: %d, Host: %s, AppEnv: %s, Database: %s, LogLevel: %s, JWTSecret: [REDACTED], JWTTTL: %s, AMQPHost: %s, AMQPPort: %d, AMQPUser: %s, AMQPPassword: [REDACTED], AMQPExchange: %s, NotifyQueueSize: %d, BusinessConfig: %s}",
		c.Port, c.Host, c.AppEnv, c.Database.String(), c.LogLevel, c.JWTTTL,
		c.AMQPHost, c.AMQPPort, c.AMQPUser, c.AMQPExchange, c.NotifyQueueSize, c.BusinessConfig)
}

// NotificationsEnabled reports whether a message broker is configured.
func (c *Config) NotificationsEnabled() bool {
	return c.AMQPHost != ""
}

// LoadConfig reads the configuration from environment variables and validates it.
func LoadConfig() (*Config, error) {
	log.Info("Loading configuration from environment variables")
	port, err := strconv.Atoi(GetEnvWithDefault("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config := &Config{
		Port:   port,
		Host:   GetEnvWithDefault("APP_HOST", "localhost"),
		AppEnv: GetEnvWithDefault("APP_ENV", "development"),
		Database: database.DatabaseConfig{
			Driver:   GetEnvWithDefault("DB_DRIVER", "sqlite"),
			Host:     GetEnvWithDefault("DB_HOST", "localhost"),
			Port:     GetEnvWithDefault("DB_PORT", "5432"),
			User:     GetEnvWithDefault("DB_USER", "pizzaflow"),
			Password: GetEnvWithDefault("DB_PASSWORD", ""),
			Name:     GetEnvWithDefault("DB_NAME", "pizzaflow"),
			SSLMode:  GetEnvWithDefault("DB_SSLMODE", "disable"),
			Path:     GetEnvWithDefault("DB_PATH", "pizzaflow.sqlite"),
		},
		LogLevel:        os.Getenv("LOG_LEVEL"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		JWTTTL:          GetEnvAsType("JWT_TTL", 24*time.Hour),
		AMQPHost:        os.Getenv("AMQP_HOST"),
		AMQPPort:        GetEnvAsType("AMQP_PORT", 5672),
		AMQPUser:        GetEnvWithDefault("AMQP_USER", "guest"),
		AMQPPassword:    GetEnvWithDefault("AMQP_PASSWORD", "guest"),
		AMQPExchange:    GetEnvWithDefault("AMQP_EXCHANGE", "notifications_fanout"),
		NotifyQueueSize: GetEnvAsType("NOTIFY_QUEUE_SIZE", 100),
		BusinessConfig:  os.Getenv("BUSINESS_CONFIG"),
		ShutdownTimeout: GetEnvAsType("SHUTDOWN_TIMEOUT", 10*time.Second),
	}

	if err := config.validate(); err != nil {
		return nil, err
	}
	log.Infof("Configuration loaded: %s", config.String())
	return config, nil
}

func (c *Config) validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET environment variable is required")
	}
	if len(c.JWTSecret) < 32 && c.AppEnv == "production" {
		return errors.New("JWT_SECRET must be at least 32 characters in production")
	}
	if c.JWTTTL <= 0 {
		return errors.New("JWT_TTL must be positive")
	}
	if c.NotifyQueueSize <= 0 {
		return errors.New("NOTIFY_QUEUE_SIZE must be positive")
	}
	if c.Database.DSN() == "" {
		return fmt.Errorf("unsupported DB_DRIVER: %s", c.Database.Driver)
	}
	return nil
}

// Helper to get environment with default values
func GetEnvWithDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		log.Debugf("Environment variable %s not set, using default value", key)
		return defaultValue
	}
	return value
}

// GetEnvAsType retrieves an environment variable and converts it to the type of
// defaultValue, falling back to the default when unset or unparsable.
func GetEnvAsType[T any](key string, defaultValue T) T {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var result T
	switch any(result).(type) {
	case int:
		intValue, err := strconv.Atoi(value)
		if err != nil {
			return defaultValue
		}
		return any(intValue).(T)
	case string:
		return any(value).(T)
	case bool:
		boolValue, err := strconv.ParseBool(value)
		if err != nil {
			return defaultValue
		}
		return any(boolValue).(T)
	case time.Duration:
		d, err := time.ParseDuration(value)
		if err != nil {
			return defaultValue
		}
		return any(d).(T)
	default:
		return defaultValue
	}
}
