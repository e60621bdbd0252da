package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetEnvWithDefault(t *testing.T) {
	testCases := []struct {
		name         string
		key          string
		defaultValue string
		envValue     string
		expected     string
	}{
		{
			name:         "should return env value when set",
			key:          "PIZZAFLOW_TEST_KEY",
			defaultValue: "default",
			envValue:     "from_env",
			expected:     "from_env",
		},
		{
			name:         "should return default when env not set",
			key:          "PIZZAFLOW_MISSING_KEY",
			defaultValue: "default_value",
			expected:     "default_value",
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.envValue)
			assert.Equal(t, tt.expected, GetEnvWithDefault(tt.key, tt.defaultValue))
		})
	}
}

func TestGetEnvAsType(t *testing.T) {
	t.Setenv("PIZZAFLOW_INT", "42")
	t.Setenv("PIZZAFLOW_BAD_INT", "forty-two")
	t.Setenv("PIZZAFLOW_BOOL", "true")
	t.Setenv("PIZZAFLOW_DURATION", "90s")

	assert.Equal(t, 42, GetEnvAsType("PIZZAFLOW_INT", 1))
	assert.Equal(t, 1, GetEnvAsType("PIZZAFLOW_BAD_INT", 1))
	assert.True(t, GetEnvAsType("PIZZAFLOW_BOOL", false))
	assert.Equal(t, 90*time.Second, GetEnvAsType("PIZZAFLOW_DURATION", time.Minute))
	assert.Equal(t, time.Minute, GetEnvAsType("PIZZAFLOW_UNSET_DURATION", time.Minute))
}

func TestLoadConfig(t *testing.T) {
	t.Run("successful config load", func(t *testing.T) {
		t.Setenv("APP_PORT", "9000")
		t.Setenv("APP_HOST", "0.0.0.0")
		t.Setenv("JWT_SECRET", "super_secret_jwt_key_for_tests_123")
		t.Setenv("DB_DRIVER", "postgres")
		t.Setenv("DB_PASSWORD", "hunter2")
		t.Setenv("AMQP_HOST", "rabbitmq")

		cfg, err := LoadConfig()
		require.NoError(t, err)
		assert.Equal(t, 9000, cfg.Port)
		assert.Equal(t, "0.0.0.0", cfg.Host)
		assert.Equal(t, "postgres", cfg.Database.Driver)
		assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
		assert.True(t, cfg.NotificationsEnabled())
		assert.Equal(t, "notifications_fanout", cfg.AMQPExchange)
	})

	t.Run("missing jwt secret", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "")
		_, err := LoadConfig()
		assert.Error(t, err)
	})

	t.Run("invalid port", func(t *testing.T) {
		t.Setenv("APP_PORT", "eighty")
		t.Setenv("JWT_SECRET", "super_secret_jwt_key_for_tests_123")
		_, err := LoadConfig()
		assert.Error(t, err)
	})

	t.Run("unsupported driver", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "super_secret_jwt_key_for_tests_123")
		t.Setenv("DB_DRIVER", "oracle")
		_, err := LoadConfig()
		assert.Error(t, err)
	})
}

func TestConfigString_MasksSecrets(t *testing.T) {
	cfg := &Config{JWTSecret: "top-secret", AMQPPassword: "rabbit-pass"}
	cfg.Database.Password = "db-pass"

	s := cfg.String()
	assert.NotContains(t, s, "top-secret")
	assert.NotContains(t, s, "rabbit-pass")
	assert.NotContains(t, s, "db-pass")
	assert.True(t, strings.Contains(s, "[REDACTED]"))
}

func TestLoadBusinessConfig_Defaults(t *testing.T) {
	cfg, err := LoadBusinessConfig("")
	require.NoError(t, err)

	assert.Equal(t, "Europe/Moscow", cfg.Timezone)
	assert.Equal(t, 30*time.Minute, cfg.Delivery.SlotInterval)
	assert.Equal(t, []int{5, 10, 15}, cfg.Delivery.LoadThresholds)

	policy, err := cfg.DeliveryPolicy()
	require.NoError(t, err)
	assert.Equal(t, "09:00", policy.Open.String())
	assert.Equal(t, "22:00", policy.Close.String())
}

func TestLoadBusinessConfig_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "business.yaml")
	content := `timezone: UTC
delivery:
  open_at: "10:00"
  close_at: "20:00"
  slot_interval: 1h
  load_thresholds: [3, 6]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("PIZZA_DELIVERY_LEAD_TIME", "45m")

	cfg, err := LoadBusinessConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "UTC", cfg.Timezone)
	assert.Equal(t, "10:00", cfg.Delivery.OpenAt)
	assert.Equal(t, time.Hour, cfg.Delivery.SlotInterval)
	assert.Equal(t, 45*time.Minute, cfg.Delivery.LeadTime)
	assert.Equal(t, []int{3, 6}, cfg.Delivery.LoadThresholds)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "UTC", loc.String())
}

func TestLoadBusinessConfig_MissingFile(t *testing.T) {
	_, err := LoadBusinessConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
