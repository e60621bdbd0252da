package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/PizzaFlow/backend/internal/delivery"
	"github.com/spf13/viper"
)

// BusinessConfig carries the operating rules of the shop. Values come from an
// optional YAML file and can be overridden by PIZZA_* environment variables,
// e.g. PIZZA_DELIVERY_LEAD_TIME=45m.
type BusinessConfig struct {
	Timezone string         `mapstructure:"timezone"`
	Delivery DeliveryConfig `mapstructure:"delivery"`
}

type DeliveryConfig struct {
	OpenAt         string        `mapstructure:"open_at"`
	CloseAt        string        `mapstructure:"close_at"`
	SlotInterval   time.Duration `mapstructure:"slot_interval"`
	LeadTime       time.Duration `mapstructure:"lead_time"`
	LoadThresholds []int         `mapstructure:"load_thresholds"`
}

func LoadBusinessConfig(path string) (*BusinessConfig, error) {
	v := viper.New()
	v.SetDefault("timezone", "Europe/Moscow")
	v.SetDefault("delivery.open_at", "09:00")
	v.SetDefault("delivery.close_at", "22:00")
	v.SetDefault("delivery.slot_interval", "30m")
	v.SetDefault("delivery.lead_time", "30m")
	v.SetDefault("delivery.load_thresholds", []int{5, 10, 15})

	v.SetEnvPrefix("PIZZA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading business config %s: %w", path, err)
		}
		log.WithField("path", v.ConfigFileUsed()).Info("Business config file loaded")
	}

	var cfg BusinessConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing business config: %w", err)
	}
	return &cfg, nil
}

func (c *BusinessConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func (c *BusinessConfig) DeliveryPolicy() (delivery.Policy, error) {
	d := c.Delivery
	return delivery.NewPolicy(d.OpenAt, d.CloseAt, d.SlotInterval, d.LeadTime, d.LoadThresholds)
}
