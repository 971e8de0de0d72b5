package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server struct {
		Addr string `mapstructure:"addr"`
	} `mapstructure:"server"`
	Postgres struct {
		DSN string `mapstructure:"dsn"`
	} `mapstructure:"postgres"`
	Redis struct {
		Addr     string        `mapstructure:"addr"`
		Password string        `mapstructure:"password"`
		DB       int           `mapstructure:"db"`
		TTL      time.Duration `mapstructure:"ttl"`
	} `mapstructure:"redis"`
	Kafka struct {
		Brokers         []string `mapstructure:"brokers"`
		TradeTopic      string   `mapstructure:"trade_topic"`
		MarketDataTopic string   `mapstructure:"market_data_topic"`
	} `mapstructure:"kafka"`
	Restore struct {
		Enabled bool     `mapstructure:"enabled"`
		Symbols []string `mapstructure:"symbols"`
	} `mapstructure:"restore"`
}

// Load reads the config file at path (optional when empty) with
// environment variables taking precedence.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("redis.ttl", 5*time.Minute)
	v.SetDefault("kafka.trade_topic", "trades")
	v.SetDefault("kafka.market_data_topic", "market-data")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	return &cfg, nil
}
