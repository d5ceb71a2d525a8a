package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Cfg 全局可访问的配置实例
var Cfg *Config

// LoadConfig 从文件加载配置并填充到 Cfg
func LoadConfig() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")

	viper.SetDefault("cache.profile_ttl", 600)
	viper.SetDefault("cache.aggregate_ttl", 6000)
	viper.SetDefault("repair.cron_spec", "@every 5m")

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("config file not found: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	Cfg = &cfg

	return nil
}

// ProfileTTL 档案类缓存过期时间
func (c *Config) ProfileTTL() time.Duration {
	return time.Duration(c.Cache.ProfileTTL) * time.Second
}

// AggregateTTL 聚合类缓存过期时间
func (c *Config) AggregateTTL() time.Duration {
	return time.Duration(c.Cache.AggregateTTL) * time.Second
}
