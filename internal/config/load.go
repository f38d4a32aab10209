package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable the loader reads,
// e.g. TASKS_SERVER_PORT or TASKS_AUTH_JWT_SECRET.
const EnvPrefix = "TASKS"

// Load configuration from environment variables and optionally a config.yaml file
// in the working directory. Environment variables take precedence over values
// from the config file.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv only resolves keys viper already knows about, so keys
	// without defaults must be bound explicitly.
	if err := v.BindEnv("auth.jwt_secret"); err != nil {
		return nil, fmt.Errorf("failed to bind auth.jwt_secret: %w", err)
	}
	if err := v.BindEnv("cache.redis_addr"); err != nil {
		return nil, fmt.Errorf("failed to bind cache.redis_addr: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.url", "file:tasks.db?_foreign_keys=on")

	v.SetDefault("auth.token_lifetime_minutes", 60)
	v.SetDefault("auth.refresh_token_lifetime_minutes", 10080)
	v.SetDefault("auth.bcrypt_cost", 10)

	v.SetDefault("cache.driver", "memory")
	v.SetDefault("cache.ttl_seconds", 60)
	v.SetDefault("cache.max_entries", 10000)
	v.SetDefault("cache.prefix", "tasks:")

	v.SetDefault("ratelimit.requests_per_minute", 10)
	v.SetDefault("ratelimit.burst", 5)
}
