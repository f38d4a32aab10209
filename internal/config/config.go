package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"    validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database"  validate:"required"`
	Auth      AuthConfig      `mapstructure:"auth"      validate:"required"`
	Cache     CacheConfig     `mapstructure:"cache"     validate:"required"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	// Driver selects the storage backend: "postgres" or "sqlite".
	Driver string `mapstructure:"driver" validate:"required,oneof=postgres sqlite"`
	URL    string `mapstructure:"url"    validate:"required"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret                   string `mapstructure:"jwt_secret"                     validate:"required,min=32"`
	TokenLifetimeMinutes        int    `mapstructure:"token_lifetime_minutes"         validate:"required,min=1,max=1440"`
	RefreshTokenLifetimeMinutes int    `mapstructure:"refresh_token_lifetime_minutes" validate:"required,min=1,max=43200"`
	BCryptCost                  int    `mapstructure:"bcrypt_cost"                    validate:"required,min=4,max=31"`
}

// CacheConfig configures the task listing cache.
type CacheConfig struct {
	// Driver selects the cache backend: "memory", "redis" or "none".
	Driver     string `mapstructure:"driver"      validate:"required,oneof=memory redis none"`
	RedisAddr  string `mapstructure:"redis_addr"  validate:"required_if=Driver redis"`
	TTLSeconds int    `mapstructure:"ttl_seconds" validate:"required,min=1"`
	// MaxEntries caps the memory backend; ignored by the other drivers.
	MaxEntries int    `mapstructure:"max_entries" validate:"min=0"`
	Prefix     string `mapstructure:"prefix"`
}

// RateLimitConfig configures request throttling on the authentication endpoints.
type RateLimitConfig struct {
	RequestsPerMinute int `mapstructure:"requests_per_minute" validate:"required,min=1"`
	Burst             int `mapstructure:"burst"               validate:"required,min=1"`
}
