package config

import "time"

const (
	EnvDev   = "dev"
	EnvProd  = "prod"
	EnvLocal = "local"
)

var globalConfig *Config

func Global() *Config {
	return globalConfig
}

func SetGlobal(cfg *Config) {
	globalConfig = cfg
}

type Config struct {
	Env       string `env:"ENV" env-required:"true"`
	HTTP      HTTPConfig
	Postgres  PostgresConfig
	JWT       JWTConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
	Cache     CacheConfig
	Log       LogConfig
	Admin     AdminConfig
}

type HTTPConfig struct {
	Host            string        `env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port            string        `env:"HTTP_PORT" env-default:"8080"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"5s"`
}

type PostgresConfig struct {
	Host           string        `env:"POSTGRES_HOST" env-required:"true"`
	Port           int           `env:"POSTGRES_PORT" env-default:"5432"`
	Username       string        `env:"POSTGRES_USERNAME" env-required:"true"`
	Password       string        `env:"POSTGRES_PASSWORD" env-required:"true"`
	Database       string        `env:"POSTGRES_DATABASE" env-required:"true"`
	SSLMode        string        `env:"POSTGRES_SSL_MODE" env-default:"disable"`
	ConnectTimeout time.Duration `env:"POSTGRES_CONNECT_TIMEOUT" env-default:"10s"`
	PingTimeout    time.Duration `env:"POSTGRES_PING_TIMEOUT" env-default:"10s"`
}

type JWTConfig struct {
	Issuer         string        `env:"JWT_ISSUER" env-default:"taskhub"`
	SigningKey     string        `env:"JWT_SIGNING_KEY" env-required:"true"`
	AccessTokenTTL time.Duration `env:"JWT_ACCESS_TOKEN_TTL" env-default:"15m"`
}

type CORSConfig struct {
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" env-default:"http://localhost:3000,http://localhost:5173"`
}

type RateLimitConfig struct {
	Enabled bool `env:"RATE_LIMIT_ENABLED" env-default:"true"`
	// Rate uses the limiter formatted syntax, e.g. "50-H" or "200-M".
	Rate string `env:"RATE_LIMIT_RATE" env-default:"50-H"`
}

type CacheConfig struct {
	ListingTTL time.Duration `env:"CACHE_LISTING_TTL" env-default:"60s"`
}

type LogConfig struct {
	File       string `env:"LOG_FILE" env-default:""`
	MaxSizeMB  int    `env:"LOG_MAX_SIZE_MB" env-default:"10"`
	MaxBackups int    `env:"LOG_MAX_BACKUPS" env-default:"10"`
}

// AdminConfig seeds a bootstrap administrator at startup when both
// fields are set. Leaving them empty skips seeding entirely.
type AdminConfig struct {
	Email    string `env:"ADMIN_EMAIL" env-default:""`
	Password string `env:"ADMIN_PASSWORD" env-default:""`
}
