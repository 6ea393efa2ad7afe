package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Abraxas-365/fittsee/pkg/errx"
	"github.com/joho/godotenv"
)

// Config is the full application configuration, read once at startup.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Auth     AuthConfig
	Storage  StorageConfig
	Render   RenderConfig
	Jobx     JobxConfig
}

type ServerConfig struct {
	Port            string
	Environment     string
	BodyLimitMB     int
	CORSOrigins     string
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	Address  string
	Password string
	DB       int
	// KeyPrefix namespaces every key written by the queue.
	KeyPrefix string
}

type AuthConfig struct {
	JWTSecret       string
	Issuer          string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	AdminEmail      string
	AdminPassword   string
}

// StorageConfig selects the file store backing uploads and rendered artifacts.
type StorageConfig struct {
	Mode string // "local" or "s3"

	LocalPath string

	// PublicBaseURL prefixes relative storage paths in URLs handed to clients.
	PublicBaseURL string

	S3Bucket string
	S3Region string
	S3Prefix string
}

// Load reads .env files (if present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load(".env", ".env.local")

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8000"),
			Environment:     getEnv("APP_ENV", "development"),
			BodyLimitMB:     getEnvInt("BODY_LIMIT_MB", 10),
			CORSOrigins:     getEnv("CORS_ORIGINS", "*"),
			ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvInt("DB_PORT", 5432),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "postgres"),
			Name:            getEnv("DB_NAME", "fittsee"),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			Address:   getEnv("REDIS_ADDR", "localhost:6379"),
			Password:  getEnv("REDIS_PASSWORD", ""),
			DB:        getEnvInt("REDIS_DB", 0),
			KeyPrefix: getEnv("REDIS_KEY_PREFIX", "fittsee"),
		},
		Auth: AuthConfig{
			JWTSecret:       getEnv("JWT_SECRET", ""),
			Issuer:          getEnv("JWT_ISSUER", "fittsee"),
			AccessTokenTTL:  getEnvDuration("ACCESS_TOKEN_TTL", 60*time.Minute),
			RefreshTokenTTL: getEnvDuration("REFRESH_TOKEN_TTL", 7*24*time.Hour),
			AdminEmail:      getEnv("ADMIN_EMAIL", "admin@fittsee.local"),
			AdminPassword:   getEnv("ADMIN_PASSWORD", "admin12345"),
		},
		Storage: StorageConfig{
			Mode:          strings.ToLower(getEnv("STORAGE_MODE", "local")),
			LocalPath:     getEnv("STORAGE_LOCAL_PATH", "./storage"),
			PublicBaseURL: strings.TrimRight(getEnv("STORAGE_PUBLIC_BASE_URL", "/static"), "/"),
			S3Bucket:      getEnv("S3_BUCKET", ""),
			S3Region:      getEnv("AWS_REGION", "us-east-1"),
			S3Prefix:      getEnv("S3_PREFIX", ""),
		},
		Render: loadRenderConfig(),
		Jobx:   loadJobxConfig(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the services cannot start with.
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return errx.Validation("JWT_SECRET must be set")
	}
	switch c.Storage.Mode {
	case "local":
	case "s3":
		if c.Storage.S3Bucket == "" {
			return errx.Validation("S3_BUCKET must be set when STORAGE_MODE=s3")
		}
	default:
		return errx.Validation("STORAGE_MODE must be local or s3").WithDetail("mode", c.Storage.Mode)
	}
	if c.Jobx.Concurrency < 1 {
		return errx.Validation("JOBX_CONCURRENCY must be at least 1")
	}
	return nil
}

// IsProduction reports whether APP_ENV is production
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// ============================================================================
// Env helpers
// ============================================================================

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getEnvStringSlice(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
