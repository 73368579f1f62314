package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"folha/internal/domain/payroll"
)

type Config struct {
	Addr                string
	Environment         string
	DatabaseURL         string
	MigrationsDir       string
	RunMigrations       bool
	RunSeed             bool
	SeedAdminPassword   string
	JWTSecret           string
	TokenTTL            time.Duration
	DataEncryptionKey   string
	LogLevel            string
	LogFormat           string
	MaxBodyBytes        int64
	CORSAllowedOrigins  []string
	NegativePolicy      payroll.NegativePolicy
	PayslipBatchWorkers int
	PayslipDir          string
	ArchiveSchedule     string
	RedisURL            string
	PayslipCacheTTL     time.Duration
	MetricsEnabled      bool
	LoginRateLimit      int
	ShutdownTimeout     time.Duration
}

// InMemory reports whether records come from the built-in demo data instead
// of Postgres.
func (c Config) InMemory() bool {
	return strings.TrimSpace(c.DatabaseURL) == ""
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present; real environment variables win.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Addr:                getEnv("APP_ADDR", ":8080"),
		Environment:         getEnv("APP_ENV", "development"),
		DatabaseURL:         getEnv("DATABASE_URL", ""),
		MigrationsDir:       getEnv("MIGRATIONS_DIR", "migrations"),
		RunMigrations:       getEnvBool("RUN_MIGRATIONS", true),
		RunSeed:             getEnvBool("RUN_SEED", true),
		SeedAdminPassword:   getEnv("SEED_ADMIN_PASSWORD", ""),
		JWTSecret:           getEnv("JWT_SECRET", ""),
		TokenTTL:            getEnvDuration("TOKEN_TTL", 8*time.Hour),
		DataEncryptionKey:   getEnv("DATA_ENCRYPTION_KEY", ""),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		LogFormat:           getEnv("LOG_FORMAT", "json"),
		MaxBodyBytes:        int64(getEnvInt("MAX_BODY_BYTES", 1048576)),
		CORSAllowedOrigins:  getEnvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173"}),
		NegativePolicy:      payroll.NegativePolicy(strings.ToLower(getEnv("PAYROLL_NEGATIVE_POLICY", string(payroll.PolicyAllow)))),
		PayslipBatchWorkers: getEnvInt("PAYSLIP_BATCH_WORKERS", 4),
		PayslipDir:          getEnv("PAYSLIP_DIR", "storage/payslips"),
		ArchiveSchedule:     getEnv("ARCHIVE_SCHEDULE", "0 6 1 * *"),
		RedisURL:            getEnv("REDIS_URL", ""),
		PayslipCacheTTL:     getEnvDuration("PAYSLIP_CACHE_TTL", time.Hour),
		MetricsEnabled:      getEnvBool("METRICS_ENABLED", true),
		LoginRateLimit:      getEnvInt("LOGIN_RATE_LIMIT", 10),
		ShutdownTimeout:     getEnvDuration("SHUTDOWN_TIMEOUT", 15*time.Second),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvList(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (c Config) Production() bool {
	return c.Environment == "production"
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.JWTSecret) == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.Production() {
		if strings.TrimSpace(c.DatabaseURL) == "" {
			return fmt.Errorf("DATABASE_URL is required in production")
		}
		if strings.TrimSpace(c.DataEncryptionKey) == "" {
			return fmt.Errorf("DATA_ENCRYPTION_KEY must be set in production for payslip encryption at rest")
		}
		if c.RunSeed && strings.TrimSpace(c.SeedAdminPassword) == "" {
			return fmt.Errorf("SEED_ADMIN_PASSWORD must be set or RUN_SEED disabled in production")
		}
	}
	if _, err := payroll.ParseNegativePolicy(string(c.NegativePolicy)); err != nil {
		return fmt.Errorf("PAYROLL_NEGATIVE_POLICY: %w", err)
	}
	if c.MaxBodyBytes < 1024 {
		return fmt.Errorf("MAX_BODY_BYTES must be at least 1024")
	}
	if c.PayslipBatchWorkers <= 0 {
		return fmt.Errorf("PAYSLIP_BATCH_WORKERS must be positive")
	}
	if c.PayslipCacheTTL < 0 {
		return fmt.Errorf("PAYSLIP_CACHE_TTL must not be negative")
	}
	return nil
}
