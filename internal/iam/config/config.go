package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreMongo  = "mongo"
	StoreMemory = "memory"
)

type Config struct {
	StoreDriver string
	MongoURI    string
	DBName      string
	Collections Collections

	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	CORSOrigins  []string
	LogLevel     string

	JWTSecret      string
	JWTIssuer      string
	AccessTokenTTL time.Duration
	SessionTTL     time.Duration

	AuthRateLimit float64
	AuthRateBurst int

	AuditWriteTimeout time.Duration
	AuditMaxRetries   int
	AuditRetryBackoff time.Duration

	SeedAdminEmail    string
	SeedAdminPassword string
}

// Collections holds the Mongo collection names.
type Collections struct {
	Users       string
	Roles       string
	Permissions string
	UserRoles   string
	Grants      string
	Sessions    string
	AuditLogs   string
}

// LoadConfig reads the environment, optionally seeded from a .env file in the working directory.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		StoreDriver: strings.ToLower(getEnv("STORE_DRIVER", StoreMongo)),
		MongoURI:    getEnv("MONGO_URI", "mongodb://localhost:27017"),
		DBName:      getEnv("DB_NAME", "iam_db"),
		Collections: Collections{
			Users:       getEnv("COLLECTION_USERS", "users"),
			Roles:       getEnv("COLLECTION_ROLES", "roles"),
			Permissions: getEnv("COLLECTION_PERMISSIONS", "permissions"),
			UserRoles:   getEnv("COLLECTION_USER_ROLES", "user_roles"),
			Grants:      getEnv("COLLECTION_TEMP_GRANTS", "temp_permission_grants"),
			Sessions:    getEnv("COLLECTION_SESSIONS", "sessions"),
			AuditLogs:   getEnv("COLLECTION_AUDIT_LOGS", "audit_logs"),
		},

		Port:         getEnv("PORT", "8080"),
		ReadTimeout:  getEnvDuration("SERVER_READ_TIMEOUT", 10*time.Second),
		WriteTimeout: getEnvDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
		CORSOrigins:  getEnvList("CORS_ALLOW_ORIGINS", []string{"*"}),
		LogLevel:     getEnv("LOG_LEVEL", "info"),

		JWTSecret:      os.Getenv("JWT_SECRET"),
		JWTIssuer:      getEnv("JWT_ISSUER", "iam"),
		AccessTokenTTL: getEnvDuration("ACCESS_TOKEN_TTL", time.Hour),
		SessionTTL:     getEnvDuration("SESSION_TTL", 7*24*time.Hour),

		AuthRateLimit: getEnvFloat("AUTH_RATE_LIMIT", 5),
		AuthRateBurst: getEnvInt("AUTH_RATE_BURST", 10),

		AuditWriteTimeout: getEnvDuration("AUDIT_WRITE_TIMEOUT", 5*time.Second),
		AuditMaxRetries:   getEnvInt("AUDIT_MAX_RETRIES", 3),
		AuditRetryBackoff: getEnvDuration("AUDIT_RETRY_BACKOFF", 200*time.Millisecond),

		SeedAdminEmail:    os.Getenv("SEED_ADMIN_EMAIL"),
		SeedAdminPassword: os.Getenv("SEED_ADMIN_PASSWORD"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.StoreDriver {
	case StoreMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("MONGO_URI is required")
		}
		if c.DBName == "" {
			return fmt.Errorf("DB_NAME is required")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", StoreMongo, StoreMemory, c.StoreDriver)
	}
	if len(c.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET is required and must be at least 32 bytes")
	}
	if c.AccessTokenTTL <= 0 || c.SessionTTL <= 0 {
		return fmt.Errorf("ACCESS_TOKEN_TTL and SESSION_TTL must be positive")
	}
	if c.AuthRateLimit <= 0 || c.AuthRateBurst <= 0 {
		return fmt.Errorf("AUTH_RATE_LIMIT and AUTH_RATE_BURST must be positive")
	}
	if c.AuditMaxRetries < 0 {
		return fmt.Errorf("AUDIT_MAX_RETRIES must not be negative")
	}
	if (c.SeedAdminEmail == "") != (c.SeedAdminPassword == "") {
		return fmt.Errorf("SEED_ADMIN_EMAIL and SEED_ADMIN_PASSWORD must be set together")
	}
	if c.SeedAdminPassword != "" && len(c.SeedAdminPassword) < 12 {
		return fmt.Errorf("SEED_ADMIN_PASSWORD must be at least 12 characters")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	valStr := os.Getenv(key)
	if valStr == "" {
		return fallback
	}
	val, err := strconv.Atoi(valStr)
	if err != nil {
		// Fall back to duration strings such as "90s" or "1h"
		d, err := time.ParseDuration(valStr)
		if err == nil {
			return d
		}
		return fallback
	}
	return time.Duration(val) * time.Second
}

func getEnvInt(key string, fallback int) int {
	val, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return val
}

func getEnvFloat(key string, fallback float64) float64 {
	val, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return fallback
	}
	return val
}

func getEnvList(key string, fallback []string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
