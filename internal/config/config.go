package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port        string
	Environment string
	APIKeys     []string
	RateLimit   int

	BigQuery BigQueryConfig
	Tables   TablesConfig
	Query    QueryConfig
	Session  SessionConfig
	Redis    RedisConfig
	Cache    CacheConfig
}

type BigQueryConfig struct {
	ProjectID   string
	DatasetID   string
	Location    string
	Credentials string // Path to service account JSON
}

// TablesConfig names the identity and business tables, resolved against the
// default dataset.
type TablesConfig struct {
	Users           string
	UserCompanies   string
	UserPlans       string
	UserPermissions string
	Permissions     string
	Companies       string
	Participants    string
}

type QueryConfig struct {
	Timeout       time.Duration
	ListLimit     int
	RawQueryMaxGB float64
}

type SessionConfig struct {
	Backend string // memory or redis
	TTL     time.Duration
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type CacheConfig struct {
	Enabled bool
	TTL     time.Duration
}

const (
	SessionBackendMemory = "memory"
	SessionBackendRedis  = "redis"
)

// Load reads configuration from environment variables, applying defaults
func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENV", "development"),
		APIKeys:     splitList(getEnv("API_KEYS", "demo-key-123")),
		RateLimit:   getEnvAsInt("RATE_LIMIT", 100),

		BigQuery: BigQueryConfig{
			ProjectID:   getEnv("BIGQUERY_PROJECT_ID", ""),
			DatasetID:   getEnv("BIGQUERY_DATASET_ID", "dev_dataset"),
			Location:    getEnv("BIGQUERY_LOCATION", ""),
			Credentials: getEnv("GOOGLE_APPLICATION_CREDENTIALS", ""),
		},

		Tables: TablesConfig{
			Users:           getEnv("TABLE_USERS", "go401_dev_accounts_user"),
			UserCompanies:   getEnv("TABLE_USER_COMPANIES", "go401_dev_user_companies"),
			UserPlans:       getEnv("TABLE_USER_PLANS", "go401_dev_user_plans"),
			UserPermissions: getEnv("TABLE_USER_PERMISSIONS", "go401_dev_user_permissions"),
			Permissions:     getEnv("TABLE_PERMISSIONS", "go401_dev_permissions"),
			Companies:       getEnv("TABLE_COMPANIES", "go401_dev_companies_company"),
			Participants:    getEnv("TABLE_PARTICIPANTS", "go401_dev_participants_participant"),
		},

		Query: QueryConfig{
			Timeout:       getEnvAsDuration("QUERY_TIMEOUT", 30*time.Second),
			ListLimit:     getEnvAsInt("QUERY_LIST_LIMIT", 50),
			RawQueryMaxGB: getEnvAsFloat("RAW_QUERY_MAX_GB", 10),
		},

		Session: SessionConfig{
			Backend: strings.ToLower(getEnv("SESSION_BACKEND", SessionBackendMemory)),
			TTL:     getEnvAsDuration("SESSION_TTL", 2*time.Hour),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", ""),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},

		Cache: CacheConfig{
			Enabled: getEnvAsBool("CATALOG_CACHE_ENABLED", true),
			TTL:     getEnvAsDuration("CATALOG_CACHE_TTL", 10*time.Minute),
		},
	}
}

// Validate checks the settings the server cannot start without
func (c *Config) Validate() error {
	if c.BigQuery.ProjectID == "" {
		return fmt.Errorf("BIGQUERY_PROJECT_ID is required")
	}
	if c.BigQuery.DatasetID == "" {
		return fmt.Errorf("BIGQUERY_DATASET_ID is required")
	}
	if c.Query.Timeout <= 0 {
		return fmt.Errorf("QUERY_TIMEOUT must be positive")
	}
	if c.Query.ListLimit <= 0 {
		return fmt.Errorf("QUERY_LIST_LIMIT must be positive")
	}
	switch c.Session.Backend {
	case SessionBackendMemory:
	case SessionBackendRedis:
		if c.Redis.Host == "" {
			return fmt.Errorf("REDIS_HOST is required for the redis session backend")
		}
	default:
		return fmt.Errorf("unknown SESSION_BACKEND %q", c.Session.Backend)
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	return nil
}

// RedisAddr returns host:port of the Redis server
func (r RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
