// Package config provides configuration for the application
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Database  DatabaseConfig
	Redis     RedisConfig
	Server    ServerConfig
	Logging   LoggingConfig
	CORS      CORSConfig
	JWT       JWTConfig
	Engine    EngineConfig
	Reconcile ReconcileConfig
	APIKey    string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	// TxTimeout bounds every engine transaction
	TxTimeout time.Duration
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// ServerConfig holds server settings
type ServerConfig struct {
	Port int
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level string
}

// CORSConfig holds CORS settings
type CORSConfig struct {
	AllowedOrigins []string
}

// JWTConfig holds the secret used to validate access tokens issued by the auth service
type JWTConfig struct {
	Secret string
}

// EngineConfig holds the learning-activity rules
type EngineConfig struct {
	BaseXPForLevel           int
	XPPerCorrectAnswer       int
	SessionCompletionBonusXP int
	MasteryReviewingAfter    int
	MasteryMasteredAfter     int
	// Location is the single timezone calendar dates are computed in
	Location *time.Location
}

// ReconcileConfig holds the daily reconciliation job settings
type ReconcileConfig struct {
	Cron string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (optional)
	_ = godotenv.Load()

	cfg := &Config{}

	// Database configuration
	dbHost := os.Getenv("DB_HOST")
	if dbHost == "" {
		return nil, fmt.Errorf("DB_HOST is required")
	}
	cfg.Database.Host = dbHost

	dbPortStr := os.Getenv("DB_PORT")
	if dbPortStr == "" {
		return nil, fmt.Errorf("DB_PORT is required")
	}
	dbPort, err := strconv.Atoi(dbPortStr)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}
	cfg.Database.Port = dbPort

	dbUser := os.Getenv("DB_USER")
	if dbUser == "" {
		return nil, fmt.Errorf("DB_USER is required")
	}
	cfg.Database.User = dbUser

	dbPassword := os.Getenv("DB_PASSWORD")
	if dbPassword == "" {
		return nil, fmt.Errorf("DB_PASSWORD is required")
	}
	cfg.Database.Password = dbPassword

	dbName := os.Getenv("DB_NAME")
	if dbName == "" {
		return nil, fmt.Errorf("DB_NAME is required")
	}
	cfg.Database.DBName = dbName

	txTimeout, err := durationOrDefault("TX_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, err
	}
	cfg.Database.TxTimeout = txTimeout

	// Server configuration
	serverPort, err := intOrDefault("SERVER_PORT", 8080)
	if err != nil {
		return nil, err
	}
	cfg.Server.Port = serverPort

	// Logging configuration
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info" // default level
	}
	cfg.Logging.Level = logLevel

	// CORS configuration
	cfg.CORS.AllowedOrigins = parseOrigins(os.Getenv("CORS_ALLOWED_ORIGINS"))

	// JWT configuration
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	cfg.JWT.Secret = jwtSecret

	// API Key configuration (service-to-service calls from the auth layer)
	cfg.APIKey = os.Getenv("API_KEY")

	// Redis configuration (scheduler and worker)
	redisHost := os.Getenv("REDIS_HOST")
	if redisHost == "" {
		redisHost = "localhost" // default
	}
	cfg.Redis.Host = redisHost

	redisPort, err := intOrDefault("REDIS_PORT", 6379)
	if err != nil {
		return nil, err
	}
	cfg.Redis.Port = redisPort

	cfg.Redis.Password = os.Getenv("REDIS_PASSWORD") // optional

	redisDB, err := intOrDefault("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}
	cfg.Redis.DB = redisDB

	// Engine configuration
	if cfg.Engine, err = loadEngine(); err != nil {
		return nil, err
	}

	// Reconciliation configuration
	cfg.Reconcile.Cron = os.Getenv("RECONCILE_CRON")
	if cfg.Reconcile.Cron == "" {
		cfg.Reconcile.Cron = "5 0 * * *" // shortly after midnight in the engine timezone
	}

	return cfg, nil
}

func loadEngine() (EngineConfig, error) {
	var engine EngineConfig
	var err error

	if engine.BaseXPForLevel, err = intOrDefault("BASE_XP_FOR_LEVEL", 100); err != nil {
		return engine, err
	}
	if engine.BaseXPForLevel <= 0 {
		return engine, fmt.Errorf("BASE_XP_FOR_LEVEL must be positive")
	}
	if engine.XPPerCorrectAnswer, err = intOrDefault("XP_PER_CORRECT_ANSWER", 10); err != nil {
		return engine, err
	}
	if engine.SessionCompletionBonusXP, err = intOrDefault("SESSION_COMPLETION_BONUS_XP", 20); err != nil {
		return engine, err
	}
	if engine.XPPerCorrectAnswer < 0 || engine.SessionCompletionBonusXP < 0 {
		return engine, fmt.Errorf("XP rewards must not be negative")
	}
	if engine.MasteryReviewingAfter, err = intOrDefault("MASTERY_REVIEWING_AFTER", 2); err != nil {
		return engine, err
	}
	if engine.MasteryMasteredAfter, err = intOrDefault("MASTERY_MASTERED_AFTER", 5); err != nil {
		return engine, err
	}

	tz := os.Getenv("STREAK_TIMEZONE")
	if tz == "" {
		tz = "UTC"
	}
	if engine.Location, err = time.LoadLocation(tz); err != nil {
		return engine, fmt.Errorf("invalid STREAK_TIMEZONE: %w", err)
	}

	return engine, nil
}

func intOrDefault(key string, def int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return value, nil
}

func durationOrDefault(key string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return value, nil
}

// parseOrigins splits a comma-separated origin list, allowing all origins when it is empty
func parseOrigins(raw string) []string {
	origins := make([]string, 0)
	for _, origin := range strings.Split(raw, ",") {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	// Default to allow all origins if not specified (for development)
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

// DSN returns the database connection string.
// Timestamps are read and written in UTC; calendar dates are derived in Go.
func (c *Config) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&loc=UTC&charset=utf8mb4",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
	)
}

// RedisAddr returns the host:port address of Redis
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}
