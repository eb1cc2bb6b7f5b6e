package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	apperrors "travelwise/pkg/errors"

	"github.com/joho/godotenv"
)

// Config is built once at startup and passed by pointer; nothing reads the
// environment after LoadConfig returns.
type Config struct {
	AppPort string
	AppEnv  string
	AppMode string

	MongoURI            string
	MongoDatabase       string
	MongoConnectTimeout time.Duration

	CORSOrigins []string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	AuthRateLimit  int
	AuthRateWindow time.Duration

	ShutdownTimeout time.Duration

	// EnvFileLoaded reports whether a .env file was found and applied.
	EnvFileLoaded bool
}

func LoadConfig() *Config {
	// Variables already present in the environment take precedence over .env.
	loaded := godotenv.Load() == nil

	return &Config{
		AppPort:             getEnv("PORT", "5000"),
		AppEnv:              getEnv("APP_ENV", "development"),
		AppMode:             getEnv("APP_MODE", "debug"),
		MongoURI:            getEnv("MONGO_URI", ""),
		MongoDatabase:       getEnv("MONGO_DB", "travelwise"),
		MongoConnectTimeout: getEnvAsSeconds("MONGO_CONNECT_TIMEOUT_SEC", 10),
		CORSOrigins:         getEnvAsList("CORS_ORIGINS", []string{"*"}),
		RedisAddr:           getEnv("REDIS_ADDR", ""),
		RedisPassword:       getEnv("REDIS_PASSWORD", ""),
		RedisDB:             getEnvAsInt("REDIS_DB", 0),
		AuthRateLimit:       getEnvAsInt("AUTH_RATE_LIMIT", 20),
		AuthRateWindow:      getEnvAsSeconds("AUTH_RATE_WINDOW_SEC", 60),
		ShutdownTimeout:     getEnvAsSeconds("SHUTDOWN_TIMEOUT_SEC", 5),
		EnvFileLoaded:       loaded,
	}
}

// Validate reports configuration the service cannot start without.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.MongoURI) == "" {
		return fmt.Errorf("%w: MONGO_URI is not defined in the environment or .env file", apperrors.ErrMissingConfig)
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.AppPort
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}

// getEnvAsSeconds reads a whole number of seconds. Anything that is not a
// positive integer falls back.
func getEnvAsSeconds(key string, fallback int) time.Duration {
	secs := getEnvAsInt(key, fallback)
	if secs <= 0 {
		secs = fallback
	}
	return time.Duration(secs) * time.Second
}

func getEnvAsList(key string, fallback []string) []string {
	raw := getEnv(key, "")
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
