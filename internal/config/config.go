package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const (
	StoreMongo  = "mongo"
	StoreMemory = "memory"
)

// Config holds the runtime settings of the server.
type Config struct {
	Port                string
	MongoURI            string
	MongoDB             string
	StoreBackend        string
	JWTSecret           string
	JWTIssuer           string
	JWTAudience         string
	AuthDisabled        bool
	AllowedOrigins      []string
	LogLevel            string
	FanoutMaxAttempts   uint
	FanoutRetryInterval time.Duration
	DBTimeout           time.Duration
}

// LoadConfig reads the .env file when present and builds a Config from the environment.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("No .env file found, using process environment")
	}
	return FromEnv()
}

// FromEnv builds a Config from the process environment only.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		MongoURI:       getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:        getEnv("MONGO_DB", "chatterbox"),
		StoreBackend:   strings.ToLower(getEnv("STORE_BACKEND", StoreMongo)),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		JWTIssuer:      os.Getenv("JWT_ISSUER"),
		JWTAudience:    os.Getenv("JWT_AUDIENCE"),
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
	}

	var err error
	if cfg.AuthDisabled, err = getBool("AUTH_DISABLED", false); err != nil {
		return nil, err
	}
	attempts, err := getInt("FANOUT_MAX_ATTEMPTS", 3)
	if err != nil {
		return nil, err
	}
	if attempts < 1 {
		return nil, fmt.Errorf("invalid FANOUT_MAX_ATTEMPTS: must be at least 1, got %d", attempts)
	}
	cfg.FanoutMaxAttempts = uint(attempts)
	if cfg.FanoutRetryInterval, err = getDuration("FANOUT_RETRY_INTERVAL", 50*time.Millisecond); err != nil {
		return nil, err
	}
	if cfg.DBTimeout, err = getDuration("DB_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks combinations of settings that cannot work together.
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case StoreMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("invalid MONGO_URI: must be set for the mongo store backend")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("invalid STORE_BACKEND: %q", c.StoreBackend)
	}
	if c.JWTSecret == "" && !c.AuthDisabled {
		return fmt.Errorf("invalid JWT_SECRET: must be set unless AUTH_DISABLED=true")
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid LOG_LEVEL: %v", err)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %v", key, err)
	}
	return b, nil
}

func getInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %v", key, err)
	}
	return n, nil
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %v", key, err)
	}
	return d, nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
