package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port                 int
	DatabasePath         string
	RedisURL             string
	Environment          string
	LogLevel             string
	LockWait             time.Duration
	LockTTL              time.Duration
	SessionLifetime      time.Duration
	SimulationIterations int
}

// Load reads the environment, picking up a .env file when one exists.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DatabasePath: getEnv("DATABASE_PATH", "brackets.db"),
		RedisURL:     os.Getenv("REDIS_URL"),
		Environment:  getEnv("ENVIRONMENT", "development"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
	}

	var err error
	if cfg.Port, err = getInt("PORT", 8080); err != nil {
		return nil, err
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("PORT must be between 1 and 65535, got %d", cfg.Port)
	}

	if cfg.LockWait, err = getDuration("LOCK_WAIT", 2*time.Second); err != nil {
		return nil, err
	}
	if cfg.LockTTL, err = getDuration("LOCK_TTL", 15*time.Second); err != nil {
		return nil, err
	}
	if cfg.SessionLifetime, err = getDuration("SESSION_LIFETIME", 24*time.Hour); err != nil {
		return nil, err
	}

	if cfg.SimulationIterations, err = getInt("SIMULATION_ITERATIONS", 1000); err != nil {
		return nil, err
	}
	if cfg.SimulationIterations <= 0 {
		return nil, fmt.Errorf("SIMULATION_ITERATIONS must be positive, got %d", cfg.SimulationIterations)
	}

	switch cfg.Environment {
	case "development", "staging", "production":
	default:
		return nil, fmt.Errorf("ENVIRONMENT must be development, staging or production, got %q", cfg.Environment)
	}

	return cfg, nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", key, err)
	}
	return n, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", key, d)
	}
	return d, nil
}
