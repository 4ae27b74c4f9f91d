package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
)

// Config is loaded from environment variables. REDIS_ADDR is optional; when
// empty the presence mirror is disabled and the server is fully self-contained.
type Config struct {
	Port      string
	RedisAddr string
	CORSAllow []string
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:      getEnvOrDefault("PORT", "8080"),
		RedisAddr: os.Getenv("REDIS_ADDR"),
		CORSAllow: splitCSV(getEnvOrDefault("CORS_ALLOW", "*")),
	}
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validateConfig(cfg *Config) error {
	if _, err := strconv.Atoi(cfg.Port); err != nil {
		return errors.New("PORT must be numeric, got: " + cfg.Port)
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
