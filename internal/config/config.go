package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	HTTPPort        string
	MongoURI        string
	MongoDatabase   string
	RedisAddr       string
	KafkaBrokers    []string
	KafkaTopic      string
	JWTSecret       string
	TokenTTL        time.Duration
	LogLevel        string
	Env             string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

func Load() *Config {
	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		MongoURI:        getEnv("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDatabase:   getEnv("MONGODB_DATABASE", "online-shop"),
		RedisAddr:       getEnv("REDIS_ADDR", ""),
		KafkaBrokers:    getEnvList("KAFKA_BROKERS", ""),
		KafkaTopic:      getEnv("KAFKA_TOPIC", "order-events"),
		JWTSecret:       getEnv("JWT_SECRET", "dev-secret-change-me"),
		TokenTTL:        getEnvDuration("TOKEN_TTL", 24*time.Hour),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		Env:             getEnv("APP_ENV", "dev"),
		RequestTimeout:  getEnvDuration("REQUEST_TIMEOUT", 30*time.Second),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvList(key, defaultValue string) []string {
	v := getEnv(key, defaultValue)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	return defaultValue
}
