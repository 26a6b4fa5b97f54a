package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr        string
	MongoURI        string
	MongoDatabase   string
	RedisAddr       string
	RabbitURL       string
	SessionTTL      time.Duration
	UserRateLimit   int
	IPRateLimit     int
	RatePeriod      time.Duration
	ShutdownTimeout time.Duration
	OTLPEndpoint    string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	return &Config{
		HTTPAddr:        getEnv("HTTP_ADDR", ":8080"),
		MongoURI:        getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:   getEnv("MONGO_DB", "community"),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RabbitURL:       os.Getenv("RABBIT_URL"),
		SessionTTL:      getDuration("SESSION_TTL", 24*time.Hour),
		UserRateLimit:   getInt("RATE_LIMIT_USER", 30),
		IPRateLimit:     getInt("RATE_LIMIT_IP", 100),
		RatePeriod:      getDuration("RATE_LIMIT_PERIOD", time.Minute),
		ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", 5*time.Second),
		OTLPEndpoint:    os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
	}, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
