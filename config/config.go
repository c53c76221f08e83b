package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every setting of the service.
type Config struct {
	// DatabaseURL selects the Postgres store. Empty runs on the in-memory store.
	DatabaseURL  string
	JWTSecretKey string
	ServerPort   int

	// RedisAddr enables the Redis lock so several replicas can share one database.
	RedisAddr     string
	RedisPassword string
	// AMQPURL enables domain event publishing to RabbitMQ.
	AMQPURL      string
	AMQPExchange string

	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicBaseURL   string

	StaffPINHash string
	CORSOrigins  []string
	TickInterval time.Duration
	SeedDemo     bool
}

// Load reads the configuration from the environment. A .env file in the
// working directory is loaded first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	jwtKey := os.Getenv("JWT_SECRET_KEY")
	if jwtKey == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable is not set")
	}

	port, err := intEnv("SERVER_PORT", 8080)
	if err != nil {
		return nil, err
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	tick := time.Second
	if v := os.Getenv("TICK_INTERVAL"); v != "" {
		tick, err = time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid TICK_INTERVAL environment variable: %w", err)
		}
		if tick <= 0 {
			return nil, fmt.Errorf("TICK_INTERVAL must be positive, got %s", tick)
		}
	}

	seed := false
	if v := os.Getenv("SEED_DEMO"); v != "" {
		seed, err = strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid SEED_DEMO environment variable: %w", err)
		}
	}

	cfg := &Config{
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		JWTSecretKey:      jwtKey,
		ServerPort:        port,
		RedisAddr:         os.Getenv("REDIS_ADDR"),
		RedisPassword:     os.Getenv("REDIS_PASSWORD"),
		AMQPURL:           os.Getenv("AMQP_URL"),
		AMQPExchange:      stringEnv("AMQP_EXCHANGE", "pokernow.events"),
		R2AccountID:       os.Getenv("R2_ACCOUNT_ID"),
		R2AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey: os.Getenv("R2_SECRET_ACCESS_KEY"),
		R2BucketName:      os.Getenv("R2_BUCKET_NAME"),
		R2PublicBaseURL:   os.Getenv("R2_PUBLIC_BASE_URL"),
		StaffPINHash:      os.Getenv("STAFF_PIN_HASH"),
		CORSOrigins:       listEnv("CORS_ORIGINS"),
		TickInterval:      tick,
		SeedDemo:          seed,
	}
	return cfg, nil
}

func stringEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func intEnv(key string, fallback int) (int, error) {
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

func listEnv(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
