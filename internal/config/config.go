// Package config loads runtime settings from .env files and the environment.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/petarceklic/FlightCapacity/internal/providers"
)

type Config struct {
	Environment string
	ServiceName string
	Port        string
	APIBaseURL  string

	ClientID        string
	ClientSecret    string
	ProviderEnv     string
	ProviderBaseURL string

	UpstreamTimeout   time.Duration
	OptionalTimeout   time.Duration
	FareSampleTimeout time.Duration
	MaxRetries        int
	RequestsPerSecond float64
	BurstSize         int

	CORSAllowedOrigins []string

	TokenStore    string
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
}

// Load reads .env (when present) and then the process environment. Values
// already set in the environment win over .env entries.
func Load() (Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		_ = godotenv.Load(".env")
	}

	port := getEnv("PORT", "3001")
	providerEnv := getEnv("AMADEUS_ENV", "test")

	cfg := Config{
		Environment:        getEnv("APP_ENV", "development"),
		ServiceName:        getEnv("SERVICE_NAME", "flight-capacity-api"),
		Port:               port,
		APIBaseURL:         getEnv("API_BASE_URL", "http://localhost:"+port),
		ClientID:           os.Getenv("AMADEUS_CLIENT_ID"),
		ClientSecret:       os.Getenv("AMADEUS_CLIENT_SECRET"),
		ProviderEnv:        providerEnv,
		ProviderBaseURL:    getEnv("AMADEUS_BASE_URL", providers.BaseURLFor(providerEnv)),
		UpstreamTimeout:    getDuration("UPSTREAM_TIMEOUT", 30*time.Second),
		OptionalTimeout:    getDuration("OPTIONAL_TIMEOUT", 10*time.Second),
		FareSampleTimeout:  getDuration("FARE_SAMPLE_TIMEOUT", 5*time.Second),
		MaxRetries:         getInt("UPSTREAM_MAX_RETRIES", 0),
		RequestsPerSecond:  getFloat("UPSTREAM_RPS", 10),
		BurstSize:          getInt("UPSTREAM_BURST", 20),
		CORSAllowedOrigins: getList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		TokenStore:         strings.ToLower(getEnv("TOKEN_STORE", "memory")),
		RedisHost:          getEnv("REDIS_HOST", "localhost"),
		RedisPort:          getEnv("REDIS_PORT", "6379"),
		RedisPassword:      os.Getenv("REDIS_PASSWORD"),
		RedisDB:            getInt("REDIS_DB", 0),
	}

	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return Config{}, errors.New("AMADEUS_CLIENT_ID and AMADEUS_CLIENT_SECRET are required")
	}
	if cfg.TokenStore != "memory" && cfg.TokenStore != "redis" {
		return Config{}, errors.New("TOKEN_STORE must be memory or redis")
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}

	return cfg, nil
}

func (c Config) TokenURL() string {
	return strings.TrimRight(c.ProviderBaseURL, "/") + providers.TokenPath
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok {
		d, err := time.ParseDuration(v)
		if err == nil {
			return d
		}
	}
	return def
}

func getInt(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getFloat(key string, def float64) float64 {
	if v, ok := os.LookupEnv(key); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err == nil {
			return f
		}
	}
	return def
}

func getList(key string, def []string) []string {
	if v, ok := os.LookupEnv(key); ok {
		parts := strings.Split(v, ",")
		var cleaned []string
		for _, p := range parts {
			trimmed := strings.TrimSpace(p)
			if trimmed != "" {
				cleaned = append(cleaned, trimmed)
			}
		}
		if len(cleaned) > 0 {
			return cleaned
		}
	}
	return def
}
