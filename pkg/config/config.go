package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv   string
	LogLevel string

	GRPCPort int
	HTTPPort int

	OrderServiceURL     string
	OrderServiceToken   string
	OrderServiceTimeout time.Duration

	PlacesAPIKey  string
	PlacesBaseURL string
	PlacesCountry string
	PlacesRPS     float64

	SearchDebounce time.Duration
	SearchMinQuery int

	DefaultLat float64
	DefaultLng float64
}

func Load() Config {
	// a missing .env is fine, the process environment wins anyway
	_ = godotenv.Load()

	return Config{
		AppEnv:   getEnv("APP_ENV", "dev"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		HTTPPort: getEnvInt("HTTP_PORT", 8080),
		GRPCPort: getEnvInt("GRPC_PORT", 8081),

		OrderServiceURL:     getEnv("ORDER_SERVICE_URL", "http://localhost:9000"),
		OrderServiceToken:   getEnv("ORDER_SERVICE_TOKEN", ""),
		OrderServiceTimeout: getEnvDuration("ORDER_SERVICE_TIMEOUT", 10*time.Second),

		PlacesAPIKey:  getEnv("PLACES_API_KEY", ""),
		PlacesBaseURL: getEnv("PLACES_BASE_URL", "https://maps.googleapis.com/maps/api"),
		PlacesCountry: getEnv("PLACES_COUNTRY", "in"),
		PlacesRPS:     getEnvFloat("PLACES_RPS", 5),

		SearchDebounce: getEnvDuration("SEARCH_DEBOUNCE", 400*time.Millisecond),
		SearchMinQuery: getEnvInt("SEARCH_MIN_QUERY", 3),

		DefaultLat: getEnvFloat("DEFAULT_LAT", 17.385),
		DefaultLng: getEnvFloat("DEFAULT_LNG", 78.4867),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)

	if v == "" {
		return def
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}

	return n
}

func getEnvFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}

	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}

	return f
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}

	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}

	return d
}
