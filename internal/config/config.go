package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration.
// Values are loaded from environment variables with sensible defaults
// and injected explicitly into constructors; no package reads ambient
// env state after startup.
type Config struct {
	// Server
	Port     int
	LogLevel string

	// Payment gateway
	GatewayBaseURL string
	GatewayAPIKey  string

	// Inspection (vistoria) service
	InspectionAPIURL string

	// Supabase (affiliates + plans store)
	SupabaseURL        string
	SupabaseAnonKey    string
	SupabaseServiceKey string

	// Split wallets: the fixed platform share plus the two wallets that
	// divide whatever is left of the subscription pool.
	PlatformWalletID string
	RemainderWalletA string
	RemainderWalletB string

	// HTTP client
	HTTPTimeout time.Duration

	// Resilience (idempotent reads only; mutating gateway calls are
	// single-pass)
	MaxRetries     int
	InitialBackoff time.Duration
	MaxConcurrency int

	// Cache
	CacheTTL time.Duration

	// Observability
	OTLPEndpoint string
}

// Load reads configuration from environment variables with defaults.
func Load() *Config {
	return &Config{
		Port:     getEnvInt("PORT", 8080),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		GatewayBaseURL: getEnv("GATEWAY_BASE_URL", "https://sandbox.asaas.com/api/v3"),
		GatewayAPIKey:  getEnv("GATEWAY_API_KEY", ""),

		InspectionAPIURL: getEnv("INSPECTION_API_URL", ""),

		SupabaseURL:        getEnv("SUPABASE_URL", ""),
		SupabaseAnonKey:    getEnv("SUPABASE_ANON_KEY", ""),
		SupabaseServiceKey: getEnv("SUPABASE_SERVICE_ROLE_KEY", ""),

		PlatformWalletID: getEnv("PLATFORM_WALLET_ID", ""),
		RemainderWalletA: getEnv("REMAINDER_WALLET_A_ID", ""),
		RemainderWalletB: getEnv("REMAINDER_WALLET_B_ID", ""),

		HTTPTimeout: getEnvDuration("HTTP_TIMEOUT", 10*time.Second),

		MaxRetries:     getEnvInt("MAX_RETRIES", 3),
		InitialBackoff: getEnvDuration("INITIAL_BACKOFF", 500*time.Millisecond),
		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 50),

		CacheTTL: getEnvDuration("CACHE_TTL", 5*time.Minute),

		OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
