// Package config handles application configuration from environment variables
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Chain settings
	RPCURL      string
	KeypairPath string // Solana keygen JSON file

	// Risk policy
	MaxTransactionSOL   float64
	MinReserveSOL       float64
	RequireConfirmation bool

	// Swap settings
	JupiterAPIURL string
	SlippageBps   int

	// Observability
	LogLevel     string
	LogFormat    string // "text" or "json"
	MetricsAddr  string // optional debug/metrics listener, e.g. ":9090"
	OTLPEndpoint string // optional OTLP gRPC endpoint for traces
}

// Defaults
const (
	DefaultRPCURL            = "https://api.devnet.solana.com"
	DefaultJupiterAPIURL     = "https://quote-api.jup.ag/v6"
	DefaultMaxTransactionSOL = 10.0
	DefaultMinReserveSOL     = 0.1
	DefaultSlippageBps       = 50
	DefaultLogLevel          = "info"
	DefaultLogFormat         = "text"
)

// Load reads configuration from environment variables
// It loads .env file if present (for local development)
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not present)
	_ = godotenv.Load()

	cfg := &Config{
		RPCURL:              getEnv("SOLANA_RPC_URL", DefaultRPCURL),
		KeypairPath:         os.Getenv("SOLANA_KEYPAIR_PATH"), // Required for executing commands
		MaxTransactionSOL:   getEnvFloat("MAX_TRANSACTION_SOL", DefaultMaxTransactionSOL),
		MinReserveSOL:       getEnvFloat("MIN_RESERVE_SOL", DefaultMinReserveSOL),
		RequireConfirmation: getEnvBool("REQUIRE_CONFIRMATION", true),
		JupiterAPIURL:       getEnv("JUPITER_API_URL", DefaultJupiterAPIURL),
		SlippageBps:         int(getEnvInt64("SLIPPAGE_BPS", DefaultSlippageBps)),
		LogLevel:            getEnv("LOG_LEVEL", DefaultLogLevel),
		LogFormat:           getEnv("LOG_FORMAT", DefaultLogFormat),
		MetricsAddr:         os.Getenv("METRICS_ADDR"),
		OTLPEndpoint:        os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that the configuration is coherent
func (c *Config) Validate() error {
	if c.RPCURL == "" {
		return fmt.Errorf("SOLANA_RPC_URL is required")
	}
	if c.MaxTransactionSOL <= 0 {
		return fmt.Errorf("MAX_TRANSACTION_SOL must be positive")
	}
	if c.MinReserveSOL < 0 {
		return fmt.Errorf("MIN_RESERVE_SOL must not be negative")
	}
	if c.SlippageBps <= 0 || c.SlippageBps > 10000 {
		return fmt.Errorf("SLIPPAGE_BPS must be in (0, 10000]")
	}
	return nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
