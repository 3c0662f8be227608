package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	// API
	APIPort         int
	APIKey          string
	CORSAllowOrigin string

	// Logging
	LogLevel  string
	LogFormat string

	// Redis (ledger persistence)
	RedisHost     string
	RedisPort     int
	RedisPassword string
	RedisDB       int
	KeyPrefix     string

	// Chain settings for the live allocation updater. With SimulateExecutions the
	// chain settings are ignored and a simulator fabricates tx refs.
	SimulateExecutions  bool
	EthereumAPIEndpoint string
	PrivateKey          string
	ChainID             int
	VaultAddress        string
	GasLimit            int
	GasMultiplier       float64

	// Prices
	PriceCacheTTLSeconds    int
	PriceMinIntervalSeconds int

	// Scheduler
	SchedulerEnabled     bool
	SchedulerTickSeconds int

	// Notifications
	WebhookURL string
	AppName    string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		// API
		APIPort:         envInt("API_PORT", 3001),
		APIKey:          envStr("API_KEY", ""),
		CORSAllowOrigin: envStr("CORS_ALLOW_ORIGIN", "*"),

		// Logging
		LogLevel:  envStr("LOG_LEVEL", "info"),
		LogFormat: envStr("LOG_FORMAT", "pretty"),

		// Redis
		RedisHost:     envStr("REDIS_HOST", "localhost"),
		RedisPort:     envInt("REDIS_PORT", 6379),
		RedisPassword: envStr("REDIS_PASSWORD", ""),
		RedisDB:       envInt("REDIS_DB", 0),
		KeyPrefix:     envStr("KEY_PREFIX", "vaultfolio"),

		// Chain
		SimulateExecutions:  envBool("SIMULATE_EXECUTIONS", true),
		EthereumAPIEndpoint: envStr("ETHEREUM_API_ENDPOINT", ""),
		PrivateKey:          envStr("PRIVATE_KEY", ""),
		ChainID:             envInt("CHAIN_ID", 1),
		VaultAddress:        envStr("VAULT_ADDRESS", ""),
		GasLimit:            envInt("GAS_LIMIT", 250000),
		GasMultiplier:       envFloat("GAS_MULTIPLIER", 1.2),

		// Prices
		PriceCacheTTLSeconds:    envInt("PRICE_CACHE_TTL_SECONDS", 60),
		PriceMinIntervalSeconds: envInt("PRICE_MIN_INTERVAL_SECONDS", 10),

		// Scheduler
		SchedulerEnabled:     envBool("SCHEDULER_ENABLED", true),
		SchedulerTickSeconds: envInt("SCHEDULER_TICK_SECONDS", 60),

		// Notifications
		WebhookURL: envStr("WEBHOOK_URL", ""),
		AppName:    envStr("APP_NAME", "Vaultfolio"),
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []string

	if !c.SimulateExecutions {
		if c.EthereumAPIEndpoint == "" {
			errs = append(errs, "ETHEREUM_API_ENDPOINT is required for live executions")
		}
		if c.PrivateKey == "" {
			errs = append(errs, "PRIVATE_KEY is required for live executions")
		}
		if c.VaultAddress == "" {
			errs = append(errs, "VAULT_ADDRESS is required for live executions")
		}
	}
	if c.APIKey == "" {
		fmt.Println("[WARN] API_KEY not set, REST API has no authentication")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}

func (c *Config) Print() {
	fmt.Println("=== Vaultfolio Ledger Configuration ===")

	if c.SimulateExecutions {
		fmt.Println("  SIMULATED EXECUTION MODE")
		fmt.Println("  No on-chain transactions will execute")
	} else {
		fmt.Println("  LIVE EXECUTION MODE")
		fmt.Printf("  Chain ID: %d\n", c.ChainID)
		fmt.Printf("  Vault: %s\n", truncAddr(c.VaultAddress))
	}

	fmt.Println("--------------------------------------")
	fmt.Printf("API Port: %d\n", c.APIPort)
	fmt.Printf("Redis: %s:%d (db %d)\n", c.RedisHost, c.RedisPort, c.RedisDB)
	fmt.Printf("Key Prefix: %s\n", c.KeyPrefix)
	fmt.Printf("Scheduler: %s\n", boolLabel(c.SchedulerEnabled, "enabled", "disabled"))
	fmt.Printf("Price Cache TTL: %ds (min interval %ds)\n",
		c.PriceCacheTTLSeconds, c.PriceMinIntervalSeconds)
	fmt.Printf("Webhook: %s\n", boolLabel(c.WebhookURL != "", "configured", "not set"))
	fmt.Println("======================================")
}

// --- helpers ---

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		v = strings.ToLower(v)
		return v == "true" || v == "1" || v == "yes"
	}
	return fallback
}

func truncAddr(addr string) string {
	if len(addr) > 10 {
		return addr[:10] + "..."
	}
	return addr
}

func boolLabel(cond bool, ifTrue, ifFalse string) string {
	if cond {
		return ifTrue
	}
	return ifFalse
}
