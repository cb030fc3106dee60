package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	ChainMemory = "memory"
	ChainEVM    = "evm"
)

// Config holds the environment configuration of the coordinator.
// Process-level settings (port, log level) are flags in cmd/hideseek.
type Config struct {
	// Chain selects the contract backend: "memory" or "evm".
	Chain           string `env:"HIDESEEK_CHAIN" envDefault:"memory"`
	RPCURL          string `env:"HIDESEEK_RPC_URL"`
	ContractAddress string `env:"HIDESEEK_CONTRACT_ADDRESS"`
	PrivateKey      string `env:"HIDESEEK_PRIVATE_KEY"`
	ChainID         int64  `env:"HIDESEEK_CHAIN_ID" envDefault:"11155111"`
	RelayerURL      string `env:"HIDESEEK_RELAYER_URL"`
	// WalletAddress is the address the memory chain signs for.
	WalletAddress string `env:"HIDESEEK_WALLET_ADDRESS" envDefault:"0x00000000000000000000000000000000000000a1"`

	// PlayersURL is "static", "sqlite://<path>" or "postgresql://...".
	PlayersURL        string `env:"HIDESEEK_PLAYERS_URL" envDefault:"static"`
	PlayersMigrations string `env:"HIDESEEK_PLAYERS_MIGRATIONS" envDefault:"./migrations/sqlite"`

	// IDStrategy is "timestamp" or "uuid".
	IDStrategy string `env:"HIDESEEK_ID_STRATEGY" envDefault:"timestamp"`

	StatusPendingDelay time.Duration `env:"HIDESEEK_STATUS_PENDING_DELAY" envDefault:"3s"`
	StatusSuccessDelay time.Duration `env:"HIDESEEK_STATUS_SUCCESS_DELAY" envDefault:"2s"`
	StatusErrorDelay   time.Duration `env:"HIDESEEK_STATUS_ERROR_DELAY" envDefault:"3s"`

	// RefreshInterval enables periodic store refreshes when positive.
	RefreshInterval time.Duration `env:"HIDESEEK_REFRESH_INTERVAL" envDefault:"0s"`

	OTELEndpoint string `env:"HIDESEEK_OTEL_ENDPOINT"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load parses and validates a Config from the environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := ParseEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Chain {
	case ChainMemory:
		if c.WalletAddress == "" {
			return fmt.Errorf("HIDESEEK_WALLET_ADDRESS is required for the memory chain")
		}
	case ChainEVM:
		missing := []string{}
		if c.RPCURL == "" {
			missing = append(missing, "HIDESEEK_RPC_URL")
		}
		if c.ContractAddress == "" {
			missing = append(missing, "HIDESEEK_CONTRACT_ADDRESS")
		}
		if c.PrivateKey == "" {
			missing = append(missing, "HIDESEEK_PRIVATE_KEY")
		}
		if c.RelayerURL == "" {
			missing = append(missing, "HIDESEEK_RELAYER_URL")
		}
		if len(missing) > 0 {
			return fmt.Errorf("missing evm configuration: %v", missing)
		}
	default:
		return fmt.Errorf("unknown chain backend %q", c.Chain)
	}

	switch c.IDStrategy {
	case "timestamp", "uuid":
	default:
		return fmt.Errorf("unknown id strategy %q", c.IDStrategy)
	}

	if c.StatusPendingDelay <= 0 || c.StatusSuccessDelay <= 0 || c.StatusErrorDelay <= 0 {
		return fmt.Errorf("status delays must be positive")
	}
	if c.RefreshInterval < 0 {
		return fmt.Errorf("refresh interval must not be negative")
	}
	return nil
}
