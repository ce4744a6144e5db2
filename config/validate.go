package config

import (
	"fmt"

	"github.com/rs/zerolog"
)

// Validate checks runtime config for obvious operator mistakes.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	if cfg.Network != Mainnet && cfg.Network != Testnet {
		return fmt.Errorf("network must be %q or %q", Mainnet, Testnet)
	}

	switch cfg.DB.Engine {
	case EngineBadger, EngineBolt, EngineMemory:
	default:
		return fmt.Errorf("db.engine must be %s, %s or %s", EngineBadger, EngineBolt, EngineMemory)
	}

	if cfg.UTXO.Selection == "" {
		cfg.UTXO.Selection = SelectAccumulate
	}
	switch cfg.UTXO.Selection {
	case SelectAccumulate, SelectLeastChange:
	default:
		return fmt.Errorf("utxo.selection must be %s or %s", SelectAccumulate, SelectLeastChange)
	}

	if cfg.Wallet.Accounts < 1 {
		return fmt.Errorf("wallet.accounts must be at least 1")
	}
	if cfg.Mempool.MaxSize < 1 {
		return fmt.Errorf("mempool.maxsize must be at least 1")
	}

	if cfg.Log.Level != "" {
		if _, err := zerolog.ParseLevel(cfg.Log.Level); err != nil {
			return fmt.Errorf("log.level: %w", err)
		}
	}
	return nil
}
