// Package config handles application configuration.
//
// Configuration is split into two categories:
//   - Protocol rules: constants in protocol.go, identical for every ledger
//   - Local settings: runtime configuration loaded from a .conf file
package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// NetworkType identifies mainnet or testnet.
type NetworkType string

const (
	Mainnet NetworkType = "mainnet"
	Testnet NetworkType = "testnet"
)

// Config holds local runtime configuration.
type Config struct {
	// Core
	Network NetworkType `conf:"network"`
	DataDir string      `conf:"datadir"`

	// Storage
	DB DBConfig `conf:"db"`

	// Wallet
	Wallet WalletConfig `conf:"wallet"`

	// UTXO index
	UTXO UTXOConfig `conf:"utxo"`

	// Pending transactions
	Mempool MempoolConfig `conf:"mempool"`

	// Logging
	Log LogConfig `conf:"log"`
}

// Storage engines.
const (
	EngineBadger = "badger"
	EngineBolt   = "bolt"
	EngineMemory = "memory"
)

// DBConfig selects the storage engine.
type DBConfig struct {
	Engine string `conf:"engine"`
}

// WalletConfig holds wallet settings.
type WalletConfig struct {
	Name     string `conf:"name"`     // Default wallet for send/mint.
	Accounts int    `conf:"accounts"` // Accounts derived when a wallet is opened.
}

// Coin selection strategies.
const (
	SelectAccumulate  = "accumulate"
	SelectLeastChange = "leastchange"
)

// UTXOConfig holds UTXO index settings.
type UTXOConfig struct {
	Selection string `conf:"selection"`
}

// MempoolConfig holds pending pool limits.
type MempoolConfig struct {
	MaxSize int `conf:"maxsize"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `conf:"level"`
	File  string `conf:"file"`
	JSON  bool   `conf:"json"`
}

// =============================================================================
// Directory helpers
// =============================================================================

// DefaultDataDir returns the platform-specific default data directory.
//
//	Linux:   ~/.klingnet-ledger
//	macOS:   ~/Library/Application Support/KlingnetLedger
//	Windows: %APPDATA%\KlingnetLedger
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".klingnet-ledger"
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "KlingnetLedger")
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData != "" {
			return filepath.Join(appData, "KlingnetLedger")
		}
		return filepath.Join(home, "AppData", "Roaming", "KlingnetLedger")
	default:
		return filepath.Join(home, ".klingnet-ledger")
	}
}

// ChainDataDir returns the network-specific data directory.
func (c *Config) ChainDataDir() string {
	return filepath.Join(c.DataDir, string(c.Network))
}

// DBDir returns the ledger database directory.
func (c *Config) DBDir() string {
	return filepath.Join(c.ChainDataDir(), "ledger")
}

// KeystoreDir returns the keystore directory.
func (c *Config) KeystoreDir() string {
	return filepath.Join(c.ChainDataDir(), "keystore")
}

// LogsDir returns the logs directory.
func (c *Config) LogsDir() string {
	return filepath.Join(c.DataDir, "logs")
}

// ConfigFile returns the config file path.
func (c *Config) ConfigFile() string {
	return filepath.Join(c.DataDir, "ledger.conf")
}
