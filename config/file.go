package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// LoadFile loads configuration values from a .conf file.
// Format: key = value (one per line, # for comments)
// A missing file yields no values.
func LoadFile(path string) (map[string]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]string), nil
		}
		return nil, err
	}
	defer file.Close()

	values := make(map[string]string)
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("line %d: invalid format (expected key = value)", lineNum)
		}

		key := strings.ToLower(strings.TrimSpace(parts[0]))
		value := strings.TrimSpace(parts[1])

		// Remove quotes if present
		if len(value) >= 2 {
			if (value[0] == '"' && value[len(value)-1] == '"') ||
				(value[0] == '\'' && value[len(value)-1] == '\'') {
				value = value[1 : len(value)-1]
			}
		}

		values[key] = value
	}

	return values, scanner.Err()
}

// ApplyFileConfig decodes file values onto cfg. Keys use dotted section
// names matching the conf tags ("db.engine", "log.json"); values are
// converted to the field type. Fields without a key keep their value and
// unknown keys are ignored.
func ApplyFileConfig(cfg *Config, values map[string]string) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "conf",
		WeaklyTypedInput: true,
		Result:           cfg,
	})
	if err != nil {
		return fmt.Errorf("config decoder: %w", err)
	}
	if err := decoder.Decode(nest(values)); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// nest turns {"db.engine": "bolt"} into {"db": {"engine": "bolt"}}.
func nest(values map[string]string) map[string]interface{} {
	out := make(map[string]interface{}, len(values))
	for key, value := range values {
		section, field, ok := strings.Cut(key, ".")
		if !ok {
			out[key] = value
			continue
		}
		sub, _ := out[section].(map[string]interface{})
		if sub == nil {
			sub = make(map[string]interface{})
			out[section] = sub
		}
		sub[field] = value
	}
	return out
}

// Load builds the configuration for network: defaults, then the file at
// path (or the data directory's ledger.conf when path is empty).
func Load(network NetworkType, dataDir, path string) (*Config, error) {
	cfg := Default(network)
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if path == "" {
		path = cfg.ConfigFile()
	}
	values, err := LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	if err := ApplyFileConfig(cfg, values); err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// WriteDefaultConfig writes a default configuration file.
func WriteDefaultConfig(path string, network NetworkType) error {
	content := `# Klingnet Ledger Configuration

# Network: mainnet or testnet
network = ` + string(network) + `

# Data directory (default: ~/.klingnet-ledger)
# datadir = ~/.klingnet-ledger

# ============================================================================
# Storage
# ============================================================================

# Engine: badger, bolt or memory
db.engine = badger

# ============================================================================
# Wallet
# ============================================================================

# wallet.name = default
wallet.accounts = 1

# ============================================================================
# UTXO index
# ============================================================================

# Coin selection: accumulate or leastchange
utxo.selection = accumulate

# ============================================================================
# Mempool
# ============================================================================

mempool.maxsize = 5000

# ============================================================================
# Logging
# ============================================================================

log.level = info
# log.file =
log.json = false
`
	return os.WriteFile(path, []byte(content), 0644)
}
