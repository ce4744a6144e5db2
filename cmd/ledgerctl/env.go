package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/Klingon-tech/klingnet-ledger/config"
	"github.com/Klingon-tech/klingnet-ledger/internal/chain"
	"github.com/Klingon-tech/klingnet-ledger/internal/log"
	"github.com/Klingon-tech/klingnet-ledger/internal/storage"
	"github.com/Klingon-tech/klingnet-ledger/internal/utxo"
	"github.com/Klingon-tech/klingnet-ledger/pkg/types"
	"github.com/urfave/cli"
	"golang.org/x/term"
)

// loadConfig resolves the configuration from the global flags, sets up
// logging and selects the address prefix for the network.
func loadConfig(c *cli.Context) (*config.Config, error) {
	network := config.NetworkType(c.GlobalString("network"))
	cfg, err := config.Load(network, c.GlobalString("datadir"), c.GlobalString("config"))
	if err != nil {
		return nil, err
	}
	if lvl := c.GlobalString("log-level"); lvl != "" {
		cfg.Log.Level = lvl
	}
	if c.GlobalBool("log-json") {
		cfg.Log.JSON = true
	}
	logFile := cfg.Log.File
	if logFile != "" && !filepath.IsAbs(logFile) {
		if err := os.MkdirAll(cfg.LogsDir(), 0700); err != nil {
			return nil, fmt.Errorf("create logs dir: %w", err)
		}
		logFile = filepath.Join(cfg.LogsDir(), logFile)
	}
	if err := log.Init(cfg.Log.Level, cfg.Log.JSON, logFile); err != nil {
		return nil, err
	}
	types.SetAddressHRP(hrpFor(cfg.Network))
	return cfg, nil
}

func hrpFor(network config.NetworkType) string {
	if network == config.Testnet {
		return types.TestnetHRP
	}
	return types.MainnetHRP
}

// withLedger opens the configured ledger, runs fn and closes the database.
func withLedger(c *cli.Context, fn func(cfg *config.Config, l *chain.Ledger) error) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	db, err := storage.Open(cfg.DB.Engine, cfg.DBDir())
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	l, err := chain.New(db)
	if err != nil {
		return err
	}
	sel, err := utxo.SelectorByName(cfg.UTXO.Selection)
	if err != nil {
		return err
	}
	l.SetSelector(sel)
	return fn(cfg, l)
}

// stdin is shared so buffered lines survive between prompts.
var stdin = bufio.NewReader(os.Stdin)

// readPassword prompts on the terminal, or reads one line from stdin when
// it is not a terminal.
func readPassword(prompt string) ([]byte, error) {
	fd := int(syscall.Stdin)
	if !term.IsTerminal(fd) {
		line, err := stdin.ReadString('\n')
		if err != nil && line == "" {
			return nil, fmt.Errorf("read password: %w", err)
		}
		return []byte(strings.TrimRight(line, "\r\n")), nil
	}
	fmt.Fprint(os.Stderr, prompt)
	password, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr) // newline after hidden input
	if err != nil {
		return nil, err
	}
	return password, nil
}

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

// argAddress parses the positional address argument at i.
func argAddress(c *cli.Context, i int) (types.Address, error) {
	s := c.Args().Get(i)
	if s == "" {
		return types.Address{}, fmt.Errorf("missing address argument\nUsage: ledgerctl %s %s", c.Command.Name, c.Command.ArgsUsage)
	}
	return types.ParseAddress(s)
}

// argHash parses the positional transaction ID argument at i.
func argHash(c *cli.Context, i int) (types.Hash, error) {
	s := c.Args().Get(i)
	if s == "" {
		return types.Hash{}, fmt.Errorf("missing transaction id\nUsage: ledgerctl %s %s", c.Command.Name, c.Command.ArgsUsage)
	}
	return types.HexToHash(s)
}
