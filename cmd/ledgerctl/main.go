// ledgerctl records and inspects transactions in a local UTXO ledger.
//
// Usage:
//
//	ledgerctl [global flags] <command> [flags] [args]
//	ledgerctl help
package main

import (
	"fmt"
	"os"

	"github.com/Klingon-tech/klingnet-ledger/config"
	"github.com/urfave/cli"
)

func main() {
	app := cli.NewApp()
	app.Name = "ledgerctl"
	app.Usage = "record, sign and verify transactions in a local UTXO ledger"
	app.Version = "0.1.0"
	app.EnableBashCompletion = true
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "datadir",
			Value: config.DefaultDataDir(),
			Usage: "data `DIR`",
		},
		cli.StringFlag{
			Name:  "network",
			Value: string(config.Mainnet),
			Usage: "mainnet or testnet",
		},
		cli.StringFlag{
			Name:  "config",
			Usage: "config `FILE` (default: <datadir>/ledger.conf)",
		},
		cli.StringFlag{
			Name:  "log-level",
			Usage: "override log.level (debug, info, warn, error)",
		},
		cli.BoolFlag{
			Name:  "log-json",
			Usage: "write logs as JSON",
		},
	}
	app.Commands = []cli.Command{
		configCommand(),
		walletCommand(),
		mintCommand(),
		sendCommand(),
		verifyCommand(),
		txCommand(),
		balanceCommand(),
		utxoCommand(),
		reindexCommand(),
		importCommand(),
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
