package main

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/Klingon-tech/klingnet-ledger/config"
	"github.com/Klingon-tech/klingnet-ledger/internal/chain"
	"github.com/Klingon-tech/klingnet-ledger/internal/mempool"
	"github.com/Klingon-tech/klingnet-ledger/internal/utxo"
	"github.com/Klingon-tech/klingnet-ledger/internal/wallet"
	"github.com/Klingon-tech/klingnet-ledger/pkg/tx"
	"github.com/Klingon-tech/klingnet-ledger/pkg/types"
	"github.com/urfave/cli"
)

func configCommand() cli.Command {
	return cli.Command{
		Name:  "config",
		Usage: "manage the configuration file",
		Subcommands: []cli.Command{
			{
				Name:  "init",
				Usage: "write a default config file",
				Action: func(c *cli.Context) error {
					network := config.NetworkType(c.GlobalString("network"))
					cfg := config.Default(network)
					cfg.DataDir = c.GlobalString("datadir")
					path := c.GlobalString("config")
					if path == "" {
						path = cfg.ConfigFile()
					}
					if _, err := os.Stat(path); err == nil {
						return fmt.Errorf("%s already exists", path)
					}
					if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
						return err
					}
					if err := config.WriteDefaultConfig(path, network); err != nil {
						return err
					}
					fmt.Printf("Wrote %s\n", path)
					return nil
				},
			},
		},
	}
}

func mintCommand() cli.Command {
	return cli.Command{
		Name:      "mint",
		Usage:     "record a reward transaction paying the fixed subsidy",
		ArgsUsage: "<address>",
		Flags: []cli.Flag{
			cli.StringFlag{
				Name:  "data",
				Usage: "reward data as `HEX` (default: ledger sequence number)",
			},
		},
		Action: func(c *cli.Context) error {
			to, err := argAddress(c, 0)
			if err != nil {
				return err
			}
			var data []byte
			if s := c.String("data"); s != "" {
				if data, err = hex.DecodeString(s); err != nil {
					return fmt.Errorf("invalid --data: %w", err)
				}
			}
			return withLedger(c, func(_ *config.Config, l *chain.Ledger) error {
				cb, err := l.Mint(to, data)
				if err != nil {
					return err
				}
				fmt.Printf("Minted %d to %s\n", config.BlockSubsidy, to)
				fmt.Printf("Tx: %s\n", cb.ID)
				return nil
			})
		},
	}
}

func sendCommand() cli.Command {
	return cli.Command{
		Name:      "send",
		Usage:     "sign and record a transfer",
		ArgsUsage: "--amount <n> <to-address>",
		Flags: []cli.Flag{
			cli.StringFlag{
				Name:  "wallet",
				Usage: "wallet `NAME` (default: wallet.name from config)",
			},
			cli.StringFlag{
				Name:  "from",
				Usage: "sending `ADDRESS` (default: first account)",
			},
			cli.Uint64Flag{
				Name:  "amount",
				Usage: "amount to send",
			},
		},
		Action: func(c *cli.Context) error {
			to, err := argAddress(c, 0)
			if err != nil {
				return err
			}
			amount := c.Uint64("amount")
			if amount == 0 {
				return fmt.Errorf("--amount must be positive")
			}
			return withLedger(c, func(cfg *config.Config, l *chain.Ledger) error {
				keys, err := openWallet(cfg, c.String("wallet"))
				if err != nil {
					return err
				}
				defer keys.Close()

				from := keys.Accounts()[0].Lock
				if s := c.String("from"); s != "" {
					if from, err = types.ParseAddress(s); err != nil {
						return err
					}
				}

				sent, err := l.Send(keys, from, to, amount)
				if errors.Is(err, tx.ErrInsufficientFunds) {
					bal, _ := l.Balance(from)
					return fmt.Errorf("%w: %s holds %d, need %d", tx.ErrInsufficientFunds, from, bal, amount)
				}
				if err != nil {
					return err
				}
				fmt.Printf("Sent %d from %s to %s\n", amount, from, to)
				fmt.Printf("Tx: %s\n", sent.ID)
				return nil
			})
		},
	}
}

func verifyCommand() cli.Command {
	return cli.Command{
		Name:      "verify",
		Usage:     "check the signatures of a recorded transaction",
		ArgsUsage: "<txid>",
		Action: func(c *cli.Context) error {
			id, err := argHash(c, 0)
			if err != nil {
				return err
			}
			return withLedger(c, func(_ *config.Config, l *chain.Ledger) error {
				t, err := l.FindTransaction(id)
				if err != nil {
					return err
				}
				ok, err := t.Verify(l)
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("transaction %s: invalid signature", id)
				}
				fmt.Printf("Transaction %s: valid\n", id)
				return nil
			})
		},
	}
}

func txCommand() cli.Command {
	return cli.Command{
		Name:      "tx",
		Usage:     "show a recorded transaction, or all of them",
		ArgsUsage: "[txid]",
		Action: func(c *cli.Context) error {
			return withLedger(c, func(_ *config.Config, l *chain.Ledger) error {
				if c.NArg() == 0 {
					all, err := l.Transactions()
					if err != nil {
						return err
					}
					return printJSON(all)
				}
				id, err := argHash(c, 0)
				if err != nil {
					return err
				}
				t, err := l.FindTransaction(id)
				if err != nil {
					return err
				}
				return printJSON(t)
			})
		},
	}
}

func balanceCommand() cli.Command {
	return cli.Command{
		Name:      "balance",
		Usage:     "show the unspent value held by an address",
		ArgsUsage: "<address>",
		Action: func(c *cli.Context) error {
			lock, err := argAddress(c, 0)
			if err != nil {
				return err
			}
			return withLedger(c, func(_ *config.Config, l *chain.Ledger) error {
				bal, err := l.Balance(lock)
				if err != nil {
					return err
				}
				fmt.Printf("%s: %d\n", lock, bal)
				return nil
			})
		},
	}
}

func utxoCommand() cli.Command {
	return cli.Command{
		Name:  "utxo",
		Usage: "inspect the UTXO set",
		Subcommands: []cli.Command{
			{
				Name:      "list",
				Usage:     "list unspent outputs locked to an address",
				ArgsUsage: "<address>",
				Action: func(c *cli.Context) error {
					lock, err := argAddress(c, 0)
					if err != nil {
						return err
					}
					return withLedger(c, func(_ *config.Config, l *chain.Ledger) error {
						utxos, err := l.UTXOs().GetByAddress(lock)
						if err != nil {
							return err
						}
						if utxos == nil {
							utxos = []*utxo.UTXO{}
						}
						return printJSON(utxos)
					})
				},
			},
			{
				Name:  "commitment",
				Usage: "print the merkle root of the UTXO set",
				Action: func(c *cli.Context) error {
					return withLedger(c, func(_ *config.Config, l *chain.Ledger) error {
						root, err := l.Commitment()
						if err != nil {
							return err
						}
						st := l.State()
						fmt.Printf("Commitment: %s\n", root)
						fmt.Printf("Transactions: %d\n", st.Count)
						fmt.Printf("Supply: %d\n", st.Supply)
						return nil
					})
				},
			},
		},
	}
}

func reindexCommand() cli.Command {
	return cli.Command{
		Name:  "reindex",
		Usage: "rebuild the UTXO set from recorded transactions",
		Action: func(c *cli.Context) error {
			return withLedger(c, func(_ *config.Config, l *chain.Ledger) error {
				if err := l.Reindex(); err != nil {
					return err
				}
				root, err := l.Commitment()
				if err != nil {
					return err
				}
				fmt.Printf("Reindexed %d transactions, commitment %s\n", l.State().Count, root)
				return nil
			})
		},
	}
}

func importCommand() cli.Command {
	return cli.Command{
		Name:      "import",
		Usage:     "verify transactions from a JSON file and record the valid ones",
		ArgsUsage: "<file.json>",
		Action: func(c *cli.Context) error {
			path := c.Args().First()
			if path == "" {
				return fmt.Errorf("missing file argument\nUsage: ledgerctl import <file.json>")
			}
			txs, err := readTxFile(path)
			if err != nil {
				return err
			}
			return withLedger(c, func(cfg *config.Config, l *chain.Ledger) error {
				pool := mempool.New(l.UTXOs(), l, cfg.Mempool.MaxSize)
				var rejected int
				for _, t := range txs {
					if err := pool.Add(t); err != nil {
						fmt.Fprintf(os.Stderr, "Rejected %s: %v\n", t.ID, err)
						rejected++
					}
				}

				pending := pool.Pending()
				var recorded []*tx.Transaction
				for _, t := range pending {
					if err := l.Submit(t); err != nil {
						fmt.Fprintf(os.Stderr, "Rejected %s: %v\n", t.ID, err)
						rejected++
						continue
					}
					recorded = append(recorded, t)
				}
				pool.RemoveConfirmed(recorded)

				fmt.Printf("Recorded %d, rejected %d\n", len(recorded), rejected)
				return nil
			})
		},
	}
}

// readTxFile reads a JSON array of transactions, or a single transaction.
func readTxFile(path string) ([]*tx.Transaction, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var txs []*tx.Transaction
	if err := json.Unmarshal(data, &txs); err == nil {
		return txs, nil
	}
	var single tx.Transaction
	if err := json.Unmarshal(data, &single); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return []*tx.Transaction{&single}, nil
}

// openWallet decrypts the named wallet, or the configured default.
func openWallet(cfg *config.Config, name string) (*wallet.Wallets, error) {
	if name == "" {
		name = cfg.Wallet.Name
	}
	if name == "" {
		return nil, fmt.Errorf("no wallet given: use --wallet or set wallet.name")
	}
	ks, err := wallet.NewKeystore(cfg.KeystoreDir())
	if err != nil {
		return nil, err
	}
	password, err := readPassword("Enter password: ")
	if err != nil {
		return nil, err
	}
	return wallet.Open(ks, name, password, cfg.Wallet.Accounts)
}
