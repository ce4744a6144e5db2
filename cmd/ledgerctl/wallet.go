package main

import (
	"bytes"
	"fmt"

	"github.com/Klingon-tech/klingnet-ledger/internal/wallet"
	"github.com/Klingon-tech/klingnet-ledger/pkg/types"
	"github.com/urfave/cli"
)

func walletCommand() cli.Command {
	nameFlag := cli.StringFlag{
		Name:  "name",
		Usage: "wallet `NAME` (default: wallet.name from config)",
	}
	return cli.Command{
		Name:  "wallet",
		Usage: "manage encrypted HD wallets",
		Subcommands: []cli.Command{
			{
				Name:   "create",
				Usage:  "create a wallet from a new mnemonic",
				Flags:  []cli.Flag{nameFlag},
				Action: walletCreate,
			},
			{
				Name:  "restore",
				Usage: "create a wallet from an existing mnemonic",
				Flags: []cli.Flag{nameFlag},
				Action: func(c *cli.Context) error {
					mnemonic, err := readPassword("Enter mnemonic: ")
					if err != nil {
						return err
					}
					return storeWallet(c, string(bytes.TrimSpace(mnemonic)))
				},
			},
			{
				Name:  "list",
				Usage: "list wallets in the keystore",
				Action: func(c *cli.Context) error {
					cfg, err := loadConfig(c)
					if err != nil {
						return err
					}
					ks, err := wallet.NewKeystore(cfg.KeystoreDir())
					if err != nil {
						return err
					}
					names, err := ks.List()
					if err != nil {
						return err
					}
					if len(names) == 0 {
						fmt.Println("No wallets found.")
						return nil
					}
					for _, name := range names {
						fmt.Println(name)
					}
					return nil
				},
			},
			{
				Name:  "address",
				Usage: "show the addresses recorded for a wallet",
				Flags: []cli.Flag{nameFlag},
				Action: func(c *cli.Context) error {
					cfg, err := loadConfig(c)
					if err != nil {
						return err
					}
					name := c.String("name")
					if name == "" {
						name = cfg.Wallet.Name
					}
					ks, err := wallet.NewKeystore(cfg.KeystoreDir())
					if err != nil {
						return err
					}
					accts, err := ks.Accounts(name)
					if err != nil {
						return err
					}
					for _, a := range accts {
						lock, err := types.HexToAddress(a.Address)
						if err != nil {
							return fmt.Errorf("account %d: %w", a.Index, err)
						}
						fmt.Printf("%d  %s\n", a.Index, lock)
					}
					return nil
				},
			},
		},
	}
}

func walletCreate(c *cli.Context) error {
	mnemonic, err := wallet.GenerateMnemonic()
	if err != nil {
		return err
	}
	fmt.Println("Mnemonic (write this down!):")
	fmt.Printf("  %s\n\n", mnemonic)
	return storeWallet(c, mnemonic)
}

// storeWallet encrypts the seed for mnemonic into the keystore and derives
// the configured number of accounts.
func storeWallet(c *cli.Context, mnemonic string) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	name := c.String("name")
	if name == "" {
		name = cfg.Wallet.Name
	}
	if name == "" {
		return fmt.Errorf("missing --name")
	}

	seed, err := wallet.SeedFromMnemonic(mnemonic, "")
	if err != nil {
		return err
	}

	password, err := readPassword("Enter password: ")
	if err != nil {
		return err
	}
	confirm, err := readPassword("Confirm password: ")
	if err != nil {
		return err
	}
	if !bytes.Equal(password, confirm) {
		return fmt.Errorf("passwords do not match")
	}

	ks, err := wallet.NewKeystore(cfg.KeystoreDir())
	if err != nil {
		return err
	}
	if err := ks.Create(name, seed, password, wallet.DefaultParams()); err != nil {
		return err
	}
	keys, err := wallet.Open(ks, name, password, cfg.Wallet.Accounts)
	if err != nil {
		return err
	}
	defer keys.Close()

	fmt.Printf("Wallet %q created.\n", name)
	for _, a := range keys.Accounts() {
		fmt.Printf("%d  %s\n", a.Index, a.Lock)
	}
	return nil
}
