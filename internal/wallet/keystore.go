package wallet

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Klingon-tech/klingnet-ledger/internal/log"
)

const (
	walletExt     = ".wallet"
	walletVersion = 1
)

// Keystore errors.
var (
	ErrWalletExists   = errors.New("wallet already exists")
	ErrWalletNotFound = errors.New("wallet not found")
)

// walletFile is the on-disk JSON format for an encrypted wallet.
type walletFile struct {
	Version       int            `json:"version"`
	CreatedAt     time.Time      `json:"created_at"`
	EncryptedSeed []byte         `json:"encrypted_seed"`
	Accounts      []AccountEntry `json:"accounts"`
}

// Keystore keeps one encrypted wallet file per name in a directory.
type Keystore struct {
	dir string
}

// NewKeystore returns a keystore rooted at dir, creating it if needed.
func NewKeystore(dir string) (*Keystore, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create keystore dir: %w", err)
	}
	return &Keystore{dir: dir}, nil
}

func (ks *Keystore) path(name string) string {
	return filepath.Join(ks.dir, name+walletExt)
}

// Create writes a new wallet holding seed encrypted under password.
func (ks *Keystore) Create(name string, seed, password []byte, params EncryptionParams) error {
	if name == "" || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("invalid wallet name %q", name)
	}
	path := ks.path(name)
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%w: %s", ErrWalletExists, name)
	}

	sealed, err := Encrypt(seed, password, params)
	if err != nil {
		return fmt.Errorf("encrypt seed: %w", err)
	}
	wf := &walletFile{
		Version:       walletVersion,
		CreatedAt:     time.Now().UTC(),
		EncryptedSeed: sealed,
		Accounts:      []AccountEntry{},
	}
	if err := writeWallet(path, wf); err != nil {
		return err
	}
	log.Wallet.Info().Str("wallet", name).Msg("Wallet created")
	return nil
}

// Load decrypts a wallet and returns its seed.
func (ks *Keystore) Load(name string, password []byte) ([]byte, error) {
	wf, err := readWallet(ks.path(name))
	if err != nil {
		return nil, err
	}
	seed, err := Decrypt(wf.EncryptedSeed, password)
	if err != nil {
		return nil, fmt.Errorf("open wallet %s: %w", name, err)
	}
	return seed, nil
}

// AddAccount records a derived account. Re-adding the same index with the
// same address is a no-op.
func (ks *Keystore) AddAccount(name string, acct AccountEntry) error {
	path := ks.path(name)
	wf, err := readWallet(path)
	if err != nil {
		return err
	}
	for _, existing := range wf.Accounts {
		if existing.Index != acct.Index {
			continue
		}
		if existing.Address == acct.Address {
			return nil
		}
		return fmt.Errorf("account %d already exists with address %s", acct.Index, existing.Address)
	}
	wf.Accounts = append(wf.Accounts, acct)
	sort.Slice(wf.Accounts, func(i, j int) bool { return wf.Accounts[i].Index < wf.Accounts[j].Index })
	return writeWallet(path, wf)
}

// Accounts returns the recorded accounts of a wallet, by index.
func (ks *Keystore) Accounts(name string) ([]AccountEntry, error) {
	wf, err := readWallet(ks.path(name))
	if err != nil {
		return nil, err
	}
	return wf.Accounts, nil
}

// List returns the names of all wallets in the keystore, sorted.
func (ks *Keystore) List() ([]string, error) {
	entries, err := os.ReadDir(ks.dir)
	if err != nil {
		return nil, fmt.Errorf("read keystore dir: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if name, ok := strings.CutSuffix(e.Name(), walletExt); ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// Delete removes a wallet file.
func (ks *Keystore) Delete(name string) error {
	if err := os.Remove(ks.path(name)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrWalletNotFound, name)
		}
		return fmt.Errorf("delete wallet: %w", err)
	}
	return nil
}

func writeWallet(path string, wf *walletFile) error {
	data, err := json.MarshalIndent(wf, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal wallet: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write wallet: %w", err)
	}
	return nil
}

func readWallet(path string) (*walletFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrWalletNotFound, strings.TrimSuffix(filepath.Base(path), walletExt))
		}
		return nil, fmt.Errorf("read wallet: %w", err)
	}
	var wf walletFile
	if err := json.Unmarshal(data, &wf); err != nil {
		return nil, fmt.Errorf("parse wallet: %w", err)
	}
	if wf.Version != walletVersion {
		return nil, fmt.Errorf("unsupported wallet version: %d", wf.Version)
	}
	return &wf, nil
}
