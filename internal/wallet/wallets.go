package wallet

import (
	"fmt"
	"sync"

	"github.com/Klingon-tech/klingnet-ledger/internal/log"
	"github.com/Klingon-tech/klingnet-ledger/pkg/crypto"
	"github.com/Klingon-tech/klingnet-ledger/pkg/tx"
	"github.com/Klingon-tech/klingnet-ledger/pkg/types"
)

// Wallets is an in-memory set of signing keys indexed by locking hash.
// It implements tx.KeyStore and is safe for concurrent use.
type Wallets struct {
	mu       sync.RWMutex
	keys     map[types.Address]*crypto.PrivateKey
	accounts []Account
}

// NewWallets returns an empty key set.
func NewWallets() *Wallets {
	return &Wallets{keys: make(map[types.Address]*crypto.PrivateKey)}
}

// Add registers key and returns the locking hash it signs for.
func (w *Wallets) Add(name string, key *crypto.PrivateKey) types.Address {
	w.mu.Lock()
	defer w.mu.Unlock()
	lock := key.LockingHash()
	if _, ok := w.keys[lock]; !ok {
		w.accounts = append(w.accounts, Account{Index: uint32(len(w.accounts)), Name: name, Lock: lock})
	}
	w.keys[lock] = key
	return lock
}

// Signer returns the key that owns outputs locked to lock.
func (w *Wallets) Signer(lock types.Address) (crypto.Signer, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	key, ok := w.keys[lock]
	if !ok {
		return nil, fmt.Errorf("%w: %s", tx.ErrUnknownSender, lock)
	}
	return key, nil
}

// Accounts returns the held accounts in the order they were added.
func (w *Wallets) Accounts() []Account {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]Account, len(w.accounts))
	copy(out, w.accounts)
	return out
}

// Close zeroes every held key.
func (w *Wallets) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for lock, key := range w.keys {
		key.Zero()
		delete(w.keys, lock)
	}
	w.accounts = nil
}

// Open decrypts the named wallet and derives its first count accounts.
// Accounts not yet recorded in the keystore are added to it.
func Open(ks *Keystore, name string, password []byte, count int) (*Wallets, error) {
	if count < 1 {
		return nil, fmt.Errorf("account count must be at least 1, got %d", count)
	}
	seed, err := ks.Load(name, password)
	if err != nil {
		return nil, err
	}
	defer wipe(seed)

	master, err := NewMasterKey(seed)
	if err != nil {
		return nil, err
	}

	w := NewWallets()
	for i := 0; i < count; i++ {
		hd, err := master.DeriveAccount(uint32(i))
		if err != nil {
			return nil, err
		}
		key, err := hd.PrivateKey()
		if err != nil {
			return nil, err
		}
		acctName := fmt.Sprintf("%s/%d", name, i)
		lock := w.Add(acctName, key)
		if err := ks.AddAccount(name, AccountEntry{Index: uint32(i), Name: acctName, Address: lock.Hex()}); err != nil {
			return nil, fmt.Errorf("record account %d: %w", i, err)
		}
	}
	log.Wallet.Debug().Str("wallet", name).Int("accounts", count).Msg("Wallet opened")
	return w, nil
}
