// Package chain records transactions and maintains the UTXO set derived
// from them.
package chain

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/Klingon-tech/klingnet-ledger/config"
	"github.com/Klingon-tech/klingnet-ledger/internal/log"
	"github.com/Klingon-tech/klingnet-ledger/internal/storage"
	"github.com/Klingon-tech/klingnet-ledger/internal/utxo"
	"github.com/Klingon-tech/klingnet-ledger/pkg/tx"
	"github.com/Klingon-tech/klingnet-ledger/pkg/types"
)

// Ledger errors.
var (
	ErrInvalidSignature = errors.New("invalid signature")
	ErrAlreadyKnown     = errors.New("transaction already recorded")
	ErrBadCoinbase      = errors.New("invalid reward transaction")
)

// Namespaces inside the ledger database.
var (
	nsTx   = []byte("tx/")
	nsUTXO = []byte("utxo/")
)

// Ledger is the append-only record of accepted transactions together with
// the UTXO set they produce. It is safe for concurrent use.
type Ledger struct {
	mu     sync.Mutex // Protects all state mutations (Submit, Reindex).
	txDB   *storage.PrefixDB
	utxoDB *storage.PrefixDB
	txs    *TxStore
	utxos  *utxo.Store
	state  State
}

// New opens the ledger stored in db. If a previous UTXO rebuild was
// interrupted, the set is rebuilt before New returns.
func New(db storage.DB) (*Ledger, error) {
	if db == nil {
		return nil, fmt.Errorf("storage db is nil")
	}

	txDB := storage.NewPrefixDB(db, nsTx)
	utxoDB := storage.NewPrefixDB(db, nsUTXO)
	l := &Ledger{
		txDB:   txDB,
		utxoDB: utxoDB,
		txs:    NewTxStore(txDB),
		utxos:  utxo.NewStore(utxoDB),
	}

	st, err := l.txs.GetState()
	if err != nil {
		return nil, fmt.Errorf("recover state: %w", err)
	}
	l.state = st

	if l.txs.HasReindexCheckpoint() {
		log.Ledger.Warn().Msg("Interrupted UTXO rebuild detected, rebuilding")
		if err := l.Reindex(); err != nil {
			return nil, fmt.Errorf("recover from interrupted rebuild: %w", err)
		}
	}
	return l, nil
}

// SetSelector changes the coin selection strategy used by Send.
func (l *Ledger) SetSelector(sel utxo.Selector) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.utxos.SetSelector(sel)
}

// UTXOs returns the ledger's UTXO set.
func (l *Ledger) UTXOs() *utxo.Store {
	return l.utxos
}

// State returns a copy of the running totals.
func (l *Ledger) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// FindTransaction returns a recorded transaction. It implements tx.Resolver.
func (l *Ledger) FindTransaction(id types.Hash) (*tx.Transaction, error) {
	return l.txs.FindTransaction(id)
}

// Transactions returns every recorded transaction in append order.
func (l *Ledger) Transactions() ([]*tx.Transaction, error) {
	return l.txs.All()
}

// Balance returns the unspent value locked to lock.
func (l *Ledger) Balance(lock types.Address) (uint64, error) {
	return l.utxos.Balance(lock)
}

// Commitment returns the merkle root over the current UTXO set.
func (l *Ledger) Commitment() (types.Hash, error) {
	return utxo.Commitment(l.utxos)
}

// Mint records a reward transaction paying config.BlockSubsidy to to.
// When data is nil the ledger's transaction count is used so that repeated
// mints to one address get distinct IDs.
func (l *Ledger) Mint(to types.Address, data []byte) (*tx.Transaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if data == nil {
		data = binary.BigEndian.AppendUint64(nil, l.state.Count)
	}
	cb := tx.NewCoinbase(to, data)
	if err := l.submitLocked(cb); err != nil {
		return nil, err
	}
	return cb, nil
}

// Send builds, signs and records a transaction moving amount from the owner
// of from to to. The sender's key comes from keys.
func (l *Ledger) Send(keys tx.KeyStore, from, to types.Address, amount uint64) (*tx.Transaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	t, err := tx.NewSpend(from, to, amount, keys, l.utxos, l.txs)
	if err != nil {
		return nil, err
	}
	if err := l.submitLocked(t); err != nil {
		return nil, err
	}
	return t, nil
}

// Submit checks t against the ledger and records it. t must be
// structurally valid, correctly signed, spend only unspent outputs owned by
// its input keys, and not create more value than it spends. Reward
// transactions may mint up to config.BlockSubsidy.
func (l *Ledger) Submit(t *tx.Transaction) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.submitLocked(t)
}

func (l *Ledger) submitLocked(t *tx.Transaction) error {
	if err := t.Validate(); err != nil {
		return fmt.Errorf("validate %s: %w", t.ID, err)
	}

	known, err := l.txs.Has(t.ID)
	if err != nil {
		return fmt.Errorf("check known: %w", err)
	}
	if known {
		return fmt.Errorf("%w: %s", ErrAlreadyKnown, t.ID)
	}

	ok, err := t.Verify(l.txs)
	if err != nil {
		return fmt.Errorf("verify %s: %w", t.ID, err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrInvalidSignature, t.ID)
	}

	var minted uint64
	if t.IsCoinbase() {
		minted, err = t.TotalOutputValue()
		if err != nil {
			return err
		}
		if minted > config.BlockSubsidy {
			return fmt.Errorf("%w: mints %d, max %d", ErrBadCoinbase, minted, config.BlockSubsidy)
		}
	}
	if _, err := utxo.CheckSpend(l.utxos, t); err != nil {
		return fmt.Errorf("check spend %s: %w", t.ID, err)
	}

	next := l.state
	next.Count++
	next.Supply += minted

	// Both namespaces share one underlying commit.
	batch := l.txDB.NewBatch()
	if err := l.txs.Put(batch, t, l.state.Count); err != nil {
		return err
	}
	if err := l.utxos.Apply(storage.BatchFor(batch, l.utxoDB), t); err != nil {
		return err
	}
	if err := l.txs.PutState(batch, next); err != nil {
		return err
	}
	if err := batch.Commit(); err != nil {
		return fmt.Errorf("commit %s: %w", t.ID, err)
	}
	l.state = next

	log.Ledger.Info().
		Str("tx", t.ID.String()).
		Int("inputs", len(t.Inputs)).
		Int("outputs", len(t.Outputs)).
		Bool("coinbase", t.IsCoinbase()).
		Msg("Transaction recorded")
	return nil
}

// Reindex discards the UTXO set and rebuilds it from the recorded
// transactions.
func (l *Ledger) Reindex() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.txs.PutReindexCheckpoint(); err != nil {
		return fmt.Errorf("write reindex checkpoint: %w", err)
	}

	txs, err := l.txs.All()
	if err != nil {
		return fmt.Errorf("load transactions: %w", err)
	}
	if err := l.utxos.Reindex(txs); err != nil {
		return err
	}

	var st State
	for _, t := range txs {
		st.Count++
		if t.IsCoinbase() {
			v, err := t.TotalOutputValue()
			if err != nil {
				return err
			}
			st.Supply += v
		}
	}
	batch := l.txDB.NewBatch()
	if err := l.txs.PutState(batch, st); err != nil {
		return err
	}
	if err := batch.Commit(); err != nil {
		return fmt.Errorf("commit state: %w", err)
	}
	l.state = st

	if err := l.txs.DeleteReindexCheckpoint(); err != nil {
		return fmt.Errorf("delete reindex checkpoint: %w", err)
	}
	log.Ledger.Info().Uint64("txs", st.Count).Uint64("supply", st.Supply).Msg("Ledger reindexed")
	return nil
}
