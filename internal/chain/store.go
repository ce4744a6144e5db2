package chain

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Klingon-tech/klingnet-ledger/internal/storage"
	"github.com/Klingon-tech/klingnet-ledger/pkg/tx"
	"github.com/Klingon-tech/klingnet-ledger/pkg/types"
)

// Key prefixes and state keys for the transaction store.
var (
	prefixTx  = []byte("x/") // x/<txid(32)> -> tx JSON
	prefixSeq = []byte("n/") // n/<seq(8)> -> txid(32)

	keyCount   = []byte("s/count")
	keySupply  = []byte("s/supply")
	keyReindex = []byte("s/reindex")
)

// TxStore persists transactions by ID and remembers the order in which
// they were recorded. It implements tx.Resolver.
type TxStore struct {
	db storage.DB
}

// NewTxStore creates a transaction store backed by the given database.
func NewTxStore(db storage.DB) *TxStore {
	return &TxStore{db: db}
}

func txKey(id types.Hash) []byte {
	key := make([]byte, len(prefixTx)+types.HashSize)
	copy(key, prefixTx)
	copy(key[len(prefixTx):], id[:])
	return key
}

func seqKey(seq uint64) []byte {
	key := make([]byte, len(prefixSeq)+8)
	copy(key, prefixSeq)
	binary.BigEndian.PutUint64(key[len(prefixSeq):], seq)
	return key
}

// Put records t as the seq-th transaction in batch b. b must write to the
// store's database; the caller commits it.
func (s *TxStore) Put(b storage.Batch, t *tx.Transaction, seq uint64) error {
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("tx marshal: %w", err)
	}
	if err := b.Put(txKey(t.ID), data); err != nil {
		return fmt.Errorf("tx put: %w", err)
	}
	if err := b.Put(seqKey(seq), t.ID[:]); err != nil {
		return fmt.Errorf("tx seq put: %w", err)
	}
	return nil
}

// FindTransaction returns the transaction with the given ID. An unknown ID
// yields an error wrapping tx.ErrTxNotFound.
func (s *TxStore) FindTransaction(id types.Hash) (*tx.Transaction, error) {
	data, err := s.db.Get(txKey(id))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", tx.ErrTxNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("tx get: %w", err)
	}
	var t tx.Transaction
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("tx unmarshal: %w", err)
	}
	return &t, nil
}

// Has checks if a transaction is recorded.
func (s *TxStore) Has(id types.Hash) (bool, error) {
	return s.db.Has(txKey(id))
}

// IDs returns the recorded transaction IDs in append order.
func (s *TxStore) IDs() ([]types.Hash, error) {
	var ids []types.Hash
	err := s.db.ForEach(prefixSeq, func(_, value []byte) error {
		if len(value) != types.HashSize {
			return fmt.Errorf("corrupt seq index: got %d bytes, want %d", len(value), types.HashSize)
		}
		var id types.Hash
		copy(id[:], value)
		ids = append(ids, id)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan seq index: %w", err)
	}
	return ids, nil
}

// All returns every recorded transaction in append order.
func (s *TxStore) All() ([]*tx.Transaction, error) {
	ids, err := s.IDs()
	if err != nil {
		return nil, err
	}
	txs := make([]*tx.Transaction, 0, len(ids))
	for _, id := range ids {
		t, err := s.FindTransaction(id)
		if err != nil {
			return nil, err
		}
		txs = append(txs, t)
	}
	return txs, nil
}

// PutState records st in batch b.
func (s *TxStore) PutState(b storage.Batch, st State) error {
	var countBuf, supplyBuf [8]byte
	binary.BigEndian.PutUint64(countBuf[:], st.Count)
	binary.BigEndian.PutUint64(supplyBuf[:], st.Supply)
	if err := b.Put(keyCount, countBuf[:]); err != nil {
		return fmt.Errorf("set count: %w", err)
	}
	if err := b.Put(keySupply, supplyBuf[:]); err != nil {
		return fmt.Errorf("set supply: %w", err)
	}
	return nil
}

// GetState returns the stored totals. A fresh store yields zero values.
func (s *TxStore) GetState() (State, error) {
	var st State
	for _, f := range []struct {
		key []byte
		dst *uint64
	}{{keyCount, &st.Count}, {keySupply, &st.Supply}} {
		data, err := s.db.Get(f.key)
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			return State{}, fmt.Errorf("get %s: %w", f.key, err)
		}
		if len(data) != 8 {
			return State{}, fmt.Errorf("corrupt %s: got %d bytes", f.key, len(data))
		}
		*f.dst = binary.BigEndian.Uint64(data)
	}
	return st, nil
}

// PutReindexCheckpoint writes a marker indicating a UTXO rebuild is in
// progress. If the process dies mid-rebuild, the marker triggers another
// rebuild on the next open.
func (s *TxStore) PutReindexCheckpoint() error {
	return s.db.Put(keyReindex, []byte{1})
}

// HasReindexCheckpoint reports whether a rebuild was interrupted.
func (s *TxStore) HasReindexCheckpoint() bool {
	ok, err := s.db.Has(keyReindex)
	return err == nil && ok
}

// DeleteReindexCheckpoint removes the rebuild-in-progress marker.
func (s *TxStore) DeleteReindexCheckpoint() error {
	return s.db.Delete(keyReindex)
}
