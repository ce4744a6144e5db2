package utxo

import (
	"encoding/binary"
	"encoding/json"
	"fmt"

	"github.com/Klingon-tech/klingnet-ledger/internal/log"
	"github.com/Klingon-tech/klingnet-ledger/internal/storage"
	"github.com/Klingon-tech/klingnet-ledger/pkg/tx"
	"github.com/Klingon-tech/klingnet-ledger/pkg/types"
)

// Key prefixes for the UTXO store.
var (
	prefixUTXO = []byte("u/") // u/<txid><index> -> UTXO JSON
	prefixAddr = []byte("a/") // a/<lock><txid><index> -> empty (index)
)

// writer is the write side shared by storage.DB and storage.Batch.
type writer interface {
	Put(key, value []byte) error
	Delete(key []byte) error
}

// Store implements Set backed by a storage.DB.
type Store struct {
	db     storage.DB
	selector Selector
}

// NewStore creates a new UTXO store backed by the given database.
// Spendable outputs are picked with SelectAccumulate.
func NewStore(db storage.DB) *Store {
	return &Store{db: db, selector: SelectAccumulate}
}

// SetSelector changes the coin selection strategy used by FindSpendable.
func (s *Store) SetSelector(sel Selector) {
	s.selector = sel
}

// utxoKey builds a storage key for an outpoint: "u/" + txid(32) + index(4).
func utxoKey(op types.Outpoint) []byte {
	key := make([]byte, len(prefixUTXO)+types.HashSize+4)
	copy(key, prefixUTXO)
	copy(key[len(prefixUTXO):], op.TxID[:])
	binary.BigEndian.PutUint32(key[len(prefixUTXO)+types.HashSize:], op.Index)
	return key
}

// addrKey builds an address index key: "a/" + lock(20) + txid(32) + index(4).
func addrKey(lock types.Address, op types.Outpoint) []byte {
	key := make([]byte, len(prefixAddr)+types.AddressSize+types.HashSize+4)
	copy(key, prefixAddr)
	copy(key[len(prefixAddr):], lock[:])
	off := len(prefixAddr) + types.AddressSize
	copy(key[off:], op.TxID[:])
	binary.BigEndian.PutUint32(key[off+types.HashSize:], op.Index)
	return key
}

// Get retrieves a UTXO by its outpoint. A missing outpoint yields an error
// wrapping storage.ErrNotFound.
func (s *Store) Get(outpoint types.Outpoint) (*UTXO, error) {
	data, err := s.db.Get(utxoKey(outpoint))
	if err != nil {
		return nil, fmt.Errorf("utxo get %s: %w", outpoint, err)
	}
	var u UTXO
	if err := json.Unmarshal(data, &u); err != nil {
		return nil, fmt.Errorf("utxo unmarshal: %w", err)
	}
	return &u, nil
}

// Put stores a UTXO and updates the address index.
func (s *Store) Put(u *UTXO) error {
	return put(s.db, u)
}

func put(w writer, u *UTXO) error {
	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("utxo marshal: %w", err)
	}
	if err := w.Put(utxoKey(u.Outpoint), data); err != nil {
		return fmt.Errorf("utxo put: %w", err)
	}
	if err := w.Put(addrKey(u.LockingHash, u.Outpoint), []byte{}); err != nil {
		return fmt.Errorf("utxo index put: %w", err)
	}
	return nil
}

// Delete removes a UTXO and its address index entry.
func (s *Store) Delete(outpoint types.Outpoint) error {
	return s.del(s.db, outpoint)
}

func (s *Store) del(w writer, outpoint types.Outpoint) error {
	// Read first to clean up the address index.
	if u, err := s.Get(outpoint); err == nil {
		if err := w.Delete(addrKey(u.LockingHash, u.Outpoint)); err != nil {
			return fmt.Errorf("utxo index delete: %w", err)
		}
	}
	if err := w.Delete(utxoKey(outpoint)); err != nil {
		return fmt.Errorf("utxo delete: %w", err)
	}
	return nil
}

// Has checks if a UTXO exists for the given outpoint.
func (s *Store) Has(outpoint types.Outpoint) (bool, error) {
	return s.db.Has(utxoKey(outpoint))
}

// ForEach iterates over all UTXOs in the store in outpoint order.
func (s *Store) ForEach(fn func(*UTXO) error) error {
	return s.db.ForEach(prefixUTXO, func(_, value []byte) error {
		var u UTXO
		if err := json.Unmarshal(value, &u); err != nil {
			return fmt.Errorf("utxo unmarshal: %w", err)
		}
		return fn(&u)
	})
}

// GetByAddress returns all UTXOs locked to lock, ordered by outpoint.
// It scans the address index and loads each referenced UTXO.
func (s *Store) GetByAddress(lock types.Address) ([]*UTXO, error) {
	// Build the prefix: "a/" + lock(20).
	prefix := make([]byte, len(prefixAddr)+types.AddressSize)
	copy(prefix, prefixAddr)
	copy(prefix[len(prefixAddr):], lock[:])

	var ops []types.Outpoint
	err := s.db.ForEach(prefix, func(key, _ []byte) error {
		// Key layout: "a/" + lock(20) + txid(32) + index(4).
		off := len(prefixAddr) + types.AddressSize
		if len(key) < off+types.HashSize+4 {
			return nil // Malformed key, skip.
		}
		var op types.Outpoint
		copy(op.TxID[:], key[off:off+types.HashSize])
		op.Index = binary.BigEndian.Uint32(key[off+types.HashSize:])
		ops = append(ops, op)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan address index: %w", err)
	}

	utxos := make([]*UTXO, 0, len(ops))
	for _, op := range ops {
		u, err := s.Get(op)
		if err != nil {
			continue // Stale index entry, skip.
		}
		utxos = append(utxos, u)
	}
	return utxos, nil
}

// Balance returns the total value locked to lock.
func (s *Store) Balance(lock types.Address) (uint64, error) {
	utxos, err := s.GetByAddress(lock)
	if err != nil {
		return 0, err
	}
	var total uint64
	for _, u := range utxos {
		total += u.Value
	}
	return total, nil
}

// FindSpendable picks outputs locked to lock worth at least amount using
// the store's Selector. It returns the picked total and outpoints; the
// total is below amount when the balance cannot cover it.
func (s *Store) FindSpendable(lock types.Address, amount uint64) (uint64, []types.Outpoint, error) {
	utxos, err := s.GetByAddress(lock)
	if err != nil {
		return 0, nil, err
	}
	total, picked := s.selector(utxos, amount)
	ops := make([]types.Outpoint, len(picked))
	for i, u := range picked {
		ops[i] = u.Outpoint
	}
	return total, ops, nil
}

// Apply records t in batch b: every output it spends is removed and every
// output it creates is added. b must write to the store's database; the
// caller commits it.
func (s *Store) Apply(b storage.Batch, t *tx.Transaction) error {
	for _, op := range t.Outpoints() {
		if err := s.del(b, op); err != nil {
			return fmt.Errorf("spend %s: %w", op, err)
		}
	}
	coinbase := t.IsCoinbase()
	for i, out := range t.Outputs {
		u := &UTXO{
			Outpoint:    types.Outpoint{TxID: t.ID, Index: uint32(i)},
			Value:       out.Value,
			LockingHash: out.LockingHash,
			Coinbase:    coinbase,
		}
		if err := put(b, u); err != nil {
			return err
		}
	}
	log.UTXO.Debug().
		Str("tx", t.ID.String()).
		Int("spent", len(t.Outpoints())).
		Int("created", len(t.Outputs)).
		Msg("Applied transaction")
	return nil
}

// ApplyTx applies t in its own batch and commits it.
func (s *Store) ApplyTx(t *tx.Transaction) error {
	b := storage.NewBatch(s.db)
	if err := s.Apply(b, t); err != nil {
		return err
	}
	return b.Commit()
}

// ClearAll removes all UTXOs and their address index.
func (s *Store) ClearAll() error {
	var keys [][]byte
	for _, prefix := range [][]byte{prefixUTXO, prefixAddr} {
		if err := s.db.ForEach(prefix, func(key, _ []byte) error {
			k := make([]byte, len(key))
			copy(k, key)
			keys = append(keys, k)
			return nil
		}); err != nil {
			return fmt.Errorf("scan prefix %s: %w", prefix, err)
		}
	}
	b := storage.NewBatch(s.db)
	for _, key := range keys {
		if err := b.Delete(key); err != nil {
			return fmt.Errorf("delete utxo key: %w", err)
		}
	}
	return b.Commit()
}

// Reindex rebuilds the set from scratch by applying txs in order.
func (s *Store) Reindex(txs []*tx.Transaction) error {
	if err := s.ClearAll(); err != nil {
		return fmt.Errorf("clear utxo set: %w", err)
	}
	for _, t := range txs {
		if err := s.ApplyTx(t); err != nil {
			return fmt.Errorf("reindex %s: %w", t.ID, err)
		}
	}
	log.UTXO.Info().Int("txs", len(txs)).Msg("UTXO set rebuilt")
	return nil
}
