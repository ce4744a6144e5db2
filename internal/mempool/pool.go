// Package mempool holds verified transactions waiting to be recorded.
package mempool

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/Klingon-tech/klingnet-ledger/internal/log"
	"github.com/Klingon-tech/klingnet-ledger/internal/utxo"
	"github.com/Klingon-tech/klingnet-ledger/pkg/tx"
	"github.com/Klingon-tech/klingnet-ledger/pkg/types"
)

// DefaultMaxSize is used when New is given a non-positive size.
const DefaultMaxSize = 5000

// Mempool errors.
var (
	ErrAlreadyExists = errors.New("transaction already in mempool")
	ErrConflict      = errors.New("transaction conflicts with existing mempool entry")
	ErrPoolFull      = errors.New("mempool is full")
	ErrValidation    = errors.New("transaction failed validation")
)

// entry wraps a transaction with its arrival order.
type entry struct {
	tx  *tx.Transaction
	seq uint64
}

// Pool holds unconfirmed transactions. Each one is checked against the
// confirmed UTXO set on entry; a transaction spending an output already
// claimed by another pool entry is rejected.
type Pool struct {
	mu       sync.RWMutex
	txs      map[types.Hash]*entry         // txid -> entry
	spends   map[types.Outpoint]types.Hash // outpoint -> txid (conflict index)
	maxSize  int
	nextSeq  uint64
	policy   *Policy
	utxos    utxo.Set
	resolver tx.Resolver
}

// New creates a mempool that checks spends against utxos and resolves
// spent transactions through resolver.
func New(utxos utxo.Set, resolver tx.Resolver, maxSize int) *Pool {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &Pool{
		txs:      make(map[types.Hash]*entry),
		spends:   make(map[types.Outpoint]types.Hash),
		maxSize:  maxSize,
		policy:   DefaultPolicy(),
		utxos:    utxos,
		resolver: resolver,
	}
}

// SetPolicy replaces the acceptance policy.
func (p *Pool) SetPolicy(policy *Policy) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.policy = policy
}

// Add validates and adds a transaction to the mempool. Rejects duplicates,
// double-spend conflicts and anything the ledger would not accept.
func (p *Pool) Add(transaction *tx.Transaction) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	id := transaction.ID

	// Reject duplicates.
	if _, exists := p.txs[id]; exists {
		return fmt.Errorf("%w: %s", ErrAlreadyExists, id)
	}

	if p.policy != nil {
		if err := p.policy.Check(transaction); err != nil {
			return fmt.Errorf("%w: %w", ErrValidation, err)
		}
	}

	// Check for double-spend conflicts.
	if !transaction.IsCoinbase() {
		for _, in := range transaction.Inputs {
			if other, exists := p.spends[in.PrevOut]; exists {
				return fmt.Errorf("%w: input %s already spent by %s", ErrConflict, in.PrevOut, other)
			}
		}
	}

	if err := transaction.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}
	ok, err := transaction.Verify(p.resolver)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}
	if !ok {
		return fmt.Errorf("%w: bad signature on %s", ErrValidation, id)
	}
	if _, err := utxo.CheckSpend(p.utxos, transaction); err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}

	if len(p.txs) >= p.maxSize {
		return ErrPoolFull
	}

	p.txs[id] = &entry{tx: transaction, seq: p.nextSeq}
	p.nextSeq++
	if !transaction.IsCoinbase() {
		for _, in := range transaction.Inputs {
			p.spends[in.PrevOut] = id
		}
	}

	log.Mempool.Debug().Str("tx", id.String()).Int("pool_size", len(p.txs)).Msg("Transaction accepted")
	return nil
}

// Remove removes a transaction from the mempool by ID.
func (p *Pool) Remove(id types.Hash) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.removeLocked(id)
}

func (p *Pool) removeLocked(id types.Hash) {
	e, exists := p.txs[id]
	if !exists {
		return
	}
	// Clean up spend index.
	if !e.tx.IsCoinbase() {
		for _, in := range e.tx.Inputs {
			delete(p.spends, in.PrevOut)
		}
	}
	delete(p.txs, id)
}

// RemoveConfirmed removes transactions that have been recorded, along with
// any entries that spend the same outputs.
func (p *Pool) RemoveConfirmed(transactions []*tx.Transaction) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, t := range transactions {
		p.removeLocked(t.ID)
		if t.IsCoinbase() {
			continue
		}
		for _, in := range t.Inputs {
			if other, ok := p.spends[in.PrevOut]; ok {
				p.removeLocked(other)
			}
		}
	}
}

// Has checks if a transaction exists in the mempool.
func (p *Pool) Has(id types.Hash) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, exists := p.txs[id]
	return exists
}

// Get retrieves a transaction from the mempool, or nil.
func (p *Pool) Get(id types.Hash) *tx.Transaction {
	p.mu.RLock()
	defer p.mu.RUnlock()
	e, exists := p.txs[id]
	if !exists {
		return nil
	}
	return e.tx
}

// Count returns the number of transactions in the mempool.
func (p *Pool) Count() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.txs)
}

// Hashes returns the IDs of all transactions in the mempool, unordered.
func (p *Pool) Hashes() []types.Hash {
	p.mu.RLock()
	defer p.mu.RUnlock()
	hashes := make([]types.Hash, 0, len(p.txs))
	for h := range p.txs {
		hashes = append(hashes, h)
	}
	return hashes
}

// Pending returns the pooled transactions in arrival order.
func (p *Pool) Pending() []*tx.Transaction {
	p.mu.RLock()
	defer p.mu.RUnlock()

	entries := make([]*entry, 0, len(p.txs))
	for _, e := range p.txs {
		entries = append(entries, e)
	}
	slices.SortFunc(entries, func(a, b *entry) int {
		return cmp.Compare(a.seq, b.seq)
	})

	result := make([]*tx.Transaction, len(entries))
	for i, e := range entries {
		result[i] = e.tx
	}
	return result
}
