package tx

import (
	"fmt"
	"testing"

	"github.com/Klingon-tech/klingnet-ledger/pkg/crypto"
	"github.com/Klingon-tech/klingnet-ledger/pkg/types"
)

// memResolver is a map-backed Resolver.
type memResolver map[types.Hash]*Transaction

func (r memResolver) FindTransaction(id types.Hash) (*Transaction, error) {
	t, ok := r[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTxNotFound, id)
	}
	return t, nil
}

func (r memResolver) add(t *Transaction) {
	r[t.ID] = t
}

// memIndex hands back every output of the recorded transactions that is
// locked to the requested hash, in recording order.
type memIndex struct {
	txs []*Transaction
}

func (ix *memIndex) FindSpendable(lock types.Address, _ uint64) (uint64, []types.Outpoint, error) {
	var total uint64
	var ops []types.Outpoint
	for _, t := range ix.txs {
		for i, out := range t.Outputs {
			if out.LockingHash == lock {
				total += out.Value
				ops = append(ops, types.Outpoint{TxID: t.ID, Index: uint32(i)})
			}
		}
	}
	return total, ops, nil
}

// memKeys is a map-backed KeyStore keyed by locking hash.
type memKeys map[types.Address]*crypto.PrivateKey

func (k memKeys) Signer(addr types.Address) (crypto.Signer, error) {
	key, ok := k[addr]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSender, addr)
	}
	return key, nil
}

func mustKey(t *testing.T) *crypto.PrivateKey {
	t.Helper()
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	return key
}

// fundingTx records an unsigned transaction paying values to lock.
func fundingTx(lock types.Address, values ...uint64) *Transaction {
	b := NewBuilder().AddInput(types.Outpoint{TxID: types.Hash{0xfe}, Index: 0}, []byte{0x02})
	for _, v := range values {
		b.AddOutput(v, lock)
	}
	return b.Build()
}

// fixture wires a sender funded with values.
type fixture struct {
	sender   *crypto.PrivateKey
	keys     memKeys
	index    *memIndex
	resolver memResolver
}

func newFixture(t *testing.T, values ...uint64) *fixture {
	t.Helper()
	sender := mustKey(t)
	f := &fixture{
		sender:   sender,
		keys:     memKeys{sender.LockingHash(): sender},
		index:    &memIndex{},
		resolver: memResolver{},
	}
	if len(values) > 0 {
		fund := fundingTx(sender.LockingHash(), values...)
		f.index.txs = append(f.index.txs, fund)
		f.resolver.add(fund)
	}
	return f
}

func (f *fixture) spend(t *testing.T, to types.Address, amount uint64) *Transaction {
	t.Helper()
	spend, err := NewSpend(f.sender.LockingHash(), to, amount, f.keys, f.index, f.resolver)
	if err != nil {
		t.Fatalf("NewSpend: %v", err)
	}
	return spend
}
