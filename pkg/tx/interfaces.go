package tx

import (
	"github.com/Klingon-tech/klingnet-ledger/pkg/crypto"
	"github.com/Klingon-tech/klingnet-ledger/pkg/types"
)

// Resolver looks up previously recorded transactions by ID.
// It returns an error wrapping ErrTxNotFound when id is unknown.
type Resolver interface {
	FindTransaction(id types.Hash) (*Transaction, error)
}

// SpendableIndex finds unspent outputs locked to a locking hash.
//
// FindSpendable accumulates outputs until their total reaches amount and
// returns the total together with the outpoints it picked. The total may be
// below amount when not enough value is available; that is not an error.
type SpendableIndex interface {
	FindSpendable(lock types.Address, amount uint64) (uint64, []types.Outpoint, error)
}

// KeyStore returns the signing key for an address.
// It returns an error wrapping ErrUnknownSender when addr is unknown.
type KeyStore interface {
	Signer(addr types.Address) (crypto.Signer, error)
}

// ResolverFunc adapts a plain function to the Resolver interface.
type ResolverFunc func(id types.Hash) (*Transaction, error)

// FindTransaction calls f(id).
func (f ResolverFunc) FindTransaction(id types.Hash) (*Transaction, error) {
	return f(id)
}
