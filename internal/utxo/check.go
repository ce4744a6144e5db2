package utxo

import (
	"errors"
	"fmt"
	"math"

	"github.com/Klingon-tech/klingnet-ledger/pkg/crypto"
	"github.com/Klingon-tech/klingnet-ledger/pkg/tx"
)

// Spend check errors.
var (
	ErrMissingOutput     = errors.New("input spends unknown or spent output")
	ErrNotOwner          = errors.New("input public key does not own output")
	ErrInsufficientInput = errors.New("input value below output value")
	ErrInputOverflow     = errors.New("input values overflow")
)

// CheckSpend checks t against set: every input must spend an existing
// output locked to the hash of the input's public key, and the inputs must
// cover the outputs. It returns the total input value. Reward transactions
// spend nothing and return 0.
//
// Signatures are not checked here; see tx.Transaction.Verify.
func CheckSpend(set Set, t *tx.Transaction) (uint64, error) {
	if t.IsCoinbase() {
		return 0, nil
	}

	var inTotal uint64
	for i, in := range t.Inputs {
		u, err := set.Get(in.PrevOut)
		if err != nil {
			return 0, fmt.Errorf("input %d: %w: %s", i, ErrMissingOutput, in.PrevOut)
		}
		if crypto.LockingHash(in.PubKey) != u.LockingHash {
			return 0, fmt.Errorf("input %d: %w: %s", i, ErrNotOwner, in.PrevOut)
		}
		if inTotal > math.MaxUint64-u.Value {
			return 0, fmt.Errorf("input %d: %w", i, ErrInputOverflow)
		}
		inTotal += u.Value
	}

	outTotal, err := t.TotalOutputValue()
	if err != nil {
		return 0, err
	}
	if inTotal < outTotal {
		return 0, fmt.Errorf("%w: inputs %d, outputs %d", ErrInsufficientInput, inTotal, outTotal)
	}
	return inTotal, nil
}
