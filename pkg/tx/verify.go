package tx

import (
	"fmt"

	"github.com/Klingon-tech/klingnet-ledger/pkg/crypto"
)

// Verify checks that every input of tx is signed by the key it claims.
//
// Reward transactions verify unconditionally. For other transactions each
// input's digest is rebuilt exactly as Sign builds it and checked against
// the input's PubKey; the first bad signature returns false. A bad
// signature is not an error: errors are reserved for history that cannot be
// resolved (ErrMissingPriorTx, ErrOutputIndex, resolver failures).
//
// Verify does not compare PubKey against the spent output's locking hash;
// ownership is enforced where outputs are consumed (chain.Ledger).
func (tx *Transaction) Verify(resolver Resolver) (bool, error) {
	if tx.IsCoinbase() {
		return true, nil
	}

	for i, in := range tx.Inputs {
		lock, err := priorLock(resolver, in.PrevOut)
		if err != nil {
			return false, fmt.Errorf("verify input %d: %w", i, err)
		}
		digest := SigningDigest(tx, i, lock)
		if !crypto.VerifySignature(digest[:], in.Signature, in.PubKey) {
			return false, nil
		}
	}
	return true, nil
}
