package tx

import (
	"errors"
	"fmt"

	"github.com/Klingon-tech/klingnet-ledger/pkg/crypto"
	"github.com/Klingon-tech/klingnet-ledger/pkg/types"
)

// Sign attaches a signature to every input of tx.
//
// For each input, in order, the prior transaction is resolved, the locking
// hash of the referenced output is fed into SigningDigest, and the digest is
// signed with signer. Signatures are attached only once every input has
// been signed; on error tx is left untouched. Reward transactions are not
// signed.
func (tx *Transaction) Sign(signer crypto.Signer, resolver Resolver) error {
	if tx.IsCoinbase() {
		return nil
	}

	sigs := make([][]byte, len(tx.Inputs))
	for i, in := range tx.Inputs {
		lock, err := priorLock(resolver, in.PrevOut)
		if err != nil {
			return fmt.Errorf("sign input %d: %w", i, err)
		}
		digest := SigningDigest(tx, i, lock)
		sig, err := signer.Sign(digest[:])
		if err != nil {
			return fmt.Errorf("sign input %d: %w", i, err)
		}
		sigs[i] = sig
	}

	for i := range tx.Inputs {
		tx.Inputs[i].Signature = sigs[i]
	}
	return nil
}

// priorLock resolves the output spent by op and returns its locking hash.
func priorLock(resolver Resolver, op types.Outpoint) (types.Address, error) {
	prev, err := resolver.FindTransaction(op.TxID)
	if errors.Is(err, ErrTxNotFound) || (err == nil && prev == nil) {
		return types.Address{}, fmt.Errorf("%w: %s", ErrMissingPriorTx, op.TxID)
	}
	if err != nil {
		return types.Address{}, fmt.Errorf("resolve %s: %w", op.TxID, err)
	}
	if int(op.Index) >= len(prev.Outputs) {
		return types.Address{}, fmt.Errorf("%w: %s has %d outputs", ErrOutputIndex, op, len(prev.Outputs))
	}
	return prev.Outputs[op.Index].LockingHash, nil
}
