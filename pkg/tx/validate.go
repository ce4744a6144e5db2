package tx

import (
	"errors"
	"fmt"
	"math"

	"github.com/Klingon-tech/klingnet-ledger/config"
	"github.com/Klingon-tech/klingnet-ledger/pkg/types"
)

// Validation errors.
var (
	ErrNoInputs       = errors.New("transaction has no inputs")
	ErrNoOutputs      = errors.New("transaction has no outputs")
	ErrDuplicateInput = errors.New("duplicate input")
	ErrOutputOverflow = errors.New("output values overflow")
	ErrZeroOutput     = errors.New("output value is zero")
	ErrMissingPubKey  = errors.New("input missing public key")
	ErrMissingSig     = errors.New("input missing signature")
	ErrTooManyInputs  = errors.New("too many inputs")
	ErrTooManyOutputs = errors.New("too many outputs")
	ErrIDMismatch     = errors.New("transaction id mismatch")
)

// Validate checks transaction structure and basic rules.
// This does NOT check signatures or that the spent outputs exist.
func (tx *Transaction) Validate() error {
	if len(tx.Inputs) == 0 {
		return ErrNoInputs
	}
	if len(tx.Outputs) == 0 {
		return ErrNoOutputs
	}
	if len(tx.Inputs) > config.MaxTxInputs {
		return fmt.Errorf("%w: %d inputs, max %d", ErrTooManyInputs, len(tx.Inputs), config.MaxTxInputs)
	}
	if len(tx.Outputs) > config.MaxTxOutputs {
		return fmt.Errorf("%w: %d outputs, max %d", ErrTooManyOutputs, len(tx.Outputs), config.MaxTxOutputs)
	}
	if id := tx.ComputeID(); id != tx.ID {
		return fmt.Errorf("%w: have %s, computed %s", ErrIDMismatch, tx.ID, id)
	}

	if !tx.IsCoinbase() {
		seen := make(map[types.Outpoint]bool, len(tx.Inputs))
		for i, in := range tx.Inputs {
			if seen[in.PrevOut] {
				return fmt.Errorf("input %d: %w", i, ErrDuplicateInput)
			}
			seen[in.PrevOut] = true
			if len(in.PubKey) == 0 {
				return fmt.Errorf("input %d: %w", i, ErrMissingPubKey)
			}
			if len(in.Signature) == 0 {
				return fmt.Errorf("input %d: %w", i, ErrMissingSig)
			}
		}
	}

	var total uint64
	for i, out := range tx.Outputs {
		if out.Value == 0 {
			return fmt.Errorf("output %d: %w", i, ErrZeroOutput)
		}
		if total > math.MaxUint64-out.Value {
			return fmt.Errorf("output %d: %w", i, ErrOutputOverflow)
		}
		total += out.Value
	}
	return nil
}
