// Package tx defines the ledger transaction and its construction, canonical
// hashing, signing and verification.
package tx

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"

	"github.com/Klingon-tech/klingnet-ledger/pkg/types"
)

// Transaction is a value transfer that consumes prior outputs and creates
// new ones. It is built once, has its inputs signed in place, and is
// treated as read-only afterwards.
type Transaction struct {
	ID      types.Hash `json:"id"`
	Inputs  []Input    `json:"inputs"`
	Outputs []Output   `json:"outputs"`
}

// Input spends the output at PrevOut.Index of transaction PrevOut.TxID.
// A reward input has a zero PrevOut and an empty PubKey; its Signature slot
// may hold opaque coinbase data.
type Input struct {
	PrevOut   types.Outpoint `json:"prevout"`
	Signature []byte         `json:"signature"`
	PubKey    []byte         `json:"pubkey"`
}

// inputJSON is the JSON representation of Input with hex-encoded byte fields.
type inputJSON struct {
	PrevOut   types.Outpoint `json:"prevout"`
	Signature *string        `json:"signature"`
	PubKey    *string        `json:"pubkey"`
}

// MarshalJSON encodes the input with hex-encoded signature and pubkey.
func (in Input) MarshalJSON() ([]byte, error) {
	j := inputJSON{PrevOut: in.PrevOut}
	if in.Signature != nil {
		s := hex.EncodeToString(in.Signature)
		j.Signature = &s
	}
	if in.PubKey != nil {
		p := hex.EncodeToString(in.PubKey)
		j.PubKey = &p
	}
	return json.Marshal(j)
}

// UnmarshalJSON decodes an input with hex-encoded signature and pubkey.
func (in *Input) UnmarshalJSON(data []byte) error {
	var j inputJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	in.PrevOut = j.PrevOut
	in.Signature, in.PubKey = nil, nil
	if j.Signature != nil {
		b, err := hex.DecodeString(*j.Signature)
		if err != nil {
			return fmt.Errorf("signature: %w", err)
		}
		in.Signature = b
	}
	if j.PubKey != nil {
		b, err := hex.DecodeString(*j.PubKey)
		if err != nil {
			return fmt.Errorf("pubkey: %w", err)
		}
		in.PubKey = b
	}
	return nil
}

// Output locks Value to whoever can prove ownership of the public key
// whose locking hash is LockingHash.
type Output struct {
	Value       uint64        `json:"value"`
	LockingHash types.Address `json:"locking_hash"`
}

// IsCoinbase reports whether tx is a reward transaction: exactly one input
// and that input carries no public key.
func (tx *Transaction) IsCoinbase() bool {
	return len(tx.Inputs) == 1 && len(tx.Inputs[0].PubKey) == 0
}

// Copy returns a deep copy of the transaction.
func (tx *Transaction) Copy() *Transaction {
	c := &Transaction{
		ID:      tx.ID,
		Inputs:  make([]Input, len(tx.Inputs)),
		Outputs: make([]Output, len(tx.Outputs)),
	}
	for i, in := range tx.Inputs {
		c.Inputs[i] = Input{
			PrevOut:   in.PrevOut,
			Signature: cloneBytes(in.Signature),
			PubKey:    cloneBytes(in.PubKey),
		}
	}
	copy(c.Outputs, tx.Outputs)
	return c
}

// Outpoints returns the outpoints spent by the transaction's inputs.
// Reward transactions spend nothing.
func (tx *Transaction) Outpoints() []types.Outpoint {
	if tx.IsCoinbase() {
		return nil
	}
	ops := make([]types.Outpoint, len(tx.Inputs))
	for i, in := range tx.Inputs {
		ops[i] = in.PrevOut
	}
	return ops
}

// TotalOutputValue returns the sum of all output values.
// Returns an error if the sum overflows uint64.
func (tx *Transaction) TotalOutputValue() (uint64, error) {
	var total uint64
	for _, out := range tx.Outputs {
		if total > math.MaxUint64-out.Value {
			return 0, fmt.Errorf("output value overflow")
		}
		total += out.Value
	}
	return total, nil
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	c := make([]byte, len(b))
	copy(c, b)
	return c
}
