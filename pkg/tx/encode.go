package tx

import (
	"encoding/binary"

	"github.com/Klingon-tech/klingnet-ledger/pkg/crypto"
	"github.com/Klingon-tech/klingnet-ledger/pkg/types"
)

// Serialize returns the canonical byte encoding of the transaction.
// Format (little-endian):
//
//	id(32) | input_count(4) |
//	  [prev_txid(32) | prev_index(4) | sig_len(4) | sig | pubkey_len(4) | pubkey]... |
//	output_count(4) | [value(8) | locking_hash(20)]...
//
// Identical field values always produce identical bytes.
func (tx *Transaction) Serialize() []byte {
	size := types.HashSize + 4 + 4
	for _, in := range tx.Inputs {
		size += types.HashSize + 4 + 4 + len(in.Signature) + 4 + len(in.PubKey)
	}
	size += len(tx.Outputs) * (8 + types.AddressSize)

	buf := make([]byte, 0, size)
	buf = append(buf, tx.ID[:]...)

	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(tx.Inputs)))
	for _, in := range tx.Inputs {
		buf = append(buf, in.PrevOut.TxID[:]...)
		buf = binary.LittleEndian.AppendUint32(buf, in.PrevOut.Index)
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(in.Signature)))
		buf = append(buf, in.Signature...)
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(in.PubKey)))
		buf = append(buf, in.PubKey...)
	}

	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(tx.Outputs)))
	for _, out := range tx.Outputs {
		buf = binary.LittleEndian.AppendUint64(buf, out.Value)
		buf = append(buf, out.LockingHash[:]...)
	}
	return buf
}

// ComputeID returns the transaction identifier without modifying tx.
//
// The pre-image is the canonical encoding with the ID field cleared and, for
// non-reward transactions, every signature cleared. The identifier is
// therefore never part of its own pre-image and does not change when the
// inputs are signed. Reward input data is kept so that distinct mints to
// the same recipient get distinct IDs.
func (tx *Transaction) ComputeID() types.Hash {
	c := tx.Copy()
	c.ID = types.Hash{}
	if !c.IsCoinbase() {
		for i := range c.Inputs {
			c.Inputs[i].Signature = nil
		}
	}
	return crypto.Hash(c.Serialize())
}

// SetID overwrites tx.ID with ComputeID().
func (tx *Transaction) SetID() {
	tx.ID = tx.ComputeID()
}

// SigningDigest derives the digest input index must sign.
//
// It works on a snapshot of tx in which every signature and every public
// key is cleared and the ID is zeroed, then places lock (the locking hash
// of the output being spent) in the public key slot of input index only.
// Each input therefore commits to all outputs, all outpoints, and to its
// own ownership claim alone, so a signature cannot be replayed on another
// input. tx is not modified. index must be in range.
func SigningDigest(tx *Transaction, index int, lock types.Address) types.Hash {
	snap := &Transaction{
		Inputs:  make([]Input, len(tx.Inputs)),
		Outputs: make([]Output, len(tx.Outputs)),
	}
	for i, in := range tx.Inputs {
		snap.Inputs[i] = Input{PrevOut: in.PrevOut}
	}
	copy(snap.Outputs, tx.Outputs)
	snap.Inputs[index].PubKey = lock.Bytes()
	return crypto.Hash(snap.Serialize())
}
