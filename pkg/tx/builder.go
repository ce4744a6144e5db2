package tx

import (
	"errors"
	"fmt"

	"github.com/Klingon-tech/klingnet-ledger/config"
	"github.com/Klingon-tech/klingnet-ledger/pkg/crypto"
	"github.com/Klingon-tech/klingnet-ledger/pkg/types"
)

// Builder constructs transactions incrementally.
type Builder struct {
	tx *Transaction
}

// NewBuilder creates a new transaction builder.
func NewBuilder() *Builder {
	return &Builder{tx: &Transaction{}}
}

// AddInput adds an unsigned input spending prevOut on behalf of pubKey.
func (b *Builder) AddInput(prevOut types.Outpoint, pubKey []byte) *Builder {
	b.tx.Inputs = append(b.tx.Inputs, Input{PrevOut: prevOut, PubKey: pubKey})
	return b
}

// AddOutput adds an output of value locked to lock.
func (b *Builder) AddOutput(value uint64, lock types.Address) *Builder {
	b.tx.Outputs = append(b.tx.Outputs, Output{Value: value, LockingHash: lock})
	return b
}

// Build computes the transaction ID and returns the transaction.
// Does NOT sign or validate.
func (b *Builder) Build() *Transaction {
	b.tx.SetID()
	return b.tx
}

// NewCoinbase creates a reward transaction paying config.BlockSubsidy to
// the locking hash to. data is stored in the reward input and makes the ID
// unique; it may be nil.
func NewCoinbase(to types.Address, data []byte) *Transaction {
	b := NewBuilder().AddOutput(config.BlockSubsidy, to)
	b.tx.Inputs = []Input{{Signature: cloneBytes(data)}}
	return b.Build()
}

// NewSpend builds and signs a transaction moving amount from the owner of
// from to the locking hash to.
//
// The sender's key comes from keys, its spendable outputs from index, and
// the transactions those outputs belong to from resolver. When the selected
// outputs exceed amount the difference is returned to the sender in a
// second output. No transaction is returned on error.
func NewSpend(from, to types.Address, amount uint64, keys KeyStore, index SpendableIndex, resolver Resolver) (*Transaction, error) {
	if amount == 0 {
		return nil, ErrInvalidAmount
	}

	signer, err := keys.Signer(from)
	if err != nil {
		if errors.Is(err, ErrUnknownSender) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrUnknownSender, from, err)
	}
	pubKey := signer.PublicKey()
	senderLock := crypto.LockingHash(pubKey)

	accumulated, outpoints, err := index.FindSpendable(senderLock, amount)
	if err != nil {
		return nil, fmt.Errorf("find spendable outputs: %w", err)
	}
	if accumulated < amount {
		return nil, fmt.Errorf("%w: have %d, need %d", ErrInsufficientFunds, accumulated, amount)
	}

	b := NewBuilder()
	for _, op := range outpoints {
		b.AddInput(op, pubKey)
	}
	b.AddOutput(amount, to)
	if accumulated > amount {
		b.AddOutput(accumulated-amount, senderLock)
	}
	transaction := b.Build()

	if err := transaction.Sign(signer, resolver); err != nil {
		return nil, err
	}
	return transaction, nil
}
