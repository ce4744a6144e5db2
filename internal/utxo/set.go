// Package utxo manages the set of unspent transaction outputs.
package utxo

import "github.com/Klingon-tech/klingnet-ledger/pkg/types"

// UTXO represents an unspent transaction output.
type UTXO struct {
	Outpoint    types.Outpoint `json:"outpoint"`
	Value       uint64         `json:"value"`
	LockingHash types.Address  `json:"locking_hash"`
	Coinbase    bool           `json:"coinbase"`
}

// Set is the interface for UTXO storage.
type Set interface {
	Get(outpoint types.Outpoint) (*UTXO, error)
	Put(utxo *UTXO) error
	Delete(outpoint types.Outpoint) error
	Has(outpoint types.Outpoint) (bool, error)
}
