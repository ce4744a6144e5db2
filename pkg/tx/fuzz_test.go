package tx

import (
	"encoding/json"
	"testing"

	"github.com/Klingon-tech/klingnet-ledger/pkg/types"
)

// FuzzTxUnmarshal tests that arbitrary JSON input does not panic
// when unmarshaled into a Transaction and run through the pure helpers.
func FuzzTxUnmarshal(f *testing.F) {
	f.Add([]byte(`{"inputs":[{"prevout":{"txid":"0000000000000000000000000000000000000000000000000000000000000000","index":0}}],"outputs":[{"value":10,"locking_hash":"0000000000000000000000000000000000000000"}]}`))
	f.Add([]byte(`{}`))
	f.Add([]byte(`null`))
	f.Add([]byte(`{"inputs":null,"outputs":null}`))
	f.Add([]byte(`{"inputs":[{"prevout":{"txid":"","index":7},"pubkey":"02","signature":"ff"}],"outputs":[{"value":0}]}`))

	resolver := ResolverFunc(func(_ types.Hash) (*Transaction, error) { return nil, ErrTxNotFound })

	f.Fuzz(func(t *testing.T, data []byte) {
		var tx Transaction
		if err := json.Unmarshal(data, &tx); err != nil {
			return
		}
		// If unmarshal succeeded, these must not panic.
		tx.Serialize()
		tx.ComputeID()
		_ = tx.Validate()
		_, _ = tx.Verify(resolver) // May fail but must not panic.
		for i := range tx.Inputs {
			SigningDigest(&tx, i, types.Address{})
		}
	})
}
