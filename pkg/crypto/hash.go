// Package crypto provides the hashing and signature primitives of the ledger.
package crypto

import (
	"github.com/Klingon-tech/klingnet-ledger/pkg/types"
	"github.com/zeebo/blake3"
)

// Hash computes a BLAKE3-256 hash of the input data.
func Hash(data []byte) types.Hash {
	return blake3.Sum256(data)
}

// DoubleHash computes Hash(Hash(data)).
func DoubleHash(data []byte) types.Hash {
	first := Hash(data)
	return Hash(first[:])
}

// LockingHash derives the locking hash for a public key.
// LockingHash = BLAKE3(pubkey)[:20]. An output locked to this hash can be
// spent only by the holder of the matching private key.
func LockingHash(pubKey []byte) types.Address {
	h := Hash(pubKey)
	var lock types.Address
	copy(lock[:], h[:types.AddressSize])
	return lock
}

// HashConcat hashes the concatenation of two hashes.
func HashConcat(a, b types.Hash) types.Hash {
	var buf [2 * types.HashSize]byte
	copy(buf[:types.HashSize], a[:])
	copy(buf[types.HashSize:], b[:])
	return Hash(buf[:])
}
