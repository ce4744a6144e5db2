package wallet

import (
	"fmt"

	"github.com/Klingon-tech/klingnet-ledger/pkg/crypto"
	"github.com/Klingon-tech/klingnet-ledger/pkg/types"
	"github.com/tyler-smith/go-bip32"
)

// BIP-44 path: m/44'/CoinType'/account'/change/index
const (
	PurposeBIP44 = bip32.FirstHardenedChild + 44
	CoinType     = bip32.FirstHardenedChild + 8888

	// ChangeExternal is the receiving chain; the ledger sends change back
	// to the sender so no internal chain is derived.
	ChangeExternal = 0
)

// HDKey is a BIP-32 extended key.
type HDKey struct {
	key *bip32.Key
}

// NewMasterKey creates a master HD key from a 64-byte seed.
func NewMasterKey(seed []byte) (*HDKey, error) {
	if len(seed) != SeedSize {
		return nil, fmt.Errorf("seed must be %d bytes, got %d", SeedSize, len(seed))
	}
	master, err := bip32.NewMasterKey(seed)
	if err != nil {
		return nil, fmt.Errorf("create master key: %w", err)
	}
	return &HDKey{key: master}, nil
}

// DeriveChild derives a child key. Add bip32.FirstHardenedChild to index
// for hardened derivation.
func (k *HDKey) DeriveChild(index uint32) (*HDKey, error) {
	child, err := k.key.NewChildKey(index)
	if err != nil {
		return nil, fmt.Errorf("derive child %d: %w", index, err)
	}
	return &HDKey{key: child}, nil
}

// DeriveAccount derives the key at m/44'/8888'/0'/0/index.
func (k *HDKey) DeriveAccount(index uint32) (*HDKey, error) {
	current := k
	for _, idx := range []uint32{PurposeBIP44, CoinType, bip32.FirstHardenedChild, ChangeExternal, index} {
		child, err := current.DeriveChild(idx)
		if err != nil {
			return nil, err
		}
		current = child
	}
	return current, nil
}

// IsPrivate reports whether the key carries private material.
func (k *HDKey) IsPrivate() bool {
	return k.key.IsPrivate
}

// PublicKeyBytes returns the compressed 33-byte public key.
func (k *HDKey) PublicKeyBytes() []byte {
	return k.key.PublicKey().Key
}

// LockingHash returns the hash outputs paying this key are locked to.
func (k *HDKey) LockingHash() types.Address {
	return crypto.LockingHash(k.PublicKeyBytes())
}

// PrivateKey returns the signing key. It fails for public-only keys.
func (k *HDKey) PrivateKey() (*crypto.PrivateKey, error) {
	if !k.key.IsPrivate {
		return nil, fmt.Errorf("cannot create signer from public key")
	}
	// bip32 stores private keys as 33 bytes with a leading zero.
	raw := k.key.Key
	if len(raw) == 33 && raw[0] == 0 {
		raw = raw[1:]
	}
	return crypto.PrivateKeyFromBytes(raw)
}

// Neuter returns a public-key-only copy.
func (k *HDKey) Neuter() *HDKey {
	return &HDKey{key: k.key.PublicKey()}
}
