package wallet

import (
	"bytes"
	"testing"

	"github.com/Klingon-tech/klingnet-ledger/pkg/crypto"
	"github.com/tyler-smith/go-bip32"
)

// testSeed returns the seed of the BIP-39 "abandon ... about" vector with
// passphrase "TREZOR".
func testSeed(t *testing.T) []byte {
	t.Helper()
	seed, err := SeedFromMnemonic(trezorMnemonic, "TREZOR")
	if err != nil {
		t.Fatalf("SeedFromMnemonic() error: %v", err)
	}
	return seed
}

func testMaster(t *testing.T) *HDKey {
	t.Helper()
	master, err := NewMasterKey(testSeed(t))
	if err != nil {
		t.Fatalf("NewMasterKey() error: %v", err)
	}
	return master
}

func TestNewMasterKey(t *testing.T) {
	master := testMaster(t)
	if !master.IsPrivate() {
		t.Error("master key should be private")
	}
	if len(master.PublicKeyBytes()) != crypto.PublicKeySize {
		t.Errorf("pubkey len = %d, want %d", len(master.PublicKeyBytes()), crypto.PublicKeySize)
	}
	if _, err := NewMasterKey(make([]byte, 32)); err == nil {
		t.Error("32-byte seed should be rejected")
	}
}

func TestDeriveAccount(t *testing.T) {
	master := testMaster(t)

	a0, err := master.DeriveAccount(0)
	if err != nil {
		t.Fatalf("DeriveAccount(0) error: %v", err)
	}
	again, _ := testMaster(t).DeriveAccount(0)
	if a0.LockingHash() != again.LockingHash() {
		t.Error("derivation is not deterministic")
	}
	a1, _ := master.DeriveAccount(1)
	if a0.LockingHash() == a1.LockingHash() {
		t.Error("accounts 0 and 1 share a locking hash")
	}

	// Same path walked by hand.
	manual := master
	for _, idx := range []uint32{PurposeBIP44, CoinType, bip32.FirstHardenedChild, ChangeExternal, 0} {
		manual, err = manual.DeriveChild(idx)
		if err != nil {
			t.Fatalf("DeriveChild(%d) error: %v", idx, err)
		}
	}
	if !bytes.Equal(manual.PublicKeyBytes(), a0.PublicKeyBytes()) {
		t.Error("DeriveAccount(0) differs from m/44'/8888'/0'/0/0")
	}
}

func TestHDKey_PrivateKey(t *testing.T) {
	hd, err := testMaster(t).DeriveAccount(0)
	if err != nil {
		t.Fatalf("DeriveAccount() error: %v", err)
	}
	key, err := hd.PrivateKey()
	if err != nil {
		t.Fatalf("PrivateKey() error: %v", err)
	}
	if !bytes.Equal(key.PublicKey(), hd.PublicKeyBytes()) {
		t.Error("signer public key differs from HD public key")
	}
	if key.LockingHash() != hd.LockingHash() {
		t.Error("signer locking hash differs from HD locking hash")
	}

	digest := crypto.Hash([]byte("msg"))
	sig, err := key.Sign(digest[:])
	if err != nil {
		t.Fatalf("Sign() error: %v", err)
	}
	if !crypto.VerifySignature(digest[:], sig, hd.PublicKeyBytes()) {
		t.Error("signature from derived key does not verify")
	}
}

func TestHDKey_Neuter(t *testing.T) {
	hd, _ := testMaster(t).DeriveAccount(0)
	pub := hd.Neuter()
	if pub.IsPrivate() {
		t.Error("neutered key should be public-only")
	}
	if pub.LockingHash() != hd.LockingHash() {
		t.Error("neutered key has a different locking hash")
	}
	if _, err := pub.PrivateKey(); err == nil {
		t.Error("PrivateKey() on public-only key should fail")
	}
}
