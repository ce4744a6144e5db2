package crypto

import (
	"encoding/hex"
	"testing"

	"github.com/Klingon-tech/klingnet-ledger/pkg/types"
)

func hexToHash(t *testing.T, s string) types.Hash {
	t.Helper()
	h, err := types.HexToHash(s)
	if err != nil {
		t.Fatalf("bad hex: %v", err)
	}
	return h
}

func TestHash(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  string
	}{
		{"empty input", []byte{}, "af1349b9f5f9a1a6a0404dea36dcc9499bcb25c9adc112b7cc9a93cae41f3262"},
		{"hello", []byte("hello"), "ea8f163db38682925e4491c5e58d4bb3506ef8c14eb78a86e908c5624a67200f"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Hash(tt.input); got != hexToHash(t, tt.want) {
				t.Errorf("Hash(%q) = %x, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestDoubleHash(t *testing.T) {
	got := DoubleHash([]byte("hello"))
	want := hexToHash(t, "0f79bf7f41e10b873e0f24b701159b4951037967529d18dcacc9392a8fbf5163")
	if got != want {
		t.Errorf("DoubleHash(hello) = %x, want %x", got, want)
	}
}

func TestLockingHash(t *testing.T) {
	pub := []byte("a public key")
	full := Hash(pub)

	lock := LockingHash(pub)
	if hex.EncodeToString(lock[:]) != hex.EncodeToString(full[:types.AddressSize]) {
		t.Errorf("LockingHash = %x, want prefix of %x", lock, full)
	}
	if LockingHash(pub) != lock {
		t.Error("LockingHash is not deterministic")
	}
	if LockingHash([]byte("another key")) == lock {
		t.Error("different keys produced the same locking hash")
	}
}

func TestHashConcat(t *testing.T) {
	a := Hash([]byte("left"))
	b := Hash([]byte("right"))

	var buf [64]byte
	copy(buf[:32], a[:])
	copy(buf[32:], b[:])

	if got := HashConcat(a, b); got != Hash(buf[:]) {
		t.Errorf("HashConcat = %x, want hash of concatenation", got)
	}
	if HashConcat(a, b) == HashConcat(b, a) {
		t.Error("HashConcat should depend on order")
	}
}

func TestMerkleRoot(t *testing.T) {
	a := Hash([]byte("a"))
	b := Hash([]byte("b"))
	c := Hash([]byte("c"))

	if got := MerkleRoot(nil); !got.IsZero() {
		t.Errorf("MerkleRoot(nil) = %x, want zero", got)
	}
	if got := MerkleRoot([]types.Hash{a}); got != a {
		t.Errorf("MerkleRoot(single) = %x, want the leaf", got)
	}
	if got, want := MerkleRoot([]types.Hash{a, b}), HashConcat(a, b); got != want {
		t.Errorf("MerkleRoot(a,b) = %x, want %x", got, want)
	}

	odd := MerkleRoot([]types.Hash{a, b, c})
	want := HashConcat(HashConcat(a, b), HashConcat(c, c))
	if odd != want {
		t.Errorf("MerkleRoot(a,b,c) = %x, want %x", odd, want)
	}

	leaves := []types.Hash{a, b, c}
	MerkleRoot(leaves)
	if leaves[0] != a || leaves[2] != c || len(leaves) != 3 {
		t.Error("MerkleRoot mutated its input")
	}
}
