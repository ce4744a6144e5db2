package wallet

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
)

// fastParams returns low-cost Argon2 params for fast tests.
func fastParams() EncryptionParams {
	return EncryptionParams{
		Memory:      64, // 64 KiB (minimal)
		Iterations:  1,
		Parallelism: 1,
	}
}

func TestEncryptDecrypt(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"short", []byte("secret wallet data")},
		{"empty", []byte{}},
		{"seed", bytes.Repeat([]byte{0xab}, SeedSize)},
		{"large", bytes.Repeat([]byte{0x01, 0x02, 0x03}, 4096)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sealed, err := Encrypt(tt.data, []byte("pw"), fastParams())
			if err != nil {
				t.Fatalf("Encrypt() error: %v", err)
			}
			got, err := Decrypt(sealed, []byte("pw"))
			if err != nil {
				t.Fatalf("Decrypt() error: %v", err)
			}
			if !bytes.Equal(got, tt.data) {
				t.Errorf("Decrypt() = %x, want %x", got, tt.data)
			}
		})
	}
}

func TestDecrypt_Failures(t *testing.T) {
	sealed, err := Encrypt([]byte("secret"), []byte("right"), fastParams())
	if err != nil {
		t.Fatalf("Encrypt() error: %v", err)
	}

	if _, err := Decrypt(sealed, []byte("wrong")); !errors.Is(err, ErrDecrypt) {
		t.Errorf("wrong password: error = %v, want ErrDecrypt", err)
	}

	corrupted := bytes.Clone(sealed)
	corrupted[len(corrupted)-1] ^= 0xff
	if _, err := Decrypt(corrupted, []byte("right")); !errors.Is(err, ErrDecrypt) {
		t.Errorf("corrupted: error = %v, want ErrDecrypt", err)
	}

	if _, err := Decrypt(sealed[:minSealed-1], []byte("right")); err == nil {
		t.Error("truncated data should fail")
	}
}

func TestEncrypt_Header(t *testing.T) {
	params := fastParams()
	a, _ := Encrypt([]byte("x"), []byte("pw"), params)
	b, _ := Encrypt([]byte("x"), []byte("pw"), params)
	if bytes.Equal(a, b) {
		t.Error("salt and nonce should differ between calls")
	}
	if got := binary.LittleEndian.Uint32(a[SaltSize:]); got != params.Memory {
		t.Errorf("memory = %d, want %d", got, params.Memory)
	}
	if got := binary.LittleEndian.Uint32(a[SaltSize+4:]); got != params.Iterations {
		t.Errorf("iterations = %d, want %d", got, params.Iterations)
	}
	if got := a[SaltSize+8]; got != params.Parallelism {
		t.Errorf("parallelism = %d, want %d", got, params.Parallelism)
	}
	if len(a) != minSealed+1 {
		t.Errorf("len = %d, want %d", len(a), minSealed+1)
	}
}

func TestDefaultParams(t *testing.T) {
	p := DefaultParams()
	if p.Memory < 64*1024 || p.Iterations == 0 || p.Parallelism == 0 {
		t.Errorf("DefaultParams() = %+v", p)
	}
}
