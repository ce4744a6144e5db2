package wallet

import (
	"errors"
	"testing"

	"github.com/Klingon-tech/klingnet-ledger/internal/chain"
	"github.com/Klingon-tech/klingnet-ledger/internal/storage"
	"github.com/Klingon-tech/klingnet-ledger/pkg/crypto"
	"github.com/Klingon-tech/klingnet-ledger/pkg/tx"
	"github.com/Klingon-tech/klingnet-ledger/pkg/types"
)

func TestWallets_Signer(t *testing.T) {
	w := NewWallets()
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey() error: %v", err)
	}
	lock := w.Add("a", key)
	if lock != key.LockingHash() {
		t.Fatal("Add() returned the wrong locking hash")
	}

	signer, err := w.Signer(lock)
	if err != nil {
		t.Fatalf("Signer() error: %v", err)
	}
	if crypto.LockingHash(signer.PublicKey()) != lock {
		t.Error("signer does not own lock")
	}

	if _, err := w.Signer(types.Address{0x01}); !errors.Is(err, tx.ErrUnknownSender) {
		t.Errorf("unknown lock: error = %v, want tx.ErrUnknownSender", err)
	}

	w.Add("a-again", key)
	if n := len(w.Accounts()); n != 1 {
		t.Errorf("accounts after re-add = %d, want 1", n)
	}

	w.Close()
	if _, err := w.Signer(lock); !errors.Is(err, tx.ErrUnknownSender) {
		t.Errorf("after Close: error = %v, want tx.ErrUnknownSender", err)
	}
}

func TestOpen(t *testing.T) {
	ks := testKeystore(t)
	if err := ks.Create("main", testSeed(t), []byte("pw"), fastParams()); err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	w, err := Open(ks, "main", []byte("pw"), 3)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	accts := w.Accounts()
	if len(accts) != 3 {
		t.Fatalf("accounts = %d, want 3", len(accts))
	}
	hd, _ := testMaster(t).DeriveAccount(2)
	if accts[2].Lock != hd.LockingHash() {
		t.Error("account 2 does not match m/44'/8888'/0'/0/2")
	}

	recorded, _ := ks.Accounts("main")
	if len(recorded) != 3 || recorded[1].Address != accts[1].Lock.Hex() {
		t.Errorf("recorded accounts = %+v", recorded)
	}

	// Reopening with fewer accounts keeps the metadata.
	if _, err := Open(ks, "main", []byte("pw"), 1); err != nil {
		t.Fatalf("reopen error: %v", err)
	}
	recorded, _ = ks.Accounts("main")
	if len(recorded) != 3 {
		t.Errorf("recorded accounts after reopen = %d, want 3", len(recorded))
	}
}

func TestOpen_Errors(t *testing.T) {
	ks := testKeystore(t)
	ks.Create("main", testSeed(t), []byte("pw"), fastParams())

	if _, err := Open(ks, "main", []byte("wrong"), 1); !errors.Is(err, ErrDecrypt) {
		t.Errorf("wrong password: error = %v, want ErrDecrypt", err)
	}
	if _, err := Open(ks, "nope", []byte("pw"), 1); !errors.Is(err, ErrWalletNotFound) {
		t.Errorf("missing wallet: error = %v, want ErrWalletNotFound", err)
	}
	if _, err := Open(ks, "main", []byte("pw"), 0); err == nil {
		t.Error("zero accounts should fail")
	}
}

func TestWallets_SendThroughLedger(t *testing.T) {
	ks := testKeystore(t)
	ks.Create("main", testSeed(t), []byte("pw"), fastParams())
	w, err := Open(ks, "main", []byte("pw"), 2)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	accts := w.Accounts()
	from, to := accts[0].Lock, accts[1].Lock

	l, err := chain.New(storage.NewMemory())
	if err != nil {
		t.Fatalf("chain.New() error: %v", err)
	}
	if _, err := l.Mint(from, nil); err != nil {
		t.Fatalf("Mint() error: %v", err)
	}
	if _, err := l.Send(w, from, to, 3); err != nil {
		t.Fatalf("Send() error: %v", err)
	}
	if got, _ := l.Balance(to); got != 3 {
		t.Errorf("recipient balance = %d, want 3", got)
	}
	if got, _ := l.Balance(from); got != 7 {
		t.Errorf("sender balance = %d, want 7", got)
	}
}
