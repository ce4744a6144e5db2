package tx

import (
	"bytes"
	"encoding/json"
	"math"
	"testing"

	"github.com/Klingon-tech/klingnet-ledger/pkg/types"
)

func TestIsCoinbase(t *testing.T) {
	tests := []struct {
		name   string
		inputs []Input
		want   bool
	}{
		{"no inputs", nil, false},
		{"one input no pubkey", []Input{{}}, true},
		{"one input with data", []Input{{Signature: []byte("x")}}, true},
		{"one input with pubkey", []Input{{PubKey: []byte{0x02}}}, false},
		{"two inputs no pubkey", []Input{{}, {}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := &Transaction{Inputs: tt.inputs}
			if got := tx.IsCoinbase(); got != tt.want {
				t.Errorf("IsCoinbase() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCopy_Deep(t *testing.T) {
	orig := sampleTx()
	c := orig.Copy()
	c.Inputs[0].Signature[0] = 0x00
	c.Inputs[0].PubKey[0] = 0x00
	c.Outputs[0].Value = 1

	if orig.Inputs[0].Signature[0] != 0xaa || orig.Inputs[0].PubKey[0] != 0x02 || orig.Outputs[0].Value != 500 {
		t.Error("Copy shares memory with the original")
	}
}

func TestOutpoints(t *testing.T) {
	if ops := NewCoinbase(types.Address{0x01}, nil).Outpoints(); ops != nil {
		t.Errorf("coinbase outpoints = %v, want nil", ops)
	}
	tx := sampleTx()
	ops := tx.Outpoints()
	if len(ops) != 1 || ops[0] != tx.Inputs[0].PrevOut {
		t.Errorf("Outpoints() = %v", ops)
	}
}

func TestTotalOutputValue(t *testing.T) {
	tx := &Transaction{Outputs: []Output{{Value: 3}, {Value: 4}}}
	total, err := tx.TotalOutputValue()
	if err != nil || total != 7 {
		t.Errorf("TotalOutputValue() = %d, %v, want 7", total, err)
	}

	tx.Outputs = append(tx.Outputs, Output{Value: math.MaxUint64})
	if _, err := tx.TotalOutputValue(); err == nil {
		t.Error("expected overflow error")
	}
}

func TestTransaction_JSON(t *testing.T) {
	orig := sampleTx()
	data, err := json.Marshal(orig)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !bytes.Contains(data, []byte(`"signature":"aabb"`)) {
		t.Errorf("signature not hex encoded: %s", data)
	}

	var got Transaction
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !bytes.Equal(got.Serialize(), orig.Serialize()) {
		t.Error("JSON round trip changed the transaction")
	}
}

func TestInput_UnmarshalJSON_BadHex(t *testing.T) {
	var in Input
	if err := json.Unmarshal([]byte(`{"signature":"zz"}`), &in); err == nil {
		t.Error("expected error for bad signature hex")
	}
	if err := json.Unmarshal([]byte(`{"pubkey":"0"}`), &in); err == nil {
		t.Error("expected error for odd-length pubkey hex")
	}
}
