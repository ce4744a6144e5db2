package wallet

import "github.com/Klingon-tech/klingnet-ledger/pkg/types"

// AccountEntry is the keystore metadata for one derived address.
type AccountEntry struct {
	Index   uint32 `json:"index"`
	Name    string `json:"name"`
	Address string `json:"address"` // hex locking hash
}

// Account is a derived address held by an open wallet.
type Account struct {
	Index uint32
	Name  string
	Lock  types.Address
}
