package chain

// State holds the ledger's running totals.
type State struct {
	Count  uint64 // Transactions recorded.
	Supply uint64 // Total value minted by reward transactions.
}

// IsEmpty returns true if no transaction has been recorded yet.
func (s *State) IsEmpty() bool {
	return s.Count == 0
}
