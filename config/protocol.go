package config

// Coin is the number of base units in one coin. Amounts are whole units.
const Coin = 1

// Protocol rules. Every ledger must agree on these.
const (
	BlockSubsidy = 10 * Coin // Value minted by a reward transaction
	MaxTxInputs  = 2500      // Max inputs per transaction
	MaxTxOutputs = 2500      // Max outputs per transaction
)
