package tx

import "errors"

// Construction, signing and verification errors.
var (
	// ErrUnknownSender is returned when the key store has no key for the
	// sending address.
	ErrUnknownSender = errors.New("unknown sender")
	// ErrInsufficientFunds is returned when the spendable outputs of the
	// sender add up to less than the requested amount.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrMissingPriorTx is returned when an input references a transaction
	// the resolver cannot find. It signals inconsistent history and should
	// not be retried blindly.
	ErrMissingPriorTx = errors.New("previous transaction not found")
	// ErrTxNotFound is the error a Resolver returns for an unknown ID.
	ErrTxNotFound = errors.New("transaction not found")
	// ErrOutputIndex is returned when an input references an output index
	// beyond the prior transaction's outputs.
	ErrOutputIndex = errors.New("output index out of range")
	// ErrInvalidAmount is returned for a zero spend amount.
	ErrInvalidAmount = errors.New("amount must be positive")
)
