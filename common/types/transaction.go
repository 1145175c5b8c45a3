package types

import "time"

// Transaction represents a submitted on-chain transaction.
// Every write operation produces one; the caller polls status separately.
//
// Fields:
// - Hash: the transaction hash or signature.
// - SubmittedAt: the instant the transaction was handed to the chain RPC.
// - Status: the status at submission time, always TxPending.
type Transaction struct {
	Hash        string
	SubmittedAt time.Time
	Status      TxState
}

// NewPendingTransaction creates the transaction result for a freshly
// submitted transaction.
func NewPendingTransaction(hash string) *Transaction {
	return &Transaction{
		Hash:        hash,
		SubmittedAt: time.Now().UTC(),
		Status:      TxPending,
	}
}

// TxState represents the lifecycle state of a submitted transaction.
type TxState string

const (
	// TxPending is the state of a transaction not yet included in a block.
	TxPending TxState = "PENDING"
	// TxConfirmed is the state of a successfully executed transaction. Terminal.
	TxConfirmed TxState = "CONFIRMED"
	// TxFailed is the state of a reverted or rejected transaction. Terminal.
	TxFailed TxState = "FAILED"
	// TxUnknown is the state of a transaction the chain cannot resolve.
	TxUnknown TxState = "UNKNOWN"
)

// TransactionStatus is the current observed status of a transaction.
// Once Confirmed or Failed the status is terminal and never changes.
//
// Fields:
// - State: the lifecycle state.
// - BlockNumber: the block the transaction was included in; Confirmed only.
// - GasUsed: the effective gas used; Confirmed only.
// - Reason: a short failure description; Failed only.
type TransactionStatus struct {
	State       TxState
	BlockNumber uint64
	GasUsed     uint64
	Reason      string
}

// Terminal reports whether the status can no longer change.
func (s TransactionStatus) Terminal() bool {
	return s.State == TxConfirmed || s.State == TxFailed
}
