package ledger

import (
	"context"

	"github.com/shopspring/decimal"

	"tesoro/internal/domain/fund"
)

// Tx is the set of storage operations available inside one posting
// transaction. Implementations must guarantee that LockFund acquires an
// exclusive lock on the fund row that is held until the transaction commits
// or rolls back, and that a repeated LockFund within the same transaction
// observes the transaction's own balance writes.
type Tx interface {
	// LockFund loads a fund under an exclusive row lock.
	// Returns fund.ErrFundNotFound for unknown ids.
	LockFund(ctx context.Context, fundID int64) (*fund.Fund, error)

	// FundExists reports whether a fund row exists, without locking it.
	// Fund rows are never deleted, so a positive answer is stable for the
	// rest of the transaction.
	FundExists(ctx context.Context, fundID int64) (bool, error)

	// InsertEntry appends an immutable entry carrying the computed
	// post-entry running balance.
	InsertEntry(ctx context.Context, params EntryParams, balance decimal.Decimal) (*Entry, error)

	// UpdateFundBalance writes the new balance snapshot onto the fund row.
	UpdateFundBalance(ctx context.Context, fundID int64, balance decimal.Decimal) error

	// InsertMovement records one side of a transfer for traceability.
	InsertMovement(ctx context.Context, params MovementParams) error
}

// Store is the ledger's storage boundary. InTx runs fn inside one database
// transaction: fn returning an error rolls everything back, nil commits.
type Store interface {
	InTx(ctx context.Context, fn func(tx Tx) error) error

	// GetEntry retrieves a single entry by ID.
	// Returns ErrEntryNotFound for unknown ids.
	GetEntry(ctx context.Context, id string) (*Entry, error)

	// EntriesByFund lists a fund's entries in posting order, newest first.
	EntriesByFund(ctx context.Context, fundID int64, limit, offset int) ([]*Entry, error)
}
