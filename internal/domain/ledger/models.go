package ledger

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Domain errors
var (
	ErrInvalidTransfer = errors.New("invalid transfer input")
	ErrInvalidEntry    = errors.New("invalid ledger entry")
	ErrEntryNotFound   = errors.New("ledger entry not found")
)

// InsufficientFundsError is returned when a guarded debit would drive a
// fund's balance negative. It is recoverable by the caller and never leaves
// partial postings behind.
type InsufficientFundsError struct {
	FundID   int64
	Current  decimal.Decimal
	Required decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: fund %d has %s, requires %s",
		e.FundID, e.Current.String(), e.Required.String())
}

// Entry is one signed, immutable movement of money into or out of a fund.
// Exactly one of AmountIn/AmountOut is non-zero; Balance is the fund balance
// immediately after this entry. Corrections are made by posting a reversing
// entry, never by editing.
type Entry struct {
	ID        string          `json:"id"`
	FundID    int64           `json:"fundId"`
	ChurchID  *int64          `json:"churchId,omitempty"`
	ReportID  *int64          `json:"reportId,omitempty"`
	EventID   *int64          `json:"eventId,omitempty"`
	Date      time.Time       `json:"date"`
	Concept   string          `json:"concept"`
	Provider  string          `json:"provider,omitempty"`
	AmountIn  decimal.Decimal `json:"amountIn"`
	AmountOut decimal.Decimal `json:"amountOut"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedBy string          `json:"createdBy"`
	CreatedAt time.Time       `json:"createdAt"`
}

// Signed returns the entry amount as a signed value: positive for money in,
// negative for money out.
func (e *Entry) Signed() decimal.Decimal {
	return e.AmountIn.Sub(e.AmountOut)
}

// EntryParams contains parameters for posting one ledger entry.
type EntryParams struct {
	FundID   int64
	Amount   decimal.Decimal // signed, non-zero
	Date     time.Time
	Concept  string
	Provider string
	ChurchID *int64
	ReportID *int64
	EventID  *int64
	// Unguarded skips the non-negative-balance check. Only the report
	// compiler sets it, for bookkeeping expense rows that mirror money
	// already spent at the church level.
	Unguarded bool
	CreatedBy string
}

// Validate validates the entry parameters
func (p EntryParams) Validate() error {
	if p.FundID <= 0 {
		return fmt.Errorf("%w: valid fund ID is required", ErrInvalidEntry)
	}
	if p.Amount.IsZero() {
		return fmt.Errorf("%w: amount must be non-zero", ErrInvalidEntry)
	}
	if p.Concept == "" {
		return fmt.Errorf("%w: concept is required", ErrInvalidEntry)
	}
	if p.CreatedBy == "" {
		return fmt.Errorf("%w: creator identity is required", ErrInvalidEntry)
	}
	return nil
}

// Movement directions for the transfer audit trail.
const (
	MovementOut = "out"
	MovementIn  = "in"
)

// Movement is one side of a fund-to-fund transfer, linking the posted entry
// back to the transfer that produced it.
type Movement struct {
	ID         int64           `json:"id"`
	TransferID string          `json:"transferId"`
	FundID     int64           `json:"fundId"`
	EntryID    string          `json:"entryId"`
	Direction  string          `json:"direction"`
	Amount     decimal.Decimal `json:"amount"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// MovementParams contains parameters for recording one movement row.
type MovementParams struct {
	TransferID string
	FundID     int64
	EntryID    string
	Direction  string
	Amount     decimal.Decimal
}

// TransferParams contains parameters for moving a fixed amount between funds.
type TransferParams struct {
	SourceFundID int64
	DestFundID   int64
	Amount       decimal.Decimal
	Description  string
	Date         time.Time
	DocumentRef  string
	CreatedBy    string
}

// Validate rejects malformed transfers before any lock is taken.
func (p TransferParams) Validate() error {
	if p.SourceFundID <= 0 || p.DestFundID <= 0 {
		return fmt.Errorf("%w: valid source and destination fund IDs are required", ErrInvalidTransfer)
	}
	if p.SourceFundID == p.DestFundID {
		return fmt.Errorf("%w: source and destination funds must differ", ErrInvalidTransfer)
	}
	if !p.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidTransfer)
	}
	if p.Description == "" {
		return fmt.Errorf("%w: description is required", ErrInvalidTransfer)
	}
	if p.CreatedBy == "" {
		return fmt.Errorf("%w: creator identity is required", ErrInvalidTransfer)
	}
	return nil
}

// TransferResult reports the two linked entries and the post-transfer balances.
type TransferResult struct {
	TransferID    string          `json:"transferId"`
	OutEntryID    string          `json:"outEntryId"`
	InEntryID     string          `json:"inEntryId"`
	SourceBalance decimal.Decimal `json:"sourceBalance"`
	DestBalance   decimal.Decimal `json:"destBalance"`
}
