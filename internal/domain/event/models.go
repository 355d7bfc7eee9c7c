package event

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Status is the fund-event lifecycle state.
type Status string

const (
	StatusDraft           Status = "draft"
	StatusSubmitted       Status = "submitted"
	StatusPendingRevision Status = "pending_revision"
	StatusApproved        Status = "approved"
	StatusRejected        Status = "rejected"
)

// transitions is the complete state machine: draft and pending_revision
// feed submitted; submitted resolves to approved, rejected, or back to
// pending_revision; approved and rejected are terminal.
var transitions = map[Status][]Status{
	StatusDraft:           {StatusSubmitted},
	StatusPendingRevision: {StatusSubmitted},
	StatusSubmitted:       {StatusApproved, StatusRejected, StatusPendingRevision},
}

// CanTransition reports whether the state machine permits from -> to.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Editable reports whether budget items may be changed in this status.
func (s Status) Editable() bool {
	return s == StatusDraft || s == StatusPendingRevision
}

// Terminal reports whether the status permits no further transitions.
func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// TransitionError reports a workflow transition attempted from a state that
// does not permit it.
type TransitionError struct {
	From Status
	To   Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid state transition: %s -> %s", e.From, e.To)
}

// Domain errors
var (
	ErrInvalidEvent     = errors.New("invalid fund event input")
	ErrEventNotFound    = errors.New("fund event not found")
	ErrEventNotEditable = errors.New("fund event is not editable in its current status")
	ErrActualsLocked    = errors.New("actuals can no longer be changed after approval")
	ErrItemNotFound     = errors.New("budget item not found")
	ErrInvalidActual    = errors.New("invalid actual line")
)

// Event is a planned activity with a budget, realized actuals, and an
// approval workflow that posts ledger entries only once approved.
type Event struct {
	ID         int64      `json:"id"`
	FundID     int64      `json:"fundId"`
	ChurchID   *int64     `json:"churchId,omitempty"`
	Name       string     `json:"name"`
	EventDate  time.Time  `json:"eventDate"`
	Status     Status     `json:"status"`
	CreatedBy  string     `json:"createdBy"`
	ApprovedBy string     `json:"approvedBy,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// CreateParams contains parameters for creating a new event in draft
type CreateParams struct {
	FundID    int64
	ChurchID  *int64
	Name      string
	EventDate time.Time
}

// Validate validates the create parameters
func (p CreateParams) Validate() error {
	if p.FundID <= 0 {
		return fmt.Errorf("%w: valid fund ID is required", ErrInvalidEvent)
	}
	if p.Name == "" {
		return fmt.Errorf("%w: event name is required", ErrInvalidEvent)
	}
	if p.EventDate.IsZero() {
		return fmt.Errorf("%w: event date is required", ErrInvalidEvent)
	}
	return nil
}

// BudgetItem is one projected line of an event's budget. Mutable only while
// the event is in draft or pending_revision.
type BudgetItem struct {
	ID          int64           `json:"id"`
	EventID     int64           `json:"eventId"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Projected   decimal.Decimal `json:"projected"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// BudgetItemParams contains parameters for adding or updating a budget item
type BudgetItemParams struct {
	Category    string
	Description string
	Projected   decimal.Decimal
}

// Validate validates the budget item parameters
func (p BudgetItemParams) Validate() error {
	if p.Category == "" {
		return fmt.Errorf("%w: budget item category is required", ErrInvalidEvent)
	}
	if p.Projected.IsNegative() {
		return fmt.Errorf("%w: projected amount cannot be negative", ErrInvalidEvent)
	}
	return nil
}

// Actual line kinds.
const (
	LineIncome  = "income"
	LineExpense = "expense"
)

// Actual is one realized income or expense line. Recorded against a
// submitted event and frozen at approval, when each line becomes a ledger
// entry: income credits the fund, expense debits it.
type Actual struct {
	ID         int64           `json:"id"`
	EventID    int64           `json:"eventId"`
	Line       string          `json:"line"`
	Concept    string          `json:"concept"`
	Amount     decimal.Decimal `json:"amount"`
	Date       time.Time       `json:"date"`
	ReceiptRef string          `json:"receiptRef,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// ActualParams contains parameters for recording an actual line
type ActualParams struct {
	Line       string
	Concept    string
	Amount     decimal.Decimal
	Date       time.Time
	ReceiptRef string
}

// Validate validates the actual parameters
func (p ActualParams) Validate() error {
	if p.Line != LineIncome && p.Line != LineExpense {
		return fmt.Errorf("%w: line must be income or expense", ErrInvalidActual)
	}
	if p.Concept == "" {
		return fmt.Errorf("%w: concept is required", ErrInvalidActual)
	}
	if !p.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidActual)
	}
	return nil
}

// Signed returns the actual as a signed ledger amount.
func (p ActualParams) Signed() decimal.Decimal {
	if p.Line == LineExpense {
		return p.Amount.Neg()
	}
	return p.Amount
}

// AuditEntry records one status transition. Append-only.
type AuditEntry struct {
	ID         int64     `json:"id"`
	EventID    int64     `json:"eventId"`
	FromStatus Status    `json:"fromStatus"`
	ToStatus   Status    `json:"toStatus"`
	Actor      string    `json:"actor"`
	Comment    string    `json:"comment,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// AuditParams contains parameters for appending an audit entry
type AuditParams struct {
	EventID    int64
	FromStatus Status
	ToStatus   Status
	Actor      string
	Comment    string
}
