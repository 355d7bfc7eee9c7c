package event

import (
	"context"

	"tesoro/internal/domain/ledger"
)

// Tx extends the ledger transaction with the event-side operations the
// workflow needs in the same database transaction. Every status transition
// and every budget mutation loads the event under its row lock first, so the
// status guard and the change it protects commit together.
type Tx interface {
	ledger.Tx

	// GetEventForUpdate loads an event under an exclusive row lock.
	// Returns ErrEventNotFound for unknown ids.
	GetEventForUpdate(ctx context.Context, id int64) (*Event, error)

	// UpdateEventStatus flips the event status; approvedBy is recorded
	// only for the transition into approved.
	UpdateEventStatus(ctx context.Context, id int64, status Status, approvedBy string) error

	// InsertAudit appends one transition record.
	InsertAudit(ctx context.Context, params AuditParams) error

	// InsertBudgetItem adds a projected line.
	InsertBudgetItem(ctx context.Context, eventID int64, params BudgetItemParams) (*BudgetItem, error)

	// UpdateBudgetItem rewrites a projected line.
	// Returns ErrItemNotFound for unknown ids.
	UpdateBudgetItem(ctx context.Context, eventID, itemID int64, params BudgetItemParams) (*BudgetItem, error)

	// DeleteBudgetItem removes a projected line.
	// Returns ErrItemNotFound for unknown ids.
	DeleteBudgetItem(ctx context.Context, eventID, itemID int64) error

	// InsertActual records a realized income/expense line.
	InsertActual(ctx context.Context, eventID int64, params ActualParams) (*Actual, error)

	// ListActuals returns every recorded actual for the event.
	ListActuals(ctx context.Context, eventID int64) ([]*Actual, error)
}

// Store is the workflow's storage boundary.
type Store interface {
	InTx(ctx context.Context, fn func(tx Tx) error) error

	// CreateEvent creates a new event in draft status.
	CreateEvent(ctx context.Context, params CreateParams, createdBy string) (*Event, error)

	// GetEvent retrieves an event by ID without locking.
	// Returns ErrEventNotFound for unknown ids.
	GetEvent(ctx context.Context, id int64) (*Event, error)

	// ListEventsByFund lists events for a fund, newest first.
	ListEventsByFund(ctx context.Context, fundID int64) ([]*Event, error)

	// ListBudgetItems returns the event's projected lines.
	ListBudgetItems(ctx context.Context, eventID int64) ([]*BudgetItem, error)

	// ListActuals returns the event's realized lines.
	ListActuals(ctx context.Context, eventID int64) ([]*Actual, error)

	// ListAudit returns the event's transition history, oldest first.
	ListAudit(ctx context.Context, eventID int64) ([]*AuditEntry, error)
}
