package fund

import "context"

// Repository defines the interface for fund data access
// This interface is defined in the domain layer, but implemented in the infrastructure layer
type Repository interface {
	// Create creates a new fund with a zero balance
	Create(ctx context.Context, params CreateParams) (*Fund, error)

	// GetByID retrieves a fund by its ID
	GetByID(ctx context.Context, id int64) (*Fund, error)

	// GetByName retrieves a fund by its unique name
	GetByName(ctx context.Context, name string) (*Fund, error)

	// List retrieves all funds, active first
	List(ctx context.Context, includeInactive bool) ([]*Fund, error)

	// Archive marks a fund inactive; its history is preserved
	Archive(ctx context.Context, id int64) error

	// HasEntries reports whether any ledger entry was ever posted against the fund
	HasEntries(ctx context.Context, id int64) (bool, error)
}
