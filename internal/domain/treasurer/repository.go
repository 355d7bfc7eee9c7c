package treasurer

import "context"

// Repository defines the interface for treasurer data access
// This interface is defined in the domain layer, but implemented in the infrastructure layer
type Repository interface {
	// Create registers a new treasurer
	Create(ctx context.Context, params CreateParams) (*Treasurer, error)

	// GetByID retrieves a treasurer by ID
	GetByID(ctx context.Context, id int64) (*Treasurer, error)

	// GetByEmail retrieves a treasurer by email
	GetByEmail(ctx context.Context, email string) (*Treasurer, error)
}
