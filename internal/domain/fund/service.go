package fund

import (
	"context"
	"errors"

	"tesoro/internal/domain/authz"
)

// Service contains the business logic for fund administration. Balances are
// out of its reach: only the ledger posting routine writes those.
type Service struct {
	repo Repository
}

// NewService creates a new fund service
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateFund creates a new fund with business validation
func (s *Service) CreateFund(ctx context.Context, identity authz.Identity, params CreateParams) (*Fund, error) {
	if !authz.Resolve(identity).CanManageFunds() {
		return nil, authz.Denied(authz.DenialRole)
	}

	// Default to a designated fund; the general fund is seeded once.
	if params.Type == "" {
		params.Type = TypeDesignated
	}

	if err := params.Validate(); err != nil {
		return nil, err
	}

	return s.repo.Create(ctx, params)
}

// GetFund retrieves a fund by ID
func (s *Service) GetFund(ctx context.Context, id int64) (*Fund, error) {
	return s.repo.GetByID(ctx, id)
}

// ListFunds retrieves all funds
func (s *Service) ListFunds(ctx context.Context, includeInactive bool) ([]*Fund, error) {
	return s.repo.List(ctx, includeInactive)
}

// ArchiveFund deactivates a fund. A fund with ledger history is never
// deleted, only archived; archiving is also the only path for funds
// without history, so reads stay consistent.
func (s *Service) ArchiveFund(ctx context.Context, identity authz.Identity, id int64) error {
	if !authz.Resolve(identity).CanManageFunds() {
		return authz.Denied(authz.DenialRole)
	}

	if _, err := s.repo.GetByID(ctx, id); err != nil {
		if errors.Is(err, ErrFundNotFound) {
			return ErrFundNotFound
		}
		return err
	}

	return s.repo.Archive(ctx, id)
}
