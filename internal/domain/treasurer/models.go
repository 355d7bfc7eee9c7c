package treasurer

import (
	"errors"
	"time"

	"tesoro/internal/domain/authz"
)

// Domain errors
var (
	ErrTreasurerNotFound = errors.New("treasurer not found")
	ErrEmailTaken        = errors.New("email is already registered")
	ErrInvalidRole       = errors.New("invalid treasurer role")
)

// Treasurer is a credentialed operator of the treasury. Role and fund scope
// are resolved into capabilities per request; they are never checked here.
type Treasurer struct {
	ID           int64      `json:"id"`
	Email        string     `json:"email"`
	Name         string     `json:"name"`
	Role         authz.Role `json:"role"`
	ChurchID     *int64     `json:"churchId,omitempty"`
	FundIDs      []int64    `json:"fundIds,omitempty"`
	PasswordHash string     `json:"-"`
	Active       bool       `json:"active"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// Identity converts the stored treasurer into the caller identity the
// domain services authorize against.
func (t *Treasurer) Identity() authz.Identity {
	return authz.Identity{
		UserID:   t.ID,
		Email:    t.Email,
		Role:     t.Role,
		ChurchID: t.ChurchID,
		FundIDs:  t.FundIDs,
	}
}

// CreateParams contains parameters for registering a treasurer
type CreateParams struct {
	Email        string
	Name         string
	Role         authz.Role
	ChurchID     *int64
	FundIDs      []int64
	PasswordHash string
}

// Validate validates the create parameters
func (p CreateParams) Validate() error {
	if p.Email == "" {
		return errors.New("email is required")
	}
	if p.Name == "" {
		return errors.New("name is required")
	}
	if p.PasswordHash == "" {
		return errors.New("password hash is required")
	}
	if !authz.IsValidRole(p.Role) {
		return ErrInvalidRole
	}
	return nil
}
