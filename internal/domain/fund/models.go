package fund

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Fund types: the general fund absorbs congregational income and expenses,
// designated funds are earmarked for a single purpose (missions, youth, ...).
const (
	TypeGeneral    = "general"
	TypeDesignated = "designated"
)

var fundTypes = map[string]struct{}{
	TypeGeneral:    {},
	TypeDesignated: {},
}

// Well-known fund names the report compiler targets. Seeded by the initial
// migration; renaming one requires a matching data migration.
const (
	NameGeneral     = "general"
	NameNational    = "national"
	NameMissions    = "missions"
	NameWomensUnion = "womens_union"
	NameMensFellow  = "mens_fellowship"
	NameYouth       = "youth"
	NameChildren    = "children"
	NameBibleInst   = "bible_institute"
	NameEvangelism  = "evangelism"
	NameSocialAid   = "social_aid"
)

// Domain errors
var (
	ErrFundNotFound    = errors.New("fund not found")
	ErrInvalidFund     = errors.New("invalid fund input")
	ErrFundNameTaken   = errors.New("fund name is already in use")
	ErrFundInactive    = errors.New("fund is not active")
	ErrInvalidFundType = errors.New("invalid fund type")
	ErrFundHasEntries  = errors.New("fund has ledger entries and cannot be removed")
)

// Fund is a named pool of money with its own running balance. Balance is a
// snapshot kept consistent with the ledger by the posting routine; it is
// never written directly by callers.
type Fund struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	Type      string          `json:"type"`
	Balance   decimal.Decimal `json:"balance"`
	Active    bool            `json:"active"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// CreateParams contains parameters for creating a new fund
type CreateParams struct {
	Name string
	Type string
}

// Validate validates the create parameters
func (p CreateParams) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidFund)
	}
	if p.Type == "" {
		return fmt.Errorf("%w: type is required", ErrInvalidFund)
	}
	if !IsValidFundType(p.Type) {
		return ErrInvalidFundType
	}
	return nil
}

// IsValidFundType checks if the provided fund type is valid.
func IsValidFundType(t string) bool {
	_, ok := fundTypes[t]
	return ok
}
