package authz

import "fmt"

// Role is the closed set of treasurer roles.
type Role string

const (
	// RoleChurchTreasurer records fund events and budgets for the funds it is scoped to.
	RoleChurchTreasurer Role = "church_treasurer"
	// RoleFundSupervisor reviews submitted fund events: approve, reject, request revision.
	RoleFundSupervisor Role = "fund_supervisor"
	// RoleNationalTreasurer moves money: direct entries, transfers, report compilation.
	RoleNationalTreasurer Role = "national_treasurer"
)

var roles = map[Role]struct{}{
	RoleChurchTreasurer:   {},
	RoleFundSupervisor:    {},
	RoleNationalTreasurer: {},
}

// IsValidRole checks if the provided role is one of the known roles.
func IsValidRole(r Role) bool {
	_, ok := roles[r]
	return ok
}

// Identity is the authenticated caller as resolved by the auth layer:
// a role, an optional home church, and an optional explicit fund scope.
type Identity struct {
	UserID   int64
	Email    string
	Role     Role
	ChurchID *int64
	FundIDs  []int64
}

// DenialReason distinguishes why an operation was refused, so a missing
// fund scope is never reported as a missing approval capability.
type DenialReason string

const (
	DenialFundScope          DenialReason = "identity lacks scope over the fund"
	DenialApprovalCapability DenialReason = "identity lacks the approval capability"
	DenialRole               DenialReason = "identity role does not permit the operation"
)

// DeniedError is returned whenever the calling identity lacks the
// capability required for the attempted operation.
type DeniedError struct {
	Reason DenialReason
}

func (e *DeniedError) Error() string {
	return fmt.Sprintf("authorization denied: %s", e.Reason)
}

// Denied builds a DeniedError for the given reason.
func Denied(reason DenialReason) *DeniedError {
	return &DeniedError{Reason: reason}
}

type fundSet struct {
	all bool
	ids map[int64]struct{}
}

func (s fundSet) contains(id int64) bool {
	if s.all {
		return true
	}
	_, ok := s.ids[id]
	return ok
}

func scopedSet(ids []int64, allIfEmpty bool) fundSet {
	if len(ids) == 0 {
		return fundSet{all: allIfEmpty}
	}
	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return fundSet{ids: set}
}

// Capabilities is the closed capability set resolved once per request from
// an Identity. The role that can mutate an event for a fund is never also
// granted the capability to approve it.
type Capabilities struct {
	mutate   fundSet
	approve  fundSet
	transfer bool
	compile  bool
	post     bool
	manage   bool
}

// Resolve maps an identity to its capability set.
func Resolve(id Identity) Capabilities {
	switch id.Role {
	case RoleChurchTreasurer:
		// Scope is mandatory for church treasurers: an empty fund list grants nothing.
		return Capabilities{mutate: scopedSet(id.FundIDs, false)}
	case RoleFundSupervisor:
		return Capabilities{approve: scopedSet(id.FundIDs, true)}
	case RoleNationalTreasurer:
		return Capabilities{transfer: true, compile: true, post: true, manage: true}
	default:
		return Capabilities{}
	}
}

// CanMutateFund reports whether the identity may create or edit fund events
// and their budgets for the given fund.
func (c Capabilities) CanMutateFund(fundID int64) bool { return c.mutate.contains(fundID) }

// CanApproveFund reports whether the identity may approve, reject, or send
// back for revision fund events for the given fund.
func (c Capabilities) CanApproveFund(fundID int64) bool { return c.approve.contains(fundID) }

// CanTransfer reports whether the identity may move money between funds.
func (c Capabilities) CanTransfer() bool { return c.transfer }

// CanCompileReports reports whether the identity may compile monthly
// reports into ledger postings.
func (c Capabilities) CanCompileReports() bool { return c.compile }

// CanPostEntries reports whether the identity may post direct ledger entries.
func (c Capabilities) CanPostEntries() bool { return c.post }

// CanManageFunds reports whether the identity may create or archive funds.
func (c Capabilities) CanManageFunds() bool { return c.manage }
