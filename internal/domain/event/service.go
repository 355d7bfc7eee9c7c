package event

import (
	"context"

	"github.com/shopspring/decimal"

	"tesoro/internal/domain/authz"
	"tesoro/internal/domain/ledger"
)

// Service drives the fund-event workflow. Creating and editing requires
// scope over the event's fund; approving requires the distinct approval
// capability, which no creating role holds.
type Service struct {
	store Store
}

// NewService creates a new event workflow service
func NewService(store Store) *Service {
	return &Service{store: store}
}

// ApprovalResult reports the postings an approval produced.
type ApprovalResult struct {
	EventID       int64           `json:"eventId"`
	ApprovedBy    string          `json:"approvedBy"`
	EntriesPosted int             `json:"entriesPosted"`
	FundBalance   decimal.Decimal `json:"fundBalance"`
}

func requireMutate(caps authz.Capabilities, fundID int64) error {
	if caps.CanMutateFund(fundID) {
		return nil
	}
	return authz.Denied(authz.DenialFundScope)
}

func requireApprove(caps authz.Capabilities, fundID int64) error {
	if caps.CanApproveFund(fundID) {
		return nil
	}
	if caps.CanMutateFund(fundID) {
		// The creating role is asking to approve: wrong capability, not
		// missing scope.
		return authz.Denied(authz.DenialApprovalCapability)
	}
	return authz.Denied(authz.DenialFundScope)
}

// CreateEvent creates a new event in draft status.
func (s *Service) CreateEvent(ctx context.Context, identity authz.Identity, params CreateParams) (*Event, error) {
	if err := requireMutate(authz.Resolve(identity), params.FundID); err != nil {
		return nil, err
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if params.ChurchID == nil {
		params.ChurchID = identity.ChurchID
	}
	return s.store.CreateEvent(ctx, params, identity.Email)
}

// GetEvent retrieves an event by ID.
func (s *Service) GetEvent(ctx context.Context, id int64) (*Event, error) {
	return s.store.GetEvent(ctx, id)
}

// ListEventsByFund lists events for a fund.
func (s *Service) ListEventsByFund(ctx context.Context, fundID int64) ([]*Event, error) {
	return s.store.ListEventsByFund(ctx, fundID)
}

// ListBudgetItems returns the event's projected lines.
func (s *Service) ListBudgetItems(ctx context.Context, eventID int64) ([]*BudgetItem, error) {
	return s.store.ListBudgetItems(ctx, eventID)
}

// ListActuals returns the event's realized lines.
func (s *Service) ListActuals(ctx context.Context, eventID int64) ([]*Actual, error) {
	return s.store.ListActuals(ctx, eventID)
}

// ListAudit returns the event's transition history.
func (s *Service) ListAudit(ctx context.Context, eventID int64) ([]*AuditEntry, error) {
	return s.store.ListAudit(ctx, eventID)
}

// AddBudgetItem adds a projected line while the event is editable.
func (s *Service) AddBudgetItem(ctx context.Context, identity authz.Identity, eventID int64, params BudgetItemParams) (*BudgetItem, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	caps := authz.Resolve(identity)

	var item *BudgetItem
	err := s.store.InTx(ctx, func(tx Tx) error {
		ev, err := tx.GetEventForUpdate(ctx, eventID)
		if err != nil {
			return err
		}
		if err := requireMutate(caps, ev.FundID); err != nil {
			return err
		}
		if !ev.Status.Editable() {
			return ErrEventNotEditable
		}
		item, err = tx.InsertBudgetItem(ctx, eventID, params)
		return err
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// UpdateBudgetItem rewrites a projected line while the event is editable.
func (s *Service) UpdateBudgetItem(ctx context.Context, identity authz.Identity, eventID, itemID int64, params BudgetItemParams) (*BudgetItem, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	caps := authz.Resolve(identity)

	var item *BudgetItem
	err := s.store.InTx(ctx, func(tx Tx) error {
		ev, err := tx.GetEventForUpdate(ctx, eventID)
		if err != nil {
			return err
		}
		if err := requireMutate(caps, ev.FundID); err != nil {
			return err
		}
		if !ev.Status.Editable() {
			return ErrEventNotEditable
		}
		item, err = tx.UpdateBudgetItem(ctx, eventID, itemID, params)
		return err
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// RemoveBudgetItem deletes a projected line while the event is editable.
func (s *Service) RemoveBudgetItem(ctx context.Context, identity authz.Identity, eventID, itemID int64) error {
	caps := authz.Resolve(identity)
	return s.store.InTx(ctx, func(tx Tx) error {
		ev, err := tx.GetEventForUpdate(ctx, eventID)
		if err != nil {
			return err
		}
		if err := requireMutate(caps, ev.FundID); err != nil {
			return err
		}
		if !ev.Status.Editable() {
			return ErrEventNotEditable
		}
		return tx.DeleteBudgetItem(ctx, eventID, itemID)
	})
}

// AddActual records a realized income/expense line. Actuals stay mutable
// until the event reaches a terminal state.
func (s *Service) AddActual(ctx context.Context, identity authz.Identity, eventID int64, params ActualParams) (*Actual, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	caps := authz.Resolve(identity)

	var actual *Actual
	err := s.store.InTx(ctx, func(tx Tx) error {
		ev, err := tx.GetEventForUpdate(ctx, eventID)
		if err != nil {
			return err
		}
		if err := requireMutate(caps, ev.FundID); err != nil {
			return err
		}
		if ev.Status.Terminal() {
			return ErrActualsLocked
		}
		actual, err = tx.InsertActual(ctx, eventID, params)
		return err
	})
	if err != nil {
		return nil, err
	}
	return actual, nil
}

// Submit moves a draft or pending_revision event into submitted.
func (s *Service) Submit(ctx context.Context, identity authz.Identity, eventID int64, comment string) (*Event, error) {
	return s.transition(ctx, identity, eventID, StatusSubmitted, comment, requireMutate)
}

// RequestRevision sends a submitted event back to its creator for changes.
func (s *Service) RequestRevision(ctx context.Context, identity authz.Identity, eventID int64, comment string) (*Event, error) {
	return s.transition(ctx, identity, eventID, StatusPendingRevision, comment, requireApprove)
}

// Reject terminally refuses a submitted event. History is retained.
func (s *Service) Reject(ctx context.Context, identity authz.Identity, eventID int64, comment string) (*Event, error) {
	return s.transition(ctx, identity, eventID, StatusRejected, comment, requireApprove)
}

// transition performs a postings-free status change with its audit entry.
func (s *Service) transition(ctx context.Context, identity authz.Identity, eventID int64, to Status, comment string,
	gate func(authz.Capabilities, int64) error) (*Event, error) {

	caps := authz.Resolve(identity)

	var updated *Event
	err := s.store.InTx(ctx, func(tx Tx) error {
		ev, err := tx.GetEventForUpdate(ctx, eventID)
		if err != nil {
			return err
		}
		if err := gate(caps, ev.FundID); err != nil {
			return err
		}
		if !CanTransition(ev.Status, to) {
			return &TransitionError{From: ev.Status, To: to}
		}
		if err := tx.UpdateEventStatus(ctx, eventID, to, ""); err != nil {
			return err
		}
		if err := tx.InsertAudit(ctx, AuditParams{
			EventID:    eventID,
			FromStatus: ev.Status,
			ToStatus:   to,
			Actor:      identity.Email,
			Comment:    comment,
		}); err != nil {
			return err
		}
		ev.Status = to
		updated = ev
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Approve flips a submitted event to approved and posts one ledger entry
// per recorded actual, all inside one transaction. The status guard runs
// under the event's row lock, so the approval cannot apply twice; if any
// posting would violate the balance invariant, the whole approval aborts
// and the event remains submitted.
func (s *Service) Approve(ctx context.Context, identity authz.Identity, eventID int64, comment string) (*ApprovalResult, error) {
	caps := authz.Resolve(identity)
	result := &ApprovalResult{EventID: eventID, ApprovedBy: identity.Email}

	err := s.store.InTx(ctx, func(tx Tx) error {
		ev, err := tx.GetEventForUpdate(ctx, eventID)
		if err != nil {
			return err
		}
		if err := requireApprove(caps, ev.FundID); err != nil {
			return err
		}
		if !CanTransition(ev.Status, StatusApproved) {
			return &TransitionError{From: ev.Status, To: StatusApproved}
		}

		actuals, err := tx.ListActuals(ctx, eventID)
		if err != nil {
			return err
		}

		f, err := tx.LockFund(ctx, ev.FundID)
		if err != nil {
			return err
		}
		result.FundBalance = f.Balance

		for _, a := range actuals {
			params := ActualParams{Line: a.Line, Concept: a.Concept, Amount: a.Amount}
			entry, err := ledger.Post(ctx, tx, ledger.EntryParams{
				FundID:    ev.FundID,
				Amount:    params.Signed(),
				Date:      a.Date,
				Concept:   ev.Name + ": " + a.Concept,
				Provider:  a.ReceiptRef,
				ChurchID:  ev.ChurchID,
				EventID:   &ev.ID,
				CreatedBy: identity.Email,
			})
			if err != nil {
				return err
			}
			result.EntriesPosted++
			result.FundBalance = entry.Balance
		}

		if err := tx.UpdateEventStatus(ctx, eventID, StatusApproved, identity.Email); err != nil {
			return err
		}
		return tx.InsertAudit(ctx, AuditParams{
			EventID:    eventID,
			FromStatus: ev.Status,
			ToStatus:   StatusApproved,
			Actor:      identity.Email,
			Comment:    comment,
		})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
