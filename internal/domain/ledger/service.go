package ledger

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"tesoro/internal/domain/authz"
	"tesoro/internal/domain/fund"
)

// Service exposes the posting and transfer operations. Every mutating call
// runs as one all-or-nothing transaction against the store.
type Service struct {
	store  Store
	events EventPublisher
}

// NewService creates a new ledger service. A nil publisher disables events.
func NewService(store Store, events EventPublisher) *Service {
	if events == nil {
		events = NopPublisher{}
	}
	return &Service{store: store, events: events}
}

// PostEntry posts one signed entry against a fund.
func (s *Service) PostEntry(ctx context.Context, identity authz.Identity, params EntryParams) (*Entry, error) {
	if !authz.Resolve(identity).CanPostEntries() {
		return nil, authz.Denied(authz.DenialRole)
	}
	// Direct entries are always guarded; only the report compiler may post
	// unguarded bookkeeping rows.
	params.Unguarded = false
	if params.Date.IsZero() {
		params.Date = time.Now().UTC()
	}

	var entry *Entry
	err := s.store.InTx(ctx, func(tx Tx) error {
		e, err := Post(ctx, tx, params)
		if err != nil {
			return err
		}
		entry = e
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, entry)
	return entry, nil
}

// Transfer moves a fixed amount from one fund to another as two linked
// entries inside one transaction. Both fund rows are locked in ascending
// fund-id order so that concurrent transfers over the same pair in opposite
// directions cannot deadlock.
func (s *Service) Transfer(ctx context.Context, identity authz.Identity, params TransferParams) (*TransferResult, error) {
	if !authz.Resolve(identity).CanTransfer() {
		return nil, authz.Denied(authz.DenialRole)
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if params.Date.IsZero() {
		params.Date = time.Now().UTC()
	}

	transferID := uuid.New().String()
	result := &TransferResult{TransferID: transferID}

	var outEntry, inEntry *Entry
	err := s.store.InTx(ctx, func(tx Tx) error {
		// An unknown fund is an input error, caught before any lock is
		// taken.
		for _, id := range []int64{params.SourceFundID, params.DestFundID} {
			exists, err := tx.FundExists(ctx, id)
			if err != nil {
				return err
			}
			if !exists {
				return fmt.Errorf("%w: unknown fund %d", ErrInvalidTransfer, id)
			}
		}

		// Fixed global lock ordering.
		first, second := params.SourceFundID, params.DestFundID
		if second < first {
			first, second = second, first
		}
		if _, err := tx.LockFund(ctx, first); err != nil {
			return err
		}
		if _, err := tx.LockFund(ctx, second); err != nil {
			return err
		}

		out, err := Post(ctx, tx, EntryParams{
			FundID:    params.SourceFundID,
			Amount:    params.Amount.Neg(),
			Date:      params.Date,
			Concept:   params.Description,
			Provider:  params.DocumentRef,
			CreatedBy: params.CreatedBy,
		})
		if err != nil {
			return err
		}

		in, err := Post(ctx, tx, EntryParams{
			FundID:    params.DestFundID,
			Amount:    params.Amount,
			Date:      params.Date,
			Concept:   params.Description,
			Provider:  params.DocumentRef,
			CreatedBy: params.CreatedBy,
		})
		if err != nil {
			return err
		}

		for _, m := range []MovementParams{
			{TransferID: transferID, FundID: params.SourceFundID, EntryID: out.ID, Direction: MovementOut, Amount: params.Amount},
			{TransferID: transferID, FundID: params.DestFundID, EntryID: in.ID, Direction: MovementIn, Amount: params.Amount},
		} {
			if err := tx.InsertMovement(ctx, m); err != nil {
				return err
			}
		}

		result.OutEntryID = out.ID
		result.InEntryID = in.ID
		result.SourceBalance = out.Balance
		result.DestBalance = in.Balance
		outEntry, inEntry = out, in
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, outEntry, inEntry)
	return result, nil
}

// ReverseEntry posts the opposing entry for an existing one. The original is
// never edited; the reversal references the same provenance.
func (s *Service) ReverseEntry(ctx context.Context, identity authz.Identity, entryID, reason string) (*Entry, error) {
	if !authz.Resolve(identity).CanPostEntries() {
		return nil, authz.Denied(authz.DenialRole)
	}
	if reason == "" {
		return nil, fmt.Errorf("%w: reversal reason is required", ErrInvalidEntry)
	}

	original, err := s.store.GetEntry(ctx, entryID)
	if err != nil {
		return nil, err
	}

	var reversal *Entry
	err = s.store.InTx(ctx, func(tx Tx) error {
		e, err := Post(ctx, tx, EntryParams{
			FundID:    original.FundID,
			Amount:    original.Signed().Neg(),
			Date:      time.Now().UTC(),
			Concept:   "Reversal: " + reason,
			Provider:  original.Provider,
			ChurchID:  original.ChurchID,
			ReportID:  original.ReportID,
			EventID:   original.EventID,
			CreatedBy: identity.Email,
		})
		if err != nil {
			return err
		}
		reversal = e
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, reversal)
	return reversal, nil
}

// GetEntry retrieves a single entry by ID.
func (s *Service) GetEntry(ctx context.Context, entryID string) (*Entry, error) {
	return s.store.GetEntry(ctx, entryID)
}

// FundLedger lists a fund's entry history, newest first.
func (s *Service) FundLedger(ctx context.Context, fundID int64, limit, offset int) ([]*Entry, error) {
	if fundID <= 0 {
		return nil, fund.ErrFundNotFound
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.store.EntriesByFund(ctx, fundID, limit, offset)
}

func (s *Service) publish(ctx context.Context, entries ...*Entry) {
	for _, e := range entries {
		if e == nil {
			continue
		}
		event := PostedEvent{
			EntryID:  e.ID,
			FundID:   e.FundID,
			Amount:   e.Signed(),
			Balance:  e.Balance,
			Concept:  e.Concept,
			PostedAt: e.CreatedAt,
		}
		if err := s.events.PublishEntryPosted(ctx, event); err != nil {
			log.Printf("Failed to publish posted-entry event for %s: %v", e.ID, err)
		}
	}
}
