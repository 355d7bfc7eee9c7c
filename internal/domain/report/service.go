package report

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"tesoro/internal/domain/authz"
	"tesoro/internal/domain/ledger"
)

// Tx extends the ledger transaction with the report-side operations the
// compiler needs in the same database transaction.
type Tx interface {
	ledger.Tx

	// GetSnapshotForUpdate loads a report under an exclusive row lock so
	// two concurrent compilations of the same report serialize.
	// Returns ErrReportNotFound for unknown ids.
	GetSnapshotForUpdate(ctx context.Context, reportID int64) (*Snapshot, error)

	// MarkTransactionsCreated flips the report's transactions-created flag.
	MarkTransactionsCreated(ctx context.Context, reportID int64) error

	// FundIDByName resolves a well-known fund name to its id.
	// Returns fund.ErrFundNotFound for unknown names.
	FundIDByName(ctx context.Context, name string) (int64, error)
}

// Store is the compiler's storage boundary.
type Store interface {
	InTx(ctx context.Context, fn func(tx Tx) error) error
}

// Service compiles finalized monthly reports into ledger postings.
type Service struct {
	store Store
}

// NewService creates a new report compiler service
func NewService(store Store) *Service {
	return &Service{store: store}
}

// CompileAndPost posts every allocation of a finalized report inside one
// transaction. Invoked as a side effect of the external report-lifecycle
// flow when a report becomes final; re-invocation for the same report is an
// idempotent no-op guarded by the transactions-created flag, checked and set
// under the report's row lock.
func (s *Service) CompileAndPost(ctx context.Context, identity authz.Identity, reportID int64) (*Result, error) {
	if !authz.Resolve(identity).CanCompileReports() {
		return nil, authz.Denied(authz.DenialRole)
	}

	result := &Result{ReportID: reportID, ApprovedBy: identity.Email}

	err := s.store.InTx(ctx, func(tx Tx) error {
		snapshot, err := tx.GetSnapshotForUpdate(ctx, reportID)
		if err != nil {
			return err
		}
		if snapshot.TransactionsCreated {
			result.AlreadyPosted = true
			return nil
		}

		postingDate := time.Date(snapshot.Year, time.Month(snapshot.Month), 1, 0, 0, 0, 0, time.UTC)
		churchID := snapshot.ChurchID

		allocations := Allocate(*snapshot)
		fundIDs := make([]int64, len(allocations))
		for i, allocation := range allocations {
			id, err := tx.FundIDByName(ctx, allocation.FundName)
			if err != nil {
				return fmt.Errorf("resolving fund %q: %w", allocation.FundName, err)
			}
			fundIDs[i] = id
		}

		// Post in ascending fund-id order so the row locks taken here
		// follow the same global ordering transfers use. The sort is
		// stable because the general fund takes several allocations and
		// their category order should hold.
		order := make([]int, len(allocations))
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(a, b int) bool { return fundIDs[order[a]] < fundIDs[order[b]] })

		for _, i := range order {
			allocation := allocations[i]
			concept := fmt.Sprintf("%s (%02d/%d)", allocation.Concept, snapshot.Month, snapshot.Year)
			if _, err := ledger.Post(ctx, tx, ledger.EntryParams{
				FundID:    fundIDs[i],
				Amount:    allocation.Amount,
				Date:      postingDate,
				Concept:   concept,
				ChurchID:  &churchID,
				ReportID:  &snapshot.ID,
				Unguarded: allocation.Unguarded,
				CreatedBy: identity.Email,
			}); err != nil {
				return err
			}
			result.EntriesPosted++
		}

		return tx.MarkTransactionsCreated(ctx, reportID)
	})
	if err != nil {
		return nil, err
	}

	if result.AlreadyPosted {
		log.Printf("Report %d already compiled, skipping", reportID)
	}
	return result, nil
}
