package ledger

import (
	"context"

	"tesoro/internal/domain/fund"
)

// Post appends one entry inside an open transaction, maintaining the running
// balance: lock the fund row, read its balance, compute the new balance,
// reject a guarded debit that would go negative, insert the entry with the
// computed balance, and write the balance back onto the fund row.
//
// This is the only sanctioned path for mutating a fund's balance. Callers
// that post several entries in one transaction (transfers, report
// compilation, event approval) call Post once per entry; the row lock taken
// by the first Post for a fund is held for the whole transaction.
func Post(ctx context.Context, tx Tx, params EntryParams) (*Entry, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	f, err := tx.LockFund(ctx, params.FundID)
	if err != nil {
		return nil, err
	}
	if !f.Active {
		return nil, fund.ErrFundInactive
	}

	newBalance := f.Balance.Add(params.Amount)
	if newBalance.IsNegative() && !params.Unguarded {
		return nil, &InsufficientFundsError{
			FundID:   f.ID,
			Current:  f.Balance,
			Required: params.Amount.Neg(),
		}
	}

	entry, err := tx.InsertEntry(ctx, params, newBalance)
	if err != nil {
		return nil, err
	}

	if err := tx.UpdateFundBalance(ctx, f.ID, newBalance); err != nil {
		return nil, err
	}

	return entry, nil
}
