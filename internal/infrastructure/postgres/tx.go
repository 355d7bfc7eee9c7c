package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"tesoro/internal/domain/event"
	"tesoro/internal/domain/fund"
	"tesoro/internal/domain/ledger"
	"tesoro/internal/domain/report"
)

// inTx runs fn inside one database transaction. fn returning an error rolls
// everything back; nil commits. The pgTx handed to fn satisfies ledger.Tx,
// report.Tx and event.Tx, so multi-fund postings, report compilation and
// event approval each run as a single transaction.
func (db *DB) inTx(ctx context.Context, fn func(tx *pgTx) error) error {
	dbTx, err := db.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(&pgTx{tx: dbTx}); err != nil {
		dbTx.Rollback()
		return err
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// pgTx exposes the locked-row operations available inside one transaction.
type pgTx struct {
	tx *sql.Tx
}

// LockFund loads a fund under FOR UPDATE. The row lock is held until the
// enclosing transaction commits or rolls back; a repeated lock on a row the
// transaction already holds returns immediately with the transaction's own
// writes visible.
func (t *pgTx) LockFund(ctx context.Context, fundID int64) (*fund.Fund, error) {
	query := `
		SELECT id, name, fund_type, balance, active, created_at, updated_at
		FROM funds
		WHERE id = $1
		FOR UPDATE
	`

	var f fund.Fund
	err := t.tx.QueryRowContext(ctx, query, fundID).Scan(
		&f.ID, &f.Name, &f.Type, &f.Balance, &f.Active, &f.CreatedAt, &f.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fund.ErrFundNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock fund: %w", err)
	}
	return &f, nil
}

// FundExists reports whether a fund row exists, without locking it.
func (t *pgTx) FundExists(ctx context.Context, fundID int64) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM funds WHERE id = $1)`

	var exists bool
	if err := t.tx.QueryRowContext(ctx, query, fundID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check fund existence: %w", err)
	}
	return exists, nil
}

// InsertEntry appends one immutable ledger entry carrying its running balance.
func (t *pgTx) InsertEntry(ctx context.Context, params ledger.EntryParams, balance decimal.Decimal) (*ledger.Entry, error) {
	query := `
		INSERT INTO ledger_entries (id, fund_id, church_id, report_id, event_id, entry_date, concept, provider, amount_in, amount_out, balance, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at
	`

	entry := &ledger.Entry{
		ID:        uuid.New().String(),
		FundID:    params.FundID,
		ChurchID:  params.ChurchID,
		ReportID:  params.ReportID,
		EventID:   params.EventID,
		Date:      params.Date,
		Concept:   params.Concept,
		Provider:  params.Provider,
		AmountIn:  decimal.Zero,
		AmountOut: decimal.Zero,
		Balance:   balance,
		CreatedBy: params.CreatedBy,
	}
	if params.Amount.IsPositive() {
		entry.AmountIn = params.Amount
	} else {
		entry.AmountOut = params.Amount.Neg()
	}

	err := t.tx.QueryRowContext(
		ctx, query,
		entry.ID, entry.FundID, nullInt64Ptr(entry.ChurchID), nullInt64Ptr(entry.ReportID), nullInt64Ptr(entry.EventID),
		entry.Date, entry.Concept, nullString(entry.Provider),
		entry.AmountIn, entry.AmountOut, entry.Balance, entry.CreatedBy,
	).Scan(&entry.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert ledger entry: %w", err)
	}
	return entry, nil
}

// UpdateFundBalance writes the new balance snapshot onto the fund row.
func (t *pgTx) UpdateFundBalance(ctx context.Context, fundID int64, balance decimal.Decimal) error {
	query := `UPDATE funds SET balance = $1, updated_at = NOW() WHERE id = $2`

	result, err := t.tx.ExecContext(ctx, query, balance, fundID)
	if err != nil {
		return fmt.Errorf("failed to update fund balance: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check fund update: %w", err)
	}
	if rows == 0 {
		return fund.ErrFundNotFound
	}
	return nil
}

// InsertMovement records one side of a transfer.
func (t *pgTx) InsertMovement(ctx context.Context, params ledger.MovementParams) error {
	query := `
		INSERT INTO fund_movements (transfer_id, fund_id, entry_id, direction, amount)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := t.tx.ExecContext(ctx, query,
		params.TransferID, params.FundID, params.EntryID, params.Direction, params.Amount,
	)
	if err != nil {
		return fmt.Errorf("failed to insert fund movement: %w", err)
	}
	return nil
}

// GetSnapshotForUpdate loads a monthly report under FOR UPDATE so concurrent
// compilations of the same report serialize on its row.
func (t *pgTx) GetSnapshotForUpdate(ctx context.Context, reportID int64) (*report.Snapshot, error) {
	query := `
		SELECT id, church_id, month, year,
		       tithes, offerings, other_income, annex_income,
		       missions, womens_union, mens_fellowship, youth,
		       children, bible_institute, evangelism, social_aid,
		       utilities, maintenance, supplies, miscellaneous,
		       deposit_receipt, deposit_date, transactions_created
		FROM monthly_reports
		WHERE id = $1
		FOR UPDATE
	`

	var s report.Snapshot
	var depositReceipt sql.NullString
	var depositDate sql.NullTime

	err := t.tx.QueryRowContext(ctx, query, reportID).Scan(
		&s.ID, &s.ChurchID, &s.Month, &s.Year,
		&s.Tithes, &s.Offerings, &s.OtherIncome, &s.AnnexIncome,
		&s.Designated.Missions, &s.Designated.WomensUnion, &s.Designated.MensFellowship, &s.Designated.Youth,
		&s.Designated.Children, &s.Designated.BibleInstitute, &s.Designated.Evangelism, &s.Designated.SocialAid,
		&s.Expenses.Utilities, &s.Expenses.Maintenance, &s.Expenses.Supplies, &s.Expenses.Miscellaneous,
		&depositReceipt, &depositDate, &s.TransactionsCreated,
	)
	if err == sql.ErrNoRows {
		return nil, report.ErrReportNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock monthly report: %w", err)
	}

	if depositReceipt.Valid {
		s.DepositReceipt = depositReceipt.String
	}
	if depositDate.Valid {
		s.DepositDate = &depositDate.Time
	}
	return &s, nil
}

// MarkTransactionsCreated flips the report's transactions-created flag.
func (t *pgTx) MarkTransactionsCreated(ctx context.Context, reportID int64) error {
	query := `UPDATE monthly_reports SET transactions_created = TRUE, updated_at = NOW() WHERE id = $1`

	result, err := t.tx.ExecContext(ctx, query, reportID)
	if err != nil {
		return fmt.Errorf("failed to mark report compiled: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check report update: %w", err)
	}
	if rows == 0 {
		return report.ErrReportNotFound
	}
	return nil
}

// FundIDByName resolves a well-known fund name to its id.
func (t *pgTx) FundIDByName(ctx context.Context, name string) (int64, error) {
	query := `SELECT id FROM funds WHERE name = $1 AND active = TRUE`

	var id int64
	err := t.tx.QueryRowContext(ctx, query, name).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, fund.ErrFundNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to resolve fund name: %w", err)
	}
	return id, nil
}

// GetEventForUpdate loads a fund event under FOR UPDATE.
func (t *pgTx) GetEventForUpdate(ctx context.Context, id int64) (*event.Event, error) {
	query := `
		SELECT id, fund_id, church_id, name, event_date, status, created_by, approved_by, created_at, updated_at
		FROM fund_events
		WHERE id = $1
		FOR UPDATE
	`
	return scanEvent(t.tx.QueryRowContext(ctx, query, id))
}

// UpdateEventStatus flips the event status, recording the approver when set.
func (t *pgTx) UpdateEventStatus(ctx context.Context, id int64, status event.Status, approvedBy string) error {
	query := `
		UPDATE fund_events
		SET status = $1, approved_by = COALESCE($2, approved_by), updated_at = NOW()
		WHERE id = $3
	`

	result, err := t.tx.ExecContext(ctx, query, string(status), nullString(approvedBy), id)
	if err != nil {
		return fmt.Errorf("failed to update event status: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check event update: %w", err)
	}
	if rows == 0 {
		return event.ErrEventNotFound
	}
	return nil
}

// InsertAudit appends one transition record to the event's history.
func (t *pgTx) InsertAudit(ctx context.Context, params event.AuditParams) error {
	query := `
		INSERT INTO event_audit (event_id, from_status, to_status, actor, comment)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := t.tx.ExecContext(ctx, query,
		params.EventID, string(params.FromStatus), string(params.ToStatus), params.Actor, nullString(params.Comment),
	)
	if err != nil {
		return fmt.Errorf("failed to insert event audit entry: %w", err)
	}
	return nil
}

// InsertBudgetItem adds a projected line.
func (t *pgTx) InsertBudgetItem(ctx context.Context, eventID int64, params event.BudgetItemParams) (*event.BudgetItem, error) {
	query := `
		INSERT INTO budget_items (event_id, category, description, projected)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	item := &event.BudgetItem{
		EventID:     eventID,
		Category:    params.Category,
		Description: params.Description,
		Projected:   params.Projected,
	}
	err := t.tx.QueryRowContext(ctx, query,
		eventID, params.Category, params.Description, params.Projected,
	).Scan(&item.ID, &item.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert budget item: %w", err)
	}
	return item, nil
}

// UpdateBudgetItem rewrites a projected line.
func (t *pgTx) UpdateBudgetItem(ctx context.Context, eventID, itemID int64, params event.BudgetItemParams) (*event.BudgetItem, error) {
	query := `
		UPDATE budget_items
		SET category = $1, description = $2, projected = $3
		WHERE id = $4 AND event_id = $5
		RETURNING id, event_id, category, description, projected, created_at
	`

	var item event.BudgetItem
	err := t.tx.QueryRowContext(ctx, query,
		params.Category, params.Description, params.Projected, itemID, eventID,
	).Scan(&item.ID, &item.EventID, &item.Category, &item.Description, &item.Projected, &item.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, event.ErrItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update budget item: %w", err)
	}
	return &item, nil
}

// DeleteBudgetItem removes a projected line.
func (t *pgTx) DeleteBudgetItem(ctx context.Context, eventID, itemID int64) error {
	query := `DELETE FROM budget_items WHERE id = $1 AND event_id = $2`

	result, err := t.tx.ExecContext(ctx, query, itemID, eventID)
	if err != nil {
		return fmt.Errorf("failed to delete budget item: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check budget item delete: %w", err)
	}
	if rows == 0 {
		return event.ErrItemNotFound
	}
	return nil
}

// InsertActual records a realized income or expense line.
func (t *pgTx) InsertActual(ctx context.Context, eventID int64, params event.ActualParams) (*event.Actual, error) {
	query := `
		INSERT INTO event_actuals (event_id, line, concept, amount, actual_date, receipt_ref)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	actual := &event.Actual{
		EventID:    eventID,
		Line:       params.Line,
		Concept:    params.Concept,
		Amount:     params.Amount,
		Date:       params.Date,
		ReceiptRef: params.ReceiptRef,
	}
	err := t.tx.QueryRowContext(ctx, query,
		eventID, params.Line, params.Concept, params.Amount, params.Date, nullString(params.ReceiptRef),
	).Scan(&actual.ID, &actual.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert event actual: %w", err)
	}
	return actual, nil
}

// ListActuals returns every recorded actual for the event, oldest first.
func (t *pgTx) ListActuals(ctx context.Context, eventID int64) ([]*event.Actual, error) {
	query := `
		SELECT id, event_id, line, concept, amount, actual_date, receipt_ref, created_at
		FROM event_actuals
		WHERE event_id = $1
		ORDER BY id
	`

	rows, err := t.tx.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list event actuals: %w", err)
	}
	defer rows.Close()

	return collectActuals(rows)
}

func scanEvent(row interface{ Scan(...any) error }) (*event.Event, error) {
	var ev event.Event
	var churchID sql.NullInt64
	var approvedBy sql.NullString
	var status string

	err := row.Scan(
		&ev.ID, &ev.FundID, &churchID, &ev.Name, &ev.EventDate,
		&status, &ev.CreatedBy, &approvedBy, &ev.CreatedAt, &ev.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, event.ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan fund event: %w", err)
	}

	ev.Status = event.Status(status)
	if churchID.Valid {
		ev.ChurchID = &churchID.Int64
	}
	if approvedBy.Valid {
		ev.ApprovedBy = approvedBy.String
	}
	return &ev, nil
}

func collectActuals(rows *sql.Rows) ([]*event.Actual, error) {
	var actuals []*event.Actual
	for rows.Next() {
		var a event.Actual
		var receiptRef sql.NullString
		if err := rows.Scan(
			&a.ID, &a.EventID, &a.Line, &a.Concept, &a.Amount, &a.Date, &receiptRef, &a.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan event actual: %w", err)
		}
		if receiptRef.Valid {
			a.ReceiptRef = receiptRef.String
		}
		actuals = append(actuals, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate event actuals: %w", err)
	}
	return actuals, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt64Ptr(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

var _ ledger.Tx = (*pgTx)(nil)
var _ report.Tx = (*pgTx)(nil)
var _ event.Tx = (*pgTx)(nil)
