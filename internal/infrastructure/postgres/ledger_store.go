package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"tesoro/internal/domain/ledger"
)

// LedgerStore implements the ledger.Store interface for PostgreSQL
type LedgerStore struct {
	db *DB
}

// NewLedgerStore creates a new PostgreSQL ledger store
func NewLedgerStore(db *DB) *LedgerStore {
	return &LedgerStore{db: db}
}

// InTx runs fn inside one database transaction.
func (s *LedgerStore) InTx(ctx context.Context, fn func(tx ledger.Tx) error) error {
	return s.db.inTx(ctx, func(tx *pgTx) error { return fn(tx) })
}

// GetEntry retrieves a single ledger entry by ID
func (s *LedgerStore) GetEntry(ctx context.Context, id string) (*ledger.Entry, error) {
	query := `
		SELECT id, fund_id, church_id, report_id, event_id, entry_date, concept, provider,
		       amount_in, amount_out, balance, created_by, created_at
		FROM ledger_entries
		WHERE id = $1
	`

	entry, err := scanEntry(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, ledger.ErrEntryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger entry: %w", err)
	}
	return entry, nil
}

// EntriesByFund lists a fund's entries in posting order, newest first.
func (s *LedgerStore) EntriesByFund(ctx context.Context, fundID int64, limit, offset int) ([]*ledger.Entry, error) {
	query := `
		SELECT id, fund_id, church_id, report_id, event_id, entry_date, concept, provider,
		       amount_in, amount_out, balance, created_by, created_at
		FROM ledger_entries
		WHERE fund_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := s.db.QueryContext(ctx, query, fundID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []*ledger.Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ledger entries: %w", err)
	}
	return entries, nil
}

func scanEntry(row interface{ Scan(...any) error }) (*ledger.Entry, error) {
	var entry ledger.Entry
	var churchID, reportID, eventID sql.NullInt64
	var provider sql.NullString

	err := row.Scan(
		&entry.ID, &entry.FundID, &churchID, &reportID, &eventID,
		&entry.Date, &entry.Concept, &provider,
		&entry.AmountIn, &entry.AmountOut, &entry.Balance,
		&entry.CreatedBy, &entry.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if churchID.Valid {
		entry.ChurchID = &churchID.Int64
	}
	if reportID.Valid {
		entry.ReportID = &reportID.Int64
	}
	if eventID.Valid {
		entry.EventID = &eventID.Int64
	}
	if provider.Valid {
		entry.Provider = provider.String
	}
	return &entry, nil
}
