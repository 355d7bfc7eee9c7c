package postgres

import (
	"context"

	"tesoro/internal/domain/report"
)

// ReportStore implements the report.Store interface for PostgreSQL
type ReportStore struct {
	db *DB
}

// NewReportStore creates a new PostgreSQL report store
func NewReportStore(db *DB) *ReportStore {
	return &ReportStore{db: db}
}

// InTx runs fn inside one database transaction.
func (s *ReportStore) InTx(ctx context.Context, fn func(tx report.Tx) error) error {
	return s.db.inTx(ctx, func(tx *pgTx) error { return fn(tx) })
}
