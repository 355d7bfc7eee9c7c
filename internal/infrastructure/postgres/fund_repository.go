package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"tesoro/internal/domain/fund"
)

// FundRepository implements the fund.Repository interface for PostgreSQL
type FundRepository struct {
	db *DB
}

// NewFundRepository creates a new PostgreSQL fund repository
func NewFundRepository(db *DB) *FundRepository {
	return &FundRepository{db: db}
}

// Create creates a new fund with a zero balance
func (r *FundRepository) Create(ctx context.Context, params fund.CreateParams) (*fund.Fund, error) {
	query := `
		INSERT INTO funds (name, fund_type)
		VALUES ($1, $2)
		RETURNING id, name, fund_type, balance, active, created_at, updated_at
	`

	f, err := scanFund(r.db.QueryRowContext(ctx, query, params.Name, params.Type))
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code.Name() == "unique_violation" {
			return nil, fund.ErrFundNameTaken
		}
		return nil, fmt.Errorf("failed to create fund: %w", err)
	}
	return f, nil
}

// GetByID retrieves a fund by its ID
func (r *FundRepository) GetByID(ctx context.Context, id int64) (*fund.Fund, error) {
	query := `
		SELECT id, name, fund_type, balance, active, created_at, updated_at
		FROM funds
		WHERE id = $1
	`

	f, err := scanFund(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, fund.ErrFundNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get fund: %w", err)
	}
	return f, nil
}

// GetByName retrieves a fund by its unique name
func (r *FundRepository) GetByName(ctx context.Context, name string) (*fund.Fund, error) {
	query := `
		SELECT id, name, fund_type, balance, active, created_at, updated_at
		FROM funds
		WHERE name = $1
	`

	f, err := scanFund(r.db.QueryRowContext(ctx, query, name))
	if err == sql.ErrNoRows {
		return nil, fund.ErrFundNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get fund by name: %w", err)
	}
	return f, nil
}

// List retrieves all funds, active first
func (r *FundRepository) List(ctx context.Context, includeInactive bool) ([]*fund.Fund, error) {
	query := `
		SELECT id, name, fund_type, balance, active, created_at, updated_at
		FROM funds
		WHERE active OR $1
		ORDER BY active DESC, name
	`

	rows, err := r.db.QueryContext(ctx, query, includeInactive)
	if err != nil {
		return nil, fmt.Errorf("failed to list funds: %w", err)
	}
	defer rows.Close()

	var funds []*fund.Fund
	for rows.Next() {
		f, err := scanFund(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan fund: %w", err)
		}
		funds = append(funds, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate funds: %w", err)
	}
	return funds, nil
}

// Archive marks a fund inactive; its history is preserved
func (r *FundRepository) Archive(ctx context.Context, id int64) error {
	query := `UPDATE funds SET active = FALSE, updated_at = NOW() WHERE id = $1 AND active`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to archive fund: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check fund archive: %w", err)
	}
	if rows == 0 {
		return fund.ErrFundNotFound
	}
	return nil
}

// HasEntries reports whether any ledger entry was ever posted against the fund
func (r *FundRepository) HasEntries(ctx context.Context, id int64) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM ledger_entries WHERE fund_id = $1)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check fund entries: %w", err)
	}
	return exists, nil
}

func scanFund(row interface{ Scan(...any) error }) (*fund.Fund, error) {
	var f fund.Fund
	err := row.Scan(&f.ID, &f.Name, &f.Type, &f.Balance, &f.Active, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &f, nil
}
