package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"tesoro/internal/domain/authz"
	"tesoro/internal/domain/treasurer"
)

// TreasurerRepository implements the treasurer.Repository interface for PostgreSQL
type TreasurerRepository struct {
	db *DB
}

// NewTreasurerRepository creates a new PostgreSQL treasurer repository
func NewTreasurerRepository(db *DB) *TreasurerRepository {
	return &TreasurerRepository{db: db}
}

// Create registers a new treasurer
func (r *TreasurerRepository) Create(ctx context.Context, params treasurer.CreateParams) (*treasurer.Treasurer, error) {
	query := `
		INSERT INTO treasurers (email, name, role, church_id, fund_ids, password_hash)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, email, name, role, church_id, fund_ids, password_hash, active, created_at, updated_at
	`

	t, err := scanTreasurer(r.db.QueryRowContext(ctx, query,
		params.Email, params.Name, string(params.Role),
		nullInt64Ptr(params.ChurchID), pq.Array(params.FundIDs), params.PasswordHash,
	))
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code.Name() == "unique_violation" {
			return nil, treasurer.ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create treasurer: %w", err)
	}
	return t, nil
}

// GetByID retrieves a treasurer by ID
func (r *TreasurerRepository) GetByID(ctx context.Context, id int64) (*treasurer.Treasurer, error) {
	query := `
		SELECT id, email, name, role, church_id, fund_ids, password_hash, active, created_at, updated_at
		FROM treasurers
		WHERE id = $1
	`

	t, err := scanTreasurer(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, treasurer.ErrTreasurerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get treasurer: %w", err)
	}
	return t, nil
}

// GetByEmail retrieves a treasurer by email
func (r *TreasurerRepository) GetByEmail(ctx context.Context, email string) (*treasurer.Treasurer, error) {
	query := `
		SELECT id, email, name, role, church_id, fund_ids, password_hash, active, created_at, updated_at
		FROM treasurers
		WHERE email = $1
	`

	t, err := scanTreasurer(r.db.QueryRowContext(ctx, query, email))
	if err == sql.ErrNoRows {
		return nil, treasurer.ErrTreasurerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get treasurer by email: %w", err)
	}
	return t, nil
}

func scanTreasurer(row interface{ Scan(...any) error }) (*treasurer.Treasurer, error) {
	var t treasurer.Treasurer
	var role string
	var churchID sql.NullInt64
	var fundIDs pq.Int64Array

	err := row.Scan(
		&t.ID, &t.Email, &t.Name, &role, &churchID, &fundIDs,
		&t.PasswordHash, &t.Active, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.Role = authz.Role(role)
	if churchID.Valid {
		t.ChurchID = &churchID.Int64
	}
	t.FundIDs = []int64(fundIDs)
	return &t, nil
}
