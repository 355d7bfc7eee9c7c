package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"tesoro/internal/domain/event"
)

// EventStore implements the event.Store interface for PostgreSQL
type EventStore struct {
	db *DB
}

// NewEventStore creates a new PostgreSQL event store
func NewEventStore(db *DB) *EventStore {
	return &EventStore{db: db}
}

// InTx runs fn inside one database transaction.
func (s *EventStore) InTx(ctx context.Context, fn func(tx event.Tx) error) error {
	return s.db.inTx(ctx, func(tx *pgTx) error { return fn(tx) })
}

// CreateEvent creates a new fund event in draft status
func (s *EventStore) CreateEvent(ctx context.Context, params event.CreateParams, createdBy string) (*event.Event, error) {
	query := `
		INSERT INTO fund_events (fund_id, church_id, name, event_date, status, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, fund_id, church_id, name, event_date, status, created_by, approved_by, created_at, updated_at
	`

	ev, err := scanEvent(s.db.QueryRowContext(ctx, query,
		params.FundID, nullInt64Ptr(params.ChurchID), params.Name, params.EventDate,
		string(event.StatusDraft), createdBy,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create fund event: %w", err)
	}
	return ev, nil
}

// GetEvent retrieves a fund event by ID
func (s *EventStore) GetEvent(ctx context.Context, id int64) (*event.Event, error) {
	query := `
		SELECT id, fund_id, church_id, name, event_date, status, created_by, approved_by, created_at, updated_at
		FROM fund_events
		WHERE id = $1
	`
	return scanEvent(s.db.QueryRowContext(ctx, query, id))
}

// ListEventsByFund lists events for a fund, newest first.
func (s *EventStore) ListEventsByFund(ctx context.Context, fundID int64) ([]*event.Event, error) {
	query := `
		SELECT id, fund_id, church_id, name, event_date, status, created_by, approved_by, created_at, updated_at
		FROM fund_events
		WHERE fund_id = $1
		ORDER BY id DESC
	`

	rows, err := s.db.QueryContext(ctx, query, fundID)
	if err != nil {
		return nil, fmt.Errorf("failed to list fund events: %w", err)
	}
	defer rows.Close()

	var events []*event.Event
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate fund events: %w", err)
	}
	return events, nil
}

// ListBudgetItems returns the event's projected lines, oldest first.
func (s *EventStore) ListBudgetItems(ctx context.Context, eventID int64) ([]*event.BudgetItem, error) {
	query := `
		SELECT id, event_id, category, description, projected, created_at
		FROM budget_items
		WHERE event_id = $1
		ORDER BY id
	`

	rows, err := s.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list budget items: %w", err)
	}
	defer rows.Close()

	var items []*event.BudgetItem
	for rows.Next() {
		var item event.BudgetItem
		if err := rows.Scan(
			&item.ID, &item.EventID, &item.Category, &item.Description, &item.Projected, &item.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan budget item: %w", err)
		}
		items = append(items, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate budget items: %w", err)
	}
	return items, nil
}

// ListActuals returns the event's realized lines, oldest first.
func (s *EventStore) ListActuals(ctx context.Context, eventID int64) ([]*event.Actual, error) {
	query := `
		SELECT id, event_id, line, concept, amount, actual_date, receipt_ref, created_at
		FROM event_actuals
		WHERE event_id = $1
		ORDER BY id
	`

	rows, err := s.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list event actuals: %w", err)
	}
	defer rows.Close()

	return collectActuals(rows)
}

// ListAudit returns the event's transition history, oldest first.
func (s *EventStore) ListAudit(ctx context.Context, eventID int64) ([]*event.AuditEntry, error) {
	query := `
		SELECT id, event_id, from_status, to_status, actor, comment, created_at
		FROM event_audit
		WHERE event_id = $1
		ORDER BY id
	`

	rows, err := s.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list event audit: %w", err)
	}
	defer rows.Close()

	var audit []*event.AuditEntry
	for rows.Next() {
		var entry event.AuditEntry
		var fromStatus, toStatus string
		var comment sql.NullString
		if err := rows.Scan(
			&entry.ID, &entry.EventID, &fromStatus, &toStatus, &entry.Actor, &comment, &entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan event audit entry: %w", err)
		}
		entry.FromStatus = event.Status(fromStatus)
		entry.ToStatus = event.Status(toStatus)
		if comment.Valid {
			entry.Comment = comment.String
		}
		audit = append(audit, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate event audit: %w", err)
	}
	return audit, nil
}
