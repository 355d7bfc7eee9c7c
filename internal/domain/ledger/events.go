package ledger

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// PostedEvent is emitted after a posting transaction commits, one per entry.
type PostedEvent struct {
	EntryID  string          `json:"entryId"`
	FundID   int64           `json:"fundId"`
	Amount   decimal.Decimal `json:"amount"`
	Balance  decimal.Decimal `json:"balance"`
	Concept  string          `json:"concept"`
	PostedAt time.Time       `json:"postedAt"`
}

// EventPublisher notifies downstream consumers of committed postings.
// Publishing happens strictly after commit; a publish failure never rolls
// back the posting.
type EventPublisher interface {
	PublishEntryPosted(ctx context.Context, event PostedEvent) error
}

// NopPublisher discards events. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) PublishEntryPosted(context.Context, PostedEvent) error { return nil }
