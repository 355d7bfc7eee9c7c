// Package memory provides an in-memory implementation of the ledger, report
// and event stores. It backs the domain tests and small tooling; the posting
// protocol it implements is the same one the postgres stores run, with a
// single store-wide lock standing in for row locks.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"tesoro/internal/domain/event"
	"tesoro/internal/domain/fund"
	"tesoro/internal/domain/ledger"
	"tesoro/internal/domain/report"
)

type state struct {
	funds     map[int64]*fund.Fund
	entries   []*ledger.Entry
	movements []*ledger.Movement
	reports   map[int64]*report.Snapshot
	events    map[int64]*event.Event
	items     map[int64][]*event.BudgetItem
	actuals   map[int64][]*event.Actual
	audits    map[int64][]*event.AuditEntry

	nextFundID  int64
	nextEventID int64
	nextItemID  int64
	nextActual  int64
	nextAuditID int64
	nextMoveID  int64
}

func newState() *state {
	return &state{
		funds:   make(map[int64]*fund.Fund),
		reports: make(map[int64]*report.Snapshot),
		events:  make(map[int64]*event.Event),
		items:   make(map[int64][]*event.BudgetItem),
		actuals: make(map[int64][]*event.Actual),
		audits:  make(map[int64][]*event.AuditEntry),
	}
}

// clone copies the mutable parts of the state. Entries, movements and audit
// records are immutable once written, so their pointers are shared; funds,
// reports and events are copied because transactions rewrite them in place.
func (s *state) clone() *state {
	c := newState()
	c.nextFundID, c.nextEventID, c.nextItemID = s.nextFundID, s.nextEventID, s.nextItemID
	c.nextActual, c.nextAuditID, c.nextMoveID = s.nextActual, s.nextAuditID, s.nextMoveID

	for id, f := range s.funds {
		cp := *f
		c.funds[id] = &cp
	}
	for id, r := range s.reports {
		cp := *r
		c.reports[id] = &cp
	}
	for id, ev := range s.events {
		cp := *ev
		c.events[id] = &cp
	}
	c.entries = append([]*ledger.Entry(nil), s.entries...)
	c.movements = append([]*ledger.Movement(nil), s.movements...)
	for id, items := range s.items {
		c.items[id] = append([]*event.BudgetItem(nil), items...)
	}
	for id, as := range s.actuals {
		c.actuals[id] = append([]*event.Actual(nil), as...)
	}
	for id, au := range s.audits {
		c.audits[id] = append([]*event.AuditEntry(nil), au...)
	}
	return c
}

// Store holds all state behind one mutex. A transaction runs against a clone
// and replaces the state on commit, so a failed transaction leaves nothing
// behind and concurrent transactions serialize without deadlocking.
type Store struct {
	mu sync.Mutex
	st *state
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{st: newState()}
}

func (s *Store) inTx(fn func(tx *memTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.st.clone()
	if err := fn(&memTx{st: work}); err != nil {
		return err
	}
	s.st = work
	return nil
}

// Seed helpers

// AddFund registers a fund with the given starting balance and returns it.
func (s *Store) AddFund(name, fundType string, balance decimal.Decimal) *fund.Fund {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.st.nextFundID++
	f := &fund.Fund{
		ID:        s.st.nextFundID,
		Name:      name,
		Type:      fundType,
		Balance:   balance,
		Active:    true,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	s.st.funds[f.ID] = f
	cp := *f
	return &cp
}

// DeactivateFund archives a fund.
func (s *Store) DeactivateFund(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f, ok := s.st.funds[id]; ok {
		f.Active = false
	}
}

// AddReport registers a monthly report snapshot.
func (s *Store) AddReport(snapshot report.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := snapshot
	s.st.reports[snapshot.ID] = &cp
}

// Fund returns a copy of the fund's current state.
func (s *Store) Fund(id int64) (*fund.Fund, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.st.funds[id]
	if !ok {
		return nil, fund.ErrFundNotFound
	}
	cp := *f
	return &cp, nil
}

// Report returns a copy of the report's current state.
func (s *Store) Report(id int64) (*report.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.st.reports[id]
	if !ok {
		return nil, report.ErrReportNotFound
	}
	cp := *r
	return &cp, nil
}

// Movements returns every recorded transfer movement.
func (s *Store) Movements() []*ledger.Movement {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*ledger.Movement(nil), s.st.movements...)
}

// Entries returns every ledger entry in posting order.
func (s *Store) Entries() []*ledger.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*ledger.Entry(nil), s.st.entries...)
}

// Ledger store view

// LedgerStore adapts the store to ledger.Store.
type LedgerStore struct{ s *Store }

// Ledger returns the ledger.Store view.
func (s *Store) Ledger() *LedgerStore { return &LedgerStore{s: s} }

func (v *LedgerStore) InTx(ctx context.Context, fn func(tx ledger.Tx) error) error {
	return v.s.inTx(func(tx *memTx) error { return fn(tx) })
}

func (v *LedgerStore) GetEntry(ctx context.Context, id string) (*ledger.Entry, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	for _, e := range v.s.st.entries {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, ledger.ErrEntryNotFound
}

func (v *LedgerStore) EntriesByFund(ctx context.Context, fundID int64, limit, offset int) ([]*ledger.Entry, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	var entries []*ledger.Entry
	for i := len(v.s.st.entries) - 1; i >= 0; i-- { // newest first
		if e := v.s.st.entries[i]; e.FundID == fundID {
			entries = append(entries, e)
		}
	}
	if offset >= len(entries) {
		return nil, nil
	}
	entries = entries[offset:]
	if limit > 0 && limit < len(entries) {
		entries = entries[:limit]
	}
	return entries, nil
}

// Report store view

// ReportStore adapts the store to report.Store.
type ReportStore struct{ s *Store }

// Reports returns the report.Store view.
func (s *Store) Reports() *ReportStore { return &ReportStore{s: s} }

func (v *ReportStore) InTx(ctx context.Context, fn func(tx report.Tx) error) error {
	return v.s.inTx(func(tx *memTx) error { return fn(tx) })
}

// Event store view

// EventStore adapts the store to event.Store.
type EventStore struct{ s *Store }

// Events returns the event.Store view.
func (s *Store) Events() *EventStore { return &EventStore{s: s} }

func (v *EventStore) InTx(ctx context.Context, fn func(tx event.Tx) error) error {
	return v.s.inTx(func(tx *memTx) error { return fn(tx) })
}

func (v *EventStore) CreateEvent(ctx context.Context, params event.CreateParams, createdBy string) (*event.Event, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	if _, ok := v.s.st.funds[params.FundID]; !ok {
		return nil, fund.ErrFundNotFound
	}
	v.s.st.nextEventID++
	now := time.Now().UTC()
	ev := &event.Event{
		ID:        v.s.st.nextEventID,
		FundID:    params.FundID,
		ChurchID:  params.ChurchID,
		Name:      params.Name,
		EventDate: params.EventDate,
		Status:    event.StatusDraft,
		CreatedBy: createdBy,
		CreatedAt: now,
		UpdatedAt: now,
	}
	v.s.st.events[ev.ID] = ev
	cp := *ev
	return &cp, nil
}

func (v *EventStore) GetEvent(ctx context.Context, id int64) (*event.Event, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	ev, ok := v.s.st.events[id]
	if !ok {
		return nil, event.ErrEventNotFound
	}
	cp := *ev
	return &cp, nil
}

func (v *EventStore) ListEventsByFund(ctx context.Context, fundID int64) ([]*event.Event, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	var events []*event.Event
	for _, ev := range v.s.st.events {
		if ev.FundID == fundID {
			cp := *ev
			events = append(events, &cp)
		}
	}
	sort.Slice(events, func(i, j int) bool { return events[i].ID > events[j].ID })
	return events, nil
}

func (v *EventStore) ListBudgetItems(ctx context.Context, eventID int64) ([]*event.BudgetItem, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	return append([]*event.BudgetItem(nil), v.s.st.items[eventID]...), nil
}

func (v *EventStore) ListActuals(ctx context.Context, eventID int64) ([]*event.Actual, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	return append([]*event.Actual(nil), v.s.st.actuals[eventID]...), nil
}

func (v *EventStore) ListAudit(ctx context.Context, eventID int64) ([]*event.AuditEntry, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	return append([]*event.AuditEntry(nil), v.s.st.audits[eventID]...), nil
}

// memTx implements ledger.Tx, report.Tx and event.Tx over a working copy of
// the state. The enclosing store lock serializes transactions, which mirrors
// the exclusivity the row locks give the postgres implementation.
type memTx struct {
	st *state
}

func (t *memTx) LockFund(ctx context.Context, fundID int64) (*fund.Fund, error) {
	f, ok := t.st.funds[fundID]
	if !ok {
		return nil, fund.ErrFundNotFound
	}
	return f, nil
}

func (t *memTx) FundExists(ctx context.Context, fundID int64) (bool, error) {
	_, ok := t.st.funds[fundID]
	return ok, nil
}

func (t *memTx) InsertEntry(ctx context.Context, params ledger.EntryParams, balance decimal.Decimal) (*ledger.Entry, error) {
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
		CreatedAt: time.Now().UTC(),
	}
	if params.Amount.IsPositive() {
		entry.AmountIn = params.Amount
	} else {
		entry.AmountOut = params.Amount.Neg()
	}
	t.st.entries = append(t.st.entries, entry)
	return entry, nil
}

func (t *memTx) UpdateFundBalance(ctx context.Context, fundID int64, balance decimal.Decimal) error {
	f, ok := t.st.funds[fundID]
	if !ok {
		return fund.ErrFundNotFound
	}
	f.Balance = balance
	f.UpdatedAt = time.Now().UTC()
	return nil
}

func (t *memTx) InsertMovement(ctx context.Context, params ledger.MovementParams) error {
	t.st.nextMoveID++
	t.st.movements = append(t.st.movements, &ledger.Movement{
		ID:         t.st.nextMoveID,
		TransferID: params.TransferID,
		FundID:     params.FundID,
		EntryID:    params.EntryID,
		Direction:  params.Direction,
		Amount:     params.Amount,
		CreatedAt:  time.Now().UTC(),
	})
	return nil
}

func (t *memTx) GetSnapshotForUpdate(ctx context.Context, reportID int64) (*report.Snapshot, error) {
	r, ok := t.st.reports[reportID]
	if !ok {
		return nil, report.ErrReportNotFound
	}
	return r, nil
}

func (t *memTx) MarkTransactionsCreated(ctx context.Context, reportID int64) error {
	r, ok := t.st.reports[reportID]
	if !ok {
		return report.ErrReportNotFound
	}
	r.TransactionsCreated = true
	return nil
}

func (t *memTx) FundIDByName(ctx context.Context, name string) (int64, error) {
	for _, f := range t.st.funds {
		if f.Name == name {
			return f.ID, nil
		}
	}
	return 0, fund.ErrFundNotFound
}

func (t *memTx) GetEventForUpdate(ctx context.Context, id int64) (*event.Event, error) {
	ev, ok := t.st.events[id]
	if !ok {
		return nil, event.ErrEventNotFound
	}
	cp := *ev
	return &cp, nil
}

func (t *memTx) UpdateEventStatus(ctx context.Context, id int64, status event.Status, approvedBy string) error {
	ev, ok := t.st.events[id]
	if !ok {
		return event.ErrEventNotFound
	}
	ev.Status = status
	if approvedBy != "" {
		ev.ApprovedBy = approvedBy
	}
	ev.UpdatedAt = time.Now().UTC()
	return nil
}

func (t *memTx) InsertAudit(ctx context.Context, params event.AuditParams) error {
	t.st.nextAuditID++
	t.st.audits[params.EventID] = append(t.st.audits[params.EventID], &event.AuditEntry{
		ID:         t.st.nextAuditID,
		EventID:    params.EventID,
		FromStatus: params.FromStatus,
		ToStatus:   params.ToStatus,
		Actor:      params.Actor,
		Comment:    params.Comment,
		CreatedAt:  time.Now().UTC(),
	})
	return nil
}

func (t *memTx) InsertBudgetItem(ctx context.Context, eventID int64, params event.BudgetItemParams) (*event.BudgetItem, error) {
	t.st.nextItemID++
	item := &event.BudgetItem{
		ID:          t.st.nextItemID,
		EventID:     eventID,
		Category:    params.Category,
		Description: params.Description,
		Projected:   params.Projected,
		CreatedAt:   time.Now().UTC(),
	}
	t.st.items[eventID] = append(t.st.items[eventID], item)
	return item, nil
}

func (t *memTx) UpdateBudgetItem(ctx context.Context, eventID, itemID int64, params event.BudgetItemParams) (*event.BudgetItem, error) {
	items := t.st.items[eventID]
	for i, item := range items {
		if item.ID == itemID {
			updated := *item
			updated.Category = params.Category
			updated.Description = params.Description
			updated.Projected = params.Projected
			items[i] = &updated
			return &updated, nil
		}
	}
	return nil, event.ErrItemNotFound
}

func (t *memTx) DeleteBudgetItem(ctx context.Context, eventID, itemID int64) error {
	items := t.st.items[eventID]
	for i, item := range items {
		if item.ID == itemID {
			t.st.items[eventID] = append(items[:i:i], items[i+1:]...)
			return nil
		}
	}
	return event.ErrItemNotFound
}

func (t *memTx) InsertActual(ctx context.Context, eventID int64, params event.ActualParams) (*event.Actual, error) {
	t.st.nextActual++
	actual := &event.Actual{
		ID:         t.st.nextActual,
		EventID:    eventID,
		Line:       params.Line,
		Concept:    params.Concept,
		Amount:     params.Amount,
		Date:       params.Date,
		ReceiptRef: params.ReceiptRef,
		CreatedAt:  time.Now().UTC(),
	}
	t.st.actuals[eventID] = append(t.st.actuals[eventID], actual)
	return actual, nil
}

func (t *memTx) ListActuals(ctx context.Context, eventID int64) ([]*event.Actual, error) {
	return append([]*event.Actual(nil), t.st.actuals[eventID]...), nil
}
