package event_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"tesoro/internal/domain/authz"
	"tesoro/internal/domain/event"
	"tesoro/internal/domain/fund"
	"tesoro/internal/domain/ledger"
	"tesoro/internal/infrastructure/memory"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func creator(fundIDs ...int64) authz.Identity {
	return authz.Identity{UserID: 10, Email: "ct@example.org", Role: authz.RoleChurchTreasurer, FundIDs: fundIDs}
}

func supervisor(fundIDs ...int64) authz.Identity {
	return authz.Identity{UserID: 20, Email: "fs@example.org", Role: authz.RoleFundSupervisor, FundIDs: fundIDs}
}

func newEventFixture(t *testing.T) (*memory.Store, *event.Service, *fund.Fund, *event.Event) {
	t.Helper()
	store := memory.NewStore()
	f := store.AddFund(fund.NameYouth, fund.TypeDesignated, dec("1000"))
	service := event.NewService(store.Events())

	ev, err := service.CreateEvent(context.Background(), creator(f.ID), event.CreateParams{
		FundID:    f.ID,
		Name:      "Youth camp",
		EventDate: time.Date(2026, 7, 10, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("CreateEvent() error = %v", err)
	}
	return store, service, f, ev
}

func TestService_CreateEvent(t *testing.T) {
	_, _, f, ev := newEventFixture(t)

	if ev.Status != event.StatusDraft {
		t.Errorf("status = %s, want %s", ev.Status, event.StatusDraft)
	}
	if ev.FundID != f.ID {
		t.Errorf("fund = %d, want %d", ev.FundID, f.ID)
	}
	if ev.CreatedBy != "ct@example.org" {
		t.Errorf("created by = %q", ev.CreatedBy)
	}
}

func TestService_CreateEvent_RequiresFundScope(t *testing.T) {
	store := memory.NewStore()
	f := store.AddFund(fund.NameYouth, fund.TypeDesignated, dec("0"))
	service := event.NewService(store.Events())

	// Scoped to a different fund.
	_, err := service.CreateEvent(context.Background(), creator(f.ID+1), event.CreateParams{
		FundID: f.ID, Name: "Youth camp", EventDate: time.Now(),
	})
	var denied *authz.DeniedError
	if !errors.As(err, &denied) {
		t.Fatalf("CreateEvent() error = %v, want DeniedError", err)
	}
	if denied.Reason != authz.DenialFundScope {
		t.Errorf("denial reason = %q, want %q", denied.Reason, authz.DenialFundScope)
	}

	// An empty scope grants nothing.
	_, err = service.CreateEvent(context.Background(), creator(), event.CreateParams{
		FundID: f.ID, Name: "Youth camp", EventDate: time.Now(),
	})
	if !errors.As(err, &denied) {
		t.Errorf("CreateEvent() with empty scope error = %v, want DeniedError", err)
	}
}

func TestService_BudgetItems_EditableStatusesOnly(t *testing.T) {
	_, service, f, ev := newEventFixture(t)
	ctx := context.Background()

	item, err := service.AddBudgetItem(ctx, creator(f.ID), ev.ID, event.BudgetItemParams{
		Category: "food", Description: "Meals", Projected: dec("300"),
	})
	if err != nil {
		t.Fatalf("AddBudgetItem() error = %v", err)
	}

	updated, err := service.UpdateBudgetItem(ctx, creator(f.ID), ev.ID, item.ID, event.BudgetItemParams{
		Category: "food", Description: "Meals and snacks", Projected: dec("350"),
	})
	if err != nil {
		t.Fatalf("UpdateBudgetItem() error = %v", err)
	}
	if !updated.Projected.Equal(dec("350")) {
		t.Errorf("projected = %s, want 350", updated.Projected)
	}

	if _, err := service.Submit(ctx, creator(f.ID), ev.ID, "ready"); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	// Submitted events are frozen.
	_, err = service.AddBudgetItem(ctx, creator(f.ID), ev.ID, event.BudgetItemParams{
		Category: "transport", Projected: dec("100"),
	})
	if !errors.Is(err, event.ErrEventNotEditable) {
		t.Errorf("AddBudgetItem() on submitted = %v, want %v", err, event.ErrEventNotEditable)
	}
	if err := service.RemoveBudgetItem(ctx, creator(f.ID), ev.ID, item.ID); !errors.Is(err, event.ErrEventNotEditable) {
		t.Errorf("RemoveBudgetItem() on submitted = %v, want %v", err, event.ErrEventNotEditable)
	}

	// Revision reopens editing.
	if _, err := service.RequestRevision(ctx, supervisor(), ev.ID, "budget too thin"); err != nil {
		t.Fatalf("RequestRevision() error = %v", err)
	}
	if err := service.RemoveBudgetItem(ctx, creator(f.ID), ev.ID, item.ID); err != nil {
		t.Errorf("RemoveBudgetItem() after revision = %v, want nil", err)
	}
}

func TestService_Approve_PostsActuals(t *testing.T) {
	store, service, f, ev := newEventFixture(t)
	ctx := context.Background()

	if _, err := service.AddActual(ctx, creator(f.ID), ev.ID, event.ActualParams{
		Line: event.LineIncome, Concept: "Registrations", Amount: dec("400"),
		Date: time.Date(2026, 7, 10, 0, 0, 0, 0, time.UTC),
	}); err != nil {
		t.Fatalf("AddActual() error = %v", err)
	}
	if _, err := service.AddActual(ctx, creator(f.ID), ev.ID, event.ActualParams{
		Line: event.LineExpense, Concept: "Bus rental", Amount: dec("250"),
		Date: time.Date(2026, 7, 11, 0, 0, 0, 0, time.UTC), ReceiptRef: "INV-77",
	}); err != nil {
		t.Fatalf("AddActual() error = %v", err)
	}
	if _, err := service.Submit(ctx, creator(f.ID), ev.ID, ""); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	result, err := service.Approve(ctx, supervisor(), ev.ID, "looks good")
	if err != nil {
		t.Fatalf("Approve() error = %v", err)
	}
	if result.EntriesPosted != 2 {
		t.Errorf("entries posted = %d, want 2", result.EntriesPosted)
	}
	if !result.FundBalance.Equal(dec("1150")) {
		t.Errorf("fund balance = %s, want 1150", result.FundBalance)
	}

	approved, _ := service.GetEvent(ctx, ev.ID)
	if approved.Status != event.StatusApproved {
		t.Errorf("status = %s, want %s", approved.Status, event.StatusApproved)
	}
	if approved.ApprovedBy != "fs@example.org" {
		t.Errorf("approved by = %q, want supervisor", approved.ApprovedBy)
	}

	// Each actual became one ledger entry carrying the event id.
	entries, _ := store.Ledger().EntriesByFund(ctx, f.ID, 10, 0)
	if len(entries) != 2 {
		t.Fatalf("ledger entries = %d, want 2", len(entries))
	}
	for _, e := range entries {
		if e.EventID == nil || *e.EventID != ev.ID {
			t.Errorf("entry %s is missing its event id", e.ID)
		}
	}

	// Actuals are frozen after approval.
	_, err = service.AddActual(ctx, creator(f.ID), ev.ID, event.ActualParams{
		Line: event.LineExpense, Concept: "Late invoice", Amount: dec("10"), Date: time.Now(),
	})
	if !errors.Is(err, event.ErrActualsLocked) {
		t.Errorf("AddActual() after approval = %v, want %v", err, event.ErrActualsLocked)
	}
}

func TestService_Approve_SeparationOfDuties(t *testing.T) {
	_, service, f, ev := newEventFixture(t)
	ctx := context.Background()

	if _, err := service.Submit(ctx, creator(f.ID), ev.ID, ""); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	// The creating role asking to approve is a capability problem, not a
	// scope problem.
	_, err := service.Approve(ctx, creator(f.ID), ev.ID, "approving my own event")
	var denied *authz.DeniedError
	if !errors.As(err, &denied) {
		t.Fatalf("Approve() error = %v, want DeniedError", err)
	}
	if denied.Reason != authz.DenialApprovalCapability {
		t.Errorf("denial reason = %q, want %q", denied.Reason, authz.DenialApprovalCapability)
	}

	// A supervisor scoped to other funds is out of scope.
	_, err = service.Approve(ctx, supervisor(f.ID+1), ev.ID, "")
	if !errors.As(err, &denied) {
		t.Fatalf("Approve() error = %v, want DeniedError", err)
	}
	if denied.Reason != authz.DenialFundScope {
		t.Errorf("denial reason = %q, want %q", denied.Reason, authz.DenialFundScope)
	}
}

func TestService_Approve_InsufficientFundsAborts(t *testing.T) {
	store := memory.NewStore()
	f := store.AddFund(fund.NameYouth, fund.TypeDesignated, dec("100"))
	service := event.NewService(store.Events())
	ctx := context.Background()

	ev, err := service.CreateEvent(ctx, creator(f.ID), event.CreateParams{
		FundID: f.ID, Name: "Retreat", EventDate: time.Now(),
	})
	if err != nil {
		t.Fatalf("CreateEvent() error = %v", err)
	}
	if _, err := service.AddActual(ctx, creator(f.ID), ev.ID, event.ActualParams{
		Line: event.LineExpense, Concept: "Venue", Amount: dec("500"), Date: time.Now(),
	}); err != nil {
		t.Fatalf("AddActual() error = %v", err)
	}
	if _, err := service.Submit(ctx, creator(f.ID), ev.ID, ""); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	_, err = service.Approve(ctx, supervisor(), ev.ID, "")
	var insufficient *ledger.InsufficientFundsError
	if !errors.As(err, &insufficient) {
		t.Fatalf("Approve() error = %v, want InsufficientFundsError", err)
	}

	// The whole approval rolled back: still submitted, balance untouched,
	// nothing posted.
	after, _ := service.GetEvent(ctx, ev.ID)
	if after.Status != event.StatusSubmitted {
		t.Errorf("status = %s, want %s", after.Status, event.StatusSubmitted)
	}
	current, _ := store.Fund(f.ID)
	if !current.Balance.Equal(dec("100")) {
		t.Errorf("balance = %s, want 100", current.Balance)
	}
	entries, _ := store.Ledger().EntriesByFund(ctx, f.ID, 10, 0)
	if len(entries) != 0 {
		t.Errorf("entries = %d, want 0", len(entries))
	}
}

func TestService_Approve_NotRepeatable(t *testing.T) {
	_, service, f, ev := newEventFixture(t)
	ctx := context.Background()

	if _, err := service.Submit(ctx, creator(f.ID), ev.ID, ""); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if _, err := service.Approve(ctx, supervisor(), ev.ID, ""); err != nil {
		t.Fatalf("Approve() error = %v", err)
	}

	_, err := service.Approve(ctx, supervisor(), ev.ID, "again")
	var transition *event.TransitionError
	if !errors.As(err, &transition) {
		t.Fatalf("second Approve() error = %v, want TransitionError", err)
	}
	if transition.From != event.StatusApproved {
		t.Errorf("transition from = %s, want %s", transition.From, event.StatusApproved)
	}
}

func TestService_Reject_Terminal(t *testing.T) {
	_, service, f, ev := newEventFixture(t)
	ctx := context.Background()

	if _, err := service.Submit(ctx, creator(f.ID), ev.ID, ""); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	rejected, err := service.Reject(ctx, supervisor(), ev.ID, "not this year")
	if err != nil {
		t.Fatalf("Reject() error = %v", err)
	}
	if rejected.Status != event.StatusRejected {
		t.Errorf("status = %s, want %s", rejected.Status, event.StatusRejected)
	}

	_, err = service.Submit(ctx, creator(f.ID), ev.ID, "please")
	var transition *event.TransitionError
	if !errors.As(err, &transition) {
		t.Errorf("Submit() after rejection = %v, want TransitionError", err)
	}
}

func TestService_AuditTrail(t *testing.T) {
	_, service, f, ev := newEventFixture(t)
	ctx := context.Background()

	if _, err := service.Submit(ctx, creator(f.ID), ev.ID, "first pass"); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if _, err := service.RequestRevision(ctx, supervisor(), ev.ID, "needs detail"); err != nil {
		t.Fatalf("RequestRevision() error = %v", err)
	}
	if _, err := service.Submit(ctx, creator(f.ID), ev.ID, "second pass"); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if _, err := service.Approve(ctx, supervisor(), ev.ID, "good"); err != nil {
		t.Fatalf("Approve() error = %v", err)
	}

	audit, err := service.ListAudit(ctx, ev.ID)
	if err != nil {
		t.Fatalf("ListAudit() error = %v", err)
	}
	if len(audit) != 4 {
		t.Fatalf("audit entries = %d, want 4", len(audit))
	}

	want := []struct {
		from  event.Status
		to    event.Status
		actor string
	}{
		{event.StatusDraft, event.StatusSubmitted, "ct@example.org"},
		{event.StatusSubmitted, event.StatusPendingRevision, "fs@example.org"},
		{event.StatusPendingRevision, event.StatusSubmitted, "ct@example.org"},
		{event.StatusSubmitted, event.StatusApproved, "fs@example.org"},
	}
	for i, w := range want {
		got := audit[i]
		if got.FromStatus != w.from || got.ToStatus != w.to || got.Actor != w.actor {
			t.Errorf("audit[%d] = %s->%s by %q, want %s->%s by %q",
				i, got.FromStatus, got.ToStatus, got.Actor, w.from, w.to, w.actor)
		}
	}
}
