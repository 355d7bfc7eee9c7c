package report

import (
	"testing"

	"github.com/shopspring/decimal"

	"tesoro/internal/domain/fund"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCompute_WithholdingAndHonorarium(t *testing.T) {
	s := Snapshot{
		Tithes:    dec("1000000"),
		Offerings: dec("500000"),
	}

	totals := Compute(s)

	if !totals.CongregationalBase.Equal(dec("1500000")) {
		t.Errorf("base = %s, want 1500000", totals.CongregationalBase)
	}
	if !totals.NationalWithholding.Equal(dec("150000")) {
		t.Errorf("withholding = %s, want 150000", totals.NationalWithholding)
	}
	if !totals.PastoralHonorarium.Equal(dec("1350000")) {
		t.Errorf("honorarium = %s, want 1350000", totals.PastoralHonorarium)
	}
}

func TestCompute_WithholdingRoundsHalfUp(t *testing.T) {
	tests := []struct {
		tithes string
		want   string
	}{
		{"15", "2"},    // 1.5 rounds up
		{"14", "1"},    // 1.4 rounds down
		{"25", "3"},    // 2.5 rounds up
		{"1005", "101"}, // 100.5 rounds up
	}

	for _, tt := range tests {
		t.Run(tt.tithes, func(t *testing.T) {
			totals := Compute(Snapshot{Tithes: dec(tt.tithes)})
			if !totals.NationalWithholding.Equal(dec(tt.want)) {
				t.Errorf("withholding for %s = %s, want %s", tt.tithes, totals.NationalWithholding, tt.want)
			}
		})
	}
}

func TestCompute_HonorariumNeverNegative(t *testing.T) {
	s := Snapshot{
		Tithes: dec("100"),
		Expenses: OperatingExpenses{
			Utilities: dec("500"),
		},
	}

	totals := Compute(s)
	if !totals.PastoralHonorarium.IsZero() {
		t.Errorf("honorarium = %s, want 0", totals.PastoralHonorarium)
	}
}

func TestAllocate_SkipsZeroBuckets(t *testing.T) {
	s := Snapshot{
		Tithes:    dec("1000000"),
		Offerings: dec("500000"),
	}

	allocations := Allocate(s)
	if len(allocations) != 2 {
		t.Fatalf("allocations = %d, want 2", len(allocations))
	}

	if allocations[0].FundName != fund.NameNational {
		t.Errorf("first allocation fund = %q, want %q", allocations[0].FundName, fund.NameNational)
	}
	if !allocations[0].Amount.Equal(dec("150000")) {
		t.Errorf("withholding allocation = %s, want 150000", allocations[0].Amount)
	}
	if allocations[0].Unguarded {
		t.Error("withholding credit must stay guarded")
	}

	if allocations[1].FundName != fund.NameGeneral {
		t.Errorf("second allocation fund = %q, want %q", allocations[1].FundName, fund.NameGeneral)
	}
	if !allocations[1].Amount.Equal(dec("-1350000")) {
		t.Errorf("honorarium allocation = %s, want -1350000", allocations[1].Amount)
	}
	if !allocations[1].Unguarded {
		t.Error("honorarium debit must be unguarded")
	}
}

func TestAllocate_FullReport(t *testing.T) {
	s := Snapshot{
		Tithes:      dec("800000"),
		Offerings:   dec("200000"),
		OtherIncome: dec("50000"),
		Designated: DesignatedCollections{
			Missions: dec("30000"),
			Youth:    dec("20000"),
		},
		Expenses: OperatingExpenses{
			Utilities: dec("40000"),
			Supplies:  dec("10000"),
		},
	}

	allocations := Allocate(s)

	// Withholding, two designated credits, expenses, honorarium.
	if len(allocations) != 5 {
		t.Fatalf("allocations = %d, want 5", len(allocations))
	}

	byFund := make(map[string]decimal.Decimal)
	for _, a := range allocations {
		byFund[a.FundName] = byFund[a.FundName].Add(a.Amount)
	}
	if !byFund[fund.NameNational].Equal(dec("100000")) {
		t.Errorf("national = %s, want 100000", byFund[fund.NameNational])
	}
	if !byFund[fund.NameMissions].Equal(dec("30000")) {
		t.Errorf("missions = %s, want 30000", byFund[fund.NameMissions])
	}
	if !byFund[fund.NameYouth].Equal(dec("20000")) {
		t.Errorf("youth = %s, want 20000", byFund[fund.NameYouth])
	}
	// Expenses 50000 and honorarium 900000 both debit the general fund.
	if !byFund[fund.NameGeneral].Equal(dec("-950000")) {
		t.Errorf("general = %s, want -950000", byFund[fund.NameGeneral])
	}

	for _, a := range allocations {
		if a.FundName == fund.NameGeneral && !a.Unguarded {
			t.Errorf("general-fund debit %q must be unguarded", a.Concept)
		}
		if a.FundName != fund.NameGeneral && a.Unguarded {
			t.Errorf("credit %q must stay guarded", a.Concept)
		}
	}
}
