package report

import (
	"github.com/shopspring/decimal"

	"tesoro/internal/domain/fund"
)

// NationalWithholdingRate is fixed system policy: 10% of tithes plus
// offerings is automatically routed to the national fund.
var NationalWithholdingRate = decimal.RequireFromString("0.10")

// Allocation is one bucket of a compiled report: a signed amount destined
// for a well-known fund. Positive credits the fund, negative debits it.
type Allocation struct {
	FundName string
	Amount   decimal.Decimal
	Concept  string
	// Unguarded marks bookkeeping debits that mirror money already spent
	// at the church level; those skip the non-negative-balance check.
	Unguarded bool
}

// Totals breaks out the intermediate figures of a compilation, mostly for
// display and reconciliation.
type Totals struct {
	CongregationalBase    decimal.Decimal `json:"congregationalBase"`
	NationalWithholding   decimal.Decimal `json:"nationalWithholding"`
	DesignatedTotal       decimal.Decimal `json:"designatedTotal"`
	OperatingExpenseTotal decimal.Decimal `json:"operatingExpenseTotal"`
	TotalIncome           decimal.Decimal `json:"totalIncome"`
	PastoralHonorarium    decimal.Decimal `json:"pastoralHonorarium"`
}

// Compute derives the fixed-formula totals from a report snapshot.
func Compute(s Snapshot) Totals {
	base := s.Tithes.Add(s.Offerings)
	withholding := base.Mul(NationalWithholdingRate).Round(0)
	designated := s.Designated.Total()
	operating := s.Expenses.Total()
	totalIncome := base.Add(s.OtherIncome).Add(s.AnnexIncome).Add(designated)

	// The honorarium is a residual, never entered and never negative.
	honorarium := totalIncome.Sub(designated).Sub(operating).Sub(withholding)
	if honorarium.IsNegative() {
		honorarium = decimal.Zero
	}

	return Totals{
		CongregationalBase:    base,
		NationalWithholding:   withholding,
		DesignatedTotal:       designated,
		OperatingExpenseTotal: operating,
		TotalIncome:           totalIncome,
		PastoralHonorarium:    honorarium,
	}
}

// Allocate turns a report snapshot into the list of ledger postings it
// requires: the national withholding, one credit per non-zero designated
// category, the operating expenses, and the pastoral honorarium. Zero
// buckets produce no allocation. Pure; the transactional posting step lives
// in the service.
func Allocate(s Snapshot) []Allocation {
	t := Compute(s)
	var allocations []Allocation

	add := func(fundName string, amount decimal.Decimal, concept string, unguarded bool) {
		if amount.IsZero() {
			return
		}
		allocations = append(allocations, Allocation{
			FundName:  fundName,
			Amount:    amount,
			Concept:   concept,
			Unguarded: unguarded,
		})
	}

	add(fund.NameNational, t.NationalWithholding, "National withholding 10%", false)

	for _, dc := range []struct {
		fundName string
		amount   decimal.Decimal
		concept  string
	}{
		{fund.NameMissions, s.Designated.Missions, "Designated collection: missions"},
		{fund.NameWomensUnion, s.Designated.WomensUnion, "Designated collection: women's union"},
		{fund.NameMensFellow, s.Designated.MensFellowship, "Designated collection: men's fellowship"},
		{fund.NameYouth, s.Designated.Youth, "Designated collection: youth"},
		{fund.NameChildren, s.Designated.Children, "Designated collection: children"},
		{fund.NameBibleInst, s.Designated.BibleInstitute, "Designated collection: bible institute"},
		{fund.NameEvangelism, s.Designated.Evangelism, "Designated collection: evangelism"},
		{fund.NameSocialAid, s.Designated.SocialAid, "Designated collection: social aid"},
	} {
		add(dc.fundName, dc.amount, dc.concept, false)
	}

	add(fund.NameGeneral, t.OperatingExpenseTotal.Neg(), "Operating expenses", true)
	add(fund.NameGeneral, t.PastoralHonorarium.Neg(), "Pastoral honorarium", true)

	return allocations
}
