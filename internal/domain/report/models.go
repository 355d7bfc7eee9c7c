package report

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Domain errors
var (
	ErrReportNotFound = errors.New("monthly report not found")
)

// DesignatedCollections are the earmarked offering categories a church
// reports each month. Each category feeds the fund of the same name.
type DesignatedCollections struct {
	Missions       decimal.Decimal `json:"missions"`
	WomensUnion    decimal.Decimal `json:"womensUnion"`
	MensFellowship decimal.Decimal `json:"mensFellowship"`
	Youth          decimal.Decimal `json:"youth"`
	Children       decimal.Decimal `json:"children"`
	BibleInstitute decimal.Decimal `json:"bibleInstitute"`
	Evangelism     decimal.Decimal `json:"evangelism"`
	SocialAid      decimal.Decimal `json:"socialAid"`
}

// Total sums every designated category.
func (d DesignatedCollections) Total() decimal.Decimal {
	total := decimal.Zero
	for _, amount := range []decimal.Decimal{
		d.Missions, d.WomensUnion, d.MensFellowship, d.Youth,
		d.Children, d.BibleInstitute, d.Evangelism, d.SocialAid,
	} {
		total = total.Add(amount)
	}
	return total
}

// OperatingExpenses are the recognized local expense categories.
type OperatingExpenses struct {
	Utilities     decimal.Decimal `json:"utilities"`
	Maintenance   decimal.Decimal `json:"maintenance"`
	Supplies      decimal.Decimal `json:"supplies"`
	Miscellaneous decimal.Decimal `json:"miscellaneous"`
}

// Total sums every operating-expense category.
func (o OperatingExpenses) Total() decimal.Decimal {
	return o.Utilities.Add(o.Maintenance).Add(o.Supplies).Add(o.Miscellaneous)
}

// Snapshot is a finalized monthly report as consumed by the compiler: an
// immutable view of the figures at approval time. The compiler owns exactly
// one lifecycle field, the transactions-created flag.
type Snapshot struct {
	ID          int64                 `json:"id"`
	ChurchID    int64                 `json:"churchId"`
	Month       int                   `json:"month"`
	Year        int                   `json:"year"`
	Tithes      decimal.Decimal       `json:"tithes"`
	Offerings   decimal.Decimal       `json:"offerings"`
	OtherIncome decimal.Decimal       `json:"otherIncome"`
	AnnexIncome decimal.Decimal       `json:"annexIncome"`
	Designated  DesignatedCollections `json:"designated"`
	Expenses    OperatingExpenses     `json:"expenses"`

	// Deposit metadata, uninterpreted by the compiler.
	DepositReceipt string     `json:"depositReceipt,omitempty"`
	DepositDate    *time.Time `json:"depositDate,omitempty"`

	TransactionsCreated bool `json:"transactionsCreated"`
}

// Result is the outcome of compiling one report.
type Result struct {
	ReportID      int64  `json:"reportId"`
	ApprovedBy    string `json:"approvedBy"`
	EntriesPosted int    `json:"entriesPosted"`
	// AlreadyPosted marks the idempotent no-op when the report was
	// compiled earlier: a success, not an error.
	AlreadyPosted bool `json:"alreadyPosted"`
}
