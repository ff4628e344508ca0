package lending

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Kind classifies a statement transaction. The parser maps the issuer's
// Norwegian labels onto this closed set; anything unrecognized becomes
// KindOther and only contributes to per-day net amounts.
type Kind string

const (
	KindAllocation      Kind = "allocation"
	KindInterest        Kind = "interest"
	KindInterestPenalty Kind = "interest_penalty"
	KindPrincipalRepaid Kind = "principal_repaid"
	KindOther           Kind = "other"
)

// LoanStatus is the derived lifecycle state of a loan.
type LoanStatus string

const (
	StatusAssigned LoanStatus = "assigned"
	StatusActive   LoanStatus = "active"
	StatusRepaid   LoanStatus = "repaid"
)

var (
	// ErrNoAllocation marks a loan that has transactions but no allocation
	// row. Its origination date is unknown, so the daily series cannot be
	// built without corrupting invested/cumulative figures.
	ErrNoAllocation = errors.New("loan has no allocation transaction")
)

// Transaction is one parsed statement row. Amounts are signed as recorded
// in the source: allocations are negative (cash out), interest and
// principal inflows are positive. Company, duration and rate come from the
// loan's block header and are identical across a loan's transactions.
type Transaction struct {
	Date           time.Time       `json:"date"`
	Kind           Kind            `json:"kind"`
	Label          string          `json:"label"`
	Amount         decimal.Decimal `json:"amount"`
	Currency       string          `json:"currency"`
	LoanID         int64           `json:"loan_id"`
	Company        string          `json:"company"`
	DurationMonths int             `json:"duration_months"`
	InterestRate   decimal.Decimal `json:"interest_rate"`
}

// DailyRecord is one calendar day of a loan's dense series, covering the
// closed interval from origination to max(last transaction, estimated
// maturity). Loan-constant fields are broadcast to every day.
type DailyRecord struct {
	Date           time.Time       `json:"date"`
	LoanID         int64           `json:"loan_id"`
	Company        string          `json:"company"`
	DurationMonths int             `json:"duration_months"`
	InterestRate   decimal.Decimal `json:"interest_rate"`

	Amount          decimal.Decimal `json:"amount"`
	InterestAmount  decimal.Decimal `json:"interest_amount"`
	PrincipalAmount decimal.Decimal `json:"principal_amount"`

	AccumulatedInterest    decimal.Decimal `json:"accumulated_interest"`
	Invested               decimal.Decimal `json:"invested"`
	IsRepaid               bool            `json:"is_repaid"`
	LastPaymentDate        time.Time       `json:"last_payment_date,omitempty"`
	EstimatedTotalInterest decimal.Decimal `json:"estimated_total_interest"`
	InterestReturnPct      decimal.Decimal `json:"interest_return_pct"`
}

// LoanSummary is the per-loan view reduced from the daily series.
type LoanSummary struct {
	LoanID         int64           `json:"loan_id"`
	Company        string          `json:"company"`
	DurationMonths int             `json:"duration_months"`
	InterestRate   decimal.Decimal `json:"interest_rate"`

	StartDate     time.Time `json:"start_date"`
	EndDate       time.Time `json:"end_date"`
	RepaymentDate time.Time `json:"repayment_date"`

	Invested               decimal.Decimal `json:"invested"`
	AccumulatedInterest    decimal.Decimal `json:"accumulated_interest"`
	EstimatedTotalInterest decimal.Decimal `json:"estimated_total_interest"`
	InterestReturnPct      decimal.Decimal `json:"interest_return_pct"`
	LastPaymentDate        time.Time       `json:"last_payment_date,omitempty"`
	Status                 LoanStatus      `json:"status"`
}

// CompanySummary aggregates a borrower's loans.
type CompanySummary struct {
	Company                string          `json:"company"`
	Loans                  int             `json:"loans"`
	Invested               decimal.Decimal `json:"invested"`
	AccumulatedInterest    decimal.Decimal `json:"accumulated_interest"`
	EstimatedTotalInterest decimal.Decimal `json:"estimated_total_interest"`
	InterestReturnPct      decimal.Decimal `json:"interest_return_pct"`
	AssignedLoans          int             `json:"assigned_loans"`
	ActiveLoans            int             `json:"active_loans"`
	RepaidLoans            int             `json:"repaid_loans"`
}

// MonthlySeries holds four parallel numeric series over an ascending
// calendar-month axis ("2006-01" keys).
type MonthlySeries struct {
	Months             []string          `json:"months"`
	InterestActual     []decimal.Decimal `json:"interest_actual"`
	PrincipalActual    []decimal.Decimal `json:"principal_actual"`
	InterestEstimated  []decimal.Decimal `json:"interest_estimated"`
	PrincipalEstimated []decimal.Decimal `json:"principal_estimated"`
}

// Forecast is the portfolio-wide monthly series plus a per-loan breakdown.
// Per-loan series share the portfolio's month axis so callers can sum an
// arbitrary subset of loans index-by-index.
type Forecast struct {
	Totals MonthlySeries            `json:"totals"`
	ByLoan map[int64]*MonthlySeries `json:"by_loan"`
}
