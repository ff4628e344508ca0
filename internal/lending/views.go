package lending

import (
	"sort"
	"time"
)

// Aggregate reduces a daily series into per-loan and per-company summaries.
// Empty input yields empty, well-typed results.
func Aggregate(records []DailyRecord) ([]LoanSummary, []CompanySummary) {
	byLoan := make(map[int64][]DailyRecord)
	for _, r := range records {
		byLoan[r.LoanID] = append(byLoan[r.LoanID], r)
	}

	loans := make([]LoanSummary, 0, len(byLoan))
	for _, series := range byLoan {
		loans = append(loans, summarizeLoan(series))
	}
	sort.Slice(loans, func(i, j int) bool { return loans[i].LoanID < loans[j].LoanID })

	return loans, summarizeCompanies(loans)
}

func summarizeLoan(series []DailyRecord) LoanSummary {
	sort.SliceStable(series, func(i, j int) bool { return series[i].Date.Before(series[j].Date) })

	head := series[0]
	tail := series[len(series)-1]

	// Economic activity start: the first interest payment when one exists,
	// otherwise the first day of the series (the origination date).
	startDate := head.Date
	if first, ok := firstWhere(series, func(r DailyRecord) bool { return !r.InterestAmount.IsZero() }); ok {
		startDate = first
	}

	summary := LoanSummary{
		LoanID:                 head.LoanID,
		Company:                head.Company,
		DurationMonths:         head.DurationMonths,
		InterestRate:           head.InterestRate,
		StartDate:              startDate,
		EndDate:                AddMonths(startDate, head.DurationMonths),
		RepaymentDate:          repaymentDate(series),
		Invested:               tail.Invested,
		AccumulatedInterest:    tail.AccumulatedInterest,
		EstimatedTotalInterest: tail.EstimatedTotalInterest,
		InterestReturnPct:      tail.InterestReturnPct,
		LastPaymentDate:        tail.LastPaymentDate,
	}
	summary.Status = loanStatus(tail.IsRepaid, summary)
	return summary
}

// repaymentDate infers when a loan is (or should be) fully repaid, first
// match wins:
//  1. the latest day with an actual principal repayment;
//  2. else the first interest day plus the loan duration;
//  3. else the first day overall plus the loan duration.
func repaymentDate(series []DailyRecord) time.Time {
	duration := series[0].DurationMonths

	var lastPrincipal time.Time
	for _, r := range series {
		if !r.PrincipalAmount.IsZero() {
			lastPrincipal = r.Date
		}
	}
	if !lastPrincipal.IsZero() {
		return lastPrincipal
	}

	if first, ok := firstWhere(series, func(r DailyRecord) bool { return !r.InterestAmount.IsZero() }); ok {
		return AddMonths(first, duration)
	}
	return AddMonths(series[0].Date, duration)
}

// loanStatus: repaid wins; a loan with no payment activity beyond its
// allocation is merely assigned; anything else is active.
func loanStatus(isRepaid bool, s LoanSummary) LoanStatus {
	switch {
	case isRepaid:
		return StatusRepaid
	case s.LastPaymentDate.IsZero() || s.AccumulatedInterest.IsZero():
		return StatusAssigned
	default:
		return StatusActive
	}
}

func summarizeCompanies(loans []LoanSummary) []CompanySummary {
	byCompany := make(map[string]*CompanySummary)
	for _, l := range loans {
		c, ok := byCompany[l.Company]
		if !ok {
			c = &CompanySummary{Company: l.Company}
			byCompany[l.Company] = c
		}
		c.Loans++
		c.Invested = c.Invested.Add(l.Invested)
		c.AccumulatedInterest = c.AccumulatedInterest.Add(l.AccumulatedInterest)
		c.EstimatedTotalInterest = c.EstimatedTotalInterest.Add(l.EstimatedTotalInterest)
		switch l.Status {
		case StatusAssigned:
			c.AssignedLoans++
		case StatusActive:
			c.ActiveLoans++
		case StatusRepaid:
			c.RepaidLoans++
		}
	}

	out := make([]CompanySummary, 0, len(byCompany))
	for _, c := range byCompany {
		if !c.EstimatedTotalInterest.IsZero() {
			c.InterestReturnPct = c.AccumulatedInterest.Div(c.EstimatedTotalInterest).Mul(hundred)
		}
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Company < out[j].Company })
	return out
}

func firstWhere(series []DailyRecord, pred func(DailyRecord) bool) (time.Time, bool) {
	for _, r := range series {
		if pred(r) {
			return r.Date, true
		}
	}
	return time.Time{}, false
}
