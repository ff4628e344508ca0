package lending

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

const monthKeyLayout = "2006-01"

var fiveHundred = decimal.NewFromInt(500)

// ForecastMonthly builds the monthly actual/estimated cash-flow series for
// the portfolio and per loan. "Current month" is derived from today, which
// callers must supply explicitly (defaulting to wall-clock time is the
// caller's choice, never this package's).
//
// Actuals sum the absolute interest(+penalty) and principal amounts of
// every month present in the transaction history. Estimates are computed
// per non-repaid loan: the remaining principal is spread over the loan's
// remaining scheduled months in 500-rounded installments, with the final
// month absorbing rounding drift so the installments reconcile exactly;
// interest is estimated flat at invested*rate/1200 per month. The current
// month's estimates are reduced by its already-recorded actuals (floored
// at zero) so combined actual+estimate charts never double count; the
// correction is applied once, per loan, and the portfolio series is the
// sum of the corrected per-loan series.
func ForecastMonthly(txs []Transaction, records []DailyRecord, today time.Time) Forecast {
	currentMonth := monthStart(today)

	interestActual, principalActual := monthlyActuals(txs)
	loanInterestActual, loanPrincipalActual := monthlyActualsByLoan(txs)

	byLoanDaily := make(map[int64][]DailyRecord)
	for _, r := range records {
		byLoanDaily[r.LoanID] = append(byLoanDaily[r.LoanID], r)
	}

	type loanEstimate struct {
		interest  map[string]decimal.Decimal
		principal map[string]decimal.Decimal
	}
	estimates := make(map[int64]loanEstimate, len(byLoanDaily))
	for id, series := range byLoanDaily {
		est := estimateLoan(series, loanTxs(txs, id), currentMonth)
		applyOverlapCorrection(est.interest, loanInterestActual[id], currentMonth)
		applyOverlapCorrection(est.principal, loanPrincipalActual[id], currentMonth)
		estimates[id] = loanEstimate{interest: est.interest, principal: est.principal}
	}

	// Month axis: outer join of actual months and every loan's estimate
	// months, ascending.
	monthSet := make(map[string]struct{})
	for m := range interestActual {
		monthSet[m] = struct{}{}
	}
	for m := range principalActual {
		monthSet[m] = struct{}{}
	}
	for _, est := range estimates {
		for m := range est.interest {
			monthSet[m] = struct{}{}
		}
		for m := range est.principal {
			monthSet[m] = struct{}{}
		}
	}
	months := make([]string, 0, len(monthSet))
	for m := range monthSet {
		months = append(months, m)
	}
	sort.Strings(months)

	totals := newMonthlySeries(months)
	byLoan := make(map[int64]*MonthlySeries, len(byLoanDaily))
	for id := range byLoanDaily {
		byLoan[id] = newMonthlySeries(months)
	}

	for i, m := range months {
		totals.InterestActual[i] = interestActual[m]
		totals.PrincipalActual[i] = principalActual[m]
		for id, series := range byLoan {
			series.InterestActual[i] = loanInterestActual[id][m]
			series.PrincipalActual[i] = loanPrincipalActual[id][m]
			series.InterestEstimated[i] = estimates[id].interest[m]
			series.PrincipalEstimated[i] = estimates[id].principal[m]
			totals.InterestEstimated[i] = totals.InterestEstimated[i].Add(series.InterestEstimated[i])
			totals.PrincipalEstimated[i] = totals.PrincipalEstimated[i].Add(series.PrincipalEstimated[i])
		}
	}

	return Forecast{Totals: *totals, ByLoan: byLoan}
}

type estimate struct {
	interest  map[string]decimal.Decimal
	principal map[string]decimal.Decimal
}

// estimateLoan projects one loan's future interest and principal payments.
// Repaid loans contribute nothing.
func estimateLoan(series []DailyRecord, txs []Transaction, currentMonth time.Time) estimate {
	est := estimate{
		interest:  make(map[string]decimal.Decimal),
		principal: make(map[string]decimal.Decimal),
	}

	sort.SliceStable(series, func(i, j int) bool { return series[i].Date.Before(series[j].Date) })
	meta := series[0]
	if meta.IsRepaid {
		return est
	}

	// Schedule anchor: the month of the first interest payment, else the
	// month of the series start.
	schedStart := meta.Date
	if first, ok := firstWhere(series, func(r DailyRecord) bool { return !r.InterestAmount.IsZero() }); ok {
		schedStart = first
	}
	schedStart = monthStart(schedStart)

	var future []time.Time
	for i := 0; i < meta.DurationMonths; i++ {
		m := AddMonths(schedStart, i)
		if !m.Before(currentMonth) {
			future = append(future, m)
		}
	}
	if len(future) == 0 {
		return est
	}

	remaining := meta.Invested
	for _, tx := range txs {
		if tx.Kind == KindPrincipalRepaid && tx.Date.Before(currentMonth) {
			remaining = remaining.Sub(tx.Amount)
		}
	}
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}

	var base decimal.Decimal
	if len(future) > 1 {
		base = roundToNearest500(remaining.Div(decimal.NewFromInt(int64(len(future)))))
	}

	// Explicit remainder walk: every installment is rounded, the last one
	// takes whatever is left so the schedule reconciles exactly.
	monthlyInterest := meta.Invested.Mul(meta.InterestRate).Div(decimal.NewFromInt(1200))
	for i, m := range future {
		var payment decimal.Decimal
		if i == len(future)-1 {
			payment = remaining
		} else {
			payment = roundToNearest500(decimal.Min(remaining, base))
		}
		if payment.IsNegative() {
			payment = decimal.Zero
		}
		remaining = remaining.Sub(payment)

		key := m.Format(monthKeyLayout)
		est.principal[key] = payment
		est.interest[key] = monthlyInterest
	}
	return est
}

// applyOverlapCorrection subtracts the current month's recorded actuals
// from its estimate, floored at zero.
func applyOverlapCorrection(est map[string]decimal.Decimal, actuals map[string]decimal.Decimal, currentMonth time.Time) {
	key := currentMonth.Format(monthKeyLayout)
	v, ok := est[key]
	if !ok {
		return
	}
	v = v.Sub(actuals[key])
	if v.IsNegative() {
		v = decimal.Zero
	}
	est[key] = v
}

func monthlyActuals(txs []Transaction) (interest, principal map[string]decimal.Decimal) {
	interest = make(map[string]decimal.Decimal)
	principal = make(map[string]decimal.Decimal)
	for _, tx := range txs {
		key := tx.Date.Format(monthKeyLayout)
		switch tx.Kind {
		case KindInterest, KindInterestPenalty:
			interest[key] = interest[key].Add(tx.Amount.Abs())
		case KindPrincipalRepaid:
			principal[key] = principal[key].Add(tx.Amount.Abs())
		}
	}
	return interest, principal
}

func monthlyActualsByLoan(txs []Transaction) (interest, principal map[int64]map[string]decimal.Decimal) {
	interest = make(map[int64]map[string]decimal.Decimal)
	principal = make(map[int64]map[string]decimal.Decimal)
	for _, tx := range txs {
		key := tx.Date.Format(monthKeyLayout)
		switch tx.Kind {
		case KindInterest, KindInterestPenalty:
			if interest[tx.LoanID] == nil {
				interest[tx.LoanID] = make(map[string]decimal.Decimal)
			}
			interest[tx.LoanID][key] = interest[tx.LoanID][key].Add(tx.Amount.Abs())
		case KindPrincipalRepaid:
			if principal[tx.LoanID] == nil {
				principal[tx.LoanID] = make(map[string]decimal.Decimal)
			}
			principal[tx.LoanID][key] = principal[tx.LoanID][key].Add(tx.Amount.Abs())
		}
	}
	return interest, principal
}

func loanTxs(txs []Transaction, loanID int64) []Transaction {
	var out []Transaction
	for _, tx := range txs {
		if tx.LoanID == loanID {
			out = append(out, tx)
		}
	}
	return out
}

func newMonthlySeries(months []string) *MonthlySeries {
	zeros := func() []decimal.Decimal {
		s := make([]decimal.Decimal, len(months))
		for i := range s {
			s[i] = decimal.Zero
		}
		return s
	}
	return &MonthlySeries{
		Months:             append([]string(nil), months...),
		InterestActual:     zeros(),
		PrincipalActual:    zeros(),
		InterestEstimated:  zeros(),
		PrincipalEstimated: zeros(),
	}
}

// roundToNearest500 rounds to the nearest 500 currency units, half away
// from zero (decimal's Round rule).
func roundToNearest500(x decimal.Decimal) decimal.Decimal {
	return x.Div(fiveHundred).Round(0).Mul(fiveHundred)
}

func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}
