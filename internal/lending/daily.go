package lending

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

var hundred = decimal.NewFromInt(100)

// Expand turns sparse transactions into a dense daily series per loan.
// Each loan's series covers every calendar day from its allocation date to
// max(last transaction date, start + duration months), so the axis always
// reaches scheduled maturity and stretches further when payments arrive
// late. Loans are independent and expanded concurrently.
//
// A loan without an allocation transaction has no origination date; Expand
// fails for it (wrapping ErrNoAllocation) instead of guessing, since a
// defaulted start would corrupt invested and cumulative figures.
func Expand(txs []Transaction) ([]DailyRecord, error) {
	byLoan := groupByLoan(txs)
	if len(byLoan) == 0 {
		return nil, nil
	}

	loanIDs := make([]int64, 0, len(byLoan))
	for id := range byLoan {
		loanIDs = append(loanIDs, id)
	}
	sort.Slice(loanIDs, func(i, j int) bool { return loanIDs[i] < loanIDs[j] })

	series := make([][]DailyRecord, len(loanIDs))
	var g errgroup.Group
	for i, id := range loanIDs {
		g.Go(func() error {
			recs, err := expandLoan(byLoan[id])
			if err != nil {
				return fmt.Errorf("loan %d: %w", id, err)
			}
			series[i] = recs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []DailyRecord
	for _, recs := range series {
		out = append(out, recs...)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Company != out[j].Company {
			return out[i].Company < out[j].Company
		}
		if out[i].LoanID != out[j].LoanID {
			return out[i].LoanID < out[j].LoanID
		}
		return out[i].Date.Before(out[j].Date)
	})
	return out, nil
}

func groupByLoan(txs []Transaction) map[int64][]Transaction {
	byLoan := make(map[int64][]Transaction)
	for _, tx := range txs {
		byLoan[tx.LoanID] = append(byLoan[tx.LoanID], tx)
	}
	return byLoan
}

func expandLoan(txs []Transaction) ([]DailyRecord, error) {
	meta := txs[0]

	var start, last, lastPayment time.Time
	invested := decimal.Zero
	repaidSum := decimal.Zero
	for _, tx := range txs {
		if tx.Date.After(last) {
			last = tx.Date
		}
		switch tx.Kind {
		case KindAllocation:
			if start.IsZero() || tx.Date.Before(start) {
				start = tx.Date
			}
			invested = invested.Sub(tx.Amount)
		case KindPrincipalRepaid:
			repaidSum = repaidSum.Add(tx.Amount)
		}
		switch tx.Kind {
		case KindInterest, KindInterestPenalty, KindPrincipalRepaid:
			if tx.Date.After(lastPayment) {
				lastPayment = tx.Date
			}
		}
	}
	if start.IsZero() {
		return nil, ErrNoAllocation
	}

	estimatedEnd := AddMonths(start, meta.DurationMonths)
	end := estimatedEnd
	if last.After(end) {
		end = last
	}

	isRepaid := invested.IsPositive() && repaidSum.GreaterThanOrEqual(invested)

	// Flat, non-compounding interest model: the annual rate applies
	// uniformly per month over the stated term regardless of the actual
	// amortization schedule. invested * rate * months / 1200 keeps the
	// figure exact in decimal arithmetic.
	estimatedTotal := invested.
		Mul(meta.InterestRate).
		Mul(decimal.NewFromInt(int64(meta.DurationMonths))).
		Div(decimal.NewFromInt(1200))

	amounts := make(map[time.Time]decimal.Decimal)
	interest := make(map[time.Time]decimal.Decimal)
	principal := make(map[time.Time]decimal.Decimal)
	for _, tx := range txs {
		amounts[tx.Date] = amounts[tx.Date].Add(tx.Amount)
		switch tx.Kind {
		case KindInterest, KindInterestPenalty:
			interest[tx.Date] = interest[tx.Date].Add(tx.Amount)
		case KindPrincipalRepaid:
			principal[tx.Date] = principal[tx.Date].Add(tx.Amount)
		}
	}

	var recs []DailyRecord
	accumulated := decimal.Zero
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		accumulated = accumulated.Add(interest[day])
		recs = append(recs, DailyRecord{
			Date:                   day,
			LoanID:                 meta.LoanID,
			Company:                meta.Company,
			DurationMonths:         meta.DurationMonths,
			InterestRate:           meta.InterestRate,
			Amount:                 amounts[day],
			InterestAmount:         interest[day],
			PrincipalAmount:        principal[day],
			AccumulatedInterest:    accumulated,
			Invested:               invested,
			IsRepaid:               isRepaid,
			LastPaymentDate:        lastPayment,
			EstimatedTotalInterest: estimatedTotal,
			InterestReturnPct:      returnPct(accumulated, estimatedTotal),
		})
	}
	return recs, nil
}

// returnPct is accumulated/estimated as a percentage, capped at 100 and
// defined as 0 when the estimate is 0.
func returnPct(accumulated, estimated decimal.Decimal) decimal.Decimal {
	if estimated.IsZero() {
		return decimal.Zero
	}
	ratio := accumulated.Div(estimated)
	if ratio.GreaterThan(decimal.NewFromInt(1)) {
		ratio = decimal.NewFromInt(1)
	}
	return ratio.Mul(hundred)
}

// AddMonths advances a date by whole calendar months, clamping the day to
// the target month's length (Jan 31 + 1 month = Feb 28/29), matching
// calendar-month arithmetic rather than fixed 30-day steps.
func AddMonths(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(months), 1, 0, 0, 0, 0, t.Location())
	if max := daysIn(first.Year(), first.Month()); d > max {
		d = max
	}
	return time.Date(first.Year(), first.Month(), d, 0, 0, 0, 0, t.Location())
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
