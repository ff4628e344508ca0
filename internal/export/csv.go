// Package export renders derived views as CSV for download and for the
// automatic export worker.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/TBoneMendez/kameo-dashboard/internal/lending"
)

const dateLayout = "2006-01-02"

// View names accepted by the CSV endpoints.
const (
	ViewByLoan    = "by_loan"
	ViewByCompany = "by_company"
	ViewDaily     = "daily"
)

// WriteView renders the named view of a dashboard as CSV.
func WriteView(w io.Writer, view string, d *lending.Dashboard) error {
	switch view {
	case ViewByLoan:
		return WriteLoanSummaries(w, d.Loans)
	case ViewByCompany:
		return WriteCompanySummaries(w, d.Companies)
	case ViewDaily:
		return WriteDailyRecords(w, d.Daily)
	default:
		return fmt.Errorf("unknown view %q", view)
	}
}

func WriteLoanSummaries(w io.Writer, loans []lending.LoanSummary) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{
		"loan_id", "company", "duration_months", "interest_rate",
		"start_date", "end_date", "repayment_date",
		"invested", "accumulated_interest", "estimated_total_interest",
		"interest_return_pct", "last_payment_date", "status",
	}); err != nil {
		return err
	}
	for _, l := range loans {
		if err := cw.Write([]string{
			strconv.FormatInt(l.LoanID, 10),
			l.Company,
			strconv.Itoa(l.DurationMonths),
			l.InterestRate.String(),
			formatDate(l.StartDate),
			formatDate(l.EndDate),
			formatDate(l.RepaymentDate),
			l.Invested.StringFixed(2),
			l.AccumulatedInterest.StringFixed(2),
			l.EstimatedTotalInterest.StringFixed(2),
			l.InterestReturnPct.StringFixed(1),
			formatDate(l.LastPaymentDate),
			string(l.Status),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func WriteCompanySummaries(w io.Writer, companies []lending.CompanySummary) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{
		"company", "loans", "assigned_loans", "active_loans", "repaid_loans",
		"invested", "accumulated_interest", "estimated_total_interest", "interest_return_pct",
	}); err != nil {
		return err
	}
	for _, c := range companies {
		if err := cw.Write([]string{
			c.Company,
			strconv.Itoa(c.Loans),
			strconv.Itoa(c.AssignedLoans),
			strconv.Itoa(c.ActiveLoans),
			strconv.Itoa(c.RepaidLoans),
			c.Invested.StringFixed(2),
			c.AccumulatedInterest.StringFixed(2),
			c.EstimatedTotalInterest.StringFixed(2),
			c.InterestReturnPct.StringFixed(1),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func WriteDailyRecords(w io.Writer, records []lending.DailyRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{
		"date", "loan_id", "company", "amount", "interest_amount", "principal_amount",
		"accumulated_interest", "invested", "is_repaid", "last_payment_date",
		"estimated_total_interest", "interest_return_pct",
	}); err != nil {
		return err
	}
	for _, r := range records {
		if err := cw.Write([]string{
			formatDate(r.Date),
			strconv.FormatInt(r.LoanID, 10),
			r.Company,
			r.Amount.StringFixed(2),
			r.InterestAmount.StringFixed(2),
			r.PrincipalAmount.StringFixed(2),
			r.AccumulatedInterest.StringFixed(2),
			r.Invested.StringFixed(2),
			strconv.FormatBool(r.IsRepaid),
			formatDate(r.LastPaymentDate),
			r.EstimatedTotalInterest.StringFixed(2),
			r.InterestReturnPct.StringFixed(1),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}
