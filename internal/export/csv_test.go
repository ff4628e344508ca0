package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/TBoneMendez/kameo-dashboard/internal/lending"
	"github.com/shopspring/decimal"
)

func sampleLoan() lending.LoanSummary {
	return lending.LoanSummary{
		LoanID:                 1001,
		Company:                "Acme AS",
		DurationMonths:         12,
		InterestRate:           decimal.RequireFromString("8.5"),
		StartDate:              time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:                time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		RepaymentDate:          time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Invested:               decimal.NewFromInt(10000),
		AccumulatedInterest:    decimal.RequireFromString("425.5"),
		EstimatedTotalInterest: decimal.NewFromInt(850),
		InterestReturnPct:      decimal.RequireFromString("50.06"),
		Status:                 lending.StatusActive,
	}
}

func TestWriteLoanSummaries(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteLoanSummaries(&buf, []lending.LoanSummary{sampleLoan()}); err != nil {
		t.Fatalf("WriteLoanSummaries() error = %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("reading produced CSV: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want header + 1", len(rows))
	}
	if rows[0][0] != "loan_id" || rows[0][len(rows[0])-1] != "status" {
		t.Errorf("unexpected header: %v", rows[0])
	}

	row := rows[1]
	if row[0] != "1001" || row[1] != "Acme AS" {
		t.Errorf("row = %v", row)
	}
	if row[7] != "10000.00" {
		t.Errorf("invested column = %q, want 10000.00", row[7])
	}
	if row[11] != "" {
		t.Errorf("zero last payment date column = %q, want empty", row[11])
	}
	if row[12] != "active" {
		t.Errorf("status column = %q, want active", row[12])
	}
}

func TestWriteCompanySummaries(t *testing.T) {
	var buf bytes.Buffer
	companies := []lending.CompanySummary{{
		Company:                "Acme AS",
		Loans:                  2,
		ActiveLoans:            1,
		RepaidLoans:            1,
		Invested:               decimal.NewFromInt(20000),
		AccumulatedInterest:    decimal.NewFromInt(425),
		EstimatedTotalInterest: decimal.NewFromInt(850),
		InterestReturnPct:      decimal.NewFromInt(50),
	}}
	if err := WriteCompanySummaries(&buf, companies); err != nil {
		t.Fatalf("WriteCompanySummaries() error = %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("reading produced CSV: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want header + 1", len(rows))
	}
	if rows[1][0] != "Acme AS" || rows[1][1] != "2" || rows[1][8] != "50.0" {
		t.Errorf("row = %v", rows[1])
	}
}

func TestWriteView_UnknownView(t *testing.T) {
	var buf bytes.Buffer
	err := WriteView(&buf, "bogus", &lending.Dashboard{})
	if err == nil || !strings.Contains(err.Error(), "unknown view") {
		t.Fatalf("WriteView() error = %v, want unknown view", err)
	}
}

func TestWriteView_Daily(t *testing.T) {
	raw := "Acme AS - 1001 | Løpetid: 1 m | Rente: 12,0%\n" +
		"Dato\tTransaksjon\tBeløp\tValuta\tKurs\tBeløp i NOK\n" +
		"2023-01-01\tTildeling\t-10 000,00\tNOK\t\t-10 000,00\n"
	d, err := lending.BuildDashboard(raw, time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("BuildDashboard() error = %v", err)
	}

	var buf bytes.Buffer
	if err := WriteView(&buf, ViewDaily, d); err != nil {
		t.Fatalf("WriteView(daily) error = %v", err)
	}
	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("reading produced CSV: %v", err)
	}
	// Header plus one row per day from 2023-01-01 through 2023-02-01.
	if want := 1 + 32; len(rows) != want {
		t.Errorf("got %d rows, want %d", len(rows), want)
	}
}
