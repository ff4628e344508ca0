package lending

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

const singleLoanStatement = "Acme AS - 1001 | Løpetid: 12 m | Rente: 8,5%\n" +
	"Dato\tTransaksjon\tBeløp\tValuta\tKurs\tBeløp i NOK\n" +
	"2023-01-01\tTildeling\t-10 000,00\tNOK\t\t-10 000,00\n" +
	"Totale renteinntekter\t850,00\n"

func TestParseDecimalNO(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		want  string
		isErr bool
	}{
		{name: "plain", in: "1234.50", want: "1234.5"},
		{name: "comma decimal", in: "1234,50", want: "1234.5"},
		{name: "nbsp thousands separator", in: "1 234,50", want: "1234.5"},
		{name: "space thousands separator", in: "1 234,50", want: "1234.5"},
		{name: "unicode minus", in: "−500,00", want: "-500"},
		{name: "bare dash is zero", in: "-", want: "0"},
		{name: "empty is zero", in: "", want: "0"},
		{name: "whitespace only is zero", in: "   ", want: "0"},
		{name: "garbage", in: "abc", isErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDecimalNO(tt.in)
			if tt.isErr {
				if err == nil {
					t.Fatalf("ParseDecimalNO(%q) error = nil, want error", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDecimalNO(%q) error = %v", tt.in, err)
			}
			if got.String() != tt.want {
				t.Errorf("ParseDecimalNO(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestParse_SingleLoan(t *testing.T) {
	txs := Parse(singleLoanStatement)
	if len(txs) != 1 {
		t.Fatalf("Parse() returned %d transactions, want 1", len(txs))
	}

	tx := txs[0]
	if tx.Company != "Acme AS" {
		t.Errorf("Company = %q, want %q", tx.Company, "Acme AS")
	}
	if tx.LoanID != 1001 {
		t.Errorf("LoanID = %d, want 1001", tx.LoanID)
	}
	if tx.DurationMonths != 12 {
		t.Errorf("DurationMonths = %d, want 12", tx.DurationMonths)
	}
	if !tx.InterestRate.Equal(decimal.RequireFromString("8.5")) {
		t.Errorf("InterestRate = %s, want 8.5", tx.InterestRate)
	}
	if tx.Kind != KindAllocation {
		t.Errorf("Kind = %s, want %s", tx.Kind, KindAllocation)
	}
	if !tx.Amount.Equal(decimal.NewFromInt(-10000)) {
		t.Errorf("Amount = %s, want -10000", tx.Amount)
	}
	if tx.Currency != "NOK" {
		t.Errorf("Currency = %q, want NOK", tx.Currency)
	}
	want := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	if !tx.Date.Equal(want) {
		t.Errorf("Date = %v, want %v", tx.Date, want)
	}
}

func TestParse_EmptyInput(t *testing.T) {
	for _, raw := range []string{"", "   \n\t\n"} {
		if txs := Parse(raw); len(txs) != 0 {
			t.Errorf("Parse(%q) = %d transactions, want 0", raw, len(txs))
		}
	}
}

func TestParse_Idempotent(t *testing.T) {
	a := Parse(singleLoanStatement)
	b := Parse(singleLoanStatement)
	if len(a) != len(b) {
		t.Fatalf("parse not idempotent: %d vs %d transactions", len(a), len(b))
	}
	for i := range a {
		if a[i].LoanID != b[i].LoanID || !a[i].Date.Equal(b[i].Date) || !a[i].Amount.Equal(b[i].Amount) {
			t.Errorf("transaction %d differs between runs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestParse_SpaceAlignedRows(t *testing.T) {
	raw := "Acme AS - 1001 | Løpetid: 12 m | Rente: 8,5%\n" +
		"Dato   Transaksjon   Beløp   Valuta   Kurs   Beløp i NOK\n" +
		"2023-02-01   Renteinntekt   70,83   NOK      70,83\n"

	txs := Parse(raw)
	if len(txs) != 1 {
		t.Fatalf("Parse() returned %d transactions, want 1", len(txs))
	}
	if txs[0].Kind != KindInterest {
		t.Errorf("Kind = %s, want %s", txs[0].Kind, KindInterest)
	}
	if !txs[0].Amount.Equal(decimal.RequireFromString("70.83")) {
		t.Errorf("Amount = %s, want 70.83", txs[0].Amount)
	}
}

func TestParse_PrefersNOKAmount(t *testing.T) {
	raw := "Acme AS - 1001 | Løpetid: 12 m | Rente: 8,5%\n" +
		"Dato\tTransaksjon\tBeløp\tValuta\tKurs\tBeløp i NOK\n" +
		"2023-02-01\tRenteinntekt\t6,50\tSEK\t0,95\t6,18\n" +
		"2023-03-01\tRenteinntekt\t6,50\tSEK\t\t\n"

	txs := Parse(raw)
	if len(txs) != 2 {
		t.Fatalf("Parse() returned %d transactions, want 2", len(txs))
	}
	if !txs[0].Amount.Equal(decimal.RequireFromString("6.18")) {
		t.Errorf("row with NOK column: Amount = %s, want 6.18", txs[0].Amount)
	}
	if !txs[1].Amount.Equal(decimal.RequireFromString("6.5")) {
		t.Errorf("row without NOK column: Amount = %s, want 6.5", txs[1].Amount)
	}
	if txs[0].Currency != "SEK" {
		t.Errorf("Currency = %q, want SEK", txs[0].Currency)
	}
}

func TestParse_DropsMalformedRows(t *testing.T) {
	raw := "Acme AS - 1001 | Løpetid: 12 m | Rente: 8,5%\n" +
		"Dato\tTransaksjon\tBeløp\tValuta\tKurs\tBeløp i NOK\n" +
		"not-a-date\tRenteinntekt\t70,83\tNOK\t\t70,83\n" +
		"2023-02-01\tRenteinntekt\tgarbage\tNOK\t\tgarbage\n" +
		"2023-03-01\tRenteinntekt\t70,83\tNOK\t\t70,83\n"

	txs := Parse(raw)
	if len(txs) != 1 {
		t.Fatalf("Parse() returned %d transactions, want 1 (malformed rows dropped)", len(txs))
	}
	if !txs[0].Date.Equal(time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("surviving row has Date = %v", txs[0].Date)
	}
}

func TestParse_BlockWithoutTable(t *testing.T) {
	raw := "Acme AS - 1001 | Løpetid: 12 m | Rente: 8,5%\n" +
		"some prose that is not a table\n" +
		"Beta ASA - 2002 | Løpetid: 6 m | Rente: 10,0%\n" +
		"Dato\tTransaksjon\tBeløp\tValuta\tKurs\tBeløp i NOK\n" +
		"2023-05-01\tTildeling\t-5 000,00\tNOK\t\t-5 000,00\n"

	txs := Parse(raw)
	if len(txs) != 1 {
		t.Fatalf("Parse() returned %d transactions, want 1", len(txs))
	}
	if txs[0].LoanID != 2002 {
		t.Errorf("LoanID = %d, want 2002", txs[0].LoanID)
	}
}

func TestParse_UnknownLabelIsOther(t *testing.T) {
	raw := "Acme AS - 1001 | Løpetid: 12 m | Rente: 8,5%\n" +
		"Dato\tTransaksjon\tBeløp\tValuta\tKurs\tBeløp i NOK\n" +
		"2023-02-01\tGebyr\t-12,00\tNOK\t\t-12,00\n"

	txs := Parse(raw)
	if len(txs) != 1 {
		t.Fatalf("Parse() returned %d transactions, want 1", len(txs))
	}
	if txs[0].Kind != KindOther {
		t.Errorf("Kind = %s, want %s", txs[0].Kind, KindOther)
	}
	if txs[0].Label != "Gebyr" {
		t.Errorf("Label = %q, want Gebyr", txs[0].Label)
	}
}

func TestParse_SortedByLoanAndDate(t *testing.T) {
	raw := "Beta ASA - 2002 | Løpetid: 6 m | Rente: 10,0%\n" +
		"Dato\tTransaksjon\tBeløp\tValuta\tKurs\tBeløp i NOK\n" +
		"2023-06-01\tRenteinntekt\t40,00\tNOK\t\t40,00\n" +
		"2023-05-01\tTildeling\t-5 000,00\tNOK\t\t-5 000,00\n" +
		"Acme AS - 1001 | Løpetid: 12 m | Rente: 8,5%\n" +
		"Dato\tTransaksjon\tBeløp\tValuta\tKurs\tBeløp i NOK\n" +
		"2023-01-01\tTildeling\t-10 000,00\tNOK\t\t-10 000,00\n"

	txs := Parse(raw)
	if len(txs) != 3 {
		t.Fatalf("Parse() returned %d transactions, want 3", len(txs))
	}
	for i := 1; i < len(txs); i++ {
		prev, cur := txs[i-1], txs[i]
		if prev.LoanID > cur.LoanID || (prev.LoanID == cur.LoanID && prev.Date.After(cur.Date)) {
			t.Errorf("transactions not sorted by (loan, date) at index %d", i)
		}
	}
}
