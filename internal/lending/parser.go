// Package lending implements the statement analytics engine: parsing the
// issuer's free-text loan exports into typed transactions, expanding them
// into dense per-loan daily series, reducing those into loan and company
// views, and projecting monthly actual/estimated cash flows.
//
// The whole package is pure computation: no I/O, no shared state, and the
// reference date for forecasting is always an explicit parameter.
package lending

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Statement blocks look like:
//
//	Acme AS - 1001 | Løpetid: 12 m | Rente: 8,5%
//	Dato	Transaksjon	Beløp	Valuta	...	Beløp i NOK
//	2023-01-01	Tildeling	-10 000,00	NOK		-10 000,00
//	...
//	Totale renteinntekter ...
//
// The export format drifts, so parsing is maximally lenient: anything that
// does not match is dropped, never reported as an error.
var headerRe = regexp.MustCompile(`^(.*?)\s*-\s*(\d+)\s*\|\s*Løpetid:\s*(\d+)\s*m.*?\|\s*Rente:\s*([\d,]+)%`)

var multiSpaceRe = regexp.MustCompile(`\s{2,}`)

const (
	tableHeadPrefix  = "Dato"
	tableTotalPrefix = "Totale renteinntekter"
	dateLayout       = "2006-01-02"
	defaultCurrency  = "NOK"
)

// kindByLabel maps the issuer's transaction labels onto the closed Kind
// set. Unlisted labels pass through as KindOther.
var kindByLabel = map[string]Kind{
	"Renteinntekt":      KindInterest,
	"Forsinkelsesrente": KindInterestPenalty,
	"Tildeling":         KindAllocation,
	"Tilbakebetaling":   KindPrincipalRepaid,
}

type blockHeader struct {
	company        string
	loanID         int64
	durationMonths int
	interestRate   decimal.Decimal
}

// Parse turns a raw statement export into transactions. It never fails:
// malformed headers, rows and blocks are skipped, and empty input yields an
// empty slice. The result is sorted by (loan id, date) so downstream
// grouping is deterministic.
func Parse(raw string) []Transaction {
	lines := strings.Split(raw, "\n")

	var headIdx []int
	for i, line := range lines {
		if _, ok := parseHeader(line); ok {
			headIdx = append(headIdx, i)
		}
	}

	var txs []Transaction
	for i, start := range headIdx {
		end := len(lines)
		if i+1 < len(headIdx) {
			end = headIdx[i+1]
		}
		head, _ := parseHeader(lines[start])
		txs = append(txs, parseBlock(head, lines[start:end])...)
	}

	sort.SliceStable(txs, func(i, j int) bool {
		if txs[i].LoanID != txs[j].LoanID {
			return txs[i].LoanID < txs[j].LoanID
		}
		return txs[i].Date.Before(txs[j].Date)
	})
	return txs
}

func parseHeader(line string) (blockHeader, bool) {
	m := headerRe.FindStringSubmatch(line)
	if m == nil {
		return blockHeader{}, false
	}
	loanID, err := strconv.ParseInt(m[2], 10, 64)
	if err != nil {
		return blockHeader{}, false
	}
	months, err := strconv.Atoi(m[3])
	if err != nil {
		return blockHeader{}, false
	}
	rate, err := decimal.NewFromString(strings.ReplaceAll(m[4], ",", "."))
	if err != nil {
		return blockHeader{}, false
	}
	return blockHeader{
		company:        strings.TrimSpace(m[1]),
		loanID:         loanID,
		durationMonths: months,
		interestRate:   rate,
	}, true
}

// parseBlock extracts the transaction table of one header block: rows after
// the "Dato" column line, up to the "Totale renteinntekter" footer.
func parseBlock(head blockHeader, lines []string) []Transaction {
	tableStart := -1
	for i, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), tableHeadPrefix) {
			tableStart = i
			break
		}
	}
	if tableStart < 0 {
		return nil
	}

	var txs []Transaction
	for _, row := range lines[tableStart+1:] {
		if strings.HasPrefix(strings.TrimSpace(row), tableTotalPrefix) {
			break
		}
		tx, ok := parseRow(head, row)
		if !ok {
			continue
		}
		txs = append(txs, tx)
	}
	return txs
}

// parseRow tokenizes one table row into the six positional fields
// (date, label, amount, currency, ignored, amount in NOK). Rows are tab
// separated when the export is pasted from the site, otherwise aligned
// with runs of two or more spaces.
func parseRow(head blockHeader, row string) (Transaction, bool) {
	var parts []string
	if strings.Contains(row, "\t") {
		parts = strings.Split(row, "\t")
	} else {
		parts = multiSpaceRe.Split(strings.TrimSpace(row), -1)
	}
	for len(parts) < 6 {
		parts = append(parts, "")
	}
	parts = parts[:6]

	date, err := time.Parse(dateLayout, strings.TrimSpace(parts[0]))
	if err != nil {
		return Transaction{}, false
	}

	// The NOK column is authoritative when present; foreign-currency rows
	// without it keep their raw amount unconverted.
	amountField := parts[2]
	if strings.TrimSpace(parts[5]) != "" {
		amountField = parts[5]
	}
	amount, err := ParseDecimalNO(amountField)
	if err != nil {
		return Transaction{}, false
	}

	label := strings.TrimSpace(parts[1])
	kind, ok := kindByLabel[label]
	if !ok {
		kind = KindOther
	}

	currency := strings.TrimSpace(parts[3])
	if currency == "" {
		currency = defaultCurrency
	}

	return Transaction{
		Date:           date,
		Kind:           kind,
		Label:          label,
		Amount:         amount,
		Currency:       currency,
		LoanID:         head.loanID,
		Company:        head.company,
		DurationMonths: head.durationMonths,
		InterestRate:   head.interestRate,
	}, true
}

var decimalNOReplacer = strings.NewReplacer(
	" ", "", // non-breaking space as thousands separator
	" ", "",
	",", ".",
	"−", "-", // Unicode minus
)

// ParseDecimalNO parses a Norwegian-formatted decimal: comma as fractional
// separator, spaces or non-breaking spaces as thousands separators, and
// minus-sign variants normalized to ASCII. An empty value or a bare dash
// parses to zero.
func ParseDecimalNO(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "-" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(decimalNOReplacer.Replace(s))
}
