package lending

import (
	"time"

	"github.com/shopspring/decimal"
)

// KPIs are the headline totals shown at the top of the dashboard.
type KPIs struct {
	Companies              int             `json:"companies"`
	Loans                  int             `json:"loans"`
	Invested               decimal.Decimal `json:"invested"`
	AccumulatedInterest    decimal.Decimal `json:"accumulated_interest"`
	EstimatedTotalInterest decimal.Decimal `json:"estimated_total_interest"`
}

// Dashboard bundles every derived view of one statement. It is recomputed
// in full from the raw text on every request; nothing is persisted or
// mutated incrementally.
type Dashboard struct {
	KPIs      KPIs             `json:"kpis"`
	Loans     []LoanSummary    `json:"by_loan"`
	Companies []CompanySummary `json:"by_company"`
	Daily     []DailyRecord    `json:"-"`
	Forecast  Forecast         `json:"monthly"`
}

// BuildDashboard runs the full pipeline: parse, expand, aggregate,
// forecast. today anchors the forecast's current month.
func BuildDashboard(raw string, today time.Time) (*Dashboard, error) {
	txs := Parse(raw)
	daily, err := Expand(txs)
	if err != nil {
		return nil, err
	}
	loans, companies := Aggregate(daily)

	kpis := KPIs{
		Companies:              len(companies),
		Loans:                  len(loans),
		Invested:               decimal.Zero,
		AccumulatedInterest:    decimal.Zero,
		EstimatedTotalInterest: decimal.Zero,
	}
	for _, c := range companies {
		kpis.Invested = kpis.Invested.Add(c.Invested)
		kpis.AccumulatedInterest = kpis.AccumulatedInterest.Add(c.AccumulatedInterest)
		kpis.EstimatedTotalInterest = kpis.EstimatedTotalInterest.Add(c.EstimatedTotalInterest)
	}

	return &Dashboard{
		KPIs:      kpis,
		Loans:     loans,
		Companies: companies,
		Daily:     daily,
		Forecast:  ForecastMonthly(txs, daily, today),
	}, nil
}
