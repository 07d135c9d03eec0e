// Package view projects quote results into display-ready structures. The
// builders are pure: templates and the JSON API render their output directly,
// and the engine stays free of any rendering concern.
package view

import (
	"fmt"

	"github.com/shopspring/decimal"

	"autoloan/internal/core"
)

type (
	// Metrics is the summary strip above the charts plus the affordability
	// banner.
	Metrics struct {
		DownPayment      string `json:"down_payment"`
		MonthlyPayment   string `json:"monthly_payment"`
		TotalMonthlyCost string `json:"total_monthly_cost"`
		IncomeShare      string `json:"income_share"`
		Affordable       bool   `json:"affordable"`
		Verdict          string `json:"verdict"`
		VerdictClass     string `json:"verdict_class"`
	}

	// Segment is one slice of the cost breakdown. Share is this segment's
	// percentage of the combined cost, rounded to one decimal place.
	Segment struct {
		Label     string          `json:"label"`
		Amount    decimal.Decimal `json:"amount"`
		Formatted string          `json:"formatted"`
		Share     float64         `json:"share"`
	}

	// Breakdown is the proportional cost view: down payment, financed
	// amount, total interest and accumulated running cost.
	Breakdown struct {
		Segments []Segment `json:"segments"`
	}

	// PaymentSeries carries the principal and interest curves for the
	// payment chart, one point per period.
	PaymentSeries struct {
		Periods   []int     `json:"periods"`
		Principal []float64 `json:"principal"`
		Interest  []float64 `json:"interest"`
	}

	// ScheduleRow is one formatted line of the amortization table.
	ScheduleRow struct {
		Period    int    `json:"period"`
		Payment   string `json:"payment"`
		Principal string `json:"principal"`
		Interest  string `json:"interest"`
		Balance   string `json:"balance"`
	}

	// CostInsights are the aggregate figures shown under the banner.
	CostInsights struct {
		FinancedAmount       string `json:"financed_amount"`
		TotalInterest        string `json:"total_interest"`
		TotalCostOfOwnership string `json:"total_cost_of_ownership"`
	}
)

// NewMetrics builds the summary strip for a computed quote and its
// affordability assessment.
func NewMetrics(sum core.LoanSummary, a core.Assessment) Metrics {
	m := Metrics{
		DownPayment:      core.FormatAmount(sum.DownPayment),
		MonthlyPayment:   core.FormatAmount(sum.MonthlyPayment),
		TotalMonthlyCost: core.FormatAmount(a.TotalMonthlyCost),
		IncomeShare:      core.FormatPercent(a.IncomeShare),
		Affordable:       a.Affordable,
	}
	if a.Affordable {
		m.Verdict = fmt.Sprintf("This car appears to be within your budget! Monthly cost is %s", m.TotalMonthlyCost)
		m.VerdictClass = "banner--success"
	} else {
		m.Verdict = fmt.Sprintf("This car might stretch your budget. The total monthly cost of %s exceeds %s of your income.",
			m.TotalMonthlyCost, core.FormatPercent(a.Threshold))
		m.VerdictClass = "banner--warning"
	}
	return m
}

// NewBreakdown splits the all-in cost of the quote into its four segments.
// Shares are rounded to one decimal place each; the largest segment absorbs
// the rounding remainder so the shares always total exactly 100.
func NewBreakdown(in core.LoanInputs, sum core.LoanSummary, recurring decimal.Decimal) Breakdown {
	running := recurring.Mul(decimal.NewFromInt(int64(in.TermMonths)))
	segments := []Segment{
		{Label: "Down Payment", Amount: sum.DownPayment},
		{Label: "Financed Amount", Amount: sum.FinancedAmount},
		{Label: "Total Interest", Amount: sum.TotalInterest},
		{Label: "Running Cost (Total)", Amount: running},
	}

	total := decimal.Zero
	largest := 0
	for i, s := range segments {
		total = total.Add(s.Amount)
		if s.Amount.GreaterThan(segments[largest].Amount) {
			largest = i
		}
	}

	hundred := decimal.NewFromInt(100)
	shares := make([]decimal.Decimal, len(segments))
	if total.IsPositive() {
		assigned := decimal.Zero
		for i, s := range segments {
			shares[i] = s.Amount.Mul(hundred).Div(total).Round(1)
			assigned = assigned.Add(shares[i])
		}
		shares[largest] = shares[largest].Add(hundred.Sub(assigned))
	}

	for i := range segments {
		segments[i].Formatted = core.FormatAmount(segments[i].Amount)
		segments[i].Share, _ = shares[i].Float64()
	}
	return Breakdown{Segments: segments}
}

// NewPaymentSeries extracts the principal and interest curves from the
// schedule. Values are rounded to cents; the chart does not need the
// engine's full precision.
func NewPaymentSeries(sum core.LoanSummary) PaymentSeries {
	n := len(sum.Schedule)
	series := PaymentSeries{
		Periods:   make([]int, 0, n),
		Principal: make([]float64, 0, n),
		Interest:  make([]float64, 0, n),
	}
	for _, row := range sum.Schedule {
		series.Periods = append(series.Periods, row.Period)
		series.Principal = append(series.Principal, roundToCents(row.Principal))
		series.Interest = append(series.Interest, roundToCents(row.Interest))
	}
	return series
}

// NewScheduleTable formats the full amortization schedule for display.
func NewScheduleTable(sum core.LoanSummary) []ScheduleRow {
	rows := make([]ScheduleRow, 0, len(sum.Schedule))
	for _, e := range sum.Schedule {
		rows = append(rows, ScheduleRow{
			Period:    e.Period,
			Payment:   core.FormatAmount(e.Payment),
			Principal: core.FormatAmount(e.Principal),
			Interest:  core.FormatAmount(e.Interest),
			Balance:   core.FormatAmount(e.Balance),
		})
	}
	return rows
}

// NewCostInsights builds the aggregate cost figures for a quote.
func NewCostInsights(in core.LoanInputs, sum core.LoanSummary, recurring decimal.Decimal) CostInsights {
	return CostInsights{
		FinancedAmount:       core.FormatAmount(sum.FinancedAmount),
		TotalInterest:        core.FormatAmount(sum.TotalInterest),
		TotalCostOfOwnership: core.FormatAmount(core.TotalCostOfOwnership(in, sum, recurring)),
	}
}

func roundToCents(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}
