package core

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// DefaultAffordabilityThreshold is the conventional ceiling for the share of
// monthly income a car should consume: 10%.
var DefaultAffordabilityThreshold = decimal.NewFromFloat(0.10)

type (
	// AffordabilityInputs are the income-side parameters of an assessment.
	AffordabilityInputs struct {
		MonthlyIncome decimal.Decimal // > 0
		RecurringCost decimal.Decimal // monthly running cost (fuel etc.), >= 0
	}

	// Assessment classifies a quote against the caller's income.
	Assessment struct {
		TotalMonthlyCost decimal.Decimal // installment plus recurring cost
		IncomeShare      decimal.Decimal // TotalMonthlyCost / MonthlyIncome, a fraction
		Threshold        decimal.Decimal
		Affordable       bool
	}
)

func (a AffordabilityInputs) Validate() error {
	if !a.MonthlyIncome.IsPositive() {
		return fmt.Errorf("monthly income must be positive: %w", ErrInvalidInput)
	}
	if a.RecurringCost.IsNegative() {
		return fmt.Errorf("recurring cost cannot be negative: %w", ErrInvalidInput)
	}
	return nil
}

// Assess combines the quote's installment with the recurring monthly cost
// and classifies the result against the threshold. A quote is affordable
// while its share of income stays at or below the threshold. A non-positive
// threshold falls back to DefaultAffordabilityThreshold.
func Assess(sum LoanSummary, in AffordabilityInputs, threshold decimal.Decimal) (Assessment, error) {
	if err := in.Validate(); err != nil {
		return Assessment{}, err
	}
	if !threshold.IsPositive() {
		threshold = DefaultAffordabilityThreshold
	}
	total := sum.MonthlyPayment.Add(in.RecurringCost)
	share := total.Div(in.MonthlyIncome)
	return Assessment{
		TotalMonthlyCost: total,
		IncomeShare:      share,
		Threshold:        threshold,
		Affordable:       share.LessThanOrEqual(threshold),
	}, nil
}

// TotalCostOfOwnership is the all-in cost over the loan term: price paid,
// interest paid and recurring cost accumulated month by month.
func TotalCostOfOwnership(in LoanInputs, sum LoanSummary, recurring decimal.Decimal) decimal.Decimal {
	running := recurring.Mul(decimal.NewFromInt(int64(in.TermMonths)))
	return in.Price.Add(sum.TotalInterest).Add(running)
}
