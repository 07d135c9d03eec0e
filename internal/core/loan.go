// Package core implements the loan quote engine.
//
// Everything in this package is pure computation: no I/O, no clocks, no
// shared state. Callers hand in LoanInputs and get back a LoanSummary or an
// error wrapping ErrInvalidInput. Arithmetic stays in fixed-point decimals
// end to end; rounding to display precision is the view layer's job.
package core

import "github.com/shopspring/decimal"

var (
	one     = decimal.NewFromInt(1)
	twelve  = decimal.NewFromInt(12)
	hundred = decimal.NewFromInt(100)
)

// Compute derives the full quote for the given inputs: financed amount, the
// fixed monthly payment, total interest over the term and the month-by-month
// amortization schedule.
//
// The schedule always has exactly TermMonths rows. Each row's interest is
// charged on the balance left by the previous row, so rows must be produced
// in order. The final row retires the remaining balance in full and the
// schedule closes at a balance of exactly zero.
func Compute(in LoanInputs) (LoanSummary, error) {
	if err := in.Validate(); err != nil {
		return LoanSummary{}, err
	}

	financed := in.Price.Mul(one.Sub(in.DownPaymentRate))
	down := in.Price.Sub(financed)
	payment := monthlyPayment(financed, in.AnnualRate, in.TermMonths)
	monthlyRate := in.AnnualRate.Div(twelve)

	schedule := make([]ScheduleEntry, 0, in.TermMonths)
	balance := financed
	totalInterest := decimal.Zero
	for period := 1; period <= in.TermMonths; period++ {
		interest := balance.Mul(monthlyRate)
		principal := payment.Sub(interest)
		if period == in.TermMonths {
			// Close out whatever is left so division residue from the
			// payment formula never leaks into the final balance.
			principal = balance
		}
		balance = balance.Sub(principal)
		if balance.IsNegative() {
			balance = decimal.Zero
		}
		totalInterest = totalInterest.Add(interest)
		schedule = append(schedule, ScheduleEntry{
			Period:    period,
			Payment:   payment,
			Principal: principal,
			Interest:  interest,
			Balance:   balance,
		})
	}

	return LoanSummary{
		MonthlyPayment: payment,
		DownPayment:    down,
		FinancedAmount: financed,
		TotalInterest:  totalInterest,
		Schedule:       schedule,
	}, nil
}

// monthlyPayment solves the annuity formula for the fixed installment.
// A zero rate degenerates the formula to straight division, which has to be
// special-cased or the denominator collapses to zero.
func monthlyPayment(financed, annualRate decimal.Decimal, termMonths int) decimal.Decimal {
	n := decimal.NewFromInt(int64(termMonths))
	if annualRate.IsZero() {
		return financed.Div(n)
	}
	r := annualRate.Div(twelve)
	growth := one.Add(r).Pow(n)
	return financed.Mul(r).Mul(growth).Div(growth.Sub(one))
}
