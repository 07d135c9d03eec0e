package core

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// MaxTermMonths caps schedule length so a bad request cannot ask the engine
// to materialize an unbounded schedule. 600 months is 50 years.
const MaxTermMonths = 600

type (
	// LoanInputs are the parameters of a single quote. All monetary values
	// and rates are fixed-point decimals; rates are fractions, not percents.
	LoanInputs struct {
		Price           decimal.Decimal // vehicle price, > 0
		DownPaymentRate decimal.Decimal // share of the price paid upfront, [0, 1)
		TermMonths      int             // repayment term, > 0
		AnnualRate      decimal.Decimal // yearly interest as a fraction, e.g. 0.08
	}

	// ScheduleEntry is one row of the amortization schedule. Period is
	// 1-based and strictly increasing across the schedule.
	ScheduleEntry struct {
		Period    int
		Payment   decimal.Decimal
		Principal decimal.Decimal
		Interest  decimal.Decimal
		Balance   decimal.Decimal
	}

	// LoanSummary is the complete result of a quote computation.
	LoanSummary struct {
		MonthlyPayment decimal.Decimal
		DownPayment    decimal.Decimal
		FinancedAmount decimal.Decimal
		TotalInterest  decimal.Decimal
		Schedule       []ScheduleEntry
	}
)

// ErrInvalidInput marks caller-correctable input problems. Every validation
// failure in this package wraps it, so callers branch on errors.Is and read
// the wrapped message for the specific field.
var ErrInvalidInput = errors.New("invalid input")

func (in LoanInputs) Validate() error {
	if !in.Price.IsPositive() {
		return fmt.Errorf("price must be positive: %w", ErrInvalidInput)
	}
	if in.DownPaymentRate.IsNegative() || in.DownPaymentRate.GreaterThanOrEqual(one) {
		return fmt.Errorf("down payment rate must be in [0, 1): %w", ErrInvalidInput)
	}
	if in.TermMonths <= 0 {
		return fmt.Errorf("term must be positive: %w", ErrInvalidInput)
	}
	if in.TermMonths > MaxTermMonths {
		return fmt.Errorf("term exceeds %d months: %w", MaxTermMonths, ErrInvalidInput)
	}
	if in.AnnualRate.IsNegative() {
		return fmt.Errorf("interest rate cannot be negative: %w", ErrInvalidInput)
	}
	return nil
}
