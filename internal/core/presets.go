package core

import (
	"fmt"
	"slices"

	"github.com/shopspring/decimal"
)

type (
	// FieldRange bounds a numeric form field.
	FieldRange struct {
		Min     decimal.Decimal
		Max     decimal.Decimal
		Step    decimal.Decimal
		Default decimal.Decimal
	}

	// Presets is the option space the calculator form offers. Percent fields
	// hold whole percents, the way the form displays them.
	Presets struct {
		Price              FieldRange
		DownPaymentPercent FieldRange
		AnnualRatePercent  FieldRange
		MonthlyFuelCost    FieldRange
		MonthlyIncome      FieldRange
		TermYearOptions    []int
		DefaultTermYears   int
	}
)

func (fr FieldRange) Validate() error {
	if !fr.Step.IsPositive() {
		return fmt.Errorf("step must be positive: %w", ErrInvalidInput)
	}
	if fr.Max.LessThan(fr.Min) {
		return fmt.Errorf("max below min: %w", ErrInvalidInput)
	}
	if fr.Default.LessThan(fr.Min) || fr.Default.GreaterThan(fr.Max) {
		return fmt.Errorf("default outside range: %w", ErrInvalidInput)
	}
	return nil
}

func (p Presets) Validate() error {
	fields := []struct {
		name string
		fr   FieldRange
	}{
		{"price", p.Price},
		{"down payment", p.DownPaymentPercent},
		{"annual rate", p.AnnualRatePercent},
		{"fuel cost", p.MonthlyFuelCost},
		{"income", p.MonthlyIncome},
	}
	for _, f := range fields {
		if err := f.fr.Validate(); err != nil {
			return fmt.Errorf("%s: %w", f.name, err)
		}
	}
	if len(p.TermYearOptions) == 0 {
		return fmt.Errorf("no term options: %w", ErrInvalidInput)
	}
	if !slices.Contains(p.TermYearOptions, p.DefaultTermYears) {
		return fmt.Errorf("default term %d not among options: %w", p.DefaultTermYears, ErrInvalidInput)
	}
	return nil
}

// Range is a convenience constructor for FieldRange literals.
func Range(min, max, step, def int64) FieldRange {
	return FieldRange{
		Min:     decimal.NewFromInt(min),
		Max:     decimal.NewFromInt(max),
		Step:    decimal.NewFromInt(step),
		Default: decimal.NewFromInt(def),
	}
}
