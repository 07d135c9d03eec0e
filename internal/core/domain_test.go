package core

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func validInputs() LoanInputs {
	return LoanInputs{
		Price:           decimal.NewFromInt(500000),
		DownPaymentRate: decimal.NewFromFloat(0.20),
		TermMonths:      48,
		AnnualRate:      decimal.NewFromFloat(0.08),
	}
}

func TestLoanInputsValidate(t *testing.T) {
	if err := validInputs().Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []func(*LoanInputs){
		func(in *LoanInputs) { in.Price = decimal.Zero },
		func(in *LoanInputs) { in.Price = decimal.NewFromInt(-1) },
		func(in *LoanInputs) { in.DownPaymentRate = decimal.NewFromFloat(-0.1) },
		func(in *LoanInputs) { in.DownPaymentRate = decimal.NewFromInt(1) }, // zero financed amount
		func(in *LoanInputs) { in.DownPaymentRate = decimal.NewFromFloat(1.5) },
		func(in *LoanInputs) { in.TermMonths = 0 },
		func(in *LoanInputs) { in.TermMonths = -12 },
		func(in *LoanInputs) { in.TermMonths = MaxTermMonths + 1 },
		func(in *LoanInputs) { in.AnnualRate = decimal.NewFromFloat(-0.01) },
	}
	for i, mutate := range bads {
		in := validInputs()
		mutate(&in)
		err := in.Validate()
		if err == nil {
			t.Fatalf("case %d expected error", i)
		}
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("case %d expected ErrInvalidInput, got %v", i, err)
		}
	}
}

func TestLoanInputsValidateBoundaries(t *testing.T) {
	in := validInputs()
	in.DownPaymentRate = decimal.Zero
	if err := in.Validate(); err != nil {
		t.Fatalf("zero down payment should be valid, got %v", err)
	}
	in = validInputs()
	in.AnnualRate = decimal.Zero
	if err := in.Validate(); err != nil {
		t.Fatalf("zero rate should be valid, got %v", err)
	}
	in = validInputs()
	in.TermMonths = 1
	if err := in.Validate(); err != nil {
		t.Fatalf("single-month term should be valid, got %v", err)
	}
	in = validInputs()
	in.TermMonths = MaxTermMonths
	if err := in.Validate(); err != nil {
		t.Fatalf("term at cap should be valid, got %v", err)
	}
}

func TestPresetsValidate(t *testing.T) {
	good := Presets{
		Price:              Range(100000, 10000000, 50000, 500000),
		DownPaymentPercent: Range(10, 50, 1, 20),
		AnnualRatePercent:  Range(7, 15, 1, 8),
		MonthlyFuelCost:    Range(1000, 50000, 500, 5000),
		MonthlyIncome:      Range(20000, 1000000, 5000, 50000),
		TermYearOptions:    []int{3, 4, 5, 7},
		DefaultTermYears:   4,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []func(*Presets){
		func(p *Presets) { p.Price.Step = decimal.Zero },
		func(p *Presets) { p.Price.Max = decimal.NewFromInt(1) },
		func(p *Presets) { p.MonthlyIncome.Default = decimal.NewFromInt(1) }, // below min
		func(p *Presets) { p.TermYearOptions = nil },
		func(p *Presets) { p.DefaultTermYears = 6 },
	}
	for i, mutate := range bads {
		p := good
		mutate(&p)
		if err := p.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}
