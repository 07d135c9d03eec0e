package core

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestAssess(t *testing.T) {
	sum := LoanSummary{MonthlyPayment: decimal.NewFromInt(9000)}

	cases := []struct {
		name       string
		income     int64
		recurring  int64
		affordable bool
	}{
		{"well within threshold", 200000, 5000, true},     // 7% of income
		{"exactly at threshold", 140000, 5000, true},      // 14000/140000 = 10%
		{"just above threshold", 139000, 5000, false},     // ~10.07%
		{"far above threshold", 50000, 5000, false},       // 28%
		{"no recurring cost", 90000, 0, true},             // exactly 10%
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Assess(sum, AffordabilityInputs{
				MonthlyIncome: decimal.NewFromInt(tc.income),
				RecurringCost: decimal.NewFromInt(tc.recurring),
			}, DefaultAffordabilityThreshold)
			if err != nil {
				t.Fatalf("expected ok, got %v", err)
			}
			if got.Affordable != tc.affordable {
				t.Fatalf("income %d recurring %d: expected affordable=%v, share=%s",
					tc.income, tc.recurring, tc.affordable, got.IncomeShare)
			}
			wantTotal := decimal.NewFromInt(9000 + tc.recurring)
			if !got.TotalMonthlyCost.Equal(wantTotal) {
				t.Fatalf("expected total %s, got %s", wantTotal, got.TotalMonthlyCost)
			}
		})
	}
}

func TestAssessCustomThreshold(t *testing.T) {
	sum := LoanSummary{MonthlyPayment: decimal.NewFromInt(9000)}
	in := AffordabilityInputs{
		MonthlyIncome: decimal.NewFromInt(50000),
		RecurringCost: decimal.NewFromInt(1000),
	}
	// 10000/50000 = 20% share.
	strict, err := Assess(sum, in, decimal.NewFromFloat(0.15))
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if strict.Affordable {
		t.Fatalf("20%% share should fail a 15%% threshold")
	}
	relaxed, err := Assess(sum, in, decimal.NewFromFloat(0.25))
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if !relaxed.Affordable {
		t.Fatalf("20%% share should pass a 25%% threshold")
	}
	// Non-positive threshold falls back to the default.
	fallback, err := Assess(sum, in, decimal.Zero)
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if !fallback.Threshold.Equal(DefaultAffordabilityThreshold) {
		t.Fatalf("expected default threshold, got %s", fallback.Threshold)
	}
}

func TestAssessInvalidInputs(t *testing.T) {
	sum := LoanSummary{MonthlyPayment: decimal.NewFromInt(9000)}
	bads := []AffordabilityInputs{
		{MonthlyIncome: decimal.Zero, RecurringCost: decimal.NewFromInt(1000)},
		{MonthlyIncome: decimal.NewFromInt(-1), RecurringCost: decimal.Zero},
		{MonthlyIncome: decimal.NewFromInt(50000), RecurringCost: decimal.NewFromInt(-1)},
	}
	for i, in := range bads {
		_, err := Assess(sum, in, DefaultAffordabilityThreshold)
		if err == nil {
			t.Fatalf("case %d expected error", i)
		}
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("case %d expected ErrInvalidInput, got %v", i, err)
		}
	}
}

func TestTotalCostOfOwnership(t *testing.T) {
	in := LoanInputs{
		Price:           decimal.NewFromInt(500000),
		DownPaymentRate: decimal.NewFromFloat(0.20),
		TermMonths:      48,
		AnnualRate:      decimal.NewFromFloat(0.08),
	}
	sum := LoanSummary{TotalInterest: decimal.NewFromInt(68728)}
	got := TotalCostOfOwnership(in, sum, decimal.NewFromInt(5000))
	// 500000 + 68728 + 5000*48 = 808728
	want := decimal.NewFromInt(808728)
	if !got.Equal(want) {
		t.Fatalf("expected %s, got %s", want, got)
	}
}
