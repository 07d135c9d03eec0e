package memory

import (
	"context"

	"github.com/shopspring/decimal"

	"autoloan/internal/core"
)

// Store serves the built-in presets. It is the default backend: the binary
// works with zero infrastructure and the sqlite catalog exists only for
// deployments that tune the ranges without rebuilding.
type Store struct {
	presets core.Presets
}

func New() *Store {
	return &Store{presets: Defaults()}
}

// Defaults returns the canonical option space of the calculator form.
func Defaults() core.Presets {
	return core.Presets{
		Price:              core.Range(100000, 10000000, 50000, 500000),
		DownPaymentPercent: core.Range(10, 50, 1, 20),
		AnnualRatePercent: core.FieldRange{
			Min:     decimal.NewFromInt(7),
			Max:     decimal.NewFromInt(15),
			Step:    decimal.NewFromFloat(0.1),
			Default: decimal.NewFromInt(8),
		},
		MonthlyFuelCost:  core.Range(1000, 50000, 500, 5000),
		MonthlyIncome:    core.Range(20000, 1000000, 5000, 50000),
		TermYearOptions:  []int{3, 4, 5, 7},
		DefaultTermYears: 4,
	}
}

// Presets returns a copy so callers cannot mutate the shared option space.
func (s *Store) Presets(_ context.Context) (core.Presets, error) {
	p := s.presets
	p.TermYearOptions = append([]int(nil), s.presets.TermYearOptions...)
	return p, nil
}
