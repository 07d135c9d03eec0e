// Package sqlite reads form presets from a SQLite database so deployments
// can tune ranges and seed values without rebuilding the binary. The schema
// is owned by the embedded migrations; this package only ever reads.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"autoloan/internal/core"
)

// Field names used in the preset_fields table.
const (
	fieldPrice       = "price"
	fieldDownPercent = "down_payment_percent"
	fieldRatePercent = "annual_rate_percent"
	fieldFuelCost    = "monthly_fuel_cost"
	fieldIncome      = "monthly_income"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Presets implements catalog.PresetReader.
func (r *Repository) Presets(ctx context.Context) (core.Presets, error) {
	var p core.Presets

	fields, err := r.readFields(ctx)
	if err != nil {
		return p, err
	}

	for _, want := range []struct {
		name string
		dst  *core.FieldRange
	}{
		{fieldPrice, &p.Price},
		{fieldDownPercent, &p.DownPaymentPercent},
		{fieldRatePercent, &p.AnnualRatePercent},
		{fieldFuelCost, &p.MonthlyFuelCost},
		{fieldIncome, &p.MonthlyIncome},
	} {
		fr, ok := fields[want.name]
		if !ok {
			return p, fmt.Errorf("preset field %q missing from database", want.name)
		}
		*want.dst = fr
	}

	p.TermYearOptions, p.DefaultTermYears, err = r.readTermOptions(ctx)
	if err != nil {
		return p, err
	}

	if err := p.Validate(); err != nil {
		return p, fmt.Errorf("presets from database are inconsistent: %w", err)
	}
	return p, nil
}

func (r *Repository) readFields(ctx context.Context) (map[string]core.FieldRange, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT name, min_value, max_value, step_value, default_value FROM preset_fields`)
	if err != nil {
		return nil, fmt.Errorf("query preset fields: %w", err)
	}
	defer rows.Close()

	fields := make(map[string]core.FieldRange)
	for rows.Next() {
		var name, minV, maxV, stepV, defV string
		if err := rows.Scan(&name, &minV, &maxV, &stepV, &defV); err != nil {
			return nil, fmt.Errorf("scan preset field: %w", err)
		}
		fr, err := parseRange(minV, maxV, stepV, defV)
		if err != nil {
			return nil, fmt.Errorf("preset field %q: %w", name, err)
		}
		fields[name] = fr
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate preset fields: %w", err)
	}
	return fields, nil
}

func (r *Repository) readTermOptions(ctx context.Context) ([]int, int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT years, is_default FROM term_options ORDER BY years`)
	if err != nil {
		return nil, 0, fmt.Errorf("query term options: %w", err)
	}
	defer rows.Close()

	var years []int
	defaultYears := 0
	for rows.Next() {
		var y int
		var isDefault bool
		if err := rows.Scan(&y, &isDefault); err != nil {
			return nil, 0, fmt.Errorf("scan term option: %w", err)
		}
		years = append(years, y)
		if isDefault {
			defaultYears = y
		}
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate term options: %w", err)
	}
	return years, defaultYears, nil
}

// Values are stored as TEXT so decimals survive the round trip unchanged;
// SQLite's numeric affinity would squash them through float64.
func parseRange(minV, maxV, stepV, defV string) (core.FieldRange, error) {
	var fr core.FieldRange
	var err error
	if fr.Min, err = decimal.NewFromString(minV); err != nil {
		return fr, fmt.Errorf("bad min %q: %w", minV, err)
	}
	if fr.Max, err = decimal.NewFromString(maxV); err != nil {
		return fr, fmt.Errorf("bad max %q: %w", maxV, err)
	}
	if fr.Step, err = decimal.NewFromString(stepV); err != nil {
		return fr, fmt.Errorf("bad step %q: %w", stepV, err)
	}
	if fr.Default, err = decimal.NewFromString(defV); err != nil {
		return fr, fmt.Errorf("bad default %q: %w", defV, err)
	}
	return fr, nil
}
