// Command emi is a one-shot car loan calculator for the terminal. It prints
// the quote summary and, on request, the full amortization table.
//
// Usage:
//
//	emi -price 500000 -down 20 -years 4 -rate 8 -fuel 5000 -income 150000 -schedule
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"autoloan/internal/core"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("emi", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		price    = fs.String("price", "", "car price (required)")
		down     = fs.String("down", "20", "down payment as a percent of the price")
		years    = fs.Int("years", 4, "loan term in years")
		months   = fs.Int("months", 0, "loan term in months, overrides -years")
		rate     = fs.String("rate", "8", "annual interest rate in percent")
		fuel     = fs.String("fuel", "0", "recurring monthly running cost")
		income   = fs.String("income", "", "monthly income, enables the affordability verdict")
		schedule = fs.Bool("schedule", false, "print the full amortization table")
	)

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *price == "" {
		fmt.Fprintln(stderr, "missing required flag: -price")
		fs.Usage()
		return 2
	}

	q, err := buildQuote(*price, *down, *years, *months, *rate, *fuel, *income)
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		if errors.Is(err, core.ErrInvalidInput) {
			return 2
		}
		return 1
	}

	printSummary(stdout, q)
	if *schedule {
		fmt.Fprintln(stdout)
		printSchedule(stdout, q.sum.Schedule)
	}
	return 0
}

type quote struct {
	inputs     core.LoanInputs
	recurring  decimal.Decimal
	sum        core.LoanSummary
	assessment *core.Assessment
}

func buildQuote(price, down string, years, months int, rate, fuel, income string) (quote, error) {
	var q quote
	var err error

	if q.inputs.Price, err = core.ParseAmount(price); err != nil {
		return q, fmt.Errorf("price: %w", err)
	}
	if q.inputs.DownPaymentRate, err = core.ParsePercent(down); err != nil {
		return q, fmt.Errorf("down payment: %w", err)
	}
	if q.inputs.AnnualRate, err = core.ParsePercent(rate); err != nil {
		return q, fmt.Errorf("rate: %w", err)
	}
	switch {
	case months > 0:
		q.inputs.TermMonths = months
	case years > 0:
		q.inputs.TermMonths = years * 12
	default:
		return q, fmt.Errorf("loan term must be positive: %w", core.ErrInvalidInput)
	}
	if q.recurring, err = core.ParseAmount(fuel); err != nil {
		return q, fmt.Errorf("fuel cost: %w", err)
	}

	if q.sum, err = core.Compute(q.inputs); err != nil {
		return q, err
	}

	if income != "" {
		monthlyIncome, err := core.ParseAmount(income)
		if err != nil {
			return q, fmt.Errorf("income: %w", err)
		}
		a, err := core.Assess(q.sum, core.AffordabilityInputs{
			MonthlyIncome: monthlyIncome,
			RecurringCost: q.recurring,
		}, core.DefaultAffordabilityThreshold)
		if err != nil {
			return q, err
		}
		q.assessment = &a
	}
	return q, nil
}

func printSummary(w io.Writer, q quote) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Car Price\t%s\n", core.FormatAmount(q.inputs.Price))
	fmt.Fprintf(tw, "Down Payment\t%s (%s)\n", core.FormatAmount(q.sum.DownPayment), core.FormatPercent(q.inputs.DownPaymentRate))
	fmt.Fprintf(tw, "Loan Amount\t%s\n", core.FormatAmount(q.sum.FinancedAmount))
	fmt.Fprintf(tw, "Loan Term\t%d months\n", q.inputs.TermMonths)
	fmt.Fprintf(tw, "Interest Rate\t%s per year\n", core.FormatPercent(q.inputs.AnnualRate))
	fmt.Fprintf(tw, "Monthly EMI\t%s\n", core.FormatAmount(q.sum.MonthlyPayment))
	fmt.Fprintf(tw, "Total Interest\t%s\n", core.FormatAmount(q.sum.TotalInterest))
	if q.recurring.IsPositive() {
		fmt.Fprintf(tw, "Monthly Fuel Cost\t%s\n", core.FormatAmount(q.recurring))
	}
	total := core.TotalCostOfOwnership(q.inputs, q.sum, q.recurring)
	fmt.Fprintf(tw, "Total Cost of Ownership\t%s\n", core.FormatAmount(total))

	if a := q.assessment; a != nil {
		fmt.Fprintf(tw, "Total Monthly Cost\t%s\n", core.FormatAmount(a.TotalMonthlyCost))
		fmt.Fprintf(tw, "Share of Income\t%s (limit %s)\n", core.FormatPercent(a.IncomeShare), core.FormatPercent(a.Threshold))
		verdict := "within budget"
		if !a.Affordable {
			verdict = "over budget"
		}
		fmt.Fprintf(tw, "Verdict\t%s\n", verdict)
	}
	tw.Flush()
}

func printSchedule(w io.Writer, rows []core.ScheduleEntry) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Month\tEMI\tPrincipal\tInterest\tBalance\t")
	for _, row := range rows {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t\n",
			row.Period,
			row.Payment.StringFixed(2),
			row.Principal.StringFixed(2),
			row.Interest.StringFixed(2),
			row.Balance.StringFixed(2))
	}
	tw.Flush()
}
