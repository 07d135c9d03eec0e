// This file contains parsing and formatting helpers for monetary amounts and
// percent fields. Parsing happens at the transport boundary; the engine only
// ever sees decimals that already passed through here or came from typed
// callers.
package core

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a user-entered amount to a decimal.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators. Signed
// and malformed values are rejected; amounts are never negative in this
// domain. Zero is allowed here, field-level validation decides whether it is
// acceptable.
//
// Examples:
//
//	ParseAmount("500000")  -> 500000, nil
//	ParseAmount("12,34")   -> 12.34, nil
//	ParseAmount("-5")      -> error
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("empty amount: %w", ErrInvalidInput)
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return decimal.Zero, fmt.Errorf("amount must be unsigned: %w", ErrInvalidInput)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("malformed amount %q: %w", s, ErrInvalidInput)
	}
	return d, nil
}

// ParsePercent reads a whole-percent value ("20", "8.5") and returns it as a
// fraction. The form and the API both speak percents, the engine only speaks
// fractions; this is the single conversion point between the two.
func ParsePercent(s string) (decimal.Decimal, error) {
	v, err := ParseAmount(s)
	if err != nil {
		return decimal.Zero, err
	}
	if v.GreaterThan(hundred) {
		return decimal.Zero, fmt.Errorf("percent above 100: %w", ErrInvalidInput)
	}
	return v.Div(hundred), nil
}

// FormatAmount renders an amount for display: thousands grouping, two
// decimal places, with a trailing ".00" dropped for whole amounts.
//
// Examples:
//
//	FormatAmount(decimal.NewFromFloat(1234567.5)) -> "₹1,234,567.50"
//	FormatAmount(decimal.NewFromInt(1000000))     -> "₹1,000,000"
//	FormatAmount(decimal.Zero)                    -> "₹0"
func FormatAmount(d decimal.Decimal) string {
	fixed := d.StringFixed(2)
	neg := strings.HasPrefix(fixed, "-")
	if neg {
		fixed = fixed[1:]
	}
	intPart, fracPart, _ := strings.Cut(fixed, ".")
	if fracPart == "00" {
		fracPart = ""
	}
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	b.WriteString("₹")
	b.WriteString(groupThousands(intPart))
	if fracPart != "" {
		b.WriteByte('.')
		b.WriteString(fracPart)
	}
	return b.String()
}

// FormatPercent renders a fraction as a percentage with one decimal place,
// e.g. 0.196 -> "19.6%".
func FormatPercent(fraction decimal.Decimal) string {
	return fraction.Mul(hundred).StringFixed(1) + "%"
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
