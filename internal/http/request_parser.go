// Package http provides the web server and handler implementations.
//
// This file implements parsing of quote requests. The same field set
// arrives three ways: form-encoded from the calculator page, JSON on the
// API, and query parameters on the chart endpoint. parseQuoteRequest works
// against a plain getter so all three share one code path.

package http

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"autoloan/internal/core"
)

// QuoteRequest is the parsed input of a quote computation: the loan
// parameters plus the income side of the affordability assessment.
type QuoteRequest struct {
	Inputs    core.LoanInputs
	Income    decimal.Decimal
	Recurring decimal.Decimal
}

// parseQuoteRequest reads the quote fields through the supplied getter.
// Percent fields arrive as whole percents and leave as fractions. The term
// is accepted as term_months or term_years, months winning when both are
// present. The recurring fuel cost is optional and defaults to zero.
//
// Every failure wraps core.ErrInvalidInput, so callers map the whole class
// to a 422.
func parseQuoteRequest(get func(key string) string) (QuoteRequest, error) {
	var req QuoteRequest
	var err error

	if req.Inputs.Price, err = core.ParseAmount(get("price")); err != nil {
		return req, fmt.Errorf("price: %w", err)
	}
	if req.Inputs.DownPaymentRate, err = core.ParsePercent(get("down_payment_percent")); err != nil {
		return req, fmt.Errorf("down payment: %w", err)
	}
	if req.Inputs.AnnualRate, err = core.ParsePercent(get("annual_rate_percent")); err != nil {
		return req, fmt.Errorf("interest rate: %w", err)
	}
	if req.Inputs.TermMonths, err = parseTerm(get("term_months"), get("term_years")); err != nil {
		return req, err
	}
	if req.Income, err = core.ParseAmount(get("monthly_income")); err != nil {
		return req, fmt.Errorf("monthly income: %w", err)
	}
	req.Recurring = decimal.Zero
	if v := get("monthly_fuel_cost"); v != "" {
		if req.Recurring, err = core.ParseAmount(v); err != nil {
			return req, fmt.Errorf("fuel cost: %w", err)
		}
	}
	return req, nil
}

func parseTerm(months, years string) (int, error) {
	if v := strings.TrimSpace(months); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return 0, fmt.Errorf("malformed term %q: %w", v, core.ErrInvalidInput)
		}
		return n, nil
	}
	if v := strings.TrimSpace(years); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return 0, fmt.Errorf("malformed term %q: %w", v, core.ErrInvalidInput)
		}
		return n * 12, nil
	}
	return 0, fmt.Errorf("loan term missing: %w", core.ErrInvalidInput)
}

// RequestBodyParser handles different content types for request body parsing.
// It supports both JSON and form-encoded data.
type RequestBodyParser struct {
	body     []byte
	jsonData map[string]interface{}
	formData url.Values
	parsed   bool
	err      error
}

// NewRequestBodyParser creates a parser for the given request.
// It reads the body once and stores it for subsequent parsing.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{}
	p.body, p.err = io.ReadAll(r.Body)
	return p
}

// Parse attempts to parse the body as JSON or form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	if len(p.body) == 0 {
		p.formData = url.Values{}
		return nil
	}

	// Try JSON first if content looks like JSON
	if p.body[0] == '{' || p.body[0] == '[' {
		p.jsonData = make(map[string]interface{})
		if err := json.Unmarshal(p.body, &p.jsonData); err != nil {
			p.err = err
			return err
		}
		return nil
	}

	// Fall back to form parsing
	p.formData, p.err = url.ParseQuery(string(p.body))
	return p.err
}

// Get returns a string value from the parsed data (JSON or form).
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return strings.TrimSpace(sanitizeInput(stringValue(val)))
		}
	}
	if p.formData != nil {
		return strings.TrimSpace(sanitizeInput(p.formData.Get(key)))
	}
	return ""
}

// IsJSON returns true if the parsed content was JSON.
func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

// stringValue converts an interface{} to string.
func stringValue(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// RequireMethod checks if the request method matches the expected method(s).
// Returns an error response builder if the method doesn't match.
func RequireMethod(r *http.Request, methods ...string) *HTMXResponseBuilder {
	for _, m := range methods {
		if r.Method == m {
			return nil
		}
	}
	return MethodNotAllowedError(strings.Join(methods, ", "))
}

// RequirePOST is a convenience function for POST-only handlers.
func RequirePOST(r *http.Request) *HTMXResponseBuilder {
	return RequireMethod(r, http.MethodPost)
}

// ParseFormOrFail parses the request form and returns an error response on failure.
// Returns nil on success.
func ParseFormOrFail(r *http.Request) *HTMXResponseBuilder {
	if err := r.ParseForm(); err != nil {
		return BadRequestError("Malformed request body")
	}
	return nil
}

// sanitizeInput removes potentially dangerous characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	result := strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
	return result
}
