package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"autoloan/internal/core"
	"autoloan/internal/log"
	"autoloan/internal/view"
)

var hundred = decimal.NewFromInt(100)

type (
	// QuoteSummary is the numeric result on the JSON API. Monetary values
	// are rounded to cents at this boundary; the engine works at full
	// precision.
	QuoteSummary struct {
		MonthlyPayment       decimal.Decimal `json:"monthly_payment"`
		DownPayment          decimal.Decimal `json:"down_payment"`
		FinancedAmount       decimal.Decimal `json:"financed_amount"`
		TotalInterest        decimal.Decimal `json:"total_interest"`
		TotalMonthlyCost     decimal.Decimal `json:"total_monthly_cost"`
		IncomeShare          decimal.Decimal `json:"income_share"`
		Threshold            decimal.Decimal `json:"threshold"`
		Affordable           bool            `json:"affordable"`
		TotalCostOfOwnership decimal.Decimal `json:"total_cost_of_ownership"`
		TermMonths           int             `json:"term_months"`
	}

	// QuoteData is everything a computed quote can render: the view models
	// for the partial and the chart plus the summary for the JSON API. It
	// is the cached unit, so it must survive a JSON round trip intact.
	QuoteData struct {
		Metrics   view.Metrics       `json:"metrics"`
		Insights  view.CostInsights  `json:"insights"`
		Breakdown view.Breakdown     `json:"breakdown"`
		Schedule  []view.ScheduleRow `json:"schedule"`
		Series    view.PaymentSeries `json:"series"`
		Summary   QuoteSummary       `json:"summary"`
	}
)

// handleQuote computes a quote from the calculator form and returns the
// result partial. The quote:computed trigger carries the canonical query so
// the page can refresh the payment chart.
func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	req, err := parseQuoteRequest(func(key string) string {
		return sanitizeInput(r.Form.Get(key))
	})
	if err != nil {
		s.htmlError(w, r, err)
		return
	}

	data, err := s.computeQuote(r.Context(), req)
	if err != nil {
		s.htmlError(w, r, err)
		return
	}

	if s.templates == nil {
		s.logger.ErrorContext(r.Context(), "templates not loaded", log.FieldPath, r.URL.Path)
		InternalServerError("templates not loaded").Write(w)
		return
	}

	// Render into a buffer first so a template failure never leaks half a
	// partial behind a 200.
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, "quote.html", data); err != nil {
		s.logger.ErrorContext(r.Context(), "quote template execution failed",
			log.FieldError, err,
			log.FieldOperation, log.OpRender)
		InternalServerError("rendering failed").Write(w)
		return
	}

	NewHTMXResponse().
		TriggerQuoteComputed(canonicalQuery(req)).
		BodyHTML(buf.String()).
		Write(w)
}

// handleQuoteChart returns the principal/interest series as JSON. Inputs
// arrive as query parameters so the endpoint stays stateless.
func (s *Server) handleQuoteChart(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet); resp != nil {
		resp.Write(w)
		return
	}

	query := r.URL.Query()
	req, err := parseQuoteRequest(func(key string) string {
		return sanitizeInput(query.Get(key))
	})
	if err != nil {
		s.jsonError(w, r, err)
		return
	}

	data, err := s.computeQuote(r.Context(), req)
	if err != nil {
		s.jsonError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(data.Series)
}

// handleAPIQuote is the JSON API variant of the quote computation.
func (s *Server) handleAPIQuote(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}

	parser := NewRequestBodyParser(r)
	if err := parser.Parse(); err != nil {
		writeJSONError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	req, err := parseQuoteRequest(parser.Get)
	if err != nil {
		s.jsonError(w, r, err)
		return
	}

	data, err := s.computeQuote(r.Context(), req)
	if err != nil {
		s.jsonError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(data)
}

// computeQuote runs the engine for the given request, serving from and
// feeding the quote cache when one is configured. Identical requests in
// flight share a single engine run.
func (s *Server) computeQuote(ctx context.Context, req QuoteRequest) (QuoteData, error) {
	key := s.quoteKey(req)
	if s.quotes != nil {
		if data, ok := s.quotes.Get(key); ok {
			s.logger.DebugContext(ctx, "quote served from cache",
				log.FieldCacheKey, key,
				log.FieldCacheHit, true)
			return data, nil
		}
	}

	v, err, _ := s.flight.Do(key, func() (any, error) {
		return s.buildQuote(ctx, req, key)
	})
	if err != nil {
		return QuoteData{}, err
	}
	return v.(QuoteData), nil
}

func (s *Server) buildQuote(ctx context.Context, req QuoteRequest, key string) (QuoteData, error) {
	sum, err := core.Compute(req.Inputs)
	if err != nil {
		return QuoteData{}, err
	}
	assessment, err := core.Assess(sum, core.AffordabilityInputs{
		MonthlyIncome: req.Income,
		RecurringCost: req.Recurring,
	}, s.threshold)
	if err != nil {
		return QuoteData{}, err
	}

	data := QuoteData{
		Metrics:   view.NewMetrics(sum, assessment),
		Insights:  view.NewCostInsights(req.Inputs, sum, req.Recurring),
		Breakdown: view.NewBreakdown(req.Inputs, sum, req.Recurring),
		Schedule:  view.NewScheduleTable(sum),
		Series:    view.NewPaymentSeries(sum),
		Summary:   newQuoteSummary(req, sum, assessment),
	}

	s.quotesComputed.Add(1)
	if s.quotes != nil {
		s.quotes.Set(key, data)
	}

	s.logger.InfoContext(ctx, "quote computed",
		log.FieldOperation, log.OpCompute,
		log.FieldPrice, req.Inputs.Price.String(),
		log.FieldDownPercent, req.Inputs.DownPaymentRate.Mul(hundred).String(),
		log.FieldTermMonths, req.Inputs.TermMonths,
		log.FieldRatePercent, req.Inputs.AnnualRate.Mul(hundred).String(),
		"affordable", assessment.Affordable)

	return data, nil
}

func newQuoteSummary(req QuoteRequest, sum core.LoanSummary, a core.Assessment) QuoteSummary {
	return QuoteSummary{
		MonthlyPayment:       sum.MonthlyPayment.Round(2),
		DownPayment:          sum.DownPayment.Round(2),
		FinancedAmount:       sum.FinancedAmount.Round(2),
		TotalInterest:        sum.TotalInterest.Round(2),
		TotalMonthlyCost:     a.TotalMonthlyCost.Round(2),
		IncomeShare:          a.IncomeShare.Round(4),
		Threshold:            a.Threshold,
		Affordable:           a.Affordable,
		TotalCostOfOwnership: core.TotalCostOfOwnership(req.Inputs, sum, req.Recurring).Round(2),
		TermMonths:           req.Inputs.TermMonths,
	}
}

// quoteKey builds the canonical cache key for a request. The threshold is
// part of the key because a shared Redis cache can serve replicas running
// different thresholds.
func (s *Server) quoteKey(req QuoteRequest) string {
	return strings.Join([]string{
		req.Inputs.Price.String(),
		req.Inputs.DownPaymentRate.String(),
		strconv.Itoa(req.Inputs.TermMonths),
		req.Inputs.AnnualRate.String(),
		req.Recurring.String(),
		req.Income.String(),
		s.threshold.String(),
	}, "|")
}

// canonicalQuery encodes the parsed inputs back into the percent-speaking
// form the chart endpoint expects.
func canonicalQuery(req QuoteRequest) string {
	q := url.Values{}
	q.Set("price", req.Inputs.Price.String())
	q.Set("down_payment_percent", req.Inputs.DownPaymentRate.Mul(hundred).String())
	q.Set("term_months", strconv.Itoa(req.Inputs.TermMonths))
	q.Set("annual_rate_percent", req.Inputs.AnnualRate.Mul(hundred).String())
	q.Set("monthly_fuel_cost", req.Recurring.String())
	q.Set("monthly_income", req.Income.String())
	return q.Encode()
}

// htmlError maps a quote failure to an error partial: caller-correctable
// input problems get a 422 with the reason, everything else a 500.
func (s *Server) htmlError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, core.ErrInvalidInput) {
		UnprocessableEntityError(err.Error()).Write(w)
		return
	}
	s.logger.ErrorContext(r.Context(), "quote computation failed", log.FieldError, err)
	InternalServerError("Something went wrong computing the quote").Write(w)
}

// jsonError is the JSON twin of htmlError.
func (s *Server) jsonError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, core.ErrInvalidInput) {
		writeJSONError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	s.logger.ErrorContext(r.Context(), "quote computation failed", log.FieldError, err)
	writeJSONError(w, http.StatusInternalServerError, "internal error")
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
