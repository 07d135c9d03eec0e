package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"autoloan/internal/cache"
	"autoloan/internal/catalog/memory"
	"autoloan/internal/log"
	"autoloan/internal/view"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	srv := NewServer(Options{
		Addr:                   ":0",
		Presets:                memory.New(),
		Quotes:                 cache.NewLRUCache[QuoteData](16, time.Minute),
		Logger:                 log.Discard(),
		RateLimitPerMinute:     1000,
		AffordabilityThreshold: decimal.NewFromFloat(0.10),
	})
	t.Cleanup(srv.limiter.Stop)
	return srv
}

func postQuoteForm(srv *Server, form string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/quote", strings.NewReader(form))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

const validQuoteForm = "price=500000&down_payment_percent=20&term_years=4&annual_rate_percent=8&monthly_fuel_cost=5000&monthly_income=150000"

func TestIndexServesForm(t *testing.T) {
	srv := newTestServer(t)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	srv.Handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("index status=%d", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "Car Affordability Calculator") {
		t.Fatal("index body missing heading")
	}
	// Form defaults come from the preset catalog.
	if !strings.Contains(body, `value="500000"`) {
		t.Fatal("index body missing default price")
	}
	if !strings.Contains(body, `name="down_payment_percent"`) {
		t.Fatal("index body missing down payment field")
	}
	if rr.Header().Get("X-Frame-Options") != "DENY" {
		t.Fatal("security headers not applied")
	}
}

func TestIndexUnknownPath(t *testing.T) {
	srv := newTestServer(t)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	srv.Handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestQuotePartial(t *testing.T) {
	srv := newTestServer(t)

	rr := postQuoteForm(srv, validQuoteForm)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	body := rr.Body.String()
	// 400000 financed over 48 months at 8% gives an installment of 9765.17.
	if !strings.Contains(body, "₹9,765.17") {
		t.Fatalf("partial missing monthly payment: %s", body)
	}
	if !strings.Contains(body, "₹14,765.17") {
		t.Fatalf("partial missing total monthly cost: %s", body)
	}
	// 14765.17 of 150000 is under the 10% threshold.
	if !strings.Contains(body, "within your budget") {
		t.Fatalf("partial missing affordability banner: %s", body)
	}

	trigger := rr.Header().Get("HX-Trigger")
	if !strings.Contains(trigger, `"quote:computed"`) {
		t.Fatalf("missing quote:computed trigger: %s", trigger)
	}
	if !strings.Contains(trigger, "term_months%3D48") && !strings.Contains(trigger, "term_months=48") {
		t.Fatalf("trigger query missing term: %s", trigger)
	}
}

func TestQuotePartialOverBudget(t *testing.T) {
	srv := newTestServer(t)

	form := "price=500000&down_payment_percent=20&term_years=4&annual_rate_percent=8&monthly_fuel_cost=5000&monthly_income=50000"
	rr := postQuoteForm(srv, form)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "stretch your budget") {
		t.Fatalf("expected warning banner: %s", rr.Body.String())
	}
}

func TestQuoteValidation(t *testing.T) {
	srv := newTestServer(t)

	// Wrong method
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/quote", nil)
	srv.Handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rr.Code)
	}

	// Malformed amount
	rr = postQuoteForm(srv, "price=abc&down_payment_percent=20&term_years=4&annual_rate_percent=8&monthly_income=150000")
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "error") {
		t.Fatalf("expected error div: %s", rr.Body.String())
	}

	// Full down payment leaves nothing to finance
	rr = postQuoteForm(srv, "price=500000&down_payment_percent=100&term_years=4&annual_rate_percent=8&monthly_income=150000")
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for 100%% down payment, got %d", rr.Code)
	}
}

func TestQuoteChart(t *testing.T) {
	srv := newTestServer(t)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet,
		"/quote/chart?price=500000&down_payment_percent=20&term_months=48&annual_rate_percent=8&monthly_fuel_cost=5000&monthly_income=150000", nil)
	srv.Handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var series view.PaymentSeries
	if err := json.Unmarshal(rr.Body.Bytes(), &series); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(series.Periods) != 48 || len(series.Principal) != 48 || len(series.Interest) != 48 {
		t.Fatalf("expected 48 points per curve, got %d/%d/%d",
			len(series.Periods), len(series.Principal), len(series.Interest))
	}
	if series.Interest[0] != 2666.67 {
		t.Fatalf("expected first interest 2666.67, got %v", series.Interest[0])
	}

	// Missing inputs
	rr = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/quote/chart?price=500000", nil)
	srv.Handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rr.Code)
	}
}

func TestAPIQuote(t *testing.T) {
	srv := newTestServer(t)

	body := `{"price":"500000","down_payment_percent":20,"term_months":48,"annual_rate_percent":8,"monthly_fuel_cost":5000,"monthly_income":150000}`
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/quote", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	srv.Handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var data QuoteData
	if err := json.Unmarshal(rr.Body.Bytes(), &data); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if !data.Summary.MonthlyPayment.Equal(decimal.RequireFromString("9765.17")) {
		t.Fatalf("expected payment 9765.17, got %s", data.Summary.MonthlyPayment)
	}
	if !data.Summary.FinancedAmount.Equal(decimal.NewFromInt(400000)) {
		t.Fatalf("expected financed 400000, got %s", data.Summary.FinancedAmount)
	}
	if !data.Summary.Affordable {
		t.Fatal("expected affordable quote")
	}
	if data.Summary.TermMonths != 48 {
		t.Fatalf("expected term 48, got %d", data.Summary.TermMonths)
	}
	if len(data.Schedule) != 48 {
		t.Fatalf("expected 48 schedule rows, got %d", len(data.Schedule))
	}
	if len(data.Breakdown.Segments) != 4 {
		t.Fatalf("expected 4 breakdown segments, got %d", len(data.Breakdown.Segments))
	}
}

func TestAPIQuoteErrors(t *testing.T) {
	srv := newTestServer(t)

	// Malformed JSON
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/quote", strings.NewReader(`{"price":`))
	srv.Handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}

	// Invalid input
	rr = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/quote",
		strings.NewReader(`{"price":"abc","down_payment_percent":20,"term_months":48,"annual_rate_percent":8,"monthly_income":150000}`))
	srv.Handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rr.Code)
	}
	var errResp map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &errResp); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if errResp["error"] == "" {
		t.Fatal("expected error message")
	}
}

func TestQuoteCaching(t *testing.T) {
	srv := newTestServer(t)

	for i := 0; i < 2; i++ {
		rr := postQuoteForm(srv, validQuoteForm)
		if rr.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, rr.Code)
		}
	}

	// The second request must come from the cache, not a recomputation.
	if got := srv.quotesComputed.Load(); got != 1 {
		t.Fatalf("expected 1 computation, got %d", got)
	}
	sp, ok := srv.quotes.(cache.StatsProvider)
	if !ok {
		t.Fatal("expected stats-providing cache")
	}
	if stats := sp.Stats(); stats.Hits != 1 {
		t.Fatalf("expected 1 cache hit, got %d", stats.Hits)
	}
}

func TestOperationalEndpoints(t *testing.T) {
	srv := newTestServer(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		srv.Handler.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("%s status=%d", path, rr.Code)
		}
	}

	// Metrics report the quote counters.
	postQuoteForm(srv, validQuoteForm)
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	srv.Handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("metrics status=%d", rr.Code)
	}
	body := rr.Body.String()
	for _, metric := range []string{
		"quotes_computed_total 1",
		"quote_cache_entries 1",
		"http_requests_total",
		"uptime_seconds",
	} {
		if !strings.Contains(body, metric) {
			t.Fatalf("metrics missing %q:\n%s", metric, body)
		}
	}
}
