package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"autoloan/internal/cache"
	"autoloan/internal/catalog/memory"
	"autoloan/internal/core"
	"autoloan/internal/log"
)

type (
	// fieldData carries one numeric input's attributes for the form.
	fieldData struct {
		Min   string
		Max   string
		Step  string
		Value string
	}

	termOption struct {
		Years    int
		Selected bool
	}

	formData struct {
		Price       fieldData
		DownPayment fieldData
		Rate        fieldData
		FuelCost    fieldData
		Income      fieldData
		Terms       []termOption
		Threshold   string
	}
)

func newFormData(p core.Presets, threshold decimal.Decimal) formData {
	if !threshold.IsPositive() {
		threshold = core.DefaultAffordabilityThreshold
	}
	field := func(r core.FieldRange) fieldData {
		return fieldData{
			Min:   r.Min.String(),
			Max:   r.Max.String(),
			Step:  r.Step.String(),
			Value: r.Default.String(),
		}
	}
	d := formData{
		Price:       field(p.Price),
		DownPayment: field(p.DownPaymentPercent),
		Rate:        field(p.AnnualRatePercent),
		FuelCost:    field(p.MonthlyFuelCost),
		Income:      field(p.MonthlyIncome),
		Threshold:   core.FormatPercent(threshold),
	}
	for _, years := range p.TermYearOptions {
		d.Terms = append(d.Terms, termOption{Years: years, Selected: years == p.DefaultTermYears})
	}
	return d
}

// handleIndex renders the calculator page with the form populated from the
// preset catalog.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if s.templates == nil {
		s.logger.ErrorContext(r.Context(), "templates not loaded", log.FieldPath, r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 7*time.Second)
	defer cancel()

	presets, err := s.presets.Presets(ctx)
	if err != nil {
		// The page must still render; fall back to the built-in defaults.
		s.logger.ErrorContext(ctx, "preset load failed",
			log.FieldError, err,
			log.FieldOperation, log.OpPresets)
		presets = memory.Defaults()
	}

	data := newFormData(presets, s.threshold)
	if err := s.templates.ExecuteTemplate(w, "index.html", data); err != nil {
		s.logger.ErrorContext(ctx, "index template execution failed",
			log.FieldError, err,
			log.FieldOperation, log.OpRender)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// handleHealth performs a basic liveness check.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	health := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).String(),
	}

	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(health)
}

// handleReady performs a readiness check with dependency verification.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]interface{})

	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	if s.presets == nil {
		checks["preset_catalog"] = "not_configured"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else if _, err := s.presets.Presets(ctx); err != nil {
		checks["preset_catalog"] = fmt.Sprintf("failed: %v", err)
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["preset_catalog"] = "ok"
	}

	if s.quotes != nil {
		checks["quote_cache"] = map[string]interface{}{
			"entries": s.quotes.Size(),
			"status":  "ok",
		}
	} else {
		checks["quote_cache"] = "disabled"
	}

	checks["rate_limiter"] = map[string]interface{}{
		"active_clients": s.limiter.ActiveClients(),
		"status":         "ok",
	}

	response := map[string]interface{}{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	}

	w.WriteHeader(httpStatus)
	_ = json.NewEncoder(w).Encode(response)
}

// handleMetrics provides application and security metrics in plain text format.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	traceMetrics := s.tracer.GetMetrics()
	rateMetrics := s.limiter.GetMetrics()
	securityMetrics := s.detector.GetMetrics()
	uptime := time.Since(s.started)

	var cacheStats cache.Stats
	cacheEntries := 0
	if s.quotes != nil {
		cacheEntries = s.quotes.Size()
		if sp, ok := s.quotes.(cache.StatsProvider); ok {
			cacheStats = sp.Stats()
		}
	}

	w.WriteHeader(http.StatusOK)

	fmt.Fprintf(w, "# HELP http_requests_total Total number of HTTP requests\n")
	fmt.Fprintf(w, "# TYPE http_requests_total counter\n")
	fmt.Fprintf(w, "http_requests_total %d\n\n", traceMetrics.TotalRequests)

	fmt.Fprintf(w, "# HELP http_client_errors_total Total requests answered with a 4xx status\n")
	fmt.Fprintf(w, "# TYPE http_client_errors_total counter\n")
	fmt.Fprintf(w, "http_client_errors_total %d\n\n", traceMetrics.ClientErrors)

	fmt.Fprintf(w, "# HELP http_server_errors_total Total requests answered with a 5xx status\n")
	fmt.Fprintf(w, "# TYPE http_server_errors_total counter\n")
	fmt.Fprintf(w, "http_server_errors_total %d\n\n", traceMetrics.ServerErrors)

	fmt.Fprintf(w, "# HELP http_request_duration_average_us Average request duration in microseconds\n")
	fmt.Fprintf(w, "# TYPE http_request_duration_average_us gauge\n")
	fmt.Fprintf(w, "http_request_duration_average_us %d\n\n", traceMetrics.AverageDurationUs)

	fmt.Fprintf(w, "# HELP quotes_computed_total Total number of quotes computed\n")
	fmt.Fprintf(w, "# TYPE quotes_computed_total counter\n")
	fmt.Fprintf(w, "quotes_computed_total %d\n\n", s.quotesComputed.Load())

	fmt.Fprintf(w, "# HELP quote_cache_hits_total Total quote cache hits\n")
	fmt.Fprintf(w, "# TYPE quote_cache_hits_total counter\n")
	fmt.Fprintf(w, "quote_cache_hits_total %d\n\n", cacheStats.Hits)

	fmt.Fprintf(w, "# HELP quote_cache_misses_total Total quote cache misses\n")
	fmt.Fprintf(w, "# TYPE quote_cache_misses_total counter\n")
	fmt.Fprintf(w, "quote_cache_misses_total %d\n\n", cacheStats.Misses)

	fmt.Fprintf(w, "# HELP quote_cache_entries Current quote cache entries\n")
	fmt.Fprintf(w, "# TYPE quote_cache_entries gauge\n")
	fmt.Fprintf(w, "quote_cache_entries %d\n\n", cacheEntries)

	fmt.Fprintf(w, "# HELP rate_limit_rejected_total Total requests rejected by the rate limiter\n")
	fmt.Fprintf(w, "# TYPE rate_limit_rejected_total counter\n")
	fmt.Fprintf(w, "rate_limit_rejected_total %d\n\n", rateMetrics.Rejected)

	fmt.Fprintf(w, "# HELP rate_limit_active_clients Currently tracked rate limit clients\n")
	fmt.Fprintf(w, "# TYPE rate_limit_active_clients gauge\n")
	fmt.Fprintf(w, "rate_limit_active_clients %d\n\n", rateMetrics.ClientCount)

	fmt.Fprintf(w, "# HELP suspicious_requests_total Total suspicious requests detected\n")
	fmt.Fprintf(w, "# TYPE suspicious_requests_total counter\n")
	fmt.Fprintf(w, "suspicious_requests_total %d\n\n", securityMetrics.SuspiciousRequests)

	fmt.Fprintf(w, "# HELP uptime_seconds Application uptime in seconds\n")
	fmt.Fprintf(w, "# TYPE uptime_seconds gauge\n")
	fmt.Fprintf(w, "uptime_seconds %.0f\n", uptime.Seconds())
}
