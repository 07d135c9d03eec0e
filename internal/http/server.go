package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"autoloan/internal/cache"
	"autoloan/internal/catalog"
	"autoloan/internal/log"
	"autoloan/internal/middleware/ratelimit"
	"autoloan/internal/middleware/security"
	"autoloan/internal/middleware/trace"
	appweb "autoloan/web"
)

// Options configures a Server. Presets is required; everything else has a
// working default. A nil Quotes cache disables quote caching entirely.
type Options struct {
	Addr                   string
	Presets                catalog.PresetReader
	Quotes                 cache.Cache[QuoteData]
	Logger                 *log.Logger
	RateLimitPerMinute     int
	AffordabilityThreshold decimal.Decimal
}

// Server wires the calculator page, the quote endpoints and the
// operational endpoints behind the middleware chain.
type Server struct {
	http.Server

	templates *template.Template
	presets   catalog.PresetReader
	quotes    cache.Cache[QuoteData]
	logger    *log.Logger

	limiter  *ratelimit.Limiter
	tracer   *trace.Middleware
	detector *security.Detector

	threshold decimal.Decimal
	started   time.Time
	flight    singleflight.Group

	quotesComputed atomic.Int64
	shutdownOnce   sync.Once
}

// NewServer configures routes, middleware and templates, returning a
// ready-to-run server.
func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig()).WithComponent(log.ComponentHTTP)
	}

	detector := security.NewDetector()

	s := &Server{
		Server:    http.Server{Addr: opts.Addr},
		presets:   opts.Presets,
		quotes:    opts.Quotes,
		logger:    logger,
		limiter:   ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		tracer:    trace.NewMiddleware(detector.ExtractClientIP),
		detector:  detector,
		threshold: opts.AffordabilityThreshold,
		started:   time.Now(),
	}

	// Parse embedded templates at startup. A nil template set degrades to
	// 500s on the page endpoints; the JSON endpoints keep working.
	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		logger.Warn("template parsing failed", log.FieldError, err)
	}
	s.templates = t

	s.Handler = s.routes()
	return s
}

// routes assembles the handler tree. Application routes go through the full
// chain; operational endpoints and static assets bypass rate limiting and
// tracing so probes and asset fetches never eat the client's budget.
func (s *Server) routes() http.Handler {
	app := http.NewServeMux()
	app.HandleFunc("/", s.handleIndex)
	app.HandleFunc("/quote", s.handleQuote)
	app.HandleFunc("/quote/chart", s.handleQuoteChart)
	app.HandleFunc("/api/quote", s.handleAPIQuote)

	var chain http.Handler = app
	chain = s.detectSuspicious(chain)
	chain = log.Middleware(s.logger)(chain)
	chain = s.tracer.Middleware(chain)
	chain = s.limiter.Middleware(s.detector.ExtractClientIP, nil)(chain)

	root := http.NewServeMux()
	root.Handle("/", chain)
	root.HandleFunc("/healthz", s.handleHealth)
	root.HandleFunc("/readyz", s.handleReady)
	root.HandleFunc("/metrics", s.handleMetrics)

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		root.Handle("/static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		s.logger.Warn("embedded static assets unavailable", log.FieldError, err)
	}

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	return headers.Middleware(root)
}

// detectSuspicious counts and logs scanner-shaped requests without blocking
// them; the counter surfaces on /metrics.
func (s *Server) detectSuspicious(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.detector.DetectSuspiciousRequest(r) {
			s.logger.WarnContext(r.Context(), "suspicious request pattern",
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path,
				log.FieldClientIP, s.detector.ExtractClientIP(r))
		}
		next.ServeHTTP(w, r)
	})
}

// Shutdown gracefully shuts down the server and its cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
