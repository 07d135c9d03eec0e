package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldQuery      = "query"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldSuccess    = "success"
	FieldError      = "error"
	FieldOperation  = "operation"

	FieldPrice       = "price"
	FieldDownPercent = "down_percent"
	FieldTermMonths  = "term_months"
	FieldRatePercent = "rate_percent"
	FieldBackend     = "backend"
	FieldCacheKey    = "cache_key"
	FieldCacheHit    = "cache_hit"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentQuote     = "quote"
	ComponentCatalog   = "catalog"
	ComponentCache     = "cache"
	ComponentRateLimit = "rate_limit"
	ComponentTrace     = "trace"
	ComponentTemplate  = "template"
	ComponentCLI       = "cli"
)

// Operations defines standard operation names
const (
	OpCompute  = "compute"
	OpAssess   = "assess"
	OpParse    = "parse"
	OpRender   = "render"
	OpPresets  = "presets"
	OpMigrate  = "migrate"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)
