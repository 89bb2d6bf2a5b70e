package log

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldRequestID   = "request_id"
	FieldClientIP    = "client_ip"
	FieldMethod      = "method"
	FieldPath        = "path"
	FieldStatusCode  = "status_code"
	FieldDuration    = "duration_ms"
	FieldUserAgent   = "user_agent"
	FieldError       = "error"
	FieldOperation   = "operation"
	FieldSource      = "source"
	FieldGranularity = "granularity"
	FieldView        = "view"
	FieldFrom        = "from"
	FieldTo          = "to"
	FieldJobID       = "job_id"
	FieldRowCount    = "row_count"
	FieldBucketCount = "bucket_count"
	FieldFallback    = "used_fallback"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentBillboard = "billboard"
	ComponentStorage   = "storage"
	ComponentAMQP      = "amqp"
	ComponentWorker    = "worker"
	ComponentSheets    = "sheets"
	ComponentCache     = "cache"
	ComponentBackend   = "backend"
)

// Operations defines standard operation names
const (
	OpRead      = "read"
	OpAggregate = "aggregate"
	OpResolve   = "resolve"
	OpCompose   = "compose"
	OpRefresh   = "refresh"
	OpComplete  = "complete"
	OpStartup   = "startup"
	OpShutdown  = "shutdown"
)
