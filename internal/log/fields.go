package log

// Common field names for structured logging
const (
	FieldComponent     = "component"
	FieldRequestID     = "request_id"
	FieldClientIP      = "client_ip"
	FieldMethod        = "method"
	FieldPath          = "path"
	FieldStatusCode    = "status_code"
	FieldDuration      = "duration_ms"
	FieldError         = "error"
	FieldOperation     = "operation"
	FieldUserID        = "user_id"
	FieldHandle        = "handle"
	FieldTransactionID = "transaction_id"
	FieldAmountCents   = "amount_cents"
	FieldCategory      = "category"
	FieldVerb          = "verb"
)

// Components defines standard component names
const (
	ComponentApp      = "app"
	ComponentHTTP     = "http"
	ComponentLedger   = "ledger"
	ComponentStorage  = "storage"
	ComponentAMQP     = "amqp"
	ComponentWorker   = "worker"
	ComponentSheets   = "sheets"
	ComponentWhatsApp = "whatsapp"
	ComponentCache    = "cache"
)

// Operations defines standard operation names
const (
	OpCreate   = "create"
	OpRead     = "read"
	OpDelete   = "delete"
	OpList     = "list"
	OpExport   = "export"
	OpRemind   = "remind"
	OpParse    = "parse"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)
