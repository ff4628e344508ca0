package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldError      = "error"
	FieldOperation  = "operation"

	FieldSnapshotID   = "snapshot_id"
	FieldLoanID       = "loan_id"
	FieldLoanCount    = "loan_count"
	FieldCompanyCount = "company_count"
	FieldTxCount      = "transaction_count"
	FieldView         = "view"
	FieldSource       = "source"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentHTTP    = "http"
	ComponentEngine  = "engine"
	ComponentStorage = "storage"
	ComponentAMQP    = "amqp"
	ComponentWorker  = "worker"
	ComponentExport  = "export"
)

// Operations defines standard operation names
const (
	OpParse    = "parse"
	OpExpand   = "expand"
	OpIngest   = "ingest"
	OpExport   = "export"
	OpList     = "list"
	OpRead     = "read"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)
