package log

// Common field names for structured logging.
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldAccountID  = "account_id"
	FieldDebtID     = "debt_id"
	FieldPlanID     = "plan_id"
	FieldCategoryID = "category_id"
	FieldStrategy   = "strategy"
	FieldRows       = "rows"
)

// Components defines standard component names.
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentStorage   = "storage"
	ComponentImport    = "import"
	ComponentAnalytics = "analytics"
	ComponentDebts     = "debts"
	ComponentCache     = "cache"
	ComponentRateLimit = "rate_limit"
)
