package log

// Common field names for structured logging
const (
	FieldComponent     = "component"
	FieldError         = "error"
	FieldOperation     = "operation"
	FieldPath          = "path"
	FieldBackend       = "backend"
	FieldCount         = "count"
	FieldIndex         = "index"
	FieldCategory      = "category"
	FieldAmount        = "amount"
	FieldTxType        = "type"
	FieldDate          = "date"
	FieldSkipped       = "skipped"
	FieldExchange      = "exchange"
	FieldRoutingKey    = "routing_key"
	FieldSpreadsheet   = "spreadsheet_id"
	FieldUpdatedRange  = "updated_range"
	FieldSchemaVersion = "schema_version"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentShell   = "shell"
	ComponentTracker = "tracker"
	ComponentStorage = "storage"
	ComponentBackend = "backend"
	ComponentAMQP    = "amqp"
	ComponentSheets  = "sheets"
)

// Operations defines standard operation names
const (
	OpAdd      = "add"
	OpEdit     = "edit"
	OpDelete   = "delete"
	OpImport   = "import"
	OpLoad     = "load"
	OpSave     = "save"
	OpExport   = "export"
	OpReport   = "report"
	OpPublish  = "publish"
	OpSync     = "sync"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

func NewFields() LogFields {
	return make(LogFields)
}

func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

// WithError adds the error message; a nil error is ignored.
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

func (f LogFields) WithPath(path string) LogFields {
	f[FieldPath] = path
	return f
}

func (f LogFields) WithCount(n int) LogFields {
	f[FieldCount] = n
	return f
}

// WithTransaction adds the fields of one transaction.
func (f LogFields) WithTransaction(date, txType, category, amount string) LogFields {
	f[FieldDate] = date
	f[FieldTxType] = txType
	f[FieldCategory] = category
	f[FieldAmount] = amount
	return f
}

// WithGoal adds the fields of one budget goal.
func (f LogFields) WithGoal(category, amount string) LogFields {
	f[FieldCategory] = category
	f[FieldAmount] = amount
	return f
}

// ToSlice converts LogFields to key/value pairs for slog. Order is not stable.
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
