package log

// Common field names for structured logging
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
	FieldEntity     = "entity"
	FieldID         = "id"
	FieldCount      = "count"
	FieldName       = "name"
	FieldStartDate  = "start_date"
	FieldEndDate    = "end_date"
)

// Components defines standard component names
const (
	ComponentApp        = "app"
	ComponentHTTP       = "http"
	ComponentStorage    = "storage"
	ComponentRepository = "repository"
	ComponentReport     = "report"
	ComponentBackup     = "backup"
	ComponentAMQP       = "amqp"
	ComponentWorker     = "worker"
	ComponentCache      = "cache"
)

// Operations defines standard operation names
const (
	OpCreate   = "create"
	OpRead     = "read"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpList     = "list"
	OpQuery    = "query"
	OpExport   = "export"
	OpImport   = "import"
	OpReset    = "reset"
	OpSnapshot = "snapshot"
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

// WithRecord adds the entity and id of the record an operation touched.
func (f LogFields) WithRecord(entity string, id int64) LogFields {
	f[FieldEntity] = entity
	f[FieldID] = id
	return f
}

func (f LogFields) With(key string, value any) LogFields {
	f[key] = value
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
