package log

// Common field names for structured logging
const (
	FieldComponent = "component"
	FieldError     = "error"
	FieldOperation = "operation"
	FieldShiftID   = "shift_id"
	FieldPersonID  = "person_id"
	FieldShiftDate = "shift_date"
	FieldHours     = "hours"
	FieldRowCount  = "row_count"
	FieldFindings  = "finding_count"
	FieldSheetsRef = "sheets_ref"
	FieldBatchSize = "batch_size"
	FieldQueue     = "queue"
	FieldExchange  = "exchange"
)

// Components defines standard component names
const (
	ComponentApp    = "app"
	ComponentCLI    = "cli"
	ComponentWorker = "worker"
)

// Operations defines standard operation names
const (
	OpCreate   = "create"
	OpAppend   = "append"
	OpSync     = "sync"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithError adds error field
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithShift adds shift-related fields
func (f LogFields) WithShift(id, personID, date, hours string) LogFields {
	f[FieldShiftID] = id
	f[FieldPersonID] = personID
	f[FieldShiftDate] = date
	f[FieldHours] = hours
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
