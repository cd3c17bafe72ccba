package logger

// Log field keys shared across packages.
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatus     = "status"
	FieldDurationMS = "duration_ms"
	FieldMonth      = "month"
	FieldActor      = "actor"
	FieldStage      = "stage"
	FieldInvoiceID  = "invoice_id"
	FieldInvoiceNo  = "invoice_number"
	FieldProjectID  = "project_id"
	FieldWorkLogID  = "worklog_id"
)
