package log

const (
	// Request
	FieldRequestID = "request_id"
	FieldMethod    = "method"
	FieldPath      = "path"
	FieldStatus    = "status"
	FieldLatency   = "latency_ms"
	FieldClientIP  = "client_ip"

	// Actor, set on the gin context by the auth middleware
	FieldUserID     = "user_id"
	FieldScreenName = "screen_name"

	// Service
	FieldService = "service"

	// Presence
	FieldConnID = "conn_id"
	FieldRoom   = "room"
	FieldEvent  = "event"
	FieldCount  = "count"

	// Resources
	FieldResourceID = "resource_id"

	// Log type (for audit log)
	FieldLogType = "log_type"
	LogTypeAudit = "audit"
)
