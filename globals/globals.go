package globals

// Context keys
type ContextKey string

const (
	StoreIDKey      ContextKey = "storeId"
	OperatorIDKey   ContextKey = "operatorId"
	OperatorNameKey ContextKey = "operatorName"
	RequestIDKey    ContextKey = "requestId"
)

// Headers the register UI sends on every request.
const (
	StoreIDHeader        = "X-Store-ID"
	OperatorIDHeader     = "X-Operator-ID"
	OperatorNameHeader   = "X-Operator-Name"
	RequestIDHeader      = "X-Request-ID"
	IdempotencyKeyHeader = "Idempotency-Key"
)
