package apierr

// Code is a machine-readable error code returned in API responses.
type Code string

// Common errors.
const (
	CodeInvalidRequestBody Code = "INVALID_REQUEST_BODY"
	CodeInternalError      Code = "INTERNAL_ERROR"
	CodeValidationFailed   Code = "VALIDATION_FAILED"
)

// Catalog errors.
const (
	CodeTableNotFound Code = "TABLE_NOT_FOUND"
	CodeInvalidDepth  Code = "INVALID_DEPTH"
)

// Graph store errors.
const (
	CodeStoreUnavailable Code = "STORE_UNAVAILABLE"
	CodeQueryFailed      Code = "QUERY_FAILED"
	CodeQueryRejected    Code = "QUERY_REJECTED"
	CodeQueryTimeout     Code = "QUERY_TIMEOUT"
)

// Question answering errors.
const (
	CodeQuestionRequired Code = "QUESTION_REQUIRED"
	CodeCypherRequired   Code = "CYPHER_REQUIRED"
	CodeIntentFailed     Code = "INTENT_FAILED"
)

// History errors.
const (
	CodeHistoryNotFound    Code = "HISTORY_NOT_FOUND"
	CodeHistoryUnavailable Code = "HISTORY_UNAVAILABLE"
)

// Health errors.
const (
	CodeStoreNotReady Code = "STORE_NOT_READY"
)
