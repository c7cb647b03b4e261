package apierr

import "net/http"

// --- Common ---

func InvalidRequestBody() *Error {
	return New(CodeInvalidRequestBody, http.StatusBadRequest, "Invalid request body")
}

func InternalError(cause error) *Error {
	return Wrap(CodeInternalError, http.StatusInternalServerError, "Internal server error", cause)
}

// ValidationFailed reports an invalid value for a named request field.
func ValidationFailed(field, message string) *Error {
	return New(CodeValidationFailed, http.StatusBadRequest, message).WithField(field)
}

// --- Catalog ---

func TableNotFound(name string) *Error {
	return New(CodeTableNotFound, http.StatusNotFound, "Table '"+name+"' not found")
}

func InvalidDepth(cause error) *Error {
	return Wrap(CodeInvalidDepth, http.StatusBadRequest, "depth must be an integer between 1 and 5", cause).WithField("depth")
}

// --- Graph store ---

func StoreUnavailable(cause error) *Error {
	return Wrap(CodeStoreUnavailable, http.StatusServiceUnavailable, "Graph store unavailable", cause)
}

// QueryFailed carries the raw store message, since arbitrary query errors
// cannot be sanitized.
func QueryFailed(cause error) *Error {
	return Wrap(CodeQueryFailed, http.StatusBadRequest, "Query failed", cause).WithDetail(rootMessage(cause))
}

func QueryRejected(cause error) *Error {
	return Wrap(CodeQueryRejected, http.StatusBadRequest, "Only single read-only queries are allowed", cause).WithDetail(cause.Error())
}

func QueryTimeout(cause error) *Error {
	return Wrap(CodeQueryTimeout, http.StatusGatewayTimeout, "Query timed out", cause)
}

// --- Question answering ---

func QuestionRequired() *Error {
	return New(CodeQuestionRequired, http.StatusBadRequest, "question is required").WithField("question")
}

func CypherRequired() *Error {
	return New(CodeCypherRequired, http.StatusBadRequest, "cypher is required").WithField("cypher")
}

func IntentFailed(cause error) *Error {
	return Wrap(CodeIntentFailed, http.StatusBadGateway, "Could not translate the question into a query", cause)
}

// --- History ---

func HistoryNotFound() *Error {
	return New(CodeHistoryNotFound, http.StatusNotFound, "History entry not found")
}

func HistoryUnavailable(cause error) *Error {
	return Wrap(CodeHistoryUnavailable, http.StatusServiceUnavailable, "Query history unavailable", cause)
}

// --- Health ---

func StoreNotReady() *Error {
	return New(CodeStoreNotReady, http.StatusServiceUnavailable, "Graph store not ready")
}
