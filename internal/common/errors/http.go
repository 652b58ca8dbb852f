// internal/common/errors/http.go
package errors

import "net/http"

// HTTPStatus maps an error to the status the HTTP boundary should return.
// Non-fatal codes are absorbed by the orchestrator and normally never reach
// the boundary; mapping them to 500 keeps the behavior defined if one leaks.
func HTTPStatus(err error) int {
	switch CodeOf(err) {
	case ErrCodeInvalidRequest:
		return http.StatusBadRequest
	case ErrCodeSynthesisTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// HTTPBody builds the error response payload, always carrying a
// human-readable message.
func HTTPBody(err error) map[string]interface{} {
	stdErr := AsStandardError(err)
	body := map[string]interface{}{
		"error": stdErr.Message,
		"code":  string(stdErr.Code),
	}
	if stdErr.Details != "" {
		body["details"] = stdErr.Details
	}
	return body
}
