// Package apierror holds the JSON error envelopes of the price store API.
// Handlers never serialize raw errors; everything a client sees is built here.
package apierror

import "fmt"

// Machine-readable codes carried next to the human detail.
const (
	CodeBadRequest     = "bad_request"
	CodeValidation     = "validation_failed"
	CodeNotFound       = "not_found"
	CodeUnauthorized   = "unauthorized"
	CodeForbidden      = "forbidden"
	CodeRateLimited    = "rate_limited"
	CodeInternal       = "internal"
	CodeNoPriceFields  = "no_price_fields"
	CodeEmptySelection = "empty_selection"
)

// APIError is the envelope of every 4xx/5xx response.
type APIError struct {
	Detail string `json:"detail"`
	Code   string `json:"code,omitempty"`
}

func New(msg string) *APIError { return &APIError{Detail: msg} }

func WithCode(code, msg string) *APIError { return &APIError{Detail: msg, Code: code} }

// Internal is the only body a 5xx ever carries.
func Internal(msg string) *APIError { return &APIError{Detail: msg, Code: CodeInternal} }

func (e *APIError) Error() string { return e.Detail }

// ValidationError lists offending request fields with a readable reason each.
type ValidationError struct {
	Detail string            `json:"detail"`
	Code   string            `json:"code"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Validation error", Code: CodeValidation, Fields: fields}
}

// FieldMessage renders a validator tag as text.
func FieldMessage(tag, param string) string {
	switch tag {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", param)
	case "max":
		return fmt.Sprintf("must be at most %s", param)
	case "oneof":
		return fmt.Sprintf("must be one of: %s", param)
	case "uuid":
		return "must be a UUID"
	}
	return "is invalid (" + tag + ")"
}
