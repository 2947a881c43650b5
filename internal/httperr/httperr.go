// Package httperr defines the JSON error body returned by the HTTP API,
// including field-level validation errors.
package httperr

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	validator "github.com/go-playground/validator/v10"

	"github.com/patric-chuzhbe/userapp/internal/logger"
)

// FieldError is one failed constraint of a request body field.
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// HTTPError is the body of every non-2xx response.
type HTTPError struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Status  int          `json:"status"`
	Errors  []FieldError `json:"errors,omitempty"`
}

func (e *HTTPError) Error() string {
	return e.Message
}

// codeFor turns "Bad Request" into "BAD_REQUEST".
func codeFor(status int) string {
	return strings.ToUpper(strings.ReplaceAll(http.StatusText(status), " ", "_"))
}

func NewBadRequestError(message string, fieldErrors []FieldError) *HTTPError {
	return &HTTPError{
		Code:    codeFor(http.StatusBadRequest),
		Message: message,
		Status:  http.StatusBadRequest,
		Errors:  fieldErrors,
	}
}

func NewNotFoundError(message string) *HTTPError {
	return &HTTPError{
		Code:    codeFor(http.StatusNotFound),
		Message: message,
		Status:  http.StatusNotFound,
	}
}

// NewInternalServerError hides the cause from the client; log it separately.
func NewInternalServerError() *HTTPError {
	return &HTTPError{
		Code:    codeFor(http.StatusInternalServerError),
		Message: http.StatusText(http.StatusInternalServerError),
		Status:  http.StatusInternalServerError,
	}
}

// ValidationError converts a validator error into a 400 with one FieldError
// per failed field. Field names are the lower-cased JSON names.
func ValidationError(err error) *HTTPError {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return NewBadRequestError("Validation failed: "+err.Error(), nil)
	}

	fieldErrors := make([]FieldError, 0, len(validationErrors))
	for _, fieldErr := range validationErrors {
		fieldErrors = append(fieldErrors, FieldError{
			Field: strings.ToLower(fieldErr.Field()),
			Error: describe(fieldErr),
		})
	}

	return NewBadRequestError("Validation failed", fieldErrors)
}

func describe(fieldErr validator.FieldError) string {
	switch fieldErr.Tag() {
	case "required", "notblank":
		return "is required"
	case "gte":
		return "must be at least " + fieldErr.Param()
	case "lte":
		return "must be at most " + fieldErr.Param()
	default:
		return "failed on the '" + fieldErr.Tag() + "' rule"
	}
}

// Write renders httpErr as JSON with its status code.
func Write(w http.ResponseWriter, httpErr *HTTPError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpErr.Status)
	if err := json.NewEncoder(w).Encode(httpErr); err != nil {
		logger.Log.Debugln("Error calling the `json.NewEncoder(w).Encode()`: ", err)
	}
}
