package httperr

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patric-chuzhbe/userapp/internal/models"
)

func TestValidationErrorListsFields(t *testing.T) {
	err := models.ValidateUser(models.User{Forename: " ", Age: 200})
	require.Error(t, err)

	httpErr := ValidationError(err)
	assert.Equal(t, http.StatusBadRequest, httpErr.Status)
	assert.Equal(t, "BAD_REQUEST", httpErr.Code)
	assert.ElementsMatch(
		t,
		[]FieldError{
			{Field: "forename", Error: "is required"},
			{Field: "surname", Error: "is required"},
			{Field: "age", Error: "must be at most 150"},
		},
		httpErr.Errors,
	)
}

func TestValidationErrorFallback(t *testing.T) {
	httpErr := ValidationError(errors.New("boom"))
	assert.Equal(t, "Validation failed: boom", httpErr.Message)
	assert.Empty(t, httpErr.Errors)
}

func TestWrite(t *testing.T) {
	w := httptest.NewRecorder()
	Write(w, NewNotFoundError("user with id 5 does not exist"))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var body HTTPError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, HTTPError{
		Code:    "NOT_FOUND",
		Message: "user with id 5 does not exist",
		Status:  http.StatusNotFound,
	}, body)
}

func TestNewInternalServerErrorHidesCause(t *testing.T) {
	httpErr := NewInternalServerError()
	assert.Equal(t, "Internal Server Error", httpErr.Message)
	assert.Equal(t, "INTERNAL_SERVER_ERROR", httpErr.Code)
}
