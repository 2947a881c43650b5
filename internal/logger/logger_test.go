package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithLoggingHTTPMiddleware(t *testing.T) {
	require.NoError(t, Init("debug"))

	handler := WithLoggingHTTPMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get(RequestIDHeader))
		w.WriteHeader(http.StatusAccepted)
	}))

	t.Run("generates request id", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/user", nil))

		assert.Equal(t, http.StatusAccepted, w.Code)
		assert.Regexp(t, `^\w+-\w+-\w+-\w+-\w+$`, w.Header().Get(RequestIDHeader))
	})

	t.Run("keeps client request id", func(t *testing.T) {
		w := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodGet, "/user", nil)
		request.Header.Set(RequestIDHeader, "client-id")
		handler.ServeHTTP(w, request)

		assert.Equal(t, "client-id", w.Header().Get(RequestIDHeader))
	})
}

func TestInitRejectsUnknownLevel(t *testing.T) {
	assert.Error(t, Init("loud"))
}
