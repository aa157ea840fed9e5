package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Xunop/e-editor/internal/http/request"
)

func TestHandleCORSPreflight(t *testing.T) {
	called := false
	h := HandleCORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/api/v1/books", nil))

	assert.False(t, called)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "7200", w.Header().Get("Access-Control-Max-Age"))
}

func TestHandleCORSPassesThrough(t *testing.T) {
	h := HandleCORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/books", nil))

	assert.Equal(t, http.StatusTeapot, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestLoggingRequestSetsContext(t *testing.T) {
	var clientIP, requestID string
	h := LoggingRequest(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientIP = request.ClientIP(r)
		requestID = request.RequestID(r)
	}))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("X-Forwarded-For", "203.0.113.7")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	assert.Equal(t, "203.0.113.7", clientIP)
	assert.NotEmpty(t, requestID)
	assert.Equal(t, requestID, w.Header().Get("X-Request-Id"))

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("X-Request-Id", "given")
	h.ServeHTTP(httptest.NewRecorder(), r)
	assert.Equal(t, "given", requestID)
}
