package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Xunop/e-editor/internal/config"
	"github.com/Xunop/e-editor/internal/store"
	"github.com/Xunop/e-editor/internal/version"
)

func newHandler(t *testing.T) (http.Handler, *store.Store) {
	t.Helper()
	s, err := store.Open(context.Background(), filepath.Join(t.TempDir(), "books.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	opts := config.GetDefaultOptions()
	opts.Data = t.TempDir()
	return setupHandler(opts, s, nil), s
}

func TestHealthcheck(t *testing.T) {
	h, s := newHandler(t)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthcheck", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())

	require.NoError(t, s.Close())
	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthcheck", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestVersion(t *testing.T) {
	h, _ := newHandler(t)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/version", nil))
	assert.Equal(t, version.GetCurrentVersion(), w.Body.String())
}

func TestNotFound(t *testing.T) {
	h, _ := newHandler(t)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"success":false,"error":"resource not found"}`, w.Body.String())
}

func TestStartAndShutdown(t *testing.T) {
	s, err := store.Open(context.Background(), filepath.Join(t.TempDir(), "books.db"))
	require.NoError(t, err)
	defer s.Close()

	opts := config.GetDefaultOptions()
	opts.Data = t.TempDir()
	opts.Host = "127.0.0.1"
	opts.Port = 0

	srv, errc := StartServer(opts, s, nil)
	require.NoError(t, Shutdown(srv))
	for err := range errc {
		assert.NoError(t, err)
	}
}
