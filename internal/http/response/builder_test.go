package response // import "github.com/Xunop/e-editor/internal/http/response"

import (
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponseHasCommonHeaders(t *testing.T) {
	r, err := http.NewRequest("GET", "/", nil)
	require.NoError(t, err)

	w := httptest.NewRecorder()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		New(w, r).Write()
	})

	handler.ServeHTTP(w, r)
	resp := w.Result()

	headers := map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
	}

	for header, expected := range headers {
		assert.Equal(t, expected, resp.Header.Get(header), header)
	}
}

func TestBuildResponseWithBrotliCompression(t *testing.T) {
	body := strings.Repeat("chapter body ", 200)
	r, err := http.NewRequest("GET", "/", nil)
	require.NoError(t, err)
	r.Header.Set("Accept-Encoding", "gzip, deflate, br")

	w := httptest.NewRecorder()
	New(w, r).WithBody(body).Write()
	resp := w.Result()

	require.Equal(t, "br", resp.Header.Get("Content-Encoding"))
	decoded, err := io.ReadAll(brotli.NewReader(resp.Body))
	require.NoError(t, err)
	assert.Equal(t, body, string(decoded))
}

func TestBuildResponseWithGzipCompression(t *testing.T) {
	body := strings.Repeat("chapter body ", 200)
	r, err := http.NewRequest("GET", "/", nil)
	require.NoError(t, err)
	r.Header.Set("Accept-Encoding", "gzip")

	w := httptest.NewRecorder()
	New(w, r).WithBody(body).Write()
	resp := w.Result()

	require.Equal(t, "gzip", resp.Header.Get("Content-Encoding"))
	gz, err := gzip.NewReader(resp.Body)
	require.NoError(t, err)
	decoded, err := io.ReadAll(gz)
	require.NoError(t, err)
	assert.Equal(t, body, string(decoded))
}

func TestBuildResponseSmallBodyNotCompressed(t *testing.T) {
	r, err := http.NewRequest("GET", "/", nil)
	require.NoError(t, err)
	r.Header.Set("Accept-Encoding", "br")

	w := httptest.NewRecorder()
	New(w, r).WithBody("tiny").Write()
	resp := w.Result()

	assert.Empty(t, resp.Header.Get("Content-Encoding"))
	assert.Equal(t, "tiny", w.Body.String())
}

func TestBuildResponseWithoutCompression(t *testing.T) {
	body := strings.Repeat("a", 4096)
	r, err := http.NewRequest("GET", "/", nil)
	require.NoError(t, err)
	r.Header.Set("Accept-Encoding", "br")

	w := httptest.NewRecorder()
	New(w, r).WithBody(body).WithoutCompression().Write()

	assert.Empty(t, w.Result().Header.Get("Content-Encoding"))
	assert.Equal(t, body, w.Body.String())
}

func TestBuildResponseWithReaderAndAttachment(t *testing.T) {
	r, err := http.NewRequest("GET", "/", nil)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	New(w, r).WithAttachment("book.epub").WithBody(strings.NewReader("zip bytes")).Write()
	resp := w.Result()

	assert.Equal(t, `attachment; filename="book.epub"`, resp.Header.Get("Content-Disposition"))
	assert.Equal(t, "zip bytes", w.Body.String())
}
