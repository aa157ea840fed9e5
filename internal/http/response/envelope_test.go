package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelopeJSON(t *testing.T) {
	b, err := json.Marshal(Success(int64(1)))
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"data":1}`, string(b))

	b, err = json.Marshal(Failure[int64]("UNIQUE constraint failed"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":false,"error":"UNIQUE constraint failed"}`, string(b))
}

func TestEnvelopeEmptySliceIsData(t *testing.T) {
	b, err := json.Marshal(Success([]string{}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"data":[]}`, string(b))
}

func TestEnvelopeAccessors(t *testing.T) {
	ok := Success("x")
	assert.Equal(t, "x", ok.Value())
	assert.Empty(t, ok.Message())

	failed := Failure[string]("nope")
	assert.Equal(t, "", failed.Value())
	assert.Equal(t, "nope", failed.Message())
}

func TestJSONErrorResponses(t *testing.T) {
	cases := []struct {
		name   string
		write  func(w http.ResponseWriter, r *http.Request)
		status int
	}{
		{"bad request", func(w http.ResponseWriter, r *http.Request) { BadRequest(w, r, errors.New("invalid")) }, http.StatusBadRequest},
		{"unavailable", func(w http.ResponseWriter, r *http.Request) { ServiceUnavailable(w, r, errors.New("locked")) }, http.StatusServiceUnavailable},
		{"server error", func(w http.ResponseWriter, r *http.Request) { ServerError(w, r, errors.New("boom")) }, http.StatusInternalServerError},
		{"not found", func(w http.ResponseWriter, r *http.Request) { NotFound(w, r) }, http.StatusNotFound},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			w := httptest.NewRecorder()
			c.write(w, r)

			assert.Equal(t, c.status, w.Code)
			assert.Equal(t, contentTypeHeader, w.Header().Get("Content-Type"))

			var env Envelope[struct{}]
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
			assert.False(t, env.Success)
			assert.NotEmpty(t, env.Message())
		})
	}
}
