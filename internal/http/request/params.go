package request // import "github.com/Xunop/e-editor/internal/http/request"

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
)

// RouteInt64Param returns an URL route parameter as int64, 0 when it is
// missing or negative.
func RouteInt64Param(r *http.Request, param string) int64 {
	vars := mux.Vars(r)
	value, err := strconv.ParseInt(vars[param], 10, 64)
	if err != nil {
		return 0
	}

	if value < 0 {
		return 0
	}

	return value
}

// RouteStringParam returns a URL route parameter as string.
func RouteStringParam(r *http.Request, param string) string {
	vars := mux.Vars(r)
	return vars[param]
}

// QueryStringParam returns a query string parameter as a pointer, nil when absent.
func QueryStringParam(r *http.Request, param string) *string {
	if !r.URL.Query().Has(param) {
		return nil
	}
	value := r.URL.Query().Get(param)
	return &value
}

// QueryIntParam returns a positive query string parameter as int pointer, nil when absent or invalid.
func QueryIntParam(r *http.Request, param string) *int {
	value, err := strconv.Atoi(r.URL.Query().Get(param))
	if err != nil || value <= 0 {
		return nil
	}
	return &value
}
