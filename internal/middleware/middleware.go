package middleware // import "github.com/Xunop/e-editor/internal/middleware"

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/Xunop/e-editor/internal/http/request"
	"github.com/Xunop/e-editor/internal/log"
	"github.com/Xunop/e-editor/internal/util"
)

const requestIDHeader = "X-Request-Id"

func HandleCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept, X-Request-Id")
		if r.Method == http.MethodOptions {
			w.Header().Set("Access-Control-Max-Age", "7200")
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// LoggingRequest stores the client IP and a request id in the request
// context and logs the request once it is served.
func LoggingRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientIP := request.FindClientIP(r)
		requestID := r.Header.Get(requestIDHeader)
		if requestID == "" {
			requestID = util.GenUUID()
		}
		r = request.WithValue(r, request.ClientIPContextKey, clientIP)
		r = request.WithValue(r, request.RequestIDContextKey, requestID)
		w.Header().Set(requestIDHeader, requestID)

		t1 := time.Now()
		defer func() {
			log.Debug("Incoming request",
				zap.String("request_id", requestID),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("proto", r.Proto),
				zap.String("client_ip", clientIP),
				zap.Duration("duration", time.Since(t1)))
		}()

		next.ServeHTTP(w, r)
	})
}
