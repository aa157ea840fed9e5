package server // import "github.com/Xunop/e-editor/internal/server"

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/Xunop/e-editor/internal/api/v1"
	"github.com/Xunop/e-editor/internal/config"
	"github.com/Xunop/e-editor/internal/http/response"
	"github.com/Xunop/e-editor/internal/log"
	"github.com/Xunop/e-editor/internal/store"
	"github.com/Xunop/e-editor/internal/version"
	"github.com/Xunop/e-editor/internal/worker"
)

const shutdownTimeout = 10 * time.Second

// StartServer starts the HTTP server in the background. errc receives the
// error if the listener fails.
func StartServer(opts *config.Options, store *store.Store, pool *worker.ImportPool) (*http.Server, <-chan error) {
	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", opts.Host, opts.Port),
		Handler:           setupHandler(opts, store, pool),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", zap.String("address", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", zap.Error(err))
			errc <- err
		}
		close(errc)
	}()

	return server, errc
}

// Shutdown stops accepting requests and waits for the running ones.
func Shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(ctx)
}

func setupHandler(opts *config.Options, store *store.Store, pool *worker.ImportPool) http.Handler {
	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(response.NotFound)

	apiHandler := v1.NewHandler(v1.NewCommands(store, pool), opts)
	v1.Server(router, apiHandler)

	router.HandleFunc("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if err := store.Ping(r.Context()); err != nil {
			log.Error("Database connection error", zap.Error(err))
			http.Error(w, "Database Connection Error", http.StatusServiceUnavailable)
			return
		}

		w.Write([]byte("OK"))
	}).Name("healthcheck")

	router.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(version.GetCurrentVersion()))
	}).Name("version")

	return router
}
