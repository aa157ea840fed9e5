package v1

import (
	"encoding/json"
	"net/http"
	"path/filepath"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/Xunop/e-editor/internal/config"
	"github.com/Xunop/e-editor/internal/http/response"
	"github.com/Xunop/e-editor/internal/middleware"
	"github.com/Xunop/e-editor/internal/storage"
)

type Handler struct {
	cmds *Commands
	// uploads are kept here until they are imported
	uploads       *storage.LocalStorage
	maxUploadSize int64
}

// NewHandler is a constructor for the v1.Handler
func NewHandler(cmds *Commands, opts *config.Options) *Handler {
	return &Handler{
		cmds:          cmds,
		uploads:       storage.NewLocalStorage(filepath.Join(opts.Data, "uploads")),
		maxUploadSize: opts.MaxUploadSize,
	}
}

func Server(router *mux.Router, handler *Handler) {
	sr := router.PathPrefix("/api/v1").Subrouter()
	sr.Use(middleware.HandleCORS)
	sr.Use(middleware.LoggingRequest)
	sr.Methods(http.MethodOptions)

	sr.HandleFunc("/books", handler.listBooks).Methods(http.MethodGet)
	sr.HandleFunc("/books", handler.addBook).Methods(http.MethodPost)
	sr.HandleFunc("/books/{id:[0-9]+}", handler.updateBook).Methods(http.MethodPatch)
	sr.HandleFunc("/books/{id:[0-9]+}", handler.deleteBook).Methods(http.MethodDelete)
	sr.HandleFunc("/books/{id:[0-9]+}/toc", handler.updateBookToc).Methods(http.MethodPut)
	sr.HandleFunc("/books/{id:[0-9]+}/export", handler.exportBook).Methods(http.MethodGet)
	sr.HandleFunc("/books/{id:[0-9]+}/chapters", handler.addChapter).Methods(http.MethodPost)
	sr.HandleFunc("/books/{id:[0-9]+}/chapters", handler.listChapters).Methods(http.MethodGet)
	sr.HandleFunc("/books/{id:[0-9]+}/chapters/first", handler.getFirstChapter).Methods(http.MethodGet)
	sr.HandleFunc("/books/{id:[0-9]+}/chapters/{chapterID:[0-9]+}", handler.getChapter).Methods(http.MethodGet)
	sr.HandleFunc("/chapters/{id:[0-9]+}", handler.updateChapter).Methods(http.MethodPut)
	sr.HandleFunc("/import", handler.importBook).Methods(http.MethodPost)
	sr.HandleFunc("/jobs/{id}", handler.getJob).Methods(http.MethodGet)
}

// respond writes an envelope. A command error means the database could not
// be reached and is not an envelope.
func respond[T any](w http.ResponseWriter, r *http.Request, env response.Envelope[T], err error) {
	if err != nil {
		response.ServiceUnavailable(w, r, err)
		return
	}
	response.OK(w, r, env)
}

func decodeBody(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return errors.New("missing request body")
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.Wrap(err, "invalid request body")
	}
	return nil
}
