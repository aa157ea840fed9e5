package v1

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/pkg/errors"

	"github.com/Xunop/e-editor/internal/http/request"
	"github.com/Xunop/e-editor/internal/http/response"
	"github.com/Xunop/e-editor/internal/model"
)

type bookRequest struct {
	Title       string `json:"title"`
	Author      string `json:"author"`
	Description string `json:"description"`
	Toc         string `json:"toc"`
}

type updateBookRequest struct {
	Title       *string `json:"title"`
	Author      *string `json:"author"`
	Description *string `json:"description"`
	Toc         *string `json:"toc"`
}

type tocRequest struct {
	Toc string `json:"toc"`
}

func (h *Handler) listBooks(w http.ResponseWriter, r *http.Request) {
	env, err := h.cmds.GetBooks(r.Context())
	respond(w, r, env, err)
}

func (h *Handler) addBook(w http.ResponseWriter, r *http.Request) {
	var req bookRequest
	if err := decodeBody(r, &req); err != nil {
		response.BadRequest(w, r, err)
		return
	}
	env, err := h.cmds.AddBook(r.Context(), req.Title, req.Author, req.Description, req.Toc)
	respond(w, r, env, err)
}

func (h *Handler) updateBook(w http.ResponseWriter, r *http.Request) {
	var req updateBookRequest
	if err := decodeBody(r, &req); err != nil {
		response.BadRequest(w, r, err)
		return
	}
	update := &model.UpdateBook{
		ID:          request.RouteInt64Param(r, "id"),
		Title:       req.Title,
		Author:      req.Author,
		Description: req.Description,
		Toc:         req.Toc,
	}
	if update.IsEmpty() {
		response.BadRequest(w, r, errors.New("no book field to update"))
		return
	}
	env, err := h.cmds.UpdateBook(r.Context(), update)
	respond(w, r, env, err)
}

func (h *Handler) deleteBook(w http.ResponseWriter, r *http.Request) {
	env, err := h.cmds.DeleteBook(r.Context(), request.RouteInt64Param(r, "id"))
	respond(w, r, env, err)
}

func (h *Handler) updateBookToc(w http.ResponseWriter, r *http.Request) {
	var req tocRequest
	if err := decodeBody(r, &req); err != nil {
		response.BadRequest(w, r, err)
		return
	}
	env, err := h.cmds.UpdateBookToc(r.Context(), request.RouteInt64Param(r, "id"), req.Toc)
	respond(w, r, env, err)
}

// exportBook sends the book as an epub attachment, or an envelope when the
// export failed.
func (h *Handler) exportBook(w http.ResponseWriter, r *http.Request) {
	bookID := request.RouteInt64Param(r, "id")

	var buf bytes.Buffer
	env, err := h.cmds.ExportBook(r.Context(), bookID, &buf)
	if err != nil || !env.Success {
		respond(w, r, env, err)
		return
	}

	builder := response.New(w, r)
	builder.WithHeader("Content-Type", "application/epub+zip")
	builder.WithAttachment(fmt.Sprintf("book-%d.epub", bookID))
	builder.WithoutCompression()
	builder.WithBody(buf.Bytes())
	builder.Write()
}
