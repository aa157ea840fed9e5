package v1

import (
	"net/http"

	"github.com/Xunop/e-editor/internal/http/request"
	"github.com/Xunop/e-editor/internal/http/response"
	"github.com/Xunop/e-editor/internal/model"
)

type chapterRequest struct {
	Label   string `json:"label"`
	Href    string `json:"href"`
	Content string `json:"content"`
}

type updateChapterRequest struct {
	Label   string `json:"label"`
	Content string `json:"content"`
}

func (h *Handler) addChapter(w http.ResponseWriter, r *http.Request) {
	var req chapterRequest
	if err := decodeBody(r, &req); err != nil {
		response.BadRequest(w, r, err)
		return
	}
	env, err := h.cmds.AddChapter(r.Context(), req.Label, req.Href, req.Content, request.RouteInt64Param(r, "id"))
	respond(w, r, env, err)
}

// listChapters returns the chapters of a book, optionally filtered by href,
// label and limit.
func (h *Handler) listChapters(w http.ResponseWriter, r *http.Request) {
	bookID := request.RouteInt64Param(r, "id")
	env, err := h.cmds.GetChapterWhere(r.Context(), &model.FindChapter{
		BookID: &bookID,
		Href:   request.QueryStringParam(r, "href"),
		Label:  request.QueryStringParam(r, "label"),
		Limit:  request.QueryIntParam(r, "limit"),
	})
	respond(w, r, env, err)
}

func (h *Handler) getFirstChapter(w http.ResponseWriter, r *http.Request) {
	env, err := h.cmds.GetFirstChapter(r.Context(), request.RouteInt64Param(r, "id"))
	respond(w, r, env, err)
}

func (h *Handler) getChapter(w http.ResponseWriter, r *http.Request) {
	env, err := h.cmds.GetChapter(r.Context(),
		request.RouteInt64Param(r, "id"),
		request.RouteInt64Param(r, "chapterID"))
	respond(w, r, env, err)
}

func (h *Handler) updateChapter(w http.ResponseWriter, r *http.Request) {
	var req updateChapterRequest
	if err := decodeBody(r, &req); err != nil {
		response.BadRequest(w, r, err)
		return
	}
	env, err := h.cmds.UpdateChapter(r.Context(), request.RouteInt64Param(r, "id"), req.Label, req.Content)
	respond(w, r, env, err)
}
