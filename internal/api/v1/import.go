package v1

import (
	"net/http"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Xunop/e-editor/internal/http/request"
	"github.com/Xunop/e-editor/internal/http/response"
	"github.com/Xunop/e-editor/internal/log"
	"github.com/Xunop/e-editor/internal/validator"
)

// importBook saves the uploaded epub and queues its import. The envelope
// carries the job, poll /jobs/{id} for the result.
func (h *Handler) importBook(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.maxUploadSize << 20); err != nil {
		log.Error("Max upload size exceeded", zap.Error(err))
		response.BadRequest(w, r, err)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		response.BadRequest(w, r, errors.Wrap(err, "missing file"))
		return
	}
	defer file.Close()

	if err := validator.ValidateEpubUpload(header.Filename, file); err != nil {
		response.BadRequest(w, r, err)
		return
	}

	path, err := h.uploads.Save(file, header.Filename)
	if err != nil {
		response.ServerError(w, r, err)
		return
	}
	log.Debug("Upload saved", zap.String("path", path), zap.String("request_id", request.RequestID(r)))

	env, err := h.cmds.QueueImport(path, true)
	if err != nil || !env.Success {
		h.uploads.Remove(path)
	}
	respond(w, r, env, err)
}

func (h *Handler) getJob(w http.ResponseWriter, r *http.Request) {
	env, err := h.cmds.GetJob(request.RouteStringParam(r, "id"))
	respond(w, r, env, err)
}
