package apiserver

import (
	"net/http"

	"studyhub/internal/chattypes"
	"studyhub/internal/config"
)

// UploadHandler accepts multipart file uploads and stores them through the
// configured storage backend.
type UploadHandler struct {
	storage chattypes.StorageService
	maxSize int64
}

// NewUploadHandler creates an UploadHandler.
func NewUploadHandler(storage chattypes.StorageService, cfg config.StorageConfig) *UploadHandler {
	return &UploadHandler{storage: storage, maxSize: cfg.MaxFileSizeMB << 20}
}

// Upload handles POST /api/upload. The part name is "file"; the response
// carries the URL to reference in messages and resources.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxSize)
	if err := r.ParseMultipartForm(h.maxSize); err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "file too large")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file part")
		return
	}
	defer file.Close()

	info, err := h.storage.UploadFile(r.Context(), file, header.Size, header.Filename, header.Header.Get("Content-Type"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, info)
}
