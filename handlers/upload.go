package handlers

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/learnify/backend/logger"
	"github.com/learnify/backend/middleware"
	"github.com/learnify/backend/service"
)

type UploadHandler struct {
	Media    service.MediaStore
	Log      *logger.Logger
	MaxBytes int64
}

type UploadResponse struct {
	ContentRef string `json:"contentRef"`
	Name       string `json:"name"`
}

// extension fallback for clients that send application/octet-stream
var lectureExtTypes = map[string]string{
	".mp4":  "video/mp4",
	".webm": "video/webm",
	".mov":  "video/quicktime",
	".pdf":  "application/pdf",
	".mp3":  "audio/mpeg",
}

// Upload handles POST /api/instructor/uploads: stores lecture content and
// returns the object key to put in a lecture's contentUrl.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.IdentityFromContext(r.Context())
	if !ok || id.ExternalID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if h.MaxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.MaxBytes)
	}
	if err := r.ParseMultipartForm(h.MaxBytes); err != nil {
		writeError(w, http.StatusBadRequest, "failed to parse multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file")
		return
	}
	defer file.Close()

	if h.Media == nil {
		writeError(w, http.StatusServiceUnavailable, "upload not configured (missing S3)")
		return
	}

	contentType := header.Header.Get("Content-Type")
	if !service.AllowedMedia(service.PrefixLectures, contentType) {
		ext := strings.ToLower(filepath.Ext(header.Filename))
		byExt, known := lectureExtTypes[ext]
		if !known {
			writeError(w, http.StatusBadRequest, "only video, audio and pdf files are allowed")
			return
		}
		contentType = byExt
	}

	key, err := h.Media.Upload(r.Context(), service.PrefixLectures, header.Filename, file, contentType)
	if err != nil {
		h.Log.Error("lecture upload failed", "user", id.ExternalID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to upload to storage")
		return
	}
	h.Log.Info("lecture content uploaded", "user", id.ExternalID, "key", key, "size", header.Size)
	writeJSON(w, http.StatusCreated, UploadResponse{ContentRef: key, Name: header.Filename})
}
