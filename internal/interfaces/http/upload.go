package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"cascadeconnect/internal/infrastructure/cloudinary"
	"cascadeconnect/internal/shared/middleware"
)

// maxUploadBytes caps multipart uploads at 25 MB.
const maxUploadBytes = 25 << 20

// Uploader is the slice of the Cloudinary client the handler needs.
type Uploader interface {
	Upload(ctx context.Context, filename string, file io.Reader) (*cloudinary.UploadResult, error)
}

type UploadHandler struct {
	uploader Uploader
}

func NewUploadHandler(uploader Uploader) *UploadHandler {
	return &UploadHandler{uploader: uploader}
}

// HandleUpload accepts one multipart file under the "file" field and
// stores it in Cloudinary.
func (h *UploadHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID := middleware.UserID(r.Context())
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "Invalid multipart request", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "A file field is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	result, err := h.uploader.Upload(r.Context(), header.Filename, file)
	if err != nil {
		if errors.Is(err, cloudinary.ErrNotConfigured) {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		log.Printf("Error uploading file for user %s: %v", userID, err)
		http.Error(w, "Failed to upload file", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}
