package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/aurelia-health/aurelia-backend/internal/config"
	"github.com/aurelia-health/aurelia-backend/internal/services"
)

var cloudinaryService *services.CloudinaryService

func InitCloudinaryService(cfg *config.Config) error {
	service, err := services.NewCloudinaryService(
		cfg.CloudinaryName,
		cfg.CloudinaryAPIKey,
		cfg.CloudinaryAPISecret,
	)
	if err != nil {
		return err
	}
	cloudinaryService = service
	return nil
}

type UploadResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	URL     string `json:"url,omitempty"`
}

// UploadFile handles entry attachment uploads (images, voice memos) to
// Cloudinary and returns the URL to store on the entry.
func UploadFile(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAuth(r); !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	if cloudinaryService == nil {
		http.Error(w, "Cloudinary service not initialized", http.StatusInternalServerError)
		return
	}

	// Parse multipart form (max 10MB)
	err := r.ParseMultipartForm(10 << 20)
	if err != nil {
		http.Error(w, "Failed to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "No file provided: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	folder := r.URL.Query().Get("folder")
	if folder == "" {
		folder = "aurelia"
	}

	url, err := cloudinaryService.UploadFileFromHeader(r.Context(), fileHeader, folder)
	if err != nil {
		http.Error(w, "Failed to upload file: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(UploadResponse{
		Success: true,
		Message: "File uploaded successfully",
		URL:     url,
	})
}
