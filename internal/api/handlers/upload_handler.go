package handlers

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/medreportai/companion/pkg/config"
)

// UploadHandler stores incoming documents and hands back the
// server-side path used as the artifact identifier
type UploadHandler struct {
	dir        string
	maxBytes   int64
	extensions map[string]bool
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(cfg *config.UploadConfig) *UploadHandler {
	extensions := make(map[string]bool, len(cfg.Extensions))
	for _, ext := range cfg.Extensions {
		extensions[strings.ToLower(ext)] = true
	}
	return &UploadHandler{
		dir:        cfg.Dir,
		maxBytes:   int64(cfg.MaxSizeMB) << 20,
		extensions: extensions,
	}
}

// UploadFile handles POST /upload
func (h *UploadHandler) UploadFile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		respondWithError(w, http.StatusRequestEntityTooLarge, "file exceeds the upload size limit")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "no file part in the request")
		return
	}
	defer file.Close()

	filename := filepath.Base(header.Filename)
	ext := strings.ToLower(filepath.Ext(filename))
	if !h.extensions[ext] {
		respondWithError(w, http.StatusBadRequest,
			fmt.Sprintf("file type %s is not supported", ext))
		return
	}

	if err := os.MkdirAll(h.dir, 0o755); err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to prepare upload storage")
		return
	}

	// Stored name is unique; the original name survives as the display name.
	storedName := uuid.New().String() + ext
	storedPath := filepath.Join(h.dir, storedName)

	dst, err := os.Create(storedPath)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to store uploaded file")
		return
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		os.Remove(storedPath)
		respondWithError(w, http.StatusInternalServerError, "failed to store uploaded file")
		return
	}

	log.Info().Str("filename", filename).Str("path", storedPath).Msg("file uploaded")

	respondWithJSON(w, http.StatusOK, map[string]string{
		"message":   "File uploaded successfully",
		"file_path": storedPath,
		"filename":  filename,
	})
}
