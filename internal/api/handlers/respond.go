package handlers

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/medreportai/companion/pkg/errors"
)

// Helper functions
func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, map[string]string{
		"error": message,
	})
}

// respondWithAppError maps the error taxonomy onto HTTP status codes
// and writes the user-facing message
func respondWithAppError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch apperrors.TypeOf(err) {
	case apperrors.ErrorTypeValidation, apperrors.ErrorTypeMissingArtifact:
		status = http.StatusBadRequest
	case apperrors.ErrorTypeInvalidState:
		status = http.StatusConflict
	case apperrors.ErrorTypeNotFound:
		status = http.StatusNotFound
	case apperrors.ErrorTypeUnauthenticated:
		status = http.StatusUnauthorized
	case apperrors.ErrorTypeRemote, apperrors.ErrorTypeTransport:
		status = http.StatusBadGateway
	}
	respondWithError(w, status, apperrors.MessageOf(err))
}
