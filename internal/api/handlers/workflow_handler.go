package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/medreportai/companion/internal/application/services"
)

// WorkflowHandler exposes the orchestrator: artifact selection and the
// availability snapshot
type WorkflowHandler struct {
	workflow *services.WorkflowService
}

// NewWorkflowHandler creates a new workflow handler
func NewWorkflowHandler(workflow *services.WorkflowService) *WorkflowHandler {
	return &WorkflowHandler{workflow: workflow}
}

type selectArtifactRequest struct {
	FilePath string `json:"file_path"`
	Filename string `json:"filename"`
	Language string `json:"language"`
}

// SelectArtifact handles POST /api/workflow/artifact
func (h *WorkflowHandler) SelectArtifact(w http.ResponseWriter, r *http.Request) {
	var payload selectArtifactRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	snapshot, err := h.workflow.SelectArtifact(r.Context(), payload.FilePath, payload.Filename, payload.Language)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, snapshot)
}

// GetWorkflow handles GET /api/workflow
func (h *WorkflowHandler) GetWorkflow(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.workflow.Snapshot())
}
