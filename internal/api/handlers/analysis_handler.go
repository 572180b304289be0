package handlers

import (
	"net/http"

	"github.com/medreportai/companion/internal/application/services"
)

// AnalysisHandler exposes the analysis session
type AnalysisHandler struct {
	workflow *services.WorkflowService
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(workflow *services.WorkflowService) *AnalysisHandler {
	return &AnalysisHandler{workflow: workflow}
}

// SubmitAnalysis handles POST /api/analysis/submit. The remote and
// transport failures of the analysis itself land in the returned
// snapshot, not in the HTTP status; only contract violations error out.
func (h *AnalysisHandler) SubmitAnalysis(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.workflow.SubmitAnalysis(r.Context())
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, snapshot)
}

// RetryAnalysis handles POST /api/analysis/retry
func (h *AnalysisHandler) RetryAnalysis(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.workflow.RetryAnalysis(r.Context())
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, snapshot)
}

// GetAnalysis handles GET /api/analysis. The rendered view filters
// empty fields; the raw result keeps them all.
func (h *AnalysisHandler) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	snapshot := h.workflow.AnalysisSnapshot()
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"analysis": snapshot,
		"rendered": snapshot.Result.Rendered(),
	})
}
