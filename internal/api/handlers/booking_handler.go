package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/medreportai/companion/internal/application/services"
	"github.com/medreportai/companion/internal/domain/entities"
)

// BookingHandler exposes the booking transaction and the doctor catalog
type BookingHandler struct {
	workflow *services.WorkflowService
}

// NewBookingHandler creates a new booking handler
func NewBookingHandler(workflow *services.WorkflowService) *BookingHandler {
	return &BookingHandler{workflow: workflow}
}

// ListDoctors handles GET /api/doctors?q=
func (h *BookingHandler) ListDoctors(w http.ResponseWriter, r *http.Request) {
	doctors := h.workflow.FilterDoctors(r.URL.Query().Get("q"))
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"doctors": doctors,
		"count":   len(doctors),
	})
}

type selectDoctorRequest struct {
	DoctorID int `json:"doctor_id"`
}

// SelectDoctor handles POST /api/booking/select
func (h *BookingHandler) SelectDoctor(w http.ResponseWriter, r *http.Request) {
	var payload selectDoctorRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	doctor, err := h.workflow.SelectDoctor(payload.DoctorID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"doctor":  doctor,
		"booking": h.workflow.BookingSnapshot(),
	})
}

// SubmitBooking handles POST /api/booking/submit
func (h *BookingHandler) SubmitBooking(w http.ResponseWriter, r *http.Request) {
	var form entities.BookingForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	record, err := h.workflow.SubmitBooking(r.Context(), form)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"status":  "confirmed",
		"booking": record,
	})
}

// ResetBooking handles POST /api/booking/reset
func (h *BookingHandler) ResetBooking(w http.ResponseWriter, r *http.Request) {
	h.workflow.ResetBooking()
	respondWithJSON(w, http.StatusOK, h.workflow.BookingSnapshot())
}

// SuggestDoctor handles POST /api/booking/suggest
func (h *BookingHandler) SuggestDoctor(w http.ResponseWriter, r *http.Request) {
	doctor := h.workflow.SuggestDoctor()
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"doctor": doctor,
	})
}

// ExportLedger handles POST /api/booking/export
func (h *BookingHandler) ExportLedger(w http.ResponseWriter, r *http.Request) {
	rows, err := h.workflow.ExportLedger(r.Context())
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"status": "exported",
		"rows":   rows,
	})
}

// GetBooking handles GET /api/booking
func (h *BookingHandler) GetBooking(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.workflow.BookingSnapshot())
}
