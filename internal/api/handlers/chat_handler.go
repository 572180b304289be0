package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/medreportai/companion/internal/application/services"
)

// ChatHandler exposes the chat session transcript
type ChatHandler struct {
	workflow *services.WorkflowService
}

// NewChatHandler creates a new chat handler
func NewChatHandler(workflow *services.WorkflowService) *ChatHandler {
	return &ChatHandler{workflow: workflow}
}

type sendMessageRequest struct {
	Message string `json:"message"`
}

// SendMessage handles POST /api/chat/messages. A failed turn is not an
// HTTP error: it comes back as an assistant transcript entry.
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var payload sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	reply, err := h.workflow.SendChatMessage(r.Context(), payload.Message)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"response": reply,
	})
}

// GetMessages handles GET /api/chat/messages
func (h *ChatHandler) GetMessages(w http.ResponseWriter, r *http.Request) {
	messages := h.workflow.ChatMessages()
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"messages": messages,
		"count":    len(messages),
	})
}
