package apiserver

import (
	"net/http"

	"studyhub/internal/services"
)

// AssistantHandler serves the canned study-assistant endpoint.
type AssistantHandler struct {
	assistant services.AssistantService
}

// NewAssistantHandler creates an AssistantHandler.
func NewAssistantHandler(assistant services.AssistantService) *AssistantHandler {
	return &AssistantHandler{assistant: assistant}
}

type assistantRequest struct {
	Message string `json:"message"`
}

// Message handles POST /api/assistant/message.
func (h *AssistantHandler) Message(w http.ResponseWriter, r *http.Request) {
	var req assistantRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	writeJSON(w, http.StatusOK, h.assistant.Reply(req.Message))
}
