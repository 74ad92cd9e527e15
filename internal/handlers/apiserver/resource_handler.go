package apiserver

import (
	"net/http"

	"studyhub/internal/middleware"
	"studyhub/internal/services"
)

// ResourceHandler serves shared-resource endpoints.
type ResourceHandler struct {
	resources services.ResourceService
}

// NewResourceHandler creates a ResourceHandler.
func NewResourceHandler(resources services.ResourceService) *ResourceHandler {
	return &ResourceHandler{resources: resources}
}

// Share handles POST /api/groups/{id}/resources.
func (h *ResourceHandler) Share(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())
	groupID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid group id")
		return
	}

	var input services.ShareResourceInput
	if !decodeBody(w, r, &input) {
		return
	}

	resource, err := h.resources.Share(r.Context(), groupID, userID, input)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resource)
}

// ListForGroup handles GET /api/groups/{id}/resources.
func (h *ResourceHandler) ListForGroup(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())
	groupID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid group id")
		return
	}

	resources, err := h.resources.ListForGroup(r.Context(), groupID, userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resources)
}

// ListMine handles GET /api/resources.
func (h *ResourceHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())

	resources, err := h.resources.ListForUser(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resources)
}
