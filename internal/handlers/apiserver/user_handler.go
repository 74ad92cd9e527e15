package apiserver

import (
	"net/http"

	"studyhub/internal/middleware"
	"studyhub/internal/models"
	"studyhub/internal/services"
)

// UserHandler serves profile and user search endpoints.
type UserHandler struct {
	users services.UserService
}

// NewUserHandler creates a UserHandler.
func NewUserHandler(users services.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// GetProfile handles GET /api/profile.
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())

	user, err := h.users.GetProfile(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// UpdateProfile handles PUT /api/profile.
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())

	var update services.ProfileUpdate
	if !decodeBody(w, r, &update) {
		return
	}

	user, err := h.users.UpdateProfile(r.Context(), userID, update)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// Search handles GET /api/users?q=...
func (h *UserHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "missing query parameter q")
		return
	}
	limit, _ := pagination(r)

	users, err := h.users.Search(r.Context(), query, limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	out := make([]models.UserBasicInfo, 0, len(users))
	for _, u := range users {
		out = append(out, u.BasicInfo())
	}
	writeJSON(w, http.StatusOK, out)
}
