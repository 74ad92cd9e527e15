package apiserver

import (
	"net/http"

	"studyhub/internal/middleware"
	"studyhub/internal/services"
)

// GroupHandler serves study-group, membership and session endpoints.
type GroupHandler struct {
	groups services.GroupService
}

// NewGroupHandler creates a GroupHandler.
func NewGroupHandler(groups services.GroupService) *GroupHandler {
	return &GroupHandler{groups: groups}
}

// List handles GET /api/groups. ?mine=true lists the caller's groups,
// ?subject= filters the public listing.
func (h *GroupHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())

	if r.URL.Query().Get("mine") == "true" {
		groups, err := h.groups.ListForUser(r.Context(), userID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, groups)
		return
	}

	limit, offset := pagination(r)
	groups, err := h.groups.List(r.Context(), r.URL.Query().Get("subject"), limit, offset)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, groups)
}

// Create handles POST /api/groups.
func (h *GroupHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())

	var input services.CreateGroupInput
	if !decodeBody(w, r, &input) {
		return
	}

	group, err := h.groups.Create(r.Context(), userID, input)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, group)
}

// Get handles GET /api/groups/{id}.
func (h *GroupHandler) Get(w http.ResponseWriter, r *http.Request) {
	groupID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid group id")
		return
	}

	group, err := h.groups.Get(r.Context(), groupID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, group)
}

// Join handles POST /api/groups/{id}/join.
func (h *GroupHandler) Join(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())
	groupID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid group id")
		return
	}

	if err := h.groups.Join(r.Context(), groupID, userID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "joined"})
}

// Leave handles POST /api/groups/{id}/leave.
func (h *GroupHandler) Leave(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())
	groupID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid group id")
		return
	}

	if err := h.groups.Leave(r.Context(), groupID, userID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "left"})
}

// CreateSession handles POST /api/groups/{id}/sessions.
func (h *GroupHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())
	groupID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid group id")
		return
	}

	var input services.ScheduleSessionInput
	if !decodeBody(w, r, &input) {
		return
	}

	session, err := h.groups.ScheduleSession(r.Context(), groupID, userID, input)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

// ListSessions handles GET /api/groups/{id}/sessions.
func (h *GroupHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	groupID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid group id")
		return
	}

	sessions, err := h.groups.ListSessions(r.Context(), groupID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}

// UpcomingSessions handles GET /api/sessions/upcoming.
func (h *GroupHandler) UpcomingSessions(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())

	sessions, err := h.groups.UpcomingSessions(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}
