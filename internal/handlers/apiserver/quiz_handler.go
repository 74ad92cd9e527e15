package apiserver

import (
	"net/http"

	"studyhub/internal/middleware"
	"studyhub/internal/services"
)

// QuizHandler serves quiz endpoints.
type QuizHandler struct {
	quizzes services.QuizService
}

// NewQuizHandler creates a QuizHandler.
func NewQuizHandler(quizzes services.QuizService) *QuizHandler {
	return &QuizHandler{quizzes: quizzes}
}

// List handles GET /api/quizzes.
func (h *QuizHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	quizzes, err := h.quizzes.List(r.Context(), r.URL.Query().Get("subject"), limit, offset)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quizzes)
}

// Create handles POST /api/quizzes.
func (h *QuizHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())

	var input services.CreateQuizInput
	if !decodeBody(w, r, &input) {
		return
	}

	quiz, err := h.quizzes.Create(r.Context(), userID, input)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, quiz)
}

// Get handles GET /api/quizzes/{id}.
func (h *QuizHandler) Get(w http.ResponseWriter, r *http.Request) {
	quizID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid quiz id")
		return
	}

	quiz, err := h.quizzes.Get(r.Context(), quizID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}
