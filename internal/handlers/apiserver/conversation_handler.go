package apiserver

import (
	"net/http"

	"github.com/gorilla/mux"

	"studyhub/internal/chattypes"
	"studyhub/internal/middleware"
	"studyhub/internal/services"
)

// ConversationHandler serves conversation listing/creation and the message
// history/create endpoints nested under a conversation.
type ConversationHandler struct {
	conversations services.ConversationService
	messages      services.MessageService
}

// NewConversationHandler creates a ConversationHandler.
func NewConversationHandler(conversations services.ConversationService, messages services.MessageService) *ConversationHandler {
	return &ConversationHandler{conversations: conversations, messages: messages}
}

// List handles GET /api/conversations.
func (h *ConversationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())
	limit, offset := pagination(r)

	convos, err := h.conversations.ListForUser(r.Context(), userID, limit, offset)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, convos)
}

type createConversationRequest struct {
	// Direct conversation: the other participant.
	UserID uint `json:"userId,omitempty"`
	// Group chat: a name plus the initial members.
	Name      string `json:"name,omitempty"`
	MemberIDs []uint `json:"memberIds,omitempty"`
}

// Create handles POST /api/conversations. A request with a name creates a
// group chat, otherwise a direct conversation with userId.
func (h *ConversationHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())

	var req createConversationRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if req.Name != "" {
		convo, err := h.conversations.CreateGroupChat(r.Context(), userID, req.Name, req.MemberIDs)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, convo)
		return
	}

	convo, err := h.conversations.CreateDirect(r.Context(), userID, req.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, convo)
}

// Get handles GET /api/conversations/{id}.
func (h *ConversationHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())
	convoID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid conversation id")
		return
	}

	convo, err := h.conversations.Get(r.Context(), userID, convoID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, convo)
}

// ListMessages handles GET /api/conversations/{id}/messages, the history
// endpoint clients backfill from on (re)join.
func (h *ConversationHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())
	limit, offset := pagination(r)

	msgs, err := h.messages.ListForConversation(r.Context(), userID, mux.Vars(r)["id"], limit, offset)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, msgs)
}

type createMessageRequest struct {
	ClientID string `json:"clientId,omitempty"`
	Type     string `json:"type,omitempty"`
	Content  string `json:"content"`
	FileURL  string `json:"fileUrl,omitempty"`
}

// CreateMessage handles POST /api/conversations/{id}/messages. The response
// envelope echoes clientId so the caller can reconcile its optimistic entry
// even if the websocket echo is missed.
func (h *ConversationHandler) CreateMessage(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())

	var req createMessageRequest
	if !decodeBody(w, r, &req) {
		return
	}

	env, err := h.messages.Create(r.Context(), services.CreateMessageInput{
		SenderID:       userID,
		ConversationID: mux.Vars(r)["id"],
		ClientID:       req.ClientID,
		Type:           chattypes.MessageType(req.Type),
		Content:        req.Content,
		FileURL:        req.FileURL,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, env)
}
