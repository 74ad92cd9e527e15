package apiserver

import (
	"net/http"

	gorillahandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"studyhub/internal/auth"
	"studyhub/internal/config"
	"studyhub/internal/metrics"
	"studyhub/internal/middleware"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth         *AuthHandler
	User         *UserHandler
	Conversation *ConversationHandler
	Group        *GroupHandler
	Quiz         *QuizHandler
	Resource     *ResourceHandler
	Upload       *UploadHandler
	Assistant    *AssistantHandler
}

// NewRouter builds the API server's route table. Everything under /api except
// the auth endpoints requires a valid bearer token.
func NewRouter(h Handlers, cfg config.Config, blacklist auth.TokenBlacklist) http.Handler {
	r := mux.NewRouter()

	r.Handle("/metrics", promhttp.Handler())
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": cfg.AppVersion})
	}).Methods(http.MethodGet)

	// Uploaded files.
	r.PathPrefix(cfg.Storage.BaseURL + "/").Handler(
		http.StripPrefix(cfg.Storage.BaseURL+"/", http.FileServer(http.Dir(cfg.Storage.LocalPath))))

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/auth/register", h.Auth.Register).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", h.Auth.Login).Methods(http.MethodPost)
	api.HandleFunc("/auth/logout", h.Auth.Logout).Methods(http.MethodPost)

	protected := api.NewRoute().Subrouter()
	protected.Use(func(next http.Handler) http.Handler {
		return middleware.AuthMiddleware(next, cfg.Auth, blacklist)
	})

	protected.HandleFunc("/profile", h.User.GetProfile).Methods(http.MethodGet)
	protected.HandleFunc("/profile", h.User.UpdateProfile).Methods(http.MethodPut)
	protected.HandleFunc("/users", h.User.Search).Methods(http.MethodGet)

	protected.HandleFunc("/conversations", h.Conversation.List).Methods(http.MethodGet)
	protected.HandleFunc("/conversations", h.Conversation.Create).Methods(http.MethodPost)
	protected.HandleFunc("/conversations/{id:[0-9]+}", h.Conversation.Get).Methods(http.MethodGet)
	protected.HandleFunc("/conversations/{id:[0-9]+}/messages", h.Conversation.ListMessages).Methods(http.MethodGet)
	protected.HandleFunc("/conversations/{id:[0-9]+}/messages", h.Conversation.CreateMessage).Methods(http.MethodPost)

	protected.HandleFunc("/groups", h.Group.List).Methods(http.MethodGet)
	protected.HandleFunc("/groups", h.Group.Create).Methods(http.MethodPost)
	protected.HandleFunc("/groups/{id:[0-9]+}", h.Group.Get).Methods(http.MethodGet)
	protected.HandleFunc("/groups/{id:[0-9]+}/join", h.Group.Join).Methods(http.MethodPost)
	protected.HandleFunc("/groups/{id:[0-9]+}/leave", h.Group.Leave).Methods(http.MethodPost)
	protected.HandleFunc("/groups/{id:[0-9]+}/sessions", h.Group.ListSessions).Methods(http.MethodGet)
	protected.HandleFunc("/groups/{id:[0-9]+}/sessions", h.Group.CreateSession).Methods(http.MethodPost)
	protected.HandleFunc("/groups/{id:[0-9]+}/resources", h.Resource.ListForGroup).Methods(http.MethodGet)
	protected.HandleFunc("/groups/{id:[0-9]+}/resources", h.Resource.Share).Methods(http.MethodPost)

	protected.HandleFunc("/sessions/upcoming", h.Group.UpcomingSessions).Methods(http.MethodGet)
	protected.HandleFunc("/resources", h.Resource.ListMine).Methods(http.MethodGet)

	protected.HandleFunc("/quizzes", h.Quiz.List).Methods(http.MethodGet)
	protected.HandleFunc("/quizzes", h.Quiz.Create).Methods(http.MethodPost)
	protected.HandleFunc("/quizzes/{id:[0-9]+}", h.Quiz.Get).Methods(http.MethodGet)

	protected.HandleFunc("/upload", h.Upload.Upload).Methods(http.MethodPost)
	protected.HandleFunc("/assistant/message", h.Assistant.Message).Methods(http.MethodPost)

	corsOpts := []gorillahandlers.CORSOption{
		gorillahandlers.AllowedOrigins(cfg.APIServer.CORS.AllowedOrigins),
		gorillahandlers.AllowedMethods(cfg.APIServer.CORS.AllowedMethods),
		gorillahandlers.AllowedHeaders(cfg.APIServer.CORS.AllowedHeaders),
		gorillahandlers.ExposedHeaders(cfg.APIServer.CORS.ExposedHeaders),
		gorillahandlers.MaxAge(cfg.APIServer.CORS.MaxAge),
	}
	if cfg.APIServer.CORS.AllowCredentials {
		corsOpts = append(corsOpts, gorillahandlers.AllowCredentials())
	}

	return metrics.HTTPMiddleware(gorillahandlers.CORS(corsOpts...)(r))
}
