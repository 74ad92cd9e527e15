// Package chatserver contains the websocket entry point of the StudyHub chat
// server.
package chatserver

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"studyhub/internal/auth"
	"studyhub/internal/config"
	"studyhub/internal/realtime"
)

// WebSocketHandler authenticates the handshake and hands the connection to
// the realtime layer.
type WebSocketHandler struct {
	hub       *realtime.Hub
	onSend    realtime.SendHandler
	authorize realtime.JoinAuthorizer
	authCfg   config.AuthConfig
	wsCfg     config.WebSocketConfig
	blacklist auth.TokenBlacklist
}

// NewWebSocketHandler creates a WebSocketHandler.
func NewWebSocketHandler(
	hub *realtime.Hub,
	onSend realtime.SendHandler,
	authorize realtime.JoinAuthorizer,
	authCfg config.AuthConfig,
	wsCfg config.WebSocketConfig,
	blacklist auth.TokenBlacklist,
) *WebSocketHandler {
	return &WebSocketHandler{
		hub:       hub,
		onSend:    onSend,
		authorize: authorize,
		authCfg:   authCfg,
		wsCfg:     wsCfg,
		blacklist: blacklist,
	}
}

// ServeHTTP upgrades GET /ws/chat. The JWT arrives as a query parameter
// because browser websocket clients cannot set an Authorization header. An
// anonymous or invalid handshake is rejected outright; the connection's user
// identity comes from the token and from nowhere else.
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}

	claims, err := auth.ValidateToken(r.Context(), token, h.authCfg.JWTSecretKey, h.blacklist)
	if err != nil {
		log.Warn().Err(err).Str("remote", r.RemoteAddr).Msg("websocket handshake rejected")
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	realtime.ServeConnection(h.hub, h.onSend, h.authorize, claims.UserID, claims.Name, w, r, h.wsCfg)
}
