package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"studyhub/internal/chattypes"
	"studyhub/internal/config"
)

// SendHandler is invoked for every send-message frame. The implementation
// persists the message, builds the canonical envelope and publishes it; the
// realtime layer itself never persists anything.
type SendHandler func(ctx context.Context, intent chattypes.SendMessage, sender *Client) error

// JoinAuthorizer reports whether the user may join the conversation's room.
// The hub applies no checks of its own; this is the boundary.
type JoinAuthorizer func(ctx context.Context, userID uint, conversationID string) error

// Client is the server-side half of one websocket connection. The identity
// fields are bound at handshake time from the validated token; sender ids in
// incoming frames are ignored.
type Client struct {
	ID       string
	UserID   uint
	UserName string

	hub       *Hub
	conn      *websocket.Conn
	send      chan []byte
	closeOnce sync.Once

	onSend    SendHandler
	authorize JoinAuthorizer
}

func (c *Client) closeSend() {
	c.closeOnce.Do(func() { close(c.send) })
}

// userIDString is the wire form of the connection's user id.
func (c *Client) userIDString() string {
	return strconv.FormatUint(uint64(c.UserID), 10)
}

// readPump reads frames from the websocket and dispatches them. One goroutine
// per connection; exits on any read error and triggers teardown.
func (c *Client) readPump(wsCfg config.WebSocketConfig) {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(int64(wsCfg.MaxMessageSizeBytes))
	c.conn.SetReadDeadline(time.Now().Add(time.Duration(wsCfg.PongWaitSeconds) * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(time.Duration(wsCfg.PongWaitSeconds) * time.Second))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("conn", c.ID).Msg("websocket read error")
			}
			return
		}

		var frame chattypes.Frame
		if err := json.Unmarshal(raw, &frame); err != nil {
			log.Warn().Err(err).Str("conn", c.ID).Msg("malformed frame")
			continue
		}
		c.dispatch(frame)
	}
}

func (c *Client) dispatch(frame chattypes.Frame) {
	switch frame.Event {
	case chattypes.EventJoinRoom:
		var ref chattypes.RoomRef
		if err := json.Unmarshal(frame.Data, &ref); err != nil || ref.ConversationID == "" {
			return
		}
		if c.authorize != nil {
			if err := c.authorize(context.Background(), c.UserID, ref.ConversationID); err != nil {
				log.Warn().Err(err).Str("conn", c.ID).Str("conversation", ref.ConversationID).
					Msg("join rejected")
				return
			}
		}
		c.hub.join <- membership{client: c, roomID: ref.ConversationID}

	case chattypes.EventLeaveRoom:
		var ref chattypes.RoomRef
		if err := json.Unmarshal(frame.Data, &ref); err != nil || ref.ConversationID == "" {
			return
		}
		c.hub.leave <- membership{client: c, roomID: ref.ConversationID}

	case chattypes.EventSendMessage:
		var intent chattypes.SendMessage
		if err := json.Unmarshal(frame.Data, &intent); err != nil {
			return
		}
		if c.onSend == nil {
			return
		}
		if err := c.onSend(context.Background(), intent, c); err != nil {
			log.Error().Err(err).Str("conn", c.ID).Msg("send-message failed")
		}

	case chattypes.EventTyping, chattypes.EventStopTyping:
		var sig chattypes.TypingSignal
		if err := json.Unmarshal(frame.Data, &sig); err != nil || sig.ConversationID == "" {
			return
		}
		sig.UserID = c.userIDString() // never trust the client's value
		c.hub.typing <- typingRelay{
			origin: c,
			signal: sig,
			stop:   frame.Event == chattypes.EventStopTyping,
		}

	default:
		log.Debug().Str("event", frame.Event).Str("conn", c.ID).Msg("unknown event")
	}
}

// writePump writes queued payloads to the websocket and keeps the connection
// alive with pings.
func (c *Client) writePump(wsCfg config.WebSocketConfig) {
	ticker := time.NewTicker(time.Duration(wsCfg.PingPeriodSeconds) * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	writeWait := time.Duration(wsCfg.WriteWaitSeconds) * time.Second
	for {
		select {
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ServeConnection upgrades the HTTP request and runs the connection's pumps.
// userID and userName come from the already-validated handshake token.
func ServeConnection(hub *Hub, onSend SendHandler, authorize JoinAuthorizer, userID uint, userName string, w http.ResponseWriter, r *http.Request, wsCfg config.WebSocketConfig) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     func(r *http.Request) bool { return true },
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := &Client{
		ID:        uuid.New().String(),
		UserID:    userID,
		UserName:  userName,
		hub:       hub,
		conn:      conn,
		send:      make(chan []byte, 256),
		onSend:    onSend,
		authorize: authorize,
	}
	hub.register <- client

	go client.writePump(wsCfg)
	go client.readPump(wsCfg)
}
