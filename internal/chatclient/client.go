package chatclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"studyhub/internal/chattypes"
	"studyhub/internal/config"
)

// State is the connection lifecycle state.
type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateReconnecting
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateReconnecting:
		return "reconnecting"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Client manages one websocket connection to the chat server: connect,
// bounded reconnect with room re-join, per-conversation timelines and typing
// emission. A Client is not reusable after Close.
//
// Transport failures are retried a fixed number of times with a fixed delay.
// When the attempts are exhausted the client lands in StateDisconnected and
// stays there; the caller decides whether to Connect again.
type Client struct {
	wsURL string
	token string
	cfg   config.RealtimeConfig

	dialer *websocket.Dialer

	mu         sync.Mutex
	conn       *websocket.Conn
	state      State
	activeRoom string
	timelines  map[string]*Timeline
	typers     map[string]*Typer

	writeMu sync.Mutex

	onState   func(State)
	onTyping  func(sig chattypes.TypingSignal, active bool)
	onMessage func(env chattypes.Envelope)
}

// NewClient creates a Client for the given websocket URL (scheme ws or wss,
// path included). The token authenticates the handshake.
func NewClient(wsURL, token string, cfg config.RealtimeConfig) *Client {
	return &Client{
		wsURL:     wsURL,
		token:     token,
		cfg:       cfg,
		dialer:    &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		state:     StateDisconnected,
		timelines: make(map[string]*Timeline),
		typers:    make(map[string]*Typer),
	}
}

// OnStateChange registers a callback for lifecycle transitions. Must be set
// before Connect.
func (c *Client) OnStateChange(fn func(State)) { c.onState = fn }

// OnTyping registers a callback for relayed typing signals from other room
// members. The signal is stale after a bounded period; the consumer clears it
// on its own clock. Must be set before Connect.
func (c *Client) OnTyping(fn func(sig chattypes.TypingSignal, active bool)) { c.onTyping = fn }

// OnMessage registers a callback invoked for every envelope that changed a
// timeline (duplicates are filtered out first). Must be set before Connect.
func (c *Client) OnMessage(fn func(env chattypes.Envelope)) { c.onMessage = fn }

// State returns the current lifecycle state.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Client) setState(s State) {
	c.mu.Lock()
	if c.state == StateClosed && s != StateClosed {
		c.mu.Unlock()
		return
	}
	changed := c.state != s
	c.state = s
	fn := c.onState
	c.mu.Unlock()

	if changed && fn != nil {
		fn(s)
	}
}

// Connect dials the server and starts the read loop. Also the manual retry
// entry point after reconnect attempts are exhausted.
func (c *Client) Connect(ctx context.Context) error {
	c.setState(StateConnecting)

	conn, err := c.dial(ctx)
	if err != nil {
		c.setState(StateDisconnected)
		return err
	}

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()
	c.setState(StateConnected)

	go c.readLoop(conn)
	return nil
}

func (c *Client) dial(ctx context.Context) (*websocket.Conn, error) {
	u, err := url.Parse(c.wsURL)
	if err != nil {
		return nil, fmt.Errorf("parse websocket url: %w", err)
	}
	q := u.Query()
	q.Set("token", c.token)
	u.RawQuery = q.Encode()

	conn, _, err := c.dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", c.wsURL, err)
	}
	return conn, nil
}

// readLoop consumes frames from one connection until it fails or the client
// is closed. A failure on the current connection triggers the reconnect path.
func (c *Client) readLoop(conn *websocket.Conn) {
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			c.mu.Lock()
			current := c.conn == conn && c.state != StateClosed
			c.mu.Unlock()
			if current {
				go c.reconnect()
			}
			return
		}

		var frame chattypes.Frame
		if err := json.Unmarshal(raw, &frame); err != nil {
			log.Warn().Err(err).Msg("malformed frame from server")
			continue
		}
		c.handleFrame(frame)
	}
}

func (c *Client) handleFrame(frame chattypes.Frame) {
	switch frame.Event {
	case chattypes.EventNewMessage:
		var env chattypes.Envelope
		if err := json.Unmarshal(frame.Data, &env); err != nil {
			log.Warn().Err(err).Msg("malformed envelope")
			return
		}
		if c.Timeline(env.ConversationID).Merge(env) && c.onMessage != nil {
			c.onMessage(env)
		}

	case chattypes.EventUserTyping, chattypes.EventUserStopped:
		if c.onTyping == nil {
			return
		}
		var sig chattypes.TypingSignal
		if err := json.Unmarshal(frame.Data, &sig); err != nil {
			return
		}
		c.onTyping(sig, frame.Event == chattypes.EventUserTyping)
	}
}

// reconnect retries the transport a bounded number of times with a fixed
// delay between attempts, then gives up into StateDisconnected. On success the
// active room is re-joined, since server-side membership does not survive the
// dropped connection.
func (c *Client) reconnect() {
	c.setState(StateReconnecting)

	for attempt := 1; attempt <= c.cfg.ReconnectAttempts; attempt++ {
		time.Sleep(c.cfg.ReconnectDelay)

		if c.State() == StateClosed {
			return
		}

		conn, err := c.dial(context.Background())
		if err != nil {
			log.Warn().Err(err).Int("attempt", attempt).Msg("reconnect failed")
			continue
		}

		c.mu.Lock()
		c.conn = conn
		room := c.activeRoom
		c.mu.Unlock()
		c.setState(StateConnected)

		if room != "" {
			if err := c.writeFrame(chattypes.EventJoinRoom, chattypes.RoomRef{ConversationID: room}); err != nil {
				log.Warn().Err(err).Str("conversation", room).Msg("failed to re-join room")
			}
		}

		go c.readLoop(conn)
		return
	}

	log.Error().Int("attempts", c.cfg.ReconnectAttempts).Msg("connection lost, giving up")
	c.setState(StateDisconnected)
}

// Timeline returns the timeline for the conversation, creating it on first
// use. The timeline survives reconnects; messages missed while disconnected
// come from the REST history endpoint, not from here.
func (c *Client) Timeline(conversationID string) *Timeline {
	c.mu.Lock()
	defer c.mu.Unlock()
	tl := c.timelines[conversationID]
	if tl == nil {
		tl = NewTimeline()
		c.timelines[conversationID] = tl
	}
	return tl
}

// Typer returns the typing emitter for the conversation, creating it on first
// use.
func (c *Client) Typer(conversationID string) *Typer {
	c.mu.Lock()
	defer c.mu.Unlock()
	ty := c.typers[conversationID]
	if ty == nil {
		sig := chattypes.TypingSignal{ConversationID: conversationID}
		ty = NewTyper(c.cfg.TypingStopAfter,
			func() {
				if err := c.writeFrame(chattypes.EventTyping, sig); err != nil {
					log.Warn().Err(err).Msg("failed to send typing signal")
				}
			},
			func() {
				if err := c.writeFrame(chattypes.EventStopTyping, sig); err != nil {
					log.Warn().Err(err).Msg("failed to send stop-typing signal")
				}
			})
		c.typers[conversationID] = ty
	}
	return ty
}

// JoinConversation joins the conversation's room and marks it as the active
// room re-joined after a reconnect. Returns the conversation's timeline.
func (c *Client) JoinConversation(conversationID string) (*Timeline, error) {
	if err := c.writeFrame(chattypes.EventJoinRoom, chattypes.RoomRef{ConversationID: conversationID}); err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.activeRoom = conversationID
	c.mu.Unlock()
	return c.Timeline(conversationID), nil
}

// LeaveConversation leaves the conversation's room.
func (c *Client) LeaveConversation(conversationID string) error {
	c.Typer(conversationID).Stop()
	c.mu.Lock()
	if c.activeRoom == conversationID {
		c.activeRoom = ""
	}
	c.mu.Unlock()
	return c.writeFrame(chattypes.EventLeaveRoom, chattypes.RoomRef{ConversationID: conversationID})
}

// Send submits a text message: the optimistic entry is appended first so the
// sender sees it immediately, then the intent goes to the server. The entry
// stays visible even when the write fails; it is just never confirmed.
// Returns the temporary client id of the optimistic entry.
func (c *Client) Send(conversationID, content string) (string, error) {
	return c.SendTyped(conversationID, chattypes.TextMessageType, content, "")
}

// SendTyped is Send for non-text message types.
func (c *Client) SendTyped(conversationID string, msgType chattypes.MessageType, content, fileURL string) (string, error) {
	clientID := uuid.New().String()

	c.Timeline(conversationID).AppendOptimistic(clientID, chattypes.Envelope{
		ConversationID: conversationID,
		Type:           msgType,
		Content:        content,
		FileURL:        fileURL,
		CreatedAt:      time.Now(),
	})
	c.Typer(conversationID).Stop()

	err := c.writeFrame(chattypes.EventSendMessage, chattypes.SendMessage{
		ClientID:       clientID,
		ConversationID: conversationID,
		Type:           msgType,
		Content:        content,
		FileURL:        fileURL,
	})
	return clientID, err
}

func (c *Client) writeFrame(event string, data interface{}) error {
	c.mu.Lock()
	conn := c.conn
	state := c.state
	c.mu.Unlock()
	if conn == nil || state != StateConnected {
		return fmt.Errorf("not connected (state %s)", state)
	}

	payload, err := chattypes.Encode(event, data)
	if err != nil {
		return err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		return fmt.Errorf("write %s frame: %w", event, err)
	}
	return nil
}

// Close tears the connection down for good. Leaves the active room first so
// the server does not wait for the read error to clean up.
func (c *Client) Close() error {
	c.mu.Lock()
	room := c.activeRoom
	c.mu.Unlock()
	if room != "" {
		_ = c.LeaveConversation(room)
	}

	c.setState(StateClosed)

	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()
	if conn == nil {
		return nil
	}

	c.writeMu.Lock()
	_ = conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	c.writeMu.Unlock()
	return conn.Close()
}
