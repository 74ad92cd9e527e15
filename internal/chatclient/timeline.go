// Package chatclient is the client half of the realtime layer: a websocket
// connection manager with bounded reconnect, a per-conversation message
// timeline that reconciles optimistic entries against server echoes, and a
// debounced typing emitter. cmd/chatcli builds a terminal client on top of it.
package chatclient

import (
	"sync"

	"studyhub/internal/chattypes"
)

// Entry is one message in a conversation timeline. Pending marks an
// optimistic entry that has not been confirmed by a server echo yet.
type Entry struct {
	chattypes.Envelope
	Pending bool
}

// Timeline holds the ordered, duplicate-free message sequence of one
// conversation. Two sources feed it: optimistic entries appended the instant
// the user submits, and server-broadcast envelopes, including the echo of the
// user's own submission. Entries keep their arrival order; a confirmation
// replaces its placeholder in place rather than re-sorting.
type Timeline struct {
	mu      sync.Mutex
	entries []Entry
	// byID indexes confirmed server ids for duplicate suppression; redelivery
	// after a reconnect must not produce a second entry.
	byID map[string]struct{}
	// pending indexes optimistic entries by their temporary client id.
	pending map[string]int
}

// NewTimeline creates an empty Timeline.
func NewTimeline() *Timeline {
	return &Timeline{
		byID:    make(map[string]struct{}),
		pending: make(map[string]int),
	}
}

// AppendOptimistic inserts a not-yet-confirmed entry for a message the user
// just submitted. clientID is the temporary id that the server will echo back
// in the confirming envelope.
func (t *Timeline) AppendOptimistic(clientID string, env chattypes.Envelope) {
	t.mu.Lock()
	defer t.mu.Unlock()

	env.ClientID = clientID
	t.pending[clientID] = len(t.entries)
	t.entries = append(t.entries, Entry{Envelope: env, Pending: true})
}

// Merge folds a server-broadcast envelope into the timeline. An envelope whose
// id is already present is discarded. An envelope carrying the client id of a
// pending entry confirms it in place. Anything else is appended at the end.
// Reports whether the timeline changed.
func (t *Timeline) Merge(env chattypes.Envelope) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, seen := t.byID[env.ID]; seen {
		return false
	}

	if env.ClientID != "" {
		if idx, ok := t.pending[env.ClientID]; ok {
			t.entries[idx] = Entry{Envelope: env}
			t.byID[env.ID] = struct{}{}
			delete(t.pending, env.ClientID)
			return true
		}
	}

	t.entries = append(t.entries, Entry{Envelope: env})
	t.byID[env.ID] = struct{}{}
	return true
}

// Entries returns a snapshot of the current sequence.
func (t *Timeline) Entries() []Entry {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Len returns the number of entries, pending ones included.
func (t *Timeline) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// PendingCount returns how many optimistic entries still await confirmation.
func (t *Timeline) PendingCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pending)
}
