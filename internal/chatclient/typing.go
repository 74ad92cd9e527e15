package chatclient

import (
	"sync"
	"time"
)

// Typer turns raw keystrokes into the typing/stop-typing pair the server
// relays. Keystrokes are coalesced: the first one in a burst emits a single
// start signal, and every keystroke restarts the quiet-period timer, so the
// stop signal fires once, stopAfter after the last keystroke. A debounce, not
// a throttle.
type Typer struct {
	mu        sync.Mutex
	active    bool
	timer     *time.Timer
	stopAfter time.Duration

	emitStart func()
	emitStop  func()
}

// NewTyper creates a Typer. emitStart and emitStop send the corresponding
// frame; both are called without the internal lock held.
func NewTyper(stopAfter time.Duration, emitStart, emitStop func()) *Typer {
	return &Typer{
		stopAfter: stopAfter,
		emitStart: emitStart,
		emitStop:  emitStop,
	}
}

// Keystroke records typing activity. The first call of a burst emits the
// start signal; every call pushes the pending stop out by the full quiet
// period.
func (t *Typer) Keystroke() {
	t.mu.Lock()
	start := !t.active
	t.active = true
	if t.timer != nil {
		t.timer.Stop()
	}
	t.timer = time.AfterFunc(t.stopAfter, t.quiet)
	t.mu.Unlock()

	if start {
		t.emitStart()
	}
}

func (t *Typer) quiet() {
	t.mu.Lock()
	if !t.active {
		t.mu.Unlock()
		return
	}
	t.active = false
	t.timer = nil
	t.mu.Unlock()

	t.emitStop()
}

// Stop ends the burst immediately, emitting the stop signal if one was
// pending. Used when the user submits the message or leaves the conversation.
func (t *Typer) Stop() {
	t.mu.Lock()
	wasActive := t.active
	t.active = false
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.mu.Unlock()

	if wasActive {
		t.emitStop()
	}
}
