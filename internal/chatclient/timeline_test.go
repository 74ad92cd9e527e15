package chatclient

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"studyhub/internal/chattypes"
)

func envelope(id, clientID, content string) chattypes.Envelope {
	return chattypes.Envelope{
		ID:             id,
		ClientID:       clientID,
		ConversationID: "c1",
		SenderID:       "1",
		Type:           chattypes.TextMessageType,
		Content:        content,
		CreatedAt:      time.Now(),
	}
}

func TestTimelineOptimisticThenEcho(t *testing.T) {
	tl := NewTimeline()

	tl.AppendOptimistic("tmp-1", chattypes.Envelope{ConversationID: "c1", Content: "hello"})
	require.Equal(t, 1, tl.Len())
	require.Equal(t, 1, tl.PendingCount())

	require.True(t, tl.Merge(envelope("m1", "tmp-1", "hello")))

	entries := tl.Entries()
	require.Len(t, entries, 1)
	require.False(t, entries[0].Pending)
	require.Equal(t, "m1", entries[0].ID)
	require.Equal(t, 0, tl.PendingCount())
}

func TestTimelineDuplicateDeliveryIsDiscarded(t *testing.T) {
	tl := NewTimeline()
	env := envelope("m1", "", "hello")

	require.True(t, tl.Merge(env))
	require.False(t, tl.Merge(env)) // redelivered on reconnect
	require.Equal(t, 1, tl.Len())
}

func TestTimelineForeignEnvelopeAppends(t *testing.T) {
	tl := NewTimeline()
	tl.AppendOptimistic("tmp-1", chattypes.Envelope{ConversationID: "c1", Content: "mine"})

	// An envelope from another sender carries no matching client id.
	tl.Merge(envelope("m2", "", "theirs"))

	entries := tl.Entries()
	require.Len(t, entries, 2)
	require.True(t, entries[0].Pending)
	require.Equal(t, "theirs", entries[1].Content)
}

func TestTimelineConfirmationKeepsPosition(t *testing.T) {
	tl := NewTimeline()
	tl.AppendOptimistic("tmp-1", chattypes.Envelope{ConversationID: "c1", Content: "first"})
	tl.Merge(envelope("m2", "", "second"))

	// The echo of "first" lands after "second" was already appended.
	tl.Merge(envelope("m1", "tmp-1", "first"))

	entries := tl.Entries()
	require.Len(t, entries, 2)
	require.Equal(t, "first", entries[0].Content)
	require.Equal(t, "m1", entries[0].ID)
	require.Equal(t, "second", entries[1].Content)
}

// Every interleaving of N (optimistic, echo) pairs must converge to exactly N
// confirmed entries.
func TestTimelineInterleavings(t *testing.T) {
	const pairs = 4

	// steps[i] true means "echo for pair i", false means "optimistic for pair
	// i". An echo is only valid after its optimistic entry, so generate all
	// orderings and skip invalid ones.
	var run func(tl *Timeline, appended, echoed [pairs]bool)
	run = func(tl *Timeline, appended, echoed [pairs]bool) {
		done := true
		for i := 0; i < pairs; i++ {
			if !echoed[i] {
				done = false
				break
			}
		}
		if done {
			require.Equal(t, pairs, tl.Len())
			require.Equal(t, 0, tl.PendingCount())
			for _, e := range tl.Entries() {
				require.False(t, e.Pending)
			}
			return
		}

		for i := 0; i < pairs; i++ {
			clientID := fmt.Sprintf("tmp-%d", i)
			switch {
			case !appended[i]:
				next := clone(tl)
				next.AppendOptimistic(clientID, chattypes.Envelope{ConversationID: "c1", Content: clientID})
				a := appended
				a[i] = true
				run(next, a, echoed)
			case !echoed[i]:
				next := clone(tl)
				next.Merge(envelope(fmt.Sprintf("m-%d", i), clientID, clientID))
				e := echoed
				e[i] = true
				run(next, appended, e)
			}
		}
	}

	run(NewTimeline(), [pairs]bool{}, [pairs]bool{})
}

func clone(tl *Timeline) *Timeline {
	out := NewTimeline()
	tl.mu.Lock()
	defer tl.mu.Unlock()
	out.entries = append(out.entries, tl.entries...)
	for id := range tl.byID {
		out.byID[id] = struct{}{}
	}
	for cid, idx := range tl.pending {
		out.pending[cid] = idx
	}
	return out
}
