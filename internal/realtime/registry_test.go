package realtime

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestClient(id string, userID uint) *Client {
	return &Client{
		ID:     id,
		UserID: userID,
		send:   make(chan []byte, 16),
	}
}

func memberIDs(r *Registry, roomID string) []string {
	var ids []string
	for _, c := range r.MembersOf(roomID) {
		ids = append(ids, c.ID)
	}
	return ids
}

func TestRegistryJoinIsIdempotent(t *testing.T) {
	r := NewRegistry()
	c := newTestClient("c1", 1)

	r.Join(c, "room-a")
	r.Join(c, "room-a")

	require.Len(t, r.MembersOf("room-a"), 1)
	require.Equal(t, 1, r.Rooms())
}

func TestRegistryLeaveUnknownRoomIsNoOp(t *testing.T) {
	r := NewRegistry()
	c := newTestClient("c1", 1)

	r.Join(c, "room-a")
	r.Leave(c, "room-b")
	r.Leave(newTestClient("c2", 2), "room-a")

	require.ElementsMatch(t, []string{"c1"}, memberIDs(r, "room-a"))
}

func TestRegistryDoubleLeave(t *testing.T) {
	r := NewRegistry()
	c := newTestClient("c1", 1)

	r.Join(c, "room-a")
	r.Leave(c, "room-a")
	r.Leave(c, "room-a")

	require.Empty(t, r.MembersOf("room-a"))
	require.Equal(t, 0, r.Rooms())
}

func TestRegistryEmptyRoomIsPruned(t *testing.T) {
	r := NewRegistry()
	c1 := newTestClient("c1", 1)
	c2 := newTestClient("c2", 2)

	r.Join(c1, "room-a")
	r.Join(c2, "room-a")
	require.Equal(t, 1, r.Rooms())

	r.Leave(c1, "room-a")
	require.Equal(t, 1, r.Rooms())
	r.Leave(c2, "room-a")
	require.Equal(t, 0, r.Rooms())

	// Rooms spring back on the next join.
	r.Join(c1, "room-a")
	require.ElementsMatch(t, []string{"c1"}, memberIDs(r, "room-a"))
}

func TestRegistryLeaveAllRemovesEverywhere(t *testing.T) {
	r := NewRegistry()
	c1 := newTestClient("c1", 1)
	c2 := newTestClient("c2", 2)

	r.Join(c1, "room-a")
	r.Join(c1, "room-b")
	r.Join(c2, "room-b")

	r.LeaveAll(c1)

	require.Empty(t, r.MembersOf("room-a"))
	require.ElementsMatch(t, []string{"c2"}, memberIDs(r, "room-b"))

	// LeaveAll on an unknown connection is a no-op.
	r.LeaveAll(newTestClient("c3", 3))
	require.Equal(t, 1, r.Rooms())
}

func TestRegistrySnapshotIsStable(t *testing.T) {
	r := NewRegistry()
	c1 := newTestClient("c1", 1)
	c2 := newTestClient("c2", 2)
	r.Join(c1, "room-a")
	r.Join(c2, "room-a")

	snapshot := r.MembersOf("room-a")
	r.Leave(c2, "room-a")

	// The earlier snapshot is unaffected by the later mutation.
	require.Len(t, snapshot, 2)
	require.Len(t, r.MembersOf("room-a"), 1)
}
