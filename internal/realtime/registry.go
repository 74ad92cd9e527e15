package realtime

// Registry tracks which connection is joined to which conversation room. It
// is plain data: every mutation and read happens on the hub's run goroutine,
// which is what makes join/leave/publish linearizable without locks. Nothing
// outside this package may touch a Registry directly.
type Registry struct {
	// rooms maps roomID -> connID -> client.
	rooms map[string]map[string]*Client
	// joined maps connID -> the set of rooms the connection is in, so a
	// disconnect can clean up without scanning every room.
	joined map[string]map[string]struct{}
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		rooms:  make(map[string]map[string]*Client),
		joined: make(map[string]map[string]struct{}),
	}
}

// Join adds the connection to the room, creating the room entry if absent.
// Joining a room twice is a no-op.
func (r *Registry) Join(c *Client, roomID string) {
	room := r.rooms[roomID]
	if room == nil {
		room = make(map[string]*Client)
		r.rooms[roomID] = room
	}
	room[c.ID] = c

	set := r.joined[c.ID]
	if set == nil {
		set = make(map[string]struct{})
		r.joined[c.ID] = set
	}
	set[roomID] = struct{}{}
}

// Leave removes the connection from the room. Leaving a room the connection
// never joined is a no-op. Empty rooms are pruned; that is memory
// reclamation, a room springs back into existence on the next join.
func (r *Registry) Leave(c *Client, roomID string) {
	if room, ok := r.rooms[roomID]; ok {
		delete(room, c.ID)
		if len(room) == 0 {
			delete(r.rooms, roomID)
		}
	}
	if set, ok := r.joined[c.ID]; ok {
		delete(set, roomID)
		if len(set) == 0 {
			delete(r.joined, c.ID)
		}
	}
}

// LeaveAll removes the connection from every room it had joined. Called on
// disconnect so no room keeps an orphaned entry.
func (r *Registry) LeaveAll(c *Client) {
	for roomID := range r.joined[c.ID] {
		if room, ok := r.rooms[roomID]; ok {
			delete(room, c.ID)
			if len(room) == 0 {
				delete(r.rooms, roomID)
			}
		}
	}
	delete(r.joined, c.ID)
}

// MembersOf returns a snapshot of the room's current members. The slice is
// safe to iterate while the registry keeps changing.
func (r *Registry) MembersOf(roomID string) []*Client {
	room := r.rooms[roomID]
	if len(room) == 0 {
		return nil
	}
	members := make([]*Client, 0, len(room))
	for _, c := range room {
		members = append(members, c)
	}
	return members
}

// Rooms returns the number of rooms with at least one member.
func (r *Registry) Rooms() int {
	return len(r.rooms)
}
