package registry

import (
	"sync"

	"github.com/draft-together/server/internal/domain"
	"github.com/google/uuid"
)

// Room is the live, in-memory copy of one draft board. All connected peers
// for a client id share the same Room; edits mutate the board under the room
// lock and wake subscribed writers through the topic.
type Room struct {
	id    uuid.UUID
	topic *Topic

	mu      sync.Mutex
	rowID   int32
	draft   domain.Draft
	peers   int
	evicted bool
	err     error
}

func (r *Room) ID() uuid.UUID {
	return r.id
}

// RowID is the draft table primary key backing this room. It is fixed at
// hydration and stays stable across rejoins for as long as the row exists.
func (r *Room) RowID() int32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rowID
}

// Draft returns a copy of the current board. Slot pointers are never written
// through after publication, so the copy is safe to read and marshal without
// further locking.
func (r *Room) Draft() domain.Draft {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.draft
}

// Apply places the update on the board and wakes every subscribed writer.
func (r *Room) Apply(update domain.ChampionUpdate) {
	r.mu.Lock()
	r.draft.Apply(update)
	r.mu.Unlock()
	r.topic.Publish()
}

// Subscribe registers a writer for change signals on this room.
func (r *Room) Subscribe() *Subscription {
	return r.topic.Subscribe()
}

// addPeer counts a new joiner. It reports false when the room has already
// been evicted, in which case the caller must re-acquire.
func (r *Room) addPeer() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.evicted {
		return false
	}
	r.peers++
	peersConnected.Inc()
	return true
}
