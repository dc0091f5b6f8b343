package registry

import (
	"context"
	"fmt"
	"sync"

	"github.com/draft-together/server/internal/repository"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Registry owns every live Room, keyed by the client-chosen room id. Rooms
// are hydrated from storage on first use and evicted once the last peer
// leaves, so memory only ever holds boards someone is looking at.
type Registry struct {
	drafts repository.DraftRepository

	mu    sync.Mutex
	rooms map[uuid.UUID]*Room
}

func NewRegistry(drafts repository.DraftRepository) *Registry {
	return &Registry{
		drafts: drafts,
		rooms:  make(map[uuid.UUID]*Room),
	}
}

// Acquire returns the live room for id, hydrating it from storage when it is
// not already resident. An id that has never been seen before gets a fresh
// draft row. Acquire does not count a peer; websocket sessions use Join.
func (reg *Registry) Acquire(ctx context.Context, id uuid.UUID) (*Room, error) {
	for {
		reg.mu.Lock()
		room, ok := reg.rooms[id]
		if ok {
			reg.mu.Unlock()

			// Blocks here while another goroutine hydrates the placeholder.
			room.mu.Lock()
			err, evicted := room.err, room.evicted
			room.mu.Unlock()
			if err != nil {
				return nil, err
			}
			if evicted {
				continue
			}
			return room, nil
		}

		// Not resident. Insert a placeholder that is already locked, so
		// concurrent acquirers of the same id wait on room.mu instead of
		// racing a second hydration.
		room = &Room{id: id, topic: NewTopic()}
		room.mu.Lock()
		reg.rooms[id] = room
		reg.mu.Unlock()

		if err := reg.hydrate(ctx, room); err != nil {
			room.err = err
			reg.mu.Lock()
			delete(reg.rooms, id)
			reg.mu.Unlock()
			room.mu.Unlock()
			return nil, err
		}
		roomsActive.Inc()
		room.mu.Unlock()
		return room, nil
	}
}

// Join acquires the room and counts the caller as a connected peer. Callers
// must pair every successful Join with exactly one Release.
func (reg *Registry) Join(ctx context.Context, id uuid.UUID) (*Room, error) {
	for {
		room, err := reg.Acquire(ctx, id)
		if err != nil {
			return nil, err
		}
		if room.addPeer() {
			return room, nil
		}
		// Evicted between acquire and join; hydrate a fresh copy.
	}
}

// Release drops one peer and returns the number that remain. The last leaver
// persists the board and evicts the room from memory. A failed save is logged
// but never blocks eviction. The save runs under the room lock so it cannot
// interleave with edits or a concurrent flush.
func (reg *Registry) Release(ctx context.Context, room *Room) int {
	room.mu.Lock()
	defer room.mu.Unlock()

	if room.evicted {
		return 0
	}
	if room.peers > 0 {
		room.peers--
		peersConnected.Dec()
	}
	if room.peers > 0 {
		return room.peers
	}

	log.WithField("room_id", room.id).Info("last peer left, saving draft")
	if err := reg.drafts.Save(ctx, room.rowID, room.draft); err != nil {
		draftSavesTotal.WithLabelValues("leave", "error").Inc()
		log.WithError(err).WithField("room_id", room.id).Error("failed to save draft on leave")
	} else {
		draftSavesTotal.WithLabelValues("leave", "ok").Inc()
	}

	room.evicted = true
	room.topic.Close()

	reg.mu.Lock()
	delete(reg.rooms, room.id)
	reg.mu.Unlock()
	roomsActive.Dec()
	return 0
}

// FlushAll persists every resident board and reports how many saves
// succeeded. Per-room failures are logged and skipped so one bad row cannot
// starve the rest.
func (reg *Registry) FlushAll(ctx context.Context) int {
	reg.mu.Lock()
	rooms := make([]*Room, 0, len(reg.rooms))
	for _, room := range reg.rooms {
		rooms = append(rooms, room)
	}
	reg.mu.Unlock()

	saved := 0
	for _, room := range rooms {
		room.mu.Lock()
		if room.evicted || room.err != nil {
			room.mu.Unlock()
			continue
		}
		log.WithField("room_id", room.id).Info("saving draft for room")
		err := reg.drafts.Save(ctx, room.rowID, room.draft)
		room.mu.Unlock()

		if err != nil {
			draftSavesTotal.WithLabelValues("flush", "error").Inc()
			log.WithError(err).WithField("room_id", room.id).Error("failed to flush draft")
			continue
		}
		draftSavesTotal.WithLabelValues("flush", "ok").Inc()
		saved++
	}
	return saved
}

// Rooms reports how many rooms are currently resident.
func (reg *Registry) Rooms() int {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	return len(reg.rooms)
}

func (reg *Registry) hydrate(ctx context.Context, room *Room) error {
	exists, err := reg.drafts.Exists(ctx, room.id)
	if err != nil {
		return fmt.Errorf("failed to check draft existence: %w", err)
	}

	if exists {
		record, err := reg.drafts.Load(ctx, room.id)
		if err != nil {
			return fmt.Errorf("failed to load draft: %w", err)
		}
		room.rowID = record.ID
		room.draft = record.Snapshot()
		return nil
	}

	rowID, err := reg.drafts.Create(ctx, room.id)
	if err != nil {
		return fmt.Errorf("failed to create draft: %w", err)
	}
	room.rowID = rowID
	return nil
}
