package session

import (
	"sync"

	"drawparty/internal/models"
)

// Hub is the room registry. Membership changes go through the hub so that
// room creation, the join itself, and empty-room reaping are atomic with
// respect to each other: two concurrent joins can never produce two rooms
// for one name, and a leave can never reap a room a concurrent join is
// entering.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]*Room
}

func NewHub() *Hub { return &Hub{rooms: make(map[string]*Room)} }

func (h *Hub) GetOrCreate(name string) *Room {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.getOrCreateLocked(name)
}

func (h *Hub) getOrCreateLocked(name string) *Room {
	if r, ok := h.rooms[name]; ok {
		return r
	}
	r := NewRoom(name)
	h.rooms[name] = r
	return r
}

func (h *Hub) Get(name string) (*Room, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	r, ok := h.rooms[name]
	return r, ok
}

// Join adds the client to the named room, creating it on first join, and
// records the membership on the client. The room queues its canvas replay
// and player list to the joiner atomically with the membership change.
func (h *Hub) Join(name string, c *Client) *Room {
	h.mu.Lock()
	defer h.mu.Unlock()
	r := h.getOrCreateLocked(name)
	r.join(c)
	c.setRoom(r)
	return r
}

// Leave removes the client from its room and deletes the room entry if that
// made it empty. Returns the room and how many members remain; the room is
// nil when the client never joined.
func (h *Hub) Leave(c *Client) (*Room, int) {
	r := c.Room()
	if r == nil {
		return nil, 0
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	remaining := r.leave(c)
	c.setRoom(nil)
	if remaining == 0 {
		delete(h.rooms, r.Name)
	}
	return r, remaining
}

// RemoveIfEmpty deletes the room entry iff it has no members at the time of
// the check.
func (h *Hub) RemoveIfEmpty(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if r, ok := h.rooms[name]; ok && r.ClientCount() == 0 {
		delete(h.rooms, name)
	}
}

func (h *Hub) RoomCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms)
}

// Rooms returns a directory snapshot of every active room.
func (h *Hub) Rooms() []models.RoomInfo {
	h.mu.RLock()
	defer h.mu.RUnlock()
	infos := make([]models.RoomInfo, 0, len(h.rooms))
	for name, r := range h.rooms {
		infos = append(infos, models.RoomInfo{
			Name:    name,
			Players: r.ClientCount(),
			Paths:   r.PathCount(),
		})
	}
	return infos
}
