package session

import (
	"sync"

	"drawparty/internal/models"
	"drawparty/internal/protocol"
)

// Room is one broadcast domain: the set of joined clients plus the ordered
// list of completed paths that makes up the canvas.
type Room struct {
	Name string

	mu      sync.Mutex
	clients []*Client // join order, kept for deterministic player lists
	history []models.Path
}

func NewRoom(name string) *Room {
	return &Room{Name: name}
}

// join adds the client and, in the same critical section, queues the canvas
// replay and current player list to it. Snapshotting after the membership is
// visible would let a stroke a peer completes in between reach the client
// both live and in the replay. Completed paths only; an in-flight stroke
// would replay truncated.
func (r *Room) join(c *Client) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients = append(r.clients, c)
	if len(r.history) > 0 {
		c.Send(protocol.MustEncode(models.EventDrawPath, pathValues(r.history)...))
	}
	c.Send(protocol.MustEncode(models.EventRoomPlayers, playerValues(r.playersLocked())...))
	return len(r.clients)
}

func (r *Room) leave(c *Client) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, member := range r.clients {
		if member == c {
			r.clients = append(r.clients[:i], r.clients[i+1:]...)
			break
		}
	}
	return len(r.clients)
}

func (r *Room) ClientCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clients)
}

// Players lists the members in join order. Unnamed members appear with an
// empty name.
func (r *Room) Players() []models.Player {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.playersLocked()
}

func (r *Room) playersLocked() []models.Player {
	players := make([]models.Player, 0, len(r.clients))
	for _, c := range r.clients {
		players = append(players, models.Player{Name: c.DisplayName()})
	}
	return players
}

// AppendPath adds a completed stroke to the canvas history.
func (r *Room) AppendPath(p models.Path) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.history = append(r.history, p)
}

// ClearHistory empties the canvas. In-flight strokes are unaffected; once
// ended they are appended as usual.
func (r *Room) ClearHistory() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.history = nil
}

// HistorySnapshot deep-copies the completed paths for a join replay.
func (r *Room) HistorySnapshot() []models.Path {
	r.mu.Lock()
	defer r.mu.Unlock()
	snapshot := make([]models.Path, 0, len(r.history))
	for _, p := range r.history {
		snapshot = append(snapshot, p.Clone())
	}
	return snapshot
}

func (r *Room) PathCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.history)
}

// Broadcast delivers a frame to every member except the sender. Delivery is
// best-effort; a member that cannot receive is skipped.
func (r *Room) Broadcast(sender *Client, frame []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.clients {
		if c == sender {
			continue
		}
		c.Send(frame)
	}
}

// BroadcastAll delivers a frame to every member, sender included.
func (r *Room) BroadcastAll(frame []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.clients {
		c.Send(frame)
	}
}
