package models

// Event is the first element of every wire frame.
type Event string

const (
	EventJoinRoom       Event = "joinRoom"
	EventSetDisplayName Event = "setDisplayName"
	EventChatMessage    Event = "chatMessage"
	EventBeginPath      Event = "beginPath"
	EventDrawPath       Event = "drawPath"
	EventEndPath        Event = "endPath"
	EventClearCanvas    Event = "clearCanvas"
	EventRoomPlayers    Event = "roomPlayers"
)

var knownEvents = map[Event]struct{}{
	EventJoinRoom:       {},
	EventSetDisplayName: {},
	EventChatMessage:    {},
	EventBeginPath:      {},
	EventDrawPath:       {},
	EventEndPath:        {},
	EventClearCanvas:    {},
	EventRoomPlayers:    {},
}

// Known reports whether e is one of the protocol's event kinds. Anything a
// client sends is checked against this before it can reach a metrics label.
func (e Event) Known() bool {
	_, ok := knownEvents[e]
	return ok
}

// Limits the original protocol left unbounded. Anything past them is dropped.
const (
	MaxRoomNameLen    = 64
	MaxDisplayNameLen = 32
	MaxChatLen        = 512
	MaxPathPoints     = 8192
)

// Point is an (x, y) canvas coordinate, encoded on the wire as [x, y].
type Point [2]float64

// Path is one continuous stroke: the points in draw order plus the brush
// settings fixed at stroke start.
type Path struct {
	Points      []Point `json:"points"`
	StrokeWidth float64 `json:"strokeWidth"`
	StrokeColor string  `json:"strokeColor"`
}

// Clone returns a deep copy so replay snapshots cannot alias live room state.
func (p Path) Clone() Path {
	points := make([]Point, len(p.Points))
	copy(points, p.Points)
	return Path{Points: points, StrokeWidth: p.StrokeWidth, StrokeColor: p.StrokeColor}
}

// Player is one entry of a roomPlayers frame. Name stays empty until the
// connection sets a display name.
type Player struct {
	Name string `json:"name"`
}

// RoomInfo is the directory listing for one active room.
type RoomInfo struct {
	Name    string `json:"name"`
	Players int    `json:"players"`
	Paths   int    `json:"paths"`
}
