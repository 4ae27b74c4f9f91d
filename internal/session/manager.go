package session

import (
	"regexp"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"

	"drawparty/internal/metrics"
	"drawparty/internal/models"
	"drawparty/internal/presence"
	"drawparty/internal/protocol"
)

var roomNamePattern = regexp.MustCompile(`^[A-Za-z0-9 ]+$`)

// Manager is the room/session core. It owns the hub, applies every inbound
// intent against room and client state, and decides what gets fanned out to
// whom. Anything that violates a precondition is dropped without closing the
// connection: a confused client must not be able to corrupt a room.
type Manager struct {
	log  *zap.SugaredLogger
	hub  *Hub
	pres *presence.Publisher

	conns atomic.Int64
}

func NewManager(log *zap.SugaredLogger, hub *Hub, pres *presence.Publisher) *Manager {
	return &Manager{log: log, hub: hub, pres: pres}
}

func (m *Manager) Hub() *Hub { return m.hub }

// Connect registers a freshly accepted connection.
func (m *Manager) Connect(c *Client) {
	metrics.ConnectionOpened()
	m.log.Infow("socket connected", "conn", c.ID, "connections", m.conns.Add(1))
}

// JoinRoom puts an unjoined connection into the named room and replays the
// room's canvas and player list to it. Rooms are single-assignment: a second
// join from the same connection is ignored.
func (m *Manager) JoinRoom(c *Client, name string) {
	if c.Room() != nil {
		m.log.Debugw("join ignored, already in a room", "conn", c.ID)
		return
	}
	if !validRoomName(name) {
		m.log.Debugw("join ignored, bad room name", "conn", c.ID)
		return
	}

	room := m.hub.Join(name, c)
	metrics.SetActiveRooms(m.hub.RoomCount())
	m.log.Infow("joined room", "conn", c.ID, "room", name, "players", room.ClientCount())
	m.pres.Update(room.Name, room.ClientCount())
}

// SetDisplayName names the connection, first write wins. Everyone in the
// room gets the refreshed player list; a repeated attempt changes nothing
// and re-broadcasts nothing.
func (m *Manager) SetDisplayName(c *Client, name string) {
	room := c.Room()
	if room == nil {
		return
	}
	name = strings.TrimSpace(name)
	if name == "" || len(name) > models.MaxDisplayNameLen {
		return
	}
	if !c.setDisplayNameOnce(name) {
		m.log.Debugw("display name already set", "conn", c.ID)
		return
	}
	room.BroadcastAll(playersFrame(room))
}

// Chat relays a chat line, stamped with the sender's display name, to every
// other member. Unnamed connections cannot chat.
func (m *Manager) Chat(c *Client, text string) {
	room := c.Room()
	if room == nil || text == "" || len(text) > models.MaxChatLen {
		return
	}
	sender := c.DisplayName()
	if sender == "" {
		return
	}
	room.Broadcast(c, protocol.MustEncode(models.EventChatMessage, text, sender))
}

// BeginPath opens a stroke with a fixed brush and its first point.
func (m *Manager) BeginPath(c *Client, x, y, strokeWidth float64, strokeColor string) {
	room := c.Room()
	if room == nil {
		return
	}
	c.activePath = &models.Path{
		Points:      []models.Point{{x, y}},
		StrokeWidth: strokeWidth,
		StrokeColor: strokeColor,
	}
	room.Broadcast(c, protocol.MustEncode(models.EventBeginPath, x, y, strokeWidth, strokeColor))
}

// DrawPath extends the open stroke and fans the new points out live. Points
// past the per-path cap are discarded.
func (m *Manager) DrawPath(c *Client, points []models.Point) {
	room := c.Room()
	if room == nil || c.activePath == nil || len(points) == 0 {
		return
	}
	free := models.MaxPathPoints - len(c.activePath.Points)
	if free <= 0 {
		return
	}
	if len(points) > free {
		points = points[:free]
	}
	c.activePath.Points = append(c.activePath.Points, points...)
	room.Broadcast(c, protocol.MustEncode(models.EventDrawPath, pointValues(points)...))
}

// EndPath closes the open stroke into the room history. No broadcast: the
// peers already hold every point.
func (m *Manager) EndPath(c *Client) {
	room := c.Room()
	if room == nil || c.activePath == nil {
		return
	}
	room.AppendPath(*c.activePath)
	c.activePath = nil
}

// ClearCanvas wipes the completed paths. Another member's in-flight stroke
// survives and lands in history when it ends; the original behaves the same
// way.
func (m *Manager) ClearCanvas(c *Client) {
	room := c.Room()
	if room == nil {
		return
	}
	room.ClearHistory()
	room.Broadcast(c, protocol.MustEncode(models.EventClearCanvas))
}

// Disconnect finalizes a closing connection: an open stroke is preserved as
// if endPath had fired, the room is left (and reaped if now empty), and the
// remaining members get the refreshed player list.
func (m *Manager) Disconnect(c *Client) {
	if room := c.Room(); room != nil {
		if c.activePath != nil && len(c.activePath.Points) > 0 {
			room.AppendPath(*c.activePath)
		}
		c.activePath = nil

		left, remaining := m.hub.Leave(c)
		metrics.SetActiveRooms(m.hub.RoomCount())
		if remaining > 0 {
			left.BroadcastAll(playersFrame(left))
			m.pres.Update(left.Name, remaining)
		} else {
			m.pres.Remove(left.Name)
			m.log.Infow("room closed", "room", left.Name)
		}
	}
	c.Close()
	metrics.ConnectionClosed()
	m.log.Infow("socket disconnected", "conn", c.ID, "connections", m.conns.Add(-1))
}

func validRoomName(name string) bool {
	return name != "" && len(name) <= models.MaxRoomNameLen && roomNamePattern.MatchString(name)
}

func playersFrame(room *Room) []byte {
	return protocol.MustEncode(models.EventRoomPlayers, playerValues(room.Players())...)
}

func playerValues(players []models.Player) []any {
	values := make([]any, len(players))
	for i, p := range players {
		values[i] = p
	}
	return values
}

func pathValues(paths []models.Path) []any {
	values := make([]any, len(paths))
	for i, p := range paths {
		values[i] = p
	}
	return values
}

func pointValues(points []models.Point) []any {
	values := make([]any, len(points))
	for i, p := range points {
		values[i] = p
	}
	return values
}
