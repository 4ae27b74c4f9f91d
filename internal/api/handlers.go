package api

import (
	"encoding/json"
	"net/http"
	"sort"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"drawparty/internal/metrics"
	"drawparty/internal/models"
	"drawparty/internal/protocol"
	"drawparty/internal/session"
)

type Handlers struct {
	log *zap.SugaredLogger
	mgr *session.Manager
}

func NewHandlers(log *zap.SugaredLogger, mgr *session.Manager) *Handlers {
	return &Handlers{log: log, mgr: mgr}
}

func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	_, _ = w.Write([]byte("ok"))
}

// ListRooms returns the active room directory, sorted by name.
func (h *Handlers) ListRooms(w http.ResponseWriter, _ *http.Request) {
	rooms := h.mgr.Hub().Rooms()
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].Name < rooms[j].Name })
	writeJSON(w, rooms)
}

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// GameWS upgrades the connection and runs its read loop. One loop per
// connection keeps that connection's events in receipt order; loops for
// different connections run in parallel.
func (h *Handlers) GameWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	client := session.NewClient(uuid.NewString(), conn)
	go client.WritePump()

	h.mgr.Connect(client)
	defer h.mgr.Disconnect(client)

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		event, values, err := protocol.Decode(msg)
		if err != nil || !event.Known() {
			// Malformed frames and unknown kinds are dropped, the
			// connection stays open. Unknown kinds never reach the
			// event counter, so clients cannot mint metric labels.
			continue
		}
		metrics.EventReceived(string(event))
		h.dispatch(client, event, values)
	}
}

func (h *Handlers) dispatch(c *session.Client, event models.Event, values []json.RawMessage) {
	switch event {
	case models.EventJoinRoom:
		if name, ok := decodeString(values, 0); ok {
			h.mgr.JoinRoom(c, name)
		}

	case models.EventSetDisplayName:
		if name, ok := decodeString(values, 0); ok {
			h.mgr.SetDisplayName(c, name)
		}

	case models.EventChatMessage:
		if text, ok := decodeString(values, 0); ok {
			h.mgr.Chat(c, text)
		}

	case models.EventBeginPath:
		x, okX := decodeFloat(values, 0)
		y, okY := decodeFloat(values, 1)
		width, okW := decodeFloat(values, 2)
		color, okC := decodeString(values, 3)
		if okX && okY && okW && okC {
			h.mgr.BeginPath(c, x, y, width, color)
		}

	case models.EventDrawPath:
		if points, ok := decodePoints(values); ok {
			h.mgr.DrawPath(c, points)
		}

	case models.EventEndPath:
		h.mgr.EndPath(c)

	case models.EventClearCanvas:
		h.mgr.ClearCanvas(c)

	default:
		// roomPlayers is server-to-client only; a client sending it is dropped.
	}
}

func decodeString(values []json.RawMessage, i int) (string, bool) {
	if i >= len(values) {
		return "", false
	}
	var s string
	if err := json.Unmarshal(values[i], &s); err != nil {
		return "", false
	}
	return s, true
}

func decodeFloat(values []json.RawMessage, i int) (float64, bool) {
	if i >= len(values) {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(values[i], &f); err != nil {
		return 0, false
	}
	return f, true
}

func decodePoints(values []json.RawMessage) ([]models.Point, bool) {
	if len(values) == 0 {
		return nil, false
	}
	points := make([]models.Point, len(values))
	for i, v := range values {
		if err := json.Unmarshal(v, &points[i]); err != nil {
			return nil, false
		}
	}
	return points, true
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
