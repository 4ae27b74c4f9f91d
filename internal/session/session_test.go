package session

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"drawparty/internal/models"
)

type frameCapture struct {
	frames [][]byte
}

func newFrameCapture() *frameCapture { return &frameCapture{} }

func (c *frameCapture) hook(frame []byte) { c.frames = append(c.frames, frame) }

func (c *frameCapture) list() [][]byte {
	out := make([][]byte, len(c.frames))
	copy(out, c.frames)
	return out
}

func TestClientSendWithHook(t *testing.T) {
	client := NewClient("c1", nil)
	capture := newFrameCapture()
	client.SetSendHook(capture.hook)

	client.Send([]byte(`["clearCanvas"]`))

	got := capture.list()
	if len(got) != 1 || string(got[0]) != `["clearCanvas"]` {
		t.Fatalf("expected frame captured, got %#v", got)
	}
}

func TestClientSendWithoutConnDoesNotPanic(t *testing.T) {
	client := NewClient("c1", nil)
	client.Send([]byte(`["endPath"]`))
}

func TestClientSendAfterCloseIsNoop(t *testing.T) {
	client := NewClient("c1", nil)
	client.Close()
	client.Close() // idempotent
	client.Send([]byte(`["endPath"]`))
}

func TestClientSendWritesToConn(t *testing.T) {
	upgrader := websocket.Upgrader{}
	received := make(chan []byte, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		if _, msg, err := conn.ReadMessage(); err == nil {
			received <- msg
		}
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial websocket: %v", err)
	}
	defer conn.Close()

	client := NewClient("c1", conn)
	go client.WritePump()
	defer client.Close()

	client.Send([]byte(`["clearCanvas"]`))

	select {
	case msg := <-received:
		if string(msg) != `["clearCanvas"]` {
			t.Fatalf("unexpected frame: %s", msg)
		}
	case <-time.After(time.Second):
		t.Fatal("expected frame to be received")
	}
}

func TestClientDisplayNameFirstWriteWins(t *testing.T) {
	client := NewClient("c1", nil)
	if client.DisplayName() != "" {
		t.Fatalf("expected empty name, got %q", client.DisplayName())
	}
	if !client.setDisplayNameOnce("alice") {
		t.Fatal("first set should win")
	}
	if client.setDisplayNameOnce("bob") {
		t.Fatal("second set should be rejected")
	}
	if client.DisplayName() != "alice" {
		t.Fatalf("expected alice, got %q", client.DisplayName())
	}
}

func TestRoomJoinLeavePreservesOrder(t *testing.T) {
	room := NewRoom("lobby")
	a := NewClient("a", nil)
	b := NewClient("b", nil)
	c := NewClient("c", nil)
	a.setDisplayNameOnce("alice")
	c.setDisplayNameOnce("carol")

	room.join(a)
	room.join(b)
	room.join(c)
	if count := room.ClientCount(); count != 3 {
		t.Fatalf("expected 3 clients, got %d", count)
	}

	players := room.Players()
	want := []models.Player{{Name: "alice"}, {Name: ""}, {Name: "carol"}}
	if len(players) != 3 || players[0] != want[0] || players[1] != want[1] || players[2] != want[2] {
		t.Fatalf("unexpected player list: %#v", players)
	}

	if remaining := room.leave(b); remaining != 2 {
		t.Fatalf("expected 2 remaining, got %d", remaining)
	}
	players = room.Players()
	if len(players) != 2 || players[0].Name != "alice" || players[1].Name != "carol" {
		t.Fatalf("unexpected player list after leave: %#v", players)
	}
}

func TestRoomHistorySnapshotIsDeepCopy(t *testing.T) {
	room := NewRoom("lobby")
	room.AppendPath(models.Path{
		Points:      []models.Point{{1, 2}, {3, 4}},
		StrokeWidth: 3,
		StrokeColor: "black",
	})

	snapshot := room.HistorySnapshot()
	if len(snapshot) != 1 || len(snapshot[0].Points) != 2 {
		t.Fatalf("unexpected snapshot: %#v", snapshot)
	}

	snapshot[0].Points[0] = models.Point{99, 99}
	fresh := room.HistorySnapshot()
	if fresh[0].Points[0] != (models.Point{1, 2}) {
		t.Fatal("mutating a snapshot must not touch room history")
	}
}

func TestRoomClearHistory(t *testing.T) {
	room := NewRoom("lobby")
	room.AppendPath(models.Path{Points: []models.Point{{1, 1}}})
	room.AppendPath(models.Path{Points: []models.Point{{2, 2}}})
	if room.PathCount() != 2 {
		t.Fatalf("expected 2 paths, got %d", room.PathCount())
	}
	room.ClearHistory()
	if room.PathCount() != 0 {
		t.Fatalf("expected empty history, got %d", room.PathCount())
	}
}

func TestRoomBroadcastExcludesSender(t *testing.T) {
	room := NewRoom("lobby")
	frame := []byte(`["chatMessage","hi","alice"]`)

	c1 := NewClient("c1", nil)
	c2 := NewClient("c2", nil)
	sender := NewClient("s", nil)
	room.join(c1)
	room.join(c2)
	room.join(sender)

	cap1 := newFrameCapture()
	c1.SetSendHook(cap1.hook)
	cap2 := newFrameCapture()
	c2.SetSendHook(cap2.hook)
	sender.SetSendHook(func([]byte) { t.Fatal("sender should not receive broadcast") })

	room.Broadcast(sender, frame)

	if got := cap1.list(); len(got) != 1 || string(got[0]) != string(frame) {
		t.Fatalf("client1 missing frame: %#v", got)
	}
	if got := cap2.list(); len(got) != 1 {
		t.Fatalf("client2 missing frame: %#v", got)
	}
}

func TestRoomBroadcastAll(t *testing.T) {
	room := NewRoom("lobby")

	c1 := NewClient("c1", nil)
	c2 := NewClient("c2", nil)
	room.join(c1)
	room.join(c2)

	cap1 := newFrameCapture()
	c1.SetSendHook(cap1.hook)
	cap2 := newFrameCapture()
	c2.SetSendHook(cap2.hook)

	room.BroadcastAll([]byte(`["clearCanvas"]`))

	if len(cap1.list()) != 1 || len(cap2.list()) != 1 {
		t.Fatal("expected broadcast to all clients")
	}
}

func TestHubGetOrCreate(t *testing.T) {
	hub := NewHub()
	roomA := hub.GetOrCreate("a")
	roomB := hub.GetOrCreate("a")
	if roomA != roomB {
		t.Fatal("expected same room instance")
	}
	if _, ok := hub.Get("missing"); ok {
		t.Fatal("expected missing room")
	}
	if hub.RoomCount() != 1 {
		t.Fatalf("expected 1 room, got %d", hub.RoomCount())
	}
}

func TestHubJoinLeaveReapsEmptyRoom(t *testing.T) {
	hub := NewHub()
	a := NewClient("a", nil)
	b := NewClient("b", nil)

	room := hub.Join("lobby", a)
	hub.Join("lobby", b)
	if a.Room() != room || b.Room() != room {
		t.Fatal("clients should reference the joined room")
	}

	left, remaining := hub.Leave(a)
	if left != room || remaining != 1 {
		t.Fatalf("expected 1 remaining, got %d", remaining)
	}
	if a.Room() != nil {
		t.Fatal("leaving should clear the client's room")
	}
	if _, ok := hub.Get("lobby"); !ok {
		t.Fatal("room should survive while occupied")
	}

	if _, remaining := hub.Leave(b); remaining != 0 {
		t.Fatalf("expected empty room, got %d", remaining)
	}
	if _, ok := hub.Get("lobby"); ok {
		t.Fatal("empty room should be reaped")
	}

	// A fresh join after the reap produces a brand new, empty room.
	c := NewClient("c", nil)
	fresh := hub.Join("lobby", c)
	if fresh == room {
		t.Fatal("expected a fresh room instance")
	}
	if fresh.PathCount() != 0 || fresh.ClientCount() != 1 {
		t.Fatal("fresh room should start empty")
	}
}

func TestHubLeaveUnjoinedClient(t *testing.T) {
	hub := NewHub()
	room, remaining := hub.Leave(NewClient("a", nil))
	if room != nil || remaining != 0 {
		t.Fatalf("expected no-op leave, got %v %d", room, remaining)
	}
}

func TestHubRemoveIfEmpty(t *testing.T) {
	hub := NewHub()
	a := NewClient("a", nil)
	hub.Join("lobby", a)

	hub.RemoveIfEmpty("lobby")
	if _, ok := hub.Get("lobby"); !ok {
		t.Fatal("occupied room must not be removed")
	}

	room := hub.GetOrCreate("ghost")
	hub.RemoveIfEmpty("ghost")
	if _, ok := hub.Get("ghost"); ok {
		t.Fatalf("empty room %s should be removed", room.Name)
	}
}

func TestHubRoomsDirectory(t *testing.T) {
	hub := NewHub()
	a := NewClient("a", nil)
	room := hub.Join("lobby", a)
	room.AppendPath(models.Path{Points: []models.Point{{1, 1}}})

	infos := hub.Rooms()
	if len(infos) != 1 {
		t.Fatalf("expected 1 room, got %d", len(infos))
	}
	if infos[0].Name != "lobby" || infos[0].Players != 1 || infos[0].Paths != 1 {
		t.Fatalf("unexpected room info: %#v", infos[0])
	}
}
