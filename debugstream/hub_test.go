package debugstream

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"pluvia/gametime"
	"pluvia/physics"
	"pluvia/tilemap"
)

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readSnapshot(t *testing.T, conn *websocket.Conn) Snapshot {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		t.Fatalf("unmarshal %s: %v", data, err)
	}
	return snap
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHubSendsLatestOnConnect(t *testing.T) {
	hub := NewHub()
	srv := httptest.NewServer(hub)
	defer srv.Close()

	hub.Publish(Snapshot{Type: "state", Tick: 7})

	conn := dial(t, srv)
	if snap := readSnapshot(t, conn); snap.Tick != 7 {
		t.Errorf("initial snapshot tick = %d, want 7", snap.Tick)
	}

	hub.Publish(Snapshot{Type: "state", Tick: 8})
	if snap := readSnapshot(t, conn); snap.Tick != 8 {
		t.Errorf("next snapshot tick = %d, want 8", snap.Tick)
	}
}

func TestHubBroadcastsToAllSubscribers(t *testing.T) {
	hub := NewHub()
	srv := httptest.NewServer(hub)
	defer srv.Close()

	hub.Publish(Snapshot{Tick: 1})
	a := dial(t, srv)
	b := dial(t, srv)
	readSnapshot(t, a)
	readSnapshot(t, b)

	hub.Publish(Snapshot{Tick: 2})
	for name, conn := range map[string]*websocket.Conn{"a": a, "b": b} {
		if snap := readSnapshot(t, conn); snap.Tick != 2 {
			t.Errorf("client %s got tick %d, want 2", name, snap.Tick)
		}
	}
}

func TestHubDropsClosedClients(t *testing.T) {
	hub := NewHub()
	srv := httptest.NewServer(hub)
	defer srv.Close()

	hub.Publish(Snapshot{Tick: 1})
	conn := dial(t, srv)
	readSnapshot(t, conn)
	waitFor(t, "subscriber", func() bool { return hub.Subscribers() == 1 })

	conn.Close()
	waitFor(t, "unsubscribe", func() bool { return hub.Subscribers() == 0 })
}

func TestSnapshotOf(t *testing.T) {
	w, h, solid, err := tilemap.ParseRows(
		"....",
		"....",
		"####",
	)
	if err != nil {
		t.Fatal(err)
	}
	m := tilemap.New("snap", w, h, 16, 16)
	if _, err := m.AddLayer(tilemap.ForegroundLayer, solid); err != nil {
		t.Fatal(err)
	}
	s := physics.NewScene(physics.DefaultConfig(), tilemap.NewMemorySource(m))
	if err := s.OnStart("snap", 2, 1); err != nil {
		t.Fatalf("OnStart: %v", err)
	}

	e := physics.NewEntity(4, 16, physics.NewBox(12, 16))
	e.Name = "player"
	e.Velocity.X = 30
	s.RegisterEntity(e)
	s.OnUpdate(gametime.FromSeconds(0.1))

	snap := SnapshotOf(s, 3)

	if snap.Type != "state" || snap.Tick != 3 || snap.Scene != "running" {
		t.Errorf("header = %+v", snap)
	}
	if snap.Grid.Cols != 2 || snap.Grid.Rows != 1 || snap.Grid.BucketWidth != 32 {
		t.Errorf("grid = %+v", snap.Grid)
	}
	if len(snap.Entities) != 1 {
		t.Fatalf("got %d entities, want 1", len(snap.Entities))
	}

	got := snap.Entities[0]
	if got.ID != uint64(e.ID()) || got.Name != "player" {
		t.Errorf("identity = %d %q", got.ID, got.Name)
	}
	if got.X != e.Position.X || got.VX != 30 || !got.OnGround {
		t.Errorf("entity state = %+v", got)
	}
	if len(got.Buckets) == 0 {
		t.Error("entity has no buckets")
	}
}
