package inspect

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/weftui/weft/pkg/display"
	"github.com/weftui/weft/pkg/engine"
	"github.com/weftui/weft/pkg/source"
	"github.com/weftui/weft/pkg/view"
)

func newTestServer(t *testing.T) (*Server, *display.MemoryStore, *engine.Engine) {
	t.Helper()
	store := display.NewMemoryStore()
	sources := source.NewRegistry()
	reg := engine.NewRegistry()
	reg.Register("panel", func(props any, ctx *engine.Ctx) *view.Node {
		return view.El("panel", view.Props{"title": "t"})
	})
	e := engine.New(store, sources, reg,
		engine.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	if _, err := e.Mount("panel", nil, display.None); err != nil {
		t.Fatal(err)
	}
	if err := e.RunPass(context.Background()); err != nil {
		t.Fatal(err)
	}
	return New("localhost:0", e, store), store, e
}

func TestHealthAndPassEndpoints(t *testing.T) {
	srv, _, _ := newTestServer(t)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("healthz status = %d", resp.StatusCode)
	}

	resp, err = http.Get(ts.URL + "/api/pass")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var stats engine.PassStats
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		t.Fatalf("decode pass stats: %v", err)
	}
	if stats.Pass != 1 || stats.PresenterRuns != 1 {
		t.Errorf("stats = %+v, want pass 1 with one run", stats)
	}
}

func TestNodesSnapshot(t *testing.T) {
	srv, _, _ := newTestServer(t)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/nodes")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var body struct {
		Stats display.MemoryStats  `json:"stats"`
		Nodes []display.MemoryNode `json:"nodes"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if len(body.Nodes) != 1 || body.Nodes[0].Kind != "panel" {
		t.Errorf("nodes = %+v, want the panel", body.Nodes)
	}
	if body.Stats.LiveNodes != 1 {
		t.Errorf("live nodes = %d, want 1", body.Stats.LiveNodes)
	}
}

func TestPassStream(t *testing.T) {
	srv, _, _ := newTestServer(t)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/passes"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	if resp != nil {
		resp.Body.Close()
	}
	defer conn.Close()

	// Wait for the handler to register the client before broadcasting.
	deadline := time.Now().Add(2 * time.Second)
	for {
		srv.mu.Lock()
		n := len(srv.clients)
		srv.mu.Unlock()
		if n > 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("stream client never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	srv.Observe(engine.PassStats{Pass: 42, PresenterRuns: 3})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got engine.PassStats
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("read stream: %v", err)
	}
	if got.Pass != 42 || got.PresenterRuns != 3 {
		t.Fatalf("streamed stats = %+v", got)
	}
}
