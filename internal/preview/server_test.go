package preview

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/ledgfx/internal/color"
	diag "github.com/coreman2200/ledgfx/internal/diagnostics"
	"github.com/coreman2200/ledgfx/internal/layout"
	"github.com/coreman2200/ledgfx/internal/render"
)

func dial(t *testing.T, srv *httptest.Server, path string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + path
	c, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func read(t *testing.T, c *websocket.Conn, v any) {
	t.Helper()
	c.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, b, err := c.ReadMessage()
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(b, v))
}

func TestFramesReachClients(t *testing.T) {
	s := NewServer(nil, nil)
	s.MaxFPS = 0
	drv := s.Driver("strip", layout.NewStrip(2))
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	c := dial(t, srv, "/ws")
	var hello map[string][]topology
	read(t, c, &hello)
	require.Len(t, hello["topology"], 1)
	assert.Equal(t, "strip", hello["topology"][0].Class)

	// the client is registered after the hello is written
	require.Eventually(t, func() bool { return s.count(s.clients) == 1 }, time.Second, 10*time.Millisecond)
	require.NoError(t, drv.Write([]color.RGB{{R: 1, G: 2, B: 3}, {R: 4, G: 5, B: 6}}))
	var f frame
	read(t, c, &f)
	assert.Equal(t, "strip", f.Device)
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6}, f.RGB)
	assert.Equal(t, uint64(1), f.FrameID)
}

func TestDiagReplaysRecent(t *testing.T) {
	l := diag.NewLog(8)
	l.Push(diag.Diagnostic{Severity: diag.Warn, Code: "DRIVER.FALLBACK", Summary: "sim"})
	s := NewServer(nil, l)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	c := dial(t, srv, "/diag")
	var d diag.Diagnostic
	read(t, c, &d)
	assert.Equal(t, "DRIVER.FALLBACK", d.Code)

	require.Eventually(t, func() bool { return s.count(s.diagClients) == 1 }, time.Second, 10*time.Millisecond)
	l.Push(diag.Diagnostic{Severity: diag.Err, Code: "RENDER.WRITE"})
	read(t, c, &d)
	assert.Equal(t, "RENDER.WRITE", d.Code)
}

func TestHealth(t *testing.T) {
	e := render.NewEngine(nil)
	dev, err := render.NewDevice("ring", layout.NewRing(12), nil)
	require.NoError(t, err)
	require.NoError(t, e.AddDevice(dev))
	s := NewServer(e, nil)
	s.Driver("ring", dev.Geom)

	rec := httptest.NewRecorder()
	s.HandleHealth(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp, "uptime_s")
	assert.Equal(t, map[string]any{"ring": float64(255)}, resp["brightness"])
}

func TestSlowClientDoesNotBlockWrite(t *testing.T) {
	s := NewServer(nil, nil)
	s.MaxFPS = 0
	g := layout.NewMatrix(64, 64, layout.TopLeft, layout.RowMajor)
	drv := s.Driver("wall", g)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	// never reads past the hello
	c := dial(t, srv, "/ws")
	var hello map[string][]topology
	read(t, c, &hello)
	require.Eventually(t, func() bool { return s.count(s.clients) == 1 }, time.Second, 10*time.Millisecond)

	px := make([]color.RGB, g.Count)
	start := time.Now()
	for i := 0; i < 2000; i++ {
		require.NoError(t, drv.Write(px))
	}
	assert.Less(t, time.Since(start), time.Second)
	assert.NotZero(t, s.dropped.Load())
}
