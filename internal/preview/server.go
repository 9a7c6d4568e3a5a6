// Package preview mirrors composited frames and diagnostics to websocket clients.
// It is read-only: nothing received from a client changes the engine.
package preview

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/ledgfx/internal/color"
	diag "github.com/coreman2200/ledgfx/internal/diagnostics"
	"github.com/coreman2200/ledgfx/internal/layout"
	"github.com/coreman2200/ledgfx/internal/render"
)

const (
	writeWait = 200 * time.Millisecond
	// sendQueue is the per-client backlog; messages past it are dropped.
	sendQueue = 16
)

type Server struct {
	// MaxFPS throttles frames per device sent to clients; 0 sends every frame.
	MaxFPS int

	mu          sync.RWMutex
	engine      *render.Engine
	diags       *diag.Log
	devices     map[string]*deviceState
	startTime   time.Time
	clients     map[*websocket.Conn]*client
	diagClients map[*websocket.Conn]*client
	upgrader    websocket.Upgrader
	dropped     atomic.Uint64
}

// client owns one connection. Only its writer goroutine writes to conn.
type client struct {
	conn *websocket.Conn
	send chan []byte
}

func (c *client) writeLoop() {
	for b := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, b); err != nil {
			log.Debug().Err(err).Msg("write preview")
			c.conn.Close()
			for range c.send {
			}
			return
		}
	}
}

type deviceState struct {
	geom     layout.Geometry
	frameID  uint64
	lastEmit time.Time
}

func NewServer(e *render.Engine, d *diag.Log) *Server {
	s := &Server{
		MaxFPS:      20,
		engine:      e,
		diags:       d,
		devices:     map[string]*deviceState{},
		startTime:   time.Now(),
		clients:     map[*websocket.Conn]*client{},
		diagClients: map[*websocket.Conn]*client{},
		upgrader:    websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
	}
	if d != nil {
		d.Subscribe(s.pushDiag)
	}
	return s
}

// Driver returns an output that mirrors a device's frames to the clients. Combine
// it with the hardware driver through led.Multi.
func (s *Server) Driver(device string, g layout.Geometry) *Driver {
	s.mu.Lock()
	s.devices[device] = &deviceState{geom: g}
	s.mu.Unlock()
	return &Driver{s: s, device: device}
}

// Driver is the per-device output of a Server. Write only encodes and queues,
// so a slow client never holds up the render loop.
type Driver struct {
	s      *Server
	device string
}

func (d *Driver) Write(px []color.RGB) error {
	d.s.publish(d.device, px)
	return nil
}

func (d *Driver) Close() error { return nil }

type frame struct {
	T       int64  `json:"t"`
	Device  string `json:"device"`
	FrameID uint64 `json:"frame_id"`
	RGB     []byte `json:"rgb"`
}

func (s *Server) publish(device string, px []color.RGB) {
	s.mu.Lock()
	ds, ok := s.devices[device]
	if !ok {
		s.mu.Unlock()
		return
	}
	ds.frameID++
	now := time.Now()
	if s.MaxFPS > 0 && now.Sub(ds.lastEmit) < time.Second/time.Duration(s.MaxFPS) {
		s.mu.Unlock()
		return
	}
	ds.lastEmit = now
	id := ds.frameID
	s.mu.Unlock()

	rgb := make([]byte, 0, len(px)*3)
	for _, c := range px {
		rgb = append(rgb, c.R, c.G, c.B)
	}
	b, _ := json.Marshal(frame{T: now.UnixNano(), Device: device, FrameID: id, RGB: rgb})
	s.broadcast(s.clients, b)
}

func (s *Server) count(set map[*websocket.Conn]*client) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(set)
}

// broadcast queues b for every client in set without blocking.
func (s *Server) broadcast(set map[*websocket.Conn]*client, b []byte) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range set {
		select {
		case c.send <- b:
		default:
			s.dropped.Add(1)
		}
	}
}

func (s *Server) pushDiag(d diag.Diagnostic) {
	b, _ := json.Marshal(d)
	s.broadcast(s.diagClients, b)
}

type topology struct {
	Device string `json:"device"`
	Class  string `json:"class"`
	Count  int    `json:"count"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

func (s *Server) topology() []topology {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]topology, 0, len(s.devices))
	for name, ds := range s.devices {
		g := ds.geom
		out = append(out, topology{Device: name, Class: g.Class.String(), Count: g.Count, Width: g.Width, Height: g.Height})
	}
	return out
}

// register upgrades the request, sends hello and drains reads until the client goes away.
func (s *Server) register(w http.ResponseWriter, r *http.Request, set map[*websocket.Conn]*client, hello [][]byte) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	// no writer goroutine yet, so the handler may write directly
	for _, b := range hello {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
			conn.Close()
			return
		}
	}
	c := &client{conn: conn, send: make(chan []byte, sendQueue)}
	go c.writeLoop()
	s.mu.Lock()
	set[conn] = c
	s.mu.Unlock()

	go func() {
		defer func() {
			s.mu.Lock()
			delete(set, conn)
			close(c.send)
			s.mu.Unlock()
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (s *Server) HandleFramesWS(w http.ResponseWriter, r *http.Request) {
	top, _ := json.Marshal(map[string]any{"topology": s.topology()})
	s.register(w, r, s.clients, [][]byte{top})
}

func (s *Server) HandleDiagWS(w http.ResponseWriter, r *http.Request) {
	var hello [][]byte
	if s.diags != nil {
		for _, d := range s.diags.Recent() {
			b, _ := json.Marshal(d)
			hello = append(hello, b)
		}
	}
	s.register(w, r, s.diagClients, hello)
}

func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	frames := map[string]uint64{}
	for name, ds := range s.devices {
		frames[name] = ds.frameID
	}
	clients := len(s.clients)
	s.mu.RUnlock()

	resp := map[string]any{
		"uptime_s": time.Since(s.startTime).Seconds(),
		"frames":   frames,
		"clients":  clients,
		"dropped":  s.dropped.Load(),
	}
	if s.engine != nil {
		s.engine.Last.Lock()
		resp["render_ms"] = s.engine.Last.RenderMS
		resp["render_errors"] = s.engine.Last.Errors
		s.engine.Last.Unlock()
		devs := map[string]uint8{}
		for _, d := range s.engine.Devices() {
			devs[d.Name] = d.Brightness()
		}
		resp["brightness"] = devs
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.HandleFramesWS)
	mux.HandleFunc("/diag", s.HandleDiagWS)
	mux.HandleFunc("/health", s.HandleHealth)
	return mux
}

// ListenAndServe serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second}
	errc := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("preview listening")
		errc <- srv.ListenAndServe()
	}()
	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
