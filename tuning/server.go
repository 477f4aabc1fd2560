// Package tuning exposes the live ocean parameters over a websocket. Clients
// send partial updates as JSON and every connected client receives the
// resulting values.
package tuning

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gorilla/websocket"

	"github.com/richinsley/goocean/ocean"
)

// Update is a partial parameter change. Absent fields keep their value.
type Update struct {
	Wind         *[2]float32 `json:"wind,omitempty"`
	WindX        *float32    `json:"wind_x,omitempty"`
	WindY        *float32    `json:"wind_y,omitempty"`
	Size         *float32    `json:"size,omitempty"`
	Choppiness   *float32    `json:"choppiness,omitempty"`
	SunDirection *[3]float32 `json:"sun_direction,omitempty"`
	OceanColor   *[3]float32 `json:"ocean_color,omitempty"`
	SkyColor     *[3]float32 `json:"sky_color,omitempty"`
	Exposure     *float32    `json:"exposure,omitempty"`
}

// Values is the wire form of ocean.Values.
type Values struct {
	Wind         [2]float32 `json:"wind"`
	Size         float32    `json:"size"`
	Choppiness   float32    `json:"choppiness"`
	SunDirection [3]float32 `json:"sun_direction"`
	OceanColor   [3]float32 `json:"ocean_color"`
	SkyColor     [3]float32 `json:"sky_color"`
	Exposure     float32    `json:"exposure"`
}

// Message is sent to clients: the current values, or an error for the
// sender of a rejected update.
type Message struct {
	Type   string  `json:"type"`
	Values *Values `json:"values,omitempty"`
	Error  string  `json:"error,omitempty"`
}

func toWire(v ocean.Values) *Values {
	return &Values{
		Wind:         v.Wind,
		Size:         v.Size,
		Choppiness:   v.Choppiness,
		SunDirection: v.SunDirection,
		OceanColor:   v.OceanColor,
		SkyColor:     v.SkyColor,
		Exposure:     v.Exposure,
	}
}

// Validate rejects updates that would make the spectrum or shading
// meaningless.
func (u *Update) Validate() error {
	var scalars []float32
	for _, p := range []*float32{u.WindX, u.WindY, u.Size, u.Choppiness, u.Exposure} {
		if p != nil {
			scalars = append(scalars, *p)
		}
	}
	if u.Wind != nil {
		scalars = append(scalars, u.Wind[:]...)
	}
	for _, v := range []*[3]float32{u.SunDirection, u.OceanColor, u.SkyColor} {
		if v != nil {
			scalars = append(scalars, v[:]...)
		}
	}
	for _, f := range scalars {
		if math.IsNaN(float64(f)) || math.IsInf(float64(f), 0) {
			return errors.New("values must be finite")
		}
	}
	if u.Size != nil && *u.Size <= 0 {
		return fmt.Errorf("size %v must be positive", *u.Size)
	}
	if u.Exposure != nil && *u.Exposure < 0 {
		return fmt.Errorf("exposure %v must not be negative", *u.Exposure)
	}
	if u.SunDirection != nil && *u.SunDirection == [3]float32{} {
		return errors.New("sun_direction must not be the zero vector")
	}
	return nil
}

// Apply writes the update into p as one change.
func (u *Update) Apply(p *ocean.Parameters) {
	p.Apply(func(v *ocean.Values) {
		if u.Wind != nil {
			v.Wind = mgl32.Vec2(*u.Wind)
		}
		if u.WindX != nil {
			v.Wind[0] = *u.WindX
		}
		if u.WindY != nil {
			v.Wind[1] = *u.WindY
		}
		if u.Size != nil {
			v.Size = *u.Size
		}
		if u.Choppiness != nil {
			v.Choppiness = *u.Choppiness
		}
		if u.SunDirection != nil {
			v.SunDirection = mgl32.Vec3(*u.SunDirection)
		}
		if u.OceanColor != nil {
			v.OceanColor = mgl32.Vec3(*u.OceanColor)
		}
		if u.SkyColor != nil {
			v.SkyColor = mgl32.Vec3(*u.SkyColor)
		}
		if u.Exposure != nil {
			v.Exposure = *u.Exposure
		}
	})
}

// Server serves /ws for updates and /params for a JSON snapshot.
type Server struct {
	params   *ocean.Parameters
	upgrader websocket.Upgrader

	clientsMu sync.RWMutex
	clients   map[*websocket.Conn]*sync.Mutex
}

func NewServer(params *ocean.Parameters) *Server {
	return &Server{
		params: params,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[*websocket.Conn]*sync.Mutex),
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/params", s.handleParams)
	return mux
}

// ListenAndServe serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
		s.closeClients()
	}()
	ocean.Logger().Info("tuning server listening", "addr", ln.Addr().String())
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleParams(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toWire(s.params.Snapshot()))
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		ocean.Logger().Warn("websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	connMutex := &sync.Mutex{}
	s.clientsMu.Lock()
	s.clients[conn] = connMutex
	s.clientsMu.Unlock()
	defer func() {
		s.clientsMu.Lock()
		delete(s.clients, conn)
		s.clientsMu.Unlock()
	}()

	s.send(conn, connMutex, Message{Type: "values", Values: toWire(s.params.Snapshot())})

	for {
		var u Update
		if err := conn.ReadJSON(&u); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				ocean.Logger().Debug("websocket read ended", "err", err)
			}
			return
		}
		if err := u.Validate(); err != nil {
			s.send(conn, connMutex, Message{Type: "error", Error: err.Error()})
			continue
		}
		u.Apply(s.params)
		ocean.Logger().Debug("parameters tuned", "remote", r.RemoteAddr)
		s.broadcast(Message{Type: "values", Values: toWire(s.params.Snapshot())})
	}
}

func (s *Server) send(conn *websocket.Conn, mu *sync.Mutex, msg Message) {
	mu.Lock()
	defer mu.Unlock()
	if err := conn.WriteJSON(msg); err != nil {
		ocean.Logger().Debug("websocket write failed", "err", err)
	}
}

func (s *Server) broadcast(msg Message) {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	for conn, mu := range s.clients {
		s.send(conn, mu, msg)
	}
}

func (s *Server) closeClients() {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	for conn := range s.clients {
		conn.Close()
	}
}
