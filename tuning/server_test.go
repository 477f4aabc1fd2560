package tuning

import (
	"context"
	"encoding/json"
	"math"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gorilla/websocket"

	"github.com/richinsley/goocean/ocean"
)

func testParams() *ocean.Parameters {
	p := ocean.NewParameters(ocean.Values{
		Wind:         mgl32.Vec2{10, 10},
		Size:         250,
		Choppiness:   1.5,
		SunDirection: mgl32.Vec3{-1, 1, 1},
		OceanColor:   mgl32.Vec3{0.004, 0.016, 0.047},
		SkyColor:     mgl32.Vec3{3.2, 9.6, 12.8},
		Exposure:     0.35,
	})
	p.ClearChanged()
	return p
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	var msg Message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	return msg
}

func ptr[T any](v T) *T { return &v }

func TestUpdateValidate(t *testing.T) {
	nan := float32(math.NaN())
	tests := []struct {
		name string
		u    Update
		ok   bool
	}{
		{"empty", Update{}, true},
		{"wind", Update{Wind: &[2]float32{-3, 4}}, true},
		{"zero size", Update{Size: ptr[float32](0)}, false},
		{"negative exposure", Update{Exposure: ptr[float32](-0.1)}, false},
		{"nan choppiness", Update{Choppiness: &nan}, false},
		{"infinite color", Update{SkyColor: &[3]float32{1, float32(math.Inf(1)), 0}}, false},
		{"zero sun", Update{SunDirection: &[3]float32{}}, false},
		{"negative choppiness", Update{Choppiness: ptr[float32](-1)}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.u.Validate(); (err == nil) != tt.ok {
				t.Errorf("Validate() = %v, want ok=%v", err, tt.ok)
			}
		})
	}
}

func TestUpdateApplyRaisesChanged(t *testing.T) {
	p := testParams()
	u := Update{Wind: &[2]float32{1, 2}, WindY: ptr[float32](5), Size: ptr[float32](100)}
	u.Apply(p)

	if !p.Changed() {
		t.Error("update did not request regeneration")
	}
	v := p.Snapshot()
	if v.Wind != (mgl32.Vec2{1, 5}) || v.Size != 100 || v.Choppiness != 1.5 {
		t.Errorf("values = %+v", v)
	}
}

func TestWebSocketUpdateIsBroadcast(t *testing.T) {
	p := testParams()
	srv := httptest.NewServer(NewServer(p).Handler())
	defer srv.Close()

	a := dial(t, srv)
	b := dial(t, srv)
	for _, c := range []*websocket.Conn{a, b} {
		if msg := readMessage(t, c); msg.Type != "values" || msg.Values.Size != 250 {
			t.Fatalf("greeting = %+v", msg)
		}
	}

	if err := a.WriteJSON(map[string]any{"choppiness": 0.5, "wind_x": -4}); err != nil {
		t.Fatal(err)
	}
	for _, c := range []*websocket.Conn{a, b} {
		msg := readMessage(t, c)
		if msg.Type != "values" || msg.Values.Choppiness != 0.5 || msg.Values.Wind != [2]float32{-4, 10} {
			t.Errorf("broadcast = %+v", msg)
		}
	}
	if !p.Changed() {
		t.Error("websocket update did not request regeneration")
	}
}

func TestWebSocketRejectsInvalidUpdate(t *testing.T) {
	p := testParams()
	srv := httptest.NewServer(NewServer(p).Handler())
	defer srv.Close()

	conn := dial(t, srv)
	readMessage(t, conn)
	if err := conn.WriteJSON(map[string]any{"size": -1}); err != nil {
		t.Fatal(err)
	}
	msg := readMessage(t, conn)
	if msg.Type != "error" || !strings.Contains(msg.Error, "size") {
		t.Errorf("reply = %+v", msg)
	}
	if p.Changed() || p.Snapshot().Size != 250 {
		t.Error("rejected update was applied")
	}
}

func TestParamsEndpoint(t *testing.T) {
	srv := httptest.NewServer(NewServer(testParams()).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/params")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var v Values
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatal(err)
	}
	if v.Size != 250 || v.Exposure != 0.35 || v.SkyColor != [3]float32{3.2, 9.6, 12.8} {
		t.Errorf("snapshot = %+v", v)
	}

	resp, err = http.Post(srv.URL+"/params", "application/json", strings.NewReader("{}"))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("POST status = %d", resp.StatusCode)
	}
}

func TestServeStopsOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- NewServer(testParams()).Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/params")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
