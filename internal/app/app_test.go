package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"gopkg.in/yaml.v3"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/ssd1306/image1bit"

	"github.com/relabs-tech/inertial_telemetry/internal/bus"
	"github.com/relabs-tech/inertial_telemetry/internal/config"
	"github.com/relabs-tech/inertial_telemetry/internal/imu"
	"github.com/relabs-tech/inertial_telemetry/internal/sensors"
)

func simConfig() *config.Config {
	cfg := config.Default()
	cfg.BusDriver = config.DriverSim
	cfg.MQTTEnabled = false
	cfg.LogSampleEvery = 1000
	return cfg
}

func TestLoopOptions(t *testing.T) {
	cfg := simConfig()
	cfg.Int1Route = true
	cfg.PollYieldMicros = 250
	cfg.I2CAddr = 0x6B

	opts := LoopOptions(cfg)
	if opts.AccelCtrl != 0x60 || opts.GyroCtrl != 0x60 || opts.BDUCtrl != 0x40 {
		t.Errorf("control bytes = %+v", opts)
	}
	if !opts.Int1Route || opts.Yield != 250*time.Microsecond {
		t.Errorf("Int1Route = %v, Yield = %v", opts.Int1Route, opts.Yield)
	}
	if opts.Source != "lsm6dsox@0x6B" {
		t.Errorf("Source = %q", opts.Source)
	}
}

func TestOpenBusUnknownDriver(t *testing.T) {
	cfg := simConfig()
	cfg.BusDriver = "spi"
	if _, err := OpenBus(cfg); err == nil {
		t.Error("expected error for unknown driver")
	}
}

func TestRunProducerSimulated(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := RunProducer(ctx, simConfig()); err != nil {
		t.Fatalf("RunProducer: %v", err)
	}
}

func TestProbeSimulated(t *testing.T) {
	var buf bytes.Buffer
	rep, err := Probe(bus.NewTransport(bus.OpenSimulated()), "sim", &buf)
	if err != nil {
		t.Fatal(err)
	}
	if !rep.Identity || rep.WhoAmI != "0x6C" {
		t.Errorf("identity = %v %s", rep.Identity, rep.WhoAmI)
	}

	var back ProbeReport
	if err := yaml.Unmarshal(buf.Bytes(), &back); err != nil {
		t.Fatalf("output is not YAML: %v\n%s", err, buf.String())
	}
	if len(back.Registers) != len(rep.Registers) || len(back.Registers) == 0 {
		t.Fatalf("registers = %d, want %d", len(back.Registers), len(rep.Registers))
	}
	for _, r := range back.Registers {
		if r.Name == "CTRL3_C" && r.Value != "0x04" {
			t.Errorf("CTRL3_C = %s, want power-on 0x04", r.Value)
		}
	}
}

func TestFormatSample(t *testing.T) {
	line := FormatSample(imu.Sample{Seq: 12, Ax: 0.00390625, TempC: 36.53})
	for _, want := range []string{"#12", "ax=  0.0039", "temp= 36.53"} {
		if !strings.Contains(line, want) {
			t.Errorf("%q does not contain %q", line, want)
		}
	}
}

func TestDecodeSample(t *testing.T) {
	s, err := decodeSample([]byte(`{"seq":3,"ax":0.5,"temp_c":30}`))
	if err != nil {
		t.Fatal(err)
	}
	if s.Seq != 3 || s.Ax != 0.5 || s.TempC != 30 {
		t.Errorf("decoded = %+v", s)
	}
	if _, err := decodeSample([]byte("not json")); err == nil {
		t.Error("expected error")
	}
}

func wsURL(srv *httptest.Server, path string) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + path
}

func TestWebSampleEndpoint(t *testing.T) {
	web := NewWeb(nil)
	srv := httptest.NewServer(web.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/sample")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status before data = %d, want 503", resp.StatusCode)
	}

	web.Update(imu.Sample{Seq: 5, Az: 1})
	resp, err = http.Get(srv.URL + "/api/sample")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var got imu.Sample
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if got.Seq != 5 || got.Az != 1 {
		t.Errorf("sample = %+v", got)
	}
}

func TestWebStream(t *testing.T) {
	web := NewWeb(nil)
	srv := httptest.NewServer(web.Handler())
	defer srv.Close()

	web.Update(imu.Sample{Seq: 1})
	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "/ws"), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var s imu.Sample
	if err := conn.ReadJSON(&s); err != nil {
		t.Fatal(err)
	}
	if s.Seq != 1 {
		t.Fatalf("first message seq = %d, want latest 1", s.Seq)
	}

	web.Update(imu.Sample{Seq: 2})
	if err := conn.ReadJSON(&s); err != nil {
		t.Fatal(err)
	}
	if s.Seq != 2 {
		t.Errorf("streamed seq = %d, want 2", s.Seq)
	}
}

func getBody(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp.StatusCode, string(b)
}

func TestWebServesPage(t *testing.T) {
	srv := httptest.NewServer(NewWeb(webAssets).Handler())
	defer srv.Close()

	code, body := getBody(t, srv.URL+"/")
	if code != http.StatusOK || !strings.Contains(body, "<html") || !strings.Contains(body, "/ws") {
		t.Errorf("GET / = %d, body %.60q", code, body)
	}
	if code, _ := getBody(t, srv.URL+"/missing.js"); code != http.StatusNotFound {
		t.Errorf("GET /missing.js = %d, want 404", code)
	}
}

func countOn(img *image1bit.VerticalLSB) int {
	n := 0
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if img.BitAt(x, y) == image1bit.On {
				n++
			}
		}
	}
	return n
}

func TestRenderSample(t *testing.T) {
	waiting := RenderSample(imu.Sample{}, false)
	if waiting.Bounds().Dx() != 128 || waiting.Bounds().Dy() != 64 {
		t.Fatalf("bounds = %v", waiting.Bounds())
	}
	if countOn(waiting) == 0 {
		t.Error("waiting screen is blank")
	}
	a := RenderSample(imu.Sample{Seq: 1, Az: 1, TempC: 25}, true)
	b := RenderSample(imu.Sample{Seq: 2, Az: -1, TempC: 40}, true)
	if bytes.Equal(a.Pix, b.Pix) {
		t.Error("different samples render identically")
	}
}

type txFunc func(addr uint16, w, r []byte) error

func (f txFunc) String() string                    { return "txfunc" }
func (f txFunc) Tx(addr uint16, w, r []byte) error { return f(addr, w, r) }
func (f txFunc) SetSpeed(physic.Frequency) error   { return nil }

func TestReaddressBus(t *testing.T) {
	var got []uint16
	rb := readdressBus{Bus: txFunc(func(addr uint16, w, r []byte) error {
		got = append(got, addr)
		return nil
	}), addr: 0x3D}
	if err := rb.Tx(ssd1306Addr, []byte{0}, nil); err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0] != 0x3D {
		t.Errorf("addresses = %v, want [0x3D]", got)
	}
}

func newDebug(t *testing.T) (*RegisterDebug, *bus.Simulated) {
	t.Helper()
	sim := bus.NewSimulated()
	ranges, err := config.ParseRanges("0x10-0x19")
	if err != nil {
		t.Fatal(err)
	}
	return NewRegisterDebug("sim", bus.NewTransport(sim), ranges), sim
}

func TestRegisterDebugHandle(t *testing.T) {
	d, sim := newDebug(t)

	if r := d.Handle(RegisterCmd{Action: "read", Address: "WHO_AM_I"}); r.Type != "register_data" || r.Value != "0x6C" {
		t.Errorf("read WHO_AM_I = %+v", r)
	}
	if r := d.Handle(RegisterCmd{Action: "write", Address: "0x10", Value: "0x60"}); r.Type != "register_data" {
		t.Errorf("write CTRL1_XL = %+v", r)
	}
	if v := sim.Register(sensors.RegCtrl1XL); v != 0x60 {
		t.Errorf("CTRL1_XL = 0x%02X after write, want 0x60", v)
	}
	if r := d.Handle(RegisterCmd{Action: "write", Address: "0x73", Value: "1"}); r.Type != "error" {
		t.Errorf("write outside allowed ranges = %+v", r)
	}
	if v := sim.Register(sensors.RegXOfsUsr); v != 0 {
		t.Errorf("X_OFS_USR = 0x%02X, want untouched", v)
	}
	if r := d.Handle(RegisterCmd{Action: "write", Address: "0x10", Value: "0x1FF"}); r.Type != "error" {
		t.Errorf("bad value = %+v", r)
	}
	if r := d.Handle(RegisterCmd{Action: "bogus"}); r.Type != "error" {
		t.Errorf("unknown action = %+v", r)
	}

	all := d.Handle(RegisterCmd{Action: "read_all"})
	if all.Registers["0x0F"] != "0x6C" || all.Registers["0x10"] != "0x60" {
		t.Errorf("read_all = %v", all.Registers)
	}
	exp := d.Handle(RegisterCmd{Action: "export_config"})
	if exp.Type != "export_config" || exp.Config == nil || exp.Config.Registers["0x12"] != "0x04" {
		t.Errorf("export = %+v", exp)
	}
}

func TestRegisterDebugPage(t *testing.T) {
	d, _ := newDebug(t)
	srv := httptest.NewServer(d.Handler())
	defer srv.Close()

	code, body := getBody(t, srv.URL+"/")
	if code != http.StatusOK || !strings.Contains(body, "register debug") {
		t.Errorf("GET / = %d, body %.60q", code, body)
	}
	if code, _ := getBody(t, srv.URL+"/other"); code != http.StatusNotFound {
		t.Errorf("GET /other = %d, want 404", code)
	}

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "/ws"), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var resp RegisterResponse
	if err := conn.ReadJSON(&resp); err != nil || resp.Type != "register_map" {
		t.Errorf("first message = %+v, %v", resp.Type, err)
	}
}

func TestRegisterDebugWS(t *testing.T) {
	d, _ := newDebug(t)
	srv := httptest.NewServer(http.HandlerFunc(d.HandleWS))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "/"), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var resp RegisterResponse
	if err := conn.ReadJSON(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Type != "register_map" || len(resp.RegisterMap) == 0 {
		t.Fatalf("first message = %+v", resp.Type)
	}

	if err := conn.WriteJSON(RegisterCmd{Action: "read", Address: "0x0F"}); err != nil {
		t.Fatal(err)
	}
	resp = RegisterResponse{}
	if err := conn.ReadJSON(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Value != "0x6C" {
		t.Errorf("read response = %+v", resp)
	}

	if err := conn.WriteMessage(websocket.TextMessage, []byte("{")); err != nil {
		t.Fatal(err)
	}
	resp = RegisterResponse{}
	if err := conn.ReadJSON(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Type != "error" {
		t.Errorf("malformed command response = %+v", resp)
	}
}
