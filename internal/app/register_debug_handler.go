// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/relabs-tech/inertial_telemetry/internal/acquire"
	"github.com/relabs-tech/inertial_telemetry/internal/bus"
	"github.com/relabs-tech/inertial_telemetry/internal/config"
	"github.com/relabs-tech/inertial_telemetry/internal/sensors"
)

// RegisterCmd is a request from the register debug page.
type RegisterCmd struct {
	Action  string `json:"action"` // get_map, read, read_all, write, export_config
	Address string `json:"addr,omitempty"`
	Value   string `json:"value,omitempty"`
}

// RegisterResponse is sent back for every command.
type RegisterResponse struct {
	Type        string                 `json:"type"` // register_map, register_data, export_config, error
	Address     string                 `json:"addr,omitempty"`
	Value       string                 `json:"value,omitempty"`
	Registers   map[string]string      `json:"registers,omitempty"`
	Timestamp   string                 `json:"timestamp,omitempty"`
	Message     string                 `json:"message,omitempty"`
	RegisterMap []sensors.RegisterInfo `json:"register_map,omitempty"`
	Config      *RegisterConfigFile    `json:"config,omitempty"`
	Filename    string                 `json:"filename,omitempty"`
}

// RegisterConfigFile is the exported register snapshot.
type RegisterConfigFile struct {
	Version   int               `json:"version"`
	Bus       string            `json:"bus"`
	Timestamp string            `json:"timestamp"`
	Registers map[string]string `json:"registers"` // hex address -> hex value
}

// RegisterDebug exposes raw register access over a websocket. Transfers
// from all sessions are serialized on one transport.
type RegisterDebug struct {
	name    string
	allowed []config.Range

	mu   sync.Mutex
	regs acquire.Registers
}

// NewRegisterDebug serves regs; writes are limited to allowed.
func NewRegisterDebug(name string, regs acquire.Registers, allowed []config.Range) *RegisterDebug {
	return &RegisterDebug{name: name, regs: regs, allowed: allowed}
}

func (d *RegisterDebug) read(addr byte) (byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.regs.ReadRegister(addr)
}

func (d *RegisterDebug) write(addr, value byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.regs.WriteRegister(addr, value)
}

// readAll reads every readable register in the map.
func (d *RegisterDebug) readAll() (map[string]string, error) {
	out := make(map[string]string)
	for _, info := range sensors.RegisterMap() {
		if info.Access == "W" {
			continue
		}
		v, err := d.read(byte(info.Address))
		if err != nil {
			return nil, err
		}
		out[fmt.Sprintf("0x%02X", byte(info.Address))] = fmt.Sprintf("0x%02X", v)
	}
	return out, nil
}

// Handle answers a single command.
func (d *RegisterDebug) Handle(cmd RegisterCmd) RegisterResponse {
	now := time.Now()
	switch cmd.Action {
	case "get_map":
		return RegisterResponse{Type: "register_map", RegisterMap: sensors.RegisterMap()}

	case "read":
		reg, err := sensors.ParseRegister(cmd.Address)
		if err != nil {
			return errorResponse("invalid address: %v", err)
		}
		v, err := d.read(byte(reg))
		if err != nil {
			return errorResponse("read error: %v", err)
		}
		return RegisterResponse{
			Type:      "register_data",
			Address:   fmt.Sprintf("0x%02X", byte(reg)),
			Value:     fmt.Sprintf("0x%02X", v),
			Timestamp: now.Format(time.RFC3339),
		}

	case "read_all":
		regs, err := d.readAll()
		if err != nil {
			return errorResponse("read all error: %v", err)
		}
		return RegisterResponse{Type: "register_data", Registers: regs, Timestamp: now.Format(time.RFC3339)}

	case "write":
		reg, err := sensors.ParseRegister(cmd.Address)
		if err != nil {
			return errorResponse("invalid address: %v", err)
		}
		v, err := strconv.ParseUint(cmd.Value, 0, 8)
		if err != nil {
			return errorResponse("invalid value %q", cmd.Value)
		}
		if !config.InRanges(d.allowed, byte(reg)) {
			return errorResponse("register 0x%02X not in allowed write ranges", byte(reg))
		}
		if err := d.write(byte(reg), byte(v)); err != nil {
			return errorResponse("write error: %v", err)
		}
		log.Infof("register_debug: wrote %s=0x%02X", reg, v)
		return RegisterResponse{
			Type:      "register_data",
			Address:   fmt.Sprintf("0x%02X", byte(reg)),
			Value:     fmt.Sprintf("0x%02X", v),
			Timestamp: now.Format(time.RFC3339),
			Message:   "write successful",
		}

	case "export_config":
		regs, err := d.readAll()
		if err != nil {
			return errorResponse("export error: %v", err)
		}
		return RegisterResponse{
			Type:    "export_config",
			Message: "config exported",
			Config: &RegisterConfigFile{
				Version:   1,
				Bus:       d.name,
				Timestamp: now.Format(time.RFC3339),
				Registers: regs,
			},
			Filename: fmt.Sprintf("lsm6dsox_%s_registers.json", now.Format("20060102_150405")),
		}
	}
	return errorResponse("unknown action: %s", cmd.Action)
}

func errorResponse(format string, args ...any) RegisterResponse {
	return RegisterResponse{Type: "error", Message: fmt.Sprintf(format, args...)}
}

// HandleWS runs one websocket session. The register map is sent first.
func (d *RegisterDebug) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warnf("register_debug: websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	if err := conn.WriteJSON(d.Handle(RegisterCmd{Action: "get_map"})); err != nil {
		log.Warnf("register_debug: error sending register map: %v", err)
		return
	}

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warnf("register_debug: websocket error: %v", err)
			}
			return
		}
		var cmd RegisterCmd
		resp := errorResponse("invalid command")
		if err := json.Unmarshal(msg, &cmd); err == nil {
			resp = d.Handle(cmd)
		}
		if err := conn.WriteJSON(resp); err != nil {
			log.Warnf("register_debug: write: %v", err)
			return
		}
	}
}

// Handler routes /ws to HandleWS and serves the debug page at /.
func (d *RegisterDebug) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", d.HandleWS)
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		r2 := r.Clone(r.Context())
		r2.URL.Path = "/register_debug.html"
		http.FileServer(http.FS(webAssets)).ServeHTTP(w, r2)
	})
	return mux
}

// RunRegisterDebug opens the sensor bus and serves the debug tool until
// ctx is done.
func RunRegisterDebug(ctx context.Context, cfg *config.Config) error {
	h, err := OpenBus(cfg)
	if err != nil {
		return err
	}
	defer h.Close()

	dbg := NewRegisterDebug(h.String(), bus.NewTransport(h), cfg.RegisterDebugAllowedRanges)
	log.Infof("register_debug: writes allowed in %v", cfg.RegisterDebugAllowedRanges)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.RegisterDebugPort),
		Handler:           dbg.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return serveUntil(ctx, srv, "register_debug")
}
