package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/relabs-tech/inertial_telemetry/internal/config"
	"github.com/relabs-tech/inertial_telemetry/internal/imu"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // local network tool
	},
}

const wsWriteTimeout = 5 * time.Second

// Web serves the latest sample over HTTP and streams samples to websocket
// clients.
type Web struct {
	static fs.FS

	mu      sync.RWMutex
	last    imu.Sample
	have    bool
	clients map[chan imu.Sample]struct{}
}

// NewWeb returns a server that also serves the files in static when it is
// not nil.
func NewWeb(static fs.FS) *Web {
	return &Web{static: static, clients: make(map[chan imu.Sample]struct{})}
}

// Update records s as the latest sample and pushes it to every stream
// client. Slow clients miss samples.
func (w *Web) Update(s imu.Sample) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.last = s
	w.have = true
	for ch := range w.clients {
		select {
		case ch <- s:
		default:
		}
	}
}

// Latest returns the last sample, if any.
func (w *Web) Latest() (imu.Sample, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.last, w.have
}

func (w *Web) subscribe() chan imu.Sample {
	ch := make(chan imu.Sample, 16)
	w.mu.Lock()
	w.clients[ch] = struct{}{}
	last, have := w.last, w.have
	w.mu.Unlock()
	if have {
		ch <- last
	}
	return ch
}

func (w *Web) unsubscribe(ch chan imu.Sample) {
	w.mu.Lock()
	delete(w.clients, ch)
	w.mu.Unlock()
}

// Handler routes /api/sample, /ws and the static files.
func (w *Web) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/sample", w.handleSample)
	mux.HandleFunc("/ws", w.handleStream)
	if w.static != nil {
		mux.Handle("/", http.FileServer(http.FS(w.static)))
	}
	return mux
}

func (w *Web) handleSample(rw http.ResponseWriter, _ *http.Request) {
	s, ok := w.Latest()
	if !ok {
		http.Error(rw, "no data yet", http.StatusServiceUnavailable)
		return
	}
	rw.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(rw).Encode(s); err != nil {
		log.Warnf("web: json encode error: %v", err)
	}
}

func (w *Web) handleStream(rw http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(rw, r, nil)
	if err != nil {
		log.Warnf("web: websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	ch := w.subscribe()
	defer w.unsubscribe(ch)

	// Reads only detect the client going away.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-gone:
			return
		case s := <-ch:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteJSON(s); err != nil {
				log.Debugf("web: stream client dropped: %v", err)
				return
			}
		}
	}
}

// RunWeb subscribes to the sample topic and serves it until ctx is done.
func RunWeb(ctx context.Context, cfg *config.Config) error {
	web := NewWeb(webAssets)

	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDWeb, cfg.TopicSample, web.Update)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.WebServerPort),
		Handler:           web.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return serveUntil(ctx, srv, "web")
}

// serveUntil runs srv until ctx is done, then shuts it down.
func serveUntil(ctx context.Context, srv *http.Server, name string) error {
	errc := make(chan error, 1)
	go func() {
		log.Infof("%s: listening on %s", name, srv.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("%s: %w", name, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("%s: shutdown: %w", name, err)
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("%s: %w", name, err)
	}
	log.Infof("%s: stopped", name)
	return nil
}
