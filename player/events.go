package player

import (
	"encoding/json"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/otaku-mn/otaku/log"
	"github.com/otaku-mn/otaku/playback"
)

// StatusHandler receives decoder status reports as mpv properties change.
type StatusHandler func(playback.Status)

// Watcher observes mpv properties over a persistent IPC connection and
// translates each change into a full status report for the session.
type Watcher struct {
	mpv     *MPV
	handler StatusHandler
	conn    net.Conn
	stopCh  chan struct{}
	mu      sync.Mutex
	running bool

	// status accumulates across property changes; every report carries
	// the complete picture, not a delta.
	status playback.Status
}

// NewWatcher creates a property watcher for a running engine.
func NewWatcher(mpv *MPV, handler StatusHandler) *Watcher {
	return &Watcher{
		mpv:     mpv,
		handler: handler,
		stopCh:  make(chan struct{}),
	}
}

// Start subscribes to the playback properties and begins the read loop.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return nil
	}

	properties := []struct {
		id   int
		name string
	}{
		{1, "time-pos"},         // position for progress saves and the skip window
		{2, "duration"},         // known once the stream is probed
		{3, "pause"},            // confirmed pause state
		{4, "paused-for-cache"}, // buffering
		{5, "seeking"},          // in-flight seeks
		{6, "eof-reached"},      // episode completion
	}

	for _, prop := range properties {
		_, err := doSendCommand(w.mpv.Socket(), []interface{}{"observe_property", prop.id, prop.name})
		if err != nil {
			return fmt.Errorf("observe %s: %w", prop.name, err)
		}
	}

	conn, err := net.Dial("unix", w.mpv.Socket())
	if err != nil {
		return fmt.Errorf("watcher connect: %w", err)
	}
	w.conn = conn
	w.running = true

	go w.readLoop()

	log.Infof("mpv watcher started on %s", w.mpv.Socket())
	return nil
}

// Stop terminates the watcher. Idempotent.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return
	}

	close(w.stopCh)
	if w.conn != nil {
		w.conn.Close()
	}
	w.running = false
}

// readLoop continuously reads newline-delimited JSON events from mpv.
func (w *Watcher) readLoop() {
	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
	}()

	buf := make([]byte, readBufSize)
	var remainder []byte

	for {
		select {
		case <-w.stopCh:
			return
		default:
		}

		_ = w.conn.SetReadDeadline(time.Now().Add(500 * time.Millisecond))

		n, err := w.conn.Read(buf)
		if err != nil {
			if strings.Contains(err.Error(), "timeout") || strings.Contains(err.Error(), "deadline") {
				continue // timeout is normal, keep listening
			}
			select {
			case <-w.stopCh:
				// Expected: Stop closed the connection under us.
			default:
				log.Warnf("mpv watcher read error: %v", err)
			}
			return
		}

		data := append(remainder, buf[:n]...)
		remainder = nil

		lines := strings.Split(string(data), "\n")
		for i, line := range lines {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}

			// Last incomplete line carries over to the next read.
			if i == len(lines)-1 && !strings.HasSuffix(string(data), "\n") {
				remainder = []byte(line)
				continue
			}

			w.processEvent(line)
		}
	}
}

// processEvent parses a single mpv event line and, when it affects the
// accumulated status, emits a report to the handler.
func (w *Watcher) processEvent(line string) {
	var event map[string]interface{}
	if err := json.Unmarshal([]byte(line), &event); err != nil {
		return // skip unparseable lines
	}

	eventType, ok := event["event"].(string)
	if !ok {
		return
	}

	switch eventType {
	case "property-change":
		name, _ := event["name"].(string)
		if w.applyProperty(name, event["data"]) {
			w.emit()
		}
	case "end-file":
		// reason "eof" is already covered by eof-reached; errors are not.
		if reason, _ := event["reason"].(string); reason == "error" {
			w.status.Err = fmt.Errorf("mpv: playback aborted")
			w.emit()
		}
	}
}

// applyProperty folds a property change into the accumulated status.
// Returns false for properties that carry no new information.
func (w *Watcher) applyProperty(name string, data interface{}) bool {
	switch name {
	case "time-pos":
		seconds, ok := data.(float64)
		if !ok {
			return false
		}
		w.status.PositionMs = int64(seconds * 1000)
		return true
	case "duration":
		seconds, ok := data.(float64)
		if !ok || seconds <= 0 {
			return false
		}
		w.status.DurationMs = int64(seconds * 1000)
		w.status.Loaded = true
		return true
	case "pause":
		paused, ok := data.(bool)
		if !ok {
			return false
		}
		w.status.Playing = !paused
		// mpv never reports pause until a file is loaded.
		w.status.Loaded = true
		return true
	case "paused-for-cache", "seeking":
		// Both read as "the decoder is not presenting frames right now".
		buffering, ok := data.(bool)
		if !ok {
			return false
		}
		w.status.Buffering = buffering
		return true
	case "eof-reached":
		reached, ok := data.(bool)
		if !ok || !reached {
			return false
		}
		w.status.JustFinished = true
		return true
	default:
		return false
	}
}

func (w *Watcher) emit() {
	if w.handler == nil {
		return
	}
	report := w.status
	w.handler(report)
	// Completion is edge-triggered; the flag must not repeat on the
	// next unrelated property change.
	w.status.JustFinished = false
}
