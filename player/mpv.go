// Package player implements the playback decoder boundary on top of mpv's JSON-IPC interface.
//
// The session treats the engine as opaque: it accepts play/pause/seek/source
// commands and emits periodic status reports through a Watcher.
package player

import (
	"crypto/rand"
	"fmt"
	"net"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/otaku-mn/otaku/log"
)

const (
	socketWaitRetries = 10
	socketWaitDelay   = 300 * time.Millisecond
)

// MPV drives an mpv process as the playback engine.
type MPV struct {
	socketPath string
	cmd        *exec.Cmd
	exited     chan struct{} // closed when mpv process exits
	mu         sync.Mutex    // protects socket writes
	title      string
	headers    map[string]string
	started    bool
}

// NewMPV creates a new engine instance (does not start playback).
// title is shown in the player window; headers are attached to stream requests.
func NewMPV(title string, headers map[string]string) *MPV {
	return &MPV{
		exited:  make(chan struct{}),
		title:   title,
		headers: headers,
	}
}

// SetSource loads the stream into the engine. The first call spawns mpv;
// later calls replace the playing file on the running instance, which is how
// quality and subtitle changes reissue the source without a restart.
func (m *MPV) SetSource(rawURL string) error {
	safeURL, err := sanitizeMediaTarget(rawURL)
	if err != nil {
		return fmt.Errorf("invalid media target: %w", err)
	}

	if m.started && m.IsRunning() {
		_, err := m.sendCommand([]interface{}{"loadfile", safeURL, "replace"})
		return err
	}
	return m.spawn(safeURL)
}

func (m *MPV) spawn(safeURL string) error {
	// Random socket path under os.TempDir() for cross-platform support
	// (macOS $TMPDIR is /var/folders/... not /tmp/).
	if m.socketPath == "" {
		randomBytes := make([]byte, 4)
		if _, err := rand.Read(randomBytes); err != nil {
			return fmt.Errorf("generate socket name: %w", err)
		}
		m.socketPath = filepath.Join(os.TempDir(), fmt.Sprintf("otaku-%x.sock", randomBytes))
	}

	// Pass only the socket, title, and URL; respect the user's mpv.conf.
	args := []string{
		"--no-terminal",
		"--really-quiet",
		fmt.Sprintf("--input-ipc-server=%s", m.socketPath),
		fmt.Sprintf("--force-media-title=%s", sanitizeTitle(m.title)),
		"--force-window=yes",
		"--idle=yes",
	}

	if header := headerString(m.headers); header != "" {
		args = append(args, fmt.Sprintf("--http-header-fields=%s", header))
	}

	args = append(args, safeURL)

	m.cmd = exec.Command("mpv", args...)

	// Detach from parent process group to prevent cascading shell panics.
	m.cmd.SysProcAttr = sysProcAttr()
	m.cmd.Stdout = nil
	m.cmd.Stderr = nil
	m.cmd.Stdin = nil

	if err := m.cmd.Start(); err != nil {
		return fmt.Errorf("start mpv: %w", err)
	}
	m.started = true

	// Reap the process to prevent zombies.
	m.exited = make(chan struct{})
	go func() {
		_ = m.cmd.Wait()
		close(m.exited)
	}()

	if err := m.waitForSocket(); err != nil {
		if m.cmd.Process != nil {
			select {
			case <-m.exited:
			default:
				log.Warnf("killing mpv: socket never became ready")
				_ = m.cmd.Process.Kill()
			}
		}
		return fmt.Errorf("mpv socket not ready: %w", err)
	}

	return nil
}

// Play resumes playback.
func (m *MPV) Play() error {
	return m.setProperty("pause", false)
}

// Pause suspends playback.
func (m *MPV) Pause() error {
	return m.setProperty("pause", true)
}

// SeekTo moves playback to an absolute millisecond offset.
func (m *MPV) SeekTo(ms int64) error {
	seconds := float64(ms) / 1000
	_, err := m.sendCommand([]interface{}{"seek", seconds, "absolute"})
	return err
}

// SetMuted toggles audio output.
func (m *MPV) SetMuted(muted bool) error {
	return m.setProperty("mute", muted)
}

// SetFullscreen toggles the player window's fullscreen state.
func (m *MPV) SetFullscreen(fullscreen bool) error {
	return m.setProperty("fullscreen", fullscreen)
}

// Wait returns a channel that is closed when the mpv process exits.
func (m *MPV) Wait() <-chan struct{} {
	return m.exited
}

// IsRunning validates the liveness of the underlying process.
func (m *MPV) IsRunning() bool {
	if m.cmd == nil || m.cmd.Process == nil {
		return false
	}
	select {
	case <-m.exited:
		return false
	default:
		return true
	}
}

// Close terminates the engine and releases its resources.
func (m *MPV) Close() error {
	if !m.IsRunning() {
		return nil
	}

	_, _ = m.sendCommand([]interface{}{"quit"})

	select {
	case <-m.exited:
	case <-time.After(2 * time.Second):
		_ = m.cmd.Process.Kill()
	}

	_ = os.Remove(m.socketPath)
	return nil
}

// Socket retrieves the identifier for the IPC channel.
func (m *MPV) Socket() string {
	return m.socketPath
}

// waitForSocket polls until the mpv IPC socket is accepting connections.
func (m *MPV) waitForSocket() error {
	for i := 0; i < socketWaitRetries; i++ {
		time.Sleep(socketWaitDelay)

		select {
		case <-m.exited:
			return fmt.Errorf("mpv exited before socket was ready")
		default:
		}

		conn, err := net.Dial("unix", m.socketPath)
		if err == nil {
			conn.Close()
			return nil
		}
	}
	return fmt.Errorf("socket %s not ready after %d attempts", m.socketPath, socketWaitRetries)
}

func (m *MPV) setProperty(name string, value interface{}) error {
	_, err := m.sendCommand([]interface{}{"set_property", name, value})
	return err
}

// sanitizeMediaTarget rejects targets that could be parsed as mpv flags.
func sanitizeMediaTarget(rawURL string) (string, error) {
	if strings.HasPrefix(rawURL, "-") {
		return "", fmt.Errorf("target starts with a dash: %q", rawURL)
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}

	switch parsed.Scheme {
	case "http", "https", "file", "":
		return rawURL, nil
	default:
		return "", fmt.Errorf("unsupported scheme: %q", parsed.Scheme)
	}
}

// sanitizeTitle strips characters that break the IPC argument encoding.
func sanitizeTitle(title string) string {
	return strings.NewReplacer("\n", " ", "\r", " ", "\"", "'").Replace(title)
}

func headerString(headers map[string]string) string {
	if len(headers) == 0 {
		return ""
	}

	var b strings.Builder
	for k, v := range headers {
		if b.Len() > 0 {
			b.WriteString(",")
		}
		// mpv separates header fields with commas, so embedded ones are escaped.
		val := strings.ReplaceAll(v, ",", "%2C")
		b.WriteString(fmt.Sprintf("%s: %s", k, val))
	}
	return b.String()
}
