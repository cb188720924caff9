package player

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/anisan-cli/playerview/engine"
	"github.com/anisan-cli/playerview/log"
	"github.com/anisan-cli/playerview/where"
	"github.com/google/uuid"
)

// observed lists the properties mpv reports on the event connection, keyed by observer id.
var observed = []string{
	"duration",
	"demuxer-cache-state",
	"eof-reached",
}

// arguments builds the mpv command line. mpv stays idle and paused between items
// and keeps the last frame at the end, so end of file is reported as a property.
func (m *MPV) arguments(socketPath string) []string {
	args := []string{
		"--no-terminal",
		"--really-quiet",
		"--idle=yes",
		"--keep-open=yes",
		"--pause=yes",
		fmt.Sprintf("--input-ipc-server=%s", socketPath),
	}

	if m.opts.ForceWindow {
		args = append(args, "--force-window=yes")
	}

	return append(args, m.opts.Args...)
}

// ensure launches mpv and connects to it unless that already happened.
func (m *MPV) ensure(ctx context.Context) error {
	m.startMu.Lock()
	defer m.startMu.Unlock()

	if m.ipc != nil {
		return nil
	}

	dir := m.opts.SocketDir
	if dir == "" {
		dir = where.Temp()
	}
	socketPath := filepath.Join(dir, fmt.Sprintf("mpv-%s.sock", uuid.NewString()[:8]))

	cmd := exec.Command(m.opts.Path, m.arguments(socketPath)...)

	// Detach from the parent process group so terminal signals reach us, not mpv.
	cmd.SysProcAttr = sysProcAttr()
	cmd.Stdout = nil
	cmd.Stderr = nil
	cmd.Stdin = nil

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start mpv: %w", err)
	}

	exited := make(chan struct{})
	go func() {
		_ = cmd.Wait()
		close(exited)
		m.markExited()
	}()

	conn, err := m.dial(ctx, socketPath, exited)
	if err != nil {
		select {
		case <-exited:
		default:
			log.Warnf("player: killing mpv, socket never became ready")
			_ = killProcess(cmd)
		}
		_ = os.Remove(socketPath)
		return fmt.Errorf("mpv socket not ready: %w", err)
	}

	m.cmd = cmd
	m.socketPath = socketPath

	if err := m.connect(ctx, conn); err != nil {
		_ = killProcess(cmd)
		return err
	}

	log.Infof("player: mpv started (pid %d, socket %s)", cmd.Process.Pid, socketPath)
	return nil
}

// dial polls until the IPC socket accepts a connection.
func (m *MPV) dial(ctx context.Context, socketPath string, exited <-chan struct{}) (net.Conn, error) {
	var dialer net.Dialer

	for i := 0; i < m.opts.SocketRetries; i++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-exited:
			return nil, errors.New("mpv exited before socket was ready")
		case <-time.After(m.opts.SocketDelay):
		}

		conn, err := dialer.DialContext(ctx, "unix", socketPath)
		if err == nil {
			return conn, nil
		}
	}

	return nil, fmt.Errorf("socket %s not ready after %d attempts", socketPath, m.opts.SocketRetries)
}

// connect wraps conn and registers the property observers on it.
// Callers hold startMu.
func (m *MPV) connect(ctx context.Context, conn net.Conn) error {
	ipc := newIPCConn(conn, m.handleEvent)

	for i, name := range observed {
		if _, err := ipc.command(ctx, "observe_property", i+1, name); err != nil {
			ipc.close()
			return fmt.Errorf("observe %s: %w", name, err)
		}
	}

	m.ipc = ipc
	return nil
}

// conn returns the live IPC connection.
func (m *MPV) conn() (*ipcConn, error) {
	m.startMu.Lock()
	defer m.startMu.Unlock()

	if m.ipc == nil {
		return nil, errors.New("mpv is not running")
	}
	return m.ipc, nil
}

func (m *MPV) send(args ...any) error {
	ipc, err := m.conn()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	_, err = ipc.command(ctx, args...)
	return err
}

// Close quits mpv, killing it when it does not exit in time, and drops every subscription.
func (m *MPV) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	subs := m.subs
	m.subs = make(map[engine.Token]*subscription)
	seeks := m.seeks
	m.seeks = nil
	m.items = make(map[engine.Handle]*item)
	m.current = 0
	m.mu.Unlock()

	for _, s := range subs {
		s.revoke()
	}
	for _, s := range seeks {
		s.done(false)
	}

	m.startMu.Lock()
	defer m.startMu.Unlock()

	if m.ipc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		_, _ = m.ipc.command(ctx, "quit")
		cancel()
		m.ipc.close()
	}

	if m.cmd != nil {
		select {
		case <-m.exited:
		case <-time.After(quitTimeout):
			log.Warnf("player: mpv did not quit, killing it")
			_ = killProcess(m.cmd)
		}
		_ = os.Remove(m.socketPath)
	}

	m.markExited()
	return nil
}
