// Package player drives mpv as the media engine behind the playback controller.
//
// One mpv process is launched lazily on the first resource and kept idle
// between items. Commands and events share a single JSON IPC connection:
// replies are matched by request id, everything else is an event mapped onto
// engine signals for the handle that is currently loaded.
package player

import (
	"os/exec"
	"sync"
	"time"

	"github.com/anisan-cli/playerview/engine"
)

const (
	defaultSocketRetries = 10
	defaultSocketDelay   = 300 * time.Millisecond
	quitTimeout          = 3 * time.Second
)

// Options configures how mpv is launched.
type Options struct {
	// Path is the mpv executable, looked up in PATH when not absolute.
	Path string
	// ForceWindow opens the video window before the first frame is decoded.
	ForceWindow bool
	// SocketRetries bounds how many times the IPC socket is dialed after launch.
	SocketRetries int
	// SocketDelay is the pause between dial attempts.
	SocketDelay time.Duration
	// SocketDir holds the IPC socket. Defaults to where.Temp().
	SocketDir string
	// Args are appended to the launch arguments.
	Args []string
}

type item struct {
	locator string
	status  engine.ItemStatus
	// started is set once mpv announced the file, so events of the previous file are not attributed to it.
	started bool
	ended   bool
}

type pendingSeek struct {
	handle engine.Handle
	done   func(bool)
}

// MPV implements engine.Engine on top of an mpv process.
type MPV struct {
	opts Options

	startMu    sync.Mutex
	ipc        *ipcConn
	cmd        *exec.Cmd
	socketPath string
	exited     chan struct{}
	exitOnce   sync.Once

	mu         sync.Mutex
	items      map[engine.Handle]*item
	subs       map[engine.Token]*subscription
	seeks      []pendingSeek
	current    engine.Handle
	nextHandle engine.Handle
	nextToken  engine.Token
	closed     bool
}

var _ engine.Engine = (*MPV)(nil)

// New returns an engine that launches mpv on first use.
func New(opts Options) *MPV {
	if opts.Path == "" {
		opts.Path = "mpv"
	}
	if opts.SocketRetries <= 0 {
		opts.SocketRetries = defaultSocketRetries
	}
	if opts.SocketDelay <= 0 {
		opts.SocketDelay = defaultSocketDelay
	}

	return &MPV{
		opts:   opts,
		exited: make(chan struct{}),
		items:  make(map[engine.Handle]*item),
		subs:   make(map[engine.Token]*subscription),
	}
}

// Wait returns a channel closed once the mpv process has exited or the engine was closed.
func (m *MPV) Wait() <-chan struct{} {
	return m.exited
}

// Socket returns the IPC socket path, empty before launch.
func (m *MPV) Socket() string {
	m.startMu.Lock()
	defer m.startMu.Unlock()
	return m.socketPath
}

func (m *MPV) markExited() {
	m.exitOnce.Do(func() { close(m.exited) })
}
