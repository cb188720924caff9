package player

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/anisan-cli/playerview/engine"
	"github.com/anisan-cli/playerview/log"
)

// ErrCommand is returned when mpv answers a command with an error.
var ErrCommand = errors.New("mpv command failed")

const (
	commandTimeout = 5 * time.Second
	writeTimeout   = time.Second
)

// ipcCommand is the JSON structure sent to mpv's IPC socket.
type ipcCommand struct {
	Command   []any `json:"command"`
	RequestID int64 `json:"request_id"`
}

// ipcMessage is any line received from mpv: a reply carries a request id, an event carries a name.
type ipcMessage struct {
	RequestID *int64          `json:"request_id,omitempty"`
	Error     string          `json:"error,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`

	Event     string `json:"event,omitempty"`
	ID        int    `json:"id,omitempty"`
	Name      string `json:"name,omitempty"`
	Reason    string `json:"reason,omitempty"`
	FileError string `json:"file_error,omitempty"`
}

// ipcConn multiplexes commands and events over one newline-delimited JSON connection.
type ipcConn struct {
	conn    net.Conn
	onEvent func(*ipcMessage)

	wmu sync.Mutex

	mu      sync.Mutex
	pending map[int64]chan *ipcMessage
	nextID  int64

	done      chan struct{}
	closeOnce sync.Once
}

func newIPCConn(conn net.Conn, onEvent func(*ipcMessage)) *ipcConn {
	c := &ipcConn{
		conn:    conn,
		onEvent: onEvent,
		pending: make(map[int64]chan *ipcMessage),
		done:    make(chan struct{}),
	}
	go c.readLoop()
	return c
}

// command sends args and waits for the matching reply.
func (c *ipcConn) command(ctx context.Context, args ...any) (json.RawMessage, error) {
	select {
	case <-c.done:
		return nil, engine.ErrClosed
	default:
	}

	c.mu.Lock()
	c.nextID++
	id := c.nextID
	reply := make(chan *ipcMessage, 1)
	c.pending[id] = reply
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
	}()

	payload, err := json.Marshal(ipcCommand{Command: args, RequestID: id})
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}

	if err := c.write(append(payload, '\n')); err != nil {
		return nil, fmt.Errorf("write: %w", err)
	}

	select {
	case msg := <-reply:
		if msg.Error != "" && msg.Error != "success" {
			return nil, fmt.Errorf("%w: %v: %s", ErrCommand, args[0], msg.Error)
		}
		return msg.Data, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-c.done:
		return nil, engine.ErrClosed
	}
}

func (c *ipcConn) write(line []byte) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()

	if err := c.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	_, err := c.conn.Write(line)
	return err
}

// readLoop reads until the connection fails, routing replies to their waiters and events to onEvent.
func (c *ipcConn) readLoop() {
	defer c.close()

	reader := bufio.NewReader(c.conn)
	for {
		line, err := reader.ReadBytes('\n')
		if line = bytes.TrimSpace(line); len(line) > 0 {
			c.route(line)
		}
		if err != nil {
			select {
			case <-c.done:
			default:
				log.Debugf("player: ipc read: %v", err)
			}
			return
		}
	}
}

func (c *ipcConn) route(line []byte) {
	var msg ipcMessage
	if err := json.Unmarshal(line, &msg); err != nil {
		log.Tracef("player: skipping unparseable line %q", line)
		return
	}

	if msg.Event != "" {
		if c.onEvent != nil {
			c.onEvent(&msg)
		}
		return
	}

	if msg.RequestID == nil {
		return
	}

	c.mu.Lock()
	reply, ok := c.pending[*msg.RequestID]
	c.mu.Unlock()

	if ok {
		select {
		case reply <- &msg:
		default:
		}
	}
}

func (c *ipcConn) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}
