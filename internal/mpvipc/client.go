package mpvipc

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"mpvshadow/internal/logging"
	"mpvshadow/internal/services"
)

// DefaultBackoff is the fixed retry delay while the player is not listening.
const DefaultBackoff = 300 * time.Millisecond

// Options configures Dial.
type Options struct {
	Backoff time.Duration
	Logger  *slog.Logger
	// Dialer overrides the Unix socket dial, mainly for tests.
	Dialer func(ctx context.Context, path string) (net.Conn, error)
}

type reply struct {
	data json.RawMessage
	err  error
}

// Client is a connection to one mpv instance.
type Client struct {
	conn   net.Conn
	logger *slog.Logger

	writeMu sync.Mutex
	nextID  atomic.Int64

	mu      sync.Mutex
	pending map[int64]chan reply
	backlog []Event
	closed  bool
	err     error

	notify chan struct{}
	events chan Event
	done   chan struct{}
	stop   chan struct{}
	once   sync.Once
}

// Dial connects to the player's IPC socket, retrying with a fixed backoff
// until the player accepts or ctx is cancelled.
func Dial(ctx context.Context, path string, opts Options) (*Client, error) {
	backoff := opts.Backoff
	if backoff <= 0 {
		backoff = DefaultBackoff
	}
	dial := opts.Dialer
	if dial == nil {
		dial = func(ctx context.Context, path string) (net.Conn, error) {
			var d net.Dialer
			return d.DialContext(ctx, "unix", path)
		}
	}
	logger := logging.NewComponentLogger(opts.Logger, "mpvipc")

	attempts := 0
	for {
		conn, err := dial(ctx, path)
		if err == nil {
			if attempts > 0 {
				logger.Info("connected to player", logging.String("socket", path), logging.Int("attempts", attempts+1))
			}
			return New(conn, opts.Logger), nil
		}
		if attempts == 0 {
			logger.Info("waiting for player socket",
				logging.String("socket", path),
				logging.Duration("backoff", backoff),
				logging.String(logging.FieldEventType, "player_wait"),
			)
		}
		attempts++

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

// New wraps an established connection and starts its reader.
func New(conn net.Conn, logger *slog.Logger) *Client {
	c := &Client{
		conn:    conn,
		logger:  logging.NewComponentLogger(logger, "mpvipc"),
		pending: make(map[int64]chan reply),
		notify:  make(chan struct{}, 1),
		events:  make(chan Event),
		done:    make(chan struct{}),
		stop:    make(chan struct{}),
	}
	go c.readLoop()
	go c.pump()
	return c
}

// Events delivers player events in arrival order. It is closed after the
// connection ends and every queued event has been delivered.
func (c *Client) Events() <-chan Event { return c.events }

// Done is closed when the connection ends.
func (c *Client) Done() <-chan struct{} { return c.done }

// Err reports why the connection ended, or nil while it is live.
func (c *Client) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Close tears down the connection and stops event delivery.
func (c *Client) Close() error {
	c.once.Do(func() { close(c.stop) })
	return c.conn.Close()
}

// Send writes a command without waiting for the player's reply.
func (c *Client) Send(args ...any) error {
	return c.write(request{Command: args})
}

// Request sends a command with a fresh request id and waits for the matching
// reply. Events read in the meantime are queued, never returned here.
func (c *Client) Request(ctx context.Context, args ...any) (json.RawMessage, error) {
	id := c.nextID.Add(1)
	ch := make(chan reply, 1)

	c.mu.Lock()
	if c.closed {
		err := c.err
		c.mu.Unlock()
		return nil, err
	}
	c.pending[id] = ch
	c.mu.Unlock()

	if err := c.write(request{Command: args, RequestID: id}); err != nil {
		c.forget(id)
		return nil, err
	}

	select {
	case r := <-ch:
		return r.data, r.err
	case <-ctx.Done():
		c.forget(id)
		return nil, ctx.Err()
	}
}

func (c *Client) forget(id int64) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

func (c *Client) write(req request) error {
	line, err := json.Marshal(req)
	if err != nil {
		return services.Wrap(services.ErrProtocol, "mpvipc", "encode", fmt.Sprint(req.Command...), err)
	}
	line = append(line, '\n')

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if _, err := c.conn.Write(line); err != nil {
		return services.Wrap(services.ErrConnectionLost, "mpvipc", "write", "", err)
	}
	return nil
}

func (c *Client) readLoop() {
	reader := bufio.NewReader(c.conn)
	for {
		line, err := reader.ReadBytes('\n')
		if len(line) > 0 {
			c.dispatch(line)
		}
		if err != nil {
			c.fail(err)
			return
		}
	}
}

func (c *Client) dispatch(line []byte) {
	var msg inbound
	if err := json.Unmarshal(line, &msg); err != nil {
		return
	}

	if msg.Event != "" {
		ev := Event{Kind: msg.Event, ID: msg.ID, Name: msg.Name, Data: msg.Data, Args: msg.Args}
		c.mu.Lock()
		c.backlog = append(c.backlog, ev)
		c.mu.Unlock()
		c.wake()
		return
	}
	if msg.RequestID == nil {
		return
	}

	c.mu.Lock()
	ch, ok := c.pending[*msg.RequestID]
	delete(c.pending, *msg.RequestID)
	c.mu.Unlock()
	if !ok {
		c.logger.Debug("dropping unmatched reply",
			logging.Int("request_id", int(*msg.RequestID)),
			logging.String("status", msg.Error),
		)
		return
	}

	if msg.Error != "" && msg.Error != replySuccess {
		ch <- reply{err: fmt.Errorf("%w: %s", services.ErrCommandFailed, msg.Error)}
		return
	}
	ch <- reply{data: msg.Data}
}

func (c *Client) fail(cause error) {
	msg := "player closed the connection"
	if !errors.Is(cause, io.EOF) {
		msg = "read failed"
	} else {
		cause = nil
	}
	err := services.Wrap(services.ErrConnectionLost, "mpvipc", "read", msg, cause)

	c.mu.Lock()
	c.closed = true
	c.err = err
	pending := c.pending
	c.pending = make(map[int64]chan reply)
	c.mu.Unlock()

	for _, ch := range pending {
		ch <- reply{err: err}
	}
	close(c.done)
	c.wake()
	_ = c.conn.Close()
}

func (c *Client) wake() {
	select {
	case c.notify <- struct{}{}:
	default:
	}
}

// pump forwards queued events so the reader never blocks on a slow consumer.
func (c *Client) pump() {
	defer close(c.events)
	for {
		c.mu.Lock()
		if len(c.backlog) > 0 {
			ev := c.backlog[0]
			c.backlog[0] = Event{}
			c.backlog = c.backlog[1:]
			c.mu.Unlock()

			select {
			case c.events <- ev:
			case <-c.stop:
				return
			}
			continue
		}
		closed := c.closed
		c.mu.Unlock()
		if closed {
			return
		}

		select {
		case <-c.notify:
		case <-c.stop:
			return
		}
	}
}
