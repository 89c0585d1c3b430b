package iterm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"itermlink/internal/logging"
	"itermlink/internal/protocol"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// Subprotocol is the websocket subprotocol spoken by the iTerm2 API.
	Subprotocol = "api.iterm2.com"

	// LegacyURL is the TCP endpoint used by iTerm2 before the unix socket.
	LegacyURL = "ws://localhost:1912/"

	// iTerm2 gates API features on this header and only knows the
	// python client's version scheme.
	libraryVersion = "python 2.7"

	defaultHandshakeTimeout = 10 * time.Second
)

// DefaultSocketPath returns the unix socket iTerm2 listens on.
func DefaultSocketPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, "Library", "Application Support", "iTerm2", "private", "socket")
}

// Options configure how a Connection reaches iTerm2.
type Options struct {
	// URL, when set, is dialed directly and SocketPath is ignored.
	URL string
	// SocketPath is the unix socket. Empty means DefaultSocketPath.
	SocketPath string
	// AppName is shown by iTerm2 when it asks to allow the connection.
	AppName string
	// Cookie and Key authenticate the connection. When both are empty
	// they come from ITERM2_COOKIE/ITERM2_KEY, or from RequestCookie.
	Cookie string
	Key    string
	// RequestCookie obtains a cookie and key from a running iTerm2.
	// Nil means Controller.RequestCookieAndKey. It is not used with URL.
	RequestCookie func(ctx context.Context, appName string) (cookie, key string, err error)
	// HandshakeTimeout bounds the websocket handshake.
	HandshakeTimeout time.Duration
}

// Connection is a websocket connection to the iTerm2 API. Calls may be
// issued from multiple goroutines.
type Connection struct {
	ID  string
	ws  *websocket.Conn
	log *slog.Logger

	writeMu sync.Mutex

	mu      sync.Mutex
	pending map[int64]chan *protocol.ServerMessage
	err     error

	nextID    atomic.Int64
	done      chan struct{}
	closeOnce sync.Once
}

// Dial connects to iTerm2.
func Dial(ctx context.Context, opts Options) (*Connection, error) {
	header, err := authHeader(ctx, opts)
	if err != nil {
		return nil, err
	}

	timeout := opts.HandshakeTimeout
	if timeout <= 0 {
		timeout = defaultHandshakeTimeout
	}
	dialer := &websocket.Dialer{
		HandshakeTimeout: timeout,
		Subprotocols:     []string{Subprotocol},
	}

	url := opts.URL
	if url == "" {
		socket := opts.SocketPath
		if socket == "" {
			socket = DefaultSocketPath()
		}
		if _, statErr := os.Stat(socket); statErr == nil {
			url = "ws://localhost/"
			dialer.NetDialContext = func(ctx context.Context, _, _ string) (net.Conn, error) {
				var d net.Dialer
				return d.DialContext(ctx, "unix", socket)
			}
		} else {
			url = LegacyURL
		}
	}

	ws, resp, err := dialer.DialContext(ctx, url, header)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusUnauthorized {
			return nil, fmt.Errorf("iterm: connection refused by iTerm2 (check that the Python API is enabled): %w", err)
		}
		return nil, fmt.Errorf("iterm: dial %s: %w", url, err)
	}

	c := newConnection(ws)
	c.log.Debug("Connected to iTerm2", "url", url)
	go c.readLoop()
	return c, nil
}

func newConnection(ws *websocket.Conn) *Connection {
	id := uuid.New().String()
	return &Connection{
		ID:      id,
		ws:      ws,
		log:     logging.With("conn", id),
		pending: make(map[int64]chan *protocol.ServerMessage),
		done:    make(chan struct{}),
	}
}

func authHeader(ctx context.Context, opts Options) (http.Header, error) {
	cookie, key := opts.Cookie, opts.Key
	if cookie == "" && key == "" {
		cookie, key = os.Getenv("ITERM2_COOKIE"), os.Getenv("ITERM2_KEY")
	}
	if cookie == "" && opts.URL == "" {
		request := opts.RequestCookie
		if request == nil {
			request = NewController().RequestCookieAndKey
		}
		var err error
		cookie, key, err = request(ctx, opts.AppName)
		if err != nil {
			return nil, fmt.Errorf("iterm: request cookie: %w", err)
		}
	}

	header := http.Header{}
	header.Set("Origin", "ws://localhost/")
	header.Set("x-iterm2-library-version", libraryVersion)
	if opts.AppName != "" {
		header.Set("x-iterm2-advisory-name", opts.AppName)
	}
	if cookie != "" {
		header.Set("x-iterm2-cookie", cookie)
	}
	if key != "" {
		header.Set("x-iterm2-key", key)
	}
	return header, nil
}

// Call sends req and waits for the response with the same ID. The
// request's ID is overwritten.
func (c *Connection) Call(ctx context.Context, req *protocol.ClientMessage) (*protocol.ServerMessage, error) {
	req.ID = c.nextID.Add(1)
	data, err := req.Marshal()
	if err != nil {
		return nil, err
	}

	ch := make(chan *protocol.ServerMessage, 1)
	c.mu.Lock()
	if c.err != nil {
		err := c.err
		c.mu.Unlock()
		return nil, err
	}
	c.pending[req.ID] = ch
	c.mu.Unlock()
	defer c.forget(req.ID)

	if err := c.write(ctx, data); err != nil {
		return nil, err
	}
	c.log.Debug("Sent request", "id", req.ID, "kind", req.Kind(), "bytes", len(data))

	select {
	case resp := <-ch:
		if resp.HasError {
			return nil, &APIError{Op: req.Kind(), Reason: resp.Error}
		}
		return resp, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-c.done:
		return nil, c.closeErr()
	}
}

func (c *Connection) write(ctx context.Context, data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Time{}
	}
	c.ws.SetWriteDeadline(deadline)
	if err := c.ws.WriteMessage(websocket.BinaryMessage, data); err != nil {
		return fmt.Errorf("iterm: write: %w", err)
	}
	return nil
}

func (c *Connection) forget(id int64) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

func (c *Connection) readLoop() {
	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.log.Warn("iTerm2 connection lost", "error", err)
			}
			c.shutdown(ErrConnectionClosed)
			return
		}

		var msg protocol.ServerMessage
		if err := msg.Unmarshal(data); err != nil {
			c.log.Warn("Dropping undecodable message", "error", err, "bytes", len(data))
			continue
		}
		if msg.IsNotification() {
			c.log.Debug("Ignoring notification", "bytes", len(msg.Notification))
			continue
		}

		c.mu.Lock()
		ch, ok := c.pending[msg.ID]
		c.mu.Unlock()
		if !ok {
			c.log.Debug("Dropping response with no caller", "id", msg.ID)
			continue
		}
		select {
		case ch <- &msg:
		default:
			c.log.Debug("Dropping duplicate response", "id", msg.ID)
		}
	}
}

func (c *Connection) shutdown(err error) {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.err = err
		c.mu.Unlock()
		close(c.done)
	})
}

func (c *Connection) closeErr() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err == nil {
		return ErrConnectionClosed
	}
	return c.err
}

// Done is closed once the connection is no longer usable.
func (c *Connection) Done() <-chan struct{} {
	return c.done
}

// Close sends a close frame and tears down the connection.
func (c *Connection) Close() error {
	c.writeMu.Lock()
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	werr := c.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	c.writeMu.Unlock()

	c.shutdown(ErrConnectionClosed)
	err := c.ws.Close()
	if werr != nil && !errors.Is(werr, websocket.ErrCloseSent) && !errors.Is(werr, net.ErrClosed) {
		c.log.Debug("Close frame not sent", "error", werr)
	}
	c.log.Debug("Connection closed")
	return err
}

// Run dials iTerm2, runs fn and closes the connection, whatever fn
// returns. It is the bridge for callers that want one blocking call.
func Run(ctx context.Context, opts Options, fn func(ctx context.Context, conn *Connection) error) error {
	conn, err := Dial(ctx, opts)
	if err != nil {
		return err
	}
	defer conn.Close()
	return fn(ctx, conn)
}
