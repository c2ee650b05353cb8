package hub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"podctl/pkg/logging"

	"github.com/gorilla/websocket"
	"github.com/hashicorp/go-retryablehttp"
)

const (
	defaultPingInterval     = 15 * time.Second
	defaultServerTimeout    = 30 * time.Second
	defaultHandshakeTimeout = 15 * time.Second
	writeWait               = 10 * time.Second
)

// WebSocketDialer dials a hub endpoint over WebSocket using the JSON hub
// protocol.
type WebSocketDialer struct {
	URL             string
	SkipNegotiation bool

	// HTTPClient performs the negotiate round-trip. Nil uses a default
	// retrying client.
	HTTPClient *retryablehttp.Client
	Header     http.Header

	PingInterval     time.Duration
	ServerTimeout    time.Duration
	HandshakeTimeout time.Duration
}

var _ Dialer = (*WebSocketDialer)(nil)

// Dial negotiates (unless skipped), opens the socket and completes the
// protocol handshake. The returned Conn is already reading.
func (d *WebSocketDialer) Dial(ctx context.Context, deliver func(Message)) (Conn, error) {
	endpoint, token := d.URL, ""
	header := d.Header.Clone()
	if header == nil {
		header = http.Header{}
	}

	if !d.SkipNegotiation {
		client := d.HTTPClient
		if client == nil {
			client = retryablehttp.NewClient()
			client.Logger = logging.NewLeveledLogger("Hub")
		}
		neg, err := negotiate(ctx, client, d.URL)
		if err != nil {
			return nil, err
		}
		endpoint, token = neg.endpoint, neg.token
		if neg.accessToken != "" {
			header.Set("Authorization", "Bearer "+neg.accessToken)
		}
	}

	wsURL, err := websocketURL(endpoint, token)
	if err != nil {
		return nil, err
	}

	handshakeTimeout := orDefault(d.HandshakeTimeout, defaultHandshakeTimeout)
	dialer := websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: handshakeTimeout,
	}
	ws, _, err := dialer.DialContext(ctx, wsURL, header)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", wsURL, err)
	}

	leftover, err := handshake(ws, handshakeTimeout)
	if err != nil {
		_ = ws.Close()
		return nil, err
	}

	c := newWSConn(ws, deliver, orDefault(d.PingInterval, defaultPingInterval), orDefault(d.ServerTimeout, defaultServerTimeout))
	logging.Debug("Hub", "connected to %s", endpoint)
	go c.readLoop(leftover)
	go c.pingLoop()
	return c, nil
}

func orDefault(v, def time.Duration) time.Duration {
	if v <= 0 {
		return def
	}
	return v
}

// handshake sends the protocol selection and waits for the server's answer.
// Records that arrive in the same frame after the answer are returned.
func handshake(ws *websocket.Conn, timeout time.Duration) ([][]byte, error) {
	req, err := encodeRecord(handshakeRequest{Protocol: "json", Version: 1})
	if err != nil {
		return nil, err
	}
	_ = ws.SetWriteDeadline(time.Now().Add(timeout))
	if err := ws.WriteMessage(websocket.TextMessage, req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHandshake, err)
	}

	_ = ws.SetReadDeadline(time.Now().Add(timeout))
	_, data, err := ws.ReadMessage()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHandshake, err)
	}
	records := splitRecords(data)
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: empty response", ErrHandshake)
	}
	var resp handshakeResponse
	if err := json.Unmarshal(records[0], &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHandshake, err)
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("%w: %s", ErrHandshake, resp.Error)
	}
	return records[1:], nil
}

type pendingCall struct {
	target string
	done   chan error
}

type wsConn struct {
	ws            *websocket.Conn
	deliver       func(Message)
	pingInterval  time.Duration
	serverTimeout time.Duration

	writeMu sync.Mutex

	mu      sync.Mutex
	nextID  int64
	pending map[string]pendingCall

	done      chan struct{}
	closeOnce sync.Once
	err       error
}

func newWSConn(ws *websocket.Conn, deliver func(Message), pingInterval, serverTimeout time.Duration) *wsConn {
	return &wsConn{
		ws:            ws,
		deliver:       deliver,
		pingInterval:  pingInterval,
		serverTimeout: serverTimeout,
		pending:       make(map[string]pendingCall),
		done:          make(chan struct{}),
	}
}

func (c *wsConn) Done() <-chan struct{} { return c.done }

func (c *wsConn) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

func (c *wsConn) Invoke(ctx context.Context, target string, args ...any) error {
	if args == nil {
		args = []any{}
	}

	c.mu.Lock()
	c.nextID++
	id := strconv.FormatInt(c.nextID, 10)
	wait := make(chan error, 1)
	c.pending[id] = pendingCall{target: target, done: wait}
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
	}()

	if err := c.writeRecord(invocationRecord{Type: TypeInvocation, InvocationID: id, Target: target, Arguments: args}); err != nil {
		return fmt.Errorf("%w: send %s: %v", ErrTransportDropped, target, err)
	}

	select {
	case err := <-wait:
		return err
	case <-c.done:
		return fmt.Errorf("%w: %s awaiting completion", ErrTransportDropped, target)
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *wsConn) Close() error {
	_ = c.writeRecord(Message{Type: TypeClose})
	c.writeMu.Lock()
	_ = c.ws.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait))
	c.writeMu.Unlock()
	c.shutdown(nil)
	return nil
}

func (c *wsConn) shutdown(cause error) {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.err = cause
		c.mu.Unlock()
		close(c.done)
		_ = c.ws.Close()
	})
}

func (c *wsConn) writeRecord(v any) error {
	data, err := encodeRecord(v)
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	select {
	case <-c.done:
		return ErrTransportDropped
	default:
	}
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return c.ws.WriteMessage(websocket.TextMessage, data)
}

func (c *wsConn) readLoop(leftover [][]byte) {
	for _, rec := range leftover {
		if !c.handleRecord(rec) {
			return
		}
	}
	for {
		_ = c.ws.SetReadDeadline(time.Now().Add(c.serverTimeout))
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			select {
			case <-c.done:
			default:
				logging.Debug("Hub", "read loop ended: %v", err)
			}
			c.shutdown(fmt.Errorf("%w: %v", ErrTransportDropped, err))
			return
		}
		for _, rec := range splitRecords(data) {
			if !c.handleRecord(rec) {
				return
			}
		}
	}
}

// handleRecord processes one record; false stops the read loop.
func (c *wsConn) handleRecord(rec []byte) bool {
	msg, err := decodeMessage(rec)
	if err != nil {
		logging.Warn("Hub", "dropping record: %v", err)
		return true
	}
	switch msg.Type {
	case TypeInvocation:
		c.deliver(msg)
	case TypeCompletion:
		c.complete(msg)
	case TypePing:
	case TypeClose:
		cause := ErrTransportDropped
		if msg.Error != "" {
			cause = fmt.Errorf("%w: server closed connection: %s", ErrTransportDropped, msg.Error)
		}
		c.shutdown(cause)
		return false
	default:
		logging.Debug("Hub", "ignoring message type %d", msg.Type)
	}
	return true
}

func (c *wsConn) complete(msg Message) {
	c.mu.Lock()
	call, ok := c.pending[msg.InvocationID]
	c.mu.Unlock()
	if !ok {
		logging.Debug("Hub", "completion for unknown invocation %q", msg.InvocationID)
		return
	}
	if msg.Error != "" {
		call.done <- &RemoteError{Target: call.target, Message: msg.Error}
		return
	}
	call.done <- nil
}

func (c *wsConn) pingLoop() {
	ticker := time.NewTicker(c.pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			if err := c.writeRecord(Message{Type: TypePing}); err != nil && !errors.Is(err, ErrTransportDropped) {
				c.shutdown(fmt.Errorf("%w: ping: %v", ErrTransportDropped, err))
				return
			}
		}
	}
}
