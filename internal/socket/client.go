// Package socket is a reconnecting message-socket client.  It keeps one
// websocket open to a relay, retrying forever after a fixed delay, and
// hands every well-formed frame it receives to a callback.
//
// Sends are fire-and-forget: a frame sent while disconnected is dropped,
// never queued.
package socket

import (
	"context"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/facebookgo/clock"
	"github.com/labstack/gommon/log"
	"golang.org/x/net/websocket"

	"github.com/iliyamo/tasting-service/internal/wire"
)

// Status is the connection state shown to operators.
type Status string

const (
	Disconnected Status = "DISCONNECTED"
	Connecting   Status = "CONNECTING"
	Connected    Status = "CONNECTED"
)

// DefaultRetryDelay is used when Options.RetryDelay is zero.
const DefaultRetryDelay = 2 * time.Second

// Options configures a Client.
type Options struct {
	URL        string
	Origin     string
	RetryDelay time.Duration
	Clock      clock.Clock
	Logger     *log.Logger

	// OnMessage receives every parsed frame, on the read goroutine.
	OnMessage func(wire.Message)
	// OnConnect runs after each successful (re)connect.
	OnConnect func()
	// OnStatus observes status transitions.
	OnStatus func(Status)
}

// Client is a reconnecting socket.
type Client struct {
	opts  Options
	retry *backoff.ConstantBackOff
	log   *log.Logger

	mu     sync.Mutex
	status Status
	conn   *websocket.Conn

	sendMu sync.Mutex
}

// NewClient prepares a client; call Run to connect.
func NewClient(opts Options) *Client {
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = DefaultRetryDelay
	}
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	if opts.Origin == "" {
		opts.Origin = "http://localhost/"
	}
	if opts.Logger == nil {
		opts.Logger = log.New("socket")
	}
	return &Client{
		opts:   opts,
		retry:  backoff.NewConstantBackOff(opts.RetryDelay),
		log:    opts.Logger,
		status: Disconnected,
	}
}

// Status returns the current connection state.
func (c *Client) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Run connects and keeps reconnecting until ctx is cancelled.
func (c *Client) Run(ctx context.Context) {
	defer c.setStatus(Disconnected)
	for ctx.Err() == nil {
		c.setStatus(Connecting)
		conn, err := c.dial(ctx)
		if err != nil {
			c.setStatus(Disconnected)
			c.log.Debugf("dial %s failed: %v", c.opts.URL, err)
			if !c.wait(ctx) {
				return
			}
			continue
		}

		c.attach(conn)
		c.setStatus(Connected)
		c.log.Infof("connected to %s", c.opts.URL)
		if c.opts.OnConnect != nil {
			c.opts.OnConnect()
		}
		c.readLoop(ctx, conn)
		c.detach(conn)
		c.setStatus(Disconnected)
		c.log.Warnf("connection to %s lost; retrying in %s", c.opts.URL, c.opts.RetryDelay)
		if !c.wait(ctx) {
			return
		}
	}
}

// Send writes one frame.  It returns false when the frame was dropped
// because the socket is down or the write failed.
func (c *Client) Send(msg wire.Message) bool {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		c.log.Debugf("drop %s frame: not connected", msg.Type)
		return false
	}
	b, err := msg.Bytes()
	if err != nil {
		c.log.Errorf("encode %s frame: %v", msg.Type, err)
		return false
	}

	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if err := websocket.Message.Send(conn, string(b)); err != nil {
		c.log.Warnf("send %s frame: %v", msg.Type, err)
		_ = conn.Close()
		return false
	}
	return true
}

func (c *Client) dial(ctx context.Context) (*websocket.Conn, error) {
	cfg, err := websocket.NewConfig(c.opts.URL, c.opts.Origin)
	if err != nil {
		return nil, err
	}
	return cfg.DialContext(ctx)
}

func (c *Client) readLoop(ctx context.Context, conn *websocket.Conn) {
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-stop:
		}
	}()

	for {
		var raw []byte
		if err := websocket.Message.Receive(conn, &raw); err != nil {
			return
		}
		msg, err := wire.Parse(raw)
		if err != nil {
			c.log.Debugf("drop frame: %v", err)
			continue
		}
		if c.opts.OnMessage != nil {
			c.opts.OnMessage(msg)
		}
	}
}

func (c *Client) wait(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return false
	case <-c.opts.Clock.After(c.retry.NextBackOff()):
		return true
	}
}

func (c *Client) attach(conn *websocket.Conn) {
	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()
}

func (c *Client) detach(conn *websocket.Conn) {
	c.mu.Lock()
	if c.conn == conn {
		c.conn = nil
	}
	c.mu.Unlock()
	_ = conn.Close()
}

func (c *Client) setStatus(s Status) {
	c.mu.Lock()
	changed := c.status != s
	c.status = s
	c.mu.Unlock()
	if changed && c.opts.OnStatus != nil {
		c.opts.OnStatus(s)
	}
}
