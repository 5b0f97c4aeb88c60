// Package relay is the dumb fan-out point of the replication network.  It
// forwards every frame it receives to every other connected socket and
// remembers the last SNAPSHOT so late joiners start from current state.
// It never inspects event payloads and never decides correctness.
package relay

import (
	"errors"
	"io"
	"sync"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	"golang.org/x/net/websocket"

	"github.com/iliyamo/tasting-service/internal/wire"
)

// peerBuffer bounds the frames queued for one slow socket.  Frames beyond
// it are dropped; the next snapshot repairs the peer.
const peerBuffer = 64

// Hub holds the connected sockets and the cached snapshot.
type Hub struct {
	mu       sync.Mutex
	peers    map[*peer]struct{}
	snapshot []byte
	log      *log.Logger
}

// NewHub returns an empty hub.  A nil logger gets a default one.
func NewHub(logger *log.Logger) *Hub {
	if logger == nil {
		logger = log.New("relay")
	}
	return &Hub{peers: make(map[*peer]struct{}), log: logger}
}

// Handler returns the websocket handler serving one socket per call.
func (h *Hub) Handler() websocket.Handler {
	return websocket.Handler(h.serve)
}

// ServeWS mounts the hub on an echo route.
func (h *Hub) ServeWS(c echo.Context) error {
	h.Handler().ServeHTTP(c.Response(), c.Request())
	return nil
}

// Peers returns the number of connected sockets.
func (h *Hub) Peers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.peers)
}

// Snapshot returns the cached SNAPSHOT frame, or nil before the first one.
func (h *Hub) Snapshot() []byte {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.snapshot
}

func (h *Hub) serve(conn *websocket.Conn) {
	p := newPeer(conn)
	h.join(p)
	go p.writeLoop()
	defer func() {
		h.leave(p)
		p.close()
	}()

	for {
		var raw []byte
		if err := websocket.Message.Receive(conn, &raw); err != nil {
			if !errors.Is(err, io.EOF) {
				h.log.Debugf("socket %s closed: %v", conn.Request().RemoteAddr, err)
			}
			return
		}
		h.route(p, raw)
	}
}

// join registers p and, under the same lock, queues the cached snapshot
// so nothing broadcast afterwards can overtake it.
func (h *Hub) join(p *peer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.peers[p] = struct{}{}
	if h.snapshot != nil {
		p.enqueue(h.snapshot)
	}
	h.log.Debugf("socket joined (%d connected)", len(h.peers))
}

func (h *Hub) leave(p *peer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.peers, p)
	h.log.Debugf("socket left (%d connected)", len(h.peers))
}

func (h *Hub) route(from *peer, raw []byte) {
	msg, err := wire.Parse(raw)
	if err != nil {
		h.log.Debugf("drop frame: %v", err)
		return
	}
	frame := append([]byte(nil), raw...)

	h.mu.Lock()
	defer h.mu.Unlock()
	if msg.Type == wire.TypeSnapshot {
		h.snapshot = frame
	}
	for p := range h.peers {
		if p == from {
			continue
		}
		if !p.enqueue(frame) {
			h.log.Warnf("drop %s frame for slow socket", msg.Type)
		}
	}
}

type peer struct {
	conn *websocket.Conn
	out  chan []byte
	done chan struct{}
	once sync.Once
}

func newPeer(conn *websocket.Conn) *peer {
	return &peer{conn: conn, out: make(chan []byte, peerBuffer), done: make(chan struct{})}
}

func (p *peer) enqueue(frame []byte) bool {
	select {
	case <-p.done:
		return false
	default:
	}
	select {
	case p.out <- frame:
		return true
	default:
		return false
	}
}

func (p *peer) writeLoop() {
	for {
		select {
		case frame := <-p.out:
			if err := websocket.Message.Send(p.conn, string(frame)); err != nil {
				p.close()
				return
			}
		case <-p.done:
			return
		}
	}
}

func (p *peer) close() {
	p.once.Do(func() {
		close(p.done)
		_ = p.conn.Close()
	})
}
