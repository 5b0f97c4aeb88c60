// Package replication keeps every device's state in step with one
// authority.  A HOST applies all mutations, local or forwarded, and
// broadcasts coalesced snapshots; a CLIENT forwards its mutations to the
// HOST as events and only ever changes state by adopting a snapshot.
//
// There is no sequence numbering: two HOSTs on one relay, or a CLIENT
// event that the HOST has already superseded, are not detected.
package replication

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/facebookgo/clock"
	"github.com/labstack/gommon/log"

	"github.com/iliyamo/tasting-service/internal/event"
	"github.com/iliyamo/tasting-service/internal/socket"
	"github.com/iliyamo/tasting-service/internal/wire"
)

// Role is a process's part in replication.
type Role string

const (
	RoleOff    Role = "OFF"
	RoleHost   Role = "HOST"
	RoleClient Role = "CLIENT"
)

// ParseRole accepts a role name in any case.
func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToUpper(strings.TrimSpace(s))); r {
	case RoleOff, RoleHost, RoleClient:
		return r, nil
	case "":
		return RoleOff, nil
	default:
		return "", fmt.Errorf("unknown replication role %q", s)
	}
}

// DefaultDebounce is the snapshot coalescing window.
const DefaultDebounce = 150 * time.Millisecond

// SnapshotSaver persists the latest snapshot payload.
type SnapshotSaver interface {
	Save(ctx context.Context, payload []byte) error
}

// Options configures a Node.
type Options struct {
	Role       Role
	RelayURL   string
	Origin     string
	RetryDelay time.Duration
	Debounce   time.Duration
	Clock      clock.Clock
	Logger     *log.Logger
	// Snapshots, when set, receives every snapshot a HOST broadcasts.
	Snapshots SnapshotSaver
}

// Outcome reports what Dispatch did with an op.
type Outcome struct {
	Applied   bool `json:"applied"`
	Forwarded bool `json:"forwarded"`
}

// Node binds a Store to the replication socket according to its role.
type Node struct {
	opts     Options
	store    *event.Store
	sock     *socket.Client
	debounce *Debouncer
	log      *log.Logger
	unsub    func()
}

// NewNode wires store to a socket for opts.Role.  Nothing connects until
// Start.
func NewNode(store *event.Store, opts Options) *Node {
	if opts.Role == "" {
		opts.Role = RoleOff
	}
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Logger == nil {
		opts.Logger = log.New("replication")
	}
	n := &Node{opts: opts, store: store, log: opts.Logger}
	if opts.Role == RoleOff {
		return n
	}
	n.sock = socket.NewClient(socket.Options{
		URL:        opts.RelayURL,
		Origin:     opts.Origin,
		RetryDelay: opts.RetryDelay,
		Clock:      opts.Clock,
		Logger:     opts.Logger,
		OnMessage:  n.handle,
		OnConnect:  n.onConnect,
	})
	if opts.Role == RoleHost {
		n.debounce = NewDebouncer(opts.Clock, opts.Debounce, n.broadcast)
	}
	return n
}

// Role returns the node's role.
func (n *Node) Role() Role { return n.opts.Role }

// Status returns the socket state; an OFF node is always DISCONNECTED.
func (n *Node) Status() socket.Status {
	if n.sock == nil {
		return socket.Disconnected
	}
	return n.sock.Status()
}

// Start connects the socket and, on a HOST, begins broadcasting after
// every change.  It returns immediately; ctx stops everything.
func (n *Node) Start(ctx context.Context) {
	if n.sock == nil {
		return
	}
	if n.debounce != nil {
		n.unsub = n.store.Subscribe(func(event.Change) { n.debounce.Trigger() })
		go func() {
			<-ctx.Done()
			n.unsub()
			n.debounce.Stop()
		}()
	}
	go n.sock.Run(ctx)
}

// Dispatch routes one mutation.  HOST and OFF nodes apply it at once; a
// CLIENT forwards it to the HOST and changes nothing locally, leaving the
// result to arrive in a later snapshot.
func (n *Node) Dispatch(op event.Op) Outcome {
	if n.opts.Role != RoleClient {
		return Outcome{Applied: n.store.Apply(op)}
	}
	msg, err := wire.NewEvent(op)
	if err != nil {
		n.log.Errorf("encode %s: %v", op.Name(), err)
		return Outcome{}
	}
	return Outcome{Forwarded: n.sock.Send(msg)}
}

func (n *Node) handle(msg wire.Message) {
	switch n.opts.Role {
	case RoleHost:
		if msg.Type != wire.TypeEvent {
			n.log.Warnf("ignoring %s from another process; this node is the authority", msg.Type)
			return
		}
		op, err := msg.Op()
		if err != nil {
			n.log.Debugf("drop event: %v", err)
			return
		}
		if !n.store.Apply(op) {
			n.log.Debugf("%s rejected", op.Name())
		}
	case RoleClient:
		if msg.Type != wire.TypeSnapshot {
			return
		}
		st, err := msg.State()
		if err != nil {
			n.log.Debugf("drop snapshot: %v", err)
			return
		}
		n.store.Replace(st)
	}
}

func (n *Node) onConnect() {
	if n.opts.Role == RoleHost {
		n.broadcast()
	}
}

// broadcast sends the current state as one SNAPSHOT frame and hands the
// same payload to the snapshot store.
func (n *Node) broadcast() {
	msg, err := wire.NewSnapshot(n.store.State())
	if err != nil {
		n.log.Errorf("build snapshot: %v", err)
		return
	}
	if !n.sock.Send(msg) {
		n.log.Debugf("snapshot not sent: relay unreachable")
	}
	if n.opts.Snapshots != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := n.opts.Snapshots.Save(ctx, msg.Payload); err != nil {
			n.log.Warnf("persist snapshot: %v", err)
		}
	}
}
