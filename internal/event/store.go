// Package event is the single mutation path for replicated state.  Every
// change to tables and bookings is a named Op applied through a Store, so
// the same operation behaves identically whether it was issued locally or
// arrived from another device.
package event

import (
	"sync"

	"github.com/facebookgo/clock"
	"github.com/google/uuid"

	"github.com/iliyamo/tasting-service/internal/draft"
	"github.com/iliyamo/tasting-service/internal/menu"
	"github.com/iliyamo/tasting-service/internal/model"
)

// Change describes one state transition.  Op is nil when the whole state
// was replaced by a snapshot.  Before and After are shared with the store
// and must be treated as read-only.
type Change struct {
	Op     Op
	Before State
	After  State
}

// Store owns the process's replicated state.  Mutations are serialized:
// each Apply or Replace runs to completion before the next starts, so
// per-table invariants are checked without any finer locking.  Every
// mutation swaps in a fresh copy; published states are never modified.
type Store struct {
	mu    sync.Mutex
	state State
	clk   clock.Clock
	menus menu.Lookup
	newID func() string

	subMu  sync.Mutex
	subs   map[int]func(Change)
	nextID int
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithClock sets the clock used to stamp mutations.
func WithClock(c clock.Clock) StoreOption {
	return func(s *Store) { s.clk = c }
}

// WithIDs sets the id generator for new course lines and extra dishes.
func WithIDs(f func() string) StoreOption {
	return func(s *Store) { s.newID = f }
}

// NewStore creates a store holding initial.
func NewStore(initial State, menus menu.Lookup, opts ...StoreOption) *Store {
	s := &Store{
		state: initial.Clone(),
		clk:   clock.New(),
		menus: menus,
		newID: uuid.NewString,
		subs:  make(map[int]func(Change)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns a copy of the current state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Menus returns the catalog ops compose against.
func (s *Store) Menus() menu.Lookup { return s.menus }

// Apply runs op and reports whether it changed anything.  Rejected ops
// leave the state untouched and notify nobody.
func (s *Store) Apply(op Op) bool {
	s.mu.Lock()
	before := s.state
	env := Env{Now: s.clk.Now(), Menus: s.menus, NewID: s.newID}
	after, ok := Apply(before, op, env)
	if ok {
		s.state = after
	}
	s.mu.Unlock()

	if ok {
		s.notify(Change{Op: op, Before: before, After: after})
	}
	return ok
}

// Replace swaps in a whole new state, as received in a snapshot.
func (s *Store) Replace(next State) {
	next = next.Clone()
	s.mu.Lock()
	before := s.state
	s.state = next
	s.mu.Unlock()
	s.notify(Change{Before: before, After: next})
}

// Subscribe registers fn for every change and returns a function that
// removes it.  fn runs on the mutating goroutine after the store lock is
// released.
func (s *Store) Subscribe(fn func(Change)) func() {
	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.subMu.Unlock()
	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *Store) notify(c Change) {
	s.subMu.Lock()
	fns := make([]func(Change), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()
	for _, fn := range fns {
		fn(c)
	}
}

// Draft returns the assembled preview for a booking without changing any
// state.  The second result is false when the booking does not exist.
func (s *Store) Draft(reservationID string) (model.TableSetup, bool) {
	st := s.State()
	r := st.Reservation(reservationID)
	if r == nil {
		return model.TableSetup{}, false
	}
	return draft.Assemble(*r, s.menus, draft.PreviewIDs(r.ID)), true
}
