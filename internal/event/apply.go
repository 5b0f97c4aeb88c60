package event

import (
	"time"

	"github.com/iliyamo/tasting-service/internal/draft"
	"github.com/iliyamo/tasting-service/internal/menu"
	"github.com/iliyamo/tasting-service/internal/model"
	"github.com/iliyamo/tasting-service/internal/pacing"
)

// State is everything that replicates: the floor and the bookings.  It is
// also the SNAPSHOT payload.
type State struct {
	Tables       []model.Table       `json:"tables" yaml:"tables"`
	Reservations []model.Reservation `json:"reservations" yaml:"reservations"`
}

// Clone returns a deep copy.
func (s State) Clone() State {
	out := State{
		Tables:       make([]model.Table, len(s.Tables)),
		Reservations: make([]model.Reservation, len(s.Reservations)),
	}
	for i, t := range s.Tables {
		out.Tables[i] = t.Clone()
	}
	for i, r := range s.Reservations {
		out.Reservations[i] = r.Clone()
	}
	return out
}

// Table returns the table with the given id.  The pointer aliases the
// backing array of s.Tables, so it is valid on any copy of s.
func (s State) Table(id int) *model.Table {
	for i := range s.Tables {
		if s.Tables[i].ID == id {
			return &s.Tables[i]
		}
	}
	return nil
}

// Reservation returns the booking with the given id.
func (s State) Reservation(id string) *model.Reservation {
	if id == "" {
		return nil
	}
	for i := range s.Reservations {
		if s.Reservations[i].ID == id {
			return &s.Reservations[i]
		}
	}
	return nil
}

// Env is what an op may read besides the state: the time of application,
// the menu catalog and an id source for new course lines and extras.
type Env struct {
	Now   time.Time
	Menus menu.Lookup
	NewID func() string
}

// Apply runs op against a copy of s.  It returns the new state and true
// when the op changed anything, or s itself and false when a precondition
// did not hold.  s is never modified.
func Apply(s State, op Op, env Env) (State, bool) {
	next := s.Clone()
	if !op.apply(&next, env) {
		return s, false
	}
	return next, true
}

func (s *State) setup(tableID int) *model.TableSetup {
	t := s.Table(tableID)
	if t == nil {
		return nil
	}
	return t.Setup
}

func flatten(r model.Reservation, env Env) *model.TableSetup {
	setup := draft.Assemble(r, env.Menus, env.NewID)
	return &setup
}

func (op ApproveTable) apply(s *State, env Env) bool {
	return pacing.Approve(s.setup(op.TableID), env.Now)
}

func (op SetSeatSub) apply(s *State, _ Env) bool {
	return pacing.SetSeatSub(s.setup(op.TableID), op.CourseID, op.Seat, op.Text)
}

func (op FireNext) apply(s *State, env Env) bool {
	return pacing.FireOrRefire(s.setup(op.TableID), env.Now) != pacing.NoOp
}

func (op MarkDone) apply(s *State, env Env) bool {
	return pacing.MarkDone(s.setup(op.TableID), op.CourseID, env.Now)
}

func (op TogglePause) apply(s *State, env Env) bool {
	return pacing.Pause(s.setup(op.TableID), op.Paused, env.Now)
}

func (op InsertCourse) apply(s *State, env Env) bool {
	return pacing.InsertCourse(s.setup(op.TableID), op.AfterIndex, op.Title, env.NewID())
}

func (op MoveCourse) apply(s *State, _ Env) bool {
	return pacing.MoveCourse(s.setup(op.TableID), op.CourseID, op.ToIndex)
}

func (op DeleteCourse) apply(s *State, _ Env) bool {
	return pacing.DeleteCourse(s.setup(op.TableID), op.CourseID)
}

func (op SetSeatMenu) apply(s *State, env Env) bool {
	t := s.Table(op.TableID)
	if t == nil {
		return false
	}
	return pacing.SetSeatMenu(t.Setup, op.Seat, op.MenuID, t.Pax, env.Menus, env.NewID)
}

func (op SetChefNote) apply(s *State, _ Env) bool {
	return pacing.SetChefNote(s.setup(op.TableID), op.Note)
}

func (op AddExtraDish) apply(s *State, env Env) bool {
	return pacing.AddExtraDish(s.setup(op.TableID), model.ExtraDish{
		ID:    env.NewID(),
		Seat:  op.Seat,
		Name:  op.Title,
		After: op.After,
	})
}

func (op RemoveExtraDish) apply(s *State, _ Env) bool {
	return pacing.RemoveExtraDish(s.setup(op.TableID), op.ExtraID)
}
