package model

import "time"

// CourseStatus is the forward-only state of a course line:
// PENDING → FIRED → DONE.
type CourseStatus string

const (
	CoursePending CourseStatus = "PENDING"
	CourseFired   CourseStatus = "FIRED"
	CourseDone    CourseStatus = "DONE"
)

// CourseLine is one course for one table.
//
// Fields:
//
//	ID          – opaque identifier, unique for the process lifetime.
//	Index       – 1-based position; dense across the table's lines.
//	Name        – display name shown on the kitchen display.
//	SeatDishes  – per-seat dish text from the composed menus.
//	Status      – PENDING, FIRED or DONE.
//	FiredAt     – time of the last fire or refire.
//	SeatSubs    – per-seat substitution notes.
//	RefireCount – number of refires (at most one).
//	HasRefired  – set once the course has been refired; never reset.
type CourseLine struct {
	ID          string       `json:"id" yaml:"id"`
	Index       int          `json:"index" yaml:"index"`
	Name        string       `json:"name" yaml:"name"`
	SeatDishes  SeatText     `json:"seatDishes" yaml:"seatDishes"`
	Status      CourseStatus `json:"status" yaml:"status"`
	FiredAt     *time.Time   `json:"firedAt,omitempty" yaml:"firedAt,omitempty"`
	SeatSubs    SeatText     `json:"seatSubs" yaml:"seatSubs"`
	RefireCount int          `json:"refireCount" yaml:"refireCount"`
	HasRefired  bool         `json:"hasRefired" yaml:"hasRefired"`
}

// Clone returns a deep copy of the line.
func (c CourseLine) Clone() CourseLine {
	out := c
	out.SeatDishes = c.SeatDishes.Clone()
	out.SeatSubs = c.SeatSubs.Clone()
	out.FiredAt = cloneTime(c.FiredAt)
	return out
}

// ExtraDish is an off-menu dish added for one seat.
type ExtraDish struct {
	ID    string     `json:"id" yaml:"id"`
	Seat  SeatNumber `json:"seat" yaml:"seat"`
	Name  string     `json:"name" yaml:"name"`
	After int        `json:"after,omitempty" yaml:"after,omitempty"` // course index the dish follows; 0 = unplaced
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
