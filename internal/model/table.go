package model

import "time"

// TableStatus tells whether guests are sitting at a table.
type TableStatus string

const (
	TableEmpty  TableStatus = "EMPTY"
	TableSeated TableStatus = "SEATED"
)

// Approval is the kitchen sign-off state of a table's setup.  It only
// moves forward: NONE → PENDING → APPROVED.
type Approval string

const (
	ApprovalNone     Approval = "NONE"
	ApprovalPending  Approval = "PENDING"
	ApprovalApproved Approval = "APPROVED"
)

// Table is a seating unit on the floor.  Every process holds a replica;
// only the authority mutates it.
type Table struct {
	ID            int         `json:"id" yaml:"id"`
	Name          string      `json:"name" yaml:"name"`
	Pax           int         `json:"pax" yaml:"pax"`
	Status        TableStatus `json:"status" yaml:"status"`
	ReservationID string      `json:"reservationId,omitempty" yaml:"reservationId,omitempty"`
	SeatedAt      *time.Time  `json:"seatedAt,omitempty" yaml:"seatedAt,omitempty"`
	Setup         *TableSetup `json:"setup,omitempty" yaml:"setup,omitempty"`
}

// Clone returns a deep copy of the table.
func (t Table) Clone() Table {
	out := t
	out.SeatedAt = cloneTime(t.SeatedAt)
	if t.Setup != nil {
		s := t.Setup.Clone()
		out.Setup = &s
	}
	return out
}

// TableSetup is the mutable pacing state of one seated table.
//
// PausedAfterLastFire is true only when the current pause began after a
// fire and no refire or new fire has consumed it since.
// LastFireAt and LastFiredCourseID describe the most recent fire or
// refire and gate the cooldown.
type TableSetup struct {
	Approval            Approval     `json:"approval" yaml:"approval"`
	SentAt              *time.Time   `json:"sentAt,omitempty" yaml:"sentAt,omitempty"`
	ApprovedAt          *time.Time   `json:"approvedAt,omitempty" yaml:"approvedAt,omitempty"`
	Paused              bool         `json:"paused" yaml:"paused"`
	PausedAt            *time.Time   `json:"pausedAt,omitempty" yaml:"pausedAt,omitempty"`
	PausedAfterLastFire bool         `json:"pausedAfterLastFire" yaml:"pausedAfterLastFire"`
	LastFireAt          *time.Time   `json:"lastFireAt,omitempty" yaml:"lastFireAt,omitempty"`
	LastFiredCourseID   string       `json:"lastFiredCourseId,omitempty" yaml:"lastFiredCourseId,omitempty"`
	LastDoneAt          *time.Time   `json:"lastDoneAt,omitempty" yaml:"lastDoneAt,omitempty"`
	BaseMenuID          string       `json:"baseMenuId,omitempty" yaml:"baseMenuId,omitempty"`
	SeatMenus           SeatText     `json:"seatMenus" yaml:"seatMenus"`
	CourseLines         []CourseLine `json:"courseLines" yaml:"courseLines"`
	ChefNote            string       `json:"chefNote,omitempty" yaml:"chefNote,omitempty"`
	Extras              []ExtraDish  `json:"extras,omitempty" yaml:"extras,omitempty"`
}

// Clone returns a deep copy of the setup.
func (s TableSetup) Clone() TableSetup {
	out := s
	out.SentAt = cloneTime(s.SentAt)
	out.ApprovedAt = cloneTime(s.ApprovedAt)
	out.PausedAt = cloneTime(s.PausedAt)
	out.LastFireAt = cloneTime(s.LastFireAt)
	out.LastDoneAt = cloneTime(s.LastDoneAt)
	out.SeatMenus = s.SeatMenus.Clone()
	if s.CourseLines != nil {
		out.CourseLines = make([]CourseLine, len(s.CourseLines))
		for i, l := range s.CourseLines {
			out.CourseLines[i] = l.Clone()
		}
	}
	if s.Extras != nil {
		out.Extras = append([]ExtraDish(nil), s.Extras...)
	}
	return out
}

// Line returns a pointer to the course line with the given id, or nil.
func (s *TableSetup) Line(id string) *CourseLine {
	if id == "" {
		return nil
	}
	for i := range s.CourseLines {
		if s.CourseLines[i].ID == id {
			return &s.CourseLines[i]
		}
	}
	return nil
}
