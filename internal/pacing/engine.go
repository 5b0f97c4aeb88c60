// Package pacing implements the per-table course state machine: firing,
// pausing, refiring and marking courses done, plus the structural edits
// (insert, move, delete, menu changes) that keep course indexes dense.
//
// Every function mutates the setup it is given and reports whether
// anything changed.  A precondition that does not hold is never an error:
// the call is a no-op and returns false.
package pacing

import (
	"time"

	"github.com/iliyamo/tasting-service/internal/model"
)

// Cooldown is the minimum interval between two fire or refire actions on
// the same table.
const Cooldown = 60 * time.Second

// FireResult reports what FireOrRefire did.
type FireResult int

const (
	NoOp FireResult = iota
	Fired
	Refired
)

func (r FireResult) String() string {
	switch r {
	case Fired:
		return "FIRE"
	case Refired:
		return "REFIRE"
	default:
		return "NOOP"
	}
}

// FireOrRefire is the single operator action for sending food.  While the
// table is paused it refires the last fired course (once per course, and
// only if the pause began after that fire); otherwise it fires the first
// pending course.  Both paths require an approved setup and share the
// cooldown.
func FireOrRefire(s *model.TableSetup, now time.Time) FireResult {
	if s == nil || s.Approval != model.ApprovalApproved {
		return NoOp
	}
	if InCooldown(s, now) {
		return NoOp
	}
	if s.Paused {
		return refire(s, now)
	}
	return fireNext(s, now)
}

// InCooldown reports whether a fire at now would fall inside the cooldown
// window of the previous fire or refire.
func InCooldown(s *model.TableSetup, now time.Time) bool {
	return s.LastFireAt != nil && now.Sub(*s.LastFireAt) < Cooldown
}

func refire(s *model.TableSetup, now time.Time) FireResult {
	if !s.PausedAfterLastFire {
		return NoOp
	}
	line := s.Line(s.LastFiredCourseID)
	if line == nil || line.Status != model.CourseFired || line.HasRefired {
		return NoOp
	}
	line.FiredAt = stamp(now)
	line.RefireCount++
	line.HasRefired = true
	s.LastFireAt = stamp(now)
	s.PausedAfterLastFire = false
	return Refired
}

func fireNext(s *model.TableSetup, now time.Time) FireResult {
	for i := range s.CourseLines {
		line := &s.CourseLines[i]
		if line.Status != model.CoursePending {
			continue
		}
		line.Status = model.CourseFired
		line.FiredAt = stamp(now)
		s.LastFireAt = stamp(now)
		s.LastFiredCourseID = line.ID
		s.PausedAfterLastFire = false
		return Fired
	}
	return NoOp
}

// Pause sets the pause flag.  Entering a pause grants the one-shot refire
// permission whenever a course has been fired; refire itself checks that
// the course is still FIRED.  Leaving a pause keeps whatever permission is
// left.
func Pause(s *model.TableSetup, value bool, now time.Time) bool {
	if s == nil || s.Paused == value {
		return false
	}
	s.Paused = value
	if value {
		s.PausedAt = stamp(now)
		s.PausedAfterLastFire = s.LastFiredCourseID != ""
	}
	return true
}

// MarkDone moves a FIRED course to DONE.  Pending and already done
// courses are left alone.
func MarkDone(s *model.TableSetup, courseID string, now time.Time) bool {
	if s == nil {
		return false
	}
	line := s.Line(courseID)
	if line == nil || line.Status != model.CourseFired {
		return false
	}
	line.Status = model.CourseDone
	s.LastDoneAt = stamp(now)
	return true
}

// SendForApproval asks the kitchen to sign off on the setup as it stands.
// The live setup is already seat-scoped from assignment, so nothing is
// rebuilt here.  Only a setup still at NONE can be sent.
func SendForApproval(s *model.TableSetup, now time.Time) bool {
	if s == nil || s.Approval != model.ApprovalNone {
		return false
	}
	s.Approval = model.ApprovalPending
	s.SentAt = stamp(now)
	return true
}

// Approve moves a PENDING setup to APPROVED.  Any other state is a no-op.
func Approve(s *model.TableSetup, now time.Time) bool {
	if s == nil || s.Approval != model.ApprovalPending {
		return false
	}
	s.Approval = model.ApprovalApproved
	s.ApprovedAt = stamp(now)
	return true
}

func stamp(t time.Time) *time.Time {
	return &t
}
