package pacing

import (
	"github.com/iliyamo/tasting-service/internal/menu"
	"github.com/iliyamo/tasting-service/internal/model"
)

// Reindex renumbers lines 1..N in slice order.
func Reindex(lines []model.CourseLine) {
	for i := range lines {
		lines[i].Index = i + 1
	}
}

// InsertCourse adds a pending course after the line at afterIndex
// (0 inserts at the head; past the end appends).
func InsertCourse(s *model.TableSetup, afterIndex int, name, id string) bool {
	if s == nil || id == "" {
		return false
	}
	pos := clamp(afterIndex, 0, len(s.CourseLines))
	line := model.CourseLine{
		ID:         id,
		Name:       name,
		SeatDishes: model.SeatText{},
		Status:     model.CoursePending,
		SeatSubs:   model.SeatText{},
	}
	s.CourseLines = append(s.CourseLines, model.CourseLine{})
	copy(s.CourseLines[pos+1:], s.CourseLines[pos:])
	s.CourseLines[pos] = line
	Reindex(s.CourseLines)
	return true
}

// MoveCourse moves a line to toIndex (1-based, clamped to the sequence).
func MoveCourse(s *model.TableSetup, courseID string, toIndex int) bool {
	if s == nil {
		return false
	}
	from := position(s.CourseLines, courseID)
	if from < 0 {
		return false
	}
	to := clamp(toIndex, 1, len(s.CourseLines)) - 1
	if to == from {
		return false
	}
	line := s.CourseLines[from]
	rest := append(s.CourseLines[:from:from], s.CourseLines[from+1:]...)
	out := make([]model.CourseLine, 0, len(s.CourseLines))
	out = append(out, rest[:to]...)
	out = append(out, line)
	out = append(out, rest[to:]...)
	s.CourseLines = out
	Reindex(s.CourseLines)
	return true
}

// DeleteCourse removes a line from the sequence.  The table's last-fire
// bookkeeping is left untouched: a refire aimed at a deleted course finds
// nothing to refire.
func DeleteCourse(s *model.TableSetup, courseID string) bool {
	if s == nil {
		return false
	}
	i := position(s.CourseLines, courseID)
	if i < 0 {
		return false
	}
	s.CourseLines = append(s.CourseLines[:i], s.CourseLines[i+1:]...)
	Reindex(s.CourseLines)
	return true
}

// SetSeatMenu changes the menu one seat eats and recomposes the course
// sequence, keeping pacing progress for every index that still exists.
// The last-fire bookkeeping is left as it is: before the first fire there
// is nothing to reset, and after it a menu change must not reopen the
// cooldown.
func SetSeatMenu(s *model.TableSetup, seat model.SeatNumber, menuID string, pax int, lookup menu.Lookup, newID func() string) bool {
	if s == nil || seat < 1 {
		return false
	}
	if s.SeatMenus == nil {
		s.SeatMenus = model.SeatText{}
	}
	if s.SeatMenus.Get(seat) == menuID {
		return false
	}
	s.SeatMenus.Set(seat, menuID)
	Rebuild(s, pax, lookup, newID)
	return true
}

// Rebuild recomposes the course lines from the setup's seat menus,
// preserving progress per index.
func Rebuild(s *model.TableSetup, pax int, lookup menu.Lookup, newID func() string) {
	next := menu.Compose(s.SeatMenus, pax, lookup, newID)
	s.CourseLines = menu.Recompose(s.CourseLines, next)
}

// SetSeatSub records (or, with empty text, clears) a substitution for one
// seat on one course.
func SetSeatSub(s *model.TableSetup, courseID string, seat model.SeatNumber, text string) bool {
	if s == nil || seat < 1 {
		return false
	}
	line := s.Line(courseID)
	if line == nil || line.SeatSubs.Get(seat) == text {
		return false
	}
	if line.SeatSubs == nil {
		line.SeatSubs = model.SeatText{}
	}
	line.SeatSubs.Set(seat, text)
	return true
}

// SetChefNote replaces the table's free-text note to the kitchen.
func SetChefNote(s *model.TableSetup, note string) bool {
	if s == nil || s.ChefNote == note {
		return false
	}
	s.ChefNote = note
	return true
}

// AddExtraDish appends an off-menu dish.
func AddExtraDish(s *model.TableSetup, dish model.ExtraDish) bool {
	if s == nil || dish.ID == "" || dish.Seat < 1 || dish.Name == "" {
		return false
	}
	s.Extras = append(s.Extras, dish)
	return true
}

// RemoveExtraDish drops the extra dish with the given id.
func RemoveExtraDish(s *model.TableSetup, id string) bool {
	if s == nil {
		return false
	}
	for i, d := range s.Extras {
		if d.ID == id {
			s.Extras = append(s.Extras[:i], s.Extras[i+1:]...)
			return true
		}
	}
	return false
}

func position(lines []model.CourseLine, id string) int {
	for i, l := range lines {
		if l.ID == id {
			return i
		}
	}
	return -1
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
