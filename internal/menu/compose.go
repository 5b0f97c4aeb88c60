// Package menu turns per-seat menu assignments into the ordered course
// sequence a table is paced through.
package menu

import (
	"fmt"

	"github.com/iliyamo/tasting-service/internal/model"
)

// Lookup resolves a menu id to its courses.
type Lookup interface {
	Menu(id string) (model.Menu, bool)
}

// Catalog is an in-memory Lookup keyed by menu id.
type Catalog map[string]model.Menu

// NewCatalog indexes menus by id.  Later duplicates win.
func NewCatalog(menus []model.Menu) Catalog {
	c := make(Catalog, len(menus))
	for _, m := range menus {
		c[m.ID] = m
	}
	return c
}

// Menu implements Lookup.
func (c Catalog) Menu(id string) (model.Menu, bool) {
	m, ok := c[id]
	return m, ok
}

// Compose builds the course sequence for a table.  Seats are 1..pax plus
// any higher seat named in seatMenus; each seat eats the menu named in
// seatMenus (absent or unknown menus count as empty).  The sequence is as
// long as the longest seat menu and a seat whose menu is shorter gets an
// empty dish for the missing indexes.
//
// Every line starts PENDING with no refires and no substitutions.
func Compose(seatMenus model.SeatText, pax int, lookup Lookup, newID func() string) []model.CourseLine {
	seats := seatSet(seatMenus, pax)

	courses := make(map[model.SeatNumber][]string, len(seats))
	count := 0
	for _, s := range seats {
		var list []string
		if lookup != nil {
			if m, ok := lookup.Menu(seatMenus.Get(s)); ok {
				list = m.Courses
			}
		}
		courses[s] = list
		if len(list) > count {
			count = len(list)
		}
	}

	lines := make([]model.CourseLine, 0, count)
	for i := 0; i < count; i++ {
		dishes := make(model.SeatText, len(seats))
		for _, s := range seats {
			if list := courses[s]; i < len(list) {
				dishes.Set(s, list[i])
			}
		}
		lines = append(lines, model.CourseLine{
			ID:         newID(),
			Index:      i + 1,
			Name:       displayName(dishes, seats, i+1),
			SeatDishes: dishes,
			Status:     model.CoursePending,
			SeatSubs:   model.SeatText{},
		})
	}
	return lines
}

func seatSet(seatMenus model.SeatText, pax int) []model.SeatNumber {
	seats := model.SeatRange(pax)
	for _, s := range seatMenus.Seats() {
		if int(s) > pax {
			seats = append(seats, s)
		}
	}
	return seats
}

// displayName prefers seat 1's dish, then the first seat with any dish,
// then a generic "Course i".
func displayName(dishes model.SeatText, seats []model.SeatNumber, index int) string {
	if d := dishes.Get(1); d != "" {
		return d
	}
	for _, s := range seats {
		if d := dishes.Get(s); d != "" {
			return d
		}
	}
	return fmt.Sprintf("Course %d", index)
}

// Recompose carries pacing progress from prev onto a freshly composed
// sequence.  A new line whose index matches an old line keeps the old
// line's id, status, fire time, refire bookkeeping and substitutions, so
// editing a menu never loses what the kitchen has already done.
func Recompose(prev, next []model.CourseLine) []model.CourseLine {
	byIndex := make(map[int]model.CourseLine, len(prev))
	for _, l := range prev {
		byIndex[l.Index] = l
	}
	out := make([]model.CourseLine, len(next))
	for i, l := range next {
		if old, ok := byIndex[l.Index]; ok {
			l.ID = old.ID
			l.Status = old.Status
			l.FiredAt = old.Clone().FiredAt
			l.RefireCount = old.RefireCount
			l.HasRefired = old.HasRefired
			l.SeatSubs = old.SeatSubs.Clone()
		}
		out[i] = l
	}
	return out
}
