// Package draft builds the pre-seating preview of a booking's table setup
// from its guest-scoped choices.
package draft

import (
	"fmt"

	"github.com/iliyamo/tasting-service/internal/menu"
	"github.com/iliyamo/tasting-service/internal/model"
)

// Assemble resolves every guest to a seat, picks each seat's menu (the
// guest's override or the booking's base menu), composes the courses and
// lays the guest-authored substitution notes onto the seats those guests
// occupy.  The result is seat-scoped and at approval NONE.
//
// Assemble never touches live table state; callers decide whether the
// result is a preview or becomes a table's setup.
func Assemble(r model.Reservation, lookup menu.Lookup, newID func() string) model.TableSetup {
	seatMenus := model.SeatText{}
	for _, g := range model.GuestLetters(r.Pax) {
		menuID := r.MenuID
		if override := r.DraftGuestMenuID[g]; override != "" {
			menuID = override
		}
		seatMenus.Set(r.SeatOf(g), menuID)
	}

	lines := menu.Compose(seatMenus, r.Pax, lookup, newID)
	byIndex := make(map[int]*model.CourseLine, len(lines))
	for i := range lines {
		byIndex[lines[i].Index] = &lines[i]
	}
	for g, notes := range r.DraftGuestSubs {
		seat := r.SeatOf(g)
		if seat < 1 {
			continue
		}
		for idx, text := range notes {
			if line, ok := byIndex[idx]; ok {
				line.SeatSubs.Set(seat, text)
			}
		}
	}

	return model.TableSetup{
		Approval:    model.ApprovalNone,
		BaseMenuID:  r.MenuID,
		SeatMenus:   seatMenus,
		CourseLines: lines,
	}
}

// PreviewIDs returns a deterministic id generator for a booking's draft,
// so re-assembling an unchanged draft yields identical lines.
func PreviewIDs(reservationID string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("draft-%s-%d", reservationID, n)
	}
}
