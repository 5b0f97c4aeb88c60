package event

import (
	"github.com/iliyamo/tasting-service/internal/draft"
	"github.com/iliyamo/tasting-service/internal/model"
	"github.com/iliyamo/tasting-service/internal/pacing"
)

// A booking can move between empty tables, but a table only takes a
// booking while it is empty and free.
func (op AssignRes) apply(s *State, env Env) bool {
	r := s.Reservation(op.ReservationID)
	t := s.Table(op.TableID)
	if r == nil || t == nil || r.ClearedAt != nil {
		return false
	}
	if t.Status != model.TableEmpty || t.ReservationID != "" || r.TableID == t.ID {
		return false
	}
	if r.TableID != 0 {
		old := s.Table(r.TableID)
		if old != nil {
			if old.Status != model.TableEmpty {
				return false
			}
			release(old)
		}
	}
	t.ReservationID = r.ID
	if r.Pax > 0 {
		t.Pax = r.Pax
	}
	t.Setup = flatten(*r, env)
	r.TableID = t.ID
	return true
}

func (op SeatAssigned) apply(s *State, env Env) bool {
	t := s.Table(op.TableID)
	if t == nil || t.ReservationID == "" || t.Status == model.TableSeated {
		return false
	}
	t.Status = model.TableSeated
	now := env.Now
	t.SeatedAt = &now
	if t.Setup == nil {
		if r := s.Reservation(t.ReservationID); r != nil {
			t.Setup = flatten(*r, env)
		}
	}
	return true
}

func (op ClearTable) apply(s *State, env Env) bool {
	t := s.Table(op.TableID)
	if t == nil {
		return false
	}
	if t.Status == model.TableEmpty && t.ReservationID == "" && t.Setup == nil {
		return false
	}
	if r := s.Reservation(t.ReservationID); r != nil {
		r.TableID = 0
		now := env.Now
		r.ClearedAt = &now
	}
	release(t)
	return true
}

func release(t *model.Table) {
	t.Status = model.TableEmpty
	t.ReservationID = ""
	t.SeatedAt = nil
	t.Setup = nil
}

func (op SendForApproval) apply(s *State, env Env) bool {
	return pacing.SendForApproval(s.setup(op.TableID), env.Now)
}

// draftEditable reports whether a booking still accepts guest-scoped
// edits.  Assignment flattens the draft into the table's live setup; from
// then on the table ops own it.
func draftEditable(s *State, r *model.Reservation) bool {
	if r == nil || r.ClearedAt != nil {
		return false
	}
	return r.TableID == 0 || s.Table(r.TableID) == nil
}

func validGuest(r *model.Reservation, g model.GuestID) bool {
	seat := g.DefaultSeat()
	return seat >= 1 && int(seat) <= r.Pax
}

func refreshDraft(r *model.Reservation, env Env) {
	preview := draft.Assemble(*r, env.Menus, draft.PreviewIDs(r.ID))
	r.DraftSetup = &preview
}

func (op SetDraftGuestSeat) apply(s *State, env Env) bool {
	r := s.Reservation(op.ReservationID)
	if !draftEditable(s, r) || !validGuest(r, op.Guest) || op.Seat < 1 {
		return false
	}
	if cur, ok := r.DraftGuestSeatMap[op.Guest]; ok && cur == op.Seat {
		return false
	}
	if r.DraftGuestSeatMap == nil {
		r.DraftGuestSeatMap = map[model.GuestID]model.SeatNumber{}
	}
	r.DraftGuestSeatMap[op.Guest] = op.Seat
	refreshDraft(r, env)
	return true
}

func (op SetDraftGuestMenu) apply(s *State, env Env) bool {
	r := s.Reservation(op.ReservationID)
	if !draftEditable(s, r) || !validGuest(r, op.Guest) {
		return false
	}
	if r.DraftGuestMenuID[op.Guest] == op.MenuID {
		return false
	}
	if op.MenuID == "" {
		delete(r.DraftGuestMenuID, op.Guest)
	} else {
		if r.DraftGuestMenuID == nil {
			r.DraftGuestMenuID = map[model.GuestID]string{}
		}
		r.DraftGuestMenuID[op.Guest] = op.MenuID
	}
	refreshDraft(r, env)
	return true
}

func (op SetDraftGuestSub) apply(s *State, env Env) bool {
	r := s.Reservation(op.ReservationID)
	if !draftEditable(s, r) || !validGuest(r, op.Guest) || op.CourseIndex < 1 {
		return false
	}
	if r.DraftGuestSubs[op.Guest][op.CourseIndex] == op.Text {
		return false
	}
	if r.DraftGuestSubs == nil {
		r.DraftGuestSubs = map[model.GuestID]model.CourseNotes{}
	}
	notes := r.DraftGuestSubs[op.Guest]
	if notes == nil {
		notes = model.CourseNotes{}
		r.DraftGuestSubs[op.Guest] = notes
	}
	if op.Text == "" {
		delete(notes, op.CourseIndex)
	} else {
		notes[op.CourseIndex] = op.Text
	}
	refreshDraft(r, env)
	return true
}

func (op ClearDraft) apply(s *State, _ Env) bool {
	r := s.Reservation(op.ReservationID)
	if !draftEditable(s, r) {
		return false
	}
	if r.DraftSetup == nil && len(r.DraftGuestSeatMap) == 0 && len(r.DraftGuestMenuID) == 0 && len(r.DraftGuestSubs) == 0 {
		return false
	}
	r.DraftSetup = nil
	r.DraftGuestSeatMap = nil
	r.DraftGuestMenuID = nil
	r.DraftGuestSubs = nil
	return true
}
