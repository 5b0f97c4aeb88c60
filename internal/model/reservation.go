package model

import "time"

// GuestID names a guest inside a booking before they are seated.  Guests
// are lettered A, B, C... in booking order.
type GuestID string

// GuestLetters returns the guest ids for a party of pax guests.
func GuestLetters(pax int) []GuestID {
	out := make([]GuestID, 0, pax)
	for i := 0; i < pax; i++ {
		out = append(out, GuestID(indexToLetters(i)))
	}
	return out
}

// DefaultSeat is the seat a guest takes when no explicit seat was
// chosen: guest A sits at seat 1, B at 2 and so on.  Unknown ids map
// to seat 0, which never exists.
func (g GuestID) DefaultSeat() SeatNumber {
	n := 0
	for _, r := range string(g) {
		if r < 'A' || r > 'Z' {
			return 0
		}
		n = n*26 + int(r-'A'+1)
	}
	return SeatNumber(n)
}

// indexToLetters converts a zero-based index to A, B, ... Z, AA, AB...
func indexToLetters(i int) string {
	res := []rune{}
	for {
		res = append(res, rune('A'+i%26))
		i = i/26 - 1
		if i < 0 {
			break
		}
	}
	for j, k := 0, len(res)-1; j < k; j, k = j+1, k-1 {
		res[j], res[k] = res[k], res[j]
	}
	return string(res)
}

// CourseNotes maps a 1-based course index to a free-text note.
type CourseNotes map[int]string

// Reservation is a booking plus its pre-seating draft.  The Draft* fields
// are guest-scoped; they are flattened to seat scope when the booking
// reaches a table and are not mutated through the draft path after the
// table has been sent for approval.
//
// Fields:
//
//	ID                – booking reference.
//	GuestName         – name the booking is under.
//	Pax               – number of guests.
//	At                – booking time.
//	MenuID            – base menu for every guest without an override.
//	TableID           – table the booking is assigned to; 0 when unassigned.
//	ClearedAt         – set when the table was cleared after service.
//	DraftSetup        – preview built by the draft assembler.
//	DraftGuestSeatMap – guest → seat.
//	DraftGuestMenuID  – guest → menu override.
//	DraftGuestSubs    – guest → course index → substitution note.
type Reservation struct {
	ID                string                  `json:"id" yaml:"id"`
	GuestName         string                  `json:"guestName" yaml:"guestName"`
	Pax               int                     `json:"pax" yaml:"pax"`
	At                *time.Time              `json:"at,omitempty" yaml:"at,omitempty"`
	MenuID            string                  `json:"menuId" yaml:"menuId"`
	TableID           int                     `json:"tableId,omitempty" yaml:"tableId,omitempty"`
	ClearedAt         *time.Time              `json:"clearedAt,omitempty" yaml:"clearedAt,omitempty"`
	DraftSetup        *TableSetup             `json:"draftSetup,omitempty" yaml:"draftSetup,omitempty"`
	DraftGuestSeatMap map[GuestID]SeatNumber  `json:"draftGuestSeatMap,omitempty" yaml:"draftGuestSeatMap,omitempty"`
	DraftGuestMenuID  map[GuestID]string      `json:"draftGuestMenuId,omitempty" yaml:"draftGuestMenuId,omitempty"`
	DraftGuestSubs    map[GuestID]CourseNotes `json:"draftGuestSubs,omitempty" yaml:"draftGuestSubs,omitempty"`
}

// SeatOf resolves a guest to a seat: the explicit draft choice when one
// exists, the guest's default seat otherwise.
func (r Reservation) SeatOf(g GuestID) SeatNumber {
	if s, ok := r.DraftGuestSeatMap[g]; ok && s > 0 {
		return s
	}
	return g.DefaultSeat()
}

// Clone returns a deep copy of the reservation.
func (r Reservation) Clone() Reservation {
	out := r
	out.At = cloneTime(r.At)
	out.ClearedAt = cloneTime(r.ClearedAt)
	if r.DraftSetup != nil {
		s := r.DraftSetup.Clone()
		out.DraftSetup = &s
	}
	if r.DraftGuestSeatMap != nil {
		out.DraftGuestSeatMap = make(map[GuestID]SeatNumber, len(r.DraftGuestSeatMap))
		for k, v := range r.DraftGuestSeatMap {
			out.DraftGuestSeatMap[k] = v
		}
	}
	if r.DraftGuestMenuID != nil {
		out.DraftGuestMenuID = make(map[GuestID]string, len(r.DraftGuestMenuID))
		for k, v := range r.DraftGuestMenuID {
			out.DraftGuestMenuID[k] = v
		}
	}
	if r.DraftGuestSubs != nil {
		out.DraftGuestSubs = make(map[GuestID]CourseNotes, len(r.DraftGuestSubs))
		for g, notes := range r.DraftGuestSubs {
			cp := make(CourseNotes, len(notes))
			for k, v := range notes {
				cp[k] = v
			}
			out.DraftGuestSubs[g] = cp
		}
	}
	return out
}
