package model

import "sort"

// SeatNumber identifies a physical seat at a table, starting at 1.
type SeatNumber int

// SeatText maps seats to a piece of text (a dish, a menu id, a
// substitution note).  An absent seat reads as the empty string, so
// callers never need to check for presence before a lookup.
type SeatText map[SeatNumber]string

// Get returns the text for seat s or "" when the seat has no entry.
func (m SeatText) Get(s SeatNumber) string {
	if m == nil {
		return ""
	}
	return m[s]
}

// Set stores text for seat s.  Setting the empty string removes the
// entry so that absent and empty stay indistinguishable.
func (m SeatText) Set(s SeatNumber, text string) {
	if text == "" {
		delete(m, s)
		return
	}
	m[s] = text
}

// Clone returns an independent copy.  A nil map clones to an empty one.
func (m SeatText) Clone() SeatText {
	out := make(SeatText, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Seats returns the seats that have an entry, in ascending order.
func (m SeatText) Seats() []SeatNumber {
	seats := make([]SeatNumber, 0, len(m))
	for s := range m {
		seats = append(seats, s)
	}
	sort.Slice(seats, func(i, j int) bool { return seats[i] < seats[j] })
	return seats
}

// SeatRange returns seats 1..pax.
func SeatRange(pax int) []SeatNumber {
	if pax < 0 {
		pax = 0
	}
	seats := make([]SeatNumber, pax)
	for i := range seats {
		seats[i] = SeatNumber(i + 1)
	}
	return seats
}
