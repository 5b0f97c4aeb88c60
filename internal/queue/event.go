// Package queue defines message payloads exchanged over the message broker.
package queue

// KitchenTicketsQueue is the durable queue kitchen printers consume.
const KitchenTicketsQueue = "kitchen.tickets"

// Ticket kinds.
const (
	KindFire   = "FIRE"
	KindRefire = "REFIRE"
)

// KitchenTicketEvent is published when the authority fires or refires a
// course.  It carries everything a printer needs to produce a ticket
// without asking for the table's state.
type KitchenTicketEvent struct {
	TableID     int            `json:"table_id"`
	TableName   string         `json:"table_name"`
	Pax         int            `json:"pax"`
	CourseID    string         `json:"course_id"`
	CourseIndex int            `json:"course_index"` // 1-based position at fire time
	CourseName  string         `json:"course_name"`
	Kind        string         `json:"kind"`                  // FIRE or REFIRE
	SeatDishes  map[int]string `json:"seat_dishes,omitempty"` // seat number -> dish
	SeatSubs    map[int]string `json:"seat_subs,omitempty"`
	ChefNote    string         `json:"chef_note,omitempty"`
	FiredAt     string         `json:"fired_at"` // RFC 3339
}
