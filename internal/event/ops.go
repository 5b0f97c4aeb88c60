package event

import "github.com/iliyamo/tasting-service/internal/model"

// OpName is the wire tag of a named mutation.
type OpName string

const (
	OpApproveTable      OpName = "APPROVE_TABLE"
	OpSetSeatSub        OpName = "SET_SEAT_SUB"
	OpFireNext          OpName = "FIRE_NEXT"
	OpMarkDone          OpName = "MARK_DONE"
	OpTogglePause       OpName = "TOGGLE_PAUSE"
	OpAssignRes         OpName = "ASSIGN_RES"
	OpSeatAssigned      OpName = "SEAT_ASSIGNED"
	OpClearTable        OpName = "CLEAR_TABLE"
	OpInsertCourse      OpName = "INSERT_COURSE"
	OpMoveCourse        OpName = "MOVE_COURSE"
	OpDeleteCourse      OpName = "DELETE_COURSE"
	OpSetSeatMenu       OpName = "SET_SEAT_MENU"
	OpSetChefNote       OpName = "SET_CHEF_NOTE"
	OpAddExtraDish      OpName = "ADD_EXTRA_DISH"
	OpRemoveExtraDish   OpName = "REMOVE_EXTRA_DISH"
	OpSendForApproval   OpName = "SEND_FOR_APPROVAL"
	OpSetDraftGuestSeat OpName = "SET_DRAFT_GUEST_SEAT"
	OpSetDraftGuestMenu OpName = "SET_DRAFT_GUEST_MENU"
	OpSetDraftGuestSub  OpName = "SET_DRAFT_GUEST_SUB"
	OpClearDraft        OpName = "CLEAR_DRAFT"
)

// Op is one named mutation with its arguments.  The set of ops is closed:
// only types in this package implement it, and each one is registered
// exactly once in the wire decoder table.
type Op interface {
	Name() OpName
	apply(s *State, env Env) bool
}

type ApproveTable struct {
	TableID int `json:"tableId"`
}

type SetSeatSub struct {
	TableID  int              `json:"tableId"`
	CourseID string           `json:"courseId"`
	Seat     model.SeatNumber `json:"seat"`
	Text     string           `json:"text"`
}

type FireNext struct {
	TableID int `json:"tableId"`
}

type MarkDone struct {
	TableID  int    `json:"tableId"`
	CourseID string `json:"courseId"`
}

// TogglePause carries the target pause value rather than flipping it, so
// a retried or duplicated event cannot undo itself.
type TogglePause struct {
	TableID int  `json:"tableId"`
	Paused  bool `json:"paused"`
}

type AssignRes struct {
	ReservationID string `json:"reservationId"`
	TableID       int    `json:"tableId"`
}

type SeatAssigned struct {
	TableID int `json:"tableId"`
}

type ClearTable struct {
	TableID int `json:"tableId"`
}

// InsertCourse places a new course after AfterIndex; 0 inserts at the head.
type InsertCourse struct {
	TableID    int    `json:"tableId"`
	AfterIndex int    `json:"afterIndex"`
	Title      string `json:"name"`
}

type MoveCourse struct {
	TableID  int    `json:"tableId"`
	CourseID string `json:"courseId"`
	ToIndex  int    `json:"toIndex"`
}

type DeleteCourse struct {
	TableID  int    `json:"tableId"`
	CourseID string `json:"courseId"`
}

type SetSeatMenu struct {
	TableID int              `json:"tableId"`
	Seat    model.SeatNumber `json:"seat"`
	MenuID  string           `json:"menuId"`
}

type SetChefNote struct {
	TableID int    `json:"tableId"`
	Note    string `json:"note"`
}

type AddExtraDish struct {
	TableID int              `json:"tableId"`
	Seat    model.SeatNumber `json:"seat"`
	Title   string           `json:"name"`
	After   int              `json:"after,omitempty"`
}

type RemoveExtraDish struct {
	TableID int    `json:"tableId"`
	ExtraID string `json:"extraId"`
}

type SendForApproval struct {
	TableID int `json:"tableId"`
}

type SetDraftGuestSeat struct {
	ReservationID string           `json:"reservationId"`
	Guest         model.GuestID    `json:"guest"`
	Seat          model.SeatNumber `json:"seat"`
}

type SetDraftGuestMenu struct {
	ReservationID string        `json:"reservationId"`
	Guest         model.GuestID `json:"guest"`
	MenuID        string        `json:"menuId"`
}

type SetDraftGuestSub struct {
	ReservationID string        `json:"reservationId"`
	Guest         model.GuestID `json:"guest"`
	CourseIndex   int           `json:"courseIndex"`
	Text          string        `json:"text"`
}

type ClearDraft struct {
	ReservationID string `json:"reservationId"`
}

func (ApproveTable) Name() OpName      { return OpApproveTable }
func (SetSeatSub) Name() OpName        { return OpSetSeatSub }
func (FireNext) Name() OpName          { return OpFireNext }
func (MarkDone) Name() OpName          { return OpMarkDone }
func (TogglePause) Name() OpName       { return OpTogglePause }
func (AssignRes) Name() OpName         { return OpAssignRes }
func (SeatAssigned) Name() OpName      { return OpSeatAssigned }
func (ClearTable) Name() OpName        { return OpClearTable }
func (InsertCourse) Name() OpName      { return OpInsertCourse }
func (MoveCourse) Name() OpName        { return OpMoveCourse }
func (DeleteCourse) Name() OpName      { return OpDeleteCourse }
func (SetSeatMenu) Name() OpName       { return OpSetSeatMenu }
func (SetChefNote) Name() OpName       { return OpSetChefNote }
func (AddExtraDish) Name() OpName      { return OpAddExtraDish }
func (RemoveExtraDish) Name() OpName   { return OpRemoveExtraDish }
func (SendForApproval) Name() OpName   { return OpSendForApproval }
func (SetDraftGuestSeat) Name() OpName { return OpSetDraftGuestSeat }
func (SetDraftGuestMenu) Name() OpName { return OpSetDraftGuestMenu }
func (SetDraftGuestSub) Name() OpName  { return OpSetDraftGuestSub }
func (ClearDraft) Name() OpName        { return OpClearDraft }
