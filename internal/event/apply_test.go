package event

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/tasting-service/internal/menu"
	"github.com/iliyamo/tasting-service/internal/model"
	"github.com/iliyamo/tasting-service/internal/pacing"
)

var (
	t0      = time.Date(2026, 6, 12, 19, 0, 0, 0, time.UTC)
	catalog = menu.NewCatalog([]model.Menu{
		{ID: "m_a", Courses: []string{"Oyster", "Bread", "Lamb"}},
		{ID: "veg", Courses: []string{"Radish", "Bread", "Beet", "Sorbet"}},
	})
)

// idSeq is shared by every env so ids stay unique across Apply calls.
var idSeq int

func nextID() string {
	idSeq++
	return fmt.Sprintf("id%d", idSeq)
}

func testEnv(now time.Time) Env {
	return Env{Now: now, Menus: catalog, NewID: nextID}
}

func floor() State {
	return State{
		Tables: []model.Table{
			{ID: 1, Name: "T1", Status: model.TableEmpty},
			{ID: 2, Name: "T2", Status: model.TableEmpty},
		},
		Reservations: []model.Reservation{
			{ID: "r1", GuestName: "Okafor", Pax: 2, MenuID: "m_a"},
		},
	}
}

// apply runs op and fails the test if it was rejected.
func apply(t *testing.T, s State, op Op, now time.Time) State {
	t.Helper()
	next, ok := Apply(s, op, testEnv(now))
	require.True(t, ok, "%s rejected", op.Name())
	return next
}

func rejected(t *testing.T, s State, op Op, now time.Time) {
	t.Helper()
	next, ok := Apply(s, op, testEnv(now))
	assert.False(t, ok, "%s should be a no-op", op.Name())
	assert.Equal(t, s, next)
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	s := floor()
	snapshot := s.Clone()
	next := apply(t, s, AssignRes{ReservationID: "r1", TableID: 1}, t0)

	assert.Equal(t, snapshot, s)
	assert.Equal(t, "r1", next.Table(1).ReservationID)
}

func TestServiceLifecycle(t *testing.T) {
	s := apply(t, floor(), AssignRes{ReservationID: "r1", TableID: 1}, t0)
	tbl := s.Table(1)
	require.NotNil(t, tbl.Setup)
	assert.Equal(t, 2, tbl.Pax)
	assert.Equal(t, model.ApprovalNone, tbl.Setup.Approval)
	assert.Len(t, tbl.Setup.CourseLines, 3)
	assert.Equal(t, 1, s.Reservation("r1").TableID)

	s = apply(t, s, SeatAssigned{TableID: 1}, t0)
	assert.Equal(t, model.TableSeated, s.Table(1).Status)
	assert.Equal(t, t0, *s.Table(1).SeatedAt)
	rejected(t, s, SeatAssigned{TableID: 1}, t0)

	rejected(t, s, FireNext{TableID: 1}, t0)
	rejected(t, s, ApproveTable{TableID: 1}, t0)

	s = apply(t, s, SendForApproval{TableID: 1}, t0)
	assert.Equal(t, model.ApprovalPending, s.Table(1).Setup.Approval)
	s = apply(t, s, ApproveTable{TableID: 1}, t0)
	assert.Equal(t, model.ApprovalApproved, s.Table(1).Setup.Approval)

	s = apply(t, s, FireNext{TableID: 1}, t0)
	first := s.Table(1).Setup.CourseLines[0]
	assert.Equal(t, model.CourseFired, first.Status)
	rejected(t, s, FireNext{TableID: 1}, t0.Add(30*time.Second))

	s = apply(t, s, MarkDone{TableID: 1, CourseID: first.ID}, t0.Add(time.Minute))
	assert.Equal(t, model.CourseDone, s.Table(1).Setup.CourseLines[0].Status)

	s = apply(t, s, ClearTable{TableID: 1}, t0.Add(2*time.Hour))
	assert.Equal(t, model.TableEmpty, s.Table(1).Status)
	assert.Nil(t, s.Table(1).Setup)
	assert.Empty(t, s.Table(1).ReservationID)
	r := s.Reservation("r1")
	assert.Zero(t, r.TableID)
	require.NotNil(t, r.ClearedAt)

	rejected(t, s, ClearTable{TableID: 1}, t0)
	rejected(t, s, AssignRes{ReservationID: "r1", TableID: 2}, t0)
}

func TestAssignResRules(t *testing.T) {
	s := apply(t, floor(), AssignRes{ReservationID: "r1", TableID: 1}, t0)

	rejected(t, s, AssignRes{ReservationID: "r1", TableID: 1}, t0)
	rejected(t, s, AssignRes{ReservationID: "missing", TableID: 2}, t0)
	rejected(t, s, AssignRes{ReservationID: "r1", TableID: 9}, t0)

	moved := apply(t, s, AssignRes{ReservationID: "r1", TableID: 2}, t0)
	assert.Empty(t, moved.Table(1).ReservationID, "the old table is released")
	assert.Nil(t, moved.Table(1).Setup)
	assert.Equal(t, "r1", moved.Table(2).ReservationID)
	assert.Equal(t, 2, moved.Reservation("r1").TableID)

	seated := apply(t, s, SeatAssigned{TableID: 1}, t0)
	rejected(t, seated, AssignRes{ReservationID: "r1", TableID: 2}, t0)
}

func TestDraftEditsFlattenAtAssignment(t *testing.T) {
	s := apply(t, floor(), SetDraftGuestMenu{ReservationID: "r1", Guest: "B", MenuID: "veg"}, t0)
	r := s.Reservation("r1")
	require.NotNil(t, r.DraftSetup)
	assert.Len(t, r.DraftSetup.CourseLines, 4)
	assert.Equal(t, "draft-r1-1", r.DraftSetup.CourseLines[0].ID)

	s = apply(t, s, SetDraftGuestSeat{ReservationID: "r1", Guest: "B", Seat: 1}, t0)
	s = apply(t, s, SetDraftGuestSeat{ReservationID: "r1", Guest: "A", Seat: 2}, t0)
	s = apply(t, s, SetDraftGuestSub{ReservationID: "r1", Guest: "A", CourseIndex: 2, Text: "no gluten"}, t0)
	rejected(t, s, SetDraftGuestSub{ReservationID: "r1", Guest: "A", CourseIndex: 2, Text: "no gluten"}, t0)
	rejected(t, s, SetDraftGuestMenu{ReservationID: "r1", Guest: "C", MenuID: "veg"}, t0)

	s = apply(t, s, AssignRes{ReservationID: "r1", TableID: 1}, t0)
	setup := s.Table(1).Setup
	assert.Equal(t, "veg", setup.SeatMenus.Get(1))
	assert.Equal(t, "m_a", setup.SeatMenus.Get(2))
	assert.Equal(t, "Radish", setup.CourseLines[0].Name)
	assert.Equal(t, "no gluten", setup.CourseLines[1].SeatSubs.Get(2))

	// Assignment hands the setup to the table ops; the draft is closed.
	rejected(t, s, SetDraftGuestSub{ReservationID: "r1", Guest: "B", CourseIndex: 4, Text: "no sorbet"}, t0)
	rejected(t, s, SetDraftGuestMenu{ReservationID: "r1", Guest: "A", MenuID: "veg"}, t0)
	rejected(t, s, ClearDraft{ReservationID: "r1"}, t0)

	s = apply(t, s, SendForApproval{TableID: 1}, t0)
	assert.Equal(t, setup.CourseLines, s.Table(1).Setup.CourseLines)
}

func TestSendForApprovalKeepsLiveEdits(t *testing.T) {
	s := apply(t, floor(), AssignRes{ReservationID: "r1", TableID: 1}, t0)
	s = apply(t, s, SetSeatMenu{TableID: 1, Seat: 2, MenuID: "veg"}, t0)
	s = apply(t, s, InsertCourse{TableID: 1, AfterIndex: 0, Title: "Amuse"}, t0)
	before := s.Table(1).Setup.Clone()
	require.Len(t, before.CourseLines, 5)

	s = apply(t, s, SendForApproval{TableID: 1}, t0)
	setup := s.Table(1).Setup
	assert.Equal(t, model.ApprovalPending, setup.Approval)
	assert.Equal(t, "veg", setup.SeatMenus.Get(2))
	require.Len(t, setup.CourseLines, 5)
	assert.Equal(t, "Amuse", setup.CourseLines[0].Name)
	assert.Equal(t, before.CourseLines[0].ID, setup.CourseLines[0].ID)
	assert.Equal(t, before.CourseLines, setup.CourseLines)
	rejected(t, s, SendForApproval{TableID: 1}, t0)
}

func TestSeatMenuChangeDoesNotReopenCooldown(t *testing.T) {
	s := apply(t, floor(), AssignRes{ReservationID: "r1", TableID: 1}, t0)
	s = apply(t, s, SendForApproval{TableID: 1}, t0)
	s = apply(t, s, ApproveTable{TableID: 1}, t0)
	s = apply(t, s, FireNext{TableID: 1}, t0)

	s = apply(t, s, SetSeatMenu{TableID: 1, Seat: 2, MenuID: "veg"}, t0.Add(time.Second))
	rejected(t, s, FireNext{TableID: 1}, t0.Add(2*time.Second))

	fired := 0
	for _, l := range s.Table(1).Setup.CourseLines {
		if l.Status == model.CourseFired {
			fired++
		}
	}
	assert.Equal(t, 1, fired)
	s = apply(t, s, FireNext{TableID: 1}, t0.Add(pacing.Cooldown))
	assert.Equal(t, model.CourseFired, s.Table(1).Setup.CourseLines[1].Status)
}

func TestClearDraft(t *testing.T) {
	s := floor()
	rejected(t, s, ClearDraft{ReservationID: "r1"}, t0)

	s = apply(t, s, SetDraftGuestMenu{ReservationID: "r1", Guest: "A", MenuID: "veg"}, t0)
	s = apply(t, s, ClearDraft{ReservationID: "r1"}, t0)
	r := s.Reservation("r1")
	assert.Nil(t, r.DraftSetup)
	assert.Nil(t, r.DraftGuestMenuID)
}

func TestTableEditsThroughOps(t *testing.T) {
	s := apply(t, floor(), AssignRes{ReservationID: "r1", TableID: 1}, t0)

	s = apply(t, s, InsertCourse{TableID: 1, AfterIndex: 0, Title: "Amuse"}, t0)
	lines := s.Table(1).Setup.CourseLines
	require.Len(t, lines, 4)
	assert.Equal(t, "Amuse", lines[0].Name)
	assert.Equal(t, []int{1, 2, 3, 4}, []int{lines[0].Index, lines[1].Index, lines[2].Index, lines[3].Index})

	s = apply(t, s, MoveCourse{TableID: 1, CourseID: lines[0].ID, ToIndex: 4}, t0)
	assert.Equal(t, "Amuse", s.Table(1).Setup.CourseLines[3].Name)
	s = apply(t, s, DeleteCourse{TableID: 1, CourseID: lines[0].ID}, t0)
	assert.Len(t, s.Table(1).Setup.CourseLines, 3)

	s = apply(t, s, SetSeatMenu{TableID: 1, Seat: 2, MenuID: "veg"}, t0)
	assert.Len(t, s.Table(1).Setup.CourseLines, 4)

	courseID := s.Table(1).Setup.CourseLines[0].ID
	s = apply(t, s, SetSeatSub{TableID: 1, CourseID: courseID, Seat: 1, Text: "no shellfish"}, t0)
	assert.Equal(t, "no shellfish", s.Table(1).Setup.CourseLines[0].SeatSubs.Get(1))

	s = apply(t, s, SetChefNote{TableID: 1, Note: "proposal at dessert"}, t0)
	assert.Equal(t, "proposal at dessert", s.Table(1).Setup.ChefNote)

	s = apply(t, s, AddExtraDish{TableID: 1, Seat: 2, Title: "Caviar"}, t0)
	extras := s.Table(1).Setup.Extras
	require.Len(t, extras, 1)
	assert.NotEmpty(t, extras[0].ID)
	s = apply(t, s, RemoveExtraDish{TableID: 1, ExtraID: extras[0].ID}, t0)
	assert.Empty(t, s.Table(1).Setup.Extras)

	rejected(t, s, SetChefNote{TableID: 42, Note: "x"}, t0)
	rejected(t, s, InsertCourse{TableID: 2, Title: "x"}, t0)
}

func TestPauseRefireThroughOps(t *testing.T) {
	s := apply(t, floor(), AssignRes{ReservationID: "r1", TableID: 1}, t0)
	s = apply(t, s, SendForApproval{TableID: 1}, t0)
	s = apply(t, s, ApproveTable{TableID: 1}, t0)
	s = apply(t, s, FireNext{TableID: 1}, t0)
	s = apply(t, s, TogglePause{TableID: 1, Paused: true}, t0)
	rejected(t, s, TogglePause{TableID: 1, Paused: true}, t0)

	s = apply(t, s, FireNext{TableID: 1}, t0.Add(pacing.Cooldown))
	line := s.Table(1).Setup.CourseLines[0]
	assert.Equal(t, 1, line.RefireCount)
	assert.True(t, line.HasRefired)
	rejected(t, s, FireNext{TableID: 1}, t0.Add(3*pacing.Cooldown))
}

func TestStructuralEditsKeepIndexesAPermutation(t *testing.T) {
	for seed := int64(1); seed <= 20; seed++ {
		t.Run(fmt.Sprintf("seed=%d", seed), func(t *testing.T) {
			rng := rand.New(rand.NewSource(seed))
			s := apply(t, floor(), AssignRes{ReservationID: "r1", TableID: 1}, t0)

			for step := 0; step < 60; step++ {
				lines := s.Table(1).Setup.CourseLines
				var op Op
				switch k := rng.Intn(3); {
				case k == 0 || len(lines) == 0:
					op = InsertCourse{TableID: 1, AfterIndex: rng.Intn(len(lines) + 2), Title: "Extra"}
				case k == 1:
					op = MoveCourse{TableID: 1, CourseID: lines[rng.Intn(len(lines))].ID, ToIndex: rng.Intn(len(lines)+2) - 1}
				default:
					op = DeleteCourse{TableID: 1, CourseID: lines[rng.Intn(len(lines))].ID}
				}
				if next, ok := Apply(s, op, testEnv(t0)); ok {
					s = next
				}

				seen := map[string]bool{}
				for i, l := range s.Table(1).Setup.CourseLines {
					require.Equal(t, i+1, l.Index, "step %d after %s", step, op.Name())
					require.False(t, seen[l.ID], "duplicate id %s", l.ID)
					seen[l.ID] = true
				}
			}
		})
	}
}
