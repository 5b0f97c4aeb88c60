package event

import (
	"testing"
	"time"

	"github.com/facebookgo/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/tasting-service/internal/model"
)

func newTestStore(clk clock.Clock) *Store {
	return NewStore(floor(), catalog, WithClock(clk), WithIDs(nextID))
}

func TestStoreStampsWithItsClock(t *testing.T) {
	clk := clock.NewMock()
	clk.Add(time.Hour)
	s := newTestStore(clk)

	require.True(t, s.Apply(AssignRes{ReservationID: "r1", TableID: 1}))
	require.True(t, s.Apply(SeatAssigned{TableID: 1}))
	assert.Equal(t, clk.Now(), *s.State().Table(1).SeatedAt)
}

func TestStoreCooldownFollowsClock(t *testing.T) {
	clk := clock.NewMock()
	s := newTestStore(clk)
	for _, op := range []Op{
		AssignRes{ReservationID: "r1", TableID: 1},
		SendForApproval{TableID: 1},
		ApproveTable{TableID: 1},
		FireNext{TableID: 1},
	} {
		require.True(t, s.Apply(op), op.Name())
	}

	clk.Add(59 * time.Second)
	assert.False(t, s.Apply(FireNext{TableID: 1}))
	clk.Add(time.Second)
	assert.True(t, s.Apply(FireNext{TableID: 1}))
}

func TestStoreNotifiesAppliedChanges(t *testing.T) {
	s := newTestStore(clock.NewMock())
	var changes []Change
	unsub := s.Subscribe(func(c Change) { changes = append(changes, c) })

	require.True(t, s.Apply(AssignRes{ReservationID: "r1", TableID: 1}))
	assert.False(t, s.Apply(ApproveTable{TableID: 1}), "rejected ops notify nobody")
	require.Len(t, changes, 1)
	assert.Equal(t, AssignRes{ReservationID: "r1", TableID: 1}, changes[0].Op)
	assert.Empty(t, changes[0].Before.Table(1).ReservationID)
	assert.Equal(t, "r1", changes[0].After.Table(1).ReservationID)

	s.Replace(floor())
	require.Len(t, changes, 2)
	assert.Nil(t, changes[1].Op)
	assert.Empty(t, s.State().Table(1).ReservationID)

	unsub()
	require.True(t, s.Apply(AssignRes{ReservationID: "r1", TableID: 2}))
	assert.Len(t, changes, 2)
}

func TestStoreStateIsACopy(t *testing.T) {
	s := newTestStore(clock.NewMock())
	st := s.State()
	st.Tables[0].Name = "renamed"
	st.Reservations[0].DraftGuestMenuID = map[model.GuestID]string{"A": "veg"}

	fresh := s.State()
	assert.Equal(t, "T1", fresh.Tables[0].Name)
	assert.Nil(t, fresh.Reservations[0].DraftGuestMenuID)
}

func TestStoreDraftPreview(t *testing.T) {
	s := newTestStore(clock.NewMock())
	setup, ok := s.Draft("r1")
	require.True(t, ok)
	assert.Len(t, setup.CourseLines, 3)
	assert.Equal(t, "draft-r1-1", setup.CourseLines[0].ID)

	_, ok = s.Draft("nobody")
	assert.False(t, ok)
}
