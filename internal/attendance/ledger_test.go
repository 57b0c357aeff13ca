package attendance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	alice = User{ID: "A1", Name: "Alice", Photo: "data:image/jpeg;base64,AAAA"}
	bob   = User{ID: "B2", Name: "Bob", Photo: "data:image/jpeg;base64,BBBB"}
)

func fixedClock() func() time.Time {
	return stepClock(time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC))
}

func TestLedger_CheckInPrepends(t *testing.T) {
	l := NewLedger(nil, fixedClock())

	first, err := l.CheckIn(alice)
	require.NoError(t, err)
	second, err := l.CheckIn(bob)
	require.NoError(t, err)

	records := l.Records()
	require.Len(t, records, 2)
	assert.Equal(t, second.ID, records[0].ID, "newest record first")
	assert.Equal(t, first.ID, records[1].ID)

	assert.Equal(t, alice, first.User)
	assert.Equal(t, StatusCheckedIn, first.Status)
	assert.Nil(t, first.CheckOut)
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, 2, l.OpenCount())
}

func TestLedger_AlreadyCheckedInLeavesLogUnchanged(t *testing.T) {
	l := NewLedger(nil, fixedClock())
	_, err := l.CheckIn(alice)
	require.NoError(t, err)
	before := l.Records()

	_, err = l.CheckIn(alice)
	require.ErrorIs(t, err, ErrAlreadyCheckedIn)
	assert.Equal(t, before, l.Records())
}

func TestLedger_NotCheckedInLeavesLogUnchanged(t *testing.T) {
	l := NewLedger(nil, fixedClock())
	_, err := l.CheckIn(bob)
	require.NoError(t, err)
	before := l.Records()

	_, err = l.CheckOut(alice)
	require.ErrorIs(t, err, ErrNotCheckedIn)
	assert.Equal(t, before, l.Records())

	empty := NewLedger(nil, fixedClock())
	_, err = empty.CheckOut(alice)
	require.ErrorIs(t, err, ErrNotCheckedIn)
	assert.Empty(t, empty.Records())
}

func TestLedger_CheckOutMutatesInPlace(t *testing.T) {
	l := NewLedger(nil, fixedClock())
	in, err := l.CheckIn(alice)
	require.NoError(t, err)
	_, err = l.CheckIn(bob)
	require.NoError(t, err)

	out, err := l.CheckOut(alice)
	require.NoError(t, err)

	records := l.Records()
	require.Len(t, records, 2)
	assert.Equal(t, in.ID, records[1].ID)
	assert.Equal(t, StatusCompleted, records[1].Status)
	require.NotNil(t, records[1].CheckOut)
	assert.True(t, records[1].CheckOut.After(records[1].CheckIn))
	assert.Equal(t, in.CheckIn, out.CheckIn)
	assert.Equal(t, StatusCheckedIn, records[0].Status, "other sessions untouched")
	assert.Equal(t, 1, l.OpenCount())
}

func TestLedger_AtMostOneOpenSessionPerUser(t *testing.T) {
	l := NewLedger(nil, fixedClock())
	ops := []struct {
		user User
		in   bool
	}{
		{alice, true}, {alice, true}, {bob, false}, {bob, true}, {alice, false},
		{alice, false}, {alice, true}, {bob, true}, {bob, false}, {alice, true},
	}

	for _, op := range ops {
		if op.in {
			_, _ = l.CheckIn(op.user)
		} else {
			_, _ = l.CheckOut(op.user)
		}

		open := map[string]int{}
		for _, r := range l.Records() {
			if r.Open() {
				open[r.User.ID]++
			}
		}
		for id, n := range open {
			assert.LessOrEqual(t, n, 1, "user %s has %d open sessions", id, n)
		}
		assert.Equal(t, len(open), l.OpenCount())
	}
}

func TestNewLedger_IndexesMostRecentOpenRecord(t *testing.T) {
	t1 := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)
	// A hand-edited log with two open records for the same user.
	records := []Record{
		{ID: "new", User: alice, CheckIn: t2, Status: StatusCheckedIn},
		{ID: "old", User: alice, CheckIn: t1, Status: StatusCheckedIn},
	}
	l := NewLedger(records, fixedClock())

	open, ok := l.OpenSession("A1")
	require.True(t, ok)
	assert.Equal(t, "new", open.ID)

	_, err := l.CheckOut(alice)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, l.Records()[0].Status)
}

func TestLedger_DoesNotAliasInput(t *testing.T) {
	records := []Record{{ID: "r1", User: alice, CheckIn: time.Now(), Status: StatusCheckedIn}}
	l := NewLedger(records, fixedClock())

	_, err := l.CheckOut(alice)
	require.NoError(t, err)
	assert.Equal(t, StatusCheckedIn, records[0].Status)
	assert.Nil(t, records[0].CheckOut)
}

func TestLedger_IDsMatchAfterNormalization(t *testing.T) {
	l := NewLedger(nil, fixedClock())
	_, err := l.CheckIn(User{ID: "Jiři", Name: "Jiří"})
	require.NoError(t, err)

	_, err = l.CheckIn(User{ID: " Jiři ", Name: "Jiří"})
	assert.ErrorIs(t, err, ErrAlreadyCheckedIn)
}
