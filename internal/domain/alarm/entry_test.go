package alarm

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// TestEntryClone verifies that Clone returns an independent copy and handles nil safely.
func TestEntryClone(t *testing.T) {
	t.Parallel()
	require.Nil(t, (*Entry)(nil).Clone())

	e := NewEntry(time.Date(2099, 1, 1, 9, 0, 0, 0, time.UTC))
	c := e.Clone()

	require.Equal(t, e, c)
	require.NotSame(t, e, c)

	c.Toggle()
	require.True(t, e.Active)
}

// TestNewEntry checks that new entries are active, truncated to the minute and get distinct ids.
func TestNewEntry(t *testing.T) {
	t.Parallel()

	moment := time.Date(2099, 1, 1, 9, 0, 42, 500, time.UTC)
	a := NewEntry(moment)
	b := NewEntry(moment)

	require.True(t, a.Active)
	require.Equal(t, time.Date(2099, 1, 1, 9, 0, 0, 0, time.UTC), a.TriggerMoment)
	require.NotEqual(t, uuid.Nil, a.ID)
	require.NotEqual(t, a.ID, b.ID)
}

// TestToggleTwiceRestores ensures a double toggle restores the flag and keeps the moment.
func TestToggleTwiceRestores(t *testing.T) {
	t.Parallel()

	for _, active := range []bool{true, false} {
		e := &Entry{
			ID:            uuid.New(),
			TriggerMoment: time.Date(2099, 1, 1, 9, 0, 0, 0, time.UTC),
			Active:        active,
		}
		before := e.Clone()

		e.Toggle()
		require.Equal(t, !active, e.Active)

		e.Toggle()
		require.Equal(t, before, e)
	}
}

// TestValidateFuture covers the strictly-after-now rule at and around the boundary.
func TestValidateFuture(t *testing.T) {
	t.Parallel()

	now := time.Date(2030, 6, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, ValidateFuture(now.Add(time.Minute), now))
	require.NoError(t, ValidateFuture(now.Add(time.Nanosecond), now))
	require.ErrorIs(t, ValidateFuture(now, now), ErrNotInFuture)
	require.ErrorIs(t, ValidateFuture(now.Add(-time.Minute), now), ErrNotInFuture)
	require.True(t, IsValidationError(ValidateFuture(now, now)))
}

// TestParseMoment checks the accepted date formats and range validation.
func TestParseMoment(t *testing.T) {
	t.Parallel()

	want := time.Date(2060, 1, 1, 9, 5, 0, 0, time.UTC)

	for _, date := range []string{"2060-01-01", "01/01/60", "01/01/2060", " 2060-01-01 "} {
		got, err := ParseMoment(date, 9, 5, time.UTC)
		require.NoError(t, err, date)
		require.True(t, want.Equal(got), date)
	}

	_, err := ParseMoment("tomorrow", 9, 0, time.UTC)
	require.ErrorIs(t, err, ErrInvalidMoment)

	_, err = ParseMoment("2099-01-01", 24, 0, time.UTC)
	require.ErrorIs(t, err, ErrInvalidMoment)

	_, err = ParseMoment("2099-01-01", 9, 60, time.UTC)
	require.ErrorIs(t, err, ErrInvalidMoment)
	require.True(t, IsValidationError(err))
}

// TestStoredMomentRoundtrip ensures FormatMoment and ParseStoredMoment are inverse.
func TestStoredMomentRoundtrip(t *testing.T) {
	t.Parallel()

	moment, err := ParseStoredMoment("2099-01-01 09:00", time.UTC)
	require.NoError(t, err)
	require.Equal(t, "2099-01-01 09:00", FormatMoment(moment))

	_, err = ParseStoredMoment("2099-01-01T09:00", time.UTC)
	require.ErrorIs(t, err, ErrInvalidMoment)
}

// TestEntryIsDue checks the past-due boundary.
func TestEntryIsDue(t *testing.T) {
	t.Parallel()

	now := time.Date(2030, 6, 1, 12, 0, 0, 0, time.UTC)
	e := &Entry{TriggerMoment: now}

	require.True(t, e.IsDue(now))
	require.True(t, e.IsDue(now.Add(time.Second)))
	require.False(t, e.IsDue(now.Add(-time.Second)))
}

// TestPlayerStateString verifies names and parsing of player states.
func TestPlayerStateString(t *testing.T) {
	t.Parallel()

	require.Equal(t, "idle", PlayerIdle.String())
	require.Equal(t, "playing", PlayerPlaying.String())
	require.Equal(t, PlayerPlaying, ParsePlayerState("playing"))
	require.Equal(t, PlayerIdle, ParsePlayerState("whatever"))
}
