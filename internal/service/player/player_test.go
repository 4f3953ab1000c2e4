package player

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"testing/synctest"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
)

var errTestBackend = errors.New("test backend failure")

// fakeBackend simulates a clip of fixed length; a zero length blocks until cancelled.
type fakeBackend struct {
	// clip is how long one play lasts.
	clip time.Duration
	// err is returned immediately when set.
	err error
	// plays counts started plays.
	plays atomic.Int32
	// cancelled counts plays interrupted by cancellation.
	cancelled atomic.Int32
}

// PlayOnce implements Backend.
func (f *fakeBackend) PlayOnce(ctx context.Context) error {
	f.plays.Add(1)

	if f.err != nil {
		return f.err
	}

	var clipEnd <-chan time.Time
	if f.clip > 0 {
		clipEnd = time.After(f.clip)
	}

	select {
	case <-ctx.Done():
		f.cancelled.Add(1)
		return ctx.Err()
	case <-clipEnd:
		return nil
	}
}

// TestPlayer_PlayAndStop walks Idle -> Playing -> Idle and checks the stop control.
func TestPlayer_PlayAndStop(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		backend := new(fakeBackend)
		p := New(backend)

		initial := p.Status()
		require.Equal(t, domain.PlayerIdle, initial.State)
		require.False(t, initial.StopEnabled)

		entryID := uuid.New()
		started := p.Play(context.Background(), entryID)

		require.Equal(t, domain.PlayerPlaying, started.State)
		require.True(t, started.StopEnabled)
		require.Equal(t, entryID, started.EntryID)
		require.True(t, time.Now().Equal(started.Since))
		require.Equal(t, started, p.Status())

		synctest.Wait()
		require.EqualValues(t, 1, backend.plays.Load())

		stopped := p.Stop(context.Background())
		require.Equal(t, domain.PlayerIdle, stopped.State)
		require.False(t, stopped.StopEnabled)
		require.Equal(t, uuid.Nil, stopped.EntryID)
		require.EqualValues(t, 1, backend.cancelled.Load())
	})
}

// TestPlayer_StopIsIdempotent verifies repeated stops leave the player idle without side effects.
func TestPlayer_StopIsIdempotent(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		backend := new(fakeBackend)
		p := New(backend)

		// Stop on a fresh player.
		require.Equal(t, domain.PlayerIdle, p.Stop(context.Background()).State)

		p.Play(context.Background(), uuid.New())
		synctest.Wait()

		first := p.Stop(context.Background())
		second := p.Stop(context.Background())

		require.Equal(t, first, second)
		require.Equal(t, domain.PlayerIdle, p.Status().State)
		require.False(t, p.Status().StopEnabled)
		require.EqualValues(t, 1, backend.cancelled.Load())
	})
}

// TestPlayer_LoopsUntilStopped checks that the clip is restarted every time it ends.
func TestPlayer_LoopsUntilStopped(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		backend := &fakeBackend{clip: 2 * time.Second}
		p := New(backend)

		p.Play(context.Background(), uuid.New())

		time.Sleep(5 * time.Second)
		synctest.Wait()

		// Plays started at 0s, 2s and 4s.
		require.EqualValues(t, 3, backend.plays.Load())
		require.Equal(t, domain.PlayerPlaying, p.Status().State)

		p.Stop(context.Background())

		time.Sleep(10 * time.Second)
		synctest.Wait()
		require.EqualValues(t, 3, backend.plays.Load())
	})
}

// TestPlayer_LastPlayWins ensures a second fire replaces the first playback on the shared channel.
func TestPlayer_LastPlayWins(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		backend := new(fakeBackend)
		p := New(backend)

		first := uuid.New()
		second := uuid.New()

		p.Play(context.Background(), first)
		synctest.Wait()

		time.Sleep(time.Minute)

		status := p.Play(context.Background(), second)
		synctest.Wait()

		require.Equal(t, second, status.EntryID)
		require.Equal(t, second, p.Status().EntryID)
		require.True(t, time.Now().Equal(p.Status().Since))
		require.EqualValues(t, 2, backend.plays.Load())
		require.EqualValues(t, 1, backend.cancelled.Load())

		p.Close(context.Background())
		require.Equal(t, domain.PlayerIdle, p.Status().State)
	})
}

// TestPlayer_RetriesFailingBackend verifies failures are retried after the delay while staying in Playing.
func TestPlayer_RetriesFailingBackend(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		backend := &fakeBackend{err: errTestBackend}
		p := New(backend, WithRetryDelay(time.Second))

		p.Play(context.Background(), uuid.New())

		time.Sleep(3500 * time.Millisecond)
		synctest.Wait()

		// Attempts at 0s, 1s, 2s and 3s.
		require.EqualValues(t, 4, backend.plays.Load())
		require.Equal(t, domain.PlayerPlaying, p.Status().State)
		require.True(t, p.Status().StopEnabled)

		p.Stop(context.Background())
		require.Equal(t, domain.PlayerIdle, p.Status().State)
	})
}

// TestPlayer_ThrottlesShortClips checks that a clip ending at once is replayed at most once per retry delay.
func TestPlayer_ThrottlesShortClips(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		backend := &fakeBackend{clip: time.Millisecond}
		p := New(backend, WithRetryDelay(time.Second))

		p.Play(context.Background(), uuid.New())

		time.Sleep(3500 * time.Millisecond)
		synctest.Wait()

		// Plays start at 0s, 1s, 2s and 3s.
		require.EqualValues(t, 4, backend.plays.Load())
		require.Equal(t, domain.PlayerPlaying, p.Status().State)

		p.Stop(context.Background())
		require.EqualValues(t, 4, backend.plays.Load())
	})
}

// TestPlayer_OutlivesCallerContext ensures playback keeps going after the triggering request ends.
func TestPlayer_OutlivesCallerContext(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		backend := new(fakeBackend)
		p := New(backend)

		ctx, cancel := context.WithCancel(context.Background())
		p.Play(ctx, uuid.New())
		cancel()

		time.Sleep(time.Minute)
		synctest.Wait()

		require.Equal(t, domain.PlayerPlaying, p.Status().State)
		require.Zero(t, backend.cancelled.Load())

		p.Stop(context.Background())
	})
}
