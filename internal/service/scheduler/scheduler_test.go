package scheduler

import (
	"context"
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
)

// recorder collects fired entries.
type recorder struct {
	// fired holds the entries in fire order.
	fired []*domain.Entry
	// mu protects fired.
	mu sync.Mutex
}

// fire records the entry; it matches FireFunc.
func (r *recorder) fire(_ context.Context, entry *domain.Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.fired = append(r.fired, entry)
}

// ids returns the fired entry ids in order.
func (r *recorder) ids() []uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := make([]uuid.UUID, 0, len(r.fired))
	for _, entry := range r.fired {
		result = append(result, entry.ID)
	}

	return result
}

// entryAt builds an entry relative to the current (bubble) time.
func entryAt(offset time.Duration, active bool) *domain.Entry {
	return &domain.Entry{
		ID:            uuid.New(),
		TriggerMoment: time.Now().Add(offset),
		Active:        active,
	}
}

// TestScheduler_FiresOnTime verifies a timer fires once its delay elapses and not before.
func TestScheduler_FiresOnTime(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		rec := new(recorder)
		s := New(rec.fire)
		entry := entryAt(time.Hour, true)

		require.Equal(t, 1, s.Rearm(context.Background(), []*domain.Entry{entry}))

		time.Sleep(59 * time.Minute)
		synctest.Wait()
		require.Empty(t, rec.ids())

		time.Sleep(2 * time.Minute)
		synctest.Wait()
		require.Equal(t, []uuid.UUID{entry.ID}, rec.ids())

		// The fired handle is gone; the entry stays untouched.
		require.Empty(t, s.Pending())
		require.True(t, entry.Active)
	})
}

// TestScheduler_SkipsPastDue checks that entries at or before now are never armed, active or not.
func TestScheduler_SkipsPastDue(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		rec := new(recorder)
		s := New(rec.fire)

		entries := []*domain.Entry{
			entryAt(0, true),
			entryAt(-time.Minute, true),
			entryAt(-time.Hour, false),
			entryAt(-24*time.Hour, true),
		}

		require.Zero(t, s.Rearm(context.Background(), entries))
		require.Empty(t, s.Pending())

		for _, entry := range entries {
			require.False(t, s.Arm(context.Background(), entry))
		}

		time.Sleep(48 * time.Hour)
		synctest.Wait()
		require.Empty(t, rec.ids())
	})
}

// TestScheduler_SkipsInactive verifies disabled entries are never armed.
func TestScheduler_SkipsInactive(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		rec := new(recorder)
		s := New(rec.fire)
		entry := entryAt(time.Minute, false)

		require.Zero(t, s.Rearm(context.Background(), []*domain.Entry{entry}))

		time.Sleep(time.Hour)
		synctest.Wait()
		require.Empty(t, rec.ids())
	})
}

// TestScheduler_RearmDoesNotDuplicate ensures repeated re-arming leaves one timer per entry.
func TestScheduler_RearmDoesNotDuplicate(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		rec := new(recorder)
		s := New(rec.fire)
		entry := entryAt(10*time.Minute, true)
		entries := []*domain.Entry{entry}

		for range 5 {
			require.Equal(t, 1, s.Rearm(context.Background(), entries))
		}

		require.Len(t, s.Pending(), 1)

		// Arming the same id directly replaces the pending handle as well.
		require.True(t, s.Arm(context.Background(), entry))
		require.Len(t, s.Pending(), 1)

		time.Sleep(time.Hour)
		synctest.Wait()
		require.Equal(t, []uuid.UUID{entry.ID}, rec.ids())
	})
}

// TestScheduler_CancelPreventsFire verifies cancelled and re-armed-without entries never fire.
func TestScheduler_CancelPreventsFire(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		rec := new(recorder)
		s := New(rec.fire)
		deleted := entryAt(5*time.Minute, true)
		disabled := entryAt(5*time.Minute, true)
		kept := entryAt(5*time.Minute, true)

		require.Equal(t, 3, s.Rearm(context.Background(), []*domain.Entry{deleted, disabled, kept}))

		require.True(t, s.Cancel(deleted.ID))
		require.False(t, s.Cancel(deleted.ID))

		disabled.Toggle()
		require.Equal(t, 1, s.Rearm(context.Background(), []*domain.Entry{disabled, kept}))

		time.Sleep(time.Hour)
		synctest.Wait()
		require.Equal(t, []uuid.UUID{kept.ID}, rec.ids())
	})
}

// TestScheduler_NextAndCancelAll checks introspection ordering and bulk cancellation.
func TestScheduler_NextAndCancelAll(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		rec := new(recorder)
		s := New(rec.fire)

		_, ok := s.Next()
		require.False(t, ok)

		late := entryAt(3*time.Hour, true)
		early := entryAt(time.Hour, true)

		s.Rearm(context.Background(), []*domain.Entry{late, early})

		next, ok := s.Next()
		require.True(t, ok)
		require.Equal(t, early.ID, next.Entry.ID)
		require.True(t, early.TriggerMoment.Equal(next.At))

		pending := s.Pending()
		require.Len(t, pending, 2)
		require.Equal(t, late.ID, pending[1].Entry.ID)

		require.Equal(t, 2, s.CancelAll())
		require.Zero(t, s.CancelAll())

		time.Sleep(4 * time.Hour)
		synctest.Wait()
		require.Empty(t, rec.ids())
	})
}

// TestScheduler_WithNow verifies the injected clock drives the past-due decision.
func TestScheduler_WithNow(t *testing.T) {
	t.Parallel()

	frozen := time.Date(2099, 1, 1, 9, 0, 0, 0, time.UTC)
	s := New(nil, WithNow(func() time.Time { return frozen }))

	entry := &domain.Entry{ID: uuid.New(), TriggerMoment: frozen, Active: true}
	require.False(t, s.Arm(context.Background(), entry))

	entry.TriggerMoment = frozen.Add(time.Minute)
	require.True(t, s.Arm(context.Background(), entry))
	require.True(t, s.Cancel(entry.ID))
}
