package scheduler

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/logger"
)

// FireFunc is invoked on a timer goroutine when an armed entry is due.
type FireFunc func(ctx context.Context, entry *domain.Entry)

// Pending describes an armed timer.
type Pending struct {
	// Entry is a copy of the entry taken when it was armed.
	Entry *domain.Entry
	// At is when the timer fires.
	At time.Time
}

// handle is one cancellable one-shot timer.
type handle struct {
	entry *domain.Entry
	at    time.Time
	timer *time.Timer
}

// Scheduler keeps at most one pending timer per entry id.
type Scheduler struct {
	// fire is called when a timer elapses.
	fire FireFunc
	// now returns the current time.
	now func() time.Time
	// handles maps entry ids to their pending timer.
	handles map[uuid.UUID]*handle
	// mu protects handles.
	mu sync.Mutex
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithNow overrides the time source used to compute delays.
func WithNow(now func() time.Time) Option {
	return func(s *Scheduler) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a scheduler that calls fire for every elapsed timer.
func New(fire FireFunc, opts ...Option) *Scheduler {
	s := &Scheduler{
		fire:    fire,
		now:     time.Now,
		handles: make(map[uuid.UUID]*handle),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Rearm cancels every outstanding timer and arms one for each active entry
// whose trigger moment is still ahead. It returns the number of armed timers.
func (s *Scheduler) Rearm(ctx context.Context, entries []*domain.Entry) int {
	cancelled := s.CancelAll()

	var armed, skipped int

	for _, entry := range entries {
		if !entry.Active {
			continue
		}

		if s.Arm(ctx, entry) {
			armed++
		} else {
			skipped++
		}
	}

	logger.DebugKV(ctx, "Timers re-armed", "cancelled", cancelled, "armed", armed, "past_due", skipped)

	return armed
}

// Arm schedules a one-shot timer for the entry, replacing any pending one for
// the same id. Inactive and past-due entries are not armed.
func (s *Scheduler) Arm(ctx context.Context, entry *domain.Entry) bool {
	if entry == nil || !entry.Active {
		return false
	}

	delay := entry.TriggerMoment.Sub(s.now())
	if delay <= 0 {
		return false
	}

	h := &handle{
		entry: entry.Clone(),
		at:    entry.TriggerMoment,
	}

	// Timer callbacks outlive the request that armed them.
	fireCtx := logger.WithKV(context.WithoutCancel(ctx), "entry_id", entry.ID.String())

	s.mu.Lock()
	defer s.mu.Unlock()

	if previous, ok := s.handles[entry.ID]; ok {
		previous.timer.Stop()
	}

	h.timer = time.AfterFunc(delay, func() {
		s.elapsed(fireCtx, h)
	})
	s.handles[entry.ID] = h

	return true
}

// Cancel stops the pending timer for id. It reports whether one was pending.
func (s *Scheduler) Cancel(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.handles[id]
	if !ok {
		return false
	}

	h.timer.Stop()
	delete(s.handles, id)

	return true
}

// CancelAll stops every pending timer and returns how many there were.
func (s *Scheduler) CancelAll() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := len(s.handles)

	for id, h := range s.handles {
		h.timer.Stop()
		delete(s.handles, id)
	}

	return count
}

// Pending lists armed timers ordered by fire time.
func (s *Scheduler) Pending() []Pending {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]Pending, 0, len(s.handles))
	for _, h := range s.handles {
		result = append(result, Pending{Entry: h.entry.Clone(), At: h.at})
	}

	slices.SortFunc(result, func(a, b Pending) int {
		return a.At.Compare(b.At)
	})

	return result
}

// Next returns the earliest armed timer.
func (s *Scheduler) Next() (Pending, bool) {
	pending := s.Pending()
	if len(pending) == 0 {
		return Pending{}, false
	}

	return pending[0], true
}

// elapsed runs on the timer goroutine. A handle that was cancelled or
// replaced after its timer started does nothing.
func (s *Scheduler) elapsed(ctx context.Context, h *handle) {
	s.mu.Lock()

	if current, ok := s.handles[h.entry.ID]; !ok || current != h {
		s.mu.Unlock()
		logger.Debug(ctx, "Stale timer ignored")

		return
	}

	delete(s.handles, h.entry.ID)
	s.mu.Unlock()

	logger.InfoKV(ctx, "Alarm timer elapsed", "trigger_moment", domain.FormatMoment(h.at))

	if s.fire != nil {
		s.fire(ctx, h.entry.Clone())
	}
}
