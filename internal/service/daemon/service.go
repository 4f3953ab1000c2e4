package daemon

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/logger"
	repo "github.com/oshokin/alarm-clock/internal/repository/alarms"
	"github.com/oshokin/alarm-clock/internal/service/scheduler"
)

// Player is the audio channel the service drives.
type Player interface {
	Play(ctx context.Context, entryID uuid.UUID) domain.Playback
	Stop(ctx context.Context) domain.Playback
	Status() domain.Playback
	Close(ctx context.Context)
}

// service owns the alarm collection, its timers and the player.
// Every mutation and every timer callback goes through mu.
type service struct {
	// repo handles persistent storage of alarm entries.
	repo repo.Repository
	// player loops the alarm sound.
	player Player
	// scheduler holds one timer per armed entry.
	scheduler *scheduler.Scheduler
	// entries is the in-memory collection in insertion order.
	entries []*domain.Entry
	// notice is the user-visible load problem, if any.
	notice string
	// now returns the current time.
	now func() time.Time
	// location interprets picked dates.
	location *time.Location
	// closed is set once the service shuts down.
	closed bool
	// mu serializes access to everything above.
	mu sync.Mutex
}

// serviceOption configures a service.
type serviceOption func(*service)

// withNow overrides the time source.
func withNow(now func() time.Time) serviceOption {
	return func(s *service) {
		s.now = now
	}
}

// withLocation sets the time zone for parsed dates.
func withLocation(loc *time.Location) serviceOption {
	return func(s *service) {
		s.location = loc
	}
}

// newService loads the saved alarms and arms their timers. Load problems never
// fail construction: they are recorded as a notice and the collection starts empty.
func newService(ctx context.Context, repository repo.Repository, player Player, opts ...serviceOption) *service {
	s := &service{
		repo:     repository,
		player:   player,
		now:      time.Now,
		location: time.Local,
	}

	for _, opt := range opts {
		opt(s)
	}

	s.scheduler = scheduler.New(s.fire, scheduler.WithNow(s.now))

	s.mu.Lock()
	defer s.mu.Unlock()

	s.load(ctx)

	armed := s.scheduler.Rearm(ctx, s.entries)
	logger.InfoKV(ctx, "Alarms loaded", "count", len(s.entries), "armed", armed)

	return s
}

// load fills entries from the repository. The caller holds mu.
func (s *service) load(ctx context.Context) {
	loaded, err := s.repo.Load(ctx)

	switch {
	case err == nil:
		s.entries = loaded.Entries
		s.repair(ctx, loaded)
	case errors.Is(err, repo.ErrNotFound):
		s.notice = fmt.Sprintf("Could not load alarms: %s does not exist, starting with no alarms", s.repo.Path())
		logger.WarnKV(ctx, "Alarms file not found, starting empty", "path", s.repo.Path())
	case errors.Is(err, repo.ErrMalformed):
		backup, backupErr := s.repo.Backup(ctx)
		if backupErr != nil {
			s.notice = fmt.Sprintf("Could not load alarms: %v", err)
			logger.ErrorKV(ctx, "Failed to back up malformed alarms file", "error", backupErr)
		} else {
			s.notice = fmt.Sprintf("Could not load alarms: %v (the file was kept as %s)", err, backup)
		}

		logger.ErrorKV(ctx, "Alarms file is malformed, starting empty", "error", err, "backup", backup)
	default:
		s.notice = fmt.Sprintf("Could not load alarms: %v", err)
		logger.ErrorKV(ctx, "Failed to read alarms file, starting empty", "error", err)
	}
}

// repair writes back a collection whose ids were assigned or replaced while
// loading, so the same alarms keep the same ids on the next start.
// The caller holds mu.
func (s *service) repair(ctx context.Context, loaded *repo.Loaded) {
	if !loaded.Repaired() {
		return
	}

	if loaded.Duplicates > 0 {
		s.notice = fmt.Sprintf("%d alarm(s) in %s shared an id and were given new ones", loaded.Duplicates, s.repo.Path())
		logger.WarnKV(ctx, "Alarms with duplicate ids were given new ones", "count", loaded.Duplicates)
	}

	if err := s.repo.Save(ctx, s.entries); err != nil {
		logger.ErrorKV(ctx, "Failed to save repaired alarms", "error", err)
		return
	}

	logger.InfoKV(ctx, "Saved alarms with repaired ids",
		"assigned", loaded.Assigned,
		"duplicates", loaded.Duplicates)
}

// AddAlarm validates the moment and appends an active entry.
func (s *service) AddAlarm(ctx context.Context, moment time.Time) (*domain.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	moment = domain.TruncateMoment(moment)

	if err := domain.ValidateFuture(moment, s.now()); err != nil {
		logger.WarnKV(ctx, "Alarm rejected", "trigger_moment", domain.FormatMoment(moment), "error", err)
		return nil, err
	}

	entry := domain.NewEntry(moment)

	next := append(slices.Clone(s.entries), entry)
	if err := s.commit(ctx, next); err != nil {
		return nil, err
	}

	logger.InfoKV(ctx, "Alarm added", "entry_id", entry.ID.String(), "trigger_moment", domain.FormatMoment(moment))

	return entry.Clone(), nil
}

// AddAlarmAt parses a picked date and hour/minute, then adds the alarm.
func (s *service) AddAlarmAt(ctx context.Context, date string, hour, minute int) (*domain.Entry, error) {
	moment, err := domain.ParseMoment(date, hour, minute, s.location)
	if err != nil {
		logger.WarnKV(ctx, "Alarm input rejected", "date", date, "hour", hour, "minute", minute, "error", err)
		return nil, err
	}

	return s.AddAlarm(ctx, moment)
}

// ToggleAlarm flips the active flag of the entry with id.
func (s *service) ToggleAlarm(ctx context.Context, id uuid.UUID) (*domain.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrEntryNotFound, id)
	}

	toggled := s.entries[idx].Clone()
	toggled.Toggle()

	next := slices.Clone(s.entries)
	next[idx] = toggled

	var cancel []uuid.UUID
	if !toggled.Active {
		cancel = append(cancel, id)
	}

	if err := s.commit(ctx, next, cancel...); err != nil {
		return nil, err
	}

	logger.InfoKV(ctx, "Alarm toggled", "entry_id", id.String(), "active", toggled.Active)

	return toggled.Clone(), nil
}

// DeleteAlarm removes the entry with id.
func (s *service) DeleteAlarm(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return fmt.Errorf("%w: %s", domain.ErrEntryNotFound, id)
	}

	next := slices.Delete(slices.Clone(s.entries), idx, idx+1)

	if err := s.commit(ctx, next, id); err != nil {
		return err
	}

	logger.InfoKV(ctx, "Alarm deleted", "entry_id", id.String())

	return nil
}

// ListAlarms returns copies of all entries in insertion order.
func (s *service) ListAlarms(_ context.Context) []*domain.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	return domain.CloneEntries(s.entries)
}

// Notice returns the load problem reported at start, if any.
func (s *service) Notice() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.notice
}

// StopSound silences the player.
func (s *service) StopSound(ctx context.Context) domain.Playback {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.player.Stop(ctx)
}

// Status returns a snapshot for the presentation layer.
func (s *service) Status(_ context.Context) *domain.Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := &domain.Status{
		Now:      s.now().In(s.location),
		Playback: s.player.Status(),
		Armed:    len(s.scheduler.Pending()),
		Notice:   s.notice,
	}

	if next, ok := s.scheduler.Next(); ok {
		status.Next = next.Entry
	}

	return status
}

// Close cancels all timers and stops the sound.
func (s *service) Close(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	s.closed = true
	cancelled := s.scheduler.CancelAll()
	s.player.Close(ctx)

	logger.InfoKV(ctx, "Alarm service closed", "cancelled_timers", cancelled)
}

// commit persists next and, only when that succeeds, makes it the current
// collection, cancels the listed timers and re-arms. The caller holds mu.
func (s *service) commit(ctx context.Context, next []*domain.Entry, cancel ...uuid.UUID) error {
	if err := s.repo.Save(ctx, next); err != nil {
		logger.ErrorKV(ctx, "Failed to persist alarms, change discarded", "error", err)

		return fmt.Errorf("persist alarms: %w", err)
	}

	s.entries = next

	for _, id := range cancel {
		s.scheduler.Cancel(id)
	}

	s.scheduler.Rearm(ctx, s.entries)

	return nil
}

// fire is the scheduler callback. The entry must still exist and be active.
func (s *service) fire(ctx context.Context, entry *domain.Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	idx := s.indexOf(entry.ID)
	if idx < 0 || !s.entries[idx].Active {
		logger.InfoKV(ctx, "Ignoring timer for removed or disabled alarm", "entry_id", entry.ID.String())
		return
	}

	logger.InfoKV(ctx, "Alarm fired", "entry_id", entry.ID.String(),
		"trigger_moment", domain.FormatMoment(entry.TriggerMoment))

	s.player.Play(ctx, entry.ID)
}

// indexOf returns the position of id in entries or -1. The caller holds mu.
func (s *service) indexOf(id uuid.UUID) int {
	return slices.IndexFunc(s.entries, func(e *domain.Entry) bool {
		return e.ID == id
	})
}
