package player

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/logger"
)

// Backend plays the clip once. It returns when the clip ends or ctx is cancelled.
type Backend interface {
	PlayOnce(ctx context.Context) error
}

// DefaultRetryDelay is the pause before replaying after a backend failure.
const DefaultRetryDelay = time.Second

// session is one looping playback.
type session struct {
	cancel context.CancelFunc
	done   chan struct{}
	status domain.Playback
}

// Player loops an alarm clip on a single shared channel until stopped.
type Player struct {
	// backend produces the sound.
	backend Backend
	// retryDelay is the pause after a failed play.
	retryDelay time.Duration
	// now returns the current time.
	now func() time.Time
	// current is the active playback, nil when idle.
	current *session
	// mu protects current.
	mu sync.Mutex
}

// Option configures a Player.
type Option func(*Player)

// WithRetryDelay sets the pause after a backend failure.
func WithRetryDelay(delay time.Duration) Option {
	return func(p *Player) {
		if delay > 0 {
			p.retryDelay = delay
		}
	}
}

// New creates an idle player on top of backend.
func New(backend Backend, opts ...Option) *Player {
	p := &Player{
		backend:    backend,
		retryDelay: DefaultRetryDelay,
		now:        time.Now,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Play starts looping the clip for the given entry. Whatever was playing is
// stopped first, so the latest call owns the channel.
func (p *Player) Play(ctx context.Context, entryID uuid.UUID) domain.Playback {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current != nil {
		logger.InfoKV(ctx, "Replacing current playback", "previous_entry_id", p.current.status.EntryID.String())
		p.halt()
	}

	// Playback runs until Stop, not until the caller's request ends.
	loopCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))

	s := &session{
		cancel: cancel,
		done:   make(chan struct{}),
		status: domain.Playback{
			State:       domain.PlayerPlaying,
			StopEnabled: true,
			EntryID:     entryID,
			Since:       p.now(),
		},
	}

	p.current = s

	go p.loop(loopCtx, s)

	logger.InfoKV(ctx, "Alarm sound started", "entry_id", entryID.String())

	return s.status
}

// Stop halts playback and disables the stop control. Stopping an idle player is a no-op.
func (p *Player) Stop(ctx context.Context) domain.Playback {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current == nil {
		logger.Debug(ctx, "Stop requested while idle")
		return idle()
	}

	p.halt()
	logger.Info(ctx, "Alarm sound stopped")

	return idle()
}

// Status returns the current playback description.
func (p *Player) Status() domain.Playback {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current == nil {
		return idle()
	}

	return p.current.status
}

// Close stops playback; the player stays usable.
func (p *Player) Close(ctx context.Context) {
	p.Stop(ctx)
}

// halt cancels the current session and waits for its loop to exit.
// The caller holds mu.
func (p *Player) halt() {
	s := p.current
	p.current = nil

	s.cancel()
	<-s.done
}

// loop replays the clip until ctx is cancelled. A failed play, or one that
// ended sooner than retryDelay, is followed by a pause so a clip that ends
// at once does not respawn the backend in a tight loop.
func (p *Player) loop(ctx context.Context, s *session) {
	defer close(s.done)

	for {
		started := time.Now()

		err := p.backend.PlayOnce(ctx)
		if ctx.Err() != nil {
			return
		}

		pause := p.retryDelay - time.Since(started)

		if err != nil {
			logger.ErrorKV(ctx, "Alarm sound failed, retrying", "error", err, "retry_in", p.retryDelay.String())

			pause = p.retryDelay
		}

		if pause <= 0 {
			continue
		}

		timer := time.NewTimer(pause)

		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// idle is the playback of a silent channel.
func idle() domain.Playback {
	return domain.Playback{
		State:       domain.PlayerIdle,
		StopEnabled: false,
	}
}
