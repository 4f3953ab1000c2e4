package alarm

import (
	"time"

	"github.com/google/uuid"
)

// PlayerState is the state of the single audio channel.
type PlayerState int

const (
	// PlayerIdle means nothing is playing and the stop control is disabled.
	PlayerIdle PlayerState = iota
	// PlayerPlaying means the alarm clip is looping until stopped.
	PlayerPlaying
)

// String returns the lower-case state name.
func (s PlayerState) String() string {
	switch s {
	case PlayerIdle:
		return "idle"
	case PlayerPlaying:
		return "playing"
	default:
		return "unknown"
	}
}

// ParsePlayerState converts a state name back to PlayerState.
func ParsePlayerState(s string) PlayerState {
	if s == PlayerPlaying.String() {
		return PlayerPlaying
	}

	return PlayerIdle
}

// Playback describes the audio channel at a point in time.
type Playback struct {
	// State is Idle or Playing.
	State PlayerState
	// StopEnabled mirrors the stop control; it is enabled only while playing.
	StopEnabled bool
	// EntryID is the alarm that started the current playback, or uuid.Nil.
	EntryID uuid.UUID
	// Since is when the current playback started. Zero when idle.
	Since time.Time
}

// Status is a snapshot of the daemon shown by the presentation layer.
type Status struct {
	// Now is the daemon's current local time.
	Now time.Time
	// Playback is the sound player state.
	Playback Playback
	// Next is the earliest armed entry, nil if nothing is armed.
	Next *Entry
	// Armed is the number of pending timers.
	Armed int
	// Notice carries a user-visible load problem, empty when there is none.
	Notice string
}
