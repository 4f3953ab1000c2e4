package alarm

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MomentLayout is the layout used to persist and display trigger moments.
const MomentLayout = "2006-01-02 15:04"

// dateLayouts lists the accepted date formats for display input, in the order
// they are tried. The second one is what the calendar picker produces.
//
//nolint:gochecknoglobals // Read-only lookup table.
var dateLayouts = []string{
	"2006-01-02",
	"01/02/06",
	"01/02/2006",
}

var (
	// ErrNotInFuture is returned when an alarm is set for a moment that is not strictly after now.
	ErrNotInFuture = errors.New("cannot set alarm for past time")
	// ErrInvalidMoment is returned when a date or time value cannot be parsed.
	ErrInvalidMoment = errors.New("invalid alarm time")
	// ErrEntryNotFound is returned when no entry matches the requested id.
	ErrEntryNotFound = errors.New("alarm not found")
)

// Entry is a single alarm record.
type Entry struct {
	// ID uniquely identifies the entry across restarts.
	ID uuid.UUID
	// TriggerMoment is the local date-time, at minute resolution, when the alarm fires.
	TriggerMoment time.Time
	// Active marks entries that should be scheduled. Inactive entries are kept but never fire.
	Active bool
}

// NewEntry creates an active entry with a fresh id for the given moment.
func NewEntry(moment time.Time) *Entry {
	return &Entry{
		ID:            uuid.New(),
		TriggerMoment: TruncateMoment(moment),
		Active:        true,
	}
}

// Clone returns a copy of the entry.
func (e *Entry) Clone() *Entry {
	if e == nil {
		return nil
	}

	cloned := *e

	return &cloned
}

// Toggle flips the active flag.
func (e *Entry) Toggle() {
	e.Active = !e.Active
}

// IsDue reports whether the trigger moment is at or before now.
func (e *Entry) IsDue(now time.Time) bool {
	return !e.TriggerMoment.After(now)
}

// String renders the entry for logs.
func (e *Entry) String() string {
	state := "off"
	if e.Active {
		state = "on"
	}

	return fmt.Sprintf("%s %s (%s)", FormatMoment(e.TriggerMoment), state, e.ID)
}

// CloneEntries copies every entry of the slice.
func CloneEntries(entries []*Entry) []*Entry {
	result := make([]*Entry, 0, len(entries))
	for _, entry := range entries {
		result = append(result, entry.Clone())
	}

	return result
}

// ValidateFuture returns ErrNotInFuture unless moment is strictly after now.
func ValidateFuture(moment, now time.Time) error {
	if !moment.After(now) {
		return fmt.Errorf("%w: %s", ErrNotInFuture, FormatMoment(moment))
	}

	return nil
}

// TruncateMoment drops everything below minutes.
func TruncateMoment(moment time.Time) time.Time {
	return moment.Truncate(time.Minute)
}

// FormatMoment renders a moment in MomentLayout.
func FormatMoment(moment time.Time) string {
	return moment.Format(MomentLayout)
}

// ParseStoredMoment parses a MomentLayout string in the given location.
func ParseStoredMoment(value string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}

	moment, err := time.ParseInLocation(MomentLayout, strings.TrimSpace(value), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q: %w", ErrInvalidMoment, value, err)
	}

	return moment, nil
}

// ParseMoment combines a picked calendar date with hour and minute selections
// into a single local moment.
func ParseMoment(date string, hour, minute int, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}

	if hour < 0 || hour > 23 {
		return time.Time{}, fmt.Errorf("%w: hour %d out of range", ErrInvalidMoment, hour)
	}

	if minute < 0 || minute > 59 {
		return time.Time{}, fmt.Errorf("%w: minute %d out of range", ErrInvalidMoment, minute)
	}

	date = strings.TrimSpace(date)

	for _, layout := range dateLayouts {
		day, err := time.ParseInLocation(layout, date, loc)
		if err != nil {
			continue
		}

		return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, loc), nil
	}

	return time.Time{}, fmt.Errorf("%w: unrecognized date %q", ErrInvalidMoment, date)
}

// IsValidationError reports whether err was caused by bad user input.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrNotInFuture) || errors.Is(err, ErrInvalidMoment)
}
