package control

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/google/uuid"

	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
)

// AlarmClient is the subset of the control API the console needs.
type AlarmClient interface {
	ListAlarms(ctx context.Context) ([]*domain.Entry, string, error)
	AddAlarm(ctx context.Context, date string, hour, minute int) (*domain.Entry, error)
	ToggleAlarm(ctx context.Context, id uuid.UUID) (*domain.Entry, error)
	DeleteAlarm(ctx context.Context, id uuid.UUID) error
	StopSound(ctx context.Context) (domain.Playback, error)
	GetStatus(ctx context.Context) (*domain.Status, error)
}

// shortIDLength is how many id characters the list shows.
const shortIDLength = 8

var (
	// ErrUnknownID is returned when no alarm matches an id prefix.
	ErrUnknownID = errors.New("no alarm matches id")
	// ErrAmbiguousID is returned when several alarms match an id prefix.
	ErrAmbiguousID = errors.New("id prefix matches several alarms")
)

// Console renders control API results for a terminal.
type Console struct {
	// client talks to the daemon.
	client AlarmClient
	// out receives rendered text.
	out io.Writer
	// now returns the current time, used for relative times.
	now func() time.Time

	on     *color.Color
	off    *color.Color
	alert  *color.Color
	muted  *color.Color
	strong *color.Color
}

// ConsoleOption configures a Console.
type ConsoleOption func(*Console)

// WithColor forces colored output on or off instead of detecting a terminal.
func WithColor(enabled bool) ConsoleOption {
	return func(c *Console) {
		for _, style := range []*color.Color{c.on, c.off, c.alert, c.muted, c.strong} {
			if enabled {
				style.EnableColor()
			} else {
				style.DisableColor()
			}
		}
	}
}

// WithClock overrides the time source used for relative times.
func WithClock(now func() time.Time) ConsoleOption {
	return func(c *Console) {
		if now != nil {
			c.now = now
		}
	}
}

// NewConsole creates a console writing to out.
func NewConsole(client AlarmClient, out io.Writer, opts ...ConsoleOption) *Console {
	c := &Console{
		client: client,
		out:    out,
		now:    time.Now,
		on:     color.New(color.FgGreen, color.Bold),
		off:    color.New(color.FgRed),
		alert:  color.New(color.FgRed, color.Bold),
		muted:  color.New(color.Faint),
		strong: color.New(color.Bold),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// List prints every alarm with its id, time and state.
func (c *Console) List(ctx context.Context) error {
	entries, notice, err := c.client.ListAlarms(ctx)
	if err != nil {
		return err
	}

	c.printNotice(notice)

	if len(entries) == 0 {
		c.printf("%s\n", c.muted.Sprint("No alarms set."))
		return nil
	}

	tw := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tTIME\tWHEN\tSTATE")

	for _, entry := range entries {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			shortID(entry.ID),
			domain.FormatMoment(entry.TriggerMoment),
			c.relative(entry.TriggerMoment),
			c.state(entry.Active))
	}

	return tw.Flush()
}

// Add schedules an alarm and prints it.
func (c *Console) Add(ctx context.Context, date string, hour, minute int) error {
	entry, err := c.client.AddAlarm(ctx, date, hour, minute)
	if err != nil {
		return err
	}

	c.printf("Alarm %s set for %s (%s)\n",
		shortID(entry.ID), c.strong.Sprint(domain.FormatMoment(entry.TriggerMoment)), c.relative(entry.TriggerMoment))

	return nil
}

// Toggle flips the alarm matching idPrefix.
func (c *Console) Toggle(ctx context.Context, idPrefix string) error {
	id, err := c.resolveID(ctx, idPrefix)
	if err != nil {
		return err
	}

	entry, err := c.client.ToggleAlarm(ctx, id)
	if err != nil {
		return err
	}

	c.printf("Alarm %s at %s is now %s\n",
		shortID(entry.ID), domain.FormatMoment(entry.TriggerMoment), c.state(entry.Active))

	return nil
}

// Delete removes the alarm matching idPrefix.
func (c *Console) Delete(ctx context.Context, idPrefix string) error {
	id, err := c.resolveID(ctx, idPrefix)
	if err != nil {
		return err
	}

	if err = c.client.DeleteAlarm(ctx, id); err != nil {
		return err
	}

	c.printf("Alarm %s deleted\n", shortID(id))

	return nil
}

// Stop silences the ringing alarm.
func (c *Console) Stop(ctx context.Context) error {
	playback, err := c.client.StopSound(ctx)
	if err != nil {
		return err
	}

	c.printf("Player: %s\n", c.playback(playback))

	return nil
}

// Status prints the daemon snapshot.
func (c *Console) Status(ctx context.Context) error {
	status, err := c.client.GetStatus(ctx)
	if err != nil {
		return err
	}

	c.printNotice(status.Notice)
	c.printf("Time:   %s\n", c.strong.Sprint(status.Now.Format(time.DateTime)))
	c.printf("Player: %s\n", c.playback(status.Playback))
	c.printf("Armed:  %d\n", status.Armed)
	c.printf("Next:   %s\n", c.next(status.Next))

	return nil
}

// Clock redraws the current time and player state every interval until ctx is done.
func (c *Console) Clock(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		status, err := c.client.GetStatus(ctx)
		if err != nil {
			// Interrupted mid-call.
			if ctx.Err() != nil {
				c.printf("\n")
				return nil
			}

			return err
		}

		c.printf("\r\033[K%s", c.clockLine(status))

		select {
		case <-ctx.Done():
			c.printf("\n")
			return nil
		case <-ticker.C:
		}
	}
}

// clockLine renders one clock frame.
func (c *Console) clockLine(status *domain.Status) string {
	parts := []string{
		c.strong.Sprint(status.Now.Format(time.TimeOnly)),
		status.Now.Format(time.DateOnly),
		c.playback(status.Playback),
		"next: " + c.next(status.Next),
	}

	return strings.Join(parts, "  |  ")
}

// resolveID finds the alarm whose id starts with prefix.
func (c *Console) resolveID(ctx context.Context, prefix string) (uuid.UUID, error) {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	if prefix == "" {
		return uuid.Nil, fmt.Errorf("%w %q", ErrUnknownID, prefix)
	}

	if id, err := uuid.Parse(prefix); err == nil {
		return id, nil
	}

	entries, _, err := c.client.ListAlarms(ctx)
	if err != nil {
		return uuid.Nil, err
	}

	var matches []uuid.UUID

	for _, entry := range entries {
		if strings.HasPrefix(entry.ID.String(), prefix) {
			matches = append(matches, entry.ID)
		}
	}

	switch len(matches) {
	case 0:
		return uuid.Nil, fmt.Errorf("%w %q", ErrUnknownID, prefix)
	case 1:
		return matches[0], nil
	default:
		return uuid.Nil, fmt.Errorf("%w: %q", ErrAmbiguousID, prefix)
	}
}

// playback describes the player state and whether stop is available.
func (c *Console) playback(playback domain.Playback) string {
	if playback.State != domain.PlayerPlaying {
		return c.muted.Sprint("idle (stop disabled)")
	}

	description := c.alert.Sprint("RINGING")
	if playback.EntryID != uuid.Nil {
		description += " for " + shortID(playback.EntryID)
	}

	if !playback.Since.IsZero() {
		description += " since " + playback.Since.Format(time.TimeOnly)
	}

	return description + " (run `alarmctl stop`)"
}

// next describes the upcoming alarm.
func (c *Console) next(entry *domain.Entry) string {
	if entry == nil {
		return c.muted.Sprint("none")
	}

	return fmt.Sprintf("%s (%s)", domain.FormatMoment(entry.TriggerMoment), c.relative(entry.TriggerMoment))
}

// state renders the active flag.
func (c *Console) state(active bool) string {
	if active {
		return c.on.Sprint("ON")
	}

	return c.off.Sprint("OFF")
}

// relative renders moment relative to now, e.g. "2 hours from now".
func (c *Console) relative(moment time.Time) string {
	return humanize.RelTime(moment, c.now(), "ago", "from now")
}

// printNotice shows a daemon load problem.
func (c *Console) printNotice(notice string) {
	if notice == "" {
		return
	}

	c.printf("%s\n", c.alert.Sprint(notice))
}

// printf writes to out, ignoring terminal write errors.
func (c *Console) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(c.out, format, args...)
}

// shortID abbreviates an id for display.
func shortID(id uuid.UUID) string {
	return id.String()[:shortIDLength]
}
