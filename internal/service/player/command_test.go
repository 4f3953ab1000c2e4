package player

import (
	"context"
	"os/exec"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestDefaultCommand checks the built-in tool per OS and the unsupported case.
func TestDefaultCommand(t *testing.T) {
	t.Parallel()

	linux, err := DefaultCommand("linux")
	require.NoError(t, err)
	require.Equal(t, "ffplay", linux[0])

	darwin, err := DefaultCommand("darwin")
	require.NoError(t, err)
	require.Equal(t, []string{"afplay", "{file}"}, darwin)

	windows, err := DefaultCommand("windows")
	require.NoError(t, err)
	require.Equal(t, "powershell.exe", windows[0])
	require.Contains(t, windows[len(windows)-1], "{file}")

	_, err = DefaultCommand("plan9")
	require.ErrorIs(t, err, ErrUnsupportedOS)
}

// TestNewCommandBackend verifies placeholder expansion and path appending.
func TestNewCommandBackend(t *testing.T) {
	t.Parallel()

	b, err := NewCommandBackend([]string{"aplay", "-q", "{file}"}, "/tmp/ring.wav")
	require.NoError(t, err)
	require.Equal(t, []string{"aplay", "-q", "/tmp/ring.wav"}, b.Args())

	b, err = NewCommandBackend([]string{"mpg123", "-q"}, "/tmp/ring.mp3")
	require.NoError(t, err)
	require.Equal(t, []string{"mpg123", "-q", "/tmp/ring.mp3"}, b.Args())

	b, err = NewCommandBackend([]string{"sh", "-c", "play '{file}' && echo '{file}'"}, "/a.wav")
	require.NoError(t, err)
	require.Equal(t, "play '/a.wav' && echo '/a.wav'", b.Args()[2])

	_, err = NewCommandBackend([]string{""}, "/a.wav")
	require.Error(t, err)

	// Args returns a copy.
	args := b.Args()
	args[0] = "changed"
	require.Equal(t, "sh", b.Args()[0])
}

// TestNewCommandBackend_Default ensures the running OS default is used when no command is configured.
func TestNewCommandBackend_Default(t *testing.T) {
	t.Parallel()

	want, err := DefaultCommand(runtime.GOOS)
	if err != nil {
		t.Skipf("no default audio tool on %s", runtime.GOOS)
	}

	b, err := NewCommandBackend(nil, "/tmp/ring.mp3")
	require.NoError(t, err)
	require.Equal(t, want[0], b.Args()[0])
	require.True(t, strings.Contains(strings.Join(b.Args(), " "), "/tmp/ring.mp3"))
}

// TestCommandBackend_PlayOnce runs real processes: a missing tool fails and cancellation kills a running one.
func TestCommandBackend_PlayOnce(t *testing.T) {
	t.Parallel()

	missing, err := NewCommandBackend([]string{"alarm-clock-no-such-player"}, "/tmp/ring.mp3")
	require.NoError(t, err)
	require.Error(t, missing.PlayOnce(context.Background()))

	if _, err = exec.LookPath("sleep"); err != nil {
		t.Skip("sleep is not available")
	}

	// The clip path lands as the last argument of sleep, so use a numeric one.
	long, err := NewCommandBackend([]string{"sleep"}, "30")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	started := time.Now()

	require.Error(t, long.PlayOnce(ctx))
	require.Less(t, time.Since(started), 10*time.Second)
}
