package player

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"slices"
	"strings"

	"github.com/oshokin/alarm-clock/internal/config"
)

// windowsScript plays the clip through WPF MediaPlayer and blocks until it ends.
const windowsScript = "Add-Type -AssemblyName presentationCore; " +
	"$p = New-Object System.Windows.Media.MediaPlayer; " +
	"$p.Open([uri]'" + config.SoundFilePlaceholder + "'); " +
	"$p.Play(); Start-Sleep -Milliseconds 500; " +
	"while ($p.Position -lt $p.NaturalDuration.TimeSpan) { Start-Sleep -Milliseconds 200 }"

var (
	// ErrUnsupportedOS indicates there is no default audio tool for the current OS.
	ErrUnsupportedOS = errors.New("unsupported operating system")
	// errEmptyCommand is returned when the command has no program.
	errEmptyCommand = errors.New("player command is empty")
)

// CommandBackend plays the clip with an external audio tool.
type CommandBackend struct {
	// argv is the expanded command line.
	argv []string
}

// DefaultCommand returns the built-in audio tool invocation for an OS:
// - Linux:   `ffplay -nodisp -autoexit -loglevel quiet <file>`
// - macOS:   `afplay <file>`
// - Windows: PowerShell with WPF MediaPlayer
func DefaultCommand(goos string) ([]string, error) {
	osName := strings.ToLower(goos)

	switch {
	case strings.Contains(osName, "linux"):
		return []string{"ffplay", "-nodisp", "-autoexit", "-loglevel", "quiet", config.SoundFilePlaceholder}, nil
	case strings.Contains(osName, "darwin"):
		return []string{"afplay", config.SoundFilePlaceholder}, nil
	case strings.Contains(osName, "windows"):
		return []string{"powershell.exe", "-NoProfile", "-NonInteractive", "-Command", windowsScript}, nil
	default:
		return nil, fmt.Errorf("no default audio tool for %s: %w", goos, ErrUnsupportedOS)
	}
}

// NewCommandBackend expands command with the clip path. An empty command
// selects DefaultCommand for the running OS. When no argument carries the
// placeholder the path is appended.
func NewCommandBackend(command []string, soundFile string) (*CommandBackend, error) {
	if len(command) == 0 {
		var err error

		command, err = DefaultCommand(runtime.GOOS)
		if err != nil {
			return nil, err
		}
	}

	if strings.TrimSpace(command[0]) == "" {
		return nil, errEmptyCommand
	}

	return &CommandBackend{argv: expand(command, soundFile)}, nil
}

// Args returns a copy of the expanded command line.
func (b *CommandBackend) Args() []string {
	return slices.Clone(b.argv)
}

// PlayOnce runs the tool and waits for it; cancelling ctx kills it.
func (b *CommandBackend) PlayOnce(ctx context.Context) error {
	//nolint:gosec // The command line comes from the user's own settings.
	cmd := exec.CommandContext(ctx, b.argv[0], b.argv[1:]...)

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("run %s: %w", b.argv[0], err)
	}

	return nil
}

// expand substitutes the placeholder in every argument.
func expand(command []string, soundFile string) []string {
	result := make([]string, 0, len(command)+1)
	substituted := false

	for _, arg := range command {
		if strings.Contains(arg, config.SoundFilePlaceholder) {
			substituted = true
			arg = strings.ReplaceAll(arg, config.SoundFilePlaceholder, soundFile)
		}

		result = append(result, arg)
	}

	if !substituted {
		result = append(result, soundFile)
	}

	return result
}
