package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestValidate checks format validations and default filling for Config.
func TestValidate(t *testing.T) {
	t.Parallel()

	require.Error(t, Validate(nil))

	// Empty settings get defaults.
	settings := new(Config)

	require.NoError(t, Validate(settings))
	require.Equal(t, DefaultListenAddress, settings.ListenAddress)
	require.Equal(t, DefaultAlarmsFilename, settings.AlarmsFile)
	require.Equal(t, DefaultSoundFilename, settings.SoundFile)
	require.Equal(t, DefaultLogLevel, settings.LogLevel)
	require.Equal(t, DefaultTimeout, settings.Timeout)

	// Bad socket.
	settings = &Config{
		ListenAddress: "bad:address",
	}

	require.Error(t, Validate(settings))

	// Bad log level.
	settings = &Config{
		LogLevel: "chatty",
	}

	require.Error(t, Validate(settings))

	// Player command without a program.
	settings = &Config{
		PlayerCommand: []string{" ", "{file}"},
	}

	require.Error(t, Validate(settings))
}

// TestSaveLoadRoundtrip ensures settings are persisted and loaded back correctly.
func TestSaveLoadRoundtrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")

	settings := &Config{
		ListenAddress: "127.0.0.1:50099",
		AlarmsFile:    filepath.Join(dir, "alarms.json"),
		SoundFile:     filepath.Join(dir, "ring.wav"),
		PlayerCommand: []string{"aplay", "-q", SoundFilePlaceholder},
		LogLevel:      "debug",
		Timeout:       3 * time.Second,
	}

	require.NoError(t, Save(path, settings))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, settings, loaded)

	// File exists.
	_, err = os.Stat(path)
	require.NoError(t, err)
}

// TestLoadOrDefault verifies the fallback for a missing file and error propagation for a broken one.
func TestLoadOrDefault(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	cfg, found, err := LoadOrDefault(filepath.Join(dir, "missing.yaml"))
	require.NoError(t, err)
	require.False(t, found)
	require.Equal(t, Default(), cfg)

	broken := filepath.Join(dir, "broken.yaml")
	require.NoError(t, os.WriteFile(broken, []byte("listen_addr: [unterminated"), DefaultFilePermissions))

	cfg, found, err = LoadOrDefault(broken)
	require.Error(t, err)
	require.False(t, found)
	require.Nil(t, cfg)
}
