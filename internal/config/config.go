package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/alarm-clock/internal/logger"
)

// Config holds settings shared by alarmd and alarmctl.
type Config struct {
	// ListenAddress is the loopback address of the daemon control API.
	ListenAddress string `yaml:"listen_addr"`
	// AlarmsFile is the path to the JSON file storing alarm entries.
	AlarmsFile string `yaml:"alarms_file"`
	// SoundFile is the audio clip looped when an alarm fires.
	SoundFile string `yaml:"sound_file"`
	// PlayerCommand overrides the external audio tool. "{file}" is replaced by SoundFile.
	PlayerCommand []string `yaml:"player_command,omitempty"`
	// LogLevel is the minimum level of log lines, e.g. "info" or "debug".
	LogLevel string `yaml:"log_level"`
	// Timeout is the duration for control API calls.
	Timeout time.Duration `yaml:"timeout"`
}

const (
	// DefaultConfigFilename is the default filename for settings.
	DefaultConfigFilename = "alarm-clock-settings.yaml"

	// DefaultAlarmsFilename is the default filename for persisted alarms.
	DefaultAlarmsFilename = "alarms.json"

	// DefaultSoundFilename is the default alarm clip.
	DefaultSoundFilename = "alarm_sound.mp3"

	// DefaultListenAddress keeps the control API on the local machine.
	DefaultListenAddress = "127.0.0.1:50061"

	// DefaultLogLevel is used when no level is configured.
	DefaultLogLevel = "info"

	// DefaultTimeout is the default duration for control API calls.
	DefaultTimeout = 5 * time.Second

	// DefaultFilePermissions is the default file permission for config and alarm files.
	DefaultFilePermissions = 0o600

	// SoundFilePlaceholder is substituted with the clip path in PlayerCommand.
	SoundFilePlaceholder = "{file}"
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errEmptyPlayerCommand is returned when player_command is present but has no program.
	errEmptyPlayerCommand = errors.New("player command must start with a program name")
)

// Default returns settings populated with defaults.
func Default() *Config {
	return &Config{
		ListenAddress: DefaultListenAddress,
		AlarmsFile:    DefaultAlarmsFilename,
		SoundFile:     DefaultSoundFilename,
		LogLevel:      DefaultLogLevel,
		Timeout:       DefaultTimeout,
	}
}

// Load reads configuration from the provided path and validates essential fields.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadOrDefault behaves like Load but falls back to Default when the file does not exist.
// The second result reports whether the file was found.
func LoadOrDefault(path string) (*Config, bool, error) {
	cfg, err := Load(path)

	switch {
	case err == nil:
		return cfg, true, nil
	case errors.Is(err, os.ErrNotExist):
		return Default(), false, nil
	default:
		return nil, false, err
	}
}

// Save writes settings to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the provided settings and fills defaults for optional fields.
func Validate(settings *Config) error {
	if settings == nil {
		return errConfigIsNotSet
	}

	if settings.ListenAddress == "" {
		settings.ListenAddress = DefaultListenAddress
	}

	if _, err := net.ResolveTCPAddr("tcp", settings.ListenAddress); err != nil {
		return fmt.Errorf("invalid listen address: %w", err)
	}

	if settings.Timeout <= 0 {
		settings.Timeout = DefaultTimeout
	}

	if settings.AlarmsFile == "" {
		settings.AlarmsFile = DefaultAlarmsFilename
	}

	if settings.SoundFile == "" {
		settings.SoundFile = DefaultSoundFilename
	}

	if settings.LogLevel == "" {
		settings.LogLevel = DefaultLogLevel
	}

	if _, ok := logger.ParseLogLevel(settings.LogLevel); !ok {
		return fmt.Errorf("invalid log level %q", settings.LogLevel)
	}

	if len(settings.PlayerCommand) > 0 && strings.TrimSpace(settings.PlayerCommand[0]) == "" {
		return errEmptyPlayerCommand
	}

	return nil
}
