package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/alarm-clock/internal/config"
	"github.com/oshokin/alarm-clock/internal/service/daemon"
	"github.com/oshokin/alarm-clock/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// alarmsFile path where alarms are persisted.
	alarmsFile string
	// soundFile is the clip looped while an alarm rings.
	soundFile string
	// logLevel overrides the configured log level.
	logLevel string

	// rootCmd represents the base command for running the alarm daemon.
	rootCmd = &cobra.Command{
		Use:   "alarmd [listen-address]",
		Short: "Run the alarm clock daemon.",
		Long: `Starts the alarm clock daemon that keeps alarms, rings them on time and serves alarmctl.

Alarms are persisted to a JSON file and re-armed on start; alarms that passed
while the daemon was down are kept but never ring. When an alarm is due the
sound file loops until it is stopped with "alarmctl stop".
Listen address can be provided as argument to override config (e.g., 127.0.0.1:50061).
Settings come from the configuration file; a missing file means defaults.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			// Use listen address argument if provided, otherwise rely on config.
			var listenAddress string
			if len(args) > 0 {
				listenAddress = args[0]
			}

			return daemon.Run(ctx, &daemon.Options{
				ConfigPath:    configPath,
				ListenAddress: listenAddress,
				AlarmsFile:    alarmsFile,
				SoundFile:     soundFile,
				LogLevel:      logLevel,
			})
		},
	}
)

// Execute runs the alarmd CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.Flags().StringVarP(&alarmsFile, "alarms-file", "a", "", "path to persist alarms (overrides config)")
	rootCmd.Flags().StringVarP(&soundFile, "sound-file", "s", "", "alarm sound clip (overrides config)")
	rootCmd.Flags().StringVarP(&logLevel, "log-level", "l", "", "minimum log level: debug, info, warn, error")
}
