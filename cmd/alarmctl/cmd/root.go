package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/oshokin/alarm-clock/internal/config"
	"github.com/oshokin/alarm-clock/internal/logger"
	"github.com/oshokin/alarm-clock/internal/service/control"
	"github.com/oshokin/alarm-clock/internal/version"
)

// clockInterval is how often `alarmctl clock` redraws.
const clockInterval = time.Second

var (
	// cfgPath stores the configuration file path.
	cfgPath string
	// serverAddress overrides the daemon address from config.
	serverAddress string

	// date, hour and minute are the picked alarm moment for `add`.
	date         string
	hour, minute int

	// rootCmd represents the base command for controlling the daemon.
	rootCmd = &cobra.Command{
		Use:   "alarmctl",
		Short: "Manage alarms of the alarm clock daemon.",
		Long: `Talks to a running alarmd to add, list, toggle and delete alarms,
silence a ringing alarm and watch the clock.

Alarm ids may be abbreviated to any unique prefix shown by "alarmctl list".`,
		SilenceUsage: true,
	}

	addCmd = &cobra.Command{
		Use:   "add",
		Short: "Schedule an alarm for a date and time.",
		Long: `Schedules an alarm at the picked date, hour and minute in local time.
The date may be written as YYYY-MM-DD, MM/DD/YY or MM/DD/YYYY.
Alarms must be in the future; the current minute is rejected.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return run(func(ctx context.Context, console *control.Console) error {
				return console.Add(ctx, date, hour, minute)
			})
		},
	}

	listCmd = &cobra.Command{
		Use:   "list",
		Short: "List alarms in the order they were added.",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return run(func(ctx context.Context, console *control.Console) error {
				return console.List(ctx)
			})
		},
	}

	toggleCmd = &cobra.Command{
		Use:   "toggle <id>",
		Short: "Turn an alarm on or off.",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return run(func(ctx context.Context, console *control.Console) error {
				return console.Toggle(ctx, args[0])
			})
		},
	}

	deleteCmd = &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete an alarm.",
		Args:    cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return run(func(ctx context.Context, console *control.Console) error {
				return console.Delete(ctx, args[0])
			})
		},
	}

	stopCmd = &cobra.Command{
		Use:   "stop",
		Short: "Silence the ringing alarm.",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return run(func(ctx context.Context, console *control.Console) error {
				return console.Stop(ctx)
			})
		},
	}

	statusCmd = &cobra.Command{
		Use:   "status",
		Short: "Show the daemon time, player state and next alarm.",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return run(func(ctx context.Context, console *control.Console) error {
				return console.Status(ctx)
			})
		},
	}

	clockCmd = &cobra.Command{
		Use:   "clock",
		Short: "Show the current time once a second until interrupted.",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return run(func(ctx context.Context, console *control.Console) error {
				return console.Clock(ctx, clockInterval)
			})
		},
	}
)

// run executes action against the daemon with graceful interrupt handling.
func run(action control.Action) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	return control.Run(ctx, &control.Options{
		ConfigPath:    cfgPath,
		ServerAddress: serverAddress,
	}, action)
}

// Execute runs the alarmctl CLI and exits with non-zero status on error.
func Execute() {
	// Keep log lines off the rendered output.
	logger.SetLogger(logger.NewWithWriter(os.Stderr, nil))
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.PersistentFlags().StringVar(&serverAddress, "server", "", "daemon address (overrides config)")

	addCmd.Flags().StringVarP(&date, "date", "d", "", "alarm date, e.g. 2030-01-31")
	addCmd.Flags().IntVarP(&hour, "hour", "H", 0, "alarm hour, 0-23")
	addCmd.Flags().IntVarP(&minute, "minute", "m", 0, "alarm minute, 0-59")

	for _, name := range []string{"date", "hour"} {
		if err := addCmd.MarkFlagRequired(name); err != nil {
			panic(err)
		}
	}

	rootCmd.AddCommand(addCmd, listCmd, toggleCmd, deleteCmd, stopCmd, statusCmd, clockCmd)
}
