package control

import (
	"context"
	"io"
	"os"

	"github.com/oshokin/alarm-clock/internal/config"
	"github.com/oshokin/alarm-clock/internal/logger"
	"github.com/oshokin/alarm-clock/internal/service/common"
)

// Options configures one alarmctl invocation.
type Options struct {
	// ConfigPath to YAML settings file, defaults to standard filename if empty.
	ConfigPath string
	// ServerAddress overrides the daemon address from config when specified.
	ServerAddress string
	// Out receives rendered output, stdout when nil.
	Out io.Writer
}

// Action is one alarmctl subcommand body.
type Action func(ctx context.Context, console *Console) error

// Run loads settings, connects to the daemon and executes action.
func Run(ctx context.Context, opts *Options, action Action) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "alarmctl")

	// A missing settings file means the daemon runs with defaults too.
	cfg, _, err := config.LoadOrDefault(opts.ConfigPath)
	if err != nil {
		return err
	}

	serverAddress := cfg.ListenAddress
	if opts.ServerAddress != "" {
		serverAddress = opts.ServerAddress
	}

	client, err := common.Dial(ctx, serverAddress, common.WithCallTimeout(cfg.Timeout))
	if err != nil {
		return err
	}

	defer func() {
		_ = client.Close()
	}()

	logger.DebugKV(ctx, "Connected to alarm daemon", "server_address", serverAddress)

	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	return action(ctx, NewConsole(client, out))
}
