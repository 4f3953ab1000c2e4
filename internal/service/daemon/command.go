package daemon

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	api "github.com/oshokin/alarm-clock/internal/api/grpc/alarm"
	"github.com/oshokin/alarm-clock/internal/config"
	"github.com/oshokin/alarm-clock/internal/logger"
	"github.com/oshokin/alarm-clock/internal/repository/alarms"
	"github.com/oshokin/alarm-clock/internal/service/player"
	"github.com/oshokin/alarm-clock/internal/version"
)

// Options controls the alarmd process and configuration.
type Options struct {
	// ConfigPath specifies the path to settings YAML file.
	ConfigPath string
	// ListenAddress overrides the control API address from settings.
	ListenAddress string
	// AlarmsFile overrides the path of the persisted alarms.
	AlarmsFile string
	// SoundFile overrides the alarm clip.
	SoundFile string
	// LogLevel overrides the configured log level.
	LogLevel string
	// AllowMultipleInstances skips the running-process check.
	AllowMultipleInstances bool

	// Backend replaces the external audio tool. Used by tests.
	Backend player.Backend
	// Fs replaces the OS filesystem for the alarms file. Used by tests.
	Fs afero.Fs
	// Listener replaces the TCP listener. Used by tests.
	Listener net.Listener
}

// Run starts the alarm daemon and blocks until ctx is canceled or the server stops.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "alarmd")

	settings, found, err := config.LoadOrDefault(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	applyOverrides(settings, opts)

	if err = config.Validate(settings); err != nil {
		return fmt.Errorf("validate settings: %w", err)
	}

	if err = logger.Configure(settings.LogLevel); err != nil {
		return fmt.Errorf("configure logger: %w", err)
	}

	if !found {
		logger.InfoKV(ctx, "Settings file not found, using defaults", "path", opts.ConfigPath)
	}

	if !opts.AllowMultipleInstances {
		if err = ensureSingleInstance(); err != nil {
			return err
		}
	}

	fs := opts.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}

	backend, err := newBackend(ctx, opts, settings)
	if err != nil {
		return err
	}

	repo := alarms.NewFileRepository(fs, settings.AlarmsFile)
	svc := newService(ctx, repo, player.New(backend))

	defer svc.Close(context.WithoutCancel(ctx))

	lis := opts.Listener
	if lis == nil {
		lc := net.ListenConfig{}

		lis, err = lc.Listen(ctx, "tcp", settings.ListenAddress)
		if err != nil {
			return fmt.Errorf("listen on %s: %w", settings.ListenAddress, err)
		}
	}

	grpcServer := grpc.NewServer()
	api.Register(grpcServer, api.NewServer(svc))

	logger.InfoKV(ctx, "Alarm daemon listening",
		"version", version.Short(),
		"commit", version.Commit,
		"listen_address", lis.Addr().String(),
		"alarms_file", settings.AlarmsFile,
		"sound_file", settings.SoundFile)

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		if serveErr := grpcServer.Serve(lis); serveErr != nil && !errors.Is(serveErr, grpc.ErrServerStopped) {
			return fmt.Errorf("serve gRPC: %w", serveErr)
		}

		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()
		logger.Info(ctx, "Shutting down gRPC server")
		grpcServer.GracefulStop()

		return nil
	})

	if err = group.Wait(); err != nil {
		return err
	}

	logger.Info(ctx, "Alarm daemon stopped")

	return nil
}

// applyOverrides copies non-empty command line values over settings.
func applyOverrides(settings *config.Config, opts *Options) {
	if opts.ListenAddress != "" {
		settings.ListenAddress = opts.ListenAddress
	}

	if opts.AlarmsFile != "" {
		settings.AlarmsFile = opts.AlarmsFile
	}

	if opts.SoundFile != "" {
		settings.SoundFile = opts.SoundFile
	}

	if opts.LogLevel != "" {
		settings.LogLevel = opts.LogLevel
	}
}

// newBackend returns the injected backend or the external audio tool.
// A missing clip is not fatal: playback keeps retrying until it appears.
func newBackend(ctx context.Context, opts *Options, settings *config.Config) (player.Backend, error) {
	if opts.Backend != nil {
		return opts.Backend, nil
	}

	if exists, err := afero.Exists(afero.NewOsFs(), settings.SoundFile); err != nil || !exists {
		logger.WarnKV(ctx, "Alarm sound file is not available", "path", settings.SoundFile, "error", err)
	}

	backend, err := player.NewCommandBackend(settings.PlayerCommand, settings.SoundFile)
	if err != nil {
		return nil, fmt.Errorf("create audio backend: %w", err)
	}

	logger.DebugKV(ctx, "Audio backend ready", "command", backend.Args())

	return backend, nil
}
