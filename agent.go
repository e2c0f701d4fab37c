package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"markestedt/stratagem/config"
	"markestedt/stratagem/macro"
	"markestedt/stratagem/monitor"
	"markestedt/stratagem/platform"
)

// Agent coordinates key state polling and macro playback
type Agent struct {
	cfg      *config.Config
	source   platform.KeyState
	injector platform.Injector
	monitor  *monitor.Monitor
	logger   *slog.Logger
}

// AgentOptions controls how the agent talks to the OS.
type AgentOptions struct {
	// DryRun logs injected keys instead of sending them.
	DryRun bool
	Logger *slog.Logger
}

// NewAgent opens the platform key state source and injector and builds the
// monitor from cfg.
func NewAgent(cfg *config.Config, opts AgentOptions) (*Agent, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	popts := platform.Options{Devices: cfg.Input.Devices}

	source, err := platform.NewKeyState(popts)
	if err != nil {
		return nil, fmt.Errorf("failed to open key state source: %w", err)
	}

	var injector platform.Injector
	if opts.DryRun {
		injector = platform.NewLogInjector(logger)
	} else {
		injector, err = platform.NewInjector(popts)
		if err != nil {
			source.Close()
			return nil, fmt.Errorf("failed to create key injector: %w", err)
		}
	}

	agent, err := newAgent(cfg, source, injector, logger)
	if err != nil {
		agent.Close()
		return nil, err
	}
	return agent, nil
}

// newAgent wires already opened platform resources. The returned agent owns
// source and injector even when err is non-nil.
func newAgent(cfg *config.Config, source platform.KeyState, injector platform.Injector, logger *slog.Logger) (*Agent, error) {
	a := &Agent{
		cfg:      cfg,
		source:   source,
		injector: injector,
		logger:   logger,
	}

	triggers, err := cfg.BuildTriggers()
	if err != nil {
		return a, err
	}
	exitKey, err := cfg.ExitKey()
	if err != nil {
		return a, err
	}

	player := macro.NewPlayer(injector, macro.Options{StepDelay: cfg.Player.StepDelay.Std()})
	a.monitor, err = monitor.New(source, player, triggers, monitor.Options{
		PollInterval: cfg.Monitor.PollInterval.Std(),
		ExitKey:      exitKey,
		Logger:       logger,
	})
	if err != nil {
		return a, err
	}
	return a, nil
}

// Run polls until ctx is cancelled or the exit key is pressed, then
// releases the platform resources.
func (a *Agent) Run(ctx context.Context) error {
	defer func() {
		if err := a.Close(); err != nil {
			a.logger.Warn("Failed to close platform resources", "error", err)
		}
	}()

	if err := a.monitor.Run(ctx); err != nil {
		return fmt.Errorf("trigger monitor stopped: %w", err)
	}
	return nil
}

// Close releases the key state source and the injector.
func (a *Agent) Close() error {
	var errs []error
	if a.source != nil {
		errs = append(errs, a.source.Close())
		a.source = nil
	}
	if a.injector != nil {
		errs = append(errs, a.injector.Close())
		a.injector = nil
	}
	return errors.Join(errs...)
}
