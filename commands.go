package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"markestedt/stratagem/config"
	"markestedt/stratagem/keys"
	"markestedt/stratagem/monitor"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	Verbose    bool
}

// NewRootCommand creates the root command. Without a subcommand it behaves
// like "run".
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}
	run := newRunCommand(opts)

	cmd := &cobra.Command{
		Use:   "stratagem",
		Short: "Play key macros when a chord is pressed",
		Long: `Stratagem polls the keyboard and, when a configured chord goes down,
holds a key and taps a fixed sequence while it is held.

Each chord fires once per press. Release its first key to fire it again.`,
		SilenceUsage:  true,
		SilenceErrors: true, // main logs the error
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			setupLogging(cmd.OutOrStdout(), opts.Verbose)
			if opts.ConfigPath == "" {
				path, err := config.DefaultPath()
				if err != nil {
					return err
				}
				opts.ConfigPath = path
			}
			return nil
		},
		RunE: run.RunE,
	}
	cmd.Flags().AddFlagSet(run.Flags())

	// Global flags
	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "config file (.toml, .yaml or .yml)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging")

	cmd.AddCommand(run)
	cmd.AddCommand(newListCommand(opts))
	cmd.AddCommand(newValidateCommand(opts))
	cmd.AddCommand(newKeysCommand())

	return cmd
}

func setupLogging(w io.Writer, verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
}

func loadConfig(opts *RootOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	slog.Debug("Configuration loaded", "path", opts.ConfigPath, "triggers", len(cfg.Triggers))
	return cfg, nil
}

func newRunCommand(rootOpts *RootOptions) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Watch for trigger chords and play their macros",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(rootOpts)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			slog.Info("Configuration loaded", "path", rootOpts.ConfigPath)

			agent, err := NewAgent(cfg, AgentOptions{DryRun: dryRun, Logger: slog.Default()})
			if err != nil {
				return fmt.Errorf("failed to create agent: %w", err)
			}
			if dryRun {
				slog.Info("Dry run, key events are logged instead of sent")
			}

			if err := agent.Run(cmd.Context()); err != nil {
				return err
			}
			slog.Info("Stratagem stopped")
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "log macro key events instead of sending them")

	return cmd
}

func newListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print the configured triggers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(rootOpts)
			if err != nil {
				return err
			}
			triggers, err := cfg.BuildTriggers()
			if err != nil {
				return err
			}
			return monitor.WriteSummary(cmd.OutOrStdout(), triggers)
		},
	}
}

func newValidateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the config file and report every problem",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(rootOpts)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s: ok, %d triggers\n", rootOpts.ConfigPath, len(cfg.Triggers))
			return err
		},
	}
}

func newKeysCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "Print every key name accepted in the config",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			for _, k := range keys.All() {
				if _, err := fmt.Fprintln(w, k); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
