// Package cmd provides the CLI commands for fzsearch.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/momingse/fzsearch/internal/config"
	ferrors "github.com/momingse/fzsearch/internal/errors"
	"github.com/momingse/fzsearch/internal/logging"
	"github.com/momingse/fzsearch/internal/profiling"
	"github.com/momingse/fzsearch/pkg/version"
)

// rootState is shared by every subcommand of one root command.
type rootState struct {
	configPath string
	debug      bool
	logFile    string
	profile    profiling.Config

	cfg     *config.Config
	cfgErr  error
	loaded  bool
	logger  *slog.Logger
	cleanup func()
	session *profiling.Session
}

// config loads the configuration once: --config when given, otherwise the
// current directory's files.
func (s *rootState) config() (*config.Config, error) {
	if s.loaded {
		return s.cfg, s.cfgErr
	}
	s.loaded = true

	if s.configPath != "" {
		s.cfg, s.cfgErr = config.LoadFile(s.configPath)
	} else {
		dir, err := os.Getwd()
		if err != nil {
			s.cfgErr = fmt.Errorf("failed to get current directory: %w", err)
			return nil, s.cfgErr
		}
		s.cfg, s.cfgErr = config.Load(dir)
	}
	return s.cfg, s.cfgErr
}

// NewRootCmd creates the root command for the fzsearch CLI.
func NewRootCmd() *cobra.Command {
	cmd, _ := newRootCmd()
	return cmd
}

func newRootCmd() (*cobra.Command, *rootState) {
	state := &rootState{logger: logging.Discard()}

	cmd := &cobra.Command{
		Use:   "fzsearch",
		Short: "Fuzzy search over text and structured records",
		Long: `fzsearch ranks records against a query using local alignment, so
typos, missing letters and reordered words still find their match.

Records are read from JSON, YAML or plain-text files. Structured records can
be restricted to selected fields with --keys.`,
		Version:       version.Short(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.SetVersionTemplate("fzsearch version {{.Version}}\n")

	cmd.PersistentFlags().StringVarP(&state.configPath, "config", "c", "", "Config file (default: .fzsearch.yaml in the current directory)")
	cmd.PersistentFlags().BoolVar(&state.debug, "debug", false, "Enable debug logging")
	cmd.PersistentFlags().StringVar(&state.logFile, "log-file", "", "Also write logs to this file")
	cmd.PersistentFlags().StringVar(&state.profile.CPU, "profile-cpu", "", "Write CPU profile to file")
	cmd.PersistentFlags().StringVar(&state.profile.Heap, "profile-mem", "", "Write memory profile to file")
	cmd.PersistentFlags().StringVar(&state.profile.Trace, "profile-trace", "", "Write execution trace to file")

	cmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		return state.start(cmd)
	}
	cmd.PersistentPostRunE = func(_ *cobra.Command, _ []string) error {
		return state.stop()
	}

	cmd.AddCommand(newSearchCmd(state))
	cmd.AddCommand(newPickCmd(state))
	cmd.AddCommand(newConfigCmd(state))
	cmd.AddCommand(newVersionCmd())

	return cmd, state
}

// start sets up logging and profiling. A broken config file does not stop
// commands that never read it; logging then falls back to defaults.
func (s *rootState) start(cmd *cobra.Command) error {
	logCfg := logging.DefaultConfig()
	if cfg, err := s.config(); err == nil {
		logCfg = cfg.Logging
	}
	if s.debug {
		logCfg.Level = "debug"
	}
	if s.logFile != "" {
		logCfg.FilePath = s.logFile
	}

	logger, cleanup, err := logging.SetupWithWriter(logCfg, cmd.ErrOrStderr())
	if err != nil {
		return ferrors.ConfigError("failed to set up logging", err)
	}
	s.logger = logger
	s.cleanup = cleanup

	if s.profile.Enabled() {
		session, err := profiling.Start(s.profile)
		if err != nil {
			return err
		}
		s.session = session
	}

	s.logger.Debug("command_started",
		slog.String("command", cmd.CommandPath()),
		slog.String("version", version.Short()))
	return nil
}

func (s *rootState) stop() error {
	var err error
	if s.session != nil {
		err = s.session.Stop()
		s.session = nil
	}
	if s.cleanup != nil {
		s.cleanup()
		s.cleanup = nil
	}
	return err
}

// Execute runs the root command, printing errors to stderr.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	root, state := newRootCmd()
	err := root.ExecuteContext(ctx)
	// PersistentPostRunE is skipped when a command fails.
	_ = state.stop()
	if err != nil {
		_, _ = fmt.Fprintln(root.ErrOrStderr(), ferrors.FormatForCLI(err))
	}
	return err
}
