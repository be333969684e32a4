package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/hargabyte/ctx/internal/config"
	"github.com/hargabyte/ctx/internal/logging"
	"github.com/hargabyte/ctx/internal/output"
	"github.com/hargabyte/ctx/internal/workspace"
)

// usageArgs wraps a cobra argument validator so its failures exit with
// ExitUsage.
func usageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return usageError(err)
		}
		return nil
	}
}

// loadConfig reads --config when given, else the config found from the
// root, else the defaults.
func loadConfig() (*config.Config, error) {
	if configPath != "" {
		cfg, err := config.LoadFromPath(configPath)
		if err != nil {
			return nil, err
		}
		return cfg, nil
	}
	return config.Load(rootDir)
}

// newLogger builds the command logger. A configured log file takes the
// place of stderr. The returned closer is never nil.
func newLogger(cmd *cobra.Command, cfg *config.Config) (*slog.Logger, func(), error) {
	level := logging.LevelFromVerbosity(verbose, quiet, cfg.Log.Level)
	if cfg.Log.File == "" {
		return logging.New(cmd.ErrOrStderr(), level), func() {}, nil
	}
	path := cfg.Log.File
	if !filepath.IsAbs(path) {
		path = filepath.Join(rootDir, path)
	}
	logger, f, err := logging.NewFile(path, level)
	if err != nil {
		return nil, nil, ioError(err)
	}
	return logger, func() { f.Close() }, nil
}

// session is what a command runs against.
type session struct {
	ws     *workspace.Workspace
	logger *slog.Logger
	format output.Format
	close  func()
}

func (s *session) Close() {
	if err := s.ws.Close(); err != nil {
		s.logger.Warn("closing workspace", "error", err)
	}
	s.close()
}

// openSession loads the config, builds the logger and opens the
// workspace at --root.
func openSession(cmd *cobra.Command) (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	format, err := resolveFormat(cfg)
	if err != nil {
		return nil, err
	}
	logger, closeLog, err := newLogger(cmd, cfg)
	if err != nil {
		return nil, err
	}
	ws, err := workspace.Open(workspace.Options{
		Root:    rootDir,
		Config:  cfg,
		Persist: persist,
		Logger:  logger,
	})
	if err != nil {
		closeLog()
		return nil, err
	}
	return &session{ws: ws, logger: logger, format: format, close: closeLog}, nil
}

func resolveFormat(cfg *config.Config) (output.Format, error) {
	name := outputFormat
	if name == "" {
		name = cfg.Output.Format
	}
	f, err := output.ParseFormat(name)
	if err != nil {
		return "", usageError(err)
	}
	return f, nil
}

// write renders v in the session format to the command's stdout.
func (s *session) write(cmd *cobra.Command, v any) error {
	return writeTo(cmd.OutOrStdout(), s.format, v)
}

func writeTo(w io.Writer, f output.Format, v any) error {
	if err := output.Write(w, f, v); err != nil {
		return ioError(fmt.Errorf("writing output: %w", err))
	}
	return nil
}

// readInput reads a file argument, or stdin for "-".
func readInput(name string) ([]byte, error) {
	if name == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, ioError(fmt.Errorf("reading stdin: %w", err))
		}
		return data, nil
	}
	return os.ReadFile(name)
}
