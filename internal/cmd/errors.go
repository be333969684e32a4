package cmd

import (
	"errors"
	"io/fs"

	"github.com/hargabyte/ctx/internal/activity"
	"github.com/hargabyte/ctx/internal/config"
	"github.com/hargabyte/ctx/internal/index"
	"github.com/hargabyte/ctx/internal/parser"
	"github.com/hargabyte/ctx/internal/related"
)

// Exit codes.
const (
	ExitUsage    = 1
	ExitNotFound = 2
	ExitGit      = 3
	ExitIO       = 4
)

// ExitError carries the exit code a command failure maps to.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string { return e.Err.Error() }

func (e *ExitError) Unwrap() error { return e.Err }

func usageError(err error) error { return &ExitError{Code: ExitUsage, Err: err} }

func ioError(err error) error { return &ExitError{Code: ExitIO, Err: err} }

// exitCode classifies err. Explicit ExitErrors win; otherwise known
// sentinels decide, and anything else is an IO failure.
func exitCode(err error) int {
	var exit *ExitError
	if errors.As(err, &exit) {
		return exit.Code
	}

	var unsupported *parser.UnsupportedLanguageError
	var readErr *parser.FileReadError
	var parseErr *parser.ParseError
	switch {
	case errors.Is(err, config.ErrInvalidConfig):
		return ExitUsage
	case errors.Is(err, index.ErrRootNotFound),
		errors.Is(err, related.ErrNotIndexed),
		errors.Is(err, parser.ErrNoParsers),
		errors.Is(err, fs.ErrNotExist),
		errors.As(err, &unsupported),
		errors.As(err, &readErr),
		errors.As(err, &parseErr):
		return ExitNotFound
	case errors.Is(err, activity.ErrNotGitRepo):
		return ExitGit
	default:
		return ExitIO
	}
}
