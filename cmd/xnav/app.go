package main

import (
	"bufio"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"xnav/internal/config"
	"xnav/internal/errors"
	"xnav/internal/history"
	"xnav/internal/paths"
	"xnav/internal/resolve"
	"xnav/internal/slogutil"
	"xnav/internal/storage"
)

// Exit codes
const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

// needsHistory is the annotation key of commands that open the database.
const needsHistory = "xnav/history"

// usageError marks bad invocations (unknown flag, wrong argument count).
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

// usageArgs wraps a cobra argument validator so its failures exit with 2.
func usageArgs(fn cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := fn(cmd, args); err != nil {
			return &usageError{err: err}
		}
		return nil
	}
}

// app is the state of one invocation. The history database is opened only
// for commands annotated with needsHistory and closed when the command ends.
type app struct {
	stdin  *bufio.Reader
	stdout io.Writer
	stderr io.Writer

	verbosity int
	quiet     bool
	cwd       string
	now       func() time.Time

	load      *config.LoadResult
	logger    *slog.Logger
	logCloser io.Closer
	db        *storage.DB
	store     *history.Store
}

func newApp(stdin io.Reader, stdout, stderr io.Writer) *app {
	return &app{
		stdin:  bufio.NewReader(stdin),
		stdout: stdout,
		stderr: stderr,
		now:    time.Now,
		logger: slogutil.NewDiscardLogger(),
	}
}

// run executes one command line and returns the process exit code.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	a := newApp(stdin, stdout, stderr)
	root := newRootCmd(a)
	if args == nil {
		// cobra falls back to os.Args for nil
		args = []string{}
	}
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	a.close()
	if err == nil {
		return exitOK
	}
	a.reportError(err)
	return exitCode(err)
}

func exitCode(err error) int {
	var ue *usageError
	if stderrors.As(err, &ue) {
		return exitUsage
	}
	if errors.CodeOf(err) == errors.InvalidArgument {
		return exitUsage
	}
	return exitFailure
}

func (a *app) reportError(err error) {
	fmt.Fprintf(a.stderr, "xnav: %v\n", err)

	var xe *errors.XnavError
	if !stderrors.As(err, &xe) {
		return
	}
	if details, ok := xe.Details.(map[string]any); ok {
		if similar, ok := details["similar"].([]string); ok && len(similar) > 0 {
			fmt.Fprintln(a.stderr, "Similar paths:")
			for _, p := range similar {
				fmt.Fprintf(a.stderr, "  %s\n", p)
			}
		}
	}
	if a.verbosity > 0 {
		for _, fix := range xe.SuggestedFixes {
			if fix.Command != "" {
				fmt.Fprintf(a.stderr, "hint: %s (%s)\n", fix.Command, fix.Description)
			}
		}
	}
}

// setup loads the configuration and builds the logger. Configuration
// problems are logged and never fatal.
func (a *app) setup(cmd *cobra.Command) error {
	configPath, err := paths.ConfigPath()
	if err != nil {
		return errors.New(errors.InternalError, "cannot locate config directory", err)
	}
	a.load = config.LoadConfig(configPath)

	logger, closer, err := slogutil.Setup(a.load.Config.Logging, a.verbosity, a.quiet, a.stderr)
	a.logger, a.logCloser = logger, closer
	if err != nil {
		a.logger.Warn("Cannot open log file", "file", a.load.Config.Logging.File, "error", err.Error())
	}
	for _, w := range a.load.Warnings {
		a.logger.Warn("Invalid configuration, using defaults", "path", configPath, "error", w.Error())
	}

	if a.cwd == "" {
		if wd, err := os.Getwd(); err == nil {
			a.cwd = wd
		}
	}

	if cmd.Annotations[needsHistory] == "true" {
		return a.openHistory(cmd.Context())
	}
	return nil
}

func (a *app) openHistory(ctx context.Context) error {
	dbPath, err := paths.DatabasePath()
	if err != nil {
		return errors.New(errors.InternalError, "cannot locate data directory", err)
	}
	if _, err := paths.EnsureDir(filepath.Dir(dbPath)); err != nil {
		return errors.Persistence("failed to create data directory", err)
	}
	db, err := storage.Open(dbPath, a.logger)
	if err != nil {
		return errors.Persistence("failed to open history database", err)
	}
	a.db = db
	a.store = history.New(db, a.load.Config, a.load.Policy,
		history.WithClock(a.now),
		history.WithLogger(a.logger),
		history.WithWorkingDir(a.cwd),
	)

	if n, err := a.store.Maintenance().StartupClean(ctx); err != nil {
		a.logger.Warn("Startup clean failed", "error", err.Error())
	} else if n > 0 {
		a.logger.Info("Startup clean removed entries", "count", n)
	}
	return nil
}

func (a *app) resolver() *resolve.Resolver {
	return resolve.New(a.store, a.load.Config, a.load.Policy,
		resolve.WithClock(a.now),
		resolve.WithLogger(a.logger),
	)
}

// close releases the database and the log file. It is safe to call twice.
func (a *app) close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("Failed to close database", "error", err.Error())
		}
		a.db, a.store = nil, nil
	}
	if a.logCloser != nil {
		a.logCloser.Close()
		a.logCloser = nil
	}
}

// confirm asks a yes/no question on stdin. Anything but y or yes is no.
func (a *app) confirm(prompt string) bool {
	fmt.Fprintf(a.stderr, "%s [y/N] ", prompt)
	line, err := a.stdin.ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch trimLower(line) {
	case "y", "yes":
		return true
	}
	return false
}

func homeDir() (string, error) {
	home, err := paths.ExpandHome("~")
	if err != nil {
		return "", errors.New(errors.InternalError, "cannot determine home directory", err)
	}
	return home, nil
}
