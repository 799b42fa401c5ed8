package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/chronoblock/internal/config"
	"github.com/javiermolinar/chronoblock/internal/dateutil"
	"github.com/javiermolinar/chronoblock/internal/db"
	"github.com/javiermolinar/chronoblock/internal/logging"
	"github.com/javiermolinar/chronoblock/internal/schedule"
	"github.com/javiermolinar/chronoblock/internal/scheduler"
	"github.com/javiermolinar/chronoblock/internal/tui"
)

var (
	// Version is set at build time
	Version = "dev"
	// Commit is set at build time
	Commit = "none"
)

// tuiDebugLog receives TUI logs under --debug when no log file is configured.
const tuiDebugLog = "chronoblock-debug.log"

// App holds the CLI application state.
type App struct {
	config    *config.Config
	store     *schedule.Store
	adapter   db.Adapter
	logger    *slog.Logger
	logCloser io.Closer
	scheduler *scheduler.Scheduler
	now       func() time.Time
	root      *cobra.Command
	debug     bool // Force debug logging

	failedSaves atomic.Int64
}

// Option configures an App.
type Option func(*App)

// WithStore uses store instead of opening the configured storage.
func WithStore(store *schedule.Store) Option {
	return func(a *App) {
		a.store = store
	}
}

// WithLogger uses logger instead of building one from the config.
func WithLogger(logger *slog.Logger) Option {
	return func(a *App) {
		a.logger = logger
	}
}

// WithClock sets the clock used for relative dates and default start times.
func WithClock(now func() time.Time) Option {
	return func(a *App) {
		a.now = now
	}
}

// WithOutput redirects command output and errors to w.
func WithOutput(w io.Writer) Option {
	return func(a *App) {
		a.root.SetOut(w)
		a.root.SetErr(w)
	}
}

// NewApp creates a new CLI application for cfg.
func NewApp(cfg *config.Config, opts ...Option) *App {
	a := &App{
		config: cfg,
		now:    time.Now,
		scheduler: scheduler.New(
			cfg.Schedule.Workdays,
			cfg.Schedule.DayStart,
			cfg.Schedule.DayEnd,
			cfg.SlotStep(),
		),
	}

	a.root = &cobra.Command{
		Use:   "chronoblock",
		Short: "Plan your day in time blocks",
		Long: `Chronoblock keeps a list of tasks and a calendar of time blocks.

Blocks never overlap: every add, move, resize or conversion that would
collide with an existing block is refused and the schedule stays as it was.
Run without a subcommand to open the interactive calendar.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error { return a.setupLogger(cmd == a.root) },
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return a.checkSaved()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.ensureStore(cmd.Context()); err != nil {
				return err
			}
			return tui.Run(a.store, a.config,
				tui.WithLogger(a.logger),
				tui.WithClock(a.now),
				tui.WithScheduler(a.scheduler),
			)
		},
	}

	a.root.PersistentFlags().BoolVar(&a.debug, "debug", false, "Enable debug logging")

	a.root.AddCommand(a.versionCmd())
	a.root.AddCommand(a.configCmd())
	a.root.AddCommand(a.taskCmd())
	a.root.AddCommand(a.blockCmd())
	a.root.AddCommand(a.scheduleCmd())
	a.root.AddCommand(a.checkCmd())
	a.root.AddCommand(a.dayCmd())
	a.root.AddCommand(a.weekCmd())
	a.root.AddCommand(a.exportCmd())
	a.root.AddCommand(a.importCmd())

	for _, opt := range opts {
		opt(a)
	}

	return a
}

func (a *App) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "chronoblock %s (commit: %s)\n", Version, Commit)
		},
	}
}

// Execute runs the CLI application.
func (a *App) Execute() error {
	return a.ExecuteContext(context.Background())
}

// ExecuteContext runs the CLI application with ctx.
func (a *App) ExecuteContext(ctx context.Context) error {
	return a.root.ExecuteContext(ctx)
}

// SetArgs overrides the command line arguments, for tests.
func (a *App) SetArgs(args []string) {
	a.root.SetArgs(args)
}

// Close releases the storage adapter and the log file.
func (a *App) Close() error {
	var errs []error
	if a.adapter != nil {
		errs = append(errs, a.adapter.Close())
		a.adapter = nil
	}
	if a.logCloser != nil {
		errs = append(errs, a.logCloser.Close())
		a.logCloser = nil
	}
	return errors.Join(errs...)
}

// setupLogger builds the app logger once. The TUI owns the terminal, so
// without a configured log file its logs go to tuiDebugLog under --debug
// and nowhere otherwise.
func (a *App) setupLogger(interactive bool) error {
	if a.logger != nil {
		return nil
	}

	var opts []logging.Option
	if a.debug {
		opts = append(opts, logging.WithLevel(slog.LevelDebug))
	}

	var debugFile *os.File
	if interactive && a.config.Log.File == "" {
		if !a.debug {
			a.logger = logging.Discard()
			return nil
		}
		f, err := os.Create(tuiDebugLog)
		if err != nil {
			return fmt.Errorf("creating debug log: %w", err)
		}
		debugFile = f
		opts = append(opts, logging.WithOutput(f))
	}

	logger, closer, err := logging.New(a.config.Log, opts...)
	if err != nil {
		if debugFile != nil {
			_ = debugFile.Close()
		}
		return fmt.Errorf("setting up logging: %w", err)
	}
	a.logger, a.logCloser = logger, closer
	if debugFile != nil {
		a.logCloser = debugFile
	}
	return nil
}

// ensureStore opens the configured storage and loads the schedule once.
func (a *App) ensureStore(ctx context.Context) error {
	if a.store != nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if a.logger == nil {
		a.logger = logging.Discard()
	}

	adapter, err := db.Open(ctx, a.config.Storage, a.logger)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}

	store, err := schedule.Open(ctx, adapter, a.storeOptions()...)
	if err != nil {
		_ = adapter.Close()
		return err
	}

	a.adapter, a.store = adapter, store
	return nil
}

// storeOptions configures a store opened from the app config.
func (a *App) storeOptions() []schedule.Option {
	return []schedule.Option{
		schedule.WithLogger(a.logger),
		schedule.WithClock(a.now),
		schedule.WithDefaultDuration(a.config.DefaultDuration()),
		schedule.WithSaveTimeout(a.config.Storage.SaveTimeoutDuration()),
		schedule.WithSaveErrorHandler(func(error) { a.failedSaves.Add(1) }),
	}
}

// checkSaved turns an unsaved change into a failing exit status.
func (a *App) checkSaved() error {
	if a.store == nil {
		return nil
	}
	if err := a.store.SaveErr(); err != nil {
		if n := a.failedSaves.Load(); n > 1 {
			return fmt.Errorf("change applied but not saved (%d failed saves): %w", n, err)
		}
		return fmt.Errorf("change applied but not saved: %w", err)
	}
	return nil
}

// today returns midnight of the current day.
func (a *App) today() time.Time {
	return dateutil.TruncateToDay(a.now())
}
