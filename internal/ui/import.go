package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/chronoblock/internal/config"
	"github.com/javiermolinar/chronoblock/internal/db"
	"github.com/javiermolinar/chronoblock/internal/export"
	"github.com/javiermolinar/chronoblock/internal/schedule"
)

func (a *App) importCmd() *cobra.Command {
	var (
		format  string
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "import [path]",
		Short: "Import tasks and blocks from a file or another database",
		Long: `Add the tasks and time blocks from a JSON or YAML snapshot, an iCalendar
file, or another chronoblock SQLite database to the current schedule.

Every block goes through the same overlap check as "block add"; blocks that
would collide are skipped and listed. Imported entries get new ids.`,
		Example: `  chronoblock import backup.json
  chronoblock import calendar.ics
  chronoblock import /path/to/other.db`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.ensureStore(cmd.Context()); err != nil {
				return err
			}

			sourcePath, err := resolvePath(args[0])
			if err != nil {
				return err
			}
			info, err := os.Stat(sourcePath)
			if err != nil {
				if os.IsNotExist(err) {
					return fmt.Errorf("source does not exist: %s", sourcePath)
				}
				return fmt.Errorf("checking source: %w", err)
			}
			if info.IsDir() {
				return fmt.Errorf("source path is a directory: %s", sourcePath)
			}

			report, err := a.importFile(cmd.Context(), sourcePath, format)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Imported %d entries from %s\n", len(report.Added), sourcePath)
			if verbose {
				for _, added := range report.Added {
					fmt.Fprintf(out, "  + %s\n", added)
				}
			}
			if len(report.Skipped) > 0 {
				fmt.Fprintf(out, "%s\n", formatConflict(fmt.Sprintf("Skipped %d:", len(report.Skipped))))
				for _, skipped := range report.Skipped {
					fmt.Fprintf(out, "  - %s\n", skipped)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "", "json, yaml, ics or sqlite (default: from the file extension)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "List every imported entry")

	return cmd
}

func (a *App) importFile(ctx context.Context, path, format string) (export.Report, error) {
	if format == "" {
		format = filepath.Ext(path)
	}
	format = strings.ToLower(strings.TrimPrefix(format, "."))

	if format == "db" || format == "sqlite" {
		return a.importDatabase(ctx, path)
	}

	f, err := export.ParseFormat(format)
	if err != nil {
		return export.Report{}, err
	}

	file, err := os.Open(path)
	if err != nil {
		return export.Report{}, fmt.Errorf("opening source: %w", err)
	}
	defer func() { _ = file.Close() }()

	return importFrom(a.store, file, f)
}

// importFrom decodes r and replays it through store.
func importFrom(store *schedule.Store, r io.Reader, format export.Format) (export.Report, error) {
	if format == export.FormatICS {
		events, err := export.ReadICS(r)
		if err != nil {
			return export.Report{}, err
		}
		return export.ImportEvents(store, events), nil
	}

	state, err := export.ReadSnapshot(r, format)
	if err != nil {
		return export.Report{}, err
	}
	return export.Import(store, state), nil
}

func (a *App) importDatabase(ctx context.Context, sourcePath string) (export.Report, error) {
	if d := a.config.Storage.Driver; d == config.DriverSQLite || d == "" {
		destPath, err := resolvePath(a.config.Storage.DBPath)
		if err != nil {
			return export.Report{}, err
		}
		if sourcePath == destPath {
			return export.Report{}, fmt.Errorf("source database matches current database")
		}
	}

	source, err := db.NewSQLite(sourcePath)
	if err != nil {
		return export.Report{}, fmt.Errorf("opening source database: %w", err)
	}
	defer func() { _ = source.Close() }()

	state, err := source.Load(ctx)
	if err != nil {
		return export.Report{}, fmt.Errorf("reading source database: %w", err)
	}
	return export.Import(a.store, state), nil
}

func resolvePath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", fmt.Errorf("empty path")
	}

	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	return absPath, nil
}
