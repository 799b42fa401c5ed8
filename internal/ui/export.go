package ui

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/chronoblock/internal/export"
)

func (a *App) exportCmd() *cobra.Command {
	var (
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the schedule as JSON, YAML or iCalendar",
		Long: `Write all tasks and time blocks to stdout or a file.

JSON and YAML snapshots can be read back with "chronoblock import".
The iCalendar export holds the time blocks only.`,
		Example: `  chronoblock export > backup.json
  chronoblock export --format=ics -o week.ics
  chronoblock export -o backup.yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.ensureStore(cmd.Context()); err != nil {
				return err
			}

			if format == "" {
				format = string(export.FormatJSON)
				if output != "" && filepath.Ext(output) != "" {
					format = filepath.Ext(output)
				}
			}
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}

			state := a.store.Snapshot()
			if output == "" || output == "-" {
				return export.Write(cmd.OutOrStdout(), state, f)
			}

			path, err := resolvePath(output)
			if err != nil {
				return err
			}
			file, err := os.Create(path)
			if err != nil {
				return fmt.Errorf("creating %s: %w", path, err)
			}
			if err := export.Write(file, state, f); err != nil {
				_ = file.Close()
				return err
			}
			if err := file.Close(); err != nil {
				return fmt.Errorf("closing %s: %w", path, err)
			}

			fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d tasks and %d blocks to %s\n",
				len(state.Tasks), len(state.TimeBlocks), path)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "", "json, yaml or ics (default: from --output, else json)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: stdout)")

	return cmd
}
