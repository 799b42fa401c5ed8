package ui

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/chronoblock/internal/summary"
)

func (a *App) dayCmd() *cobra.Command {
	var (
		noColor bool
		noGaps  bool
	)

	cmd := &cobra.Command{
		Use:   "day [date]",
		Short: "Show one day's agenda",
		Long: `Display a day's time blocks in start order, the free gaps inside the
working window, and the day's totals. Defaults to today.`,
		Example: `  chronoblock day
  chronoblock day tomorrow
  chronoblock day 2025-01-09`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if noColor {
				DisableColor()
			}
			if err := a.ensureStore(cmd.Context()); err != nil {
				return err
			}

			var date string
			if len(args) == 1 {
				date = args[0]
			}
			day, err := a.resolveDay(date)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			ds := summary.Day(a.store, day)

			fmt.Fprintf(out, "\n  %s\n", formatHeader(ds.Date.Format("Monday, Jan 2 2006")))
			fmt.Fprintln(out, strings.Repeat("─", 74))

			var gaps []summary.Gap
			if !noGaps && a.scheduler.IsWorkday(day) {
				windowStart, windowEnd := a.scheduler.DayBounds(day)
				gaps = summary.Gaps(ds.Blocks, windowStart, windowEnd)
			}

			if len(ds.Blocks) == 0 && len(gaps) == 0 {
				fmt.Fprintln(out, "  Nothing scheduled.")
			}

			// Merge blocks and gaps by start time.
			width := titleWidth()
			gi := 0
			for _, b := range ds.Blocks {
				for gi < len(gaps) && gaps[gi].Start.Before(b.Start) {
					PrintGap(out, gaps[gi])
					gi++
				}
				PrintBlockRow(out, b, width)
			}
			for ; gi < len(gaps); gi++ {
				PrintGap(out, gaps[gi])
			}

			fmt.Fprintln(out, strings.Repeat("─", 74))
			PrintStats(out, ds.Stats)
			fmt.Fprintln(out)
			return nil
		},
	}

	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable color output")
	cmd.Flags().BoolVar(&noGaps, "no-gaps", false, "Hide free time inside the working window")
	return cmd
}
