package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/chronoblock/internal/summary"
)

func (a *App) weekCmd() *cobra.Command {
	var noColor bool

	cmd := &cobra.Command{
		Use:   "week [date]",
		Short: "Show the week's time blocks",
		Long: `Display the time blocks of an ISO week, Monday through Sunday, with
scheduled and completed totals. Defaults to the current week.`,
		Example: `  chronoblock week
  chronoblock week next-week`,
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
			week := summary.Week(a.store, day)
			if week.Stats.Blocks == 0 {
				fmt.Fprintln(out, "No time blocks scheduled for this week.")
				return nil
			}

			header := fmt.Sprintf("WEEK: %s - %s", week.Start.Format("Mon Jan 2"), week.End.Format("Mon Jan 2, 2006"))
			fmt.Fprintf(out, "\n  %s\n", formatHeader(header))
			fmt.Fprintln(out, strings.Repeat("─", 74))

			printWeekTable(out, week, titleWidth())

			fmt.Fprintln(out, strings.Repeat("─", 74))
			PrintStats(out, week.Stats)
			if busiest, ok := week.BusiestDay(); ok {
				fmt.Fprintf(out, "Busiest day: %s (%s)\n", busiest.Date.Format("Monday"),
					FormatDuration(busiest.Stats.ScheduledMinutes))
			}
			fmt.Fprintf(out, "Progress: %s\n", FlowBar(week.Stats.CompletedMinutes, week.Stats.ScheduledMinutes, 20))
			fmt.Fprintln(out)
			return nil
		},
	}

	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable color output")
	return cmd
}

func printWeekTable(w io.Writer, week summary.WeekSummary, maxTitleWidth int) {
	first := true
	for _, d := range week.Days {
		if len(d.Blocks) == 0 {
			continue
		}
		if !first {
			fmt.Fprintln(w)
		}
		first = false

		fmt.Fprintf(w, "  %s  %s\n", formatHeader(d.Date.Format("Mon Jan 2")),
			formatMuted(FormatDuration(d.Stats.ScheduledMinutes)))
		for _, b := range d.Blocks {
			PrintBlockRow(w, b, maxTitleWidth)
		}
	}
}
