package ui

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/chronoblock/internal/dateutil"
	"github.com/javiermolinar/chronoblock/internal/schedule"
)

func (a *App) blockCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "block",
		Short: "Manage time blocks on the calendar",
		Long: `Time blocks are intervals on the calendar. Two blocks never overlap;
a block may start exactly when another ends.`,
	}

	cmd.AddCommand(a.blockAddCmd())
	cmd.AddCommand(a.blockListCmd())
	cmd.AddCommand(a.blockMoveCmd())
	cmd.AddCommand(a.blockResizeCmd())
	cmd.AddCommand(a.blockRenameCmd())
	cmd.AddCommand(a.blockDoneCmd())
	cmd.AddCommand(a.blockRemoveCmd())

	return cmd
}

func (a *App) blockAddCmd() *cobra.Command {
	var (
		date    string
		start   string
		end     string
		minutes int
	)

	cmd := &cobra.Command{
		Use:   "add [title]",
		Short: "Add a time block",
		Long: `Add a time block to the calendar.

Without --start the block starts at the next slot boundary in the working
window; a busy start is refused like any other conflict. Without --end or
--minutes it lasts the default duration.`,
		Example: `  chronoblock block add Standup --start=09:00 --end=09:30
  chronoblock block add "Deep work" --date=tomorrow --start=10:00 --minutes=90
  chronoblock block add`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.ensureStore(cmd.Context()); err != nil {
				return err
			}
			if end != "" && minutes > 0 {
				return errors.New("use either --end or --minutes, not both")
			}

			startAt, err := a.blockStart(date, start)
			if err != nil {
				return err
			}

			var endAt time.Time
			switch {
			case end != "":
				if endAt, err = dateutil.At(startAt, end); err != nil {
					return err
				}
			case minutes > 0:
				endAt = startAt.Add(time.Duration(minutes) * time.Minute)
			}

			var title string
			if len(args) == 1 {
				title = strings.TrimSpace(args[0])
			}

			b, err := a.store.Apply(schedule.Request{
				Kind:  schedule.RequestCreate,
				Title: title,
				Start: startAt,
				End:   endAt,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Created block %s: %s %s %s-%s\n",
				shortID(b.ID), b.Title,
				b.Start.Format("2006-01-02"),
				dateutil.FormatClock(b.Start), dateutil.FormatClock(b.End))
			a.warnOutsideWindow(out, b)
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Day (YYYY-MM-DD or today, tomorrow, next-monday...; default: today)")
	cmd.Flags().StringVar(&start, "start", "", "Start time (HH:MM, default: next slot boundary in the working window)")
	cmd.Flags().StringVar(&end, "end", "", "End time (HH:MM)")
	cmd.Flags().IntVar(&minutes, "minutes", 0, "Duration in minutes")

	return cmd
}

// blockStart picks the start of a new block from the --date and --start flags.
func (a *App) blockStart(date, start string) (time.Time, error) {
	if start != "" {
		return a.resolveTime(date, start)
	}
	if date == "" {
		return a.scheduler.NextStart(a.now()), nil
	}
	day, err := a.resolveDay(date)
	if err != nil {
		return time.Time{}, err
	}
	windowStart, _ := a.scheduler.DayBounds(day)
	return windowStart, nil
}

func (a *App) warnOutsideWindow(w io.Writer, b schedule.TimeBlock) {
	if !a.scheduler.IsWorkday(b.Start) || !a.scheduler.Fits(b.Start, b.Duration()) {
		fmt.Fprintln(w, formatMuted("Note: block is outside the working window"))
	}
}

func (a *App) blockListCmd() *cobra.Command {
	var (
		date string
		from string
		to   string
		all  bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List time blocks",
		Example: `  chronoblock block list
  chronoblock block list --date=2025-01-09
  chronoblock block list --from=monday --to=friday
  chronoblock block list --all`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.ensureStore(cmd.Context()); err != nil {
				return err
			}
			if date != "" && (from != "" || to != "") {
				return errors.New("use either --date or --from/--to, not both")
			}
			out := cmd.OutOrStdout()

			var blocks []schedule.TimeBlock
			days := 1
			if all {
				blocks = a.store.TimeBlocks()
			} else {
				if date != "" {
					from = date
				}
				r, err := dateutil.NewDateRange(from, to, a.now())
				if err != nil {
					return err
				}
				days = r.Days()
				blocks = a.store.TimeBlocksBetween(r.Bounds())
			}

			if len(blocks) == 0 {
				if days > 1 {
					fmt.Fprintf(out, "No time blocks found in %d days.\n", days)
				} else {
					fmt.Fprintln(out, "No time blocks found.")
				}
				return nil
			}

			width := titleWidth()
			var currentDate string
			for _, b := range blocks {
				d := b.Start.Format("2006-01-02")
				if d != currentDate {
					if currentDate != "" {
						fmt.Fprintln(out)
					}
					fmt.Fprintf(out, "=== %s ===\n", d)
					currentDate = d
				}
				PrintBlockRow(out, b, width)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Day to list (default: today)")
	cmd.Flags().StringVar(&from, "from", "", "First day of a range (default: today)")
	cmd.Flags().StringVar(&to, "to", "", "Last day of a range, inclusive (default: --from)")
	cmd.Flags().BoolVar(&all, "all", false, "List every block")

	return cmd
}

func (a *App) blockMoveCmd() *cobra.Command {
	var (
		date  string
		start string
	)

	cmd := &cobra.Command{
		Use:   "move [id]",
		Short: "Move a block, keeping its duration",
		Example: `  chronoblock block move 3f2a --start=14:00
  chronoblock block move 3f2a --date=tomorrow --start=09:00`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.ensureStore(cmd.Context()); err != nil {
				return err
			}
			b, err := resolveBlock(a.store, args[0])
			if err != nil {
				return err
			}

			day := b.Start
			if date != "" {
				if day, err = a.resolveDay(date); err != nil {
					return err
				}
			}
			startAt, err := dateutil.At(day, start)
			if err != nil {
				return err
			}

			moved, err := a.store.Apply(schedule.Request{
				Kind:    schedule.RequestMove,
				BlockID: b.ID,
				Start:   startAt,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Moved block %s to %s %s-%s\n",
				shortID(moved.ID), moved.Start.Format("2006-01-02"),
				dateutil.FormatClock(moved.Start), dateutil.FormatClock(moved.End))
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Target day (default: the block's current day)")
	cmd.Flags().StringVar(&start, "start", "", "New start time (HH:MM, required)")
	_ = cmd.MarkFlagRequired("start")

	return cmd
}

func (a *App) blockResizeCmd() *cobra.Command {
	var (
		end     string
		minutes int
	)

	cmd := &cobra.Command{
		Use:   "resize [id]",
		Short: "Change when a block ends",
		Example: `  chronoblock block resize 3f2a --end=11:30
  chronoblock block resize 3f2a --minutes=90`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.ensureStore(cmd.Context()); err != nil {
				return err
			}
			if (end == "") == (minutes <= 0) {
				return errors.New("pass exactly one of --end or --minutes")
			}
			b, err := resolveBlock(a.store, args[0])
			if err != nil {
				return err
			}

			endAt := b.Start.Add(time.Duration(minutes) * time.Minute)
			if end != "" {
				if endAt, err = dateutil.At(b.Start, end); err != nil {
					return err
				}
			}

			resized, err := a.store.Apply(schedule.Request{
				Kind:    schedule.RequestResize,
				BlockID: b.ID,
				End:     endAt,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Block %s now %s-%s\n",
				shortID(resized.ID), dateutil.FormatClock(resized.Start), dateutil.FormatClock(resized.End))
			return nil
		},
	}

	cmd.Flags().StringVar(&end, "end", "", "New end time (HH:MM)")
	cmd.Flags().IntVar(&minutes, "minutes", 0, "New duration in minutes")

	return cmd
}

func (a *App) blockRenameCmd() *cobra.Command {
	var color string

	cmd := &cobra.Command{
		Use:   "rename [id] [title]",
		Short: "Rename a block",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.ensureStore(cmd.Context()); err != nil {
				return err
			}
			b, err := resolveBlock(a.store, args[0])
			if err != nil {
				return err
			}

			title := strings.TrimSpace(args[1])
			u := schedule.TimeBlockUpdate{Title: &title}
			if cmd.Flags().Changed("color") {
				u.Color = &color
			}
			if err := a.store.UpdateTimeBlock(b.ID, u); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Renamed block %s to %s\n", shortID(b.ID), title)
			return nil
		},
	}

	cmd.Flags().StringVar(&color, "color", "", "Display color, e.g. #a6e3a1")

	return cmd
}

func (a *App) blockDoneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "done [id]",
		Short: "Toggle a block's completed flag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.ensureStore(cmd.Context()); err != nil {
				return err
			}
			b, err := resolveBlock(a.store, args[0])
			if err != nil {
				return err
			}

			a.store.ToggleTimeBlockCompletion(b.ID)
			state := "open"
			if !b.Completed {
				state = "done"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Block %s marked %s\n", shortID(b.ID), state)
			return nil
		},
	}
}

func (a *App) blockRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rm [id]",
		Aliases: []string{"delete"},
		Short:   "Delete a time block",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.ensureStore(cmd.Context()); err != nil {
				return err
			}
			b, err := resolveBlock(a.store, args[0])
			if err != nil {
				return err
			}

			a.store.DeleteTimeBlock(b.ID)
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted block %s: %s\n", shortID(b.ID), b.Title)
			return nil
		},
	}
}
