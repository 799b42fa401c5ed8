package ui

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/chronoblock/internal/dateutil"
	"github.com/javiermolinar/chronoblock/internal/schedule"
)

func (a *App) scheduleCmd() *cobra.Command {
	var (
		date  string
		start string
	)

	cmd := &cobra.Command{
		Use:   "schedule [task-id]",
		Short: "Turn a task into a time block",
		Long: `Place a task on the calendar. The block lasts the task's estimate, or the
default duration when it has none, and the task is removed from the list.
If the slot is taken, nothing changes and the task stays.`,
		Example: `  chronoblock schedule 3f2a --start=14:00
  chronoblock schedule 3f2a --date=friday --start=10:00`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.ensureStore(cmd.Context()); err != nil {
				return err
			}
			t, err := resolveTask(a.store, args[0])
			if err != nil {
				return err
			}

			startAt, err := a.blockStart(date, start)
			if err != nil {
				return err
			}

			b, err := a.store.Apply(schedule.Request{
				Kind:   schedule.RequestConvert,
				TaskID: t.ID,
				Start:  startAt,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Scheduled %q as block %s: %s %s-%s\n",
				b.Title, shortID(b.ID), b.Start.Format("2006-01-02"),
				dateutil.FormatClock(b.Start), dateutil.FormatClock(b.End))
			a.warnOutsideWindow(out, b)
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Day (default: today)")
	cmd.Flags().StringVar(&start, "start", "", "Start time (HH:MM, default: next slot boundary in the working window)")

	return cmd
}

func (a *App) checkCmd() *cobra.Command {
	var (
		date    string
		start   string
		end     string
		exclude string
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check whether a time range is free",
		Long: `Check a range against the calendar without changing anything.
Exits with an error when the range is taken.`,
		Example: `  chronoblock check --start=10:00 --end=11:00
  chronoblock check --date=tomorrow --start=09:00 --end=09:30 --exclude=3f2a`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.ensureStore(cmd.Context()); err != nil {
				return err
			}

			startAt, err := a.resolveTime(date, start)
			if err != nil {
				return err
			}
			endAt, err := dateutil.At(startAt, end)
			if err != nil {
				return err
			}
			if !endAt.After(startAt) {
				return schedule.ErrInvalidInterval
			}

			var excludeID string
			if exclude != "" {
				b, err := resolveBlock(a.store, exclude)
				if err != nil {
					return err
				}
				excludeID = b.ID
			}

			out := cmd.OutOrStdout()
			hit, busy := a.store.FindConflict(startAt, endAt, excludeID)
			if !busy {
				fmt.Fprintf(out, "%s %s-%s (%s)\n", formatFree("Free:"),
					dateutil.FormatClock(startAt), dateutil.FormatClock(endAt),
					FormatDuration(int(endAt.Sub(startAt)/time.Minute)))
				return nil
			}

			fmt.Fprintf(out, "%s %s-%s overlaps %q (%s-%s)\n", formatConflict("Busy:"),
				dateutil.FormatClock(startAt), dateutil.FormatClock(endAt),
				hit.Title, dateutil.FormatClock(hit.Start), dateutil.FormatClock(hit.End))
			return schedule.ErrConflict
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Day (default: today)")
	cmd.Flags().StringVar(&start, "start", "", "Start time (HH:MM, required)")
	cmd.Flags().StringVar(&end, "end", "", "End time (HH:MM, required)")
	cmd.Flags().StringVar(&exclude, "exclude", "", "Ignore this block id, e.g. when checking a move")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")

	return cmd
}
