package ui

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/chronoblock/internal/schedule"
)

func (a *App) taskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Manage unscheduled tasks",
		Long: `Tasks are to-do items that are not on the calendar yet.
Use "chronoblock schedule" to turn a task into a time block.`,
	}

	cmd.AddCommand(a.taskAddCmd())
	cmd.AddCommand(a.taskListCmd())
	cmd.AddCommand(a.taskEditCmd())
	cmd.AddCommand(a.taskDoneCmd())
	cmd.AddCommand(a.taskRemoveCmd())

	return cmd
}

func (a *App) taskAddCmd() *cobra.Command {
	var (
		description string
		minutes     int
	)

	cmd := &cobra.Command{
		Use:   "add [title]",
		Short: "Add a new task",
		Example: `  chronoblock task add "Write intro" --minutes=20
  chronoblock task add "Read paper" --desc="section 3"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.ensureStore(cmd.Context()); err != nil {
				return err
			}

			t, err := a.store.AddTask(strings.TrimSpace(args[0]), description, minutes)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created task %s: %s\n", shortID(t.ID), t.Title)
			return nil
		},
	}

	cmd.Flags().StringVar(&description, "desc", "", "Optional description")
	cmd.Flags().IntVar(&minutes, "minutes", 0, "Estimated duration in minutes (0: use the default when scheduled)")

	return cmd
}

func (a *App) taskListCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.ensureStore(cmd.Context()); err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			var shown []schedule.Task
			for _, t := range a.store.Tasks() {
				if all || !t.Completed {
					shown = append(shown, t)
				}
			}
			if len(shown) == 0 {
				fmt.Fprintln(out, "No tasks.")
				return nil
			}

			width := titleWidth()
			for _, t := range shown {
				PrintTaskRow(out, t, width)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Include completed tasks")

	return cmd
}

func (a *App) taskEditCmd() *cobra.Command {
	var (
		title       string
		description string
		minutes     int
		color       string
	)

	cmd := &cobra.Command{
		Use:     "edit [id]",
		Short:   "Edit a task",
		Example: `  chronoblock task edit 3f2a --title="Write outline" --minutes=30`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.ensureStore(cmd.Context()); err != nil {
				return err
			}
			t, err := resolveTask(a.store, args[0])
			if err != nil {
				return err
			}

			var u schedule.TaskUpdate
			flags := cmd.Flags()
			if flags.Changed("title") {
				title = strings.TrimSpace(title)
				u.Title = &title
			}
			if flags.Changed("desc") {
				u.Description = &description
			}
			if flags.Changed("minutes") {
				u.EstimatedDuration = &minutes
			}
			if flags.Changed("color") {
				u.Color = &color
			}

			if err := a.store.UpdateTask(t.ID, u); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated task %s\n", shortID(t.ID))
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&description, "desc", "", "New description")
	cmd.Flags().IntVar(&minutes, "minutes", 0, "New estimated duration in minutes")
	cmd.Flags().StringVar(&color, "color", "", "Display color, e.g. #89b4fa")

	return cmd
}

func (a *App) taskDoneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "done [id]",
		Short: "Toggle a task's completed flag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.ensureStore(cmd.Context()); err != nil {
				return err
			}
			t, err := resolveTask(a.store, args[0])
			if err != nil {
				return err
			}

			a.store.ToggleTaskCompletion(t.ID)
			state := "open"
			if !t.Completed {
				state = "done"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Task %s marked %s\n", shortID(t.ID), state)
			return nil
		},
	}
}

func (a *App) taskRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rm [id]",
		Aliases: []string{"delete"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.ensureStore(cmd.Context()); err != nil {
				return err
			}
			t, err := resolveTask(a.store, args[0])
			if err != nil {
				return err
			}

			a.store.DeleteTask(t.ID)
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted task %s: %s\n", shortID(t.ID), t.Title)
			return nil
		},
	}
}
