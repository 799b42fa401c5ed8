package ui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/x/ansi"

	"github.com/javiermolinar/chronoblock/internal/dateutil"
	"github.com/javiermolinar/chronoblock/internal/schedule"
	"github.com/javiermolinar/chronoblock/internal/summary"
)

// statusSymbol returns the completion indicator.
func statusSymbol(completed bool) string {
	if completed {
		return "✓"
	}
	return "○"
}

// PrintBlockRow prints a single time block row.
func PrintBlockRow(w io.Writer, b schedule.TimeBlock, maxTitleWidth int) {
	title := ansi.Truncate(b.Title, maxTitleWidth, "…")
	span := fmt.Sprintf("%s-%s", dateutil.FormatClock(b.Start), dateutil.FormatClock(b.End))
	if b.Completed {
		span = formatDone(span)
	} else {
		span = formatBlock(span)
	}
	fmt.Fprintf(w, "  %s  %s  %s  %s  %s\n",
		statusSymbol(b.Completed),
		formatMuted(shortID(b.ID)),
		span,
		padRight(title, maxTitleWidth),
		formatMuted(FormatDuration(int(b.Duration()/time.Minute))),
	)
}

// PrintTaskRow prints a single task row.
func PrintTaskRow(w io.Writer, t schedule.Task, maxTitleWidth int) {
	title := ansi.Truncate(t.Title, maxTitleWidth, "…")
	if t.Completed {
		title = formatDone(title)
	}
	estimate := "-"
	if t.EstimatedDuration > 0 {
		estimate = FormatDuration(t.EstimatedDuration)
	}
	fmt.Fprintf(w, "  %s  %s  %s  %s\n",
		statusSymbol(t.Completed),
		formatMuted(shortID(t.ID)),
		padRight(title, maxTitleWidth),
		formatMuted(estimate),
	)
	if t.Description != "" {
		fmt.Fprintf(w, "              %s\n", formatMuted(ansi.Truncate(t.Description, maxTitleWidth, "…")))
	}
}

// PrintGap prints a free interval.
func PrintGap(w io.Writer, g summary.Gap) {
	fmt.Fprintf(w, "     %s  %s\n",
		formatFree(fmt.Sprintf("%s-%s free", dateutil.FormatClock(g.Start), dateutil.FormatClock(g.End))),
		formatMuted(FormatDuration(int(g.Duration()/time.Minute))))
}

// PrintStats prints the stats summary line.
func PrintStats(w io.Writer, stats summary.Stats) {
	fmt.Fprintf(w, "%s | %s | Blocks: %d (%d done)\n",
		formatBlock("Scheduled: "+FormatDuration(stats.ScheduledMinutes)),
		formatDone("Done: "+FormatDuration(stats.CompletedMinutes)),
		stats.Blocks, stats.CompletedBlocks)
	if stats.OpenTasks > 0 {
		fmt.Fprintf(w, "%s\n", formatMuted(fmt.Sprintf("Open tasks: %d (%s estimated)",
			stats.OpenTasks, FormatDuration(stats.OpenTaskMinutes))))
	}
}

// FlowBar creates an ASCII progress bar showing the completed share.
func FlowBar(doneMinutes, totalMinutes, width int) string {
	if totalMinutes == 0 {
		return "[" + strings.Repeat("░", width) + "] (0% Done)"
	}

	pct := (doneMinutes * 100) / totalMinutes
	filled := (doneMinutes * width) / totalMinutes

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return fmt.Sprintf("[%s] %s", formatDone(bar), formatMuted(fmt.Sprintf("(%d%% Done)", pct)))
}

// FormatDuration formats minutes as a human-readable duration.
func FormatDuration(minutes int) string {
	if minutes == 0 {
		return "0m"
	}
	hours := minutes / 60
	mins := minutes % 60
	if hours == 0 {
		return fmt.Sprintf("%dm", mins)
	}
	if mins == 0 {
		return fmt.Sprintf("%dh", hours)
	}
	return fmt.Sprintf("%dh%dm", hours, mins)
}

// titleWidth returns the title column width for the current terminal.
func titleWidth() int {
	// "  ○  xxxxxxxx  HH:MM-HH:MM  " plus a duration column
	available := termWidth() - 40
	if available < 20 {
		return 20
	}
	if available > 60 {
		return 60
	}
	return available
}

// padRight pads s with spaces to width display cells.
func padRight(s string, width int) string {
	if pad := width - ansi.StringWidth(s); pad > 0 {
		return s + strings.Repeat(" ", pad)
	}
	return s
}
