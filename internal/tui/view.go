package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/javiermolinar/chronoblock/internal/dateutil"
	"github.com/javiermolinar/chronoblock/internal/schedule"
	"github.com/javiermolinar/chronoblock/internal/summary"
)

// View renders the TUI.
func (m Model) View() string {
	width := m.width
	if width == 0 {
		width = defaultWidth
	}

	timelineWidth := width - timeColumnWidth - sidebarWidth - 3
	showSidebar := timelineWidth >= minTimeline
	if !showSidebar {
		timelineWidth = max(width-timeColumnWidth, 1)
	}

	var sb strings.Builder
	sb.WriteString(m.renderHeader(width))
	sb.WriteByte('\n')
	sb.WriteString(m.styles.Rule.Render(strings.Repeat("─", width)))
	sb.WriteByte('\n')

	rows := m.visibleRows()
	for r := range rows {
		i := m.scroll + r
		var line string
		if i < m.slotCount() {
			line = m.renderSlot(i, timelineWidth)
		} else {
			line = strings.Repeat(" ", timeColumnWidth+timelineWidth)
		}
		if showSidebar {
			line += m.styles.Rule.Render(" │ ") + m.renderSidebarLine(r)
		}
		sb.WriteString(line)
		sb.WriteByte('\n')
	}

	sb.WriteString(m.renderHelp(width))
	sb.WriteByte('\n')
	sb.WriteString(m.renderStatus(width))
	return sb.String()
}

func (m Model) renderHeader(width int) string {
	title := m.styles.Title.Render("chronoblock")
	day := m.styles.Header.Render(m.day.Format("Monday, Jan 2 2006"))
	if sameDay(m.day, m.nowTime) {
		day += m.styles.Help.Render(" (today)")
	}

	stats := summary.Summarize(m.blocks, nil)
	right := m.styles.Help.Render(fmt.Sprintf("%d blocks · %s · %d%% done",
		stats.Blocks, formatMinutes(stats.ScheduledMinutes), stats.CompletionPercent()))

	left := title + " " + day
	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		return ansi.Truncate(left, width, "…")
	}
	return left + strings.Repeat(" ", gap) + right
}

// renderSlot draws one timeline row: the time label and the cell.
func (m Model) renderSlot(i, cellWidth int) string {
	t := m.slotTime(i)
	next := t.Add(m.sched.Step())

	labelStyle := m.styles.TimeLabel
	switch {
	case i == m.cursor && (m.focus == paneTimeline || m.mode == ModeMove):
		labelStyle = m.styles.TimeLabelCursor
	case !m.nowTime.Before(t) && m.nowTime.Before(next):
		labelStyle = m.styles.TimeLabelNow
	}
	label := labelStyle.Render(dateutil.FormatClock(t))

	style, content := m.cellContent(i, t, next)
	return label + style.Width(cellWidth).Render(ansi.Truncate(content, max(cellWidth-2, 0), "…"))
}

// cellContent picks the style and text for the slot [t, next).
func (m Model) cellContent(i int, t, next time.Time) (lipgloss.Style, string) {
	if p := m.move; p != nil && schedule.Overlaps(p.start, p.end, t, next) {
		if m.slotFor(p.start) != i {
			return m.previewStyle(), ""
		}
		text := "▶ " + p.title + "  " + span(p.start, p.end)
		if p.conflict {
			text += "  overlaps " + p.blocker.Title
		}
		return m.previewStyle(), text
	}

	for idx, b := range m.blocks {
		if !b.Overlaps(t, next) {
			continue
		}
		first := m.slotFor(b.Start) == i
		if m.move != nil && b.ID == m.move.blockID {
			if first {
				return m.styles.Ghost, "┊ " + b.Title
			}
			return m.styles.Ghost, "┊"
		}

		style := m.blockStyle(b, idx)
		if !first {
			return style, ""
		}
		return style, statusSymbol(b.Completed) + " " + b.Title + "  " + span(b.Start, b.End)
	}

	if i == m.cursor && m.focus == paneTimeline {
		return m.styles.EmptyCursor, ""
	}
	return m.styles.Empty, ""
}

func (m Model) previewStyle() lipgloss.Style {
	if m.move.conflict {
		return m.styles.PreviewConflict
	}
	return m.styles.Preview
}

// blockStyle alternates shades between neighbours so adjacent blocks stay distinct.
func (m Model) blockStyle(b schedule.TimeBlock, idx int) lipgloss.Style {
	if m.focus == paneTimeline && m.mode == ModeNormal {
		if c, ok := m.selectedBlock(); ok && c.ID == b.ID {
			return m.styles.BlockSelected
		}
	}
	alt := idx%2 == 1
	switch {
	case b.Completed && alt:
		return m.styles.BlockDoneAlt
	case b.Completed:
		return m.styles.BlockDone
	case !b.End.After(m.nowTime):
		return m.styles.BlockPast
	case alt:
		return m.styles.BlockAlt
	default:
		return m.styles.Block
	}
}

// renderSidebarLine draws row r of the task list.
func (m Model) renderSidebarLine(r int) string {
	switch {
	case r == 0:
		open := summary.Summarize(nil, m.tasks).OpenTasks
		return m.styles.SidebarTitle.Render(fmt.Sprintf("Tasks (%d open)", open))
	case r == 1:
		return ""
	case r == 2 && len(m.tasks) == 0:
		return m.styles.Help.Render("No tasks. Press a to add one.")
	}

	idx := r - 2
	if idx >= len(m.tasks) {
		return ""
	}
	t := m.tasks[idx]

	marker := "  "
	style := m.styles.Task
	if idx == m.taskCursor && m.focus == paneTasks {
		marker = "▸ "
		style = m.styles.TaskSelected
	} else if t.Completed {
		style = m.styles.TaskDone
	}

	text := marker + statusSymbol(t.Completed) + " " + t.Title
	if t.EstimatedDuration > 0 {
		text += " " + formatMinutes(t.EstimatedDuration)
	}
	return style.Render(ansi.Truncate(text, sidebarWidth, "…"))
}

func (m Model) renderHelp(width int) string {
	var help string
	switch {
	case m.mode == ModeInput && m.inputKind == inputNewBlock:
		help = "title [HH:MM[-HH:MM]] [30m]  enter save  esc cancel"
	case m.mode == ModeInput:
		help = "enter save  esc cancel"
	case m.mode == ModeMove:
		help = "j/k move  J/K hour  h/l day  enter drop  esc cancel"
	case m.focus == paneTasks:
		help = "j/k select  s schedule at cursor  a add  r rename  x done  d delete  tab timeline  q quit"
	default:
		help = "j/k slot  h/l day  t today  n new  m move  +/- resize  r rename  x done  d delete  y copy  tab tasks  q quit"
	}
	return m.styles.Help.Render(ansi.Truncate(help, width, "…"))
}

func (m Model) renderStatus(width int) string {
	if m.mode == ModeInput {
		return m.styles.Prompt.Render(m.input.View())
	}
	if err := m.store.SaveErr(); err != nil {
		return m.styles.StatusErr.Render(ansi.Truncate("Not saved: "+err.Error(), width, "…"))
	}
	if m.status == "" {
		return ""
	}
	style := m.styles.Status
	if m.statusErr {
		style = m.styles.StatusErr
	}
	return style.Render(ansi.Truncate(m.status, width, "…"))
}

func span(start, end time.Time) string {
	return dateutil.FormatClock(start) + "-" + dateutil.FormatClock(end)
}

func statusSymbol(completed bool) string {
	if completed {
		return "✓"
	}
	return "○"
}

func formatMinutes(minutes int) string {
	h, mins := minutes/60, minutes%60
	switch {
	case h == 0:
		return fmt.Sprintf("%dm", mins)
	case mins == 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dh%dm", h, mins)
	}
}
