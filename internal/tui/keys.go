package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/javiermolinar/chronoblock/internal/dateutil"
	"github.com/javiermolinar/chronoblock/internal/schedule"
	"github.com/javiermolinar/chronoblock/internal/tui/commands"
	"github.com/javiermolinar/chronoblock/internal/tui/input"
)

// handleKeyMsg handles keyboard input.
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.logKey(msg)

	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.mode {
	case ModeInput:
		return m.handleInputKeys(msg)
	case ModeMove:
		return m.handleMoveKeys(msg)
	}
	if m.focus == paneTasks {
		return m.handleTaskKeys(msg)
	}
	return m.handleTimelineKeys(msg)
}

// handleGlobalKeys handles keys shared by both panes in normal mode.
func (m Model) handleGlobalKeys(msg tea.KeyMsg) (Model, tea.Cmd, bool) {
	switch msg.String() {
	case "q":
		return m, tea.Quit, true
	case "tab":
		if m.focus == paneTimeline {
			m.focus = paneTasks
		} else {
			m.focus = paneTimeline
		}
		return m, nil, true
	case "h", "left":
		m.setDay(m.day.AddDate(0, 0, -1))
	case "l", "right":
		m.setDay(m.day.AddDate(0, 0, 1))
	case "H":
		m.setDay(m.day.AddDate(0, 0, -7))
	case "L":
		m.setDay(m.day.AddDate(0, 0, 7))
	case "t":
		m.setDay(m.now())
		m.cursor = m.slotFor(m.now())
	case "a":
		return m.openInput(inputNewTask, "New task: ", ""), textinput.Blink, true
	case "y":
		return m, commands.CopyToClipboard(agendaText(m.day, m.blocks), "Copied agenda"), true
	default:
		return m, nil, false
	}
	m.ensureCursorVisible()
	return m, nil, true
}

// handleTimelineKeys handles keys when the timeline has focus.
func (m Model) handleTimelineKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if updated, cmd, ok := m.handleGlobalKeys(msg); ok {
		return updated, cmd
	}

	switch msg.String() {
	case "j", "down":
		m.cursor++
	case "k", "up":
		m.cursor--
	case "g", "home":
		m.cursor = 0
	case "G", "end":
		m.cursor = m.slotCount() - 1
	case "J":
		m.jumpBlock(1)
	case "K":
		m.jumpBlock(-1)

	case "n":
		return m.openInput(inputNewBlock, "New block: ", ""), textinput.Blink
	case "m", "enter":
		return m.startMove()
	case "+", "=":
		return m.resizeSelected(m.sched.Step())
	case "-", "_":
		return m.resizeSelected(-m.sched.Step())
	case "r":
		b, ok := m.selectedBlock()
		if !ok {
			cmd := m.setStatus("No block under cursor", true)
			return m, cmd
		}
		m.targetID = b.ID
		return m.openInput(inputRenameBlock, "Rename: ", b.Title), textinput.Blink
	case "x", " ":
		b, ok := m.selectedBlock()
		if !ok {
			return m, nil
		}
		status := "Completed " + b.Title
		if b.Completed {
			status = "Reopened " + b.Title
		}
		return m, commands.Mutate(status, func() error {
			m.store.ToggleTimeBlockCompletion(b.ID)
			return nil
		})
	case "d", "delete":
		b, ok := m.selectedBlock()
		if !ok {
			return m, nil
		}
		return m, commands.Mutate("Deleted "+b.Title, func() error {
			m.store.DeleteTimeBlock(b.ID)
			return nil
		})
	default:
		return m, nil
	}

	m.clampCursor()
	m.ensureCursorVisible()
	return m, nil
}

// handleTaskKeys handles keys when the task list has focus.
func (m Model) handleTaskKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if updated, cmd, ok := m.handleGlobalKeys(msg); ok {
		return updated, cmd
	}

	t, hasTask := m.selectedTask()

	switch msg.String() {
	case "j", "down":
		if m.taskCursor < len(m.tasks)-1 {
			m.taskCursor++
		}
	case "k", "up":
		if m.taskCursor > 0 {
			m.taskCursor--
		}
	case "s", "enter":
		if !hasTask {
			return m, nil
		}
		return m, commands.Apply(m.store, schedule.Request{
			Kind:   schedule.RequestConvert,
			TaskID: t.ID,
			Start:  m.cursorTime(),
		})
	case "r":
		if !hasTask {
			return m, nil
		}
		m.targetID = t.ID
		return m.openInput(inputRenameTask, "Rename: ", t.Title), textinput.Blink
	case "x", " ":
		if !hasTask {
			return m, nil
		}
		status := "Completed " + t.Title
		if t.Completed {
			status = "Reopened " + t.Title
		}
		return m, commands.Mutate(status, func() error {
			m.store.ToggleTaskCompletion(t.ID)
			return nil
		})
	case "d", "delete":
		if !hasTask {
			return m, nil
		}
		return m, commands.Mutate("Deleted task "+t.Title, func() error {
			m.store.DeleteTask(t.ID)
			return nil
		})
	}
	return m, nil
}

// handleMoveKeys drags the preview. Only enter touches the store.
func (m Model) handleMoveKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	step := m.sched.Step()

	switch msg.String() {
	case "esc", "q":
		m.move = nil
		m.setMode(ModeNormal, "move cancelled")
		m.reload()
		cmd := m.setStatus("Move cancelled", false)
		return m, cmd
	case "enter", "m":
		p := m.move
		m.move = nil
		m.setMode(ModeNormal, "move committed")
		m.reload()
		return m, commands.Apply(m.store, schedule.Request{
			Kind:    schedule.RequestMove,
			BlockID: p.blockID,
			Start:   p.start,
		})
	case "j", "down":
		m.shiftPreview(step, 0)
	case "k", "up":
		m.shiftPreview(-step, 0)
	case "J":
		m.shiftPreview(time.Hour, 0)
	case "K":
		m.shiftPreview(-time.Hour, 0)
	case "h", "left":
		m.shiftPreview(0, -1)
	case "l", "right":
		m.shiftPreview(0, 1)
	}
	return m, nil
}

// handleInputKeys feeds the prompt and submits on enter.
func (m Model) handleInputKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.closeInput()
		return m, nil
	case "enter":
		value := strings.TrimSpace(m.input.Value())
		kind, target := m.inputKind, m.targetID
		m.closeInput()
		cmd := m.submitInput(kind, target, value)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submitInput turns the typed line into a store command.
func (m *Model) submitInput(kind inputKind, target, value string) tea.Cmd {
	switch kind {
	case inputNewBlock:
		req, err := m.blockRequest(value)
		if err != nil {
			return m.setStatus(err.Error(), true)
		}
		return commands.Apply(m.store, req)

	case inputNewTask:
		e, err := input.ParseQuickAdd(value)
		if err != nil {
			return m.setStatus(err.Error(), true)
		}
		if e.HasStart {
			return m.setStatus("tasks have no start time; press s on a task to schedule it", true)
		}
		return commands.Mutate("Added task "+e.Title, func() error {
			_, err := m.store.AddTask(e.Title, "", e.Minutes())
			return err
		})

	case inputRenameBlock:
		return commands.Mutate("Renamed to "+value, func() error {
			return m.store.UpdateTimeBlock(target, schedule.TimeBlockUpdate{Title: &value})
		})

	case inputRenameTask:
		return commands.Mutate("Renamed to "+value, func() error {
			return m.store.UpdateTask(target, schedule.TaskUpdate{Title: &value})
		})
	}
	return nil
}

// blockRequest builds a create request from a quick-add line. Times are
// read on the shown day; without one the block starts at the cursor.
func (m Model) blockRequest(line string) (schedule.Request, error) {
	e, err := input.ParseQuickAdd(line)
	if err != nil {
		return schedule.Request{}, err
	}

	req := schedule.Request{Kind: schedule.RequestCreate, Title: e.Title, Start: m.cursorTime()}
	if e.HasStart {
		req.Start = onDay(m.day, e.Start)
	}
	switch {
	case e.HasEnd:
		req.End = onDay(m.day, e.End)
	case e.Duration > 0:
		req.End = req.Start.Add(e.Duration)
	}
	return req, nil
}

// openInput switches to the prompt.
func (m Model) openInput(kind inputKind, prompt, value string) Model {
	m.inputKind = kind
	m.input.Prompt = prompt
	m.input.SetValue(value)
	m.input.CursorEnd()
	m.input.Focus()
	m.setMode(ModeInput, "prompt opened")
	return m
}

func (m *Model) closeInput() {
	m.input.Blur()
	m.input.Reset()
	m.targetID = ""
	m.setMode(ModeNormal, "prompt closed")
}

// startMove begins dragging the block under the cursor.
func (m Model) startMove() (tea.Model, tea.Cmd) {
	b, ok := m.selectedBlock()
	if !ok {
		cmd := m.setStatus("No block under cursor", true)
		return m, cmd
	}
	m.move = &movePreview{blockID: b.ID, title: b.Title, start: b.Start, end: b.End}
	m.setMode(ModeMove, "move started")
	m.updatePreview()
	return m, nil
}

// shiftPreview moves the preview by d and by days on the calendar,
// following it to another day when needed.
func (m *Model) shiftPreview(d time.Duration, days int) {
	p := m.move
	p.start = p.start.Add(d).AddDate(0, 0, days)
	p.end = p.end.Add(d).AddDate(0, 0, days)

	if day := dateutil.TruncateToDay(p.start); !day.Equal(m.day) {
		m.day = day
		m.reload()
	}
	m.updatePreview()
}

// updatePreview recomputes the preview's conflict and puts the cursor on it.
func (m *Model) updatePreview() {
	p := m.move
	p.blocker, p.conflict = m.store.FindConflict(p.start, p.end, p.blockID)
	m.cursor = m.slotFor(p.start)
	m.ensureCursorVisible()
	m.logPreview()
}

// resizeSelected moves the selected block's end by d.
func (m Model) resizeSelected(d time.Duration) (tea.Model, tea.Cmd) {
	b, ok := m.selectedBlock()
	if !ok {
		cmd := m.setStatus("No block under cursor", true)
		return m, cmd
	}
	return m, commands.Apply(m.store, schedule.Request{
		Kind:    schedule.RequestResize,
		BlockID: b.ID,
		End:     b.End.Add(d),
	})
}

// jumpBlock moves the cursor to the next (dir > 0) or previous block start.
func (m *Model) jumpBlock(dir int) {
	at := m.cursorTime()
	if dir > 0 {
		for _, b := range m.blocks {
			if b.Start.After(at) {
				m.cursor = m.slotFor(b.Start)
				return
			}
		}
		return
	}
	for i := len(m.blocks) - 1; i >= 0; i-- {
		if m.blocks[i].Start.Before(at) {
			m.cursor = m.slotFor(m.blocks[i].Start)
			return
		}
	}
}

// agendaText renders the day's blocks as plain lines for the clipboard.
func agendaText(day time.Time, blocks []schedule.TimeBlock) string {
	var sb strings.Builder
	sb.WriteString(day.Format("Monday, Jan 2 2006"))
	sb.WriteByte('\n')
	if len(blocks) == 0 {
		sb.WriteString("Nothing scheduled.\n")
		return sb.String()
	}
	for _, b := range blocks {
		mark := " "
		if b.Completed {
			mark = "x"
		}
		fmt.Fprintf(&sb, "[%s] %s-%s %s\n", mark,
			dateutil.FormatClock(b.Start), dateutil.FormatClock(b.End), b.Title)
	}
	return sb.String()
}

// rejectionText explains why a request was refused.
func rejectionText(kind schedule.RequestKind, err error) string {
	verb := map[schedule.RequestKind]string{
		schedule.RequestCreate:  "Cannot create block",
		schedule.RequestMove:    "Cannot move block",
		schedule.RequestResize:  "Cannot resize block",
		schedule.RequestConvert: "Cannot schedule task",
	}[kind]
	return verb + ": " + err.Error()
}
