package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/javiermolinar/chronoblock/internal/schedule"
	"github.com/javiermolinar/chronoblock/internal/tui/commands"
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ensureCursorVisible()
		return m, nil

	case commands.AppliedMsg:
		m.logEvent("applied", "kind", msg.Kind, "block_id", msg.Block.ID)
		m.reload()
		if sameDay(msg.Block.Start, m.day) {
			m.cursor = m.slotFor(msg.Block.Start)
			m.ensureCursorVisible()
		}
		cmd := m.setStatus(appliedText(msg), false)
		return m, cmd

	case commands.RejectedMsg:
		// The store is unchanged; redraw from it so any preview disappears.
		m.logEvent("rejected", "kind", msg.Request.Kind, "error", msg.Err)
		m.move = nil
		m.reload()
		cmd := m.setStatus(rejectionText(msg.Request.Kind, msg.Err), true)
		return m, cmd

	case commands.MutatedMsg:
		m.reload()
		cmd := m.setStatus(msg.Status, false)
		return m, cmd

	case commands.ErrMsg:
		m.logEvent("error", "error", msg.Err)
		m.reload()
		cmd := m.setStatus(msg.Err.Error(), true)
		return m, cmd

	case commands.StatusMsg:
		cmd := m.setStatus(msg.Msg, false)
		return m, cmd

	case commands.ClearStatusMsg:
		if msg.Seq == m.statusSeq {
			m.status = ""
			m.statusErr = false
		}
		return m, nil

	case commands.NowMsg:
		m.nowTime = m.now()
		return m, commands.TickNow(nowInterval)
	}

	return m, nil
}

func appliedText(msg commands.AppliedMsg) string {
	b := msg.Block
	at := span(b.Start, b.End)
	switch msg.Kind {
	case schedule.RequestMove:
		return "Moved " + b.Title + " to " + at
	case schedule.RequestResize:
		return "Resized " + b.Title + " to " + at
	case schedule.RequestConvert:
		return "Scheduled " + b.Title + " at " + at
	default:
		return "Created " + b.Title + " " + at
	}
}
