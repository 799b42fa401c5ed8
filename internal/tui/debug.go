package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/javiermolinar/chronoblock/internal/dateutil"
)

// logKey logs a key press.
func (m Model) logKey(msg tea.KeyMsg) {
	m.logger.Debug("key press",
		"key", msg.String(),
		"mode", m.mode.String(),
		"focus", m.focusName(),
		"cursor", dateutil.FormatClock(m.cursorTime()),
	)
}

// logEvent logs a message from a command.
func (m Model) logEvent(event string, args ...any) {
	m.logger.Debug(event, args...)
}

// setMode switches mode and logs the transition.
func (m *Model) setMode(to Mode, reason string) {
	if m.mode == to {
		return
	}
	m.logger.Debug("mode change", "from", m.mode.String(), "to", to.String(), "reason", reason)
	m.mode = to
}

// logPreview logs the move preview position.
func (m Model) logPreview() {
	p := m.move
	if p == nil {
		return
	}
	m.logger.Debug("move preview",
		"block_id", p.blockID,
		"start", p.start,
		"end", p.end,
		"conflict", p.conflict,
	)
}

func (m Model) focusName() string {
	if m.focus == paneTasks {
		return "tasks"
	}
	return "timeline"
}
