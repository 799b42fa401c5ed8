package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/javiermolinar/chronoblock/internal/tui/theme"
)

// Layout constants.
const (
	timeColumnWidth = 6
	sidebarWidth    = 34
	minTimeline     = 20
	defaultWidth    = 80
	defaultHeight   = 24
	chromeLines     = 4 // header, rule, help, status
)

// Styles holds all lipgloss styles for the TUI, derived from a palette.
type Styles struct {
	Title  lipgloss.Style
	Header lipgloss.Style
	Rule   lipgloss.Style

	// Time column
	TimeLabel       lipgloss.Style
	TimeLabelNow    lipgloss.Style
	TimeLabelCursor lipgloss.Style

	// Timeline cells
	Empty           lipgloss.Style
	EmptyCursor     lipgloss.Style
	Block           lipgloss.Style
	BlockAlt        lipgloss.Style
	BlockPast       lipgloss.Style
	BlockDone       lipgloss.Style
	BlockDoneAlt    lipgloss.Style
	BlockSelected   lipgloss.Style
	Ghost           lipgloss.Style
	Preview         lipgloss.Style
	PreviewConflict lipgloss.Style

	// Sidebar
	SidebarTitle lipgloss.Style
	Task         lipgloss.Style
	TaskSelected lipgloss.Style
	TaskDone     lipgloss.Style

	// Footer
	Help      lipgloss.Style
	Status    lipgloss.Style
	StatusErr lipgloss.Style
	Prompt    lipgloss.Style
}

// NewStyles creates styles from a palette.
func NewStyles(p *theme.Palette) *Styles {
	if p == nil {
		p = theme.NewPalette(nil)
	}

	cell := lipgloss.NewStyle().Padding(0, 1)

	return &Styles{
		Title:  lipgloss.NewStyle().Bold(true).Foreground(p.TextOnAccent).Background(p.Accent).Padding(0, 1),
		Header: lipgloss.NewStyle().Foreground(p.Fg).Bold(true),
		Rule:   lipgloss.NewStyle().Foreground(p.FgMuted),

		TimeLabel:       lipgloss.NewStyle().Foreground(p.FgMuted).Width(timeColumnWidth),
		TimeLabelNow:    lipgloss.NewStyle().Foreground(p.Current).Bold(true).Width(timeColumnWidth),
		TimeLabelCursor: lipgloss.NewStyle().Foreground(p.TextOnAccent).Background(p.Accent).Width(timeColumnWidth),

		Empty:           cell,
		EmptyCursor:     cell.Background(p.BgSelection).Foreground(p.Fg),
		Block:           cell.Background(p.BlockBg).Foreground(p.TextOnBlock),
		BlockAlt:        cell.Background(p.BlockBgAlt).Foreground(p.TextOnBlock),
		BlockPast:       cell.Background(p.BlockPastBg).Foreground(p.FgMuted),
		BlockDone:       cell.Background(p.DoneBg).Foreground(p.TextOnDone),
		BlockDoneAlt:    cell.Background(p.DoneBgAlt).Foreground(p.TextOnDone),
		BlockSelected:   cell.Background(p.Accent).Foreground(p.TextOnAccent).Bold(true),
		Ghost:           cell.Foreground(p.FgMuted).Faint(true),
		Preview:         cell.Background(p.Warning).Foreground(p.TextOnWarning).Bold(true),
		PreviewConflict: cell.Background(p.Conflict).Foreground(p.TextOnConflict).Bold(true),

		SidebarTitle: lipgloss.NewStyle().Foreground(p.Accent).Bold(true),
		Task:         lipgloss.NewStyle().Foreground(p.Fg),
		TaskSelected: lipgloss.NewStyle().Background(p.BgSelection).Foreground(p.Fg).Bold(true),
		TaskDone:     lipgloss.NewStyle().Foreground(p.Done).Strikethrough(true),

		Help:      lipgloss.NewStyle().Foreground(p.FgMuted),
		Status:    lipgloss.NewStyle().Foreground(p.Accent),
		StatusErr: lipgloss.NewStyle().Foreground(p.Conflict).Bold(true),
		Prompt:    lipgloss.NewStyle().Foreground(p.Accent).Bold(true),
	}
}
