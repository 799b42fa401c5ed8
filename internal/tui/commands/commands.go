// Package commands provides TUI command constructors and message types.
package commands

import (
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/javiermolinar/chronoblock/internal/schedule"
)

// AppliedMsg is sent when a schedule request was committed.
type AppliedMsg struct {
	Kind  schedule.RequestKind
	Block schedule.TimeBlock
}

// RejectedMsg is sent when a schedule request was refused.
// The schedule is unchanged and any preview must be reverted.
type RejectedMsg struct {
	Request schedule.Request
	Err     error
}

// MutatedMsg is sent after a simple store mutation succeeded.
type MutatedMsg struct {
	Status string
}

// ErrMsg is sent when an error occurs.
type ErrMsg struct {
	Err error
}

// StatusMsg is sent for temporary status messages.
type StatusMsg struct {
	Msg string
}

// ClearStatusMsg is sent to clear the status message with the same Seq.
type ClearStatusMsg struct {
	Seq int
}

// NowMsg carries the current time for the now marker.
type NowMsg struct {
	Time time.Time
}

// clipboardWrite is swapped in tests.
var clipboardWrite = clipboard.WriteAll

// Apply commits a request through the store.
func Apply(store *schedule.Store, req schedule.Request) tea.Cmd {
	return func() tea.Msg {
		b, err := store.Apply(req)
		if err != nil {
			return RejectedMsg{Request: req, Err: err}
		}
		return AppliedMsg{Kind: req.Kind, Block: b}
	}
}

// Mutate runs fn and reports status on success.
func Mutate(status string, fn func() error) tea.Cmd {
	return func() tea.Msg {
		if err := fn(); err != nil {
			return ErrMsg{Err: err}
		}
		return MutatedMsg{Status: status}
	}
}

// CopyToClipboard writes text to the system clipboard.
func CopyToClipboard(text, status string) tea.Cmd {
	return func() tea.Msg {
		if err := clipboardWrite(text); err != nil {
			return ErrMsg{Err: err}
		}
		return StatusMsg{Msg: status}
	}
}

// ClearStatusAfter clears status message seq after d.
func ClearStatusAfter(d time.Duration, seq int) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return ClearStatusMsg{Seq: seq}
	})
}

// TickNow sends a NowMsg every d.
func TickNow(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return NowMsg{Time: t}
	})
}
