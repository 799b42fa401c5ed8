package ui

import (
	"os"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// Color definitions for consistent styling across the UI.
var (
	// Scheduled blocks: bold cyan
	colorBlock = color.New(color.FgCyan, color.Bold)

	// Completed blocks and tasks: green
	colorDone = color.New(color.FgGreen)

	// Conflicts and unsaved changes: red
	colorConflict = color.New(color.FgRed, color.Bold)

	// Free time: yellow to make it pop
	colorFree = color.New(color.FgYellow)

	// Headers: bold
	colorHeader = color.New(color.Bold)

	// Muted: for secondary information
	colorMuted = color.New(color.FgWhite, color.Faint)
)

// termWidth returns the terminal width, or a default if detection fails.
func termWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80 // sensible default
	}
	return width
}

// DisableColor disables all color output.
func DisableColor() {
	color.NoColor = true
}

// EnableColor enables color output (if terminal supports it).
func EnableColor() {
	color.NoColor = false
}

func formatBlock(s string) string {
	return colorBlock.Sprint(s)
}

func formatDone(s string) string {
	return colorDone.Sprint(s)
}

func formatConflict(s string) string {
	return colorConflict.Sprint(s)
}

func formatFree(s string) string {
	return colorFree.Sprint(s)
}

// formatHeader formats text as a header.
func formatHeader(s string) string {
	return colorHeader.Sprint(s)
}

// formatMuted formats text as secondary/muted.
func formatMuted(s string) string {
	return colorMuted.Sprint(s)
}
