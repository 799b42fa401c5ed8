package theme

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestNewPalette_BlockShades(t *testing.T) {
	base := &Theme{
		Bg:          "#101010",
		BgHighlight: "#202020",
		BgSelection: "#303030",
		Fg:          "#ffffff",
		FgMuted:     "#aaaaaa",
		Accent:      "#ff0000",
		Block:       "#112233",
		Done:        "#445566",
		Current:     "#777777",
		Warning:     "#888888",
		Conflict:    "#ff3333",
	}

	palette := NewPalette(base)

	if palette.BlockBg != lipgloss.Color(darkenColor(base.Block)) {
		t.Fatalf("BlockBg = %q, want %q", palette.BlockBg, darkenColor(base.Block))
	}
	if palette.DoneBg != lipgloss.Color(muteColor(base.Done)) {
		t.Fatalf("DoneBg = %q, want %q", palette.DoneBg, muteColor(base.Done))
	}
	if palette.BlockBgAlt != lipgloss.Color(alternateShade(darkenColor(base.Block), false)) {
		t.Fatalf("BlockBgAlt = %q, want %q", palette.BlockBgAlt, alternateShade(darkenColor(base.Block), false))
	}
}

func TestNewPalette_Fallbacks(t *testing.T) {
	base := &Theme{
		Bg:      "#101010",
		Fg:      "#ffffff",
		Accent:  "#ff0000",
		Block:   "#00ff00",
		Done:    "#0000ff",
		Warning: "#ff00ff",
	}

	palette := NewPalette(base)
	if palette.BgHighlight != lipgloss.Color(base.Bg) {
		t.Fatalf("BgHighlight = %q, want %q", palette.BgHighlight, base.Bg)
	}
	if palette.BgSelection != lipgloss.Color(base.Bg) {
		t.Fatalf("BgSelection = %q, want %q", palette.BgSelection, base.Bg)
	}
}

func TestNewPalette_LightThemeInvertsShades(t *testing.T) {
	base := &Theme{
		Bg:          "#f5f5f5",
		BgHighlight: "#eeeeee",
		BgSelection: "#e0e0e0",
		Fg:          "#222222",
		FgMuted:     "#555555",
		Accent:      "#2f6feb",
		Block:       "#1d8a8a",
		Done:        "#2f8f2f",
		Current:     "#c97b00",
		Warning:     "#c2410c",
		Conflict:    "#d20f39",
	}

	palette := NewPalette(base)
	if relativeLuminance(string(palette.BlockBg)) <= relativeLuminance(base.Block) {
		t.Fatalf("BlockBg luminance = %f, want greater than Block", relativeLuminance(string(palette.BlockBg)))
	}
	if relativeLuminance(string(palette.DoneBg)) <= relativeLuminance(base.Done) {
		t.Fatalf("DoneBg luminance = %f, want greater than Done", relativeLuminance(string(palette.DoneBg)))
	}
}

func TestNewPalette_NilUsesMocha(t *testing.T) {
	mocha, err := Load("mocha")
	if err != nil {
		t.Fatal(err)
	}
	if got := NewPalette(nil).Block; got != lipgloss.Color(mocha.Block) {
		t.Errorf("Block = %q, want %q", got, mocha.Block)
	}
}

func TestChooseTextColorPrefersContrast(t *testing.T) {
	bg := "#f0f0f0"
	lightText := "#ffffff"
	darkText := "#111111"

	if got := chooseTextColor(bg, lightText, darkText); got != darkText {
		t.Fatalf("chooseTextColor(%q, %q, %q) = %q, want %q", bg, lightText, darkText, got, darkText)
	}
}
