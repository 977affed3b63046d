// Package ui provides the visual styling for the forge interactive session,
// with light/dark mode support.
package ui

import (
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Status colors, shared by both themes.
const (
	okColor   = lipgloss.Color("#16a34a")
	warnColor = lipgloss.Color("#f59e0b")
	failColor = lipgloss.Color("#dc2626")
)

// Theme is the active color scheme. Ink carries the strongest text and
// filled surfaces; Surface is what sits behind them.
type Theme struct {
	Ink     lipgloss.Color
	Text    lipgloss.Color
	Muted   lipgloss.Color
	Accent  lipgloss.Color
	Surface lipgloss.Color
	Border  lipgloss.Color
	IsDark  bool
}

// LightTheme is the default: stone grays with an ember accent.
func LightTheme() Theme {
	return Theme{
		Ink:     "#1c1917",
		Text:    "#292524",
		Muted:   "#a8a29e",
		Accent:  "#d97706",
		Surface: "#f5f5f4",
		Border:  "#d6d3d1",
	}
}

// DarkTheme inverts the scale and brightens the accent.
func DarkTheme() Theme {
	return Theme{
		Ink:     "#f5f5f4",
		Text:    "#e7e5e4",
		Muted:   "#78716c",
		Accent:  "#f59e0b",
		Surface: "#292524",
		Border:  "#44403c",
		IsDark:  true,
	}
}

// DetectTheme reads the terminal environment. COLORFGBG ends in the
// background's ANSI index; 0 through 6 and 8 are the dark ones. The
// FORGE_DARK_MODE variable forces dark when detection has nothing to go on.
func DetectTheme() Theme {
	if v := os.Getenv("COLORFGBG"); v != "" {
		if i := strings.LastIndexByte(v, ';'); i >= 0 {
			bg, err := strconv.Atoi(v[i+1:])
			if err == nil && bg >= 0 && (bg <= 6 || bg == 8) {
				return DarkTheme()
			}
		}
	}
	if os.Getenv("FORGE_DARK_MODE") == "1" {
		return DarkTheme()
	}
	return LightTheme()
}

// Styles is the rendered vocabulary of the session: every piece of chrome
// the interactive loop prints goes through one of these.
type Styles struct {
	Theme Theme

	Header  lipgloss.Style
	Badge   lipgloss.Style
	Content lipgloss.Style
	Divider lipgloss.Style

	Prompt    lipgloss.Style
	UserInput lipgloss.Style
	Spinner   lipgloss.Style

	Bold  lipgloss.Style
	Muted lipgloss.Style

	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
}

// NewStyles builds the style set for a theme.
func NewStyles(t Theme) Styles {
	text := lipgloss.NewStyle().Foreground(t.Text)

	return Styles{
		Theme: t,

		Header:  lipgloss.NewStyle().Background(t.Ink).Foreground(t.Surface).Bold(true).Padding(0, 2),
		Badge:   lipgloss.NewStyle().Background(t.Accent).Foreground(t.Surface).Bold(true).Padding(0, 1),
		Content: lipgloss.NewStyle().Padding(1, 2),
		Divider: lipgloss.NewStyle().Foreground(t.Border),

		Prompt:    lipgloss.NewStyle().Foreground(t.Accent).Bold(true),
		UserInput: text,
		Spinner:   lipgloss.NewStyle().Foreground(t.Accent),

		Bold:  text.Bold(true),
		Muted: lipgloss.NewStyle().Foreground(t.Muted),

		Success: lipgloss.NewStyle().Foreground(okColor).Bold(true),
		Warning: lipgloss.NewStyle().Foreground(warnColor).Bold(true),
		Error:   lipgloss.NewStyle().Foreground(failColor).Bold(true),
	}
}

// DefaultStyles builds styles for the detected theme.
func DefaultStyles() Styles {
	return NewStyles(DetectTheme())
}

// RenderDivider draws a horizontal rule across the given width.
func (s Styles) RenderDivider(width int) string {
	if width < 1 {
		width = 1
	}
	return s.Divider.Render(strings.Repeat("─", width))
}
