package styles

import (
	"github.com/allbin/go-rs485/internal/tui/colors"
	"github.com/charmbracelet/lipgloss"
)

var (
	// Markers for one-shot command output
	InfoStyle = lipgloss.NewStyle().
			Foreground(colors.Mauve).
			Bold(true)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(colors.Green).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(colors.Red).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(colors.Yellow).
			Bold(true)

	MutedStyle = lipgloss.NewStyle().
			Foreground(colors.Subtext0)

	// Traffic direction
	TXStyle = lipgloss.NewStyle().
		Foreground(colors.Peach).
		Bold(true)

	RXStyle = lipgloss.NewStyle().
		Foreground(colors.Sky).
		Bold(true)

	ContentBorderStyle = lipgloss.NewStyle().
				BorderTop(true).
				BorderStyle(lipgloss.NormalBorder()).
				BorderForeground(colors.Surface1)

	InputStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colors.Surface2).
			Padding(0, 1)
)

// Direction returns the arrow and label for a frame direction
func Direction(tx bool) string {
	if tx {
		return TXStyle.Render("↗ TX")
	}
	return RXStyle.Render("↙ RX")
}
