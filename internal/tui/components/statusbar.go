package components

import (
	"fmt"

	"github.com/allbin/go-rs485/internal/tui/colors"
	"github.com/charmbracelet/lipgloss"
)

// LinkState is what the bus is doing from the terminal's point of view
type LinkState int

const (
	LinkOpening LinkState = iota
	LinkReceiving
	LinkTransmitting
	LinkFailed
	LinkClosed
)

func (s LinkState) String() string {
	switch s {
	case LinkReceiving:
		return "RX"
	case LinkTransmitting:
		return "TX"
	case LinkFailed:
		return "ERROR"
	case LinkClosed:
		return "CLOSED"
	default:
		return "OPENING"
	}
}

// LinkInfo describes the line settings shown on the right of the bar
type LinkInfo struct {
	BaudRate int
	DataBits int
	Parity   string
	StopBits int
	Pin      string
	Driver   string
}

type StatusBar struct {
	device string
	state  LinkState
	err    error
	info   LinkInfo
	width  int
}

func NewStatusBar(device string) *StatusBar {
	return &StatusBar{device: device, width: 80}
}

func (sb *StatusBar) SetWidth(width int) {
	sb.width = width
}

func (sb *StatusBar) SetState(state LinkState, err error) {
	sb.state = state
	sb.err = err
}

func (sb *StatusBar) State() LinkState {
	return sb.state
}

func (sb *StatusBar) Err() error {
	return sb.err
}

func (sb *StatusBar) SetInfo(info LinkInfo) {
	sb.info = info
}

func (sb *StatusBar) SetBaudRate(baud int) {
	sb.info.BaudRate = baud
}

func (sb *StatusBar) Info() LinkInfo {
	return sb.info
}

func (sb *StatusBar) stateStyle() lipgloss.Style {
	style := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	switch sb.state {
	case LinkReceiving:
		return style.Foreground(colors.Sky)
	case LinkTransmitting:
		return style.Foreground(colors.Peach)
	case LinkOpening:
		return style.Foreground(colors.Yellow)
	default:
		return style.Foreground(colors.Red)
	}
}

// View renders the bar: mode, device, bus state, then line settings and
// the clock on the right.
func (sb *StatusBar) View(insert bool, sendingMode SendingMode, clock string) string {
	width := sb.width
	if width <= 0 {
		width = 80
	}

	modeStyle := lipgloss.NewStyle().
		Foreground(colors.Base).
		Background(colors.Blue).
		Bold(true).
		Padding(0, 1)
	modeText := "NORMAL"
	if insert {
		modeStyle = modeStyle.Background(colors.Green)
		modeText = "INSERT " + sendingMode.String()
	}

	device := lipgloss.NewStyle().Foreground(colors.Mauve).Bold(true).Padding(0, 1).Render(sb.device)
	state := sb.stateStyle().Render(sb.state.String())
	divider := lipgloss.NewStyle().Foreground(colors.Surface2).Padding(0, 1).Render("│")

	left := lipgloss.JoinHorizontal(lipgloss.Left, modeStyle.Render(modeText), device, state, divider)

	details := "⚡ rs485"
	if sb.info.BaudRate > 0 {
		details = fmt.Sprintf("⚡ %d %d%s%d pin:%s %s",
			sb.info.BaudRate, sb.info.DataBits, sb.info.Parity, sb.info.StopBits,
			sb.info.Pin, sb.info.Driver)
	}
	if sb.err != nil {
		details = "✗ " + sb.err.Error()
	}
	detailStyle := lipgloss.NewStyle().Foreground(colors.Subtext0).Padding(0, 1)
	if sb.err != nil {
		detailStyle = detailStyle.Foreground(colors.Red)
	}

	right := lipgloss.JoinHorizontal(lipgloss.Left,
		detailStyle.Render(details),
		divider,
		lipgloss.NewStyle().Foreground(colors.Subtext1).Padding(0, 1).Render(clock))

	spacer := width - lipgloss.Width(left) - lipgloss.Width(right)
	if spacer < 1 {
		spacer = 1
	}

	bar := lipgloss.NewStyle().
		Foreground(colors.Text).
		Background(colors.Surface0).
		Width(width)

	return bar.Render(lipgloss.JoinHorizontal(lipgloss.Left,
		left, lipgloss.NewStyle().Width(spacer).Render(""), right))
}
