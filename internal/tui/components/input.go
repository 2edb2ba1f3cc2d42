package components

import (
	"strings"

	"github.com/allbin/go-rs485/internal/tui/colors"
	"github.com/allbin/go-rs485/internal/tui/styles"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type SendingMode int

const (
	SendingModeASCII SendingMode = iota
	SendingModeHex
)

func (s SendingMode) String() string {
	if s == SendingModeHex {
		return "HEX"
	}
	return "ASCII"
}

const (
	asciiPlaceholder = "Type a message, Enter transmits it with a newline..."
	hexPlaceholder   = "Hex bytes, e.g. 01 03 00 00 00 02 C4 0B"
	maxHistory       = 100
)

// Input is the transmit line with ASCII/HEX modes and history
type Input struct {
	textInput    textinput.Model
	sendingMode  SendingMode
	history      []string
	historyIndex int
	pending      string // what was typed before browsing history
	width        int
}

func NewInput(mode SendingMode) *Input {
	ti := textinput.New()
	ti.CharLimit = 512
	ti.Prompt = ""

	i := &Input{
		textInput:    ti,
		historyIndex: -1,
	}
	i.setMode(mode)
	return i
}

func (i *Input) setMode(mode SendingMode) {
	i.sendingMode = mode
	if mode == SendingModeHex {
		i.textInput.Placeholder = hexPlaceholder
	} else {
		i.textInput.Placeholder = asciiPlaceholder
	}
}

func (i *Input) SetWidth(width int) {
	i.width = width
	// border, padding, prompt and a space
	usable := width - 6
	if usable < 20 {
		usable = 20
	}
	i.textInput.Width = usable
}

func (i *Input) Focus() {
	i.textInput.Focus()
}

func (i *Input) Blur() {
	i.textInput.Blur()
}

func (i *Input) Value() string {
	return i.textInput.Value()
}

func (i *Input) SetValue(value string) {
	i.textInput.SetValue(value)
}

func (i *Input) ToggleSendingMode() {
	if i.sendingMode == SendingModeASCII {
		i.setMode(SendingModeHex)
	} else {
		i.setMode(SendingModeASCII)
	}
}

func (i *Input) SendingMode() SendingMode {
	return i.sendingMode
}

func (i *Input) Update(msg tea.Msg) (*Input, tea.Cmd) {
	var cmd tea.Cmd
	i.textInput, cmd = i.textInput.Update(msg)
	return i, cmd
}

func (i *Input) View(insert bool) string {
	symbol, color := ">", colors.Green
	if i.sendingMode == SendingModeHex {
		symbol, color = "#", colors.Yellow
	}
	prompt := lipgloss.NewStyle().Foreground(color).Bold(true).Render(symbol)

	var content string
	if insert {
		content = lipgloss.JoinHorizontal(lipgloss.Left, prompt, " ", i.textInput.View())
	} else {
		hint := lipgloss.NewStyle().Foreground(colors.Overlay0).Render("Press 'i' to type, 'b' to change baud rate")
		content = lipgloss.JoinHorizontal(lipgloss.Left, prompt, " ", hint)
	}

	// RoundedBorder and horizontal padding take four columns
	width := i.width - 4
	if width < 10 {
		width = 10
	}
	style := styles.InputStyle.Width(width)
	if insert {
		style = style.BorderForeground(colors.Green)
	}
	return style.Render(content)
}

// AddToHistory records a sent line, skipping blanks and repeats
func (i *Input) AddToHistory(line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}
	if n := len(i.history); n > 0 && i.history[n-1] == line {
		i.resetHistory()
		return
	}

	i.history = append(i.history, line)
	if len(i.history) > maxHistory {
		i.history = i.history[1:]
	}
	i.resetHistory()
}

func (i *Input) resetHistory() {
	i.historyIndex = -1
	i.pending = ""
}

func (i *Input) History() []string {
	return i.history
}

// HistoryUp recalls the previous line
func (i *Input) HistoryUp() {
	if len(i.history) == 0 {
		return
	}

	if i.historyIndex == -1 {
		i.pending = i.textInput.Value()
		i.historyIndex = len(i.history) - 1
	} else if i.historyIndex > 0 {
		i.historyIndex--
	}
	i.textInput.SetValue(i.history[i.historyIndex])
}

// HistoryDown moves towards the newest line and then back to what was typed
func (i *Input) HistoryDown() {
	if i.historyIndex == -1 {
		return
	}

	if i.historyIndex < len(i.history)-1 {
		i.historyIndex++
		i.textInput.SetValue(i.history[i.historyIndex])
		return
	}

	i.textInput.SetValue(i.pending)
	i.resetHistory()
}
