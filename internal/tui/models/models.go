package models

import (
	"github.com/allbin/go-rs485/internal/bus"
	tea "github.com/charmbracelet/bubbletea"
)

// InputMode represents the current input mode (vim-like)
type InputMode int

const (
	InputModeNormal InputMode = iota
	InputModeInsert
)

func (m InputMode) String() string {
	if m == InputModeInsert {
		return "INSERT"
	}
	return "NORMAL"
}

// FrameMsg carries one frame from the bus session
type FrameMsg struct {
	Frame bus.Frame
}

// SessionEndedMsg is sent once the frame stream closes
type SessionEndedMsg struct {
	Err error
}

// TransmitStartedMsg marks a transmission handed to the session
type TransmitStartedMsg struct {
	Bytes int
}

// TransmitDoneMsg reports how a transmission ended
type TransmitDoneMsg struct {
	N   int
	Err error
}

// BaudChangedMsg reports a reconfiguration attempt
type BaudChangedMsg struct {
	Baud int
	Err  error
}

// WaitForFrame returns a command delivering the next frame, or a
// SessionEndedMsg carrying the result of done once frames is closed.
func WaitForFrame(frames <-chan bus.Frame, done <-chan error) tea.Cmd {
	return func() tea.Msg {
		frame, ok := <-frames
		if !ok {
			return SessionEndedMsg{Err: <-done}
		}
		return FrameMsg{Frame: frame}
	}
}
