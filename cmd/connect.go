/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/allbin/go-rs485/internal/bus"
	"github.com/allbin/go-rs485/internal/payload"
	"github.com/allbin/go-rs485/internal/tui/components"
	"github.com/allbin/go-rs485/internal/tui/keys"
	"github.com/allbin/go-rs485/internal/tui/models"
	"github.com/allbin/go-rs485/internal/tui/styles"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// connectCmd represents the connect command
var connectCmd = &cobra.Command{
	Use:   "connect [port]",
	Short: "Interactive half-duplex terminal on the bus",
	Long: `Open an interactive terminal on the bus. Received data is listed as it
arrives; lines typed in insert mode are transmitted with the direction pin
raised and the bus is released again as soon as the UART has drained.

Keys:
  i / esc   insert / normal mode
  tab       switch between ASCII and HEX input
  enter     transmit (ASCII lines get a trailing newline)
  b         cycle the baud rate
  ↑/↓       browse traffic (normal mode) or history (insert mode)
  f         follow newest traffic
  ?         full help

Example usage:
  rs485 connect /dev/ttyUSB0
  rs485 connect /dev/ttyAMA0 --pin rpi:18 --baud 9600 --hex`,
	Args: cobra.RangeArgs(0, 1),
	RunE: func(cmd *cobra.Command, args []string) error {
		device, err := portArg(args, viper.GetString("port"))
		if err != nil {
			return err
		}

		mode := components.SendingModeASCII
		if hexMode, _ := cmd.Flags().GetBool("hex"); hexMode {
			mode = components.SendingModeHex
		}

		return runConnectTUI(cmd.Context(), device, mode)
	},
}

func init() {
	rootCmd.AddCommand(connectCmd)

	connectCmd.Flags().BoolP("hex", "x", false, "Start with hex input")
}

// connectModel represents the Bubble Tea model for the connect command
type connectModel struct {
	link    *link
	session *bus.Session
	frames  <-chan bus.Frame
	done    <-chan error
	ctx     context.Context
	cancel  context.CancelFunc

	traffic   *components.Traffic
	statusBar *components.StatusBar
	input     *components.Input
	help      help.Model
	keys      keys.ConnectKeys
	mode      models.InputMode
	width     int
}

func runConnectTUI(parent context.Context, device string, mode components.SendingMode) error {
	s := loadSettings()
	l, err := openLink(device, s)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s %s\n", styles.ErrorStyle.Render("✗"), describeError(err))
		return err
	}
	defer l.Close()

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	session := bus.New(l, bus.WithLogger(logger))
	done := make(chan error, 1)
	go func() { done <- session.Run(ctx) }()

	m := newConnectModel(ctx, cancel, l, session, done, mode)
	m.statusBar.SetInfo(components.LinkInfo{
		BaudRate: l.config.BaudRate,
		DataBits: l.config.DataBits,
		Parity:   l.config.Parity.String(),
		StopBits: l.config.StopBits,
		Pin:      l.pin.String(),
		Driver:   s.Driver,
	})

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(parent))
	_, err = p.Run()

	// Stop the session and let it drain before the link is released.
	cancel()
	for range session.Frames() {
	}
	return err
}

func newConnectModel(ctx context.Context, cancel context.CancelFunc, l *link, session *bus.Session, done <-chan error, mode components.SendingMode) *connectModel {
	m := &connectModel{
		link:      l,
		session:   session,
		frames:    session.Frames(),
		done:      done,
		ctx:       ctx,
		cancel:    cancel,
		traffic:   components.NewTraffic(),
		statusBar: components.NewStatusBar(l.device),
		input:     components.NewInput(mode),
		help:      help.New(),
		keys:      keys.NewConnectKeys(),
		mode:      models.InputModeNormal,
	}
	m.statusBar.SetState(components.LinkReceiving, nil)
	return m
}

func (m *connectModel) Init() tea.Cmd {
	return models.WaitForFrame(m.frames, m.done)
}

func (m *connectModel) transmit(data []byte) tea.Cmd {
	session, ctx := m.session, m.ctx
	return tea.Sequence(
		func() tea.Msg { return models.TransmitStartedMsg{Bytes: len(data)} },
		func() tea.Msg {
			n, err := session.Send(ctx, data)
			return models.TransmitDoneMsg{N: n, Err: err}
		},
	)
}

// cycleBaud reconfigures the port on the session goroutine, between reads
func (m *connectModel) cycleBaud() tea.Cmd {
	next := nextBaud(m.statusBar.Info().BaudRate)
	l, session, ctx := m.link, m.session, m.ctx
	return func() tea.Msg {
		err := session.Do(ctx, func() error { return l.setBaud(next) })
		return models.BaudChangedMsg{Baud: next, Err: err}
	}
}

func (m *connectModel) resize(width, height int) {
	m.width = width
	// input (3 with border), status bar, help line and the content border
	traffic := height - 6
	if traffic < 3 {
		traffic = 3
	}
	m.traffic.SetSize(width, traffic)
	m.input.SetWidth(width)
	m.statusBar.SetWidth(width)
	m.help.Width = width
}

func (m *connectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case models.FrameMsg:
		f := msg.Frame
		m.traffic.Add(components.Entry{Time: f.Time, TX: f.Dir == bus.TX, Data: f.Data, Err: f.Err})
		return m, models.WaitForFrame(m.frames, m.done)

	case models.SessionEndedMsg:
		if msg.Err != nil && m.ctx.Err() == nil {
			m.statusBar.SetState(components.LinkFailed, msg.Err)
		} else {
			m.statusBar.SetState(components.LinkClosed, nil)
		}
		return m, nil

	case models.TransmitStartedMsg:
		m.statusBar.SetState(components.LinkTransmitting, nil)
		return m, nil

	case models.TransmitDoneMsg:
		if msg.Err != nil {
			m.statusBar.SetState(components.LinkFailed, errors.New(describeError(msg.Err)))
		} else {
			m.statusBar.SetState(components.LinkReceiving, nil)
		}
		return m, nil

	case models.BaudChangedMsg:
		if msg.Err != nil {
			m.statusBar.SetState(components.LinkFailed, fmt.Errorf("baud %d: %s", msg.Baud, describeError(msg.Err)))
		} else {
			m.statusBar.SetBaudRate(msg.Baud)
			m.statusBar.SetState(components.LinkReceiving, nil)
		}
		return m, nil

	case tea.KeyMsg:
		if m.mode == models.InputModeInsert {
			return m.updateInsert(msg)
		}
		return m.updateNormal(msg)
	}

	return m, nil
}

func (m *connectModel) updateInsert(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.mode = models.InputModeNormal
		m.input.Blur()
		return m, nil

	case key.Matches(msg, m.keys.Enter):
		line := m.input.Value()
		hex := m.input.SendingMode() == components.SendingModeHex
		data, err := payload.Encode(line, hex, !hex)
		if err != nil {
			m.statusBar.SetState(m.statusBar.State(), fmt.Errorf("invalid input: %w", err))
			return m, nil
		}
		m.input.AddToHistory(line)
		m.input.SetValue("")
		return m, m.transmit(data)

	case key.Matches(msg, m.keys.ToggleSendMode):
		m.input.ToggleSendingMode()
		return m, nil

	case msg.Type == tea.KeyUp:
		m.input.HistoryUp()
		return m, nil

	case msg.Type == tea.KeyDown:
		m.input.HistoryDown()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *connectModel) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.cancel()
		return m, tea.Quit

	case key.Matches(msg, m.keys.InsertMode):
		m.mode = models.InputModeInsert
		m.input.Focus()

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll

	case key.Matches(msg, m.keys.Clear):
		m.traffic.Clear()

	case key.Matches(msg, m.keys.ToggleASCII):
		m.traffic.ToggleASCII()

	case key.Matches(msg, m.keys.ToggleSendMode):
		m.input.ToggleSendingMode()

	case key.Matches(msg, m.keys.Baud):
		return m, m.cycleBaud()

	case key.Matches(msg, m.keys.Follow):
		m.traffic.SetFollow(true)

	case key.Matches(msg, m.keys.Up), key.Matches(msg, m.keys.Down):
		if m.traffic.Following() {
			m.traffic.SetFollow(false)
		}
		var cmd tea.Cmd
		m.traffic, cmd = m.traffic.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *connectModel) View() string {
	insert := m.mode == models.InputModeInsert

	return lipgloss.JoinVertical(
		lipgloss.Left,
		styles.ContentBorderStyle.Render(m.traffic.View()),
		m.input.View(insert),
		m.statusBar.View(insert, m.input.SendingMode(), time.Now().Format("15:04:05")),
		m.help.View(m.keys),
	)
}
