package components

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInputHistory(t *testing.T) {
	in := NewInput(SendingModeASCII)

	in.AddToHistory("first")
	in.AddToHistory("  ")
	in.AddToHistory("second")
	in.AddToHistory("second")
	require.Equal(t, []string{"first", "second"}, in.History())

	in.SetValue("draft")
	in.HistoryUp()
	assert.Equal(t, "second", in.Value())
	in.HistoryUp()
	assert.Equal(t, "first", in.Value())
	in.HistoryUp()
	assert.Equal(t, "first", in.Value(), "stays on oldest")

	in.HistoryDown()
	assert.Equal(t, "second", in.Value())
	in.HistoryDown()
	assert.Equal(t, "draft", in.Value(), "restores typed text")
	in.HistoryDown()
	assert.Equal(t, "draft", in.Value())
}

func TestInputHistoryLimit(t *testing.T) {
	in := NewInput(SendingModeHex)
	for i := 0; i < maxHistory+10; i++ {
		in.AddToHistory(strings.Repeat("a", i+1))
	}
	assert.Len(t, in.History(), maxHistory)
}

func TestInputSendingMode(t *testing.T) {
	in := NewInput(SendingModeASCII)
	assert.Equal(t, SendingModeASCII, in.SendingMode())

	in.ToggleSendingMode()
	assert.Equal(t, SendingModeHex, in.SendingMode())
	assert.Equal(t, "HEX", in.SendingMode().String())

	in.ToggleSendingMode()
	assert.Equal(t, "ASCII", in.SendingMode().String())
}

func TestLinkStateString(t *testing.T) {
	tests := []struct {
		state LinkState
		want  string
	}{
		{LinkOpening, "OPENING"},
		{LinkReceiving, "RX"},
		{LinkTransmitting, "TX"},
		{LinkFailed, "ERROR"},
		{LinkClosed, "CLOSED"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("LinkState(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}

func TestStatusBarView(t *testing.T) {
	sb := NewStatusBar("/dev/ttyUSB0")
	sb.SetWidth(120)
	sb.SetInfo(LinkInfo{BaudRate: 9600, DataBits: 8, Parity: "N", StopBits: 1, Pin: "rts", Driver: "native"})
	sb.SetState(LinkReceiving, nil)

	view := sb.View(false, SendingModeASCII, "12:00:00")
	assert.Contains(t, view, "/dev/ttyUSB0")
	assert.Contains(t, view, "9600 8N1")
	assert.Contains(t, view, "RX")
	assert.Contains(t, view, "NORMAL")

	sb.SetBaudRate(19200)
	assert.Contains(t, sb.View(true, SendingModeHex, "12:00:01"), "19200 8N1")
	assert.Contains(t, sb.View(true, SendingModeHex, "12:00:01"), "INSERT HEX")

	sb.SetState(LinkFailed, errors.New("no such device"))
	assert.Contains(t, sb.View(false, SendingModeASCII, ""), "no such device")
}

func TestTrafficEntries(t *testing.T) {
	tr := NewTraffic()
	tr.SetSize(100, 20)

	assert.Contains(t, tr.View(), "nothing received")

	tr.Add(Entry{Time: time.Now(), TX: true, Data: []byte("AT")})
	tr.Add(Entry{Time: time.Now(), Data: []byte("OK\r\n")})
	require.Len(t, tr.Entries(), 2)

	view := tr.View()
	assert.Contains(t, view, "41 54")
	assert.Contains(t, view, "OK..")

	tr.Clear()
	assert.Empty(t, tr.Entries())
}

func TestTrafficRetention(t *testing.T) {
	tr := NewTraffic()
	for i := 0; i < maxEntries+5; i++ {
		tr.entries = append(tr.entries, Entry{Data: []byte{byte(i)}})
	}
	tr.Add(Entry{Data: []byte{0xFF}})

	assert.Len(t, tr.Entries(), maxEntries)
	assert.Equal(t, []byte{0xFF}, tr.Entries()[maxEntries-1].Data)
}

func TestTrafficToggles(t *testing.T) {
	tr := NewTraffic()
	assert.True(t, tr.ShowsASCII())
	assert.True(t, tr.Following())

	tr.ToggleASCII()
	assert.False(t, tr.ShowsASCII())

	tr.SetFollow(false)
	assert.False(t, tr.Following())
}
