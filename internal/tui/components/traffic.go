package components

import (
	"fmt"
	"time"

	"github.com/allbin/go-rs485/internal/payload"
	"github.com/allbin/go-rs485/internal/tui/colors"
	"github.com/allbin/go-rs485/internal/tui/styles"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/evertras/bubble-table/table"
)

const (
	columnTime  = "time"
	columnDir   = "dir"
	columnHex   = "hex"
	columnASCII = "ascii"
	columnBytes = "bytes"

	maxEntries = 2000
)

// Entry is one row of bus traffic
type Entry struct {
	Time time.Time
	TX   bool
	Data []byte
	Err  error
}

// Traffic shows bus traffic newest last. In follow mode the newest row is
// kept in view; otherwise the table is focused for navigation.
type Traffic struct {
	table     table.Model
	entries   []Entry
	showASCII bool
	follow    bool
	width     int
	height    int
}

func NewTraffic() *Traffic {
	t := &Traffic{
		showASCII: true,
		follow:    true,
		width:     80,
		height:    10,
	}
	t.table = t.newTable()
	t.layout()
	return t
}

func (t *Traffic) columns() []table.Column {
	cols := []table.Column{
		table.NewColumn(columnTime, "Time", 14),
		table.NewColumn(columnDir, "↕", 6),
		table.NewFlexColumn(columnHex, "Hex", 3),
	}
	if t.showASCII {
		cols = append(cols, table.NewFlexColumn(columnASCII, "ASCII", 1))
	}
	return append(cols, table.NewColumn(columnBytes, "Bytes", 6))
}

func (t *Traffic) row(e Entry) table.Row {
	dir := table.NewStyledCell("↙ RX", styles.RXStyle)
	if e.TX {
		dir = table.NewStyledCell("↗ TX", styles.TXStyle)
	}

	data := table.RowData{
		columnTime:  e.Time.Format("15:04:05.000"),
		columnDir:   dir,
		columnHex:   payload.Hex(e.Data),
		columnASCII: payload.Printable(e.Data),
		columnBytes: fmt.Sprintf("%d", len(e.Data)),
	}

	if e.Err != nil {
		errStyle := lipgloss.NewStyle().Foreground(colors.Red)
		data[columnHex] = table.NewStyledCell(e.Err.Error(), errStyle)
		if e.TX {
			data[columnDir] = table.NewStyledCell("↗ TX ✗", errStyle.Bold(true))
		} else {
			data[columnDir] = table.NewStyledCell("⚠ RX", errStyle.Bold(true))
		}
	}

	return table.NewRow(data)
}

// pageSize leaves room for the header and borders
func (t *Traffic) pageSize() int {
	size := t.height - 4
	if size < 1 {
		size = 1
	}
	return size
}

func (t *Traffic) newTable() table.Model {
	return table.New(t.columns()).
		WithFooterVisibility(false).
		WithBaseStyle(lipgloss.NewStyle().
			Foreground(colors.Text).
			BorderForeground(colors.Surface1).
			Align(lipgloss.Left)).
		HeaderStyle(lipgloss.NewStyle().Foreground(colors.Subtext0).Bold(true)).
		HighlightStyle(lipgloss.NewStyle().Background(colors.Surface1))
}

// layout applies size, columns and focus without touching the cursor
func (t *Traffic) layout() {
	t.table = t.table.
		WithColumns(t.columns()).
		WithTargetWidth(t.width).
		WithPageSize(t.pageSize()).
		Focused(!t.follow)
	t.scroll()
}

func (t *Traffic) refreshRows() {
	rows := make([]table.Row, len(t.entries))
	for i, e := range t.entries {
		rows[i] = t.row(e)
	}
	t.table = t.table.WithRows(rows)
	t.scroll()
}

func (t *Traffic) scroll() {
	if t.follow && len(t.entries) > 0 {
		t.table = t.table.PageLast().WithHighlightedRow(len(t.entries) - 1)
	}
}

func (t *Traffic) SetSize(width, height int) {
	t.width = width
	t.height = height
	t.layout()
}

// Add appends an entry, dropping the oldest beyond the retention limit
func (t *Traffic) Add(e Entry) {
	t.entries = append(t.entries, e)
	if len(t.entries) > maxEntries {
		t.entries = t.entries[len(t.entries)-maxEntries:]
	}
	t.refreshRows()
}

func (t *Traffic) Entries() []Entry {
	return t.entries
}

func (t *Traffic) Clear() {
	t.entries = nil
	t.refreshRows()
}

func (t *Traffic) ToggleASCII() {
	t.showASCII = !t.showASCII
	t.layout()
}

func (t *Traffic) ShowsASCII() bool {
	return t.showASCII
}

// SetFollow switches between following new traffic and browsing
func (t *Traffic) SetFollow(follow bool) {
	t.follow = follow
	t.layout()
}

func (t *Traffic) Following() bool {
	return t.follow
}

func (t *Traffic) Update(msg tea.Msg) (*Traffic, tea.Cmd) {
	if t.follow {
		return t, nil
	}
	var cmd tea.Cmd
	t.table, cmd = t.table.Update(msg)
	return t, cmd
}

func (t *Traffic) View() string {
	if len(t.entries) == 0 {
		return styles.MutedStyle.Render("Listening, nothing received yet...")
	}
	return t.table.View()
}
