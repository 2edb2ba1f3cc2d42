package gpio

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	rs485 "github.com/allbin/go-rs485"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockSysfs creates a sysfs-like tree with gpio line n already exported
func mockSysfs(t *testing.T, n string) string {
	t.Helper()

	root := t.TempDir()
	dir := filepath.Join(root, "gpio"+n)
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "direction"), []byte("in\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "value"), []byte("1\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "export"), nil, 0644))
	return root
}

func TestReadSysfsFile(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name     string
		content  *string
		expected string
	}{
		{"normal file", strPtr("1\n"), "1"},
		{"file with spaces", strPtr("  out  \n"), "out"},
		{"empty file", strPtr(""), ""},
		{"nonexistent file", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(tmpDir, tt.name)
			if tt.content != nil {
				require.NoError(t, os.WriteFile(path, []byte(*tt.content), 0644))
			}
			assert.Equal(t, tt.expected, readSysfsFile(path))
		})
	}
}

func strPtr(s string) *string { return &s }

func TestOpenSysfsConfiguresOutputLow(t *testing.T) {
	root := mockSysfs(t, "17")

	pin, err := OpenSysfsAt(root, 17)
	require.NoError(t, err)
	defer pin.Close()

	assert.Equal(t, 17, pin.Line())
	assert.Equal(t, "low", readSysfsFile(filepath.Join(root, "gpio17", "direction")))
	assert.Empty(t, readSysfsFile(filepath.Join(root, "export")), "exported lines are not re-exported")
}

func TestSysfsPinLevels(t *testing.T) {
	root := mockSysfs(t, "4")

	pin, err := OpenSysfsAt(root, 4)
	require.NoError(t, err)
	defer pin.Close()

	require.NoError(t, pin.SetHigh())
	high, ok := pin.Level()
	assert.True(t, ok)
	assert.True(t, high)

	require.NoError(t, pin.SetLow())
	high, ok = pin.Level()
	assert.True(t, ok)
	assert.False(t, high)
}

func TestSysfsPinClosed(t *testing.T) {
	root := mockSysfs(t, "5")

	pin, err := OpenSysfsAt(root, 5)
	require.NoError(t, err)
	require.NoError(t, pin.Close())

	assert.ErrorIs(t, pin.SetHigh(), rs485.ErrPinClosed)
	assert.ErrorIs(t, pin.SetLow(), rs485.ErrPinClosed)
	assert.ErrorIs(t, pin.Close(), rs485.ErrPinClosed)
}

func TestOpenSysfsExportTimeout(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "export"), nil, 0644))

	_, err := OpenSysfsAt(root, 22)
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.Equal(t, "22", readSysfsFile(filepath.Join(root, "export")))
}

func TestOpenSysfsInvalidLine(t *testing.T) {
	_, err := OpenSysfsAt(t.TempDir(), -1)
	assert.Error(t, err)
}

func TestSysfsPinDrivesTransceiver(t *testing.T) {
	root := mockSysfs(t, "18")

	pin, err := OpenSysfsAt(root, 18)
	require.NoError(t, err)
	defer pin.Close()

	bus := rs485.New(&loopback{pin: pin}, pin)
	n, err := bus.Write([]byte{0x55})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	high, ok := pin.Level()
	assert.True(t, ok)
	assert.False(t, high, "receive mode after write")
}

// loopback asserts the pin is high while bytes are written
type loopback struct {
	pin *SysfsPin
	buf []byte
}

func (l *loopback) Write(p []byte) (int, error) {
	if high, _ := l.pin.Level(); !high {
		return 0, errors.New("write while receiving")
	}
	l.buf = append(l.buf, p...)
	return len(p), nil
}

func (l *loopback) Read(p []byte) (int, error) {
	n := copy(p, l.buf)
	l.buf = l.buf[n:]
	return n, nil
}

func (l *loopback) Drain() error { return nil }
