package cmd

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	rs485 "github.com/allbin/go-rs485"
	"github.com/allbin/go-rs485/internal/bus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendArgs(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		configured string
		wantData   *string
		wantDevice string
		wantErr    bool
	}{
		{"data and port", []string{"AT", "/dev/ttyS0"}, "", strPtr("AT"), "/dev/ttyS0", false},
		{"port only", []string{"/dev/ttyS0"}, "", nil, "/dev/ttyS0", false},
		{"data with configured port", []string{"AT"}, "/dev/ttyS1", strPtr("AT"), "/dev/ttyS1", false},
		{"explicit port wins", []string{"AT", "/dev/ttyS0"}, "/dev/ttyS1", strPtr("AT"), "/dev/ttyS0", false},
		{"configured port only", nil, "/dev/ttyS1", nil, "/dev/ttyS1", false},
		{"nothing", nil, "", nil, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, device, err := sendArgs(tt.args, tt.configured)
			if (err != nil) != tt.wantErr {
				t.Fatalf("sendArgs() error = %v, wantErr %v", err, tt.wantErr)
			}
			assert.Equal(t, tt.wantData, data)
			assert.Equal(t, tt.wantDevice, device)
		})
	}
}

func strPtr(s string) *string { return &s }

func TestReadInputFromPipe(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stdin")
	require.NoError(t, os.WriteFile(path, []byte("01 03\r\n"), 0644))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	text, err := readInput(f)
	require.NoError(t, err)
	assert.Equal(t, "01 03", text)
}

func TestCollectReply(t *testing.T) {
	frames := make(chan bus.Frame, 4)
	frames <- bus.Frame{Dir: bus.TX, Data: []byte{0x01}}
	frames <- bus.Frame{Dir: bus.RX, Data: []byte{0x01, 0x03}}
	frames <- bus.Frame{Dir: bus.RX, Data: []byte{0x02, 0xFF}}

	got, err := collectReply(context.Background(), frames, 3)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x03, 0x02, 0xFF}, got)
}

func TestCollectReplyTimeout(t *testing.T) {
	frames := make(chan bus.Frame, 1)
	frames <- bus.Frame{Dir: bus.RX, Data: []byte{0x01}}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	got, err := collectReply(ctx, frames, 5)
	assert.Equal(t, []byte{0x01}, got)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.ErrorContains(t, err, "1 of 5")
}

func TestCollectReplySessionEnded(t *testing.T) {
	frames := make(chan bus.Frame)
	close(frames)

	_, err := collectReply(context.Background(), frames, 1)
	assert.ErrorIs(t, err, rs485.ErrPortClosed)
}

func TestCollectReplyReadError(t *testing.T) {
	boom := errors.New("framing")
	frames := make(chan bus.Frame, 1)
	frames <- bus.Frame{Dir: bus.RX, Err: boom}

	_, err := collectReply(context.Background(), frames, 1)
	assert.ErrorIs(t, err, boom)
}

func TestDescribeError(t *testing.T) {
	assert.Equal(t, "plain", describeError(errors.New("plain")))
	assert.Contains(t, describeError(rs485.ErrDeviceNotFound), "[not found]")

	_, err := rs485.New(failingTransport{}, nopPin{}).Write([]byte{0x01})
	require.Error(t, err)
	desc := describeError(err)
	assert.Contains(t, desc, "transport")
	assert.Contains(t, desc, "permission denied")
}

type failingTransport struct{}

func (failingTransport) Read([]byte) (int, error)  { return 0, nil }
func (failingTransport) Write([]byte) (int, error) { return 0, rs485.ErrPermissionDenied }
func (failingTransport) Drain() error              { return nil }

type nopPin struct{}

func (nopPin) SetHigh() error { return nil }
func (nopPin) SetLow() error  { return nil }
