package cmd

import (
	"testing"
	"time"

	rs485 "github.com/allbin/go-rs485"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePinSpec(t *testing.T) {
	tests := []struct {
		input   string
		want    pinSpec
		wantErr bool
	}{
		{"", pinSpec{kind: pinRTS}, false},
		{"rts", pinSpec{kind: pinRTS}, false},
		{"RTS", pinSpec{kind: pinRTS}, false},
		{"rpi:18", pinSpec{kind: pinRPi, line: 18}, false},
		{"sysfs:17", pinSpec{kind: pinSysfs, line: 17}, false},
		{"gpio:4", pinSpec{kind: pinSysfs, line: 4}, false},
		{"rpi", pinSpec{}, true},
		{"rpi:x", pinSpec{}, true},
		{"sysfs:-1", pinSpec{}, true},
		{"dtr:1", pinSpec{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parsePinSpec(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parsePinSpec(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("parsePinSpec(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestPinSpecString(t *testing.T) {
	assert.Equal(t, "rts", pinSpec{kind: pinRTS}.String())
	assert.Equal(t, "rpi:18", pinSpec{kind: pinRPi, line: 18}.String())
	assert.Equal(t, "sysfs:17", pinSpec{kind: pinSysfs, line: 17}.String())
}

func TestParseParity(t *testing.T) {
	tests := []struct {
		input   string
		want    rs485.Parity
		wantErr bool
	}{
		{"none", rs485.ParityNone, false},
		{"", rs485.ParityNone, false},
		{"Odd", rs485.ParityOdd, false},
		{"e", rs485.ParityEven, false},
		{"mark", rs485.ParityMark, false},
		{"space", rs485.ParitySpace, false},
		{"bogus", rs485.ParityNone, true},
	}

	for _, tt := range tests {
		got, err := parseParity(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseParity(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("parseParity(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestSettingsOptions(t *testing.T) {
	s := settings{
		Baud:        9600,
		DataBits:    7,
		StopBits:    2,
		Parity:      "even",
		ReadTimeout: 300 * time.Millisecond,
		SyncWrites:  true,
	}

	opts, err := s.options()
	require.NoError(t, err)

	config, err := rs485.DefaultConfig().Apply(opts...)
	require.NoError(t, err)

	assert.Equal(t, 9600, config.BaudRate)
	assert.Equal(t, 7, config.DataBits)
	assert.Equal(t, 2, config.StopBits)
	assert.Equal(t, rs485.ParityEven, config.Parity)
	assert.Equal(t, 300*time.Millisecond, config.ReadTimeout)
	assert.Equal(t, rs485.WriteModeSynced, config.WriteMode)
}

func TestSettingsOptionsRejectsBadValues(t *testing.T) {
	_, err := settings{Parity: "x"}.options()
	assert.Error(t, err)

	opts, err := settings{Baud: 12345, DataBits: 8, StopBits: 1}.options()
	require.NoError(t, err)
	_, err = rs485.DefaultConfig().Apply(opts...)
	assert.ErrorIs(t, err, rs485.ErrInvalidBaudRate)
}

func TestOpenTransportUnknownDriver(t *testing.T) {
	_, err := openTransport("/dev/null", settings{
		Baud: 9600, DataBits: 8, StopBits: 1, Driver: "usb",
	})
	assert.ErrorContains(t, err, "unknown driver")
}

func TestOpenPinRTS(t *testing.T) {
	line := &recordingLine{}

	pin, closer, err := openPin(pinSpec{kind: pinRTS}, false, line)
	require.NoError(t, err)
	assert.Nil(t, closer)

	require.NoError(t, pin.SetHigh())
	require.NoError(t, pin.SetLow())
	assert.Equal(t, []bool{true, false}, line.states)
}

func TestOpenPinActiveLow(t *testing.T) {
	line := &recordingLine{}

	pin, _, err := openPin(pinSpec{kind: pinRTS}, true, line)
	require.NoError(t, err)

	require.NoError(t, pin.SetHigh())
	assert.Equal(t, []bool{false}, line.states)
}

func TestNextBaud(t *testing.T) {
	tests := []struct {
		current int
		want    int
	}{
		{9600, 19200},
		{115200, 230400},
		{230400, 1200},
		{14400, 19200},
		{0, 1200},
	}

	for _, tt := range tests {
		if got := nextBaud(tt.current); got != tt.want {
			t.Errorf("nextBaud(%d) = %d, want %d", tt.current, got, tt.want)
		}
	}
}

func TestDescribeConfig(t *testing.T) {
	assert.Equal(t, "115200 8N1", describeConfig(rs485.DefaultConfig()))
}

type recordingLine struct {
	states []bool
}

func (r *recordingLine) SetRTS(state bool) error {
	r.states = append(r.states, state)
	return nil
}
