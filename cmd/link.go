/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	rs485 "github.com/allbin/go-rs485"
	"github.com/allbin/go-rs485/bugst"
	"github.com/allbin/go-rs485/gpio"
	"github.com/spf13/viper"
)

const defaultReadTimeout = 200 * time.Millisecond

// transport is what both serial drivers provide
type transport interface {
	rs485.Transport
	rs485.RTSLine
	Config() rs485.Config
	Configure(opts ...rs485.Option) error
	Close() error
}

var (
	_ transport = (*rs485.Port)(nil)
	_ transport = (*bugst.Port)(nil)
)

type settings struct {
	Baud        int
	DataBits    int
	StopBits    int
	Parity      string
	ReadTimeout time.Duration
	Driver      string
	Pin         string
	ActiveLow   bool
	SyncWrites  bool
}

func loadSettings() settings {
	return settings{
		Baud:        viper.GetInt("baud"),
		DataBits:    viper.GetInt("data-bits"),
		StopBits:    viper.GetInt("stop-bits"),
		Parity:      viper.GetString("parity"),
		ReadTimeout: viper.GetDuration("read-timeout"),
		Driver:      viper.GetString("driver"),
		Pin:         viper.GetString("pin"),
		ActiveLow:   viper.GetBool("active-low"),
		SyncWrites:  viper.GetBool("sync-writes"),
	}
}

func (s settings) options() ([]rs485.Option, error) {
	parity, err := parseParity(s.Parity)
	if err != nil {
		return nil, err
	}

	opts := []rs485.Option{
		rs485.WithBaudRate(s.Baud),
		rs485.WithDataBits(s.DataBits),
		rs485.WithStopBits(s.StopBits),
		rs485.WithParity(parity),
		rs485.WithReadTimeout(s.ReadTimeout),
	}
	if s.SyncWrites {
		opts = append(opts, rs485.WithSyncWrite())
	}
	return opts, nil
}

func parseParity(s string) (rs485.Parity, error) {
	switch strings.ToLower(s) {
	case "", "none", "n":
		return rs485.ParityNone, nil
	case "odd", "o":
		return rs485.ParityOdd, nil
	case "even", "e":
		return rs485.ParityEven, nil
	case "mark", "m":
		return rs485.ParityMark, nil
	case "space", "s":
		return rs485.ParitySpace, nil
	default:
		return rs485.ParityNone, fmt.Errorf("invalid parity: %s (valid: none, odd, even, mark, space)", s)
	}
}

type pinKind int

const (
	pinRTS pinKind = iota
	pinRPi
	pinSysfs
)

type pinSpec struct {
	kind pinKind
	line int
}

func (p pinSpec) String() string {
	switch p.kind {
	case pinRPi:
		return fmt.Sprintf("rpi:%d", p.line)
	case pinSysfs:
		return fmt.Sprintf("sysfs:%d", p.line)
	default:
		return "rts"
	}
}

// parsePinSpec accepts "rts", "rpi:<gpio>" and "sysfs:<gpio>"
func parsePinSpec(s string) (pinSpec, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == "rts" {
		return pinSpec{kind: pinRTS}, nil
	}

	kind, num, ok := strings.Cut(s, ":")
	if !ok {
		return pinSpec{}, fmt.Errorf("invalid pin: %s (valid: rts, rpi:<gpio>, sysfs:<gpio>)", s)
	}
	line, err := strconv.Atoi(num)
	if err != nil || line < 0 {
		return pinSpec{}, fmt.Errorf("invalid gpio number: %q", num)
	}

	switch kind {
	case "rpi":
		return pinSpec{kind: pinRPi, line: line}, nil
	case "sysfs", "gpio":
		return pinSpec{kind: pinSysfs, line: line}, nil
	default:
		return pinSpec{}, fmt.Errorf("invalid pin type: %s (valid: rts, rpi, sysfs)", kind)
	}
}

func openTransport(device string, s settings) (transport, error) {
	opts, err := s.options()
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(s.Driver) {
	case "", "native":
		port, err := rs485.Open(device, opts...)
		if err != nil {
			return nil, err
		}
		return port, nil
	case "bugst":
		port, err := bugst.Open(device, opts...)
		if err != nil {
			return nil, err
		}
		return port, nil
	default:
		return nil, fmt.Errorf("unknown driver: %s (valid: native, bugst)", s.Driver)
	}
}

// openPin builds the direction pin. The returned closer is nil for the RTS
// line, which is released with the port.
func openPin(spec pinSpec, activeLow bool, line rs485.RTSLine) (rs485.Pin, io.Closer, error) {
	var (
		pin    rs485.Pin
		closer io.Closer
	)

	switch spec.kind {
	case pinRPi:
		p, err := gpio.OpenRPi(spec.line)
		if err != nil {
			return nil, nil, err
		}
		pin, closer = p, p
	case pinSysfs:
		p, err := gpio.OpenSysfs(spec.line)
		if err != nil {
			return nil, nil, err
		}
		pin, closer = p, p
	default:
		pin = rs485.RTSPin(line)
	}

	if activeLow {
		pin = rs485.Inverted(pin)
	}
	return pin, closer, nil
}

// link is a transceiver assembled from the configured driver and pin
type link struct {
	*rs485.Transceiver[transport, rs485.Pin]

	device    string
	pin       pinSpec
	config    rs485.Config
	pinCloser io.Closer
	closed    bool
}

func openLink(device string, s settings) (*link, error) {
	spec, err := parsePinSpec(s.Pin)
	if err != nil {
		return nil, err
	}

	port, err := openTransport(device, s)
	if err != nil {
		return nil, err
	}

	pin, closer, err := openPin(spec, s.ActiveLow, port)
	if err != nil {
		port.Close()
		return nil, err
	}

	// Start in receive mode whatever the pin's power-on level was.
	if err := pin.SetLow(); err != nil {
		if closer != nil {
			closer.Close()
		}
		port.Close()
		return nil, fmt.Errorf("failed to enter receive mode: %w", err)
	}

	logger.Debug("link opened",
		"device", device,
		"driver", s.Driver,
		"pin", spec.String(),
		"active_low", s.ActiveLow,
		"config", describeConfig(port.Config()))

	return &link{
		Transceiver: rs485.New[transport, rs485.Pin](port, pin),
		device:      device,
		pin:         spec,
		config:      port.Config(),
		pinCloser:   closer,
	}, nil
}

// setBaud changes the line speed. Callers must not run it concurrently
// with Read or Write.
func (l *link) setBaud(baud int) error {
	err := l.Reconfigure(func(t transport) error {
		if err := t.Configure(rs485.WithBaudRate(baud)); err != nil {
			return err
		}
		l.config = t.Config()
		return nil
	})
	if err != nil {
		return err
	}
	logger.Info("baud rate changed", "device", l.device, "baud", baud)
	return nil
}

func (l *link) Close() error {
	if l.closed {
		return nil
	}
	l.closed = true

	port, _ := l.Release()
	var errs []error
	if l.pinCloser != nil {
		errs = append(errs, l.pinCloser.Close())
	}
	errs = append(errs, port.Close())
	return errors.Join(errs...)
}

var baudRates = []int{1200, 2400, 4800, 9600, 19200, 38400, 57600, 115200, 230400}

// nextBaud returns the next standard rate after current, wrapping around
func nextBaud(current int) int {
	for _, b := range baudRates {
		if b > current {
			return b
		}
	}
	return baudRates[0]
}

func describeConfig(c rs485.Config) string {
	return fmt.Sprintf("%d %d%s%d", c.BaudRate, c.DataBits, c.Parity, c.StopBits)
}
