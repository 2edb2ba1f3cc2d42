// Package bugst adapts go.bug.st/serial ports for use as rs485 transports
// on platforms where the native termios Port is not available.
package bugst

import (
	"errors"
	"fmt"

	rs485 "github.com/allbin/go-rs485"
	"go.bug.st/serial"
)

// Port wraps a go.bug.st/serial port. Read, Write, Drain and SetRTS report
// rs485 sentinels (ErrPortClosed and friends) in place of serial.PortError
// codes; the rest of serial.Port is promoted unchanged.
type Port struct {
	serial.Port
	device string
	config rs485.Config
}

var (
	_ rs485.Transport = (*Port)(nil)
	_ rs485.RTSLine   = (*Port)(nil)
)

// Open opens device with rs485 options. RTS starts deasserted so a
// transceiver wired to it is in receive mode.
func Open(device string, opts ...rs485.Option) (*Port, error) {
	config, err := rs485.DefaultConfig().Apply(opts...)
	if err != nil {
		return nil, err
	}

	mode, err := toMode(config)
	if err != nil {
		return nil, err
	}
	mode.InitialStatusBits = &serial.ModemOutputBits{RTS: false, DTR: true}

	port, err := serial.Open(device, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", device, mapError(err))
	}

	if err := port.SetReadTimeout(config.ReadTimeout); err != nil {
		port.Close()
		return nil, fmt.Errorf("failed to set read timeout: %w", err)
	}

	return &Port{Port: port, device: device, config: config}, nil
}

func (p *Port) Read(b []byte) (int, error) {
	n, err := p.Port.Read(b)
	return n, mapError(err)
}

func (p *Port) Write(b []byte) (int, error) {
	n, err := p.Port.Write(b)
	return n, mapError(err)
}

func (p *Port) Drain() error {
	return mapError(p.Port.Drain())
}

func (p *Port) SetRTS(state bool) error {
	return mapError(p.Port.SetRTS(state))
}

// Device returns the path the port was opened with
func (p *Port) Device() string {
	return p.device
}

// Config returns the active line settings
func (p *Port) Config() rs485.Config {
	return p.config
}

// Configure changes line settings in place
func (p *Port) Configure(opts ...rs485.Option) error {
	config, err := p.config.Apply(opts...)
	if err != nil {
		return err
	}

	mode, err := toMode(config)
	if err != nil {
		return err
	}
	if err := p.SetMode(mode); err != nil {
		return mapError(err)
	}
	if config.ReadTimeout != p.config.ReadTimeout {
		if err := p.SetReadTimeout(config.ReadTimeout); err != nil {
			return mapError(err)
		}
	}

	p.config = config
	return nil
}

// toMode translates line settings. Synchronous writes have no equivalent
// and are rejected.
func toMode(config rs485.Config) (*serial.Mode, error) {
	if config.WriteMode != rs485.WriteModeBuffered {
		return nil, rs485.ErrInvalidConfig
	}

	mode := &serial.Mode{
		BaudRate: config.BaudRate,
		DataBits: config.DataBits,
	}

	switch config.Parity {
	case rs485.ParityNone:
		mode.Parity = serial.NoParity
	case rs485.ParityOdd:
		mode.Parity = serial.OddParity
	case rs485.ParityEven:
		mode.Parity = serial.EvenParity
	case rs485.ParityMark:
		mode.Parity = serial.MarkParity
	case rs485.ParitySpace:
		mode.Parity = serial.SpaceParity
	default:
		return nil, rs485.ErrInvalidConfig
	}

	switch config.StopBits {
	case 1:
		mode.StopBits = serial.OneStopBit
	case 2:
		mode.StopBits = serial.TwoStopBits
	default:
		return nil, rs485.ErrInvalidConfig
	}

	return mode, nil
}

// mapError tags go.bug.st port errors with the matching rs485 sentinel.
// The original error stays in the chain.
func mapError(err error) error {
	var portErr *serial.PortError
	if !errors.As(err, &portErr) {
		return err
	}

	var sentinel error
	switch portErr.Code() {
	case serial.PortNotFound:
		sentinel = rs485.ErrDeviceNotFound
	case serial.PermissionDenied:
		sentinel = rs485.ErrPermissionDenied
	case serial.PortBusy:
		sentinel = rs485.ErrDeviceInUse
	case serial.InvalidSpeed:
		sentinel = rs485.ErrInvalidBaudRate
	case serial.InvalidDataBits, serial.InvalidStopBits, serial.InvalidParity:
		sentinel = rs485.ErrInvalidConfig
	case serial.PortClosed:
		sentinel = rs485.ErrPortClosed
	default:
		return err
	}
	return fmt.Errorf("%w: %w", sentinel, err)
}
