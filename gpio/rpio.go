package gpio

import (
	"fmt"
	"sync"

	rs485 "github.com/allbin/go-rs485"
	"github.com/stianeikeland/go-rpio/v4"
)

// rpio maps the GPIO registers once per process; refs counts open pins
var (
	rpioMu   sync.Mutex
	rpioRefs int
)

func rpioAcquire() error {
	rpioMu.Lock()
	defer rpioMu.Unlock()

	if rpioRefs == 0 {
		if err := rpio.Open(); err != nil {
			return fmt.Errorf("failed to map gpio memory: %w", err)
		}
	}
	rpioRefs++
	return nil
}

func rpioRelease() error {
	rpioMu.Lock()
	defer rpioMu.Unlock()

	rpioRefs--
	if rpioRefs == 0 {
		return rpio.Close()
	}
	return nil
}

// RPiPin is a direction pin on a Raspberry Pi header, driven through
// memory-mapped GPIO registers. Numbering is BCM.
type RPiPin struct {
	mu     sync.Mutex
	pin    rpio.Pin
	closed bool
}

var _ rs485.Pin = (*RPiPin)(nil)

// OpenRPi configures BCM pin n as an output driven low.
func OpenRPi(n int) (*RPiPin, error) {
	if n < 0 || n > 53 {
		return nil, fmt.Errorf("invalid BCM pin %d", n)
	}
	if err := rpioAcquire(); err != nil {
		return nil, err
	}

	pin := rpio.Pin(n)
	pin.Output()
	pin.Low()

	return &RPiPin{pin: pin}, nil
}

// SetHigh drives the pin high
func (p *RPiPin) SetHigh() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return rs485.ErrPinClosed
	}
	p.pin.High()
	return nil
}

// SetLow drives the pin low
func (p *RPiPin) SetLow() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return rs485.ErrPinClosed
	}
	p.pin.Low()
	return nil
}

// Close unmaps the GPIO registers once the last pin is closed. The pin
// keeps its level.
func (p *RPiPin) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return rs485.ErrPinClosed
	}
	p.closed = true
	return rpioRelease()
}
