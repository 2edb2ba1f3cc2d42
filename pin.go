package rs485

// RTSLine is a serial port whose RTS modem line can be driven directly.
// Most USB RS-485 adapters and many UART transceiver boards wire RTS to the
// driver enable input.
type RTSLine interface {
	SetRTS(state bool) error
}

// RTSPin returns a Pin that drives the RTS line of a serial port.
func RTSPin(line RTSLine) Pin {
	return PinFunc(line.SetRTS)
}

// PinFunc adapts a function setting an output level to the Pin interface.
type PinFunc func(high bool) error

func (f PinFunc) SetHigh() error { return f(true) }
func (f PinFunc) SetLow() error  { return f(false) }

// Inverted returns a Pin for active-low enable wiring: SetHigh drives p low
// and SetLow drives it high.
func Inverted(p Pin) Pin {
	return inverted{p}
}

type inverted struct {
	pin Pin
}

func (i inverted) SetHigh() error { return i.pin.SetLow() }
func (i inverted) SetLow() error  { return i.pin.SetHigh() }
