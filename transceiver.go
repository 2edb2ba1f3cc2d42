package rs485

import "io"

// Transport is a full-duplex byte stream, typically a serial port.
type Transport interface {
	io.Reader
	io.Writer

	// Drain blocks until all written bytes have left the transport.
	Drain() error
}

// Pin is the digital output wired to the transceiver's driver enable input.
// High enables the transmitter, low puts the transceiver in receive mode.
type Pin interface {
	SetHigh() error
	SetLow() error
}

// Transceiver drives a half-duplex RS-485 transceiver built from a Transport
// and a direction Pin. Every Write raises the pin, writes and drains the
// transport, then lowers the pin again; every Read lowers the pin first.
//
// A Transceiver is not safe for concurrent use. Interleaving a Read and a
// Write from different goroutines interleaves pin transitions and corrupts
// the bus direction, so callers must serialize access. Operations cannot be
// cancelled; if one is abandoned midway, or a Write fails with a pin error,
// the pin may be left high and the caller should issue a Read (a zero-length
// buffer is enough) to force receive mode before continuing.
//
// No turnaround delay is inserted around pin transitions. Transceivers that
// need settling time must get it from the transport or pin implementation.
//
// Every failure is returned as an *Error tagged with its origin, except
// io.EOF from the transport's Read, which is passed through unwrapped so
// that io.Reader consumers still recognize end of stream.
type Transceiver[T Transport, P Pin] struct {
	transport T
	pin       P
}

var _ Transport = (*Transceiver[Transport, Pin])(nil)

// New combines a transport and a direction pin. It performs no I/O; the
// first Read or Write commands the pin.
func New[T Transport, P Pin](transport T, pin P) *Transceiver[T, P] {
	return &Transceiver[T, P]{
		transport: transport,
		pin:       pin,
	}
}

// Release hands the transport and pin back to the caller without touching
// either. The Transceiver must not be used afterwards.
func (t *Transceiver[T, P]) Release() (T, P) {
	transport, pin := t.transport, t.pin

	var (
		zeroT T
		zeroP P
	)
	t.transport, t.pin = zeroT, zeroP

	return transport, pin
}

// Reconfigure applies fn to the owned transport, for example to change the
// baud rate. An error from fn is returned as a transport error.
func (t *Transceiver[T, P]) Reconfigure(fn func(T) error) error {
	if err := fn(t.transport); err != nil {
		return transportError(err)
	}
	return nil
}

// Write transmits p and returns the number of bytes accepted by the
// transport, which may be less than len(p). On error the count is 0 and an
// unknown number of bytes may have reached the wire.
//
// The pin is left high if the transport write or drain fails. A pin error
// after a successful drain means the bytes were sent but the transceiver may
// still be in transmit mode.
func (t *Transceiver[T, P]) Write(p []byte) (int, error) {
	if err := t.pin.SetHigh(); err != nil {
		return 0, pinError(err)
	}

	n, err := t.transport.Write(p)
	if err != nil {
		return 0, transportError(err)
	}

	// The driver must stay enabled until the last stop bit is on the wire.
	if err := t.transport.Drain(); err != nil {
		return 0, transportError(err)
	}

	if err := t.pin.SetLow(); err != nil {
		return 0, pinError(err)
	}

	return n, nil
}

// Read switches the transceiver to receive mode and reads from the transport.
// io.EOF is passed through unwrapped so that io helpers keep working.
func (t *Transceiver[T, P]) Read(p []byte) (int, error) {
	if err := t.pin.SetLow(); err != nil {
		return 0, pinError(err)
	}

	n, err := t.transport.Read(p)
	if err != nil && err != io.EOF {
		return n, transportError(err)
	}
	return n, err
}

// Drain is a no-op: Write only returns after draining the transport.
func (t *Transceiver[T, P]) Drain() error {
	return nil
}
