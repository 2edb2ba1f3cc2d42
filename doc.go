// Package rs485 drives half-duplex RS-485 transceivers (MAX485 and friends)
// from Go.
//
// An RS-485 transceiver can either drive the bus or listen to it, selected
// by a driver enable input. This package combines a full-duplex serial
// Transport with the digital output wired to that input (a Pin) into a
// Transceiver that switches direction around every operation and otherwise
// behaves like the serial port itself.
//
// # Basic Usage
//
// Use the RTS line of a USB RS-485 adapter as the direction pin:
//
//	port, err := rs485.Open("/dev/ttyUSB0", rs485.WithBaudRate(9600))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer port.Close()
//
//	bus := rs485.New(port, rs485.RTSPin(port))
//
//	n, err := bus.Write([]byte{0x01, 0x03, 0x00, 0x00, 0x00, 0x01, 0x84, 0x0A})
//	buffer := make([]byte, 256)
//	n, err = bus.Read(buffer)
//
// Or a GPIO on a Raspberry Pi, see the gpio subpackage:
//
//	pin, err := gpio.OpenRPi(17)
//	bus := rs485.New(port, pin)
//
// # Direction Switching
//
// Write raises the pin, writes to the transport, drains it so the last byte
// has left the UART, and lowers the pin again. Read lowers the pin and reads.
// Write returns the count accepted by the transport, which may be short;
// callers that need every byte sent must loop.
//
// No turnaround delay is inserted between pin transitions and serial
// activity. Hardware that needs one must provide it in its Pin or Transport.
//
// # Reconfiguration
//
// The transport stays reachable for settings changes without exposing the pin:
//
//	err := bus.Reconfigure(func(p *rs485.Port) error {
//	    return p.Configure(rs485.WithBaudRate(19200))
//	})
//
// Release tears the Transceiver down and returns both parts untouched.
//
// # Error Handling
//
// Every Transceiver error is an *Error tagged with its Origin, either the
// transport or the pin, and wraps the collaborator's own error:
//
//	var e *rs485.Error
//	if errors.As(err, &e) && e.Origin == rs485.OriginPin {
//	    // The transceiver may be stuck transmitting; force receive mode.
//	    bus.Read(nil)
//	}
//
// KindOf gives a generic ErrorKind for any error. Transport errors report
// the kind of the wrapped error, pin errors always report KindOther.
//
// A failed transport write or drain leaves the pin high and an unknown
// number of bytes on the wire. Nothing is retried.
//
// # Concurrency
//
// A Transceiver holds no lock. Concurrent Read and Write calls interleave
// pin transitions and corrupt the bus direction, so a single goroutine
// should own it. Operations cannot be cancelled midway.
//
// # Default Configuration
//
//   - BaudRate: 115200
//   - DataBits: 8
//   - StopBits: 1
//   - Parity: None
//   - ReadTimeout: 2.5 seconds
//   - WriteMode: Buffered
package rs485
