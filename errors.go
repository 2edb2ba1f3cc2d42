package rs485

import (
	"errors"
	"fmt"
)

// Predefined error types for robust error handling
var (
	ErrDeviceNotFound   = errors.New("serial device not found")
	ErrPermissionDenied = errors.New("permission denied accessing serial device")
	ErrDeviceInUse      = errors.New("serial device already in use")
	ErrInvalidBaudRate  = errors.New("invalid baud rate")
	ErrInvalidConfig    = errors.New("invalid serial configuration")
	ErrPortClosed       = errors.New("serial port is closed")

	// Direction pin errors
	ErrPinClosed = errors.New("direction pin is closed")
)

// Origin identifies which collaborator of a Transceiver produced an error.
type Origin int

const (
	OriginTransport Origin = iota
	OriginPin
)

func (o Origin) String() string {
	switch o {
	case OriginTransport:
		return "transport"
	case OriginPin:
		return "pin"
	default:
		return "unknown"
	}
}

// Error is the only error type returned by Transceiver operations. It tags
// the failure of the transport or the direction pin with its origin and
// carries the collaborator's own error value.
type Error struct {
	Origin Origin
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("rs485: %s: %v", e.Origin, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Kind classifies the error. A transport error reports the classification
// of the wrapped error; a pin error is always KindOther.
func (e *Error) Kind() ErrorKind {
	if e.Origin == OriginPin {
		return KindOther
	}
	return KindOf(e.Err)
}

func transportError(err error) error {
	return &Error{Origin: OriginTransport, Err: err}
}

func pinError(err error) error {
	return &Error{Origin: OriginPin, Err: err}
}

// IsPinError reports whether err was raised by the direction pin.
func IsPinError(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Origin == OriginPin
}

// IsTransportError reports whether err was raised by the transport.
func IsTransportError(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Origin == OriginTransport
}
