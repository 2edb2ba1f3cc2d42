package rs485

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"testing"

	"golang.org/x/sys/unix"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"nil", nil, KindOther},
		{"device not found", ErrDeviceNotFound, KindNotFound},
		{"wrapped device not found", fmt.Errorf("open: %w", ErrDeviceNotFound), KindNotFound},
		{"os not exist", os.ErrNotExist, KindNotFound},
		{"permission", ErrPermissionDenied, KindPermissionDenied},
		{"busy", ErrDeviceInUse, KindResourceBusy},
		{"port closed", ErrPortClosed, KindNotConnected},
		{"file closed", os.ErrClosed, KindNotConnected},
		{"bad baud", ErrInvalidBaudRate, KindInvalidInput},
		{"bad config", ErrInvalidConfig, KindInvalidInput},
		{"deadline", os.ErrDeadlineExceeded, KindTimedOut},
		{"context deadline", context.DeadlineExceeded, KindTimedOut},
		{"canceled", context.Canceled, KindInterrupted},
		{"short write", io.ErrShortWrite, KindWriteZero},
		{"unexpected eof", io.ErrUnexpectedEOF, KindInvalidData},
		{"errno pipe", unix.EPIPE, KindBrokenPipe},
		{"errno busy", unix.EBUSY, KindResourceBusy},
		{"errno intr", unix.EINTR, KindInterrupted},
		{"errno notty", fmt.Errorf("termios: %w", unix.ENOTTY), KindUnsupported},
		{"errno io", unix.EIO, KindNotConnected},
		{"unknown", errors.New("mystery"), KindOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestErrorMessage(t *testing.T) {
	err := &Error{Origin: OriginPin, Err: errors.New("gpio17 busy")}
	if got := err.Error(); got != "rs485: pin: gpio17 busy" {
		t.Errorf("Unexpected message: %s", got)
	}

	err = &Error{Origin: OriginTransport, Err: ErrPortClosed}
	if got := err.Error(); got != "rs485: transport: serial port is closed" {
		t.Errorf("Unexpected message: %s", got)
	}
}

func TestErrorOriginHelpers(t *testing.T) {
	pinErr := fmt.Errorf("send: %w", pinError(errors.New("x")))
	transportErr := fmt.Errorf("send: %w", transportError(errors.New("y")))

	if !IsPinError(pinErr) || IsTransportError(pinErr) {
		t.Errorf("Misclassified pin error: %v", pinErr)
	}
	if !IsTransportError(transportErr) || IsPinError(transportErr) {
		t.Errorf("Misclassified transport error: %v", transportErr)
	}
	if IsPinError(errors.New("plain")) || IsTransportError(nil) {
		t.Error("Plain errors must not be tagged")
	}
}

func TestKindString(t *testing.T) {
	if KindTimedOut.String() != "timed out" {
		t.Errorf("Unexpected string %q", KindTimedOut.String())
	}
	if ErrorKind(999).String() != "other" {
		t.Errorf("Unknown kinds must print as other")
	}
	if OriginTransport.String() != "transport" || OriginPin.String() != "pin" {
		t.Error("Unexpected origin names")
	}
}
