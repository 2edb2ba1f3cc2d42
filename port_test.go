package rs485

import (
	"errors"
	"testing"
)

func TestGetBaudRate(t *testing.T) {
	tests := []struct {
		input    int
		hasError bool
	}{
		{115200, false},
		{9600, false},
		{57600, false},
		{4000000, false},
		{123456, true}, // Invalid baud rate
		{0, true},
	}

	for _, test := range tests {
		result, err := getBaudRate(test.input)
		if test.hasError {
			if err != ErrInvalidBaudRate {
				t.Errorf("Expected ErrInvalidBaudRate for %d, got %v", test.input, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("Unexpected error for baud rate %d: %v", test.input, err)
		}
		if result == 0 {
			t.Errorf("Got zero result for valid baud rate %d", test.input)
		}
	}
}

func TestOpenNonExistentDevice(t *testing.T) {
	_, err := Open("/dev/nonexistent")
	if err == nil {
		t.Fatal("Expected error when opening non-existent device")
	}
	if !errors.Is(err, ErrDeviceNotFound) {
		t.Errorf("Expected ErrDeviceNotFound, got %v", err)
	}
	if KindOf(err) != KindNotFound {
		t.Errorf("Expected KindNotFound, got %v", KindOf(err))
	}
}

func TestOpenInvalidOption(t *testing.T) {
	_, err := Open("/dev/null", WithDataBits(4))
	if err != ErrInvalidConfig {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}
}

func TestOpenNonTerminal(t *testing.T) {
	// /dev/null opens fine but rejects terminal ioctls
	_, err := Open("/dev/null")
	if err == nil {
		t.Fatal("Expected error configuring a non-terminal device")
	}
	if KindOf(err) != KindUnsupported {
		t.Errorf("Expected KindUnsupported, got %v (%v)", KindOf(err), err)
	}
}

func TestClosedPort(t *testing.T) {
	port := &Port{closed: true}

	if _, err := port.Read(make([]byte, 4)); err != ErrPortClosed {
		t.Errorf("Read: expected ErrPortClosed, got %v", err)
	}
	if _, err := port.Write([]byte("test")); err != ErrPortClosed {
		t.Errorf("Write: expected ErrPortClosed, got %v", err)
	}
	if err := port.Drain(); err != ErrPortClosed {
		t.Errorf("Drain: expected ErrPortClosed, got %v", err)
	}
	if err := port.FlushInput(); err != ErrPortClosed {
		t.Errorf("FlushInput: expected ErrPortClosed, got %v", err)
	}
	if err := port.SetRTS(true); err != ErrPortClosed {
		t.Errorf("SetRTS: expected ErrPortClosed, got %v", err)
	}
	if _, err := port.RTS(); err != ErrPortClosed {
		t.Errorf("RTS: expected ErrPortClosed, got %v", err)
	}
	if err := port.Configure(WithBaudRate(9600)); err != ErrPortClosed {
		t.Errorf("Configure: expected ErrPortClosed, got %v", err)
	}
	if err := port.Close(); err != ErrPortClosed {
		t.Errorf("Close: expected ErrPortClosed, got %v", err)
	}
}

func TestClosedPortThroughTransceiver(t *testing.T) {
	port := &Port{closed: true}
	tr := New(port, RTSPin(port))

	_, err := tr.Write([]byte{0x01})
	if !IsPinError(err) {
		t.Fatalf("Expected pin error from closed RTS line, got %v", err)
	}
	if !errors.Is(err, ErrPortClosed) {
		t.Errorf("Expected wrapped ErrPortClosed, got %v", err)
	}
	if KindOf(err) != KindOther {
		t.Errorf("Pin errors must classify as KindOther, got %v", KindOf(err))
	}
}
