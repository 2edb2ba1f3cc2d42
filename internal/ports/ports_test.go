package ports

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.bug.st/serial/enumerator"
)

func stubDetails(t *testing.T, details []*enumerator.PortDetails, err error) {
	t.Helper()
	orig := detailedPorts
	detailedPorts = func() ([]*enumerator.PortDetails, error) { return details, err }
	t.Cleanup(func() { detailedPorts = orig })
}

func TestList(t *testing.T) {
	ports, err := List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	for _, port := range ports {
		if !strings.HasPrefix(port, "/dev/") {
			t.Errorf("port path doesn't start with /dev/: %s", port)
		}
		if !isCharacterDevice(port) {
			t.Errorf("port is not a character device: %s", port)
		}
	}
	for i := 1; i < len(ports); i++ {
		if ports[i-1] > ports[i] {
			t.Errorf("ports are not sorted: %s > %s", ports[i-1], ports[i])
		}
	}
}

func TestScanSkipsRegularFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"ttyUSB0", "ttyS0", "random"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o600); err != nil {
			t.Fatal(err)
		}
	}

	ports, err := scan(dir)
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if len(ports) != 0 {
		t.Errorf("scan returned regular files: %v", ports)
	}

	if _, err := scan(filepath.Join(dir, "missing")); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestIsSerialName(t *testing.T) {
	tests := []struct {
		name     string
		expected bool
	}{
		{"ttyUSB0", true},
		{"ttyUSB12", true},
		{"ttyACM0", true},
		{"ttyS0", true},
		{"ttyAMA0", true},
		{"ttymxc3", true},
		{"ttyTHS1", true},
		{"tty1", false},
		{"console", false},
		{"ptmx", false},
		{"ptyp0", false},
		{"random", false},
		{"ttyUSB", false},
	}

	for _, tt := range tests {
		if got := isSerialName(tt.name); got != tt.expected {
			t.Errorf("isSerialName(%s) = %v, expected %v", tt.name, got, tt.expected)
		}
	}
}

func TestIsCharacterDevice(t *testing.T) {
	tests := []struct {
		path     string
		expected bool
	}{
		{"/dev/null", true},
		{"/dev/zero", true},
		{os.TempDir(), false},
		{"/nonexistent", false},
	}

	for _, tt := range tests {
		if got := isCharacterDevice(tt.path); got != tt.expected {
			t.Errorf("isCharacterDevice(%s) = %v, expected %v", tt.path, got, tt.expected)
		}
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		expected Class
	}{
		{"ttyUSB0", ClassUSB},
		{"ttyACM0", ClassUSB},
		{"ttyS0", ClassStandard},
		{"ttySAC0", ClassSoC},
		{"ttyAMA0", ClassSoC},
		{"ttyO1", ClassSoC},
		{"null", ClassOther},
	}

	for _, tt := range tests {
		if got := classify(tt.name); got != tt.expected {
			t.Errorf("classify(%s) = %v, expected %v", tt.name, got, tt.expected)
		}
	}
}

func TestDescribeAddsUSBDetails(t *testing.T) {
	stubDetails(t, []*enumerator.PortDetails{
		{Name: "/dev/ttyUSB0", IsUSB: true, VID: "0403", PID: "6001", SerialNumber: "A50285BI", Product: "FT232R USB UART"},
		{Name: "/dev/ttyS0"},
		nil,
	}, nil)

	infos := Describe([]string{"/dev/ttyUSB0", "/dev/ttyS0"})
	if len(infos) != 2 {
		t.Fatalf("expected 2 infos, got %d", len(infos))
	}

	usb := infos[0]
	if !usb.USB || usb.VendorID != "0403" || usb.ProductID != "6001" {
		t.Errorf("USB details not applied: %+v", usb)
	}
	if usb.SerialNumber != "A50285BI" || usb.Product != "FT232R USB UART" {
		t.Errorf("USB serial/product not applied: %+v", usb)
	}
	if usb.Description != "USB serial adapter" {
		t.Errorf("unexpected description %q", usb.Description)
	}

	if infos[1].USB || infos[1].VendorID != "" {
		t.Errorf("non-USB port got USB details: %+v", infos[1])
	}
}

func TestDescribeWithoutEnumerator(t *testing.T) {
	stubDetails(t, nil, errors.New("no sysfs"))

	infos := Describe([]string{"/dev/ttyAMA0"})
	if infos[0].USB {
		t.Error("expected no USB details")
	}
	if infos[0].Class != ClassSoC || infos[0].Name != "ttyAMA0" {
		t.Errorf("unexpected info: %+v", infos[0])
	}
}

func TestLookup(t *testing.T) {
	stubDetails(t, nil, nil)

	info, err := Lookup("/dev/null")
	if err != nil {
		t.Fatalf("Lookup failed for /dev/null: %v", err)
	}
	if info.Name != "null" || info.Path != "/dev/null" {
		t.Errorf("unexpected info: %+v", info)
	}
	if info.Description == "" {
		t.Error("description should not be empty")
	}

	if _, err := Lookup("/dev/nonexistent"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
