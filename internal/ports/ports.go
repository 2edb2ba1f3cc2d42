// Package ports discovers UART devices that can carry an RS-485 transceiver.
package ports

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	rs485 "github.com/allbin/go-rs485"
	"go.bug.st/serial/enumerator"
)

// ErrNotFound is returned when a path is not a character device
var ErrNotFound = rs485.ErrDeviceNotFound

var (
	serialPatterns = []*regexp.Regexp{
		regexp.MustCompile(`^ttyUSB\d+$`), // USB serial adapters
		regexp.MustCompile(`^ttyACM\d+$`), // USB CDC/ACM devices
		regexp.MustCompile(`^ttyS\d+$`),
		regexp.MustCompile(`^ttyAMA\d+$`), // Raspberry Pi PL011
		regexp.MustCompile(`^ttymxc\d+$`),
		regexp.MustCompile(`^ttyO\d+$`),
		regexp.MustCompile(`^ttySAC\d+$`),
		regexp.MustCompile(`^ttyTHS\d+$`),
	}

	excludePatterns = []*regexp.Regexp{
		regexp.MustCompile(`^tty\d+$`),
		regexp.MustCompile(`^console$`),
		regexp.MustCompile(`^ptmx$`),
		regexp.MustCompile(`^pty.*$`),
		regexp.MustCompile(`^pts/.*$`),
	}
)

// detailedPorts is replaced in tests
var detailedPorts = enumerator.GetDetailedPortsList

// Class groups ports by the kind of hardware behind them
type Class int

const (
	ClassOther Class = iota
	ClassUSB
	ClassStandard
	ClassSoC
)

func (c Class) String() string {
	switch c {
	case ClassUSB:
		return "usb"
	case ClassStandard:
		return "standard"
	case ClassSoC:
		return "soc"
	default:
		return "other"
	}
}

// Info describes a single port
type Info struct {
	Name         string
	Path         string
	Description  string
	Class        Class
	USB          bool
	VendorID     string
	ProductID    string
	SerialNumber string
	Product      string
}

// List returns the sorted paths of serial character devices under /dev
func List() ([]string, error) {
	return scan("/dev")
}

func scan(devDir string) ([]string, error) {
	entries, err := os.ReadDir(devDir)
	if err != nil {
		return nil, err
	}

	var ports []string
	for _, entry := range entries {
		name := entry.Name()
		if !isSerialName(name) {
			continue
		}
		path := filepath.Join(devDir, name)
		if isCharacterDevice(path) {
			ports = append(ports, path)
		}
	}
	sort.Strings(ports)
	return ports, nil
}

func isSerialName(name string) bool {
	for _, p := range excludePatterns {
		if p.MatchString(name) {
			return false
		}
	}
	for _, p := range serialPatterns {
		if p.MatchString(name) {
			return true
		}
	}
	return false
}

func isCharacterDevice(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

// Lookup returns the description of a single port
func Lookup(path string) (*Info, error) {
	if !isCharacterDevice(path) {
		return nil, ErrNotFound
	}
	infos := Describe([]string{path})
	return &infos[0], nil
}

// Describe builds an Info for each path. USB vendor, product and serial
// number are filled in from the enumerator when it knows the port; a
// failing enumerator leaves them empty.
func Describe(paths []string) []Info {
	infos := make([]Info, len(paths))
	for i, path := range paths {
		name := filepath.Base(path)
		infos[i] = Info{
			Name:        name,
			Path:        path,
			Description: description(name),
			Class:       classify(name),
		}
	}

	details, err := detailedPorts()
	if err != nil {
		return infos
	}
	byPath := make(map[string]*enumerator.PortDetails, len(details))
	for _, d := range details {
		if d != nil {
			byPath[d.Name] = d
		}
	}
	for i := range infos {
		d, ok := byPath[infos[i].Path]
		if !ok || !d.IsUSB {
			continue
		}
		infos[i].USB = true
		infos[i].VendorID = d.VID
		infos[i].ProductID = d.PID
		infos[i].SerialNumber = d.SerialNumber
		infos[i].Product = d.Product
	}
	return infos
}

func classify(name string) Class {
	switch {
	case strings.HasPrefix(name, "ttyUSB"), strings.HasPrefix(name, "ttyACM"):
		return ClassUSB
	case strings.HasPrefix(name, "ttyAMA"), strings.HasPrefix(name, "ttymxc"),
		strings.HasPrefix(name, "ttySAC"), strings.HasPrefix(name, "ttyTHS"),
		strings.HasPrefix(name, "ttyO"):
		return ClassSoC
	case strings.HasPrefix(name, "ttyS"):
		return ClassStandard
	default:
		return ClassOther
	}
}

func description(name string) string {
	switch {
	case strings.HasPrefix(name, "ttyUSB"):
		return "USB serial adapter"
	case strings.HasPrefix(name, "ttyACM"):
		return "USB CDC/ACM device"
	case strings.HasPrefix(name, "ttyAMA"):
		return "ARM PL011 UART"
	case strings.HasPrefix(name, "ttymxc"):
		return "i.MX UART"
	case strings.HasPrefix(name, "ttySAC"):
		return "Samsung UART"
	case strings.HasPrefix(name, "ttyTHS"):
		return "Tegra UART"
	case strings.HasPrefix(name, "ttyO"):
		return "OMAP UART"
	case strings.HasPrefix(name, "ttyS"):
		return "16550 UART"
	default:
		return "Serial port"
	}
}
