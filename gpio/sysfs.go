package gpio

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	rs485 "github.com/allbin/go-rs485"
)

// SysfsRoot is the kernel's legacy GPIO class directory
const SysfsRoot = "/sys/class/gpio"

// exportWait bounds how long we wait for udev to create the line directory
const exportWait = time.Second

// SysfsPin is a direction pin on any Linux board exposing /sys/class/gpio.
type SysfsPin struct {
	mu     sync.Mutex
	value  *os.File
	dir    string
	line   int
	closed bool
}

var _ rs485.Pin = (*SysfsPin)(nil)

// OpenSysfs exports GPIO line n if necessary and configures it as an output
// driven low, so the transceiver starts in receive mode.
func OpenSysfs(n int) (*SysfsPin, error) {
	return OpenSysfsAt(SysfsRoot, n)
}

// OpenSysfsAt is OpenSysfs with an alternative sysfs root.
func OpenSysfsAt(root string, n int) (*SysfsPin, error) {
	if n < 0 {
		return nil, fmt.Errorf("invalid gpio line %d", n)
	}

	dir := filepath.Join(root, "gpio"+strconv.Itoa(n))
	if err := export(root, dir, n); err != nil {
		return nil, err
	}

	// "low" sets output direction and the initial level in one write
	if err := os.WriteFile(filepath.Join(dir, "direction"), []byte("low"), 0); err != nil {
		return nil, fmt.Errorf("failed to set gpio%d direction: %w", n, err)
	}

	value, err := os.OpenFile(filepath.Join(dir, "value"), os.O_WRONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to open gpio%d value: %w", n, err)
	}

	return &SysfsPin{value: value, dir: dir, line: n}, nil
}

func export(root, dir string, n int) error {
	if _, err := os.Stat(dir); err == nil {
		return nil
	}

	err := os.WriteFile(filepath.Join(root, "export"), []byte(strconv.Itoa(n)), 0)
	if err != nil {
		return fmt.Errorf("failed to export gpio%d: %w", n, err)
	}

	deadline := time.Now().Add(exportWait)
	for {
		if _, err := os.Stat(filepath.Join(dir, "value")); err == nil {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("gpio%d not available after export: %w", n, os.ErrNotExist)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

// Line returns the GPIO line number
func (p *SysfsPin) Line() int {
	return p.line
}

func (p *SysfsPin) set(level string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return rs485.ErrPinClosed
	}
	if _, err := p.value.WriteAt([]byte(level), 0); err != nil {
		return fmt.Errorf("gpio%d: %w", p.line, err)
	}
	return nil
}

// SetHigh drives the line high
func (p *SysfsPin) SetHigh() error {
	return p.set("1")
}

// SetLow drives the line low
func (p *SysfsPin) SetLow() error {
	return p.set("0")
}

// Close releases the value file. The line stays exported and keeps its level.
func (p *SysfsPin) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return rs485.ErrPinClosed
	}
	p.closed = true
	return p.value.Close()
}

// readSysfsFile reads a sysfs attribute, returning "" if it is missing
func readSysfsFile(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// Level reads back the line level. ok is false if it cannot be read.
func (p *SysfsPin) Level() (high bool, ok bool) {
	switch readSysfsFile(filepath.Join(p.dir, "value")) {
	case "1":
		return true, true
	case "0":
		return false, true
	default:
		return false, false
	}
}
