// Package payload converts between user input and bytes on the bus.
package payload

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrEmpty = errors.New("empty input")

// ParseHex converts hex text to bytes. Accepts "48656C6C6F",
// "48 65 6C 6C 6F" and "0x48 0x65", case-insensitive.
func ParseHex(s string) ([]byte, error) {
	clean := strings.NewReplacer(" ", "", "\t", "", "0x", "", "0X", "", ",", "").Replace(strings.TrimSpace(s))
	if clean == "" {
		return nil, ErrEmpty
	}
	if len(clean)%2 != 0 {
		return nil, fmt.Errorf("hex string must have even number of digits (got %d)", len(clean))
	}

	data := make([]byte, 0, len(clean)/2)
	for i := 0; i < len(clean); i += 2 {
		b, err := strconv.ParseUint(clean[i:i+2], 16, 8)
		if err != nil {
			return nil, fmt.Errorf("invalid hex byte '%s'", clean[i:i+2])
		}
		data = append(data, byte(b))
	}
	return data, nil
}

// Encode turns input into bytes. Text gets a trailing newline when newline
// is set; hex input is sent as is.
func Encode(input string, hex, newline bool) ([]byte, error) {
	if hex {
		return ParseHex(input)
	}
	if input == "" && !newline {
		return nil, ErrEmpty
	}
	if newline {
		input += "\n"
	}
	return []byte(input), nil
}

// Hex renders bytes as space separated uppercase pairs
func Hex(data []byte) string {
	return fmt.Sprintf("% X", data)
}

// Printable replaces anything outside printable ASCII with a dot
func Printable(data []byte) string {
	var sb strings.Builder
	sb.Grow(len(data))
	for _, b := range data {
		if b >= 32 && b <= 126 {
			sb.WriteByte(b)
		} else {
			sb.WriteByte('.')
		}
	}
	return sb.String()
}

// Preview is Printable truncated to max bytes
func Preview(data []byte, max int) string {
	if max > 0 && len(data) > max {
		return Printable(data[:max]) + "..."
	}
	return Printable(data)
}
