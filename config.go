package rs485

import "time"

// WriteMode represents the write synchronization mode
type WriteMode int

const (
	WriteModeBuffered WriteMode = iota // Default: kernel buffers writes
	WriteModeSynced                    // O_SYNC: writes block until hardware transmission
)

// Parity represents the parity mode
type Parity int

const (
	ParityNone Parity = iota
	ParityOdd
	ParityEven
	ParityMark
	ParitySpace
)

func (p Parity) String() string {
	switch p {
	case ParityOdd:
		return "O"
	case ParityEven:
		return "E"
	case ParityMark:
		return "M"
	case ParitySpace:
		return "S"
	default:
		return "N"
	}
}

// maxReadTimeout is the largest VTIME value (255 tenths of a second).
const maxReadTimeout = 25500 * time.Millisecond

// Config holds the line settings of a serial transport
type Config struct {
	BaudRate    int
	DataBits    int
	StopBits    int
	Parity      Parity
	ReadTimeout time.Duration // Granularity 100ms, 0 makes reads non-blocking
	WriteMode   WriteMode
}

// Option is a functional option for configuring a serial port
type Option func(*Config) error

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() Config {
	return Config{
		BaudRate:    115200,
		DataBits:    8,
		StopBits:    1,
		Parity:      ParityNone,
		ReadTimeout: 2500 * time.Millisecond,
		WriteMode:   WriteModeBuffered,
	}
}

// Apply returns a copy of c with opts applied in order.
func (c Config) Apply(opts ...Option) (Config, error) {
	for _, opt := range opts {
		if err := opt(&c); err != nil {
			return c, err
		}
	}
	return c, nil
}

// Validate checks a Config assembled without options.
func (c Config) Validate() error {
	if _, err := getBaudRate(c.BaudRate); err != nil {
		return err
	}
	if c.DataBits < 5 || c.DataBits > 8 {
		return ErrInvalidConfig
	}
	if c.StopBits != 1 && c.StopBits != 2 {
		return ErrInvalidConfig
	}
	if c.Parity < ParityNone || c.Parity > ParitySpace {
		return ErrInvalidConfig
	}
	return validReadTimeout(c.ReadTimeout)
}

// Tenths returns the read timeout as a VTIME value.
func (c Config) Tenths() uint8 {
	return uint8(c.ReadTimeout / (100 * time.Millisecond))
}

func validReadTimeout(d time.Duration) error {
	if d < 0 || d > maxReadTimeout || d%(100*time.Millisecond) != 0 {
		return ErrInvalidConfig
	}
	return nil
}

// WithBaudRate sets the baud rate
func WithBaudRate(rate int) Option {
	return func(c *Config) error {
		if _, err := getBaudRate(rate); err != nil {
			return err
		}
		c.BaudRate = rate
		return nil
	}
}

// WithDataBits sets the number of data bits (5, 6, 7, or 8)
func WithDataBits(bits int) Option {
	return func(c *Config) error {
		if bits < 5 || bits > 8 {
			return ErrInvalidConfig
		}
		c.DataBits = bits
		return nil
	}
}

// WithStopBits sets the number of stop bits (1 or 2)
func WithStopBits(bits int) Option {
	return func(c *Config) error {
		if bits != 1 && bits != 2 {
			return ErrInvalidConfig
		}
		c.StopBits = bits
		return nil
	}
}

// WithParity sets the parity mode
func WithParity(parity Parity) Option {
	return func(c *Config) error {
		if parity < ParityNone || parity > ParitySpace {
			return ErrInvalidConfig
		}
		c.Parity = parity
		return nil
	}
}

// WithReadTimeout sets how long a read waits for the first byte. The
// terminal driver counts in tenths of a second, so the timeout must be a
// multiple of 100ms no larger than 25.5s.
func WithReadTimeout(timeout time.Duration) Option {
	return func(c *Config) error {
		if err := validReadTimeout(timeout); err != nil {
			return err
		}
		c.ReadTimeout = timeout
		return nil
	}
}

// WithWriteMode sets the write synchronization mode
func WithWriteMode(mode WriteMode) Option {
	return func(c *Config) error {
		c.WriteMode = mode
		return nil
	}
}

// WithSyncWrite enables synchronous writes (O_SYNC)
func WithSyncWrite() Option {
	return WithWriteMode(WriteModeSynced)
}
