// Package bus runs a half-duplex RS-485 link from a single goroutine so
// transmissions and receptions never overlap.
package bus

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	rs485 "github.com/allbin/go-rs485"
)

// ErrClosed is returned by Send and Do once Run has returned
var ErrClosed = errors.New("bus session closed")

// defaultMaxReadErrors is how many consecutive failed reads end Run
const defaultMaxReadErrors = 5

// Direction of a frame on the bus
type Direction int

const (
	RX Direction = iota
	TX
)

func (d Direction) String() string {
	if d == TX {
		return "TX"
	}
	return "RX"
}

// Frame is one chunk of traffic or a failure observed by the session
type Frame struct {
	Time time.Time
	Dir  Direction
	Data []byte
	Err  error
}

type request struct {
	data []byte
	fn   func() error
	done chan result
}

type result struct {
	n   int
	err error
}

// Session owns a transceiver (any io.ReadWriter whose Read switches to
// receive mode) and serializes access to it. Between transmit requests it
// reads continuously; each read returns after the transport's read timeout,
// which bounds how long a Send waits for the bus.
type Session struct {
	rw            io.ReadWriter
	requests      chan request
	frames        chan Frame
	done          chan struct{}
	err           error
	bufSize       int
	maxReadErrors int
	logger        *slog.Logger
}

// Option configures a Session
type Option func(*Session)

// WithBufferSize sets the read buffer size
func WithBufferSize(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.bufSize = n
		}
	}
}

// WithFrameBuffer sets how many frames may queue before the session blocks
func WithFrameBuffer(n int) Option {
	return func(s *Session) {
		s.frames = make(chan Frame, n)
	}
}

// WithMaxReadErrors sets how many reads in a row may fail before Run gives
// up. Timeouts and interrupted reads do not count.
func WithMaxReadErrors(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.maxReadErrors = n
		}
	}
}

// WithLogger sets the logger for direction and error events
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a session for rw. Nothing happens until Run is called.
func New(rw io.ReadWriter, opts ...Option) *Session {
	s := &Session{
		rw:            rw,
		requests:      make(chan request),
		frames:        make(chan Frame, 64),
		done:          make(chan struct{}),
		bufSize:       256,
		maxReadErrors: defaultMaxReadErrors,
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Frames returns the traffic observed by Run. It is closed when Run returns.
func (s *Session) Frames() <-chan Frame {
	return s.frames
}

// Run drives the bus until ctx is cancelled, the transport is gone or
// reads keep failing. Run must be called at most once.
func (s *Session) Run(ctx context.Context) error {
	err := s.run(ctx)
	s.err = err
	close(s.done)
	close(s.frames)
	return err
}

func (s *Session) run(ctx context.Context) error {
	buf := make([]byte, s.bufSize)
	failures := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case req := <-s.requests:
			s.serve(ctx, req)
			continue
		default:
		}

		n, err := s.rw.Read(buf)
		if n > 0 {
			data := make([]byte, n)
			copy(data, buf[:n])
			s.emit(ctx, Frame{Time: time.Now(), Dir: RX, Data: data})
		}
		if err == nil {
			failures = 0
			continue
		}

		switch rs485.KindOf(err) {
		case rs485.KindTimedOut, rs485.KindInterrupted:
			failures = 0
			continue
		case rs485.KindNotConnected:
			s.logger.Error("transport closed", "err", err)
			return err
		}
		if errors.Is(err, io.EOF) {
			return err
		}

		s.logger.Warn("read failed", "err", err, "kind", rs485.KindOf(err))
		s.emit(ctx, Frame{Time: time.Now(), Dir: RX, Err: err})

		failures++
		if failures >= s.maxReadErrors {
			s.logger.Error("giving up after repeated read failures", "count", failures, "err", err)
			return fmt.Errorf("%d consecutive read failures: %w", failures, err)
		}
	}
}

func (s *Session) serve(ctx context.Context, req request) {
	if req.fn != nil {
		req.done <- result{err: req.fn()}
		return
	}

	n, err := writeAll(s.rw, req.data)
	frame := Frame{Time: time.Now(), Dir: TX, Data: req.data[:n], Err: err}

	if err != nil {
		s.logger.Warn("transmit failed", "err", err, "sent", n, "pin", rs485.IsPinError(err))
		s.resync()
	} else {
		s.logger.Debug("transmitted", "bytes", n)
	}

	req.done <- result{n: n, err: err}
	s.emit(ctx, frame)
}

// resync forces receive mode after a failed transmit. A zero-length read
// commands the pin low without consuming data.
func (s *Session) resync() {
	if _, err := s.rw.Read(nil); err != nil {
		s.logger.Error("failed to return to receive mode", "err", err)
	}
}

func (s *Session) emit(ctx context.Context, frame Frame) {
	select {
	case s.frames <- frame:
	case <-ctx.Done():
	}
}

// writeAll loops over short writes
func writeAll(w io.Writer, data []byte) (int, error) {
	total := 0
	for total < len(data) {
		n, err := w.Write(data[total:])
		total += n
		if err != nil {
			return total, err
		}
		if n == 0 {
			return total, io.ErrShortWrite
		}
	}
	return total, nil
}

// Send transmits data on the session goroutine and returns once every byte
// was written or a write failed.
func (s *Session) Send(ctx context.Context, data []byte) (int, error) {
	res, err := s.submit(ctx, request{data: data})
	if err != nil {
		return 0, err
	}
	return res.n, res.err
}

// Do runs fn on the session goroutine between bus operations, for example
// to reconfigure the transport.
func (s *Session) Do(ctx context.Context, fn func() error) error {
	res, err := s.submit(ctx, request{fn: fn})
	if err != nil {
		return err
	}
	return res.err
}

func (s *Session) submit(ctx context.Context, req request) (result, error) {
	req.done = make(chan result, 1)

	select {
	case s.requests <- req:
	case <-s.done:
		return result{}, fmt.Errorf("%w: %w", ErrClosed, s.err)
	case <-ctx.Done():
		return result{}, ctx.Err()
	}

	// Once accepted the request runs to completion; operations on the
	// transceiver cannot be abandoned halfway.
	return <-req.done, nil
}
