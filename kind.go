package rs485

import (
	"context"
	"errors"
	"io"
	"os"

	"golang.org/x/sys/unix"
)

// ErrorKind is a generic, transport-independent classification of stream errors.
type ErrorKind int

const (
	KindOther ErrorKind = iota
	KindNotFound
	KindPermissionDenied
	KindResourceBusy
	KindNotConnected
	KindBrokenPipe
	KindInvalidInput
	KindInvalidData
	KindTimedOut
	KindInterrupted
	KindUnsupported
	KindOutOfMemory
	KindWriteZero
)

func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindPermissionDenied:
		return "permission denied"
	case KindResourceBusy:
		return "resource busy"
	case KindNotConnected:
		return "not connected"
	case KindBrokenPipe:
		return "broken pipe"
	case KindInvalidInput:
		return "invalid input"
	case KindInvalidData:
		return "invalid data"
	case KindTimedOut:
		return "timed out"
	case KindInterrupted:
		return "interrupted"
	case KindUnsupported:
		return "unsupported"
	case KindOutOfMemory:
		return "out of memory"
	case KindWriteZero:
		return "write zero"
	default:
		return "other"
	}
}

// Kinder is implemented by errors that know their own classification.
type Kinder interface {
	Kind() ErrorKind
}

// KindOf classifies err. Errors implementing Kinder anywhere in their chain
// classify themselves; otherwise well-known sentinels and errno values are
// mapped, and anything else is KindOther.
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindOther
	}

	var k Kinder
	if errors.As(err, &k) {
		return k.Kind()
	}

	switch {
	case errors.Is(err, ErrDeviceNotFound), errors.Is(err, os.ErrNotExist):
		return KindNotFound
	case errors.Is(err, ErrPermissionDenied), errors.Is(err, os.ErrPermission):
		return KindPermissionDenied
	case errors.Is(err, ErrDeviceInUse):
		return KindResourceBusy
	case errors.Is(err, ErrPortClosed), errors.Is(err, os.ErrClosed):
		return KindNotConnected
	case errors.Is(err, ErrInvalidBaudRate), errors.Is(err, ErrInvalidConfig):
		return KindInvalidInput
	case errors.Is(err, os.ErrDeadlineExceeded), errors.Is(err, context.DeadlineExceeded):
		return KindTimedOut
	case errors.Is(err, context.Canceled):
		return KindInterrupted
	case errors.Is(err, io.ErrShortWrite):
		return KindWriteZero
	case errors.Is(err, io.ErrUnexpectedEOF):
		return KindInvalidData
	}

	var errno unix.Errno
	if errors.As(err, &errno) {
		return kindOfErrno(errno)
	}
	return KindOther
}

func kindOfErrno(errno unix.Errno) ErrorKind {
	switch errno {
	case unix.ENOENT, unix.ENODEV, unix.ENXIO:
		return KindNotFound
	case unix.EACCES, unix.EPERM:
		return KindPermissionDenied
	case unix.EBUSY:
		return KindResourceBusy
	case unix.EBADF, unix.EIO:
		// EIO is what a tty read returns once its USB adapter is unplugged
		return KindNotConnected
	case unix.EPIPE:
		return KindBrokenPipe
	case unix.EINVAL:
		return KindInvalidInput
	case unix.ETIMEDOUT:
		return KindTimedOut
	case unix.EINTR, unix.EAGAIN:
		return KindInterrupted
	case unix.ENOTTY, unix.EOPNOTSUPP:
		return KindUnsupported
	case unix.ENOMEM:
		return KindOutOfMemory
	default:
		return KindOther
	}
}
