//go:build linux || darwin

// Package ioerr maps OS-level syscall errors onto the probe's structured
// Error taxonomy, following the normative mapping in the system
// specification: refusal -> ConnectionRefused, timeout -> Timeout,
// unreachable -> HostUnreachable, broken pipe -> BrokenPipe, reset ->
// ConnectionReset, aborted -> Aborted, resource limits ->
// ResourceExhausted, argument -> InvalidArgument, would-block -> Busy.
package ioerr

import (
	"errors"

	"github.com/pjh456/eunet/internal/event"
	"golang.org/x/sys/unix"
)

// FromErrno maps a syscall-level error into a structured System or
// Transport domain Error. domain lets callers (poller vs socket) route
// the same errno set into the domain appropriate for where it surfaced.
func FromErrno(domain event.Domain, op string, err error) *event.Error {
	if err == nil {
		return nil
	}
	category := categorize(err)
	return event.NewError(domain).
		Category(category).
		Code(errnoCode(err)).
		Message(op + ": " + err.Error()).
		Build()
}

func errnoCode(err error) int {
	var errno unix.Errno
	if errors.As(err, &errno) {
		return int(errno)
	}
	return 0
}

func categorize(err error) event.Category {
	var errno unix.Errno
	if !errors.As(err, &errno) {
		return event.CategoryUnknown
	}
	switch errno {
	case unix.ECONNREFUSED:
		return event.CategoryConnectionRefused
	case unix.ETIMEDOUT:
		return event.CategoryTimeout
	case unix.EHOSTUNREACH, unix.ENETUNREACH:
		return event.CategoryHostUnreachable
	case unix.ENETDOWN:
		return event.CategoryNetworkDown
	case unix.EPIPE:
		return event.CategoryBrokenPipe
	case unix.ECONNRESET:
		return event.CategoryConnectionReset
	case unix.ECONNABORTED:
		return event.CategoryAborted
	case unix.EMFILE, unix.ENFILE, unix.ENOMEM, unix.ENOBUFS:
		return event.CategoryResourceExhausted
	case unix.EINVAL:
		return event.CategoryInvalidArgument
	case unix.EAGAIN:
		return event.CategoryBusy
	default:
		return event.CategoryUnknown
	}
}

// IsWouldBlock reports whether err is EAGAIN/EWOULDBLOCK.
func IsWouldBlock(err error) bool {
	var errno unix.Errno
	return errors.As(err, &errno) && (errno == unix.EAGAIN || errno == unix.EWOULDBLOCK)
}

// IsInProgress reports whether err is EINPROGRESS (non-blocking connect
// has not yet completed).
func IsInProgress(err error) bool {
	var errno unix.Errno
	return errors.As(err, &errno) && errno == unix.EINPROGRESS
}

// IsInterrupted reports whether err is EINTR.
func IsInterrupted(err error) bool {
	var errno unix.Errno
	return errors.As(err, &errno) && errno == unix.EINTR
}
