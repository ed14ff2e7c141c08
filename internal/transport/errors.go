package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"syscall"
)

// ErrorKind is the category of a transport failure
type ErrorKind int

const (
	// KindTimeout means the exchange did not complete within its budget
	KindTimeout ErrorKind = iota
	// KindConnectionRefused means the backend refused or could not be reached
	KindConnectionRefused
	// KindOther covers every other I/O failure
	KindOther
)

// String returns a human-readable name for the error kind
func (k ErrorKind) String() string {
	switch k {
	case KindTimeout:
		return "Timeout"
	case KindConnectionRefused:
		return "Connection Refused"
	case KindOther:
		return "Transport Error"
	default:
		return fmt.Sprintf("ErrorKind(%d)", k)
	}
}

// Error is a transport-level failure. No response was obtained.
type Error struct {
	Kind   ErrorKind
	Method string
	Path   string
	Detail string
	Err    error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s %s: %s (caused by: %v)", e.Kind, e.Method, e.Path, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s: %s %s: %s", e.Kind, e.Method, e.Path, e.Detail)
}

// Unwrap returns the underlying error for error chain inspection
func (e *Error) Unwrap() error {
	return e.Err
}

// classify maps a failure from net/http into an *Error.
// ctxErr is the error of the per-request context, if it has ended.
func classify(method, path string, err error, ctxErr error) *Error {
	if err == nil {
		return nil
	}

	e := &Error{Method: method, Path: path, Err: err}

	switch {
	case errors.Is(ctxErr, context.DeadlineExceeded), errors.Is(err, context.DeadlineExceeded), os.IsTimeout(err):
		e.Kind = KindTimeout
		e.Detail = "request timed out"
		return e
	case errors.Is(err, context.Canceled):
		e.Kind = KindOther
		e.Detail = "request canceled"
		return e
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		e.Kind = KindOther
		e.Detail = fmt.Sprintf("DNS resolution failed for %s", dnsErr.Name)
		return e
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		switch {
		case errors.Is(opErr.Err, syscall.ECONNREFUSED):
			e.Kind = KindConnectionRefused
			e.Detail = "connection refused"
			return e
		case errors.Is(opErr.Err, syscall.EHOSTUNREACH):
			e.Kind = KindConnectionRefused
			e.Detail = "host unreachable"
			return e
		case errors.Is(opErr.Err, syscall.ENETUNREACH):
			e.Kind = KindConnectionRefused
			e.Detail = "network unreachable"
			return e
		}
	}

	e.Kind = KindOther
	e.Detail = "I/O error"
	return e
}

// IsTimeout reports whether err is a transport timeout
func IsTimeout(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == KindTimeout
}

// IsConnectionRefused reports whether err is a refused or unreachable connection
func IsConnectionRefused(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == KindConnectionRefused
}

// ShortMessage returns a concise, user-facing description of a transport failure
func ShortMessage(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return err.Error()
	}

	switch e.Kind {
	case KindTimeout:
		return "server not responding (timeout)"
	case KindConnectionRefused:
		return "server unreachable (" + e.Detail + ")"
	default:
		if e.Err != nil {
			return fmt.Sprintf("network error: %v", e.Err)
		}
		return "network error: " + e.Detail
	}
}

// TroubleshootingHint returns user-friendly advice for a transport failure
func TroubleshootingHint(err error) []string {
	var e *Error
	if !errors.As(err, &e) {
		return nil
	}

	switch e.Kind {
	case KindTimeout:
		return []string{
			"The backend did not respond in time.",
			"Check that the prediction server is running",
			"Move closer to the access point or use a wired connection",
		}
	case KindConnectionRefused:
		return []string{
			"The backend could not be reached.",
			"Verify the server URL (--server or POSEUL_SERVER_URL)",
			"From the Android emulator the host is 10.0.2.2, from a phone use the PC's LAN address",
			"Run 'poseul discover' to look for a backend on the local network",
		}
	default:
		return []string{strings.TrimSpace("Check your network connection. " + e.Detail)}
	}
}
