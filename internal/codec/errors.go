package codec

import (
	"errors"
	"fmt"

	"github.com/aiservice/poseul/internal/transport"
)

// DecodeErrorKind categorizes decode failures
type DecodeErrorKind int

const (
	// MalformedJSON means the body is not syntactically valid JSON
	MalformedJSON DecodeErrorKind = iota
	// MissingRequiredField means a required field is absent or null
	MissingRequiredField
	// TypeMismatch means a required field has the wrong JSON type
	TypeMismatch
)

// String returns a human-readable name for the kind
func (k DecodeErrorKind) String() string {
	switch k {
	case MalformedJSON:
		return "Malformed JSON"
	case MissingRequiredField:
		return "Missing Required Field"
	case TypeMismatch:
		return "Type Mismatch"
	default:
		return fmt.Sprintf("DecodeErrorKind(%d)", k)
	}
}

// DecodeError is returned by Decode
type DecodeError struct {
	Kind  DecodeErrorKind
	Field string
	Err   error
}

// Error implements the error interface
func (e *DecodeError) Error() string {
	msg := e.Kind.String()
	if e.Field != "" {
		msg += fmt.Sprintf(" %q", e.Field)
	}
	if e.Err != nil {
		msg += fmt.Sprintf(": %v", e.Err)
	}
	return msg
}

// Unwrap returns the underlying error
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// IsDecodeError reports whether err is a *DecodeError
func IsDecodeError(err error) bool {
	var de *DecodeError
	return errors.As(err, &de)
}

// IsMissingField reports whether err is a missing required field error
func IsMissingField(err error) bool {
	var de *DecodeError
	return errors.As(err, &de) && de.Kind == MissingRequiredField
}

// ProtocolError is a failure the server reported in a well-formed envelope
type ProtocolError struct {
	StatusCode int
	Message    string
}

// Error implements the error interface
func (e *ProtocolError) Error() string {
	return e.Message
}

// ServerFailure builds a ProtocolError from an optional server message.
// When the server gave no text, fallback is used.
func ServerFailure(statusCode int, message *string, fallback string) *ProtocolError {
	msg := fallback
	if message != nil && *message != "" {
		msg = *message
	} else if statusCode != 0 && (statusCode < 200 || statusCode >= 300) {
		msg = fmt.Sprintf("%s (HTTP %d)", fallback, statusCode)
	}
	return &ProtocolError{StatusCode: statusCode, Message: msg}
}

// Message reduces any gateway failure to the single user-facing string
// the UI shows.
func Message(err error) string {
	if err == nil {
		return ""
	}

	var pe *ProtocolError
	if errors.As(err, &pe) {
		return pe.Message
	}

	var te *transport.Error
	if errors.As(err, &te) {
		return transport.ShortMessage(te)
	}

	var de *DecodeError
	if errors.As(err, &de) {
		return "invalid server response: " + de.Error()
	}

	return err.Error()
}
