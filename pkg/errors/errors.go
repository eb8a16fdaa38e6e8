// Package errors carries playd's error taxonomy: every fault the core can
// raise is tagged with a Kind so the connection dispatch boundary can decide
// between an ACK WHAT and an ACK FAIL without inspecting message text.
package errors

import (
	"errors"
	"fmt"
)

// Kind classifies a playd error.
type Kind uint8

const (
	// KindNone is the zero value; errors outside the taxonomy use it.
	KindNone Kind = iota
	// KindNoFile means the operation needs a loaded file and none is present.
	KindNoFile
	// KindLoad means the chosen Source factory failed to open or parse a file.
	KindLoad
	// KindDecode means a decoder reported a fault mid-stream.
	KindDecode
	// KindSeek means a seek target was out of range or the decoder refused it.
	KindSeek
	// KindInvalid means a malformed argument (bad verb, bad arity, bad number).
	KindInvalid
	// KindNet means a TCP bind/listen/accept failure at startup.
	KindNet
	// KindInternal means an invariant violation.
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindNoFile:
		return "NO_FILE"
	case KindLoad:
		return "LOAD"
	case KindDecode:
		return "DECODE"
	case KindSeek:
		return "SEEK"
	case KindInvalid:
		return "INVALID"
	case KindNet:
		return "NET"
	case KindInternal:
		return "INTERNAL"
	default:
		return "NONE"
	}
}

// Error wraps an underlying cause with the operation that failed and a Kind
// drawn from the taxonomy above.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New builds an *Error of the given kind.
func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Is reports whether err carries the given Kind anywhere in its chain.
func Is(err error, kind Kind) bool {
	var e *Error
	for err != nil {
		if !errors.As(err, &e) {
			return false
		}
		if e.Kind == kind {
			return true
		}
		err = e.Err
	}
	return false
}

// KindOf extracts the Kind from err, or KindNone if err does not carry one.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindNone
}

// Sentinel causes used with New when there is no lower-level error to wrap.
var (
	ErrUnsupportedFormat = errors.New("unsupported audio format")
	ErrAtEnd             = errors.New("audio is at end of file")
	ErrNotStopped        = errors.New("operation requires the sink to be stopped")
	ErrBadArity          = errors.New("bad arity")
	ErrUnknownVerb       = errors.New("unknown command")
	ErrBadTag            = errors.New("bad command")
)
