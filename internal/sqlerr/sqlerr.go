// Package sqlerr defines the error kinds every layer of the engine reports.
package sqlerr

import (
	"errors"
	"fmt"
)

// Kind classifies an engine failure.
type Kind uint8

const (
	KindNone Kind = iota
	KindMem
	KindBufOverflow
	KindTokenize
	KindSyntax
	KindExec
	KindFileIO
	KindIndexOutOfRange
)

func (k Kind) String() string {
	switch k {
	case KindMem:
		return "MEM"
	case KindBufOverflow:
		return "BUF_OVERFLOW"
	case KindTokenize:
		return "TOKENIZE"
	case KindSyntax:
		return "SYNTAX"
	case KindExec:
		return "EXEC"
	case KindFileIO:
		return "FILE_IO"
	case KindIndexOutOfRange:
		return "INDEX_OUT_OF_RANGE"
	default:
		return "NONE"
	}
}

// Sentinels for errors.Is checks against a kind.
var (
	ErrMem             = &Error{Kind: KindMem}
	ErrBufOverflow     = &Error{Kind: KindBufOverflow}
	ErrTokenize        = &Error{Kind: KindTokenize}
	ErrSyntax          = &Error{Kind: KindSyntax}
	ErrExec            = &Error{Kind: KindExec}
	ErrFileIO          = &Error{Kind: KindFileIO}
	ErrIndexOutOfRange = &Error{Kind: KindIndexOutOfRange}
)

// Error carries a kind, a human readable message and an optional cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("csvsql: %s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("csvsql: %s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so errors.Is(err, ErrSyntax) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches a cause. A nil cause yields nil.
func Wrap(kind Kind, err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

// KindOf reports the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindNone
}
