// Package errs defines the closed set of failure kinds pymove reports.
//
// Callers branch on Kind (or errors.Is against the Err* sentinels) rather
// than on message text. Extraction failures are logged by the metadata
// extractor and never returned, but the kind exists so those log entries can
// carry it.
package errs

import (
	"errors"
	"fmt"
	"strings"
)

// Kind enumerates failure categories.
type Kind int

const (
	Unknown Kind = iota
	NotFound
	InvalidPolicyKind
	Parse
	IO
	Extraction
)

func (k Kind) String() string {
	switch k {
	case NotFound:
		return "not found"
	case InvalidPolicyKind:
		return "invalid policy"
	case Parse:
		return "parse error"
	case IO:
		return "io error"
	case Extraction:
		return "extraction warning"
	default:
		return "unknown"
	}
}

// Error carries a Kind plus the path or names it concerns.
type Error struct {
	Kind   Kind
	Path   string
	Names  []string
	Detail string
	Err    error
}

// Sentinels for errors.Is. They match any *Error of the same Kind.
var (
	ErrNotFound      = &Error{Kind: NotFound}
	ErrInvalidPolicy = &Error{Kind: InvalidPolicyKind}
	ErrParse         = &Error{Kind: Parse}
	ErrIO            = &Error{Kind: IO}
	ErrExtraction    = &Error{Kind: Extraction}
)

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	if len(e.Names) > 0 {
		fmt.Fprintf(&b, ": %s", strings.Join(e.Names, ", "))
	}
	if e.Path != "" {
		fmt.Fprintf(&b, " in %s", e.Path)
	}
	if e.Detail != "" {
		fmt.Fprintf(&b, ": %s", e.Detail)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches sentinels by Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Path == "" && len(t.Names) == 0 && t.Err == nil
}

// KindOf returns the Kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}

// NotFoundIn reports requested declaration names absent from path.
func NotFoundIn(path string, names []string, detail string) *Error {
	return &Error{Kind: NotFound, Path: path, Names: names, Detail: detail}
}

// InvalidPolicy reports an unrecognized conflict-policy value.
func InvalidPolicy(policy string) *Error {
	return &Error{Kind: InvalidPolicyKind, Detail: fmt.Sprintf("unrecognized conflict policy %q", policy)}
}

// ParseFailed reports malformed source text in path.
func ParseFailed(path string, err error) *Error {
	return &Error{Kind: Parse, Path: path, Err: err}
}

// IOFailed reports a missing, unreadable or unwritable path.
func IOFailed(path string, err error) *Error {
	return &Error{Kind: IO, Path: path, Err: err}
}

// ExtractionFailed wraps a per-declaration metadata failure.
func ExtractionFailed(path, name string, err error) *Error {
	return &Error{Kind: Extraction, Path: path, Names: []string{name}, Err: err}
}
