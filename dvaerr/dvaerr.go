// Package dvaerr defines the typed error kinds shared across the DVA
// optimization core, per the propagation policy in spec.md §7.
package dvaerr

import "fmt"

// Kind classifies an error into one of the five propagation categories
// the core distinguishes between engine/campaign boundaries.
type Kind int

const (
	// InvalidInput covers inconsistent bounds, empty frequency grids,
	// unknown target masses, and similar caller mistakes.
	InvalidInput Kind = iota
	// NumericFailure marks a linear-solve breakdown or non-finite FRF
	// sample at a specific frequency.
	NumericFailure
	// Infeasible marks a candidate whose fitness evaluation produced a
	// NaN result, surfaced as the 1e6 penalty.
	Infeasible
	// Aborted marks user cancellation via the engine abort flag.
	Aborted
	// ResourceExhausted marks failure to spawn parallel workers.
	ResourceExhausted
)

func (k Kind) String() string {
	switch k {
	case InvalidInput:
		return "InvalidInput"
	case NumericFailure:
		return "NumericFailure"
	case Infeasible:
		return "Infeasible"
	case Aborted:
		return "Aborted"
	case ResourceExhausted:
		return "ResourceExhausted"
	default:
		return "Unknown"
	}
}

// Error is the typed error carried across the engine/campaign boundary.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// New creates an *Error of the given kind with a formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an *Error of the given kind wrapping an underlying error.
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// Is reports whether err is a *Error of the given kind, for use with
// errors.Is-style call sites.
func Is(err error, kind Kind) bool {
	e, ok := err.(*Error)
	if !ok {
		return false
	}
	return e.Kind == kind
}

// ExitCode maps an error to the CLI exit codes from spec.md §6:
// 0 success, 2 invalid input, 3 runtime failure.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if e, ok := err.(*Error); ok && e.Kind == InvalidInput {
		return 2
	}
	return 3
}
