package ssa

import (
	"errors"
	"fmt"
	"strings"

	"zkc/internal/diag"
	"zkc/internal/source"
)

var (
	ErrUnresolvedSymbol        = errors.New("unresolved symbol")
	ErrMissingReservedField    = errors.New("record is missing a reserved member")
	ErrUnsupportedAssignTarget = errors.New("unsupported assignment target")
	ErrNonConstantLoopBound    = errors.New("loop bound is not an integer literal")
	ErrLoopBoundTooLarge       = errors.New("loop iteration count exceeds unroll limit")
	ErrScopeImbalance          = errors.New("scope stack imbalance")
	ErrInvariantViolation      = errors.New("ssa invariant violated")
	ErrMalformedTree           = errors.New("malformed tree")
)

// Error is a fatal pass failure. It wraps one of the Err* sentinels, so
// callers can test it with errors.Is.
type Error struct {
	Code     diag.Code
	Span     source.Span
	Program  string // "token.aleo", empty outside programs
	Function string // enclosing function, empty outside functions
	Msg      string
	Err      error
}

func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Msg)
	if e.Function != "" {
		fmt.Fprintf(&sb, " in function %q", e.Function)
	}
	if e.Program != "" {
		fmt.Fprintf(&sb, " (program %s)", e.Program)
	}
	return sb.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Report sends err to r as error diagnostics, one per joined error. Errors
// that are not *Error are reported under diag.UnknownCode.
func Report(r diag.Reporter, err error) {
	if r == nil || err == nil {
		return
	}
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		for _, e := range joined.Unwrap() {
			Report(r, e)
		}
		return
	}
	var se *Error
	if !errors.As(err, &se) {
		diag.ReportError(r, diag.UnknownCode, source.NoSpan, err.Error()).Emit()
		return
	}
	diag.ReportError(r, se.Code, se.Span, se.Error()).Emit()
}
