package ssa

import (
	"fmt"
	"strconv"

	"zkc/internal/diag"
	"zkc/internal/source"
	"zkc/internal/trace"
)

// DefaultMaxUnroll bounds the iteration count of a single unrolled loop.
const DefaultMaxUnroll = 65536

// nameCounter hands out version numbers. One counter is shared by a pass
// and all its imports, so no two output names collide.
type nameCounter struct {
	next uint64
}

func (c *nameCounter) fresh(original string) string {
	c.next++
	return original + "$" + strconv.FormatUint(c.next, 10)
}

// Assigner drives the conversion of one tree. It owns the rename table and
// is not safe for concurrent use; use one Assigner per pass invocation.
type Assigner struct {
	table     *RenameTable
	strings   *source.Interner
	names     *nameCounter
	maxUnroll int

	tracer trace.Tracer
	parent uint64 // trace span of the enclosing program

	program  string
	function string
	fnSpan   source.Span

	misuse error // first Register/Exit without an open scope
}

// NewAssigner creates an Assigner with an empty rename table.
func NewAssigner(opts Options) *Assigner {
	maxUnroll := opts.MaxUnroll
	if maxUnroll <= 0 {
		maxUnroll = DefaultMaxUnroll
	}
	strs := source.NewInterner()
	return &Assigner{
		table:     NewRenameTable(strs),
		strings:   strs,
		names:     &nameCounter{},
		maxUnroll: maxUnroll,
		tracer:    trace.Nop,
	}
}

// child returns an Assigner for an imported program: fresh rename table,
// shared name counter.
func (a *Assigner) child() *Assigner {
	return &Assigner{
		table:     NewRenameTable(a.strings),
		strings:   a.strings,
		names:     a.names,
		maxUnroll: a.maxUnroll,
		tracer:    a.tracer,
		parent:    a.parent,
	}
}

// Enter opens a new innermost scope.
func (a *Assigner) Enter() {
	a.table.Push()
}

// Register binds original to resolved in the innermost scope only. Without
// an open scope the binding is dropped and Err reports ErrScopeImbalance.
func (a *Assigner) Register(original, resolved string) {
	if !a.table.Bind(original, resolved) {
		a.fail("register %q outside of any scope", original)
	}
}

// Resolve returns the SSA name original currently refers to.
func (a *Assigner) Resolve(original string) (string, error) {
	return a.resolveAt(original, source.NoSpan)
}

func (a *Assigner) resolveAt(original string, span source.Span) (string, error) {
	if name, ok := a.table.Lookup(original); ok {
		return name, nil
	}
	return "", a.errorf(diag.SSAUnresolvedSymbol, ErrUnresolvedSymbol, span, "unresolved symbol %q", original)
}

// Exit closes the innermost scope. Exit without an open scope is recorded
// in Err.
func (a *Assigner) Exit() {
	if _, ok := a.table.Pop(); !ok {
		a.fail("exit without an open scope")
	}
}

// Err returns the first scope misuse seen by Register or Exit, or nil.
// The conversion entry points check it, so a misuse fails the unit.
func (a *Assigner) Err() error {
	return a.misuse
}

func (a *Assigner) fail(format string, args ...any) {
	if a.misuse == nil {
		a.misuse = a.errorf(diag.SSAScopeImbalance, ErrScopeImbalance, a.fnSpan, format, args...)
	}
}

// Depth is the number of open scopes.
func (a *Assigner) Depth() int {
	return a.table.Depth()
}

// Names returns how many SSA names were allocated so far, imports included.
func (a *Assigner) Names() uint64 {
	return a.names.next
}

// withScope runs fn inside a fresh scope. The scope is closed on every path.
func (a *Assigner) withScope(fn func() error) error {
	a.Enter()
	defer a.Exit()
	return fn()
}

// capture runs fn inside a fresh scope and returns the bindings made there.
func (a *Assigner) capture(fn func() error) (bindings []Binding, err error) {
	a.Enter()
	defer func() {
		var ok bool
		if bindings, ok = a.table.Pop(); !ok {
			a.fail("captured scope closed twice")
		}
	}()
	err = fn()
	return bindings, err
}

// propagate re-registers bindings of names visible in the enclosing chain
// into the current scope. Names first defined in the closed scope stay local.
func (a *Assigner) propagate(bindings []Binding) {
	for _, b := range bindings {
		if _, ok := a.table.Lookup(b.Original); ok {
			a.Register(b.Original, b.Resolved)
		}
	}
}

func (a *Assigner) fresh(original string) string {
	return a.names.fresh(original)
}

func (a *Assigner) errorf(code diag.Code, sentinel error, span source.Span, format string, args ...any) *Error {
	return &Error{
		Code:     code,
		Span:     span,
		Program:  a.program,
		Function: a.function,
		Msg:      fmt.Sprintf(format, args...),
		Err:      sentinel,
	}
}

// scopeLifetime is the scope of one function body or one finalize body.
// Each body gets its own value, so nothing bound in one is visible in the
// other.
type scopeLifetime struct {
	a     *Assigner
	depth int
	span  *trace.Span
	name  string
}

func (a *Assigner) openLifetime(name string) *scopeLifetime {
	l := &scopeLifetime{
		a:     a,
		depth: a.Depth(),
		span:  trace.Begin(a.tracer, trace.ScopeFunction, name, a.parent),
		name:  name,
	}
	a.Enter()
	return l
}

// close exits the lifetime's scope and checks the stack is back where the
// lifetime found it.
func (l *scopeLifetime) close() error {
	l.a.Exit()
	depth := l.a.Depth()
	if depth == l.depth {
		l.span.End("")
		return nil
	}
	l.span.End("imbalance")
	// восстанавливаем глубину, чтобы последующие функции не унаследовали мусор
	for l.a.Depth() > l.depth {
		l.a.Exit()
	}
	return l.a.errorf(diag.SSAScopeImbalance, ErrScopeImbalance, l.a.fnSpan,
		"%s: scope depth %d after body, want %d", l.name, depth, l.depth)
}
