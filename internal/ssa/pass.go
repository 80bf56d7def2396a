package ssa

import (
	"context"
	"strconv"

	"zkc/internal/ast"
	"zkc/internal/diag"
	"zkc/internal/source"
	"zkc/internal/trace"
)

// Options configures Run.
type Options struct {
	// MaxUnroll caps the iteration count of one loop; 0 means DefaultMaxUnroll.
	MaxUnroll int
	// Reporter, when set, receives the failure as an error diagnostic.
	Reporter diag.Reporter
	// Validate re-checks the output with Validate before returning it.
	Validate bool
}

// Run converts prog into SSA form. The context only carries the tracer and
// the parent trace span; the pass is not cancellable. On error the returned
// program is nil.
func Run(ctx context.Context, prog *ast.Program, opts Options) (*ast.Program, error) {
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopePass, "ssa", trace.ParentSpan(ctx))

	a := NewAssigner(opts)
	a.tracer = tracer
	a.parent = span.ID()

	out, err := a.ConsumeProgram(prog)
	if err == nil && a.Depth() != 0 {
		err = a.errorf(diag.SSAScopeImbalance, ErrScopeImbalance, source.NoSpan,
			"%d scopes left open after the pass", a.Depth())
	}
	if err == nil && opts.Validate {
		err = Validate(out)
	}
	if err != nil {
		Report(opts.Reporter, err)
		span.End("error")
		return nil, err
	}
	span.WithExtra("names", strconv.FormatUint(a.Names(), 10)).End("")
	return out, nil
}
