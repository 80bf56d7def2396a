package driver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"zkc/internal/ast"
	"zkc/internal/diag"
	"zkc/internal/observ"
	"zkc/internal/project"
	"zkc/internal/source"
	"zkc/internal/ssa"
	"zkc/internal/trace"
)

// DefaultMaxDiagnostics is used when a request leaves MaxDiagnostics unset.
const DefaultMaxDiagnostics = 100

// CompileRequest configures one compilation unit.
type CompileRequest struct {
	// Path is the input tree. It is ignored when Manifest is set.
	Path     string
	Manifest *project.Manifest

	MaxUnroll int
	Validate  bool

	// Out is the output path; "" skips emission and "-" writes to Stdout.
	Out    string
	Stdout io.Writer
	Format project.OutputFormat

	Cache          *DiskCache
	MaxDiagnostics int
	Progress       ProgressSink
	// Timings adds an OBS6001 diagnostic with the phase breakdown.
	Timings bool
}

// Unit names the request in progress events and diagnostics.
func (r *CompileRequest) Unit() string {
	if r == nil {
		return ""
	}
	if r.Manifest != nil {
		if r.Manifest.Name != "" {
			return r.Manifest.Name
		}
		return r.Manifest.Path
	}
	return r.Path
}

func (r *CompileRequest) inputs() []string {
	if r.Manifest == nil {
		return []string{r.Path}
	}
	paths := make([]string, 0, 1+len(r.Manifest.Imports))
	paths = append(paths, r.Manifest.Tree)
	for _, imp := range r.Manifest.Imports {
		paths = append(paths, imp.Tree)
	}
	return paths
}

// CompileResult captures the converted program, diagnostics and timings.
type CompileResult struct {
	Unit    string
	Program *ast.Program // nil when the unit failed
	Bag     *diag.Bag
	Timer   *observ.Timer
	OutPath string
	Cached  bool
}

// Failed reports whether the unit produced error diagnostics.
func (r *CompileResult) Failed() bool {
	return r == nil || r.Bag.HasErrors()
}

// Compile runs load, ssa, validate and emit for one unit. Failures of the
// unit itself end up in the result's Bag; the returned error is reserved for
// bad requests and cancellation.
func Compile(ctx context.Context, req *CompileRequest) (*CompileResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if req == nil {
		return nil, errors.New("missing compile request")
	}
	if req.Manifest == nil && req.Path == "" {
		return nil, errors.New("missing input path")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	maxDiag := req.MaxDiagnostics
	if maxDiag <= 0 {
		maxDiag = DefaultMaxDiagnostics
	}

	u := &unit{
		req: req,
		res: &CompileResult{
			Unit:  req.Unit(),
			Bag:   diag.NewBag(maxDiag),
			Timer: observ.NewTimer(),
		},
		tracer: trace.FromContext(ctx),
	}
	// an import embedded under several importers is walked once per
	// importer, so its findings would otherwise repeat
	u.report = diag.NewDedupReporter(diag.BagReporter{Bag: u.res.Bag})
	span := trace.Begin(u.tracer, trace.ScopeDriver, "unit:"+u.res.Unit, trace.ParentSpan(ctx))
	ctx = trace.WithSpan(ctx, span)
	u.parent = span.ID()

	u.run(ctx)

	if req.Timings {
		appendTimingDiagnostic(u.res.Bag, u.res.Unit, u.res.Timer.Report())
	}
	if u.res.Failed() {
		span.End("error")
	} else {
		span.End("")
	}
	return u.res, nil
}

type unit struct {
	req    *CompileRequest
	res    *CompileResult
	report diag.Reporter
	tracer trace.Tracer
	parent uint64
}

func (u *unit) run(ctx context.Context) {
	key, prog, ok := u.load()
	if !ok {
		return
	}
	out := prog
	if !u.res.Cached {
		if out, ok = u.convert(ctx, prog); !ok {
			return
		}
		if ok = u.validate(out); !ok {
			return
		}
		if u.req.Cache != nil {
			if err := u.req.Cache.Put(key, out); err != nil {
				u.warn(diag.IOCacheError, fmt.Errorf("cache store: %w", err))
			}
		}
	}
	u.res.Program = out
	u.emitOutput(out)
}

// stage wraps fn with a timer phase, a trace span and progress events.
func (u *unit) stage(st Stage, fn func() (Status, error)) bool {
	emit(u.req.Progress, Event{Unit: u.res.Unit, Stage: st, Status: StatusWorking})
	start := time.Now()
	done := u.res.Timer.Track(string(st))
	var span *trace.Span
	if st != StageSSA {
		// ssa.Run opens its own span
		span = trace.Begin(u.tracer, trace.ScopePass, string(st), u.parent)
	}
	status, err := fn()
	if err != nil {
		status = StatusError
	}
	done(string(status))
	if span != nil {
		span.End(string(status))
	}
	emit(u.req.Progress, Event{Unit: u.res.Unit, Stage: st, Status: status, Err: err, Elapsed: time.Since(start)})
	return err == nil
}

func (u *unit) load() (key project.Digest, prog *ast.Program, ok bool) {
	ok = u.stage(StageLoad, func() (Status, error) {
		if u.req.Cache != nil {
			digests := make([]project.Digest, 0, 4)
			for _, path := range u.req.inputs() {
				d, err := project.HashFile(path)
				if err != nil {
					u.fail(diag.IOLoadFileError, err)
					return StatusError, err
				}
				digests = append(digests, d)
			}
			key = CacheKey(u.req.MaxUnroll, u.req.Validate, digests...)
			cached, hit, err := u.req.Cache.Get(key)
			switch {
			case err != nil:
				u.warn(diag.IOCacheError, fmt.Errorf("cache lookup: %w", err))
			case hit:
				prog = cached
				u.res.Cached = true
				return StatusCached, nil
			}
		}
		var err error
		if u.req.Manifest != nil {
			prog, err = LoadProject(u.req.Manifest)
		} else {
			prog, err = LoadTree(u.req.Path)
		}
		if err != nil {
			u.fail(loadErrorCode(err), err)
			return StatusError, err
		}
		return StatusDone, nil
	})
	if ok && u.res.Cached {
		emit(u.req.Progress, Event{Unit: u.res.Unit, Stage: StageSSA, Status: StatusCached})
		emit(u.req.Progress, Event{Unit: u.res.Unit, Stage: StageValidate, Status: StatusCached})
	}
	return key, prog, ok
}

func loadErrorCode(err error) diag.Code {
	switch {
	case errors.Is(err, ErrDecodeTree), errors.Is(err, ErrUnknownTreeFormat):
		return diag.IODecodeError
	case errors.Is(err, ErrProgramMismatch):
		return diag.ProjManifestInvalid
	default:
		return diag.IOLoadFileError
	}
}

func (u *unit) convert(ctx context.Context, prog *ast.Program) (out *ast.Program, ok bool) {
	ok = u.stage(StageSSA, func() (Status, error) {
		var err error
		out, err = ssa.Run(ctx, prog, ssa.Options{
			MaxUnroll: u.req.MaxUnroll,
			Reporter:  u.report,
		})
		if err != nil {
			return StatusError, err
		}
		return StatusDone, nil
	})
	return out, ok
}

func (u *unit) validate(prog *ast.Program) bool {
	if !u.req.Validate {
		emit(u.req.Progress, Event{Unit: u.res.Unit, Stage: StageValidate, Status: StatusSkipped})
		return true
	}
	return u.stage(StageValidate, func() (Status, error) {
		if err := ssa.Validate(prog); err != nil {
			ssa.Report(u.report, err)
			return StatusError, err
		}
		return StatusDone, nil
	})
}

func (u *unit) emitOutput(prog *ast.Program) {
	if u.req.Out == "" {
		emit(u.req.Progress, Event{Unit: u.res.Unit, Stage: StageEmit, Status: StatusSkipped})
		return
	}
	u.stage(StageEmit, func() (Status, error) {
		format := u.req.Format
		if format == "" {
			format = project.FormatJSON
		}
		if u.req.Out == "-" {
			w := u.req.Stdout
			if w == nil {
				w = os.Stdout
			}
			if err := WriteTree(w, prog, format); err != nil {
				u.fail(diag.IOWriteFileError, err)
				return StatusError, err
			}
			return StatusDone, nil
		}
		if err := WriteTreeFile(u.req.Out, prog, format); err != nil {
			u.fail(diag.IOWriteFileError, err)
			return StatusError, err
		}
		u.res.OutPath = u.req.Out
		return StatusDone, nil
	})
}

func (u *unit) fail(code diag.Code, err error) {
	diag.ReportError(u.report, code, source.NoSpan, err.Error()).Emit()
}

func (u *unit) warn(code diag.Code, err error) {
	diag.ReportWarning(u.report, code, source.NoSpan, err.Error()).Emit()
}
