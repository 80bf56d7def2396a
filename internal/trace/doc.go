// Package trace records what the compiler is doing, for diagnosing slow or
// stuck compilations.
//
// # Usage
//
//	zkc ssa --trace=- --trace-level=detail zkc.toml
//
// # Tracers
//
//   - Nop: zero-overhead no-op tracer when disabled
//   - StreamTracer: immediate write to output (file/stderr), text or NDJSON
//   - RingTracer: circular buffer, dumped when a unit fails
//   - MultiTracer: combines multiple tracers
//
// # Scopes and levels
//
// ScopeDriver and ScopePass are emitted from LevelPhase, ScopeProgram from
// LevelDetail, ScopeFunction only at LevelDebug.
//
// # Context Propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//	t := trace.FromContext(ctx)
//
//	span := trace.Begin(t, trace.ScopePass, "ssa", parentID)
//	defer span.End("")
package trace
