package ssa

import (
	"fmt"

	"zkc/internal/ast"
	"zkc/internal/diag"
	"zkc/internal/source"
	"zkc/internal/trace"
)

// ConsumeProgram converts imports first, each with its own rename table, then
// the program's own scopes.
func (a *Assigner) ConsumeProgram(p *ast.Program) (*ast.Program, error) {
	if p == nil {
		return nil, a.nilEntry("program", "")
	}
	span := trace.Begin(a.tracer, trace.ScopeProgram, "program:"+p.Name(), a.parent)
	defer span.End("")

	out := &ast.Program{
		Imports:       ast.NewOrderedMap[*ast.Program](p.Imports.Len()),
		ProgramScopes: ast.NewOrderedMap[*ast.ProgramScope](p.ProgramScopes.Len()),
	}

	for name, imp := range p.Imports.All() {
		if imp == nil {
			return nil, a.nilEntry("import", name)
		}
		child := a.child()
		child.parent = span.ID()
		converted, err := child.ConsumeProgram(imp)
		if err != nil {
			return nil, fmt.Errorf("import %s: %w", name, err)
		}
		out.Imports.Set(name, converted)
	}

	prev := a.parent
	a.parent = span.ID()
	defer func() { a.parent = prev }()

	for name, scope := range p.ProgramScopes.All() {
		if scope == nil {
			return nil, a.nilEntry("program scope", name)
		}
		converted, err := a.ConsumeProgramScope(scope)
		if err != nil {
			return nil, err
		}
		out.ProgramScopes.Set(name, converted)
	}
	if err := a.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ConsumeProgramScope rebuilds structs and functions in declaration order.
// Mappings are copied.
func (a *Assigner) ConsumeProgramScope(s *ast.ProgramScope) (*ast.ProgramScope, error) {
	a.program = s.ProgramID.String()
	defer func() { a.program = "" }()

	structs, err := ast.MapOrdered(s.Structs, func(name string, st *ast.Struct) (*ast.Struct, error) {
		if st == nil {
			return nil, a.nilEntry("struct", name)
		}
		return a.ConsumeStruct(st)
	})
	if err != nil {
		return nil, err
	}
	mappings, err := ast.MapOrdered(s.Mappings, func(name string, m *ast.Mapping) (*ast.Mapping, error) {
		if m == nil {
			return nil, a.nilEntry("mapping", name)
		}
		return m.Clone(), nil
	})
	if err != nil {
		return nil, err
	}
	functions, err := ast.MapOrdered(s.Functions, func(name string, f *ast.Function) (*ast.Function, error) {
		if f == nil {
			return nil, a.nilEntry("function", name)
		}
		return a.ConsumeFunction(f)
	})
	if err != nil {
		return nil, err
	}

	return &ast.ProgramScope{
		ProgramID: s.ProgramID,
		Structs:   structs,
		Mappings:  mappings,
		Functions: functions,
		Span:      s.Span,
	}, nil
}

// ConsumeFunction renames the main body and the finalize body in two
// disjoint scope lifetimes. Everything except the blocks is copied.
func (a *Assigner) ConsumeFunction(f *ast.Function) (*ast.Function, error) {
	a.function = f.Identifier.Name
	a.fnSpan = f.Span
	defer func() { a.function = "" }()

	block, err := a.renameBody("fn:"+f.Identifier.Name, f.Input, f.Block)
	if err != nil {
		return nil, err
	}

	var fin *ast.Finalize
	if f.Finalize != nil {
		fin, err = a.consumeFinalize(f.Finalize)
		if err != nil {
			return nil, err
		}
	}

	return &ast.Function{
		Annotations: ast.CloneAnnotations(f.Annotations),
		CallType:    f.CallType,
		Identifier:  f.Identifier,
		Input:       ast.CloneInputs(f.Input),
		Output:      ast.CloneOutputs(f.Output),
		OutputType:  f.OutputType.Clone(),
		Block:       block,
		Finalize:    fin,
		Span:        f.Span,
	}, nil
}

func (a *Assigner) consumeFinalize(fin *ast.Finalize) (*ast.Finalize, error) {
	a.fnSpan = fin.Span
	block, err := a.renameBody("finalize:"+fin.Identifier.Name, fin.Input, fin.Block)
	if err != nil {
		return nil, err
	}
	return &ast.Finalize{
		Identifier: fin.Identifier,
		Input:      ast.CloneInputs(fin.Input),
		Output:     ast.CloneOutputs(fin.Output),
		OutputType: fin.OutputType.Clone(),
		Block:      block,
		Span:       fin.Span,
	}, nil
}

func (a *Assigner) nilEntry(kind, name string) *Error {
	if name == "" {
		return a.errorf(diag.SSAInvariantViolation, ErrMalformedTree, source.NoSpan, "nil %s", kind)
	}
	return a.errorf(diag.SSAInvariantViolation, ErrMalformedTree, source.NoSpan, "nil %s %q", kind, name)
}

// renameBody opens a lifetime seeded only by inputs, each registered under
// its own name, and renames body inside it.
func (a *Assigner) renameBody(name string, inputs []ast.Input, body *ast.Block) (*ast.Block, error) {
	life := a.openLifetime(name)
	for i := range inputs {
		a.Register(inputs[i].Identifier.Name, inputs[i].Identifier.Name)
	}
	out, err := a.ConsumeBlock(body)
	if cerr := life.close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = a.Err()
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}
