package ssa

import (
	"errors"
	"fmt"

	"zkc/internal/ast"
	"zkc/internal/diag"
	"zkc/internal/source"
)

// Validate checks a converted tree:
//   - every function and finalize body defines each name at most once,
//     parameters included;
//   - every read refers to a parameter or a name defined earlier in the body;
//   - no loops and no struct-init shorthands remain;
//   - every record starts with owner, gates.
//
// All violations are returned joined.
func Validate(p *ast.Program) error {
	v := &validator{}
	v.program(p)
	return errors.Join(v.errs...)
}

type validator struct {
	errs     []error
	prog     string
	function string
	defined  map[string]struct{}
}

func (v *validator) violation(span source.Span, format string, args ...any) {
	v.errs = append(v.errs, &Error{
		Code:     diag.SSAInvariantViolation,
		Span:     span,
		Program:  v.prog,
		Function: v.function,
		Msg:      fmt.Sprintf(format, args...),
		Err:      ErrInvariantViolation,
	})
}

func (v *validator) program(p *ast.Program) {
	for _, imp := range p.Imports.All() {
		v.program(imp)
	}
	for _, scope := range p.ProgramScopes.All() {
		v.prog = scope.ProgramID.String()
		for _, st := range scope.Structs.All() {
			v.record(st)
		}
		for _, f := range scope.Functions.All() {
			v.function = f.Identifier.Name
			v.body(f.Input, f.Block)
			if f.Finalize != nil {
				v.body(f.Finalize.Input, f.Finalize.Block)
			}
			v.function = ""
		}
		v.prog = ""
	}
}

func (v *validator) record(s *ast.Struct) {
	if !s.IsRecord {
		return
	}
	if len(s.Members) < 2 || s.Members[0].Identifier.Name != OwnerField || s.Members[1].Identifier.Name != GatesField {
		v.violation(s.Span, "record %q does not start with %s, %s", s.Identifier.Name, OwnerField, GatesField)
	}
}

func (v *validator) body(inputs []ast.Input, b *ast.Block) {
	v.defined = make(map[string]struct{}, len(inputs))
	for i := range inputs {
		v.define(inputs[i].Identifier.Name, inputs[i].Span)
	}
	v.block(b)
}

func (v *validator) define(name string, span source.Span) {
	if _, dup := v.defined[name]; dup {
		v.violation(span, "%q is defined more than once", name)
		return
	}
	v.defined[name] = struct{}{}
}

func (v *validator) block(b *ast.Block) {
	if b == nil {
		return
	}
	for i := range b.Statements {
		v.stmt(&b.Statements[i])
	}
}

func (v *validator) stmt(s *ast.Stmt) {
	switch data := s.Data.(type) {
	case ast.DefinitionData:
		v.expr(data.Value)
		v.define(data.Variable.Name, data.Variable.Span)
	case ast.AssignData:
		v.expr(data.Value)
		name, ok := data.Place.IdentifierName()
		if !ok {
			v.violation(data.Place.Span, "assignment to %s", data.Place)
			return
		}
		v.define(name, data.Place.Span)
	case ast.ConditionalData:
		v.expr(data.Condition)
		v.block(data.Then)
		if data.Otherwise != nil {
			v.stmt(data.Otherwise)
		}
	case ast.IterationData:
		v.violation(s.Span, "loop over %q was not unrolled", data.Variable.Name)
	case ast.ReturnData:
		v.expr(data.Value)
		v.exprs(data.FinalizeArguments)
	case ast.ConsoleData:
		v.exprs(data.Args)
	case ast.BlockStmtData:
		v.block(data.Block)
	case ast.ExpressionData:
		v.expr(data.Expr)
	case ast.MappingUpdateData:
		v.expr(data.Key)
		v.expr(data.Amount)
	}
}

func (v *validator) exprs(es []*ast.Expr) {
	for _, e := range es {
		v.expr(e)
	}
}

func (v *validator) expr(e *ast.Expr) {
	if e == nil {
		return
	}
	switch data := e.Data.(type) {
	case ast.IdentifierData:
		if _, ok := v.defined[data.Name]; !ok {
			v.violation(e.Span, "read of %q has no reaching definition", data.Name)
		}
	case ast.BinaryData:
		v.expr(data.Left)
		v.expr(data.Right)
	case ast.UnaryData:
		v.expr(data.Operand)
	case ast.TernaryData:
		v.expr(data.Condition)
		v.expr(data.IfTrue)
		v.expr(data.IfFalse)
	case ast.CallData:
		v.exprs(data.Args)
	case ast.TupleData:
		v.exprs(data.Elements)
	case ast.StructInitData:
		for _, m := range data.Members {
			if m.Value == nil {
				v.violation(m.Identifier.Span, "shorthand member %q was not expanded", m.Identifier.Name)
				continue
			}
			v.expr(m.Value)
		}
	case ast.MemberAccessData:
		v.expr(data.Inner)
	case ast.TupleAccessData:
		v.expr(data.Inner)
	case ast.AssociatedFunctionData:
		v.exprs(data.Args)
	}
}
