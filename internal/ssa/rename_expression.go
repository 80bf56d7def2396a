package ssa

import (
	"zkc/internal/ast"
	"zkc/internal/diag"
)

// ConsumeExpression rewrites every variable read in e to its SSA name.
// Callee, struct, member, mapping and associated-type names are not
// variables and are copied as is.
func (a *Assigner) ConsumeExpression(e *ast.Expr) (*ast.Expr, error) {
	if e == nil {
		return nil, nil
	}
	switch data := e.Data.(type) {
	case ast.IdentifierData:
		name, err := a.resolveAt(data.Name, e.Span)
		if err != nil {
			return nil, err
		}
		return ast.NewIdentifier(name, e.Span), nil

	case ast.LiteralData:
		return &ast.Expr{Kind: ast.ExprLiteral, Span: e.Span, Data: data}, nil

	case ast.BinaryData:
		left, err := a.ConsumeExpression(data.Left)
		if err != nil {
			return nil, err
		}
		right, err := a.ConsumeExpression(data.Right)
		if err != nil {
			return nil, err
		}
		return ast.NewBinary(data.Op, left, right, e.Span), nil

	case ast.UnaryData:
		operand, err := a.ConsumeExpression(data.Operand)
		if err != nil {
			return nil, err
		}
		return ast.NewUnary(data.Op, operand, e.Span), nil

	case ast.TernaryData:
		cond, err := a.ConsumeExpression(data.Condition)
		if err != nil {
			return nil, err
		}
		ifTrue, err := a.ConsumeExpression(data.IfTrue)
		if err != nil {
			return nil, err
		}
		ifFalse, err := a.ConsumeExpression(data.IfFalse)
		if err != nil {
			return nil, err
		}
		return ast.NewTernary(cond, ifTrue, ifFalse, e.Span), nil

	case ast.CallData:
		args, err := a.consumeExprs(data.Args)
		if err != nil {
			return nil, err
		}
		return &ast.Expr{Kind: ast.ExprCall, Span: e.Span, Data: ast.CallData{
			Function: data.Function,
			External: data.External,
			Args:     args,
		}}, nil

	case ast.TupleData:
		elems, err := a.consumeExprs(data.Elements)
		if err != nil {
			return nil, err
		}
		return ast.NewTuple(elems, e.Span), nil

	case ast.StructInitData:
		members := make([]ast.StructMemberInit, len(data.Members))
		for i, m := range data.Members {
			var value *ast.Expr
			var err error
			if m.Value == nil {
				// `Foo { a }` читает переменную a
				value, err = a.ConsumeExpression(ast.NewIdentifier(m.Identifier.Name, m.Identifier.Span))
			} else {
				value, err = a.ConsumeExpression(m.Value)
			}
			if err != nil {
				return nil, err
			}
			members[i] = ast.StructMemberInit{Identifier: m.Identifier, Value: value}
		}
		return ast.NewStructInit(data.Name, members, e.Span), nil

	case ast.MemberAccessData:
		inner, err := a.ConsumeExpression(data.Inner)
		if err != nil {
			return nil, err
		}
		return ast.NewMemberAccess(inner, data.Name, e.Span), nil

	case ast.TupleAccessData:
		inner, err := a.ConsumeExpression(data.Inner)
		if err != nil {
			return nil, err
		}
		return ast.NewTupleAccess(inner, data.Index, e.Span), nil

	case ast.AssociatedFunctionData:
		args, err := a.consumeExprs(data.Args)
		if err != nil {
			return nil, err
		}
		return &ast.Expr{Kind: ast.ExprAssociatedFunction, Span: e.Span, Data: ast.AssociatedFunctionData{
			Type: data.Type,
			Name: data.Name,
			Args: args,
		}}, nil

	case ast.AssociatedConstantData:
		return &ast.Expr{Kind: ast.ExprAssociatedConstant, Span: e.Span, Data: data}, nil

	default:
		return nil, a.errorf(diag.SSAInvariantViolation, ErrInvariantViolation, e.Span,
			"expression of kind %s has no %T payload", e.Kind, e.Data)
	}
}
