package ssa

import (
	"math/big"
	"strings"

	"fortio.org/safecast"

	"zkc/internal/ast"
	"zkc/internal/diag"
)

// unroll expands `for i: T in start..stop { body }` into one block per
// iteration. Each block defines a fresh i$N as the iteration's constant,
// followed by the renamed body. Outer variables written by an iteration
// flow into the next one and past the loop.
func (a *Assigner) unroll(s *ast.Stmt, data ast.IterationData) ([]ast.Stmt, error) {
	start, err := a.ConsumeExpression(data.Start)
	if err != nil {
		return nil, err
	}
	stop, err := a.ConsumeExpression(data.Stop)
	if err != nil {
		return nil, err
	}
	from, lit, err := a.loopBound(start)
	if err != nil {
		return nil, err
	}
	to, _, err := a.loopBound(stop)
	if err != nil {
		return nil, err
	}

	count := new(big.Int).Sub(to, from)
	if data.Inclusive {
		count.Add(count, big.NewInt(1))
	}
	if count.Sign() <= 0 {
		return nil, nil
	}
	if !count.IsInt64() || count.Int64() > int64(a.maxUnroll) {
		return nil, a.errorf(diag.SSALoopBoundTooLarge, ErrLoopBoundTooLarge, s.Span,
			"loop over %s runs %s iterations, limit is %d", data.Variable.Name, count, a.maxUnroll)
	}
	n, err := safecast.Conv[int](count.Int64())
	if err != nil {
		return nil, a.errorf(diag.SSALoopBoundTooLarge, ErrLoopBoundTooLarge, s.Span,
			"loop over %s: %v", data.Variable.Name, err)
	}

	intType := lit.Int
	if data.Type.Kind == ast.TypeInteger {
		intType = data.Type.Int
	}

	out := make([]ast.Stmt, 0, n)
	k := new(big.Int).Set(from)
	for range n {
		var body *ast.Block
		bindings, err := a.capture(func() error {
			iv := a.fresh(data.Variable.Name)
			a.Register(data.Variable.Name, iv)
			value := ast.NewInteger(intType, k.String(), data.Variable.Span)
			def := ast.NewDefinition(ast.DeclConst, ast.Identifier{Name: iv, Span: data.Variable.Span}, data.Type.Clone(), value, data.Variable.Span)

			renamed, err := a.ConsumeBlock(data.Block)
			if err != nil {
				return err
			}
			body = &ast.Block{
				Statements: append([]ast.Stmt{def}, renamed.Statements...),
				Span:       renamed.Span,
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		a.propagate(bindings)
		out = append(out, ast.NewBlockStmt(body))
		k.Add(k, big.NewInt(1))
	}
	return out, nil
}

// loopBound reads an integer literal bound. Type checking guarantees loop
// bounds are compile-time constants; anything else is rejected here.
func (a *Assigner) loopBound(e *ast.Expr) (*big.Int, ast.LiteralData, error) {
	lit, ok := e.Data.(ast.LiteralData)
	if !ok || lit.Kind != ast.LitInteger {
		return nil, ast.LiteralData{}, a.errorf(diag.SSANonConstantLoopBound, ErrNonConstantLoopBound, e.Span,
			"loop bound %s is not an integer literal", e)
	}
	v, ok := new(big.Int).SetString(strings.ReplaceAll(lit.Value, "_", ""), 10)
	if !ok {
		return nil, ast.LiteralData{}, a.errorf(diag.SSANonConstantLoopBound, ErrNonConstantLoopBound, e.Span,
			"loop bound %q is not a decimal integer", lit.Value)
	}
	return v, lit, nil
}
