package ssa

import (
	"zkc/internal/ast"
	"zkc/internal/diag"
)

// ConsumeBlock renames b's statements in the current scope. Callers that
// need a nested scope open it themselves.
func (a *Assigner) ConsumeBlock(b *ast.Block) (*ast.Block, error) {
	if b == nil {
		return &ast.Block{}, nil
	}
	out := &ast.Block{
		Statements: make([]ast.Stmt, 0, len(b.Statements)),
		Span:       b.Span,
	}
	for i := range b.Statements {
		stmts, err := a.ConsumeStatement(&b.Statements[i])
		if err != nil {
			return nil, err
		}
		out.Statements = append(out.Statements, stmts...)
	}
	return out, nil
}

// ConsumeStatement renames one statement.
func (a *Assigner) ConsumeStatement(s *ast.Stmt) ([]ast.Stmt, error) {
	switch data := s.Data.(type) {
	case ast.DefinitionData:
		value, err := a.ConsumeExpression(data.Value)
		if err != nil {
			return nil, err
		}
		name := a.fresh(data.Variable.Name)
		a.Register(data.Variable.Name, name)
		variable := ast.Identifier{Name: name, Span: data.Variable.Span}
		return one(ast.NewDefinition(data.Declaration, variable, data.Type.Clone(), value, s.Span)), nil

	case ast.AssignData:
		return a.consumeAssign(s, data)

	case ast.ConditionalData:
		return a.consumeConditional(s, data)

	case ast.IterationData:
		return a.unroll(s, data)

	case ast.ReturnData:
		var value *ast.Expr
		if data.Value != nil {
			v, err := a.ConsumeExpression(data.Value)
			if err != nil {
				return nil, err
			}
			value = v
		}
		args, err := a.consumeExprs(data.FinalizeArguments)
		if err != nil {
			return nil, err
		}
		return one(ast.Stmt{Kind: ast.StmtReturn, Span: s.Span, Data: ast.ReturnData{
			Value:             value,
			FinalizeArguments: args,
		}}), nil

	case ast.ConsoleData:
		args, err := a.consumeExprs(data.Args)
		if err != nil {
			return nil, err
		}
		return one(ast.NewConsole(data.Kind, args, s.Span)), nil

	case ast.BlockStmtData:
		var block *ast.Block
		bindings, err := a.capture(func() error {
			var err error
			block, err = a.ConsumeBlock(data.Block)
			return err
		})
		if err != nil {
			return nil, err
		}
		a.propagate(bindings)
		return one(ast.NewBlockStmt(block)), nil

	case ast.ExpressionData:
		e, err := a.ConsumeExpression(data.Expr)
		if err != nil {
			return nil, err
		}
		return one(ast.NewExpressionStmt(e, s.Span)), nil

	case ast.MappingUpdateData:
		key, err := a.ConsumeExpression(data.Key)
		if err != nil {
			return nil, err
		}
		amount, err := a.ConsumeExpression(data.Amount)
		if err != nil {
			return nil, err
		}
		return one(ast.Stmt{Kind: s.Kind, Span: s.Span, Data: ast.MappingUpdateData{
			Mapping: data.Mapping,
			Key:     key,
			Amount:  amount,
		}}), nil

	default:
		return nil, a.errorf(diag.SSAInvariantViolation, ErrInvariantViolation, s.Span,
			"statement of kind %s has no %T payload", s.Kind, s.Data)
	}
}

// consumeAssign turns `x = e;` into `x$N = e';`. Only plain variables can be
// assigned; member and tuple places are rejected.
func (a *Assigner) consumeAssign(s *ast.Stmt, data ast.AssignData) ([]ast.Stmt, error) {
	target, ok := data.Place.IdentifierName()
	if !ok {
		return nil, a.errorf(diag.SSAUnsupportedAssignTarget, ErrUnsupportedAssignTarget, data.Place.Span,
			"cannot assign to %s", data.Place)
	}
	// присваивание необъявленной переменной тоже нарушает предусловие
	if _, err := a.resolveAt(target, data.Place.Span); err != nil {
		return nil, err
	}
	value, err := a.ConsumeExpression(data.Value)
	if err != nil {
		return nil, err
	}
	name := a.fresh(target)
	a.Register(target, name)
	return one(ast.NewAssign(ast.NewIdentifier(name, data.Place.Span), value, s.Span)), nil
}

// consumeConditional renames the condition in the current scope, each branch
// in its own scope, and appends merge definitions for outer variables the
// branches changed.
func (a *Assigner) consumeConditional(s *ast.Stmt, data ast.ConditionalData) ([]ast.Stmt, error) {
	cond, err := a.ConsumeExpression(data.Condition)
	if err != nil {
		return nil, err
	}

	var then *ast.Block
	thenBindings, err := a.capture(func() error {
		var err error
		then, err = a.ConsumeBlock(data.Then)
		return err
	})
	if err != nil {
		return nil, err
	}

	var otherwise *ast.Stmt
	var elseBindings []Binding
	if data.Otherwise != nil {
		otherwise, elseBindings, err = a.consumeElse(data.Otherwise)
		if err != nil {
			return nil, err
		}
	}

	out := []ast.Stmt{ast.NewConditional(cond, then, otherwise, s.Span)}
	return append(out, a.mergeBranches(cond, thenBindings, elseBindings, s.Span)...), nil
}

// consumeElse renames an else branch. An else-if whose renaming produced
// merge definitions is wrapped into a block so the branch stays one statement.
func (a *Assigner) consumeElse(s *ast.Stmt) (*ast.Stmt, []Binding, error) {
	var out ast.Stmt
	bindings, err := a.capture(func() error {
		if data, ok := s.Data.(ast.BlockStmtData); ok {
			block, err := a.ConsumeBlock(data.Block)
			if err != nil {
				return err
			}
			out = ast.NewBlockStmt(block)
			return nil
		}
		stmts, err := a.ConsumeStatement(s)
		if err != nil {
			return err
		}
		if len(stmts) == 1 {
			out = stmts[0]
		} else {
			out = ast.NewBlockStmt(&ast.Block{Statements: stmts, Span: s.Span})
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return &out, bindings, nil
}

func (a *Assigner) consumeExprs(exprs []*ast.Expr) ([]*ast.Expr, error) {
	if exprs == nil {
		return nil, nil
	}
	out := make([]*ast.Expr, len(exprs))
	for i, e := range exprs {
		renamed, err := a.ConsumeExpression(e)
		if err != nil {
			return nil, err
		}
		out[i] = renamed
	}
	return out, nil
}

func one(s ast.Stmt) []ast.Stmt {
	return []ast.Stmt{s}
}
